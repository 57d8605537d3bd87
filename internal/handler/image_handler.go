package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/poselog/internal/service"
)

type reorderPayload struct {
	Images []reorderEntryPayload `json:"images"`
}

type reorderEntryPayload struct {
	ImageID      string `json:"imageId"`
	DisplayOrder int    `json:"displayOrder"`
}

// ReorderImages atomically re-assigns display orders for the complete image
// set of one asana and returns the fresh, order-sorted list.
func (a *API) ReorderImages(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	entries := make([]service.ReorderEntry, 0, len(payload.Images))
	for _, entry := range payload.Images {
		entries = append(entries, service.ReorderEntry{
			ImageID:      entry.ImageID,
			DisplayOrder: entry.DisplayOrder,
		})
	}

	images, err := a.reorders.Reorder(currentIdentity(c), entries)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"images":  images,
		"message": "图片顺序已更新",
	})
}

// UploadImage validates and admits one new image for an asana.
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, "未找到上传的图片")
		return
	}

	input := service.UploadInput{
		File:      file,
		AltText:   c.PostForm("altText"),
		AsanaName: c.PostForm("recordName"),
		ImageType: c.PostForm("imageType"),
	}

	// callerIdentity 字段仅为旧客户端兼容保留，身份一律以会话为准

	if raw := strings.TrimSpace(c.PostForm("recordId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, codeInvalidInput, "无效的体式ID")
			return
		}
		asanaID := uint(id)
		input.AsanaID = &asanaID
	}

	if raw := strings.TrimSpace(c.PostForm("displayOrder")); raw != "" {
		order, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, codeInvalidInput, "无效的图片顺序")
			return
		}
		input.DisplayOrder = &order
	}

	result, err := a.uploads.Upload(currentIdentity(c), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "上传成功",
		"image":          result.Image,
		"remainingSlots": result.RemainingSlots,
		"totalImages":    result.TotalImages,
	})
}

// GetUploadQuota reports the caller's upload allowance for an asana. Only
// the record's creator may query it.
func (a *API) GetUploadQuota(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("recordId"))
	if raw == "" {
		respondError(c, http.StatusBadRequest, codeInvalidInput, "recordId 参数缺失")
		return
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, "无效的体式ID")
		return
	}

	perms, err := a.uploads.Quota(currentIdentity(c), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"canUpload":      perms.CanUpload,
		"currentCount":   perms.CurrentCount,
		"maxImages":      perms.MaxImages,
		"remainingSlots": perms.RemainingSlots,
	})
}

// DeleteImage removes one image. Surviving images keep their display
// orders; gaps are expected.
func (a *API) DeleteImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, "无效的图片ID")
		return
	}

	if err := a.uploads.Delete(currentIdentity(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "图片已删除"})
}
