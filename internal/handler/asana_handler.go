package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/poselog/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type asanaPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateAsana creates a user-managed asana owned by the caller.
func (a *API) CreateAsana(c *gin.Context) {
	var payload asanaPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.asanas.Create(currentIdentity(c), service.AsanaInput{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrAsanaNameMissing) {
			respondError(c, http.StatusBadRequest, codeInvalidInput, "体式名称不能为空")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "体式已创建", "asana": item})
}

// ListAsanas returns all asanas.
func (a *API) ListAsanas(c *gin.Context) {
	items, err := a.asanas.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "获取体式列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"asanas": items})
}

// GetAsana returns one asana with its ordered images, the caller's
// permissions over them, and the description rendered to sanitized HTML.
func (a *API) GetAsana(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, "无效的体式ID")
		return
	}

	item, err := a.asanas.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	images, err := a.uploads.ListForAsana(item.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "获取图片列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asana":           item,
		"images":          images,
		"descriptionHTML": renderMarkdown(item.Description),
		"permissions":     a.owners.Permissions(item, currentIdentity(c)),
	})
}

func renderMarkdown(source string) string {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}
