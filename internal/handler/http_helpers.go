package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/poselog/internal/service"
)

// Error codes carried in the response body alongside the HTTP status.
const (
	codeUnauthorized    = "UNAUTHORIZED"
	codeForbidden       = "FORBIDDEN"
	codeNotFound        = "NOT_FOUND"
	codeInvalidInput    = "INVALID_INPUT"
	codeInvalidOrderSet = "INVALID_ORDER_SET"
	codeLimitExceeded   = "LIMIT_EXCEEDED"
	codeSystemAsana     = "SYSTEM_ASANA"
	codeInternalError   = "INTERNAL_ERROR"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// respondServiceError maps the named service failures onto the wire
// contract. Anything unrecognized is logged in full and surfaced only as a
// generic failure.
func respondServiceError(c *gin.Context, err error) {
	var capacity *service.CapacityError
	var invalid *service.InvalidInputError

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "请先登录")
	case errors.Is(err, service.ErrOwnershipDenied):
		respondError(c, http.StatusForbidden, codeForbidden, "只有创建者可以管理该体式的图片")
	case errors.Is(err, service.ErrSystemAsanaImmutable):
		respondError(c, http.StatusForbidden, codeSystemAsana, "系统内置体式不接受图片上传")
	case errors.Is(err, service.ErrAsanaNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, "体式不存在")
	case errors.Is(err, service.ErrImageNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, "部分图片不存在")
	case errors.Is(err, service.ErrInvalidOrderSet):
		respondError(c, http.StatusBadRequest, codeInvalidOrderSet, "图片顺序必须唯一且在有效范围内")
	case errors.Is(err, service.ErrSlotsExhausted):
		respondError(c, http.StatusBadRequest, codeLimitExceeded, "没有可用的图片槽位")
	case errors.As(err, &capacity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "图片数量已达上限",
			"code":    codeLimitExceeded,
			"current": capacity.Current,
			"limit":   capacity.Limit,
		})
	case errors.As(err, &invalid):
		respondError(c, http.StatusBadRequest, codeInvalidInput, invalid.Reason)
	default:
		log.Printf("unexpected error: %v", err)
		respondError(c, http.StatusInternalServerError, codeInternalError, "服务器内部错误")
	}
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
