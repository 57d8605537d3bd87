package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/poselog/internal/db"
	"github.com/poselog/internal/service"
	"golang.org/x/crypto/bcrypt"
)

const identityContextKey = "__caller_identity"

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 处理用户登录请求，校验密码后将用户写入会话。
func Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	// 查找用户
	var user db.User
	if err := db.DB.Where("username = ?", strings.TrimSpace(payload.Username)).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "用户名或密码错误")
		return
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, codeUnauthorized, "用户名或密码错误")
		return
	}

	// 设置会话
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, codeInternalError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "登录成功",
		"username": user.Username,
	})
}

// Logout 处理用户登出
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// AuthRequired resolves the session into a canonical caller identity and
// rejects the request when none is present. The identity carries both
// historical identifier forms so downstream guards compare once.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := resolveIdentity(c)
		if ident.IsZero() {
			respondError(c, http.StatusUnauthorized, codeUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Set(identityContextKey, ident)
		c.Next()
	}
}

// OptionalIdentity resolves the caller identity when a session exists but
// lets anonymous requests through.
func OptionalIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ident := resolveIdentity(c); !ident.IsZero() {
			c.Set(identityContextKey, ident)
		}
		c.Next()
	}
}

func resolveIdentity(c *gin.Context) service.Identity {
	session := sessions.Default(c)
	raw := session.Get("user_id")
	userID, ok := raw.(uint)
	if !ok || userID == 0 {
		return service.Identity{}
	}

	var user db.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		// 会话指向的账号查不到时按未登录处理
		return service.Identity{}
	}
	return service.Identity{UserID: user.ID, Email: user.Email}
}

func currentIdentity(c *gin.Context) service.Identity {
	if value, exists := c.Get(identityContextKey); exists {
		if ident, ok := value.(service.Identity); ok {
			return ident
		}
	}
	return service.Identity{}
}
