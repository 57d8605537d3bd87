package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/poselog/internal/config"
	"github.com/poselog/internal/db"
	"github.com/poselog/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("poselog_session", store))

	// 上传的图片作为静态文件直接对外提供
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	api := handler.NewAPI(db.DB, cfg)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/login", handler.Login)
	r.POST("/logout", handler.Logout)

	// 公开的体式浏览接口，登录与否都可访问
	public := r.Group("")
	public.Use(handler.OptionalIdentity())
	{
		public.GET("/asanas", api.ListAsanas)
		public.GET("/asanas/:id", api.GetAsana)
	}

	// 图片管理接口要求登录
	auth := r.Group("")
	auth.Use(handler.AuthRequired())
	{
		auth.POST("/asanas", api.CreateAsana)

		auth.PUT("/images/reorder", api.ReorderImages)
		auth.POST("/images/upload", api.UploadImage)
		auth.GET("/images/upload", api.GetUploadQuota)
		auth.DELETE("/images/:id", api.DeleteImage)
	}

	return r
}
