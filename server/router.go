package server

import (
	"net/http"
	"time"

	"post-radar/domain/repository"
	httpHandler "post-radar/interfaces/http"
	"post-radar/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	fetchHandler httpHandler.IFetchHandler,
	translateHandler httpHandler.ITranslateHandler,
	threadHandler httpHandler.IThreadHandler,
	accountHandler httpHandler.IAccountHandler,
	memberRepository repository.IMember,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://postradar.dev", "http://localhost:4200", "https://localhost:4200"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("api")
	api.Use(middleware.Auth(memberRepository))

	api.POST("/fetch", fetchHandler.Run)
	api.GET("/fetch/stream", fetchHandler.Stream)
	api.GET("/fetch/logs", fetchHandler.ListLogs)

	api.POST("/translate", translateHandler.Run)
	api.GET("/translate/stream", translateHandler.Stream)
	api.GET("/translate/logs", translateHandler.ListLogs)
	api.POST("/posts/:postId/translate", translateHandler.TranslateOne)
	api.GET("/backlog", translateHandler.Backlog)

	api.GET("/threads", threadHandler.List)
	api.GET("/accounts", accountHandler.List)

	return router
}
