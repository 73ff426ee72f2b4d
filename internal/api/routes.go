package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobchat/internal/api/handlers"
	"jobchat/internal/middleware"
	"jobchat/internal/service"
)

func SetupRoutes(r *gin.Engine, services *service.Services) {
	// 初始化 handlers
	historyHandler := handlers.NewHistoryHandler(services.History)
	roomHandler := handlers.NewRoomHandler(services.Registry)
	wsHandler := handlers.NewWebSocketHandler(services.Gateway)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要會話的路由
	authorized := api.Group("/")
	authorized.Use(middleware.SessionMiddleware())
	{
		// WebSocket 連接點，房間經由 join 事件加入
		authorized.GET("/ws", wsHandler.HandleWebSocket)

		// 聊天室相關
		rooms := authorized.Group("/rooms")
		{
			rooms.GET("/:id/messages", historyHandler.GetRoomHistory) // 聊天記錄回填
			rooms.GET("/:id/online", roomHandler.GetRoomOnline)       // 在線成員數
		}

		// 一對一聊天
		chats := authorized.Group("/chats")
		{
			chats.GET("/direct/:peer", roomHandler.GetDirectRoom) // 推導一對一房間 ID
		}
	}
}
