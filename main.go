package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"jobchat/internal/api"
	"jobchat/internal/models"
	"jobchat/internal/repository"
	"jobchat/internal/service"
	"jobchat/internal/storage"
	"jobchat/pkg/config"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化資料庫連接
	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// 自動遷移資料庫結構
	// 消息表帶 (room, sequence_id) 唯一索引，房間內的順序掃描靠它
	if err := db.AutoMigrate(&models.ChatMessage{}); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// 初始化 repositories 與 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, service.GatewayOptions{
		SendBuffer:   cfg.Chat.SendBuffer,
		WriteTimeout: cfg.Chat.WriteTimeout,
	})

	// 設置 Gin 路由
	r := gin.Default()
	api.SetupRoutes(r, services)

	// 啟動伺服器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
