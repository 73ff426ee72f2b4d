package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Chat   ChatConfig
}

type ServerConfig struct {
	Address string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
}

// ChatConfig 聊天子系統的調校參數
type ChatConfig struct {
	// SendBuffer 每條連接的外送消息緩衝大小，寫滿即視為客戶端失聯
	SendBuffer int
	// WriteTimeout 單次消息持久化的超時，超時後向發送者回報失敗
	WriteTimeout time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./pkg/config")

	viper.SetDefault("chat.sendbuffer", 256)
	viper.SetDefault("chat.writetimeout", "5s")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
