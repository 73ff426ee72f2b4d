package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatMessage 代表一則聊天消息，同時滿足 WebSocket 傳輸和數據庫存儲需求。
// SequenceID 由存儲層在寫入時分配，是房間內消息順序的唯一依據；
// ClientTime 是發送端自報的時間，僅供顯示，不參與排序。
type ChatMessage struct {
	gorm.Model `json:"-"`
	Room       string    `json:"room" gorm:"type:varchar(128);uniqueIndex:idx_room_seq,priority:1"`
	Author     string    `json:"author" gorm:"type:varchar(128)"`
	Body       string    `json:"body" gorm:"type:text"`
	ClientTime string    `json:"client_time" gorm:"type:varchar(64)"`
	ServerTime time.Time `json:"server_time"`
	SequenceID int64     `json:"sequence_id" gorm:"uniqueIndex:idx_room_seq,priority:2"`
}

// NewChatMessage 創建一則尚未持久化的聊天消息。
// ServerTime 在此刻定格，SequenceID 留待存儲層分配。
func NewChatMessage(room, author, body, clientTime string) ChatMessage {
	return ChatMessage{
		Room:       room,
		Author:     author,
		Body:       body,
		ClientTime: clientTime,
		ServerTime: time.Now(),
	}
}
