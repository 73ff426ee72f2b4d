package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jobchat/internal/models"
	"jobchat/internal/storage"
)

// appendRetries 序號衝突時的重試上限。
// 衝突只會在兩個事務同時讀到相同的 MAX(sequence_id) 時發生，
// 唯一索引 (room, sequence_id) 保證最多一方成功。
const appendRetries = 3

// MessageRepository 是消息的持久化入口。
// Append 必須對單一房間原子：並發寫入永遠不會產生重複或跳號的序號。
type MessageRepository interface {
	Append(ctx context.Context, room, author, body, clientTime string) (*models.ChatMessage, error)
	History(ctx context.Context, room string) ([]models.ChatMessage, error)
}

type messageRepository struct {
	db *storage.PostgresDB
}

func NewMessageRepository(db *storage.PostgresDB) MessageRepository {
	return &messageRepository{db: db}
}

// Append 分配 ServerTime 與該房間的下一個序號並寫入。
// 序號在事務內以 MAX+1 計算；撞上唯一索引表示有並發寫入者
// 搶先拿走了同一個序號，重讀重試即可。
func (r *messageRepository) Append(ctx context.Context, room, author, body, clientTime string) (*models.ChatMessage, error) {
	var lastErr error
	for i := 0; i < appendRetries; i++ {
		msg := models.NewChatMessage(room, author, body, clientTime)

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int64
			if err := tx.Model(&models.ChatMessage{}).
				Where("room = ?", room).
				Select("COALESCE(MAX(sequence_id), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			msg.SequenceID = last + 1
			return tx.Create(&msg).Error
		})
		if err == nil {
			return &msg, nil
		}
		lastErr = err
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	return nil, lastErr
}

// History 按序號升冪返回房間的完整記錄，空房間返回空切片
func (r *messageRepository) History(ctx context.Context, room string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("room = ?", room).
		Order("sequence_id asc").
		Find(&messages).Error
	return messages, err
}
