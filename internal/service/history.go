package service

import (
	"context"

	"jobchat/internal/models"
	"jobchat/internal/repository"
)

// HistoryService 提供房間的完整聊天記錄，供遲到的客戶端回填。
// 走請求/響應而非推送，與實時廣播路徑解耦：
// 客戶端應先拉歷史再依賴實時消息，或按序號去重。
type HistoryService struct {
	messages repository.MessageRepository
}

func NewHistoryService(messages repository.MessageRepository) *HistoryService {
	return &HistoryService{messages: messages}
}

// RoomTranscript 返回房間按序號升冪的全部消息。
// 沒有歷史的房間返回空切片而非 nil，序列化後是 [] 而不是 null。
func (s *HistoryService) RoomTranscript(ctx context.Context, room string) ([]models.ChatMessage, error) {
	messages, err := s.messages.History(ctx, room)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}
