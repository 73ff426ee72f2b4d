package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobchat/internal/service"
)

// HistoryHandler 處理聊天記錄查詢的請求
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler 創建一個新的 HistoryHandler 實例
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// GetRoomHistory 返回房間按序號排序的完整聊天記錄。
// 剛加入房間的客戶端用它回填舊消息，與實時廣播互不干擾。
func (h *HistoryHandler) GetRoomHistory(c *gin.Context) {
	room := c.Param("id")

	messages, err := h.history.RoomTranscript(c.Request.Context(), room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "讀取聊天記錄失敗"})
		return
	}

	c.JSON(http.StatusOK, messages)
}
