package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobchat/internal/models"
	"jobchat/internal/service"
)

// RoomHandler 處理房間狀態相關的請求
type RoomHandler struct {
	registry *service.RoomRegistry
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(registry *service.RoomRegistry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// GetRoomOnline 返回房間當前的在線成員數
func (h *RoomHandler) GetRoomOnline(c *gin.Context) {
	room := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"room":   room,
		"online": h.registry.MemberCount(room),
	})
}

// GetDirectRoom 返回當前用戶與指定對象的一對一房間 ID。
// 兩邊無論誰來查詢，推導出的房間都相同。
func (h *RoomHandler) GetDirectRoom(c *gin.Context) {
	peer := c.Param("peer")
	if strings.TrimSpace(peer) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少對話對象"})
		return
	}

	displayName, _ := c.Get("displayName")
	me, _ := displayName.(string)

	c.JSON(http.StatusOK, gin.H{"room": models.DirectRoomID(me, peer)})
}
