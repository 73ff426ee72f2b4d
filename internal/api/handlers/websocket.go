package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"jobchat/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 注意：在生產環境中，應該檢查 origin
	},
}

// ClientEvent 客戶端經 WebSocket 發來的事件
type ClientEvent struct {
	Type       string `json:"type"` // "join" / "leave" / "send"
	Room       string `json:"room"`
	Body       string `json:"body,omitempty"`
	ClientTime string `json:"client_time,omitempty"`
}

// WebSocketHandler 處理 WebSocket 連接，把傳輸層事件翻譯成閘道調用
type WebSocketHandler struct {
	gateway *service.ConnectionGateway
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(gateway *service.ConnectionGateway) *WebSocketHandler {
	return &WebSocketHandler{gateway: gateway}
}

// HandleWebSocket 處理 WebSocket 連接請求。
// 連接建立後不屬於任何房間，客戶端用 join 事件加入；
// 斷線（包括心跳超時的異常斷線）一律觸發 Disconnect 清理成員關係。
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失敗時響應已經寫出
		return
	}

	displayName, _ := c.Get("displayName")
	author, _ := displayName.(string)

	client := h.gateway.Connect(author)

	defer func() {
		h.gateway.Disconnect(client.ID)
		conn.Close()
	}()

	go h.writePump(conn, client)
	h.readPump(conn, client)
}

// readPump 持續監聽並處理從客戶端接收的事件
func (h *WebSocketHandler) readPump(conn *websocket.Conn, client *service.Client) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Printf("event parse error: %v", err)
			continue
		}

		h.dispatch(client, event)
	}
}

// dispatch 按事件類型調用閘道。
// 驗證與持久化錯誤只回給發起的連接，不影響房間內其他成員。
func (h *WebSocketHandler) dispatch(client *service.Client, event ClientEvent) {
	switch event.Type {
	case "join":
		if err := h.gateway.JoinRoom(client.ID, event.Room); err != nil {
			h.gateway.Reply(client.ID, service.ErrorEnvelope(event.Room, err))
		}
	case "leave":
		h.gateway.LeaveRoom(client.ID, event.Room)
	case "send":
		if _, err := h.gateway.SendMessage(client.ID, event.Room, event.Body, event.ClientTime); err != nil {
			h.gateway.Reply(client.ID, service.ErrorEnvelope(event.Room, err))
		}
		// 成功時不需要單獨回執，廣播會回顯給發送者本人
	default:
		log.Printf("unknown event type: %q", event.Type)
	}
}

// writePump 處理向客戶端發送事件的邏輯
func (h *WebSocketHandler) writePump(conn *websocket.Conn, client *service.Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			payload, err := json.Marshal(env)
			if err != nil {
				log.Printf("envelope encoding error: %v", err)
				continue
			}

			if _, err := w.Write(payload); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
