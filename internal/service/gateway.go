package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobchat/internal/models"
	"jobchat/internal/repository"
)

// Envelope 推送給客戶端的外送事件，消息和錯誤走同一條通道
type Envelope struct {
	Type    string              `json:"type"` // "message" 或 "error"
	Kind    string              `json:"kind,omitempty"`
	Room    string              `json:"room,omitempty"`
	Message *models.ChatMessage `json:"message,omitempty"`
}

// ErrorEnvelope 將發送錯誤包裝成只回給發送者的事件
func ErrorEnvelope(room string, err error) Envelope {
	return Envelope{Type: "error", Kind: KindOf(err), Room: room}
}

// Client 代表一條在線連接。消息經由緩衝通道異步送出，
// 傳輸層（WebSocket writePump 或測試）負責消費。
type Client struct {
	ID     string
	Author string
	Send   chan Envelope
}

// GatewayOptions 閘道的調校參數
type GatewayOptions struct {
	SendBuffer   int
	WriteTimeout time.Duration
}

// ConnectionGateway 接收客戶端事件，驗證並定序入站消息，
// 觸發持久化與廣播。同一房間的發送逐一處理以保證順序，
// 不同房間完全並行。
type ConnectionGateway struct {
	registry *RoomRegistry
	messages repository.MessageRepository
	opts     GatewayOptions

	mu      sync.RWMutex
	clients map[string]*Client

	lockMu    sync.Mutex
	roomLocks map[string]*sync.Mutex
}

func NewConnectionGateway(registry *RoomRegistry, messages repository.MessageRepository, opts GatewayOptions) *ConnectionGateway {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &ConnectionGateway{
		registry:  registry,
		messages:  messages,
		opts:      opts,
		clients:   make(map[string]*Client),
		roomLocks: make(map[string]*sync.Mutex),
	}
}

// Connect 登記一條新連接，初始不屬於任何房間
func (g *ConnectionGateway) Connect(author string) *Client {
	client := &Client{
		ID:     uuid.NewString(),
		Author: author,
		Send:   make(chan Envelope, g.opts.SendBuffer),
	}

	g.mu.Lock()
	g.clients[client.ID] = client
	g.mu.Unlock()

	return client
}

// JoinRoom 將連接加入房間。不自動推送歷史：
// 客戶端要補舊消息須另行調用歷史查詢，避免快照與實時廣播互相競速。
func (g *ConnectionGateway) JoinRoom(connID, room string) error {
	g.mu.RLock()
	_, ok := g.clients[connID]
	g.mu.RUnlock()
	if !ok {
		return ErrUnknownConnection
	}

	g.registry.Join(room, connID)

	// 存活檢查與 Join 之間連接可能恰好被 Disconnect 釋放，
	// 它的 LeaveAll 看不到這次剛寫入的成員關係。
	// 複查一次並撤銷，註冊表不能殘留已死的連接。
	g.mu.RLock()
	_, ok = g.clients[connID]
	g.mu.RUnlock()
	if !ok {
		g.registry.Leave(room, connID)
		return ErrUnknownConnection
	}
	return nil
}

// LeaveRoom 將連接移出房間，未曾加入則無操作
func (g *ConnectionGateway) LeaveRoom(connID, room string) {
	g.registry.Leave(room, connID)
}

// SendMessage 驗證、持久化並廣播一則消息。
// 持久化失敗只回報給發送者，絕不廣播——其他成員看得到
// 而歷史裡查不到的「幽靈消息」是不允許的。
func (g *ConnectionGateway) SendMessage(connID, room, body, clientTime string) (*models.ChatMessage, error) {
	g.mu.RLock()
	client, ok := g.clients[connID]
	g.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownConnection
	}

	if !g.registry.Contains(room, connID) {
		return nil, ErrNotInRoom
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	// 同一房間的發送在這裡串行化，接受順序就是序號順序
	lock := g.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	// 寫入帶超時，慢存儲不能無限期堵住同房間的其他發送者
	ctx, cancel := context.WithTimeout(context.Background(), g.opts.WriteTimeout)
	defer cancel()

	msg, err := g.messages.Append(ctx, room, client.Author, body, clientTime)
	if err != nil {
		log.Printf("message append failed: room=%s err=%v", room, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	g.broadcast(room, msg)
	return msg, nil
}

// Reply 將事件投遞給單一連接，連接已斷開或緩衝寫滿則靜默丟棄。
// 通道的關閉發生在持有寫鎖時，這裡持讀鎖投遞即不會撞上已關閉的通道。
func (g *ConnectionGateway) Reply(connID string, env Envelope) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	client, ok := g.clients[connID]
	if !ok {
		return
	}
	select {
	case client.Send <- env:
	default:
	}
}

// Disconnect 釋放連接並將它移出所有房間。
// 該連接發起的在途發送仍會完成持久化與廣播，
// 斷線只取消它日後的接收。
func (g *ConnectionGateway) Disconnect(connID string) {
	g.mu.Lock()
	client, ok := g.clients[connID]
	if ok {
		delete(g.clients, connID)
		close(client.Send)
	}
	g.mu.Unlock()
	if !ok {
		return
	}

	g.registry.LeaveAll(connID)
}

// broadcast 將已持久化的消息投遞給房間內每一位成員，包括發送者本人，
// 讓發送端 UI 反映權威的序號而不是本地的樂觀回顯。
// 單個目標投遞失敗與其他目標隔離。
func (g *ConnectionGateway) broadcast(room string, msg *models.ChatMessage) {
	env := Envelope{Type: "message", Room: room, Message: msg}

	var stale []string
	g.mu.RLock()
	for _, connID := range g.registry.Members(room) {
		client, ok := g.clients[connID]
		if !ok {
			// 成員快照落後於斷線，靜默丟棄
			continue
		}
		select {
		case client.Send <- env:
		default:
			// 緩衝寫滿表示客戶端已經跟不上，斷開它
			stale = append(stale, connID)
		}
	}
	g.mu.RUnlock()

	for _, connID := range stale {
		log.Printf("send buffer overflow, dropping connection %s", connID)
		g.Disconnect(connID)
	}
}

// roomLock 取得房間的串行化鎖，首位發送者按需建立。
// 鎖在進程生命週期內保留：房間清空就回收的話，
// 清空瞬間仍在途的發送會和新加入者的發送各持一把鎖並行，
// 廣播順序可能短暫倒置。每把鎖只佔幾十字節，保留是便宜的一邊。
func (g *ConnectionGateway) roomLock(room string) *sync.Mutex {
	g.lockMu.Lock()
	defer g.lockMu.Unlock()

	lock, ok := g.roomLocks[room]
	if !ok {
		lock = &sync.Mutex{}
		g.roomLocks[room] = lock
	}
	return lock
}
