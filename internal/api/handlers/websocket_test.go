package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobchat/internal/api"
	"jobchat/internal/api/handlers"
	"jobchat/internal/models"
	"jobchat/internal/repository"
	"jobchat/internal/service"
	"jobchat/internal/utils"
)

// memRepo 內存消息存儲，讓端到端測試不依賴外部數據庫
type memRepo struct {
	mu    sync.Mutex
	seq   map[string]int64
	rooms map[string][]models.ChatMessage
}

func newMemRepo() *memRepo {
	return &memRepo{
		seq:   make(map[string]int64),
		rooms: make(map[string][]models.ChatMessage),
	}
}

func (m *memRepo) Append(ctx context.Context, room, author, body, clientTime string) (*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := models.NewChatMessage(room, author, body, clientTime)
	m.seq[room]++
	msg.SequenceID = m.seq[room]
	m.rooms[room] = append(m.rooms[room], msg)
	return &msg, nil
}

func (m *memRepo) History(ctx context.Context, room string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := make([]models.ChatMessage, len(m.rooms[room]))
	copy(messages, m.rooms[room])
	return messages, nil
}

func setupServer(t *testing.T) (*httptest.Server, *service.Services) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	services := service.NewServices(
		&repository.Repositories{Message: newMemRepo()},
		service.GatewayOptions{SendBuffer: 64, WriteTimeout: time.Second},
	)

	r := gin.New()
	api.SetupRoutes(r, services)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, services
}

// dialWS 以指定的顯示名稱建立 WebSocket 連接
func dialWS(t *testing.T, srv *httptest.Server, displayName string) *websocket.Conn {
	t.Helper()

	token, err := utils.GenerateSessionToken(1, displayName)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	header := http.Header{"Authorization": {"Bearer " + token}}

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeEvent(t *testing.T, conn *websocket.Conn, event handlers.ClientEvent) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(event))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) service.Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env service.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestWebSocket_RequiresSession(t *testing.T) {
	srv, _ := setupServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_SendWithoutJoin(t *testing.T) {
	srv, _ := setupServer(t)
	conn := dialWS(t, srv, "alice")

	writeEvent(t, conn, handlers.ClientEvent{Type: "send", Room: "r1", Body: "hello"})

	env := readEnvelope(t, conn)
	assert.Equal(t, "error", env.Type)
	assert.Equal(t, "NotInRoom", env.Kind)
	assert.Equal(t, "r1", env.Room)
}

func TestWebSocket_JoinSendReceiveAndBackfill(t *testing.T) {
	srv, services := setupServer(t)

	alice := dialWS(t, srv, "alice")
	bob := dialWS(t, srv, "bob")

	writeEvent(t, alice, handlers.ClientEvent{Type: "join", Room: "r1"})
	writeEvent(t, bob, handlers.ClientEvent{Type: "join", Room: "r1"})

	// join 沒有回執，等註冊表收斂後再發言
	require.Eventually(t, func() bool {
		return services.Registry.MemberCount("r1") == 2
	}, 2*time.Second, 10*time.Millisecond)

	writeEvent(t, alice, handlers.ClientEvent{
		Type:       "send",
		Room:       "r1",
		Body:       "hello",
		ClientTime: "2026-08-31T10:00:00Z",
	})

	// 雙方（含發送者）各收到一份帶權威序號的消息
	for _, conn := range []*websocket.Conn{alice, bob} {
		env := readEnvelope(t, conn)
		require.Equal(t, "message", env.Type)
		require.NotNil(t, env.Message)
		assert.Equal(t, "alice", env.Message.Author)
		assert.Equal(t, "hello", env.Message.Body)
		assert.Equal(t, int64(1), env.Message.SequenceID)
	}

	// 第三方經歷史服務回填同一份記錄
	token, err := utils.GenerateSessionToken(3, "carol")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/rooms/r1/messages", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var transcript []models.ChatMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&transcript))
	require.Len(t, transcript, 1)
	assert.Equal(t, int64(1), transcript[0].SequenceID)
}

func TestWebSocket_DisconnectCleansMembership(t *testing.T) {
	srv, services := setupServer(t)

	alice := dialWS(t, srv, "alice")
	bob := dialWS(t, srv, "bob")

	writeEvent(t, alice, handlers.ClientEvent{Type: "join", Room: "r1"})
	writeEvent(t, bob, handlers.ClientEvent{Type: "join", Room: "r1"})

	require.Eventually(t, func() bool {
		return services.Registry.MemberCount("r1") == 2
	}, 2*time.Second, 10*time.Millisecond)

	// 不辭而別，交給斷線檢測清理
	bob.Close()

	require.Eventually(t, func() bool {
		return services.Registry.MemberCount("r1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	writeEvent(t, alice, handlers.ClientEvent{Type: "send", Room: "r1", Body: "still here"})

	env := readEnvelope(t, alice)
	assert.Equal(t, "message", env.Type)
	assert.Equal(t, int64(1), env.Message.SequenceID)
}
