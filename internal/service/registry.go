package service

import "sync"

// RoomRegistry 維護房間到在線連接的映射，是「這次廣播要發給誰」的唯一事實來源。
// 所有成員關係的變更都經過這裡的鎖，連接之間互不引用，
// 廣播途中有人離開也不會留下懸空引用。
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]bool // roomID -> connectionID 集合
	conns map[string]map[string]bool // connectionID -> roomID 集合
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]map[string]bool),
		conns: make(map[string]map[string]bool),
	}
}

// Join 將連接加入房間，重複加入是無操作。
// 房間在第一位成員加入時隱式建立。
func (r *RoomRegistry) Join(room, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]bool)
	}
	r.rooms[room][connID] = true

	if r.conns[connID] == nil {
		r.conns[connID] = make(map[string]bool)
	}
	r.conns[connID][room] = true
}

// Leave 將連接移出房間，未曾加入則無操作。
// 返回房間是否因此變空，空房間從內存中回收（持久化的歷史不受影響）。
func (r *RoomRegistry) Leave(room, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(room, connID)
}

// LeaveAll 在斷線時將連接移出它加入的每一個房間，返回因此變空的房間
func (r *RoomRegistry) LeaveAll(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var emptied []string
	for room := range r.conns[connID] {
		if r.leaveLocked(room, connID) {
			emptied = append(emptied, room)
		}
	}
	delete(r.conns, connID)
	return emptied
}

func (r *RoomRegistry) leaveLocked(room, connID string) bool {
	members, ok := r.rooms[room]
	if !ok {
		return false
	}
	delete(members, connID)
	if rooms, ok := r.conns[connID]; ok {
		delete(rooms, room)
	}
	if len(members) == 0 {
		delete(r.rooms, room)
		return true
	}
	return false
}

// Members 返回房間成員的快照。快照與使用之間成員可能變動，
// 調用方須將「發給已離線成員」視為靜默丟棄而非廣播失敗。
func (r *RoomRegistry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.rooms[room]))
	for connID := range r.rooms[room] {
		members = append(members, connID)
	}
	return members
}

// Contains 檢查連接是否已加入房間
func (r *RoomRegistry) Contains(room, connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[room][connID]
}

// MemberCount 返回房間當前的在線成員數
func (r *RoomRegistry) MemberCount(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
