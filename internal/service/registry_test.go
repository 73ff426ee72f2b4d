package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomRegistry_JoinIsIdempotent(t *testing.T) {
	registry := NewRoomRegistry()

	registry.Join("r1", "c1")
	registry.Join("r1", "c1")

	// 重複加入不改變成員數
	assert.Equal(t, 1, registry.MemberCount("r1"))
	assert.True(t, registry.Contains("r1", "c1"))
}

func TestRoomRegistry_LeaveIsIdempotent(t *testing.T) {
	registry := NewRoomRegistry()

	// 離開從未加入的房間是無操作
	assert.False(t, registry.Leave("r1", "c1"))

	registry.Join("r1", "c1")
	registry.Join("r1", "c2")

	assert.False(t, registry.Leave("r1", "c1"))
	assert.False(t, registry.Leave("r1", "c1"))
	assert.Equal(t, 1, registry.MemberCount("r1"))
}

func TestRoomRegistry_EmptyRoomIsPruned(t *testing.T) {
	registry := NewRoomRegistry()

	registry.Join("r1", "c1")

	// 最後一位成員離開時房間從內存回收
	assert.True(t, registry.Leave("r1", "c1"))
	assert.Equal(t, 0, registry.MemberCount("r1"))
	assert.Empty(t, registry.Members("r1"))
}

func TestRoomRegistry_LeaveAll(t *testing.T) {
	registry := NewRoomRegistry()

	registry.Join("r1", "c1")
	registry.Join("r2", "c1")
	registry.Join("r2", "c2")

	emptied := registry.LeaveAll("c1")

	// 只有 r1 因此變空
	assert.ElementsMatch(t, []string{"r1"}, emptied)
	assert.False(t, registry.Contains("r1", "c1"))
	assert.False(t, registry.Contains("r2", "c1"))
	assert.Equal(t, 1, registry.MemberCount("r2"))

	// 再次調用是無操作
	assert.Empty(t, registry.LeaveAll("c1"))
}

func TestRoomRegistry_MembersSnapshot(t *testing.T) {
	registry := NewRoomRegistry()

	registry.Join("r1", "c1")
	registry.Join("r1", "c2")

	members := registry.Members("r1")
	assert.ElementsMatch(t, []string{"c1", "c2"}, members)

	// 快照不跟隨後續變更
	registry.Leave("r1", "c2")
	assert.Len(t, members, 2)
	assert.ElementsMatch(t, []string{"c1"}, registry.Members("r1"))
}
