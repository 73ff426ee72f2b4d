package service

import "errors"

// 發送路徑的錯誤分類。這些錯誤只回報給發起的連接，
// 永遠不會影響房間內其他成員的廣播。
var (
	// ErrNotInRoom 未加入房間就嘗試發言，客戶端應先 join 再重試
	ErrNotInRoom = errors.New("connection has not joined this room")
	// ErrEmptyMessage 消息內容去除空白後為空
	ErrEmptyMessage = errors.New("message body is empty")
	// ErrPersistenceFailed 存儲不可用或寫入超時，客戶端可重試；
	// 未持久化的消息絕不廣播
	ErrPersistenceFailed = errors.New("message could not be persisted")
	// ErrUnknownConnection 連接不存在或已斷開
	ErrUnknownConnection = errors.New("unknown connection")
)

// KindOf 將發送錯誤映射為線上協議中的錯誤代號
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrNotInRoom):
		return "NotInRoom"
	case errors.Is(err, ErrEmptyMessage):
		return "EmptyMessage"
	case errors.Is(err, ErrPersistenceFailed):
		return "PersistenceFailed"
	default:
		return "Internal"
	}
}
