package models

// 房間在首次加入時隱式建立，沒有獨立的房間表；
// 持久化的歷史以 ChatMessage.Room 為鍵保留。

// DirectRoomID 根據兩位參與者推導一對一聊天的房間 ID。
// 名稱按字典序排序後拼接，確保雙方推導出同一個房間。
func DirectRoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "dm:" + a + ":" + b
}
