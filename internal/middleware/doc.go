// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 聊天子系統不做註冊登入，這裡的中間件只負責驗證
// 上游簽發的會話 token，並把會話內容放進請求上下文。
package middleware
