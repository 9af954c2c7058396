package models

import "time"

// ConversationRecord captures one resolved question/answer exchange.
// Message holds the encoded exchange text; records are append-only and
// ordered by Timestamp ascending per user.
type ConversationRecord struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
