package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"askrelay/internal/models"
)

// Service owns the pooled database handle for FAQ and conversation data.
type Service struct {
	db *sql.DB
}

// NewService builds a new store service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Session pins one pooled connection so a full resolution (history read,
// generation, persist) runs on a single connection. Callers must Close the
// session on every exit path to return the connection to the pool.
func (s *Service) Session(ctx context.Context) (*Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Session is one pinned pool connection with the store operations on it.
type Session struct {
	conn *sql.Conn
}

// Close releases the pinned connection back to the pool.
func (c *Session) Close() error {
	return c.conn.Close()
}

// FindFAQAnswer looks up the answer for the exact question text. The match
// is case-sensitive with no normalization; found is false when no row
// matches.
func (c *Session) FindFAQAnswer(ctx context.Context, question string) (string, bool, error) {
	var answer string
	err := c.conn.QueryRowContext(ctx,
		`SELECT answer FROM faqs WHERE question = ? LIMIT 1`,
		question,
	).Scan(&answer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find faq answer: %w", err)
	}
	return answer, true, nil
}

// LoadHistory returns the user's conversation records oldest first. An
// unknown user yields an empty slice, not an error.
func (c *Session) LoadHistory(ctx context.Context, userID string) ([]models.ConversationRecord, error) {
	rows, err := c.conn.QueryContext(ctx,
		`SELECT id, user_id, message, timestamp FROM conversations WHERE user_id = ? ORDER BY timestamp ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var records []models.ConversationRecord
	for rows.Next() {
		var r models.ConversationRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Message, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AppendConversation inserts a new conversation row. There is no
// deduplication; every call adds a row.
func (c *Session) AppendConversation(ctx context.Context, record models.ConversationRecord) error {
	if _, err := c.conn.ExecContext(ctx,
		`INSERT INTO conversations (user_id, message, timestamp) VALUES (?, ?, ?)`,
		record.UserID, record.Message, record.Timestamp,
	); err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}
