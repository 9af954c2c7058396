// Package resolver implements the answer-resolution pipeline: FAQ lookup
// first, completion-service fallback with reconstructed history, then
// persistence of the exchange.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"askrelay/internal/history"
	"askrelay/internal/models"
	"askrelay/internal/store"
)

var (
	// ErrInvalidQuestion reports empty input; it is raised before any
	// store or gateway call.
	ErrInvalidQuestion = errors.New("question must not be empty")
	// ErrStoreUnavailable covers connectivity and query failures,
	// including the trailing persistence write.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUpstreamUnavailable covers any completion-service failure.
	ErrUpstreamUnavailable = errors.New("completion service unavailable")
)

// StoreSession is one acquired store connection scoped to a resolution.
type StoreSession interface {
	FindFAQAnswer(ctx context.Context, question string) (string, bool, error)
	LoadHistory(ctx context.Context, userID string) ([]models.ConversationRecord, error)
	AppendConversation(ctx context.Context, record models.ConversationRecord) error
	Close() error
}

// Store hands out scoped sessions against the shared connection pool.
type Store interface {
	Session(ctx context.Context) (StoreSession, error)
}

// Gateway is the opaque completion capability.
type Gateway interface {
	Complete(ctx context.Context, turns []models.Turn) (string, error)
}

// NewSQLStore adapts the SQL store service to the Store capability.
func NewSQLStore(s *store.Service) Store {
	return sqlStore{inner: s}
}

type sqlStore struct {
	inner *store.Service
}

func (s sqlStore) Session(ctx context.Context) (StoreSession, error) {
	return s.inner.Session(ctx)
}

// Resolver orchestrates the lookup-fallback-persist policy.
type Resolver struct {
	store        Store
	gateway      Gateway
	systemPrompt string
	now          func() time.Time
}

// New constructs a Resolver over the given store and gateway. The system
// prompt is the persona directive prefixed to every assembled prompt.
func New(store Store, gateway Gateway, systemPrompt string) *Resolver {
	return &Resolver{
		store:        store,
		gateway:      gateway,
		systemPrompt: systemPrompt,
		now:          time.Now,
	}
}

// Answer resolves a question for a user: an exact FAQ match wins without
// touching the gateway; otherwise the user's history plus the question is
// sent to the completion service. Either way the exchange is persisted
// before the answer is returned, and a persist failure surfaces as an
// error even though an answer was computed. A gateway failure persists
// nothing.
func (r *Resolver) Answer(ctx context.Context, question, userID string) (string, error) {
	if question == "" {
		return "", ErrInvalidQuestion
	}

	session, err := r.store.Session(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer session.Close()

	answer, found, err := session.FindFAQAnswer(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		records, err := session.LoadHistory(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		turns := history.BuildTurns(r.systemPrompt, records, question)
		answer, err = r.gateway.Complete(ctx, turns)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}

	record := models.ConversationRecord{
		UserID:  userID,
		Message: history.FormatExchange(question, answer),
		// Second precision, stored as a naive local timestamp.
		Timestamp: r.now().Truncate(time.Second),
	}
	if err := session.AppendConversation(ctx, record); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return answer, nil
}
