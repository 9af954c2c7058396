package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"askrelay/internal/history"
	"askrelay/internal/models"
)

type fakeSession struct {
	faq       map[string]string
	records   []models.ConversationRecord
	appended  []models.ConversationRecord
	findErr   error
	loadErr   error
	appendErr error
	closed    bool
}

func (s *fakeSession) FindFAQAnswer(ctx context.Context, question string) (string, bool, error) {
	if s.findErr != nil {
		return "", false, s.findErr
	}
	answer, ok := s.faq[question]
	return answer, ok, nil
}

func (s *fakeSession) LoadHistory(ctx context.Context, userID string) ([]models.ConversationRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.records, nil
}

func (s *fakeSession) AppendConversation(ctx context.Context, record models.ConversationRecord) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, record)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeStore struct {
	session    *fakeSession
	sessionErr error
	acquired   int
}

func (s *fakeStore) Session(ctx context.Context) (StoreSession, error) {
	if s.sessionErr != nil {
		return nil, s.sessionErr
	}
	s.acquired++
	return s.session, nil
}

type fakeGateway struct {
	answer string
	err    error
	turns  []models.Turn
	calls  int
}

func (g *fakeGateway) Complete(ctx context.Context, turns []models.Turn) (string, error) {
	g.calls++
	g.turns = turns
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func TestAnswerFAQHitSkipsGateway(t *testing.T) {
	session := &fakeSession{faq: map[string]string{"What is S3?": "Object storage."}}
	gw := &fakeGateway{answer: "should not be used"}
	r := New(&fakeStore{session: session}, gw, "persona")

	answer, err := r.Answer(context.Background(), "What is S3?", "u1")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "Object storage." {
		t.Fatalf("expected FAQ answer, got %q", answer)
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be invoked on FAQ hit, got %d calls", gw.calls)
	}
	if len(session.appended) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(session.appended))
	}
	rec := session.appended[0]
	if rec.UserID != "u1" {
		t.Fatalf("unexpected user id %q", rec.UserID)
	}
	if rec.Message != "Question: What is S3?\nAnswer: Object storage." {
		t.Fatalf("unexpected persisted message %q", rec.Message)
	}
	if !session.closed {
		t.Fatalf("session must be released after resolution")
	}
}

func TestAnswerFallbackInvokesGateway(t *testing.T) {
	session := &fakeSession{faq: map[string]string{}}
	gw := &fakeGateway{answer: "It's a cloud database."}
	r := New(&fakeStore{session: session}, gw, "persona")

	answer, err := r.Answer(context.Background(), "What is RDS?", "u2")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "It's a cloud database." {
		t.Fatalf("expected generated answer, got %q", answer)
	}
	if gw.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", gw.calls)
	}
	if len(gw.turns) != 2 {
		t.Fatalf("expected system turn plus question, got %d turns", len(gw.turns))
	}
	if gw.turns[0].Role != models.RoleSystem || gw.turns[0].Content != "persona" {
		t.Fatalf("expected persona system turn first, got %+v", gw.turns[0])
	}
	last := gw.turns[len(gw.turns)-1]
	if last.Role != models.RoleUser || last.Content != "What is RDS?" {
		t.Fatalf("expected final user turn for the question, got %+v", last)
	}
	if len(session.appended) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(session.appended))
	}
	if session.appended[0].Message != "Question: What is RDS?\nAnswer: It's a cloud database." {
		t.Fatalf("unexpected persisted message %q", session.appended[0].Message)
	}
}

func TestAnswerFallbackCarriesHistory(t *testing.T) {
	session := &fakeSession{
		faq: map[string]string{},
		records: []models.ConversationRecord{
			{UserID: "u3", Message: history.FormatExchange("old q", "old a")},
			{UserID: "u3", Message: "malformed row"},
		},
	}
	gw := &fakeGateway{answer: "generated"}
	r := New(&fakeStore{session: session}, gw, "persona")

	if _, err := r.Answer(context.Background(), "new q", "u3"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	// system + reconstructed pair + current question; malformed row dropped
	if len(gw.turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(gw.turns))
	}
	if gw.turns[1].Content != "old q" || gw.turns[2].Content != "old a" {
		t.Fatalf("history not reconstructed: %+v", gw.turns[1:3])
	}
}

func TestAnswerEmptyQuestion(t *testing.T) {
	store := &fakeStore{session: &fakeSession{}}
	gw := &fakeGateway{}
	r := New(store, gw, "persona")

	if _, err := r.Answer(context.Background(), "", "u1"); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}
	if store.acquired != 0 {
		t.Fatalf("store must not be touched for empty input")
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be touched for empty input")
	}
}

func TestAnswerStoreFailureBeforeGateway(t *testing.T) {
	session := &fakeSession{findErr: errors.New("connection refused")}
	gw := &fakeGateway{answer: "unused"}
	r := New(&fakeStore{session: session}, gw, "persona")

	if _, err := r.Answer(context.Background(), "q", "u1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not run after store failure")
	}
	if len(session.appended) != 0 {
		t.Fatalf("nothing may be persisted after store failure")
	}
	if !session.closed {
		t.Fatalf("session must be released on failure")
	}
}

func TestAnswerHistoryLoadFailure(t *testing.T) {
	session := &fakeSession{faq: map[string]string{}, loadErr: errors.New("query timeout")}
	gw := &fakeGateway{}
	r := New(&fakeStore{session: session}, gw, "persona")

	if _, err := r.Answer(context.Background(), "q", "u1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not run after history load failure")
	}
}

func TestAnswerGatewayFailurePersistsNothing(t *testing.T) {
	session := &fakeSession{faq: map[string]string{}}
	gw := &fakeGateway{err: errors.New("rate limited")}
	r := New(&fakeStore{session: session}, gw, "persona")

	if _, err := r.Answer(context.Background(), "q", "u1"); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if len(session.appended) != 0 {
		t.Fatalf("no record may be persisted after gateway failure, got %d", len(session.appended))
	}
	if !session.closed {
		t.Fatalf("session must be released on failure")
	}
}

func TestAnswerPersistFailureReturnsError(t *testing.T) {
	session := &fakeSession{faq: map[string]string{}, appendErr: errors.New("disk full")}
	gw := &fakeGateway{answer: "computed"}
	r := New(&fakeStore{session: session}, gw, "persona")

	answer, err := r.Answer(context.Background(), "q", "u1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if answer != "" {
		t.Fatalf("caller must not receive the answer on persist failure, got %q", answer)
	}
}

func TestAnswerSessionAcquireFailure(t *testing.T) {
	r := New(&fakeStore{sessionErr: errors.New("pool exhausted")}, &fakeGateway{}, "persona")
	if _, err := r.Answer(context.Background(), "q", "u1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAnswerTimestampSecondPrecision(t *testing.T) {
	session := &fakeSession{faq: map[string]string{"q": "a"}}
	r := New(&fakeStore{session: session}, &fakeGateway{}, "persona")
	fixed := time.Date(2024, 5, 1, 9, 30, 15, 987654321, time.Local)
	r.now = func() time.Time { return fixed }

	if _, err := r.Answer(context.Background(), "q", "u1"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	got := session.appended[0].Timestamp
	if got != fixed.Truncate(time.Second) {
		t.Fatalf("expected second-precision timestamp, got %v", got)
	}
	if got.Nanosecond() != 0 {
		t.Fatalf("timestamp must not carry sub-second precision: %v", got)
	}
}
