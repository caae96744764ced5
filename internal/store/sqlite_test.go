package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/drcloud/assistant/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStoreCreateAndGetSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	session, err := store.CreateSession(ctx, "", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.UserID == "" || session.SessionID == "" {
		t.Fatalf("expected generated ids, got %+v", session)
	}

	got, err := store.GetSession(ctx, session.UserID, session.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.SessionID != session.SessionID {
		t.Fatalf("unexpected session: %+v", got)
	}

	if _, err := store.CreateSession(ctx, session.UserID, session.SessionID); !errors.Is(err, domain.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

func TestSQLiteStoreAppendOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	session, err := store.CreateSession(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	const n = 20
	for i := 0; i < n; i++ {
		turn := &domain.Turn{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		}
		if err := store.AppendTurn(ctx, session.UserID, session.SessionID, turn); err != nil {
			t.Fatalf("AppendTurn %d failed: %v", i, err)
		}
	}

	history, err := store.GetHistory(ctx, session.UserID, session.SessionID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != n {
		t.Fatalf("expected %d turns, got %d", n, len(history))
	}
	for i, turn := range history {
		if turn.Content != fmt.Sprintf("message %d", i) {
			t.Fatalf("turn %d out of order: %q", i, turn.Content)
		}
		if turn.Seq != int64(i+1) {
			t.Fatalf("turn %d has seq %d", i, turn.Seq)
		}
	}
}

func TestSQLiteStoreConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	const sessions = 8
	const perSession = 10

	for i := 0; i < sessions; i++ {
		if _, err := store.CreateSession(ctx, "u1", fmt.Sprintf("s%d", i)); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, sessions*perSession)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("s%d", i)
			for j := 0; j < perSession; j++ {
				turn := &domain.Turn{Role: domain.RoleUser, Content: fmt.Sprintf("m%d", j)}
				if err := store.AppendTurn(ctx, "u1", sid, turn); err != nil {
					errs <- err
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent append failed: %v", err)
	}

	for i := 0; i < sessions; i++ {
		history, err := store.GetHistory(ctx, "u1", fmt.Sprintf("s%d", i))
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != perSession {
			t.Fatalf("session s%d: expected %d turns, got %d", i, perSession, len(history))
		}
		for j, turn := range history {
			if turn.Content != fmt.Sprintf("m%d", j) {
				t.Fatalf("session s%d turn %d out of order: %q", i, j, turn.Content)
			}
		}
	}
}

func TestSQLiteStoreEmptyHistoryVsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.CreateSession(ctx, "u1", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	history, err := store.GetHistory(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("GetHistory on empty session failed: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Fatalf("expected empty non-nil history, got %#v", history)
	}

	if _, err := store.GetHistory(ctx, "u1", "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.AppendTurn(ctx, "u1", "missing", &domain.Turn{Role: domain.RoleUser, Content: "x"}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on append, got %v", err)
	}
}

func TestSQLiteStoreDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.CreateSession(ctx, "u1", "s1"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.AppendTurn(ctx, "u1", "s1", &domain.Turn{Role: domain.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}

	if err := store.DeleteSession(ctx, "u1", "s1", false); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := store.GetSession(ctx, "u1", "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}

	// Idempotent when not strict.
	if err := store.DeleteSession(ctx, "u1", "s1", false); err != nil {
		t.Fatalf("repeat delete should succeed: %v", err)
	}
	// Strict mode reports the absence.
	if err := store.DeleteSession(ctx, "u1", "s1", true); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound in strict mode, got %v", err)
	}
}
