package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"quotebot/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return repo
}

func TestGetSessionReturnsNilWhenAbsent(t *testing.T) {
	repo := newTestStore(t)

	session, err := repo.GetSession(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session != nil {
		t.Errorf("Expected nil for absent session, got %+v", session)
	}
}

func TestSaveAndGetSessionRoundtrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	income := 5000.0
	session := domain.NewSession("conv-1")
	session.Step = domain.StepConfirm
	session.Data = domain.Applicant{FirstName: "Alice", LastName: "Bob", MonthlyIncome: &income}

	if err := repo.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := repo.GetSession(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected session, got nil")
	}
	if loaded.Step != domain.StepConfirm {
		t.Errorf("Expected step confirm, got %q", loaded.Step)
	}
	if loaded.Data.FirstName != "Alice" || loaded.Data.LastName != "Bob" {
		t.Errorf("Unexpected data: %+v", loaded.Data)
	}
	if loaded.Data.MonthlyIncome == nil || *loaded.Data.MonthlyIncome != 5000 {
		t.Errorf("Unexpected income: %+v", loaded.Data.MonthlyIncome)
	}
}

func TestSaveSessionUpserts(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	session := domain.NewSession("conv-1")
	if err := repo.SaveSession(ctx, session); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	session.Step = domain.StepIncome
	session.Data.FirstName = "Alice"
	if err := repo.SaveSession(ctx, session); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := repo.GetSession(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if loaded.Step != domain.StepIncome || loaded.Data.FirstName != "Alice" {
		t.Errorf("Expected updated record, got %+v", loaded)
	}
}

func TestGetSessionRejectsUnknownStep(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	session := domain.NewSession("conv-1")
	session.Step = domain.Step("limbo")
	if err := repo.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	_, err := repo.GetSession(ctx, "conv-1")
	if !errors.Is(err, ErrCorruptStep) {
		t.Errorf("Expected ErrCorruptStep, got %v", err)
	}
}

func TestDeleteStaleSessions(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	stale := domain.NewSession("conv-stale")
	if err := repo.SaveSession(ctx, stale); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	fresh := domain.NewSession("conv-fresh")
	if err := repo.SaveSession(ctx, fresh); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	// Everything is fresh; a long TTL deletes nothing.
	deleted, err := repo.DeleteStaleSessions(ctx, time.Hour)
	if err != nil {
		t.Fatalf("DeleteStaleSessions failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected 0 deletions, got %d", deleted)
	}

	// After waiting past a short TTL everything is stale.
	time.Sleep(1100 * time.Millisecond)
	deleted, err = repo.DeleteStaleSessions(ctx, 1*time.Second)
	if err != nil {
		t.Fatalf("DeleteStaleSessions failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deletions, got %d", deleted)
	}

	loaded, err := repo.GetSession(ctx, "conv-stale")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected stale session gone, got %+v", loaded)
	}
}
