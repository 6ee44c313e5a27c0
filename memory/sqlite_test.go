package memory

import (
	"context"
	"fmt"
	"testing"
)

func newTestSqlite(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSqlitePutAndSearch(t *testing.T) {
	store := newTestSqlite(t)
	ctx := context.Background()

	rec := NewRecord("使用者互動記錄: 我喜歡喝黑咖啡", TypeInteraction)
	if err := store.Put(ctx, "user-1", rec); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Search(ctx, "user-1", "黑咖啡", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Text != rec.Text || got[0].Type != TypeInteraction {
		t.Errorf("record mismatch: %+v", got[0])
	}
}

func TestSqliteSearchLimitsAndIsolates(t *testing.T) {
	store := newTestSqlite(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := NewRecord(fmt.Sprintf("使用者互動記錄: 筆記 %d", i), TypeInteraction)
		// Distinct timestamps so recency ordering is deterministic.
		rec.Timestamp = fmt.Sprintf("2026-08-29T10:00:0%dZ", i)
		if err := store.Put(ctx, "user-1", rec); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}
	other := NewRecord("使用者互動記錄: 別人的筆記", TypeInteraction)
	if err := store.Put(ctx, "user-2", other); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Search(ctx, "user-1", "筆記", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("limit not applied: got %d", len(got))
	}
	if got[0].Text != "使用者互動記錄: 筆記 4" {
		t.Errorf("not recency ordered: %q", got[0].Text)
	}
	for _, rec := range got {
		if rec.Text == other.Text {
			t.Error("records leaked across users")
		}
	}
}

func TestSqliteSearchFallsBackToRecent(t *testing.T) {
	store := newTestSqlite(t)
	ctx := context.Background()

	if err := store.Put(ctx, "user-1", NewRecord("使用者互動記錄: 我偏好簡短回覆", TypeInteraction)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Search(ctx, "user-1", "完全不相關的查詢", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("fallback to recent records missing, got %d", len(got))
	}
}
