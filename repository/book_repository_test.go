package repository

import (
	"context"
	"testing"
	"time"

	"bookLendingManagement/internal/testutil"
	"bookLendingManagement/models"
)

func TestBookRepository_CreateSeedsAvailability(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "bookcreate")
	repo := NewBookRepository(d)
	ctx := context.Background()

	cover := "file:///covers/dune.jpg"
	b, err := repo.Create(ctx, &models.Book{Title: "Dune", Author: "Frank Herbert", CoverURL: &cover, Total: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID == "" || b.Available != 3 || b.Total != 3 {
		t.Fatalf("unexpected created book: %+v", b)
	}

	g, err := repo.GetByID(ctx, b.ID)
	if err != nil || g == nil {
		t.Fatalf("get: %v %+v", err, g)
	}
	if g.CoverURL == nil || *g.CoverURL != cover {
		t.Fatalf("cover url lost: %+v", g)
	}

	// Absent cover is valid and scans back as nil.
	b2, err := repo.Create(ctx, &models.Book{Title: "Emma", Author: "Jane Austen", Total: 1})
	if err != nil {
		t.Fatalf("create without cover: %v", err)
	}
	g2, _ := repo.GetByID(ctx, b2.ID)
	if g2.CoverURL != nil {
		t.Fatalf("expected nil cover, got %v", *g2.CoverURL)
	}

	if _, err := repo.Create(ctx, &models.Book{Title: "", Author: "x", Total: 1}); err == nil {
		t.Fatalf("expected error for empty title")
	}
	if _, err := repo.Create(ctx, &models.Book{Title: "x", Author: "y", Total: -1}); err == nil {
		t.Fatalf("expected error for negative total")
	}
}

func TestBookRepository_GetMissing(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "bookmissing")
	repo := NewBookRepository(d)

	b, err := repo.GetByID(context.Background(), "nope")
	if err != nil || b != nil {
		t.Fatalf("expected (nil, nil), got %+v err=%v", b, err)
	}
}

func TestBookRepository_ListNewestFirstWithIDTieBreak(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "booklist")
	repo := NewBookRepository(d)
	ctx := context.Background()

	// Insert directly so two rows share the exact same created_at and the
	// tie must break on id.
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	older := ts.Add(-time.Hour)
	rows := []struct {
		id string
		at time.Time
	}{
		{"aaa", ts},
		{"zzz", ts},
		{"mmm", older},
	}
	for _, r := range rows {
		if _, err := d.ExecContext(ctx,
			`INSERT INTO books (id, title, author, total, available, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`,
			r.id, "T", "A", 1, 1, r.at, r.at); err != nil {
			t.Fatalf("insert %s: %v", r.id, err)
		}
	}

	list, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := make([]string, 0, len(list))
	for _, b := range list {
		got = append(got, b.ID)
	}
	want := []string{"zzz", "aaa", "mmm"}
	if len(got) != len(want) {
		t.Fatalf("expected %d books, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch: got %v want %v", got, want)
		}
	}

	// Restartable: the same ordering continues across pages.
	page2, err := repo.List(ctx, 2, 2)
	if err != nil || len(page2) != 1 || page2[0].ID != "mmm" {
		t.Fatalf("page 2: %v %+v", err, page2)
	}
}

func TestBookRepository_AdjustAvailabilityBounds(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "bookadjust")
	repo := NewBookRepository(d)
	ctx := context.Background()

	b, err := repo.Create(ctx, &models.Book{Title: "T", Author: "A", Total: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	now := time.Now().UTC()

	n, err := repo.AdjustAvailability(ctx, b.ID, -1, now)
	if err != nil || n != 1 {
		t.Fatalf("adjust -1: %v n=%d", err, n)
	}
	n, err = repo.AdjustAvailability(ctx, b.ID, -1, now)
	if err != nil || n != 1 {
		t.Fatalf("adjust -1 again: %v n=%d", err, n)
	}
	// Below zero is refused, not clamped.
	n, err = repo.AdjustAvailability(ctx, b.ID, -1, now)
	if err != nil || n != 0 {
		t.Fatalf("expected refusal below zero: %v n=%d", err, n)
	}
	g, _ := repo.GetByID(ctx, b.ID)
	if g.Available != 0 {
		t.Fatalf("available should be 0, got %d", g.Available)
	}

	n, err = repo.AdjustAvailability(ctx, b.ID, +2, now)
	if err != nil || n != 1 {
		t.Fatalf("adjust +2: %v n=%d", err, n)
	}
	// Above total is refused too.
	n, err = repo.AdjustAvailability(ctx, b.ID, +1, now)
	if err != nil || n != 0 {
		t.Fatalf("expected refusal above total: %v n=%d", err, n)
	}

	// Missing book also reports zero rows.
	n, err = repo.AdjustAvailability(ctx, "nope", -1, now)
	if err != nil || n != 0 {
		t.Fatalf("expected zero rows for missing book: %v n=%d", err, n)
	}
}
