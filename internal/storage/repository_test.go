package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"bilancio/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTemplate() core.Template {
	return core.Template{
		Title:     "Affitto",
		Amount:    core.Money{Cents: 85000},
		Date:      core.NewDate(2025, 1, 15),
		IsExpense: true,
		Person:    core.PersonShared,
		Recurring: true,
		Interval:  core.Monthly,
	}
}

func TestTransactionCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateTransaction(ctx, sampleTemplate())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero id")
	}

	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Title != "Affitto" || got.Amount.Cents != 85000 {
		t.Errorf("got %q %d", got.Title, got.Amount.Cents)
	}
	if !got.Recurring || got.Interval != core.Monthly {
		t.Errorf("recurring fields lost: %v %q", got.Recurring, got.Interval)
	}
	if got.Date.Format("2006-01-02") != "2025-01-15" {
		t.Errorf("Date = %v", got.Date)
	}
	if !got.EndDate.IsZero() {
		t.Errorf("EndDate should stay zero, got %v", got.EndDate)
	}

	got.Title = "Affitto nuovo"
	got.Amount.Cents = 90000
	if err := repo.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	updated, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() after update error = %v", err)
	}
	if updated.Title != "Affitto nuovo" || updated.Amount.Cents != 90000 {
		t.Errorf("update not persisted: %q %d", updated.Title, updated.Amount.Cents)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
}

func TestTransactionEndDateRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tpl := sampleTemplate()
	tpl.EndDate = core.NewDate(2025, 12, 31)

	id, err := repo.CreateTransaction(ctx, tpl)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.EndDate.Format("2006-01-02") != "2025-12-31" {
		t.Errorf("EndDate = %v", got.EndDate)
	}
}

func TestSoftDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateTransaction(ctx, sampleTemplate())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := repo.SoftDeleteTransaction(ctx, id); err != nil {
		t.Fatalf("SoftDeleteTransaction() error = %v", err)
	}

	if _, err := repo.GetTransaction(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTransaction() after delete error = %v, want ErrNotFound", err)
	}
	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("deleted transaction still listed: %v", list)
	}

	if err := repo.SoftDeleteTransaction(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateTransaction(ctx, core.Template{ID: id, Title: "x", Date: core.NewDate(2025, 1, 1), Person: core.PersonShared}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of deleted row error = %v, want ErrNotFound", err)
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetTransaction(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// The migration seeds a default category set; assert relative to it.
	seeded, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(seeded) == 0 {
		t.Fatal("migration should seed default categories")
	}

	idAuto, err := repo.CreateCategory(ctx, "Auto")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	idBolli, err := repo.CreateCategory(ctx, "Bollette")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(cats) != len(seeded)+2 {
		t.Errorf("len(cats) = %d, want %d", len(cats), len(seeded)+2)
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].Name > cats[i].Name {
			t.Errorf("categories not sorted by name: %q before %q", cats[i-1].Name, cats[i].Name)
		}
	}

	if _, err := repo.CreateCategory(ctx, "Auto"); err == nil {
		t.Error("duplicate category name should fail")
	}

	names, err := repo.CategoryNames(ctx)
	if err != nil {
		t.Fatalf("CategoryNames() error = %v", err)
	}
	if names[idAuto] != "Auto" || names[idBolli] != "Bollette" {
		t.Errorf("CategoryNames = %v", names)
	}

	if err := repo.DeleteCategory(ctx, idAuto); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if err := repo.DeleteCategory(ctx, idAuto); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestSavings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entries := []core.SavingsEntry{
		{Label: "Fondo emergenze", Amount: core.Money{Cents: 5000}, Date: core.NewDate(2025, 6, 1), Person: core.PersonShared},
		{Label: "Vacanze", Amount: core.Money{Cents: 2500}, Date: core.NewDate(2025, 6, 30), Person: "alice"},
		{Label: "Altro mese", Amount: core.Money{Cents: 9900}, Date: core.NewDate(2025, 7, 1), Person: core.PersonShared},
	}
	var lastID int64
	for _, e := range entries {
		id, err := repo.CreateSavings(ctx, e)
		if err != nil {
			t.Fatalf("CreateSavings(%q) error = %v", e.Label, err)
		}
		lastID = id
	}

	june, err := repo.ListSavings(ctx, 2025, 6)
	if err != nil {
		t.Fatalf("ListSavings() error = %v", err)
	}
	if len(june) != 2 {
		t.Fatalf("len(june) = %d, want 2", len(june))
	}
	if june[0].Label != "Fondo emergenze" || june[1].Label != "Vacanze" {
		t.Errorf("savings not ordered by date: %v", june)
	}

	total, err := repo.SavingsTotal(ctx, 2025, 6)
	if err != nil {
		t.Fatalf("SavingsTotal() error = %v", err)
	}
	if total.Cents != 7500 {
		t.Errorf("SavingsTotal = %d, want 7500", total.Cents)
	}

	empty, err := repo.SavingsTotal(ctx, 2025, 1)
	if err != nil {
		t.Fatalf("SavingsTotal() empty month error = %v", err)
	}
	if empty.Cents != 0 {
		t.Errorf("empty month total = %d, want 0", empty.Cents)
	}

	if err := repo.DeleteSavings(ctx, lastID); err != nil {
		t.Fatalf("DeleteSavings() error = %v", err)
	}
	if err := repo.DeleteSavings(ctx, lastID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestParseStoredDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "2025-06-15", want: "2025-06-15"},
		{raw: "2025-06-15T10:30:00Z", want: "2025-06-15"},
		{raw: "giugno", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseStoredDate(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseStoredDate(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got.Format("2006-01-02") != tt.want {
			t.Errorf("parseStoredDate(%q) = %v, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := monthBounds(2025, 6)
	if start != "2025-06-01" || end != "2025-06-30" {
		t.Errorf("monthBounds(2025, 6) = %s, %s", start, end)
	}
	start, end = monthBounds(2024, 2)
	if start != "2024-02-01" || end != "2024-02-29" {
		t.Errorf("monthBounds(2024, 2) = %s, %s", start, end)
	}
	start, end = monthBounds(2025, 12)
	if start != "2025-12-01" || end != "2025-12-31" {
		t.Errorf("monthBounds(2025, 12) = %s, %s", start, end)
	}
}
