package database

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/username/receiptcheck/backend/src/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCountAndInsertTicketItems(t *testing.T) {
	store := newTestStore(t)

	count, err := store.CountTicketItems("20230101T1200;5")
	if err != nil {
		t.Fatalf("CountTicketItems failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count on empty store = %d, want 0", count)
	}

	items := []models.TicketItem{
		{Name: "Milk", Quantity: 1, Sum: 150.00},
		{Name: "Bread", Quantity: 2, Sum: 70.00},
	}
	if err := store.InsertTicketItems("20230101T1200;5", "2023.01.01", items); err != nil {
		t.Fatalf("InsertTicketItems failed: %v", err)
	}

	count, err = store.CountTicketItems("20230101T1200;5")
	if err != nil {
		t.Fatalf("CountTicketItems failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count after insert = %d, want 2", count)
	}

	// Other keys stay unaffected.
	count, err = store.CountTicketItems("20230101T1200;6")
	if err != nil {
		t.Fatalf("CountTicketItems failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count for other key = %d, want 0", count)
	}
}

func TestInsertSingleTicketItem(t *testing.T) {
	store := newTestStore(t)

	if err := store.InsertTicketItem("k1", "2023.01.01", "Milk", 1, 150); err != nil {
		t.Fatalf("InsertTicketItem failed: %v", err)
	}
	// Data-level duplicates are allowed; the caller's count check is the
	// only idempotency gate.
	if err := store.InsertTicketItem("k1", "2023.01.01", "Milk", 1, 150); err != nil {
		t.Fatalf("duplicate InsertTicketItem failed: %v", err)
	}

	count, err := store.CountTicketItems("k1")
	if err != nil {
		t.Fatalf("CountTicketItems failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestUpsertAndSelectCategoryName(t *testing.T) {
	store := newTestStore(t)

	assignment, err := store.SelectCategoryName("X")
	if err != nil {
		t.Fatalf("SelectCategoryName failed: %v", err)
	}
	if assignment != nil {
		t.Errorf("SelectCategoryName on empty store = %+v, want nil", assignment)
	}

	if err := store.UpsertProductCategory("X", "food", "Bread"); err != nil {
		t.Fatalf("UpsertProductCategory failed: %v", err)
	}
	if err := store.UpsertProductCategory("X", "food", "Rye Bread"); err != nil {
		t.Fatalf("second UpsertProductCategory failed: %v", err)
	}

	assignment, err = store.SelectCategoryName("X")
	if err != nil {
		t.Fatalf("SelectCategoryName failed: %v", err)
	}
	if assignment == nil {
		t.Fatal("SelectCategoryName returned nil after upsert")
	}
	if assignment.Category != "food" || assignment.Name != "Rye Bread" {
		t.Errorf("assignment = %+v, want {food Rye Bread}", assignment)
	}
}

func TestSelectCategoryNamePartialRowIsAbsent(t *testing.T) {
	store := newTestStore(t)

	// Legacy rows may carry only one of the two columns; those count as
	// unassigned.
	if _, err := store.db.Exec(
		"INSERT INTO products (product, category, name) VALUES (?, ?, NULL)",
		"X", "food"); err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	assignment, err := store.SelectCategoryName("X")
	if err != nil {
		t.Fatalf("SelectCategoryName failed: %v", err)
	}
	if assignment != nil {
		t.Errorf("partial row reported as assigned: %+v", assignment)
	}
}

func TestSelectCategoryNamesOuterJoin(t *testing.T) {
	store := newTestStore(t)

	lines := []models.TicketItem{
		{Name: "Y", Quantity: 1, Sum: 10},
		{Name: "X", Quantity: 1, Sum: 20},
	}
	if err := store.InsertTicketItems("k1", "2023.01.01", lines); err != nil {
		t.Fatalf("InsertTicketItems failed: %v", err)
	}
	// X appears in a second ticket too; it must still list once.
	if err := store.InsertTicketItems("k2", "2023.01.02", []models.TicketItem{
		{Name: "X", Quantity: 3, Sum: 60},
	}); err != nil {
		t.Fatalf("InsertTicketItems failed: %v", err)
	}
	if err := store.UpsertProductCategory("X", "food", "Bread"); err != nil {
		t.Fatalf("UpsertProductCategory failed: %v", err)
	}
	// A category row without any ticket line must not appear.
	if err := store.UpsertProductCategory("Z", "misc", "Ghost"); err != nil {
		t.Fatalf("UpsertProductCategory failed: %v", err)
	}

	products, err := store.SelectCategoryNames()
	if err != nil {
		t.Fatalf("SelectCategoryNames failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("SelectCategoryNames returned %d rows, want 2", len(products))
	}
	if products[0].Product != "X" || products[1].Product != "Y" {
		t.Errorf("order = [%s %s], want [X Y]", products[0].Product, products[1].Product)
	}
	if products[0].Category == nil || *products[0].Category != "food" {
		t.Errorf("X category = %v, want food", products[0].Category)
	}
	if products[1].Category != nil || products[1].Name != nil {
		t.Errorf("Y should be uncategorized, got %+v", products[1])
	}
}

func TestSelectTicketItemsListing(t *testing.T) {
	store := newTestStore(t)

	if err := store.InsertTicketItems("k2", "2023.01.02", []models.TicketItem{
		{Name: "Milk", Quantity: 1, Sum: 150},
	}); err != nil {
		t.Fatalf("InsertTicketItems failed: %v", err)
	}
	if err := store.InsertTicketItems("k1", "2023.01.01", []models.TicketItem{
		{Name: "Bread", Quantity: 2, Sum: 70},
	}); err != nil {
		t.Fatalf("InsertTicketItems failed: %v", err)
	}
	if err := store.UpsertProductCategory("Milk", "dairy", "Milk 3.2%"); err != nil {
		t.Fatalf("UpsertProductCategory failed: %v", err)
	}

	items, err := store.SelectTicketItems()
	if err != nil {
		t.Fatalf("SelectTicketItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("SelectTicketItems returned %d rows, want 2", len(items))
	}
	// Ordered by date, then product.
	if items[0].Date != "2023.01.01" || items[0].Product != "Bread" {
		t.Errorf("first row = %+v, want Bread on 2023.01.01", items[0])
	}
	if items[0].Category != nil {
		t.Errorf("Bread category = %v, want nil", *items[0].Category)
	}
	if items[1].Product != "Milk" {
		t.Errorf("second row = %+v, want Milk", items[1])
	}
	if items[1].Category == nil || *items[1].Category != "dairy" {
		t.Errorf("Milk category = %v, want dairy", items[1].Category)
	}
	if math.Abs(items[1].Sum-150) > 1e-9 {
		t.Errorf("Milk sum = %v, want 150", items[1].Sum)
	}
}

func TestRemoveTicketItems(t *testing.T) {
	store := newTestStore(t)

	if err := store.InsertTicketItems("k1", "2023.01.01", []models.TicketItem{
		{Name: "Milk", Quantity: 1, Sum: 150},
	}); err != nil {
		t.Fatalf("InsertTicketItems failed: %v", err)
	}
	if err := store.UpsertProductCategory("Milk", "dairy", "Milk"); err != nil {
		t.Fatalf("UpsertProductCategory failed: %v", err)
	}

	if err := store.RemoveTicketItems(); err != nil {
		t.Fatalf("RemoveTicketItems failed: %v", err)
	}

	count, err := store.CountTicketItems("k1")
	if err != nil {
		t.Fatalf("CountTicketItems failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count after clear = %d, want 0", count)
	}

	// Category rows survive a clear.
	assignment, err := store.SelectCategoryName("Milk")
	if err != nil {
		t.Fatalf("SelectCategoryName failed: %v", err)
	}
	if assignment == nil {
		t.Error("category assignment lost on ticket clear")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.InsertTicketItems("k1", "2023.01.01", []models.TicketItem{
		{Name: "Milk", Quantity: 1, Sum: 150},
	}); err != nil {
		t.Fatalf("InsertTicketItems failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.CountTicketItems("k1")
	if err != nil {
		t.Fatalf("CountTicketItems failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count after reopen = %d, want 1", count)
	}
}
