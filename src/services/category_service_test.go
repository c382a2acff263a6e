package services

import (
	"errors"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/receiptcheck/backend/src/models"
)

func TestAssignUpsertsLastWriterWins(t *testing.T) {
	store := newMockStore()
	service := NewCategoryService(store, nil)

	if err := service.Assign("X", "food", "Bread"); err != nil {
		t.Fatalf("first Assign failed: %v", err)
	}
	if err := service.Assign("X", "food", "Rye Bread"); err != nil {
		t.Fatalf("second Assign failed: %v", err)
	}

	if len(store.products) != 1 {
		t.Fatalf("store holds %d category rows for X, want 1", len(store.products))
	}
	assignment, err := service.LookupCategory("X")
	if err != nil {
		t.Fatalf("LookupCategory failed: %v", err)
	}
	if assignment == nil {
		t.Fatal("LookupCategory returned nil after Assign")
	}
	if assignment.Category != "food" || assignment.Name != "Rye Bread" {
		t.Errorf("assignment = %+v, want {food Rye Bread}", assignment)
	}
}

func TestAssignPersistenceFailure(t *testing.T) {
	store := newMockStore()
	store.upsertErr = errors.New("locked")
	service := NewCategoryService(store, nil)

	if err := service.Assign("X", "food", "Bread"); !errors.Is(err, ErrPersistence) {
		t.Errorf("Assign error = %v, want %v", err, ErrPersistence)
	}
}

func TestUncategorizedProducts(t *testing.T) {
	store := newMockStore()
	store.lines = []storedLine{
		{ticket: "k1", date: "2023.01.01", product: "X", quantity: 1, sum: 1},
		{ticket: "k1", date: "2023.01.01", product: "Y", quantity: 1, sum: 1},
		{ticket: "k2", date: "2023.01.02", product: "Y", quantity: 2, sum: 2},
	}
	service := NewCategoryService(store, nil)

	if err := service.Assign("X", "food", "Bread"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	uncategorized, err := service.UncategorizedProducts()
	if err != nil {
		t.Fatalf("UncategorizedProducts failed: %v", err)
	}
	if len(uncategorized) != 1 || uncategorized[0] != "Y" {
		t.Errorf("UncategorizedProducts = %v, want [Y]", uncategorized)
	}
}

func TestListProductsEachProductOnce(t *testing.T) {
	store := newMockStore()
	store.lines = []storedLine{
		{ticket: "k1", date: "2023.01.01", product: "B", quantity: 1, sum: 1},
		{ticket: "k2", date: "2023.01.02", product: "B", quantity: 1, sum: 1},
		{ticket: "k2", date: "2023.01.02", product: "A", quantity: 1, sum: 1},
		{ticket: "k3", date: "2023.01.03", product: "B", quantity: 3, sum: 9},
	}
	service := NewCategoryService(store, nil)

	products, err := service.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("ListProducts returned %d products, want 2", len(products))
	}
	if products[0].Product != "A" || products[1].Product != "B" {
		t.Errorf("ListProducts order = [%s %s], want [A B]", products[0].Product, products[1].Product)
	}
}

func TestListProductsUsesCacheUntilAssign(t *testing.T) {
	store := newMockStore()
	store.lines = []storedLine{
		{ticket: "k1", date: "2023.01.01", product: "X", quantity: 1, sum: 1},
	}
	listingCache := cache.New(time.Minute, time.Minute)
	service := NewCategoryService(store, listingCache)

	first, err := service.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if first[0].Category != nil {
		t.Fatal("X unexpectedly categorized before Assign")
	}

	// Served from cache: a direct store write must not show up yet.
	store.mu.Lock()
	category, name := "food", "Milk"
	store.products["X"] = storedProduct{category: &category, name: &name}
	store.mu.Unlock()

	cached, err := service.ListProducts()
	if err != nil {
		t.Fatalf("cached ListProducts failed: %v", err)
	}
	if cached[0].Category != nil {
		t.Error("listing bypassed the cache")
	}

	// Assign invalidates; the next listing reflects the store.
	if err := service.Assign("X", "food", "Milk"); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	fresh, err := service.ListProducts()
	if err != nil {
		t.Fatalf("fresh ListProducts failed: %v", err)
	}
	if fresh[0].Category == nil || *fresh[0].Category != "food" {
		t.Errorf("listing after Assign = %+v, want category food", fresh[0])
	}
}

func TestLookupCategoryAbsent(t *testing.T) {
	store := newMockStore()
	service := NewCategoryService(store, nil)

	assignment, err := service.LookupCategory("nothing")
	if err != nil {
		t.Fatalf("LookupCategory failed: %v", err)
	}
	if assignment != nil {
		t.Errorf("LookupCategory = %+v, want nil", assignment)
	}
}

func TestTicketServiceClearInvalidatesCaches(t *testing.T) {
	store := newMockStore()
	store.lines = []storedLine{
		{ticket: "k1", date: "2023.01.01", product: "X", quantity: 1, sum: 1},
	}
	listingCache := cache.New(time.Minute, time.Minute)
	listingCache.SetDefault(cacheKeyTicketListing, []models.TicketLine{})
	listingCache.SetDefault(cacheKeyProductListing, []models.ProductCategory{})
	service := NewTicketService(store, listingCache)

	if err := service.ClearTicketItems(); err != nil {
		t.Fatalf("ClearTicketItems failed: %v", err)
	}
	if store.lineCount() != 0 {
		t.Errorf("store holds %d lines after clear, want 0", store.lineCount())
	}
	if _, found := listingCache.Get(cacheKeyTicketListing); found {
		t.Error("ticket listing cache entry survived a clear")
	}
	if _, found := listingCache.Get(cacheKeyProductListing); found {
		t.Error("product listing cache entry survived a clear")
	}
}

func TestTicketServiceListJoinsCategories(t *testing.T) {
	store := newMockStore()
	store.lines = []storedLine{
		{ticket: "k1", date: "2023.01.01", product: "X", quantity: 1, sum: 150},
		{ticket: "k1", date: "2023.01.01", product: "Y", quantity: 2, sum: 80},
	}
	category, name := "food", "Milk"
	store.products["X"] = storedProduct{category: &category, name: &name}
	service := NewTicketService(store, nil)

	lines, err := service.ListTicketItems()
	if err != nil {
		t.Fatalf("ListTicketItems failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("ListTicketItems returned %d lines, want 2", len(lines))
	}
	if lines[0].Category == nil || *lines[0].Category != "food" {
		t.Errorf("line X category = %v, want food", lines[0].Category)
	}
	if lines[1].Category != nil {
		t.Errorf("line Y category = %v, want nil", *lines[1].Category)
	}
}
