package services

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/models"
)

type categoryServiceImpl struct {
	store TicketStore
	cache *cache.Cache
}

func NewCategoryService(store TicketStore, listingCache *cache.Cache) CategoryService {
	return &categoryServiceImpl{
		store: store,
		cache: listingCache,
	}
}

// Assign records a category and display name for a product, replacing any
// previous assignment.
func (s *categoryServiceImpl) Assign(product, category, name string) error {
	logger.L.Info("Assigning category", "product", product, "category", category, "name", name)

	if err := s.store.UpsertProductCategory(product, category, name); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.cache != nil {
		// The joins behind both listings change with the assignment.
		s.cache.Delete(cacheKeyProductListing)
		s.cache.Delete(cacheKeyTicketListing)
	}
	return nil
}

// ListProducts returns every product seen in a ticket together with its
// category assignment, ordered by product. Results are cached until the next
// write.
func (s *categoryServiceImpl) ListProducts() ([]models.ProductCategory, error) {
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKeyProductListing); found {
			return cached.([]models.ProductCategory), nil
		}
	}

	products, err := s.store.SelectCategoryNames()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.cache != nil {
		s.cache.SetDefault(cacheKeyProductListing, products)
	}
	return products, nil
}

// UncategorizedProducts returns the products that appear in at least one
// ticket but carry no category assignment, ordered by product.
func (s *categoryServiceImpl) UncategorizedProducts() ([]string, error) {
	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}

	var uncategorized []string
	for _, product := range products {
		if product.Category == nil && product.Name == nil {
			uncategorized = append(uncategorized, product.Product)
		}
	}
	return uncategorized, nil
}

// LookupCategory returns the assignment for one product, or nil when absent
// or only partially set.
func (s *categoryServiceImpl) LookupCategory(product string) (*models.CategoryName, error) {
	assignment, err := s.store.SelectCategoryName(product)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return assignment, nil
}
