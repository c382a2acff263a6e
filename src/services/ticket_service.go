package services

import (
	"fmt"

	"github.com/patrickmn/go-cache"
	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/models"
)

type ticketServiceImpl struct {
	store TicketStore
	cache *cache.Cache
}

func NewTicketService(store TicketStore, listingCache *cache.Cache) TicketService {
	return &ticketServiceImpl{
		store: store,
		cache: listingCache,
	}
}

// ListTicketItems returns every persisted line joined against its category
// assignment, ordered by date then product. Results are cached until the
// next write.
func (s *ticketServiceImpl) ListTicketItems() ([]models.TicketLine, error) {
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKeyTicketListing); found {
			return cached.([]models.TicketLine), nil
		}
	}

	lines, err := s.store.SelectTicketItems()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.cache != nil {
		s.cache.SetDefault(cacheKeyTicketListing, lines)
	}
	return lines, nil
}

// ClearTicketItems irrevocably deletes every persisted ticket line.
func (s *ticketServiceImpl) ClearTicketItems() error {
	logger.L.Warn("Clearing all ticket items")

	if err := s.store.RemoveTicketItems(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.cache != nil {
		s.cache.Delete(cacheKeyTicketListing)
		s.cache.Delete(cacheKeyProductListing)
	}
	return nil
}
