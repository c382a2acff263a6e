package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/models"
	"github.com/username/receiptcheck/backend/src/parsers"
	"github.com/username/receiptcheck/backend/src/processors"
)

// Cached listing entries invalidated whenever persisted state changes.
const (
	cacheKeyTicketListing  = "listing:tickets"
	cacheKeyProductListing = "listing:products"
)

// Stored ingestion date format, derived from the operator transaction time.
const storedDateLayout = "2006.01.02"

type ingestServiceImpl struct {
	store    TicketStore
	resolver TicketResolver
	cache    *cache.Cache

	// Per-ticket-key serialization. Two concurrent scans of the same receipt
	// must not both pass the count check.
	keysMu sync.Mutex
	keys   map[string]*ticketKeyLock
}

type ticketKeyLock struct {
	mu   sync.Mutex
	refs int
}

func NewIngestService(store TicketStore, resolver TicketResolver, listingCache *cache.Cache) IngestService {
	return &ingestServiceImpl{
		store:    store,
		resolver: resolver,
		cache:    listingCache,
		keys:     make(map[string]*ticketKeyLock),
	}
}

// lockKey acquires the mutex for one ticket key and returns its release
// function. Locks are created on demand and dropped once unreferenced.
func (s *ingestServiceImpl) lockKey(key string) func() {
	s.keysMu.Lock()
	lock, ok := s.keys[key]
	if !ok {
		lock = &ticketKeyLock{}
		s.keys[key] = lock
	}
	lock.refs++
	s.keysMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.keysMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.keys, key)
		}
		s.keysMu.Unlock()
	}
}

// IngestScan runs the idempotent end-to-end flow for one scanned QR payload:
// parse, dedup on the ticket key, resolve against the operator, aggregate,
// persist. Re-scanning an already-ingested receipt succeeds without touching
// the operator.
func (s *ingestServiceImpl) IngestScan(ctx context.Context, rawPayload string) (*IngestResult, error) {
	params, err := parsers.ParseTicketParams(rawPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	key := params.Key()
	logger.L.Info("Ingesting scanned ticket", "key", key)

	unlock := s.lockKey(key)
	defer unlock()

	count, err := s.store.CountTicketItems(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if count > 0 {
		logger.L.Info("Ticket already ingested", "key", key, "existingLines", count)
		return &IngestResult{Key: key, Duplicate: true}, nil
	}

	ticket, err := s.resolver.ResolveTicket(ctx, params)
	if err != nil {
		return nil, err
	}

	items := processors.AggregateItems(ticket.Items)
	date := ticket.Date.Format(storedDateLayout)

	if err := s.store.InsertTicketItems(key, date, items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.cache != nil {
		s.cache.Delete(cacheKeyTicketListing)
		s.cache.Delete(cacheKeyProductListing)
	}

	s.reportUncategorized(key, items)

	logger.L.Info("Ticket ingested", "key", key, "date", date, "items", len(items))
	return &IngestResult{Key: key, Items: len(items)}, nil
}

// reportUncategorized logs the freshly ingested products that have no
// category assignment yet. Lookup failures only cost the report.
func (s *ingestServiceImpl) reportUncategorized(key string, items []models.TicketItem) {
	for _, item := range items {
		assignment, err := s.store.SelectCategoryName(item.Name)
		if err != nil {
			logger.L.Warn("Category lookup failed", "key", key, "product", item.Name, "error", err)
			return
		}
		if assignment == nil {
			logger.L.Info("Ingested product has no category", "key", key, "product", item.Name)
		}
	}
}
