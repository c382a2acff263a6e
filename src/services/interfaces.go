package services

import (
	"context"

	"github.com/username/receiptcheck/backend/src/models"
)

// TicketStore is the persistence gateway the services consume. The database
// package provides the SQLite-backed implementation; tests substitute mocks.
type TicketStore interface {
	CountTicketItems(ticket string) (int, error)
	InsertTicketItem(ticket, date, product string, quantity, sum float64) error
	InsertTicketItems(ticket, date string, items []models.TicketItem) error
	UpsertProductCategory(product, category, name string) error
	SelectCategoryName(product string) (*models.CategoryName, error)
	SelectCategoryNames() ([]models.ProductCategory, error)
	SelectTicketItems() ([]models.TicketLine, error)
	RemoveTicketItems() error
}

// TicketResolver obtains the authoritative line items for a receipt from the
// remote fiscal operator. Every call re-resolves; nothing is cached here.
type TicketResolver interface {
	ResolveTicket(ctx context.Context, params models.TicketParams) (*models.Ticket, error)
}

// IngestResult describes the outcome of one successful scan ingestion.
type IngestResult struct {
	Key       string
	Duplicate bool // the ticket was already persisted; the operator was not contacted
	Items     int  // distinct products persisted (0 for duplicates)
}

// IngestService is the end-to-end ingestion flow invoked per scanned ticket.
type IngestService interface {
	IngestScan(ctx context.Context, rawPayload string) (*IngestResult, error)
}

// CategoryService exposes category assignment and the derived reports.
type CategoryService interface {
	Assign(product, category, name string) error
	ListProducts() ([]models.ProductCategory, error)
	UncategorizedProducts() ([]string, error)
	LookupCategory(product string) (*models.CategoryName, error)
}

// TicketService exposes the persisted ticket listing and the clear-all
// capability.
type TicketService interface {
	ListTicketItems() ([]models.TicketLine, error)
	ClearTicketItems() error
}
