package database

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/models"
	_ "modernc.org/sqlite"
)

// Store wraps the single shared SQLite handle. Every operation takes the
// mutex for its duration, so at most one statement is in flight at a time;
// the lock is released between operations, never held across a whole
// ingestion sequence.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

func NewStore(databasePath string) (*Store, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}

	store := &Store{db: db}

	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	store.migrateTicketsTable()

	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.", "databasePath", databasePath)
	}
	return store, nil
}

func (s *Store) createTables() error {
	createTableStatement := `
	CREATE TABLE IF NOT EXISTS tickets (
		ticket TEXT NOT NULL,
		date TEXT NOT NULL,
		product TEXT NOT NULL,
		quantity REAL NOT NULL,
		sum REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tickets_ticket ON tickets (ticket);

	CREATE TABLE IF NOT EXISTS products (
		product TEXT NOT NULL PRIMARY KEY,
		category TEXT,
		name TEXT
	);
	`

	if _, err := s.db.Exec(createTableStatement); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// migrateTicketsTable backfills the date column on databases created before
// the ingestion date was stored.
func (s *Store) migrateTicketsTable() {
	var tableName string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='tickets'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'tickets' table", "error", err)
		}
		return
	}

	rows, err := s.db.Query("PRAGMA table_info(tickets)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'tickets'", "error", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'tickets'", "error", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'tickets'", "error", err)
		}
		return
	}

	if _, ok := columnExists["date"]; !ok {
		if _, err := s.db.Exec("ALTER TABLE tickets ADD COLUMN date TEXT NOT NULL DEFAULT ''"); err != nil {
			if logger.L != nil {
				logger.L.Error("Error adding 'date' column to 'tickets' table", "error", err)
			}
		} else if logger.L != nil {
			logger.L.Info("Added 'date' column to 'tickets' table")
		}
	}
}

// CountTicketItems reports how many lines are already persisted for a ticket
// key. A nonzero count means the ticket has been ingested.
func (s *Store) CountTicketItems(ticket string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM tickets WHERE ticket = ?", ticket).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ticket items for %q: %w", ticket, err)
	}
	return count, nil
}

// InsertTicketItem appends a single persisted line. Duplicates are not
// rejected here; the ingest service's count check is the idempotency gate.
func (s *Store) InsertTicketItem(ticket, date, product string, quantity, sum float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO tickets (ticket, date, product, quantity, sum) VALUES (?, ?, ?, ?, ?)",
		ticket, date, product, quantity, sum)
	if err != nil {
		return fmt.Errorf("failed to insert ticket item %q for %q: %w", product, ticket, err)
	}
	return nil
}

// InsertTicketItems persists the full aggregated item set of one ticket in a
// single transaction, so a ticket is either fully recorded or absent.
func (s *Store) InsertTicketItems(ticket, date string, items []models.TicketItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %q: %w", ticket, err)
	}

	for _, item := range items {
		if _, err := tx.Exec(
			"INSERT INTO tickets (ticket, date, product, quantity, sum) VALUES (?, ?, ?, ?, ?)",
			ticket, date, item.Name, item.Quantity, item.Sum); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert ticket item %q for %q: %w", item.Name, ticket, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ticket items for %q: %w", ticket, err)
	}
	return nil
}

// UpsertProductCategory records the category assignment for a product,
// replacing any previous assignment. Last writer wins.
func (s *Store) UpsertProductCategory(product, category, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO products (product, category, name) VALUES (?, ?, ?)",
		product, category, name)
	if err != nil {
		return fmt.Errorf("failed to upsert category for %q: %w", product, err)
	}
	return nil
}

// SelectCategoryName returns the category assignment for a product, or nil
// when the product has no row or the row is only partially set.
func (s *Store) SelectCategoryName(product string) (*models.CategoryName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.CategoryName
	err := s.db.QueryRow(`
		SELECT category, name
		FROM products
		WHERE product = ? AND category IS NOT NULL AND name IS NOT NULL`,
		product).Scan(&result.Category, &result.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up category for %q: %w", product, err)
	}
	return &result, nil
}

// SelectCategoryNames lists every product that appears in at least one
// persisted line, left-outer joined against its category assignment, ordered
// by product. Each product appears exactly once.
func (s *Store) SelectCategoryNames() ([]models.ProductCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT DISTINCT t.product, p.category, p.name
		FROM tickets AS t LEFT OUTER JOIN products AS p ON (p.product = t.product)
		ORDER BY t.product`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product categories: %w", err)
	}
	defer rows.Close()

	var result []models.ProductCategory
	for rows.Next() {
		var item models.ProductCategory
		var category, name sql.NullString
		if err := rows.Scan(&item.Product, &category, &name); err != nil {
			return nil, fmt.Errorf("failed to scan product category: %w", err)
		}
		if category.Valid {
			item.Category = &category.String
		}
		if name.Valid {
			item.Name = &name.String
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product categories: %w", err)
	}
	return result, nil
}

// SelectTicketItems lists every persisted line joined against the category
// table, ordered by date then product.
func (s *Store) SelectTicketItems() ([]models.TicketLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT t.date, t.product, p.category, p.name, t.quantity, t.sum
		FROM tickets AS t
			LEFT OUTER JOIN products AS p ON (p.product = t.product)
		ORDER BY t.date, t.product`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket items: %w", err)
	}
	defer rows.Close()

	var result []models.TicketLine
	for rows.Next() {
		var line models.TicketLine
		var category, name sql.NullString
		if err := rows.Scan(&line.Date, &line.Product, &category, &name, &line.Quantity, &line.Sum); err != nil {
			return nil, fmt.Errorf("failed to scan ticket item: %w", err)
		}
		if category.Valid {
			line.Category = &category.String
		}
		if name.Valid {
			line.Name = &name.String
		}
		result = append(result, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket items: %w", err)
	}
	return result, nil
}

// RemoveTicketItems deletes every persisted ticket line. There is no undo.
func (s *Store) RemoveTicketItems() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM tickets"); err != nil {
		return fmt.Errorf("failed to clear ticket items: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
