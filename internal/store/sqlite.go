package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

// SearchRecord is one completed search with its ranked options
type SearchRecord struct {
	ID        string
	Query     string
	Params    types.SearchParams
	Options   []types.FlightOption
	CreatedAt time.Time
}

// BookingRecord is one confirmed order
type BookingRecord struct {
	OrderID   string
	PNR       string
	Route     string
	Carrier   string
	Price     float64
	Currency  string
	Travelers int
	Retried   bool
	CreatedAt time.Time
}

// SQLiteStore keeps the search and booking history in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store at the given path
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			params TEXT NOT NULL,
			options TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bookings (
			order_id TEXT PRIMARY KEY,
			pnr TEXT NOT NULL DEFAULT '',
			route TEXT NOT NULL DEFAULT '',
			carrier TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT '',
			travelers INTEGER NOT NULL DEFAULT 0,
			retried INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSearch records a search (upsert by id)
func (s *SQLiteStore) SaveSearch(rec *SearchRecord) error {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	options, err := json.Marshal(rec.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO searches (id, query, params, options, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.Query, string(params), string(options), createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit searches, newest first
func (s *SQLiteStore) RecentSearches(limit int) ([]*SearchRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, query, params, options, created_at FROM searches
		ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var out []*SearchRecord
	for rows.Next() {
		var (
			rec                     SearchRecord
			paramsJSON, optionsJSON string
			createdAt               int64
		)
		if err := rows.Scan(&rec.ID, &rec.Query, &paramsJSON, &optionsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &rec.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal params: %w", err)
		}
		if err := json.Unmarshal([]byte(optionsJSON), &rec.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal options: %w", err)
		}
		rec.CreatedAt = time.Unix(0, createdAt)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// SaveBooking records a confirmed order (upsert by order id)
func (s *SQLiteStore) SaveBooking(rec *BookingRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	retried := 0
	if rec.Retried {
		retried = 1
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO bookings (order_id, pnr, route, carrier, price, currency, travelers, retried, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.OrderID, rec.PNR, rec.Route, rec.Carrier, rec.Price, rec.Currency, rec.Travelers, retried, createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

const bookingColumns = `order_id, pnr, route, carrier, price, currency, travelers, retried, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*BookingRecord, error) {
	var (
		rec       BookingRecord
		retried   int
		createdAt int64
	)
	if err := row.Scan(&rec.OrderID, &rec.PNR, &rec.Route, &rec.Carrier, &rec.Price, &rec.Currency, &rec.Travelers, &retried, &createdAt); err != nil {
		return nil, err
	}
	rec.Retried = retried != 0
	rec.CreatedAt = time.Unix(0, createdAt)
	return &rec, nil
}

// LoadBooking returns the booking with orderID, or nil if unknown
func (s *SQLiteStore) LoadBooking(orderID string) (*BookingRecord, error) {
	rec, err := scanBooking(s.db.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE order_id = ?`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return rec, nil
}

// RecentBookings returns up to limit bookings, newest first
func (s *SQLiteStore) RecentBookings(limit int) ([]*BookingRecord, error) {
	rows, err := s.db.Query(`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var out []*BookingRecord
	for rows.Next() {
		rec, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
