// Package sqlite provides the embedded read model for bookings and
// listings backing the chat authorizer.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/horlas08/awals-backend/internal/booking"
	"github.com/horlas08/awals-backend/internal/domain"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id      TEXT PRIMARY KEY,
	host_id TEXT NOT NULL,
	title   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookings (
	id          TEXT PRIMARY KEY,
	listing_id  TEXT NOT NULL DEFAULT '',
	guest_id    TEXT NOT NULL,
	start_date  TEXT NOT NULL,
	end_date    TEXT NOT NULL,
	total_price REAL NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) PutListing(ctx context.Context, l domain.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.ID == "" {
		return fmt.Errorf("listing id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO listings (id, host_id, title) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET host_id = excluded.host_id, title = excluded.title`,
		string(l.ID), string(l.HostID), l.Title)
	if err != nil {
		return fmt.Errorf("put listing: %w", err)
	}
	return nil
}

func (s *Store) GetListing(ctx context.Context, id domain.ListingID) (domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return domain.Listing{}, err
	}
	var l domain.Listing
	var lid, hostID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, host_id, title FROM listings WHERE id = ?`, string(id)).
		Scan(&lid, &hostID, &l.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	l.ID = domain.ListingID(lid)
	l.HostID = domain.UserID(hostID)
	return l, nil
}

func (s *Store) PutBooking(ctx context.Context, b domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.ID == "" {
		return fmt.Errorf("booking id is required")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (id, listing_id, guest_id, start_date, end_date, total_price, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			listing_id = excluded.listing_id,
			guest_id = excluded.guest_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			total_price = excluded.total_price,
			status = excluded.status`,
		string(b.ID), string(b.ListingID), string(b.GuestID),
		b.StartDate.UTC().Format(timeFormat), b.EndDate.UTC().Format(timeFormat),
		b.TotalPrice, string(b.Status), b.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("put booking: %w", err)
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id domain.BookingID) (domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return domain.Booking{}, err
	}
	var b domain.Booking
	var bid, listingID, guestID, start, end, status, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, listing_id, guest_id, start_date, end_date, total_price, status, created_at
		 FROM bookings WHERE id = ?`, string(id)).
		Scan(&bid, &listingID, &guestID, &start, &end, &b.TotalPrice, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}

	b.ID = domain.BookingID(bid)
	b.ListingID = domain.ListingID(listingID)
	b.GuestID = domain.UserID(guestID)
	b.Status = domain.BookingStatus(status)
	if b.StartDate, err = time.Parse(timeFormat, start); err != nil {
		return domain.Booking{}, fmt.Errorf("parse start date: %w", err)
	}
	if b.EndDate, err = time.Parse(timeFormat, end); err != nil {
		return domain.Booking{}, fmt.Errorf("parse end date: %w", err)
	}
	if b.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
		return domain.Booking{}, fmt.Errorf("parse created at: %w", err)
	}
	return b, nil
}

var _ booking.Store = (*Store)(nil)
