// Package booking resolves who may participate in a booking's chat room.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/horlas08/awals-backend/internal/core"
	"github.com/horlas08/awals-backend/internal/domain"
)

// Store is the read surface the authorizer needs.
type Store interface {
	GetBooking(ctx context.Context, id domain.BookingID) (domain.Booking, error)
	GetListing(ctx context.Context, id domain.ListingID) (domain.Listing, error)
}

type Authorizer struct {
	store Store
}

func NewAuthorizer(s Store) *Authorizer {
	return &Authorizer{store: s}
}

// ResolveParticipants returns the booking's guest and, when the booking
// references a place listing, its host. Service and experience bookings
// have no listing and authorize the guest only.
func (a *Authorizer) ResolveParticipants(ctx context.Context, id domain.BookingID) (core.Participants, error) {
	b, err := a.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return core.Participants{}, core.ErrBookingNotFound
		}
		return core.Participants{}, fmt.Errorf("get booking: %w", err)
	}

	p := core.Participants{Guest: b.GuestID}
	if b.ListingID == "" {
		return p, nil
	}

	l, err := a.store.GetListing(ctx, b.ListingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Dangling listing reference: treat like a listing-less booking.
			return p, nil
		}
		return core.Participants{}, fmt.Errorf("get listing: %w", err)
	}
	p.Host = l.HostID
	return p, nil
}

var _ core.BookingAuthorizer = (*Authorizer)(nil)
