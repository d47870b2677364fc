package domain

import "time"

type (
	BookingID     string
	BookingStatus string
)

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is the relay's read model of a platform booking. ListingID is
// empty for service/experience bookings, which have no place listing.
type Booking struct {
	ID         BookingID
	ListingID  ListingID
	GuestID    UserID
	StartDate  time.Time
	EndDate    time.Time
	TotalPrice float64
	Status     BookingStatus
	CreatedAt  time.Time
}
