package domain

type ListingID string

type Listing struct {
	ID     ListingID
	HostID UserID
	Title  string
}
