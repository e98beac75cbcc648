package dto

import (
	"time"

	domainbooking "github.com/matthewmclauchlan/spanish-holiday-rentals-web-sub000/internal/domain/booking"
)

type GuestCountDTO struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Babies   int `json:"babies"`
	Pets     int `json:"pets"`
}

type BookingSummary struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"property_id"`
	Reference  string        `json:"reference"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	Guests     GuestCountDTO `json:"guests"`
	Status     string        `json:"status"`
	Total      MoneyDTO      `json:"total"`
	CreatedAt  time.Time     `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	return BookingSummary{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		Reference:  b.Reference,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Guests: GuestCountDTO{
			Adults:   b.Guests.Adults,
			Children: b.Guests.Children,
			Babies:   b.Guests.Babies,
			Pets:     b.Guests.Pets,
		},
		Status:    string(b.State),
		Total:     MapMoney(b.Price.Total),
		CreatedAt: b.CreatedAt,
	}
}
