package types

import (
	"fmt"
	"time"
)

// SearchParams are the fields extracted from a natural-language request
type SearchParams struct {
	Origin            string   `json:"origin"`
	Destination       string   `json:"destination"`
	DepartureDate     string   `json:"departure_date"`
	ReturnDate        string   `json:"return_date,omitempty"`
	Adults            int      `json:"adults"`
	Children          int      `json:"children,omitempty"`
	Infants           int      `json:"infants,omitempty"`
	Budget            *float64 `json:"budget,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	NonStop           bool     `json:"non_stop,omitempty"`
	PreferredAirlines []string `json:"preferred_airlines,omitempty"`
	AvoidedAirlines   []string `json:"avoided_airlines,omitempty"`
}

// TravelerCount returns the number of travelers that need records
func (p *SearchParams) TravelerCount() int {
	return p.Adults + p.Children + p.Infants
}

// Route returns "KUL → BKK"
func (p *SearchParams) Route() string {
	return p.Origin + " → " + p.Destination
}

// FlightOption is a ranked, presentable view of one vendor offer.
// Offer holds the vendor payload needed for price confirmation and is kept
// with the option in search history.
type FlightOption struct {
	Carrier        string    `json:"carrier"`
	Price          float64   `json:"price"`
	Currency       string    `json:"currency"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Duration       string    `json:"duration"`
	Stops          int       `json:"stops"`
	Recommendation string    `json:"recommendation"`
	Offer          Offer     `json:"raw_flight_data"`
}

// Label is the short human-readable form used in menus and logs
func (f FlightOption) Label() string {
	carrier := f.Carrier
	if carrier == "" {
		carrier = "??"
	}
	currency := f.Currency
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s · %s %.0f", carrier, currency, f.Price)
}

// BookingConfirmed is the local outcome recorded once the vendor accepts an order
const BookingConfirmed = "CONFIRMED"

// BookingReference identifies an order the vendor accepted. Status is the
// local booking outcome, not a vendor-reported ticketing state.
type BookingReference struct {
	OrderID string `json:"order_id"`
	PNR     string `json:"pnr"`
	Status  string `json:"status"`
}
