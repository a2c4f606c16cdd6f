package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// vendor timestamps carry no zone
const offerTimeLayout = "2006-01-02T15:04:05"

// Offer is a vendor flight offer. Raw keeps the exact payload so it can be sent
// back unchanged for price confirmation and booking.
type Offer struct {
	ID                     string            `json:"id"`
	Source                 string            `json:"source,omitempty"`
	NumberOfBookableSeats  int               `json:"numberOfBookableSeats,omitempty"`
	Itineraries            []Itinerary       `json:"itineraries"`
	Price                  OfferPrice        `json:"price"`
	ValidatingAirlineCodes []string          `json:"validatingAirlineCodes,omitempty"`
	TravelerPricings       []TravelerPricing `json:"travelerPricings"`
	Raw                    json.RawMessage   `json:"-"`
}

// Itinerary is one direction of travel
type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Segment is a single flight leg
type Segment struct {
	Departure     Endpoint `json:"departure"`
	Arrival       Endpoint `json:"arrival"`
	CarrierCode   string   `json:"carrierCode"`
	Number        string   `json:"number"`
	Duration      string   `json:"duration,omitempty"`
	NumberOfStops int      `json:"numberOfStops"`
	ID            string   `json:"id,omitempty"`
}

// Endpoint is a departure or arrival point
type Endpoint struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

// Time parses the vendor timestamp, zero on failure
func (e Endpoint) Time() time.Time {
	t, err := time.Parse(offerTimeLayout, e.At)
	if err != nil {
		return time.Time{}
	}
	return t
}

// OfferPrice is the vendor price block; amounts are decimal strings
type OfferPrice struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	Base       string `json:"base,omitempty"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

// Amount parses Total
func (p OfferPrice) Amount() (float64, error) {
	return strconv.ParseFloat(p.Total, 64)
}

// TravelerPricing ties a priced fare to a traveler id
type TravelerPricing struct {
	TravelerID   string     `json:"travelerId"`
	FareOption   string     `json:"fareOption,omitempty"`
	TravelerType string     `json:"travelerType"`
	Price        OfferPrice `json:"price"`
}

// UnmarshalJSON decodes the known fields and keeps the raw payload
func (o *Offer) UnmarshalJSON(data []byte) error {
	type plain Offer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Offer(p)
	o.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the raw payload when present
func (o Offer) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	type plain Offer
	return json.Marshal(plain(o))
}

// FirstItinerary returns the outbound itinerary, if any
func (o Offer) FirstItinerary() (Itinerary, bool) {
	if len(o.Itineraries) == 0 {
		return Itinerary{}, false
	}
	return o.Itineraries[0], true
}
