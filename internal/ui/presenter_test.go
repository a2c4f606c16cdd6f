package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FeelPulse/flightpulse/internal/amadeus"
	"github.com/FeelPulse/flightpulse/internal/store"
	"github.com/FeelPulse/flightpulse/internal/usage"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

func newPresenter() (*Presenter, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, WithPlainMarkdown()), &buf
}

func option(carrier string, price float64, stops int) types.FlightOption {
	dep := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	return types.FlightOption{
		Carrier:        carrier,
		Price:          price,
		Currency:       "USD",
		DepartureTime:  dep,
		ArrivalTime:    dep.Add(70 * time.Minute),
		Duration:       "PT1H10M",
		Stops:          stops,
		Recommendation: "Direct flight • Cheapest option",
	}
}

func TestMessages_PlainOnBuffer(t *testing.T) {
	p, buf := newPresenter()

	p.Info("searching %s", "KUL → BKK")
	p.Notice("availability changed")
	p.Success("done")
	p.Error("failed: %v", "boom")

	out := buf.String()
	assert.Contains(t, out, "• searching KUL → BKK\n")
	assert.Contains(t, out, "⏰ availability changed\n")
	assert.Contains(t, out, "✓ done\n")
	assert.Contains(t, out, "✗ failed: boom\n")
	assert.NotContains(t, out, "\x1b[", "a non-terminal writer gets no escape codes")
}

func TestOptions_Window(t *testing.T) {
	p, buf := newPresenter()
	opts := []types.FlightOption{
		option("SQ", 53, 0), option("MH", 80, 1), option("AK", 90, 0),
		option("TG", 120, 2), option("OD", 130, 0),
	}

	p.Options(opts, 3, 3)

	out := buf.String()
	assert.Contains(t, out, "4. TG · USD 120")
	assert.Contains(t, out, "5. OD · USD 130")
	assert.NotContains(t, out, "3. AK")
	assert.NotContains(t, out, "6.")
}

func TestOptions_Schedule(t *testing.T) {
	p, buf := newPresenter()

	p.Options([]types.FlightOption{option("SQ", 53, 0)}, 0, 3)

	out := buf.String()
	assert.Contains(t, out, "1. SQ · USD 53")
	assert.Contains(t, out, "2025-07-01 08:00 → 09:10 (1h10m)")
	assert.Contains(t, out, "Direct flight • Cheapest option")
}

func TestSchedule(t *testing.T) {
	assert.Equal(t, "schedule unavailable", schedule(types.FlightOption{}))

	overnight := option("SQ", 1, 0)
	overnight.ArrivalTime = overnight.DepartureTime.Add(20 * time.Hour)
	overnight.Duration = ""
	assert.Equal(t, "2025-07-01 08:00 → 2025-07-02 04:00", schedule(overnight))
}

func TestUnderstood(t *testing.T) {
	p, buf := newPresenter()
	budget := 400.0

	p.Understood(&types.SearchParams{Origin: "KUL", Destination: "BKK", DepartureDate: "2025-07-01", Budget: &budget})

	out := buf.String()
	assert.Contains(t, out, "Understood: KUL → BKK on 2025-07-01")
	assert.Contains(t, out, "Budget: USD 400")
}

func TestConfirmation(t *testing.T) {
	p, buf := newPresenter()

	p.Confirmation(
		types.BookingReference{OrderID: "eJzTd9c3", PNR: "ABC123", Status: "CONFIRMED"},
		option("SQ", 53, 0),
		&types.SearchParams{Origin: "KUL", Destination: "BKK"},
	)

	out := buf.String()
	assert.Contains(t, out, "Flight Order ID: eJzTd9c3")
	assert.Contains(t, out, "PNR: ABC123")
	assert.Contains(t, out, "Route: KUL → BKK")
	assert.Contains(t, out, "check eJzTd9c3")
}

func TestBookingMarkdown(t *testing.T) {
	order := &amadeus.Order{
		ID:                "ORDER1",
		AssociatedRecords: []amadeus.AssociatedRecord{{Reference: "ABC123", CreationDate: "2025-06-15T10:20:30.000"}},
		FlightOffers: []types.Offer{{
			Price: types.OfferPrice{Currency: "EUR", Total: "153.20"},
			Itineraries: []types.Itinerary{{Segments: []types.Segment{{
				CarrierCode: "MH", Number: "780",
				Departure: types.Endpoint{IATACode: "KUL", At: "2025-07-01T08:00:00"},
				Arrival:   types.Endpoint{IATACode: "BKK", At: "2025-07-01T09:10:00"},
			}}}},
		}},
		Travelers: []amadeus.OrderTraveler{
			{Name: amadeus.TravelerName{FirstName: "ALEX", LastName: "TAN"}},
			{Name: amadeus.TravelerName{FirstName: "SAM", LastName: "LEE"}},
		},
	}

	md := bookingMarkdown(order)

	assert.Contains(t, md, "**Flight Order ID:** ORDER1")
	assert.Contains(t, md, "**PNR Reference:** ABC123")
	assert.Contains(t, md, "**Booking Date:** 2025-06-15\n")
	assert.Contains(t, md, "**Total Price:** EUR 153.20")
	assert.Contains(t, md, "1. MH780 KUL → BKK, departs 2025-07-01T08:00:00, arrives 2025-07-01T09:10:00")
	assert.Contains(t, md, "Travelers (2)")
	assert.Contains(t, md, "2. SAM LEE")
}

func TestBookingMarkdown_SparseOrder(t *testing.T) {
	md := bookingMarkdown(&amadeus.Order{ID: "ORDER1"})

	assert.Contains(t, md, "ORDER1")
	assert.NotContains(t, md, "PNR")
	assert.NotContains(t, md, "Travelers")
}

func TestBookingDetails_Rendered(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithWidth(100))

	p.BookingDetails(&amadeus.Order{ID: "ORDER1"})

	assert.Contains(t, buf.String(), "ORDER1")
}

func TestHelp(t *testing.T) {
	p, buf := newPresenter()
	p.Help()

	for _, cmd := range []string{"check", "history", "usage", "help", "quit"} {
		assert.Contains(t, buf.String(), cmd)
	}
}

func TestUsage(t *testing.T) {
	p, buf := newPresenter()
	p.Usage(&usage.Stats{})
	assert.Equal(t, "No usage recorded yet.\n", buf.String())
}

func TestHistory(t *testing.T) {
	p, buf := newPresenter()
	p.History(nil, nil)
	assert.Contains(t, buf.String(), "No history yet.")

	buf.Reset()
	now := time.Now()
	p.History(
		[]*store.SearchRecord{{Query: "KUL to BKK", Params: types.SearchParams{Origin: "KUL", Destination: "BKK", DepartureDate: "2025-07-01"}, CreatedAt: now}},
		[]*store.BookingRecord{{OrderID: "ORDER1", PNR: "ABC123", Route: "KUL → BKK", Carrier: "SQ", Price: 53, Currency: "USD", Retried: true, CreatedAt: now}},
	)

	out := buf.String()
	require.True(t, strings.Index(out, "Bookings") < strings.Index(out, "Searches"))
	assert.Contains(t, out, "ORDER1  PNR ABC123  (rebooked)")
	assert.Contains(t, out, `0 options  "KUL to BKK"`)
}

func TestLocalBooking(t *testing.T) {
	p, buf := newPresenter()
	created := time.Date(2025, 6, 15, 10, 30, 0, 0, time.Local)
	p.LocalBooking(&store.BookingRecord{OrderID: "XYZ123", Route: "KUL → BKK", Carrier: "MH", Price: 153, Currency: "USD", Travelers: 2, Retried: true, CreatedAt: created})

	out := buf.String()
	assert.Contains(t, out, "Booked here on 2025-06-15 10:30: KUL → BKK  MH  USD 153  2 traveler(s)")
	assert.Contains(t, out, "(rebooked)")
}
