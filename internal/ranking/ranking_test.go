package ranking

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

func offer(id, carrier, total string, segments int) types.Offer {
	o := types.Offer{
		ID:    id,
		Price: types.OfferPrice{Currency: "USD", Total: total},
	}
	itin := types.Itinerary{Duration: "PT2H"}
	for i := 0; i < segments; i++ {
		itin.Segments = append(itin.Segments, types.Segment{
			CarrierCode: carrier,
			Departure:   types.Endpoint{IATACode: "KUL", At: "2025-07-01T08:00:00"},
			Arrival:     types.Endpoint{IATACode: "BKK", At: "2025-07-01T10:00:00"},
		})
	}
	if segments > 0 {
		o.Itineraries = []types.Itinerary{itin}
	}
	return o
}

func TestRank_CheapestFirst(t *testing.T) {
	offers := []types.Offer{
		offer("1", "MH", "80", 1),
		offer("2", "AK", "53", 1),
		offer("3", "TG", "120", 1),
	}

	ranked := Rank(offers, nil)

	require.Len(t, ranked, 3)
	assert.Equal(t, 53.0, ranked[0].Price)
	assert.Equal(t, "AK", ranked[0].Carrier)
	assert.Equal(t, []float64{53, 80, 120}, []float64{ranked[0].Price, ranked[1].Price, ranked[2].Price})
}

func TestRank_SortedAndPreservesMultiset(t *testing.T) {
	prices := []string{"310.50", "99", "99", "12.25", "450", "99", "12.25", "0"}
	var offers []types.Offer
	for i, p := range prices {
		offers = append(offers, offer(string(rune('a'+i)), "SQ", p, 1))
	}

	ranked := Rank(offers, nil)
	require.Len(t, ranked, len(offers))

	assert.True(t, sort.SliceIsSorted(ranked, func(i, j int) bool {
		return ranked[i].Price < ranked[j].Price
	}))

	seen := map[string]int{}
	for _, opt := range ranked {
		seen[opt.Offer.ID]++
	}
	for _, o := range offers {
		assert.Equal(t, 1, seen[o.ID], "offer %s", o.ID)
	}
}

func TestRank_StableForEqualPrices(t *testing.T) {
	offers := []types.Offer{
		offer("first", "SQ", "100", 1),
		offer("second", "MH", "100", 1),
		offer("third", "AK", "100", 1),
	}

	ranked := Rank(offers, nil)

	assert.Equal(t, "first", ranked[0].Offer.ID)
	assert.Equal(t, "second", ranked[1].Offer.ID)
	assert.Equal(t, "third", ranked[2].Offer.ID)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil, nil))
	assert.Empty(t, Rank([]types.Offer{}, nil))
}

func TestRank_BadPriceRanksAtZero(t *testing.T) {
	offers := []types.Offer{
		offer("ok", "SQ", "70", 1),
		offer("bad", "MH", "n/a", 1),
		offer("neg", "AK", "-5", 1),
	}

	ranked := Rank(offers, nil)

	require.Len(t, ranked, 3)
	assert.Equal(t, 0.0, ranked[0].Price)
	assert.Equal(t, 0.0, ranked[1].Price)
	assert.Equal(t, "ok", ranked[2].Offer.ID)
}

func TestRank_OfferWithoutSegments(t *testing.T) {
	ranked := Rank([]types.Offer{offer("x", "", "40", 0)}, nil)

	require.Len(t, ranked, 1)
	assert.Empty(t, ranked[0].Carrier)
	assert.True(t, ranked[0].DepartureTime.IsZero())
	assert.Equal(t, "?? · USD 40", ranked[0].Label())
}

func TestRank_ExtractsSchedule(t *testing.T) {
	o := offer("1", "SQ", "250", 2)
	o.Itineraries[0].Segments[1].Arrival.At = "2025-07-01T15:30:00"

	ranked := Rank([]types.Offer{o}, nil)

	opt := ranked[0]
	assert.Equal(t, "SQ", opt.Carrier)
	assert.Equal(t, 1, opt.Stops)
	assert.Equal(t, 8, opt.DepartureTime.Hour())
	assert.Equal(t, 15, opt.ArrivalTime.Hour())
	assert.Equal(t, "PT2H", opt.Duration)
	assert.Equal(t, "SQ · USD 250", opt.Label())
}

func TestRank_Recommendations(t *testing.T) {
	budget := 100.0
	offers := []types.Offer{
		offer("a", "AK", "70", 1),
		offer("b", "MH", "95", 2),
		offer("c", "TG", "130", 3),
		offer("d", "SQ", "140", 1),
	}

	ranked := Rank(offers, &budget)

	assert.Equal(t, "Direct flight • Great value • Cheapest option", ranked[0].Recommendation)
	assert.Equal(t, "1 stop • Within budget • Consider direct flights", ranked[1].Recommendation)
	assert.Equal(t, "2 stops • Over budget • Consider direct flights", ranked[2].Recommendation)
	assert.Equal(t, "Direct flight • Over budget", ranked[3].Recommendation)
}

func TestRank_NoBudgetTag(t *testing.T) {
	ranked := Rank([]types.Offer{offer("a", "AK", "70", 1)}, nil)
	assert.Equal(t, "Direct flight • Cheapest option", ranked[0].Recommendation)
}

func TestSimilar(t *testing.T) {
	fresh := Rank([]types.Offer{
		offer("1", "AK", "50", 1),
		offer("2", "MH", "90", 1),
		offer("3", "MH", "130", 1),
		offer("4", "SQ", "200", 1),
	}, nil)

	tests := []struct {
		name     string
		original types.FlightOption
		wantID   string
	}{
		{"same carrier nearest price", types.FlightOption{Carrier: "MH", Price: 120}, "3"},
		{"same carrier lower", types.FlightOption{Carrier: "MH", Price: 95}, "2"},
		{"only one of carrier", types.FlightOption{Carrier: "SQ", Price: 60}, "4"},
		{"unknown carrier falls back to cheapest", types.FlightOption{Carrier: "EK", Price: 180}, "1"},
		{"empty carrier falls back to cheapest", types.FlightOption{Price: 180}, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Similar(fresh, tt.original)
			require.True(t, ok)
			assert.Equal(t, tt.wantID, got.Offer.ID)
		})
	}
}

func TestSimilar_Empty(t *testing.T) {
	_, ok := Similar(nil, types.FlightOption{Carrier: "MH", Price: 10})
	assert.False(t, ok)
}
