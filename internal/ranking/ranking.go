// Package ranking turns vendor offers into price-ordered FlightOptions.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/FeelPulse/flightpulse/internal/logger"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

const (
	separator = " • "

	// greatValueRatio marks prices at or under this share of the budget
	greatValueRatio = 0.8
)

var log = logger.Component("ranking")

// Rank builds one FlightOption per offer and sorts them by ascending price.
// The sort is stable so equal prices keep the vendor's order. Offers whose
// price cannot be read rank at 0.
func Rank(offers []types.Offer, budget *float64) []types.FlightOption {
	options := make([]types.FlightOption, 0, len(offers))
	for _, offer := range offers {
		options = append(options, newOption(offer))
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Price < options[j].Price
	})

	for i := range options {
		options[i].Recommendation = recommend(i, options[i], budget)
	}
	return options
}

func newOption(offer types.Offer) types.FlightOption {
	price, err := offer.Price.Amount()
	if err != nil || price < 0 || math.IsNaN(price) {
		log.Warn("offer %s has unusable price %q, ranking at 0", offer.ID, offer.Price.Total)
		price = 0
	}

	opt := types.FlightOption{
		Price:    price,
		Currency: offer.Price.Currency,
		Offer:    offer,
	}

	itin, ok := offer.FirstItinerary()
	if !ok || len(itin.Segments) == 0 {
		return opt
	}

	first, last := itin.Segments[0], itin.Segments[len(itin.Segments)-1]
	opt.Carrier = first.CarrierCode
	opt.DepartureTime = first.Departure.Time()
	opt.ArrivalTime = last.Arrival.Time()
	opt.Duration = itin.Duration
	opt.Stops = len(itin.Segments) - 1
	return opt
}

func recommend(index int, opt types.FlightOption, budget *float64) string {
	var parts []string

	switch opt.Stops {
	case 0:
		parts = append(parts, "Direct flight")
	case 1:
		parts = append(parts, "1 stop")
	default:
		parts = append(parts, fmt.Sprintf("%d stops", opt.Stops))
	}

	if budget != nil && *budget > 0 {
		switch {
		case opt.Price <= *budget*greatValueRatio:
			parts = append(parts, "Great value")
		case opt.Price <= *budget:
			parts = append(parts, "Within budget")
		default:
			parts = append(parts, "Over budget")
		}
	}

	if index == 0 {
		parts = append(parts, "Cheapest option")
	}
	if index < TopCount && opt.Stops > 0 {
		parts = append(parts, "Consider direct flights")
	}

	return strings.Join(parts, separator)
}

// TopCount is how many leading options receive static advice
const TopCount = 3

// Similar picks the fresh option closest to original: the nearest price among
// the same carrier, otherwise the cheapest. fresh must be ranked. It returns
// false only when fresh is empty.
func Similar(fresh []types.FlightOption, original types.FlightOption) (types.FlightOption, bool) {
	if len(fresh) == 0 {
		return types.FlightOption{}, false
	}

	best := -1
	bestDiff := math.Inf(1)
	for i, opt := range fresh {
		if opt.Carrier == "" || opt.Carrier != original.Carrier {
			continue
		}
		if d := math.Abs(opt.Price - original.Price); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	if best >= 0 {
		return fresh[best], true
	}

	cheapest := fresh[0]
	for _, opt := range fresh[1:] {
		if opt.Price < cheapest.Price {
			cheapest = opt
		}
	}
	return cheapest, true
}
