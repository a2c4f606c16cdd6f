package amadeus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

// Search returns the vendor's offers for params, or ErrNoOffers
func (c *Client) Search(ctx context.Context, params *types.SearchParams) ([]types.Offer, error) {
	var resp struct {
		Data []types.Offer `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, searchPath, searchQuery(params, c.maxOffers), nil, &resp); err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	c.logFor(ctx).Info("found %d offers for %s on %s", len(resp.Data), params.Route(), params.DepartureDate)
	if len(resp.Data) == 0 {
		return nil, ErrNoOffers
	}
	return resp.Data, nil
}

func searchQuery(p *types.SearchParams, maxOffers int) url.Values {
	q := url.Values{}
	q.Set("originLocationCode", p.Origin)
	q.Set("destinationLocationCode", p.Destination)
	q.Set("departureDate", p.DepartureDate)

	adults := p.Adults
	if adults < 1 {
		adults = 1
	}
	q.Set("adults", strconv.Itoa(adults))

	if p.ReturnDate != "" {
		q.Set("returnDate", p.ReturnDate)
	}
	if p.Children > 0 {
		q.Set("children", strconv.Itoa(p.Children))
	}
	if p.Infants > 0 {
		q.Set("infants", strconv.Itoa(p.Infants))
	}
	if p.NonStop {
		q.Set("nonStop", "true")
	}
	if p.Currency != "" {
		q.Set("currencyCode", p.Currency)
	}
	// the vendor rejects both lists in one request
	if len(p.PreferredAirlines) > 0 {
		q.Set("includedAirlineCodes", strings.Join(p.PreferredAirlines, ","))
	} else if len(p.AvoidedAirlines) > 0 {
		q.Set("excludedAirlineCodes", strings.Join(p.AvoidedAirlines, ","))
	}
	if maxOffers > 0 {
		q.Set("max", strconv.Itoa(maxOffers))
	}
	return q
}

type pricingRequest struct {
	Data pricingData `json:"data"`
}

type pricingData struct {
	Type         string        `json:"type"`
	FlightOffers []types.Offer `json:"flightOffers"`
}

// Price asks the vendor to reconfirm price and availability of offer.
// The confirmed offer is what must be booked.
func (c *Client) Price(ctx context.Context, offer types.Offer) (types.Offer, error) {
	body := pricingRequest{Data: pricingData{
		Type:         "flight-offers-pricing",
		FlightOffers: []types.Offer{offer},
	}}

	var resp struct {
		Data pricingData `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, pricingPath, nil, body, &resp); err != nil {
		return types.Offer{}, fmt.Errorf("price confirmation failed: %w", err)
	}
	if len(resp.Data.FlightOffers) == 0 {
		return types.Offer{}, ErrNotConfirmed
	}

	confirmed := resp.Data.FlightOffers[0]
	c.logFor(ctx).Info("offer %s confirmed at %s %s", confirmed.ID, confirmed.Price.Currency, confirmed.Price.Total)
	return confirmed, nil
}
