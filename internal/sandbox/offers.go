package sandbox

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = "2006-01-02T15:04:05"
	defaultMax  = 250

	codeInvalidFormat = 477
	codeMandatoryData = 32171
	codeInvalidData   = 4926
)

// carrier is one airline the sandbox sells
type carrier struct {
	code  string
	fare  float64 // base adult fare before the route factor
	stops int
}

var carriers = []carrier{
	{code: "AK", fare: 48, stops: 0},
	{code: "MH", fare: 95, stops: 0},
	{code: "SQ", fare: 130, stops: 1},
	{code: "TG", fare: 110, stops: 0},
	{code: "OD", fare: 62, stops: 1},
	{code: "FD", fare: 55, stops: 0},
}

// fare multipliers per traveler type
var travelerFactor = map[string]float64{
	types.TravelerAdult:      1,
	types.TravelerChild:      0.75,
	types.TravelerHeldInfant: 0.1,
}

type searchRequest struct {
	origin, destination string
	date                time.Time
	adults, children    int
	infants             int
	nonStop             bool
	currency            string
	included, excluded  []string
	max                 int
}

func parseSearch(r *http.Request) (*searchRequest, *paramError) {
	q := r.URL.Query()
	req := &searchRequest{
		origin:      strings.ToUpper(q.Get("originLocationCode")),
		destination: strings.ToUpper(q.Get("destinationLocationCode")),
		nonStop:     q.Get("nonStop") == "true",
		currency:    strings.ToUpper(q.Get("currencyCode")),
		included:    splitCodes(q.Get("includedAirlineCodes")),
		excluded:    splitCodes(q.Get("excludedAirlineCodes")),
	}

	for _, name := range []string{"originLocationCode", "destinationLocationCode", "departureDate", "adults"} {
		if q.Get(name) == "" {
			return nil, &paramError{code: codeMandatoryData, title: "MANDATORY DATA MISSING", detail: "This field must be filled.", parameter: name}
		}
	}
	if len(req.origin) != 3 || len(req.destination) != 3 {
		return nil, &paramError{code: codeInvalidFormat, title: "INVALID FORMAT", detail: "Location codes are 3 letter IATA codes", parameter: "originLocationCode"}
	}

	date, err := time.Parse(dateLayout, q.Get("departureDate"))
	if err != nil {
		return nil, &paramError{code: codeInvalidFormat, title: "INVALID FORMAT", detail: "Invalid date format: expected YYYY-MM-DD", parameter: "departureDate"}
	}
	req.date = date

	var badParam string
	intParam := func(name string, def int) int {
		v, err := atoiDefault(q.Get(name), def)
		if (err != nil || v < 0) && badParam == "" {
			badParam = name
		}
		return v
	}
	req.adults = intParam("adults", 1)
	req.children = intParam("children", 0)
	req.infants = intParam("infants", 0)
	req.max = intParam("max", defaultMax)
	if badParam != "" {
		return nil, &paramError{code: codeInvalidFormat, title: "INVALID FORMAT", detail: "Value must be a non-negative integer", parameter: badParam}
	}
	if req.adults < 1 || req.adults+req.children > 9 {
		return nil, &paramError{code: codeInvalidData, title: "INVALID DATA RECEIVED", detail: "Between 1 and 9 seated travelers are required", parameter: "adults"}
	}
	if req.infants > req.adults {
		return nil, &paramError{code: codeInvalidData, title: "INVALID DATA RECEIVED", detail: "Infants cannot outnumber adults", parameter: "infants"}
	}
	if len(req.included) > 0 && len(req.excluded) > 0 {
		return nil, &paramError{code: codeInvalidData, title: "INVALID DATA RECEIVED", detail: "includedAirlineCodes and excludedAirlineCodes cannot be used together", parameter: "excludedAirlineCodes"}
	}
	if req.currency == "" {
		req.currency = "USD"
	}
	return req, nil
}

type paramError struct {
	code      int
	title     string
	detail    string
	parameter string
}

func splitCodes(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// routeHash makes fares and schedules stable for the same route and date
func routeHash(origin, destination string, date time.Time) uint32 {
	h := fnv.New32a()
	h.Write([]byte(origin + destination + date.Format(dateLayout)))
	return h.Sum32()
}

// offers builds the deterministic offer list for a search
func offers(req *searchRequest) []types.Offer {
	seed := routeHash(req.origin, req.destination, req.date)
	routeFactor := 1 + float64(seed%60)/100
	flying := time.Duration(60+seed%360) * time.Minute

	var out []types.Offer
	for i, c := range carriers {
		if len(req.included) > 0 && !slices.Contains(req.included, c.code) {
			continue
		}
		if slices.Contains(req.excluded, c.code) {
			continue
		}
		if req.nonStop && c.stops > 0 {
			continue
		}
		if len(out) >= req.max {
			break
		}

		departure := req.date.Add(time.Duration(6+3*i)*time.Hour + time.Duration(seed%4)*15*time.Minute)
		fare := c.fare * routeFactor
		out = append(out, buildOffer(strconv.Itoa(len(out)+1), c, req, departure, flying, fare))
	}
	return out
}

func buildOffer(id string, c carrier, req *searchRequest, departure time.Time, flying time.Duration, fare float64) types.Offer {
	var segments []types.Segment
	total := flying
	if c.stops == 0 {
		segments = []types.Segment{segment("1", c.code, req.origin, req.destination, departure, flying)}
	} else {
		hub := "SIN"
		if req.origin == hub || req.destination == hub {
			hub = "DOH"
		}
		first := flying / 2
		layover := 90 * time.Minute
		second := flying - first + 30*time.Minute
		segments = []types.Segment{
			segment("1", c.code, req.origin, hub, departure, first),
			segment("2", c.code, hub, req.destination, departure.Add(first+layover), second),
		}
		total = first + layover + second
	}

	var pricings []types.TravelerPricing
	var sum float64
	add := func(travelerType string, n int) {
		for k := 0; k < n; k++ {
			amount := fare * travelerFactor[travelerType]
			sum += amount
			pricings = append(pricings, types.TravelerPricing{
				TravelerID:   strconv.Itoa(len(pricings) + 1),
				FareOption:   "STANDARD",
				TravelerType: travelerType,
				Price:        types.OfferPrice{Currency: req.currency, Total: money(amount), Base: money(amount * 0.8)},
			})
		}
	}
	add(types.TravelerAdult, req.adults)
	add(types.TravelerChild, req.children)
	add(types.TravelerHeldInfant, req.infants)

	return types.Offer{
		ID:                    id,
		Source:                "GDS",
		NumberOfBookableSeats: 9,
		Itineraries: []types.Itinerary{{
			Duration: isoDuration(total),
			Segments: segments,
		}},
		Price: types.OfferPrice{
			Currency:   req.currency,
			Total:      money(sum),
			Base:       money(sum * 0.8),
			GrandTotal: money(sum),
		},
		ValidatingAirlineCodes: []string{c.code},
		TravelerPricings:       pricings,
	}
}

func segment(id, carrierCode, from, to string, departure time.Time, d time.Duration) types.Segment {
	return types.Segment{
		ID:          id,
		CarrierCode: carrierCode,
		Number:      strconv.Itoa(100 + int(routeHash(from, to, departure)%900)),
		Departure:   types.Endpoint{IATACode: from, At: departure.Format(stampLayout)},
		Arrival:     types.Endpoint{IATACode: to, At: departure.Add(d).Format(stampLayout)},
		Duration:    isoDuration(d),
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// isoDuration formats d the way the vendor does, e.g. PT2H35M
func isoDuration(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("PT%dH%dM", h, m)
	case h > 0:
		return fmt.Sprintf("PT%dH", h)
	default:
		return fmt.Sprintf("PT%dM", m)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, perr := parseSearch(r)
	if perr != nil {
		badRequest(w, perr.code, perr.title, perr.detail, perr.parameter)
		return
	}

	data := offers(req)
	log.Info("search %s-%s on %s: %d offers", req.origin, req.destination, req.date.Format(dateLayout), len(data))
	writeJSON(w, http.StatusOK, map[string]any{
		"meta": map[string]any{"count": len(data)},
		"data": data,
	})
}

type pricingBody struct {
	Data struct {
		Type         string        `json:"type"`
		FlightOffers []types.Offer `json:"flightOffers"`
	} `json:"data"`
}

func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	var body pricingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, codeInvalidFormat, "INVALID FORMAT", "Request body is not valid JSON", "")
		return
	}
	if len(body.Data.FlightOffers) == 0 {
		badRequest(w, codeMandatoryData, "MANDATORY DATA MISSING", "At least one flight offer is required", "data.flightOffers")
		return
	}

	// the sandbox never reprices; the confirmed offer is the submitted one
	confirmed := body.Data.FlightOffers[0]
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"type":         "flight-offers-pricing",
			"flightOffers": []types.Offer{confirmed},
		},
	})
}
