package sandbox

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/FeelPulse/flightpulse/internal/amadeus"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

const (
	codeNotFound           = 1797
	codeSegmentSellFailure = 34651

	creationLayout = "2006-01-02T15:04:05.000"
	pnrAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// orderStore keeps created orders in memory, keyed by the decoded order id
type orderStore struct {
	orders map[string]*amadeus.Order
	mu     sync.RWMutex
}

func newOrderStore() *orderStore {
	return &orderStore{orders: make(map[string]*amadeus.Order)}
}

func (s *orderStore) Put(key string, o *amadeus.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[key] = o
}

func (s *orderStore) Get(key string) (*amadeus.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[key]
	return o, ok
}

func (s *orderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// newOrderID returns an id shaped like the vendor's: base64 text that is
// already percent-encoded, plus the decoded key it is stored under
func newOrderID() (encoded, key string) {
	id := uuid.New()
	key = base64.StdEncoding.EncodeToString(id[:])
	return url.QueryEscape(key), key
}

func newPNR() string {
	id := uuid.New()
	var sb strings.Builder
	for _, b := range id[:6] {
		sb.WriteByte(pnrAlphabet[int(b)%len(pnrAlphabet)])
	}
	return sb.String()
}

type orderBody struct {
	Data struct {
		Type         string                  `json:"type"`
		FlightOffers []types.Offer           `json:"flightOffers"`
		Travelers    []amadeus.OrderTraveler `json:"travelers"`
	} `json:"data"`
}

// checkTravelers requires one traveler per traveler pricing, matched by id
func checkTravelers(offer types.Offer, travelers []amadeus.OrderTraveler) error {
	if len(travelers) == 0 {
		return fmt.Errorf("at least one traveler is required")
	}
	if len(travelers) != len(offer.TravelerPricings) {
		return fmt.Errorf("offer prices %d travelers, order has %d", len(offer.TravelerPricings), len(travelers))
	}
	ids := make(map[string]bool, len(travelers))
	for _, t := range travelers {
		ids[t.ID] = true
	}
	for _, tp := range offer.TravelerPricings {
		if !ids[tp.TravelerID] {
			return fmt.Errorf("traveler %s of the offer is missing from the order", tp.TravelerID)
		}
	}
	return nil
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body orderBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, codeInvalidFormat, "INVALID FORMAT", "Request body is not valid JSON", "")
		return
	}
	if len(body.Data.FlightOffers) != 1 {
		badRequest(w, codeMandatoryData, "MANDATORY DATA MISSING", "Exactly one flight offer is required", "data.flightOffers")
		return
	}
	offer := body.Data.FlightOffers[0]
	if err := checkTravelers(offer, body.Data.Travelers); err != nil {
		badRequest(w, codeInvalidData, "INVALID DATA RECEIVED", err.Error(), "data.travelers")
		return
	}

	if s.takeFailure() {
		log.Warn("rejecting booking of offer %s with a segment sell failure", offer.ID)
		writeErrors(w, http.StatusBadRequest, amadeus.ErrorItem{
			Status: http.StatusBadRequest,
			Code:   codeSegmentSellFailure,
			Title:  "SEGMENT SELL FAILURE",
			Detail: "Could not sell segment 1",
		})
		return
	}

	encoded, key := newOrderID()
	order := &amadeus.Order{
		Type:            "flight-order",
		ID:              encoded,
		QueuingOfficeID: "SANDBOX01",
		AssociatedRecords: []amadeus.AssociatedRecord{{
			Reference:        newPNR(),
			CreationDate:     s.now().UTC().Format(creationLayout),
			OriginSystemCode: "GDS",
			FlightOfferID:    offer.ID,
		}},
		FlightOffers: []types.Offer{offer},
		Travelers:    body.Data.Travelers,
	}
	s.orders.Put(key, order)
	log.Info("order %s created for %d travelers, PNR %s", encoded, len(order.Travelers), order.PNR())

	writeJSON(w, http.StatusCreated, map[string]any{"data": order})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// the path segment may carry the id once or twice encoded
	key := id
	for i := 0; i < 2 && strings.Contains(key, "%"); i++ {
		decoded, err := url.PathUnescape(key)
		if err != nil {
			break
		}
		key = decoded
	}

	order, ok := s.orders.Get(key)
	if !ok {
		writeErrors(w, http.StatusNotFound, amadeus.ErrorItem{
			Status: http.StatusNotFound,
			Code:   codeNotFound,
			Title:  "RESOURCE NOT FOUND",
			Detail: "The targeted resource doesn't exist",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": order})
}
