package sandbox

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FeelPulse/flightpulse/internal/amadeus"
	"github.com/FeelPulse/flightpulse/internal/metrics"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

func startSandbox(t *testing.T, cfg Config) (*Server, *httptest.Server, *amadeus.Client) {
	t.Helper()
	if cfg.ClientID == "" {
		cfg.ClientID, cfg.ClientSecret = "id", "secret"
	}
	s := New(cfg, metrics.NewCollector())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	client := amadeus.New(amadeus.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
	})
	return s, srv, client
}

func searchParams(adults int) *types.SearchParams {
	return &types.SearchParams{Origin: "KUL", Destination: "BKK", DepartureDate: "2025-07-01", Adults: adults}
}

func travelers(n int) []types.Traveler {
	out := make([]types.Traveler, n)
	for i := range out {
		out[i] = types.Traveler{FirstName: "T", LastName: "TAN", DateOfBirth: "1990-01-01", PassportCountry: "MY"}
	}
	return out
}

func TestEndToEnd_SearchPriceBookLookup(t *testing.T) {
	_, _, client := startSandbox(t, Config{})
	ctx := context.Background()

	offers, err := client.Search(ctx, searchParams(2))
	require.NoError(t, err)
	require.Len(t, offers, len(carriers))
	for _, o := range offers {
		assert.Len(t, o.TravelerPricings, 2)
		assert.NotEmpty(t, o.Raw)
	}

	priced, err := client.Price(ctx, offers[0])
	require.NoError(t, err)
	assert.Equal(t, offers[0].ID, priced.ID)
	assert.Equal(t, offers[0].Price.Total, priced.Price.Total)

	order, err := client.Book(ctx, priced, travelers(2), types.Contact{FirstName: "T", LastName: "TAN"})
	require.NoError(t, err)
	assert.Contains(t, order.ID, "%3D", "ids arrive percent-encoded")
	assert.Len(t, order.PNR(), 6)
	assert.Len(t, order.Travelers, 2)

	found, err := client.Lookup(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, order.PNR(), found.PNR())
	require.Len(t, found.FlightOffers, 1)
	assert.Equal(t, offers[0].Price.Total, found.FlightOffers[0].Price.Total)
}

func TestEndToEnd_SegmentSellFailure(t *testing.T) {
	s, _, client := startSandbox(t, Config{FailBookings: 1})
	ctx := context.Background()

	offers, err := client.Search(ctx, searchParams(1))
	require.NoError(t, err)

	_, err = client.Book(ctx, offers[0], travelers(1), types.Contact{})
	require.ErrorIs(t, err, amadeus.ErrSegmentUnavailable)

	_, err = client.Book(ctx, offers[0], travelers(1), types.Contact{})
	require.NoError(t, err, "only the configured number of bookings fail")

	s.FailNextBookings(2)
	_, err = client.Book(ctx, offers[0], travelers(1), types.Contact{})
	assert.ErrorIs(t, err, amadeus.ErrSegmentUnavailable)
}

func TestEndToEnd_LookupUnknownOrder(t *testing.T) {
	_, _, client := startSandbox(t, Config{})

	_, err := client.Lookup(context.Background(), "bm9wZQ%3D%3D")

	var apiErr *amadeus.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, codeNotFound, apiErr.Errors[0].Code)
}

func TestEndToEnd_BadCredentials(t *testing.T) {
	s := New(Config{ClientID: "id", ClientSecret: "secret"}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	client := amadeus.New(amadeus.Config{ClientID: "id", ClientSecret: "wrong", BaseURL: srv.URL, Timeout: 5 * time.Second})
	_, err := client.Search(context.Background(), searchParams(1))
	assert.Error(t, err)
}

func TestSearch_Filters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"non-stop", "&nonStop=true", []string{"AK", "MH", "TG", "FD"}},
		{"included", "&includedAirlineCodes=MH,SQ", []string{"MH", "SQ"}},
		{"excluded", "&excludedAirlineCodes=AK,MH,SQ,TG", []string{"OD", "FD"}},
		{"max", "&max=2", []string{"AK", "MH"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet,
				"/v2/shopping/flight-offers?originLocationCode=KUL&destinationLocationCode=BKK&departureDate=2025-07-01&adults=1"+tt.query, nil)
			sr, perr := parseSearch(req)
			require.Nil(t, perr)

			var got []string
			for _, o := range offers(sr) {
				got = append(got, o.ValidatingAirlineCodes[0])
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_Deterministic(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/?originLocationCode=KUL&destinationLocationCode=BKK&departureDate=2025-07-01&adults=2&children=1&infants=1", nil)
	sr, perr := parseSearch(req)
	require.Nil(t, perr)

	first, second := offers(sr), offers(sr)
	assert.Equal(t, first, second)

	o := first[0]
	require.Len(t, o.TravelerPricings, 4)
	assert.Equal(t, []string{types.TravelerAdult, types.TravelerAdult, types.TravelerChild, types.TravelerHeldInfant},
		[]string{o.TravelerPricings[0].TravelerType, o.TravelerPricings[1].TravelerType, o.TravelerPricings[2].TravelerType, o.TravelerPricings[3].TravelerType})
	assert.Equal(t, "4", o.TravelerPricings[3].TravelerID)

	oneStop := first[2]
	require.Len(t, oneStop.Itineraries[0].Segments, 2)
	assert.Equal(t, "SIN", oneStop.Itineraries[0].Segments[0].Arrival.IATACode)
}

func TestSearch_Validation(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		code      int
		parameter string
	}{
		{"missing origin", "destinationLocationCode=BKK&departureDate=2025-07-01&adults=1", codeMandatoryData, "originLocationCode"},
		{"bad date", "originLocationCode=KUL&destinationLocationCode=BKK&departureDate=07/01/2025&adults=1", codeInvalidFormat, "departureDate"},
		{"bad adults", "originLocationCode=KUL&destinationLocationCode=BKK&departureDate=2025-07-01&adults=x", codeInvalidFormat, "adults"},
		{"zero adults", "originLocationCode=KUL&destinationLocationCode=BKK&departureDate=2025-07-01&adults=0", codeInvalidData, "adults"},
		{"both airline lists", "originLocationCode=KUL&destinationLocationCode=BKK&departureDate=2025-07-01&adults=1&includedAirlineCodes=MH&excludedAirlineCodes=AK", codeInvalidData, "excludedAirlineCodes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, perr := parseSearch(httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))
			require.NotNil(t, perr)
			assert.Equal(t, tt.code, perr.code)
			assert.Equal(t, tt.parameter, perr.parameter)
		})
	}
}

func token(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.PostForm(srv.URL+"/v1/security/oauth2/token", url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"id"},
		"client_secret": {"secret"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1800, body.ExpiresIn)
	return body.AccessToken
}

func TestAuthorize_RejectsUnknownToken(t *testing.T) {
	_, srv, _ := startSandbox(t, Config{})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/booking/flight-orders/abc", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "38190")
}

func TestRateLimit(t *testing.T) {
	_, srv, _ := startSandbox(t, Config{RateLimit: 2})
	tok := token(t, srv)

	get := func() *http.Response {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/booking/flight-orders/abc", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	// the token request used the first slot
	first := get()
	assert.Equal(t, http.StatusNotFound, first.StatusCode)
	assert.Equal(t, "0", first.Header.Get("X-RateLimit-Remaining"))
	resp := get()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestCreateOrder_TravelerMismatch(t *testing.T) {
	_, srv, _ := startSandbox(t, Config{})
	tok := token(t, srv)

	body := `{"data":{"type":"flight-order","flightOffers":[{"id":"1","travelerPricings":[{"travelerId":"1"},{"travelerId":"2"}]}],"travelers":[{"id":"1","name":{"firstName":"A","lastName":"B"}}]}}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/booking/flight-orders", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	data, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(data), "offer prices 2 travelers, order has 1")
}

func TestHealthAndMetrics(t *testing.T) {
	_, srv, client := startSandbox(t, Config{})
	_, err := client.Search(context.Background(), searchParams(1))
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(data), `flightpulse_sandbox_http_requests_total{code="200",route="/v2/shopping/flight-offers"} 1`)
}

func TestIsoDuration(t *testing.T) {
	assert.Equal(t, "PT2H35M", isoDuration(155*time.Minute))
	assert.Equal(t, "PT3H", isoDuration(3*time.Hour))
	assert.Equal(t, "PT45M", isoDuration(45*time.Minute))
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := New(Config{}, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
