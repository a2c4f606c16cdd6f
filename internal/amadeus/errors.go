package amadeus

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSegmentUnavailable is the transient booking failure: the vendor could
	// not sell a segment of the priced offer, usually because seats just went.
	ErrSegmentUnavailable = errors.New("segment sell failure: flight no longer available for booking")

	// ErrTravelerMismatch means the traveler list does not line up with the offer's traveler pricings
	ErrTravelerMismatch = errors.New("traveler count does not match the priced offer")

	// ErrNoOffers means a search returned no offers
	ErrNoOffers = errors.New("no flight offers found")

	// ErrNotConfirmed means price confirmation returned no offer
	ErrNotConfirmed = errors.New("price confirmation returned no offer")

	// ErrIncompleteBooking means the vendor returned an order without an id
	ErrIncompleteBooking = errors.New("booking details are incomplete")
)

// segment sell failure code in the vendor's error catalogue
const codeSegmentSellFailure = 34651

var segmentFailurePhrases = []string{
	"segment sell failure",
	"could not sell segment",
	"no longer available",
}

// ErrorSource points at the offending request parameter
type ErrorSource struct {
	Parameter string `json:"parameter,omitempty"`
	Pointer   string `json:"pointer,omitempty"`
	Example   string `json:"example,omitempty"`
}

// ErrorItem is one entry of the vendor's errors array
type ErrorItem struct {
	Status int          `json:"status"`
	Code   int          `json:"code"`
	Title  string       `json:"title"`
	Detail string       `json:"detail,omitempty"`
	Source *ErrorSource `json:"source,omitempty"`
}

// APIError is a non-2xx vendor response
type APIError struct {
	StatusCode int
	Errors     []ErrorItem
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		body := e.Body
		if len(body) > 200 {
			body = body[:200] + "..."
		}
		return fmt.Sprintf("amadeus API error: status %d: %s", e.StatusCode, body)
	}

	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msg := item.Title
		if item.Detail != "" {
			msg += ": " + item.Detail
		}
		if item.Code != 0 {
			msg = fmt.Sprintf("[%d] %s", item.Code, msg)
		}
		if item.Source != nil && item.Source.Parameter != "" {
			msg += " (field " + item.Source.Parameter + ")"
		}
		msgs = append(msgs, msg)
	}
	return fmt.Sprintf("amadeus API error: status %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

// SegmentUnavailable reports whether any error item is a segment sell failure
func (e *APIError) SegmentUnavailable() bool {
	for _, item := range e.Errors {
		if item.Code == codeSegmentSellFailure {
			return true
		}
		text := strings.ToLower(item.Title + " " + item.Detail)
		for _, phrase := range segmentFailurePhrases {
			if strings.Contains(text, phrase) {
				return true
			}
		}
	}
	return false
}
