package amadeus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

// Pairing ties a traveler record to the traveler id the priced offer expects
type Pairing struct {
	TravelerID string
	Traveler   types.Traveler
}

// MatchTravelers pairs travelerPricings[i] with travelers[i]. The vendor
// requires every traveler reference in the order to match the offer, so the
// counts must be equal and non-zero.
func MatchTravelers(offer types.Offer, travelers []types.Traveler) ([]Pairing, error) {
	expected := len(offer.TravelerPricings)
	if expected == 0 || expected != len(travelers) {
		return nil, fmt.Errorf("%w: offer prices %d travelers, got %d", ErrTravelerMismatch, expected, len(travelers))
	}

	pairs := make([]Pairing, expected)
	for i, tp := range offer.TravelerPricings {
		if tp.TravelerID == "" {
			return nil, fmt.Errorf("%w: traveler pricing %d has no traveler id", ErrTravelerMismatch, i+1)
		}
		pairs[i] = Pairing{TravelerID: tp.TravelerID, Traveler: travelers[i]}
	}
	return pairs, nil
}

// Order is a vendor flight order
type Order struct {
	Type              string             `json:"type,omitempty"`
	ID                string             `json:"id"`
	QueuingOfficeID   string             `json:"queuingOfficeId,omitempty"`
	AssociatedRecords []AssociatedRecord `json:"associatedRecords,omitempty"`
	FlightOffers      []types.Offer      `json:"flightOffers,omitempty"`
	Travelers         []OrderTraveler    `json:"travelers,omitempty"`
}

// AssociatedRecord is a reservation record, the first one carries the PNR
type AssociatedRecord struct {
	Reference        string `json:"reference"`
	CreationDate     string `json:"creationDate,omitempty"`
	OriginSystemCode string `json:"originSystemCode,omitempty"`
	FlightOfferID    string `json:"flightOfferId,omitempty"`
}

// PNR returns the airline record locator, if any
func (o *Order) PNR() string {
	if len(o.AssociatedRecords) == 0 {
		return ""
	}
	return o.AssociatedRecords[0].Reference
}

// CreationDate returns the record creation timestamp, if any
func (o *Order) CreationDate() string {
	if len(o.AssociatedRecords) == 0 {
		return ""
	}
	return o.AssociatedRecords[0].CreationDate
}

// Reference summarizes an order the vendor accepted. The order payload
// carries no ticketing state, so Status is the local outcome.
func (o *Order) Reference() types.BookingReference {
	return types.BookingReference{
		OrderID: o.ID,
		PNR:     o.PNR(),
		Status:  types.BookingConfirmed,
	}
}

// OrderTraveler is a traveler as the vendor stores it
type OrderTraveler struct {
	ID          string         `json:"id"`
	DateOfBirth string         `json:"dateOfBirth"`
	Gender      string         `json:"gender,omitempty"`
	Name        TravelerName   `json:"name"`
	Contact     *TravelerPhone `json:"contact,omitempty"`
	Documents   []Document     `json:"documents,omitempty"`
}

// TravelerName is the vendor's name block
type TravelerName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TravelerPhone is a traveler's contact block
type TravelerPhone struct {
	EmailAddress string  `json:"emailAddress,omitempty"`
	Phones       []Phone `json:"phones,omitempty"`
}

// Phone is a vendor phone entry
type Phone struct {
	DeviceType         string `json:"deviceType"`
	CountryCallingCode string `json:"countryCallingCode"`
	Number             string `json:"number"`
}

// Document is a travel document
type Document struct {
	DocumentType     string `json:"documentType"`
	BirthPlace       string `json:"birthPlace,omitempty"`
	IssuanceLocation string `json:"issuanceLocation,omitempty"`
	IssuanceDate     string `json:"issuanceDate,omitempty"`
	Number           string `json:"number"`
	ExpiryDate       string `json:"expiryDate"`
	IssuanceCountry  string `json:"issuanceCountry"`
	ValidityCountry  string `json:"validityCountry,omitempty"`
	Nationality      string `json:"nationality"`
	Holder           bool   `json:"holder"`
}

type orderContact struct {
	AddresseeName TravelerName `json:"addresseeName"`
	CompanyName   string       `json:"companyName"`
	Purpose       string       `json:"purpose"`
	Phones        []Phone      `json:"phones"`
	EmailAddress  string       `json:"emailAddress"`
	Address       address      `json:"address"`
}

type address struct {
	Lines       []string `json:"lines"`
	PostalCode  string   `json:"postalCode"`
	CityName    string   `json:"cityName"`
	CountryCode string   `json:"countryCode"`
}

type remark struct {
	SubType string `json:"subType"`
	Text    string `json:"text"`
}

type orderRequest struct {
	Data orderData `json:"data"`
}

type orderData struct {
	Type         string          `json:"type"`
	FlightOffers []types.Offer   `json:"flightOffers"`
	Travelers    []OrderTraveler `json:"travelers"`
	Contacts     []orderContact  `json:"contacts"`
	Remarks      struct {
		General []remark `json:"general"`
	} `json:"remarks"`
	TicketingAgreement struct {
		Option string `json:"option"`
		Delay  string `json:"delay"`
	} `json:"ticketingAgreement"`
}

func toOrderTraveler(p Pairing) OrderTraveler {
	t := p.Traveler
	return OrderTraveler{
		ID:          p.TravelerID,
		DateOfBirth: t.DateOfBirth,
		Gender:      t.Gender,
		Name:        TravelerName{FirstName: t.FirstName, LastName: t.LastName},
		Contact: &TravelerPhone{
			EmailAddress: t.Email,
			Phones:       []Phone{{DeviceType: "MOBILE", CountryCallingCode: t.CountryCode, Number: t.Phone}},
		},
		Documents: []Document{{
			DocumentType:     "PASSPORT",
			BirthPlace:       t.BirthPlace,
			IssuanceLocation: t.BirthPlace,
			IssuanceDate:     t.PassportIssue,
			Number:           t.PassportNumber,
			ExpiryDate:       t.PassportExpiry,
			IssuanceCountry:  t.PassportCountry,
			ValidityCountry:  t.PassportCountry,
			Nationality:      t.PassportCountry,
			Holder:           true,
		}},
	}
}

func toOrderContact(c types.Contact, country string) orderContact {
	if country == "" {
		country = "MY"
	}
	return orderContact{
		AddresseeName: TravelerName{FirstName: c.FirstName, LastName: c.LastName},
		CompanyName:   "TRAVEL BOOKING",
		Purpose:       "STANDARD",
		Phones:        []Phone{{DeviceType: "MOBILE", CountryCallingCode: c.CountryCode, Number: c.Phone}},
		EmailAddress:  c.Email,
		Address: address{
			Lines:       []string{"Online Booking"},
			PostalCode:  "00000",
			CityName:    "Online",
			CountryCode: country,
		},
	}
}

func newOrderRequest(offer types.Offer, pairs []Pairing, contact types.Contact) orderRequest {
	travelers := make([]OrderTraveler, len(pairs))
	for i, p := range pairs {
		travelers[i] = toOrderTraveler(p)
	}

	var data orderData
	data.Type = "flight-order"
	data.FlightOffers = []types.Offer{offer}
	data.Travelers = travelers
	data.Contacts = []orderContact{toOrderContact(contact, pairs[0].Traveler.PassportCountry)}
	data.Remarks.General = []remark{{SubType: "GENERAL_MISCELLANEOUS", Text: "ONLINE BOOKING FROM FLIGHTPULSE"}}
	data.TicketingAgreement.Option = "DELAY_TO_CANCEL"
	data.TicketingAgreement.Delay = "6D"
	return orderRequest{Data: data}
}

// Book creates an order for a confirmed offer. A segment sell failure is
// returned as ErrSegmentUnavailable (also matching *APIError); traveler
// mismatches fail before anything is sent.
func (c *Client) Book(ctx context.Context, offer types.Offer, travelers []types.Traveler, contact types.Contact) (*Order, error) {
	pairs, err := MatchTravelers(offer, travelers)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data Order `json:"data"`
	}
	err = c.do(ctx, http.MethodPost, ordersPath, nil, newOrderRequest(offer, pairs, contact), &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.SegmentUnavailable() {
			c.logFor(ctx).Warn("segment sell failure for offer %s", offer.ID)
			return nil, fmt.Errorf("%w: %w", ErrSegmentUnavailable, apiErr)
		}
		return nil, fmt.Errorf("booking failed: %w", err)
	}

	if resp.Data.ID == "" {
		return nil, ErrIncompleteBooking
	}
	c.logFor(ctx).Info("order %s created, PNR %s", resp.Data.ID, resp.Data.PNR())
	return &resp.Data, nil
}

// Lookup retrieves an order by its vendor id
func (c *Client) Lookup(ctx context.Context, reference string) (*Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrIncompleteBooking)
	}

	var resp struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, ordersPath+"/"+orderPathID(reference), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("booking retrieval failed: %w", err)
	}
	if resp.Data.ID == "" {
		return nil, ErrIncompleteBooking
	}
	return &resp.Data, nil
}

// orderPathID escapes reference for the URL path unless it already arrives
// percent-encoded, as vendor order ids usually do
func orderPathID(reference string) string {
	if strings.Contains(reference, "%") {
		if _, err := url.PathUnescape(reference); err == nil {
			return reference
		}
	}
	return url.PathEscape(reference)
}
