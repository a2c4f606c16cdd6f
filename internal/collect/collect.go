// Package collect gathers traveler and contact details for a booking,
// either typed in or copied from the auto-fill profile.
package collect

import (
	"fmt"
	"strings"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

// Collector prompts for booking details
type Collector struct {
	p       *Prompter
	profile types.Traveler
}

// New creates a collector. profile is copied verbatim when the user opts into auto-fill.
func New(p *Prompter, profile types.Traveler) *Collector {
	return &Collector{p: p, profile: profile}
}

// Travelers collects one record per passenger: adults first, then children, then infants
func (c *Collector) Travelers(adults, children, infants int) ([]types.Traveler, error) {
	groups := []struct {
		kind  string
		label string
		count int
	}{
		{types.TravelerAdult, "Adult", adults},
		{types.TravelerChild, "Child", children},
		{types.TravelerHeldInfant, "Infant", infants},
	}

	var travelers []types.Traveler
	for _, g := range groups {
		for i := 0; i < g.count; i++ {
			c.p.Say("\n=== %s Traveler %d ===", g.label, i+1)
			t, err := c.traveler()
			if err != nil {
				return nil, err
			}
			t.Type = g.kind
			travelers = append(travelers, t)
		}
	}
	return travelers, nil
}

func (c *Collector) traveler() (types.Traveler, error) {
	auto, err := c.p.Confirm("Use auto-fill with saved profile? (y/n): ")
	if err != nil {
		return types.Traveler{}, err
	}

	if auto {
		t := c.profile
		c.p.Say("Using auto-fill...")
		c.p.Say("Name: %s", t.FullName())
		c.p.Say("DOB: %s", t.DateOfBirth)
		c.p.Say("Email: %s", t.Email)
		c.p.Say("Passport: %s", t.PassportNumber)
		return t, nil
	}

	var t types.Traveler
	fields := []field{
		{"First name: ", &t.FirstName, true},
		{"Last name: ", &t.LastName, true},
		{"Date of birth (YYYY-MM-DD): ", &t.DateOfBirth, false},
		{"Gender (MALE/FEMALE): ", &t.Gender, true},
		{"Email: ", &t.Email, false},
		{"Country code (e.g., 60): ", &t.CountryCode, false},
		{"Phone number: ", &t.Phone, false},
		{"Passport number: ", &t.PassportNumber, false},
		{"Passport expiry (YYYY-MM-DD): ", &t.PassportExpiry, false},
		{"Passport issue date (YYYY-MM-DD): ", &t.PassportIssue, false},
		{"Passport country (2-letter code, e.g., MY): ", &t.PassportCountry, true},
		{"Birth place (city): ", &t.BirthPlace, false},
	}
	if err := c.askAll(fields); err != nil {
		return types.Traveler{}, err
	}
	return t, nil
}

// Contact collects the booking contact, which may differ from the travelers
func (c *Collector) Contact() (types.Contact, error) {
	c.p.Say("\n=== Booking Contact Information ===")
	c.p.Say("(This can be different from traveler contact)")

	auto, err := c.p.Confirm("Use auto-fill for contact info? (y/n): ")
	if err != nil {
		return types.Contact{}, err
	}

	if auto {
		contact := types.ContactFromTraveler(c.profile)
		c.p.Say("Using auto-fill for contact...")
		c.p.Say("Contact: %s %s", contact.FirstName, contact.LastName)
		c.p.Say("Email: %s", contact.Email)
		return contact, nil
	}

	var contact types.Contact
	fields := []field{
		{"Contact first name: ", &contact.FirstName, true},
		{"Contact last name: ", &contact.LastName, true},
		{"Contact email: ", &contact.Email, false},
		{"Country code (e.g., 60): ", &contact.CountryCode, false},
		{"Phone number: ", &contact.Phone, false},
	}
	if err := c.askAll(fields); err != nil {
		return types.Contact{}, err
	}
	return contact, nil
}

// field is one prompted value; upper answers are upper-cased
type field struct {
	label string
	dst   *string
	upper bool
}

func (c *Collector) askAll(fields []field) error {
	for _, f := range fields {
		answer, err := c.p.Ask(f.label)
		if err != nil {
			return fmt.Errorf("reading %q: %w", strings.TrimSuffix(f.label, ": "), err)
		}
		if f.upper {
			answer = strings.ToUpper(answer)
		}
		*f.dst = answer
	}
	return nil
}
