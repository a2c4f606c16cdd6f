package collect

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FeelPulse/flightpulse/pkg/types"
)

var profile = types.Traveler{
	FirstName:       "ALEX",
	LastName:        "TAN",
	DateOfBirth:     "1990-05-20",
	Gender:          "MALE",
	Email:           "alex.tan@example.com",
	CountryCode:     "60",
	Phone:           "0123456789",
	PassportNumber:  "A00000000",
	PassportExpiry:  "2030-09-10",
	PassportIssue:   "2021-09-10",
	PassportCountry: "MY",
	BirthPlace:      "Johor",
}

func newCollector(input string) (*Collector, *bytes.Buffer) {
	var out bytes.Buffer
	return New(NewPrompter(strings.NewReader(input), &out), profile), &out
}

func TestTravelers_AutoFillCopiesProfile(t *testing.T) {
	c, out := newCollector("y\n")

	travelers, err := c.Travelers(1, 0, 0)
	require.NoError(t, err)
	require.Len(t, travelers, 1)

	want := profile
	want.Type = types.TravelerAdult
	assert.Equal(t, want, travelers[0])
	assert.Contains(t, out.String(), "=== Adult Traveler 1 ===")
	assert.Contains(t, out.String(), "Name: ALEX TAN")
}

func TestTravelers_ManualEntry(t *testing.T) {
	input := strings.Join([]string{
		"n",
		"  jane ",
		"doe",
		"1985-01-02",
		"female",
		"jane@example.com",
		"65",
		"91234567",
		"E1234567",
		"2031-01-01",
		"2021-01-01",
		"sg",
		"Singapore",
	}, "\n") + "\n"
	c, _ := newCollector(input)

	travelers, err := c.Travelers(1, 0, 0)
	require.NoError(t, err)
	require.Len(t, travelers, 1)

	got := travelers[0]
	assert.Equal(t, "JANE", got.FirstName)
	assert.Equal(t, "DOE", got.LastName)
	assert.Equal(t, "FEMALE", got.Gender)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "SG", got.PassportCountry)
	assert.Equal(t, "Singapore", got.BirthPlace)
	assert.Equal(t, types.TravelerAdult, got.Type)
}

func TestTravelers_MixedGroups(t *testing.T) {
	c, out := newCollector("y\nyes\nY\n")

	travelers, err := c.Travelers(1, 1, 1)
	require.NoError(t, err)
	require.Len(t, travelers, 3)

	assert.Equal(t, types.TravelerAdult, travelers[0].Type)
	assert.Equal(t, types.TravelerChild, travelers[1].Type)
	assert.Equal(t, types.TravelerHeldInfant, travelers[2].Type)
	assert.Contains(t, out.String(), "=== Child Traveler 1 ===")
	assert.Contains(t, out.String(), "=== Infant Traveler 1 ===")
}

func TestTravelers_None(t *testing.T) {
	c, _ := newCollector("")

	travelers, err := c.Travelers(0, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, travelers)
}

func TestTravelers_EOFMidway(t *testing.T) {
	c, _ := newCollector("n\nJOHN\n")

	_, err := c.Travelers(1, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
}

func TestContact_AutoFill(t *testing.T) {
	c, out := newCollector("y\n")

	contact, err := c.Contact()
	require.NoError(t, err)

	assert.Equal(t, types.ContactFromTraveler(profile), contact)
	assert.Contains(t, out.String(), "Contact: ALEX TAN")
}

func TestContact_Manual(t *testing.T) {
	c, _ := newCollector("n\nsam\nlee\nsam@example.com\n1\n5550100\n")

	contact, err := c.Contact()
	require.NoError(t, err)

	assert.Equal(t, types.Contact{
		FirstName:   "SAM",
		LastName:    "LEE",
		Email:       "sam@example.com",
		CountryCode: "1",
		Phone:       "5550100",
	}, contact)
}

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  hello  \nlast"), &out)

	got, err := p.Ask("> ")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	got, err = p.Ask("> ")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = p.Ask("> ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "> > > ", out.String())
}

func TestPrompter_Confirm(t *testing.T) {
	p := NewPrompter(strings.NewReader("Y\nyes\nn\nmaybe\n"), io.Discard)

	for _, want := range []bool{true, true, false, false} {
		got, err := p.Confirm("? ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
