package types

// Traveler types accepted by the vendor
const (
	TravelerAdult      = "ADULT"
	TravelerChild      = "CHILD"
	TravelerHeldInfant = "HELD_INFANT"
)

// Traveler is one passenger record, either typed in or copied from the auto-fill profile
type Traveler struct {
	Type            string `json:"type" yaml:"-"`
	FirstName       string `json:"first_name" yaml:"firstName"`
	LastName        string `json:"last_name" yaml:"lastName"`
	DateOfBirth     string `json:"date_of_birth" yaml:"dateOfBirth"`
	Gender          string `json:"gender" yaml:"gender"`
	Email           string `json:"email" yaml:"email"`
	CountryCode     string `json:"country_code" yaml:"countryCode"`
	Phone           string `json:"phone" yaml:"phone"`
	PassportNumber  string `json:"passport_number" yaml:"passportNumber"`
	PassportExpiry  string `json:"passport_expiry" yaml:"passportExpiry"`
	PassportIssue   string `json:"passport_issue" yaml:"passportIssue"`
	PassportCountry string `json:"passport_country" yaml:"passportCountry"`
	BirthPlace      string `json:"birth_place" yaml:"birthPlace"`
}

// FullName returns "FIRST LAST"
func (t Traveler) FullName() string {
	return t.FirstName + " " + t.LastName
}

// Contact is the booking contact, which may differ from the travelers
type Contact struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
}

// ContactFromTraveler derives a booking contact from a traveler record
func ContactFromTraveler(t Traveler) Contact {
	return Contact{
		FirstName:   t.FirstName,
		LastName:    t.LastName,
		Email:       t.Email,
		CountryCode: t.CountryCode,
		Phone:       t.Phone,
	}
}
