package parser

import (
	"bytes"
	"text/template"
	"time"
)

const systemPrompt = "Extract flight search parameters from user queries. Always respond with valid JSON only."

var requestTemplate = template.Must(template.New("request").Parse(`
Parse this flight search request and extract budget information: "{{.Query}}"

Current date: {{.Today}}

Extract these parameters (set to null if not mentioned):
- origin: IATA airport code (3 letters)
- destination: IATA airport code (3 letters)
- departure_date: Date in YYYY-MM-DD format (use {{.Year}} as year)
- return_date: Return date if mentioned
- adults: Number of adults (default 1)
- children: Number of children
- infants: Number of infants
- budget: Extract budget amount as number (from phrases like "budget $400", "under $500", "max 300")
- currency: Currency code (USD, EUR, SGD, etc.)
- non_stop: true if "direct" or "non-stop" mentioned
- preferred_airlines: Array of airline codes if mentioned
- avoided_airlines: Array of airline codes to avoid

IATA mappings:
- KUL = Kuala Lumpur, Malaysia
- BKK = Bangkok, Thailand
- SIN = Singapore
- NYC = JFK or LGA (New York)

Budget extraction examples:
- "budget is $400" → budget: 400, currency: "USD"
- "under $500" → budget: 500, currency: "USD"
- "max 300 euros" → budget: 300, currency: "EUR"

Respond with JSON only:
`))

func buildPrompt(query string, now time.Time) (string, error) {
	var buf bytes.Buffer
	err := requestTemplate.Execute(&buf, struct {
		Query string
		Today string
		Year  int
	}{
		Query: query,
		Today: now.Format("2006-01-02"),
		Year:  now.Year(),
	})
	return buf.String(), err
}
