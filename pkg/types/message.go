package types

import (
	"fmt"
	"time"
)

// Agent roles used as AgentMessage sender/recipient
const (
	RoleUserAgent   = "user_agent"
	RoleTravelAgent = "travel_agent"
)

// AgentMessage types
const (
	MsgSearchRequest = "search_request"
	MsgFlightOptions = "flight_options"
	MsgBookingResult = "booking_result"
)

// AgentMessage carries data between the parsing and presentation steps of a single request
type AgentMessage struct {
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Type      string    `json:"type"`
	Content   any       `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAgentMessage stamps a message with the current time
func NewAgentMessage(sender, recipient, msgType string, content any) AgentMessage {
	return AgentMessage{
		Sender:    sender,
		Recipient: recipient,
		Type:      msgType,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// AgentResponse is received from the completion provider
type AgentResponse struct {
	Text     string `json:"text"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Usage    Usage  `json:"usage"`
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// FlightOptions returns the options of a flight_options message
func (m AgentMessage) FlightOptions() ([]FlightOption, bool) {
	if m.Type != MsgFlightOptions {
		return nil, false
	}
	options, ok := m.Content.([]FlightOption)
	return options, ok
}

// String summarizes the message for logs
func (m AgentMessage) String() string {
	var summary string
	switch c := m.Content.(type) {
	case SearchParams:
		summary = fmt.Sprintf("%s on %s, %d traveler(s)", c.Route(), c.DepartureDate, c.TravelerCount())
	case []FlightOption:
		summary = fmt.Sprintf("%d option(s)", len(c))
		if len(c) > 0 {
			summary += ", cheapest " + c[0].Label()
		}
	case BookingReference:
		summary = fmt.Sprintf("order %s PNR %s %s", c.OrderID, c.PNR, c.Status)
	default:
		summary = fmt.Sprintf("%v", c)
	}
	return fmt.Sprintf("%s %s → %s: %s", m.Type, m.Sender, m.Recipient, summary)
}
