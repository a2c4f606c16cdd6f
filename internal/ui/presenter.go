package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/FeelPulse/flightpulse/internal/amadeus"
	"github.com/FeelPulse/flightpulse/internal/store"
	"github.com/FeelPulse/flightpulse/internal/usage"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

const (
	defaultWidth  = 80
	clockLayout   = "15:04"
	dayLayout     = "2006-01-02 15:04"
	separatorRune = "="
)

// Presenter renders everything the user sees on a line-oriented terminal
type Presenter struct {
	w        io.Writer
	st       styles
	width    int
	markdown bool
}

// Option configures a Presenter
type Option func(*Presenter)

// WithWidth sets the wrap width for markdown output
func WithWidth(width int) Option {
	return func(p *Presenter) {
		if width > 0 {
			p.width = width
		}
	}
}

// WithPlainMarkdown prints booking details as raw markdown
func WithPlainMarkdown() Option {
	return func(p *Presenter) {
		p.markdown = false
	}
}

// New creates a Presenter writing to w
func New(w io.Writer, opts ...Option) *Presenter {
	p := &Presenter{
		w:        w,
		st:       newStyles(lipgloss.NewRenderer(w)),
		width:    defaultWidth,
		markdown: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Presenter) println(s string) {
	fmt.Fprintln(p.w, s)
}

// Welcome prints the banner shown when the loop starts
func (p *Presenter) Welcome() {
	p.println(p.st.header.Render("✈ FlightPulse"))
	p.println("I'm your travel agent. I'll search, analyze, and book flights for you!")
	p.println("")
	p.println(p.st.help.Render("Example: 'Find me the best flights from KUL to BKK, direct flight, budget $400'"))
	p.println(p.st.help.Render("Type 'check <flight-order-id>' to verify an existing booking, 'help' for commands, 'quit' to exit."))
	p.println("")
}

// Goodbye prints the exit message
func (p *Presenter) Goodbye() {
	p.println("✈️ Thank you for using our booking service. Safe travels!")
}

// Info prints a status line
func (p *Presenter) Info(format string, args ...any) {
	p.println(p.st.systemMessage(fmt.Sprintf(format, args...)))
}

// Notice prints a transient condition the user should know about
func (p *Presenter) Notice(format string, args ...any) {
	p.println(p.st.noticeMessage(fmt.Sprintf(format, args...)))
}

// Success prints a completed step
func (p *Presenter) Success(format string, args ...any) {
	p.println(p.st.successMessage(fmt.Sprintf(format, args...)))
}

// Error prints a failure
func (p *Presenter) Error(format string, args ...any) {
	p.println(p.st.errorMessage(fmt.Sprintf(format, args...)))
}

// Separator ends one request
func (p *Presenter) Separator() {
	p.println("")
	p.println(p.st.system.Render(strings.Repeat(separatorRune, 60)))
	p.println("")
}

// Understood echoes the parsed request
func (p *Presenter) Understood(params *types.SearchParams) {
	p.Success("Understood: %s on %s", params.Route(), params.DepartureDate)
	if params.Budget != nil {
		currency := params.Currency
		if currency == "" {
			currency = "USD"
		}
		p.Info("💰 Budget: %s %.0f", currency, *params.Budget)
	}
}

// Options lists opts[start:start+count] numbered from start+1
func (p *Presenter) Options(opts []types.FlightOption, start, count int) {
	if start < 0 {
		start = 0
	}
	end := start + count
	if end > len(opts) {
		end = len(opts)
	}
	for i := start; i < end; i++ {
		opt := opts[i]
		p.println(p.st.option.Render(fmt.Sprintf("%d. %s", i+1, opt.Label())))
		p.println(p.st.detail.Render("   ⏰ " + schedule(opt)))
		if opt.Recommendation != "" {
			p.println(p.st.detail.Render("   ✈️ " + opt.Recommendation))
		}
	}
}

func schedule(opt types.FlightOption) string {
	if opt.DepartureTime.IsZero() {
		return "schedule unavailable"
	}
	s := opt.DepartureTime.Format(dayLayout)
	if !opt.ArrivalTime.IsZero() {
		layout := clockLayout
		if !sameDay(opt.DepartureTime, opt.ArrivalTime) {
			layout = dayLayout
		}
		s += " → " + opt.ArrivalTime.Format(layout)
	}
	if opt.Duration != "" {
		s += " (" + strings.ToLower(strings.TrimPrefix(opt.Duration, "PT")) + ")"
	}
	return s
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Confirmation summarizes a created order and how to look it up again
func (p *Presenter) Confirmation(ref types.BookingReference, opt types.FlightOption, params *types.SearchParams) {
	p.println("")
	p.println(p.st.header.Render("🎫 Booking Confirmation"))
	p.println("Flight Order ID: " + ref.OrderID)
	if ref.PNR != "" {
		p.println("PNR: " + ref.PNR)
	}
	if ref.Status != "" {
		p.println("Status: " + ref.Status)
	}
	p.println("Flight: " + opt.Label())
	p.println("Route: " + params.Route())
	p.println("")
	p.println(p.st.help.Render("Verify your booking any time with: check " + ref.OrderID))
}

// BookingDetails prints a looked-up order
func (p *Presenter) BookingDetails(order *amadeus.Order) {
	md := bookingMarkdown(order)
	if p.markdown {
		md = renderMarkdown(md, p.width)
	}
	p.println(md)
}

func bookingMarkdown(order *amadeus.Order) string {
	var sb strings.Builder
	sb.WriteString("# 📋 Booking Details\n\n")
	sb.WriteString(fmt.Sprintf("- **Flight Order ID:** %s\n", order.ID))
	if pnr := order.PNR(); pnr != "" {
		sb.WriteString(fmt.Sprintf("- **PNR Reference:** %s\n", pnr))
	}
	if created := order.CreationDate(); created != "" {
		if len(created) > 10 {
			created = created[:10]
		}
		sb.WriteString(fmt.Sprintf("- **Booking Date:** %s\n", created))
	}

	if len(order.FlightOffers) > 0 {
		offer := order.FlightOffers[0]
		currency := offer.Price.Currency
		if currency == "" {
			currency = "USD"
		}
		total := offer.Price.Total
		if total == "" {
			total = "N/A"
		}
		sb.WriteString(fmt.Sprintf("- **Total Price:** %s %s\n", currency, total))

		for i, it := range offer.Itineraries {
			sb.WriteString(fmt.Sprintf("\n## ✈️ Flight %d\n\n", i+1))
			for j, seg := range it.Segments {
				sb.WriteString(fmt.Sprintf("%d. %s%s %s → %s, departs %s, arrives %s\n",
					j+1, seg.CarrierCode, seg.Number,
					orNA(seg.Departure.IATACode), orNA(seg.Arrival.IATACode),
					orNA(seg.Departure.At), orNA(seg.Arrival.At)))
			}
		}
	}

	if len(order.Travelers) > 0 {
		sb.WriteString(fmt.Sprintf("\n## 👥 Travelers (%d)\n\n", len(order.Travelers)))
		for i, t := range order.Travelers {
			sb.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, t.Name.FirstName, t.Name.LastName))
		}
	}
	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Help lists the loop's commands
func (p *Presenter) Help() {
	p.println(p.st.header.Render("Commands"))
	for _, line := range helpLines {
		p.println("  " + line)
	}
}

var helpLines = []string{
	"<request>          describe the flight you need in plain words",
	"check <order-id>   show the details of an existing booking",
	"history            list recent searches and bookings",
	"usage              show completion token usage",
	"help               show this help",
	"quit | exit | q    leave",
}

// Usage prints token usage
func (p *Presenter) Usage(stats *usage.Stats) {
	p.println(strings.TrimRight(stats.String(), "\n"))
}

// LocalBooking shows what this machine recorded when it made an order
func (p *Presenter) LocalBooking(b *store.BookingRecord) {
	line := fmt.Sprintf("📒 Booked here on %s: %s  %s  %s %.0f  %d traveler(s)",
		b.CreatedAt.Local().Format(dayLayout), b.Route, b.Carrier, b.Currency, b.Price, b.Travelers)
	if b.Retried {
		line += "  (rebooked)"
	}
	p.println(line)
}

// History prints recent searches and bookings
func (p *Presenter) History(searches []*store.SearchRecord, bookings []*store.BookingRecord) {
	if len(searches) == 0 && len(bookings) == 0 {
		p.Info("No history yet.")
		return
	}
	if len(bookings) > 0 {
		p.println(p.st.header.Render("Bookings"))
		for _, b := range bookings {
			line := fmt.Sprintf("  %s  %s  %s  %s %.0f  %s",
				b.CreatedAt.Local().Format(dayLayout), b.Route, b.Carrier, b.Currency, b.Price, b.OrderID)
			if b.PNR != "" {
				line += "  PNR " + b.PNR
			}
			if b.Retried {
				line += "  (rebooked)"
			}
			p.println(line)
		}
	}
	if len(searches) > 0 {
		p.println(p.st.header.Render("Searches"))
		for _, s := range searches {
			p.println(fmt.Sprintf("  %s  %s  %s  %d options  %q",
				s.CreatedAt.Local().Format(dayLayout), s.Params.Route(), s.Params.DepartureDate, len(s.Options), s.Query))
		}
	}
}
