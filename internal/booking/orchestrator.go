// Package booking drives one interactive session: it turns each request line
// into a search, a choice, traveler collection and an order, and retries once
// when the chosen flight can no longer be sold.
package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FeelPulse/flightpulse/internal/amadeus"
	"github.com/FeelPulse/flightpulse/internal/logger"
	"github.com/FeelPulse/flightpulse/internal/metrics"
	"github.com/FeelPulse/flightpulse/internal/parser"
	"github.com/FeelPulse/flightpulse/internal/ranking"
	"github.com/FeelPulse/flightpulse/internal/store"
	"github.com/FeelPulse/flightpulse/internal/ui"
	"github.com/FeelPulse/flightpulse/internal/usage"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

var log = logger.Component("booking")

const (
	requestLabel = "🗣️ What flight do you need? "
	pageSize     = 3
	historyLimit = 10

	defaultRetryDelay = 3 * time.Second
)

// Outcome is the result of handling one input line
type Outcome int

const (
	// Continue means the line was a command or empty; nothing was attempted
	Continue Outcome = iota
	// Rephrase means the request could not be understood
	Rephrase
	Booked
	NotBooked
	Verified
	VerifyFailed
	Quit
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Rephrase:
		return "rephrase"
	case Booked:
		return "booked"
	case NotBooked:
		return "not_booked"
	case Verified:
		return "verified"
	case VerifyFailed:
		return "verify_failed"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// RequestParser turns a free-text request into search parameters
type RequestParser interface {
	Parse(ctx context.Context, text string) (*types.SearchParams, error)
}

// TravelerCollector gathers traveler and contact records
type TravelerCollector interface {
	Travelers(adults, children, infants int) ([]types.Traveler, error)
	Contact() (types.Contact, error)
}

// LineReader reads one answer per prompt
type LineReader interface {
	Ask(label string) (string, error)
}

// History records searches and bookings
type History interface {
	SaveSearch(rec *store.SearchRecord) error
	SaveBooking(rec *store.BookingRecord) error
	RecentSearches(limit int) ([]*store.SearchRecord, error)
	RecentBookings(limit int) ([]*store.BookingRecord, error)
	LoadBooking(orderID string) (*store.BookingRecord, error)
}

// Deps are the collaborators of an Orchestrator. History, Metrics and Usage
// are optional.
type Deps struct {
	Parser    RequestParser
	Gateway   amadeus.Gateway
	Collector TravelerCollector
	Input     LineReader
	UI        *ui.Presenter
	History   History
	Metrics   *metrics.Collector
	Usage     *usage.Tracker
}

// Config tunes the loop
type Config struct {
	RetryDelay time.Duration
	TopOptions int
}

// Orchestrator runs the request loop
type Orchestrator struct {
	parser    RequestParser
	gateway   amadeus.Gateway
	collector TravelerCollector
	input     LineReader
	ui        *ui.Presenter
	history   History
	metrics   *metrics.Collector
	usage     *usage.Tracker

	retryDelay time.Duration
	topN       int
	sleep      func(time.Duration)

	transcript []types.AgentMessage
	log        *logger.Logger
}

// New creates an orchestrator
func New(deps Deps, cfg Config) *Orchestrator {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.TopOptions <= 0 {
		cfg.TopOptions = pageSize
	}
	return &Orchestrator{
		parser:     deps.Parser,
		gateway:    deps.Gateway,
		collector:  deps.Collector,
		input:      deps.Input,
		ui:         deps.UI,
		history:    deps.History,
		metrics:    deps.Metrics,
		usage:      deps.Usage,
		retryDelay: cfg.RetryDelay,
		topN:       cfg.TopOptions,
		sleep:      time.Sleep,
		log:        log,
	}
}

// SetSleep replaces the pause used before a retry
func (o *Orchestrator) SetSleep(sleep func(time.Duration)) {
	o.sleep = sleep
}

// Run reads requests until quit, EOF or ctx is done
func (o *Orchestrator) Run(ctx context.Context) error {
	o.ui.Welcome()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := o.input.Ask(requestLabel)
		if err != nil {
			if errors.Is(err, io.EOF) {
				o.ui.Goodbye()
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}

		switch o.Handle(ctx, line) {
		case Quit:
			o.ui.Goodbye()
			return nil
		case Booked:
			o.ui.Success("🎉 Booking completed! Have a great trip!")
			o.ui.Separator()
		case NotBooked:
			o.ui.Info("💔 Booking not completed. Feel free to try another search!")
			o.ui.Separator()
		case Verified, VerifyFailed:
			o.ui.Separator()
		}
	}
}

// Handle processes one input line
func (o *Orchestrator) Handle(ctx context.Context, line string) Outcome {
	line = strings.TrimSpace(line)
	if line == "" {
		o.ui.Info("Please tell me what flight you're looking for.")
		return Continue
	}

	cmd, args := ParseCommand(line)
	switch cmd {
	case CmdQuit:
		return Quit
	case CmdHelp:
		o.ui.Help()
		return Continue
	case CmdUsage:
		o.showUsage()
		return Continue
	case CmdHistory:
		o.showHistory()
		return Continue
	case CmdCheck:
		if args == "" {
			o.ui.Info("Please provide a flight order ID. Example: 'check eJzTd9c3N3b2C%%2FUCAApkAkA%%3D'")
			return Continue
		}
		return o.check(ctx, args)
	}

	return o.book(ctx, line)
}

func (o *Orchestrator) showUsage() {
	if o.usage == nil {
		o.ui.Usage(&usage.Stats{})
		return
	}
	o.ui.Usage(o.usage.Total())
}

func (o *Orchestrator) showHistory() {
	if o.history == nil {
		o.ui.Info("History is disabled. Set history.enabled: true in the config to keep it.")
		return
	}
	searches, err := o.history.RecentSearches(historyLimit)
	if err != nil {
		o.ui.Error("Could not read search history: %v", err)
		return
	}
	bookings, err := o.history.RecentBookings(historyLimit)
	if err != nil {
		o.ui.Error("Could not read booking history: %v", err)
		return
	}
	o.ui.History(searches, bookings)
}

// check looks up an existing order and never touches search, pricing or booking
func (o *Orchestrator) check(ctx context.Context, reference string) Outcome {
	o.metrics.IncRequest("check")
	reqLog := o.log.WithRequestID(newRequestID())
	ctx = logger.NewContext(ctx, reqLog)
	reqLog.Info("checking order %s", reference)

	o.ui.Info("🔍 Checking booking: %s", reference)
	start := time.Now()
	order, err := o.gateway.Lookup(ctx, reference)
	o.metrics.ObserveVendorCall("lookup", err, time.Since(start))
	if err != nil {
		reqLog.Warn("lookup %s failed: %v", reference, err)
		o.ui.Error("Could not retrieve booking %s: %v", reference, err)
		return VerifyFailed
	}

	o.ui.BookingDetails(order)
	o.showLocalRecord(reqLog, order.ID)
	o.ui.Success("Booking verification complete!")
	return Verified
}

// showLocalRecord adds what this machine recorded when it made the booking
func (o *Orchestrator) showLocalRecord(reqLog *logger.Logger, orderID string) {
	if o.history == nil {
		return
	}
	rec, err := o.history.LoadBooking(orderID)
	if err != nil {
		reqLog.Warn("failed to load local record of %s: %v", orderID, err)
		return
	}
	if rec != nil {
		o.ui.LocalBooking(rec)
	}
}

func (o *Orchestrator) book(ctx context.Context, line string) Outcome {
	o.metrics.IncRequest("book")
	o.transcript = o.transcript[:0]
	reqLog := o.log.WithRequestID(newRequestID())
	ctx = logger.NewContext(ctx, reqLog)

	o.ui.Info("🧠 Understanding your request...")
	params, err := o.parser.Parse(ctx, line)
	if err != nil {
		reqLog.Warn("parse failed: %v", err)
		if errors.Is(err, parser.ErrUnparseable) {
			o.ui.Error("I couldn't work out the origin, destination and date. Please rephrase your request.")
		} else {
			o.ui.Error("Could not understand your request: %v", err)
		}
		return Rephrase
	}
	o.ui.Understood(params)
	o.say(reqLog, types.RoleUserAgent, types.RoleTravelAgent, types.MsgSearchRequest, *params)

	o.ui.Info("🔍 Searching and analyzing flights...")
	options, err := o.search(ctx, params)
	if err != nil {
		reqLog.Warn("search %s failed: %v", params.Route(), err)
		if errors.Is(err, amadeus.ErrNoOffers) {
			o.ui.Error("No flights found matching your criteria.")
		} else {
			o.ui.Error("Flight search failed: %v", err)
		}
		return NotBooked
	}
	offered := o.say(reqLog, types.RoleTravelAgent, types.RoleUserAgent, types.MsgFlightOptions, options)
	o.recordSearch(reqLog, line, params, options)

	selected, ok, err := o.choose(offered)
	if err != nil || !ok {
		o.metrics.IncBooking("cancelled")
		return NotBooked
	}
	reqLog.Info("selected %s", selected.Label())

	o.ui.Success("Great choice! %s", selected.Label())
	o.ui.Info("Now I need some traveler information for the booking...")
	travelers, err := o.collector.Travelers(params.Adults, params.Children, params.Infants)
	if err != nil {
		o.inputEnded(err)
		return NotBooked
	}
	contact, err := o.collector.Contact()
	if err != nil {
		o.inputEnded(err)
		return NotBooked
	}

	o.ui.Info("💳 Processing your booking...")
	order, final, retried, err := o.bookWithRetry(ctx, reqLog, params, selected, travelers, contact)
	if err != nil {
		reqLog.Error("booking failed: %v", err)
		o.metrics.IncBooking("failed")
		o.ui.Error("%v", err)
		return NotBooked
	}

	ref := order.Reference()
	o.say(reqLog, types.RoleTravelAgent, types.RoleUserAgent, types.MsgBookingResult, ref)
	o.metrics.IncBooking("confirmed")
	o.recordBooking(reqLog, ref, final, params, len(travelers), retried)
	o.ui.Confirmation(ref, final, params)
	return Booked
}

func (o *Orchestrator) inputEnded(err error) {
	if errors.Is(err, io.EOF) {
		o.ui.Info("🚫 Booking cancelled.")
		o.metrics.IncBooking("cancelled")
		return
	}
	o.ui.Error("Could not read traveler details: %v", err)
	o.metrics.IncBooking("failed")
}

// search queries the vendor and ranks the offers
func (o *Orchestrator) search(ctx context.Context, params *types.SearchParams) ([]types.FlightOption, error) {
	start := time.Now()
	offers, err := o.gateway.Search(ctx, params)
	o.metrics.ObserveVendorCall("search", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	options := ranking.Rank(offers, params.Budget)
	if len(options) == 0 {
		return nil, amadeus.ErrNoOffers
	}
	return options, nil
}

// choose presents the options carried by msg and reads the user's pick.
// ok is false on cancel.
func (o *Orchestrator) choose(msg types.AgentMessage) (types.FlightOption, bool, error) {
	options, _ := msg.FlightOptions()
	if len(options) == 0 {
		return types.FlightOption{}, false, nil
	}
	shown := min(o.topN, len(options))
	o.ui.Info("📋 I found %d flights! Here are the top %d options:", len(options), shown)
	o.ui.Options(options, 0, shown)

	for {
		answer, err := o.input.Ask(fmt.Sprintf("🤔 Your choice (1-%d, 'show more', or 'no' to cancel): ", shown))
		if err != nil {
			o.ui.Info("🚫 Booking cancelled.")
			return types.FlightOption{}, false, err
		}

		switch {
		case isCancel(answer):
			o.ui.Info("🚫 Booking cancelled.")
			return types.FlightOption{}, false, nil
		case isShowMore(answer):
			if shown >= len(options) {
				o.ui.Info("No more options available.")
				continue
			}
			next := min(shown+pageSize, len(options))
			o.ui.Info("📋 Additional options:")
			o.ui.Options(options, shown, next-shown)
			shown = next
		default:
			n, err := strconv.Atoi(strings.TrimSpace(answer))
			if err == nil && n >= 1 && n <= shown {
				return options[n-1], true, nil
			}
			o.ui.Info("Please enter a number from 1 to %d, 'show more', or 'no' to cancel.", shown)
		}
	}
}

// bookWithRetry prices and books the selection. When the vendor can no longer
// sell a segment it waits, searches again and books the most similar flight
// once; any second failure is final.
func (o *Orchestrator) bookWithRetry(
	ctx context.Context,
	reqLog *logger.Logger,
	params *types.SearchParams,
	selected types.FlightOption,
	travelers []types.Traveler,
	contact types.Contact,
) (*amadeus.Order, types.FlightOption, bool, error) {
	order, err := o.priceAndBook(ctx, selected, travelers, contact)
	if err == nil {
		return order, selected, false, nil
	}
	if !errors.Is(err, amadeus.ErrSegmentUnavailable) {
		return nil, selected, false, err
	}

	reqLog.Warn("segment unavailable for %s, retrying once: %v", selected.Label(), err)
	o.metrics.IncRetry()
	o.ui.Notice("Flight availability changed! Waiting %s for airline systems to update, then searching again...", o.retryDelay)
	o.sleep(o.retryDelay)

	fresh, err := o.search(ctx, params)
	if err != nil {
		return nil, selected, true, fmt.Errorf("search after availability change failed: %w", err)
	}
	replacement, ok := ranking.Similar(fresh, selected)
	if !ok {
		return nil, selected, true, fmt.Errorf("no replacement flight found: %w", amadeus.ErrNoOffers)
	}
	o.ui.Info("✅ Found updated flight: %s, departing %s", replacement.Label(), departure(replacement))

	order, err = o.priceAndBook(ctx, replacement, travelers, contact)
	if err != nil {
		return nil, replacement, true, err
	}
	return order, replacement, true, nil
}

func (o *Orchestrator) priceAndBook(ctx context.Context, opt types.FlightOption, travelers []types.Traveler, contact types.Contact) (*amadeus.Order, error) {
	start := time.Now()
	priced, err := o.gateway.Price(ctx, opt.Offer)
	o.metrics.ObserveVendorCall("price", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	start = time.Now()
	order, err := o.gateway.Book(ctx, priced, travelers, contact)
	o.metrics.ObserveVendorCall("book", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return order, nil
}

// say appends a message to the request transcript and logs it
func (o *Orchestrator) say(reqLog *logger.Logger, sender, recipient, msgType string, content any) types.AgentMessage {
	msg := types.NewAgentMessage(sender, recipient, msgType, content)
	o.transcript = append(o.transcript, msg)
	reqLog.Debug("%s", msg)
	return msg
}

func (o *Orchestrator) recordSearch(reqLog *logger.Logger, query string, params *types.SearchParams, options []types.FlightOption) {
	if o.history == nil {
		return
	}
	err := o.history.SaveSearch(&store.SearchRecord{
		ID:      uuid.NewString(),
		Query:   query,
		Params:  *params,
		Options: options,
	})
	if err != nil {
		reqLog.Warn("failed to record search: %v", err)
	}
}

func (o *Orchestrator) recordBooking(reqLog *logger.Logger, ref types.BookingReference, opt types.FlightOption, params *types.SearchParams, travelers int, retried bool) {
	if o.history == nil {
		return
	}
	err := o.history.SaveBooking(&store.BookingRecord{
		OrderID:   ref.OrderID,
		PNR:       ref.PNR,
		Route:     params.Route(),
		Carrier:   opt.Carrier,
		Price:     opt.Price,
		Currency:  opt.Currency,
		Travelers: travelers,
		Retried:   retried,
	})
	if err != nil {
		reqLog.Warn("failed to record booking %s: %v", ref.OrderID, err)
	}
}

func departure(opt types.FlightOption) string {
	if opt.DepartureTime.IsZero() {
		return "at an unknown time"
	}
	return opt.DepartureTime.Format("2006-01-02 15:04")
}

func newRequestID() string {
	return uuid.NewString()[:8]
}
