// Package flow drives a pixel reservation from a confirmed selection to a
// terminal outcome: persist the pixel as pending, request a PIX charge for
// it, then wait for approval from either the status poll or the provider's
// webhook until the payment window runs out.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"millionGridAPI/internal/payment"
	"millionGridAPI/internal/pixel"
)

type State int

const (
	Composing State = iota
	PendingPersist
	AwaitingPayment
	Approved
	Discarded
	Failed
)

func (s State) String() string {
	switch s {
	case Composing:
		return "composing"
	case PendingPersist:
		return "pending-persist"
	case AwaitingPayment:
		return "awaiting-payment"
	case Approved:
		return "approved"
	case Discarded:
		return "discarded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the flow has resolved.
func (s State) Terminal() bool {
	return s == Approved || s == Discarded || s == Failed
}

const (
	DefaultPollInterval  = 10 * time.Second
	DefaultPaymentWindow = 5 * time.Minute
)

// API is the slice of the board client the flow needs. *client.Client
// satisfies it.
type API interface {
	CreatePixel(ctx context.Context, it *pixel.GridItem) (*pixel.GridItem, error)
	CreatePixCharge(ctx context.Context, req *payment.PixRequest) (*payment.PixCharge, error)
	PixelStatus(ctx context.Context, id string) (string, error)
	DeletePixel(ctx context.Context, id string) error
}

// Flow is a single reservation's state machine. Only the flow itself
// commits a terminal state, regardless of which signal (poll, manual check,
// countdown) observed the outcome first; whichever loses the race becomes a
// no-op.
type Flow struct {
	api          API
	pollInterval time.Duration
	window       time.Duration
	onState      func(State)

	mu     sync.Mutex
	state  State
	item   *pixel.GridItem
	charge *payment.PixCharge
}

type Option func(*Flow)

func WithPollInterval(d time.Duration) Option {
	return func(f *Flow) { f.pollInterval = d }
}

func WithPaymentWindow(d time.Duration) Option {
	return func(f *Flow) { f.window = d }
}

// WithStateFunc registers a callback invoked on every state transition.
func WithStateFunc(fn func(State)) Option {
	return func(f *Flow) { f.onState = fn }
}

func New(api API, opts ...Option) *Flow {
	f := &Flow{
		api:          api,
		pollInterval: DefaultPollInterval,
		window:       DefaultPaymentWindow,
		state:        Composing,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Charge returns the provider charge (QR payload included) once Submit has
// succeeded.
func (f *Flow) Charge() *payment.PixCharge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.charge
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	fn := f.onState
	f.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// commit moves the flow to a terminal state. It succeeds only from
// AwaitingPayment, making late poll responses and double signals no-ops.
func (f *Flow) commit(s State) bool {
	f.mu.Lock()
	if f.state != AwaitingPayment {
		f.mu.Unlock()
		return false
	}
	f.state = s
	fn := f.onState
	f.mu.Unlock()
	if fn != nil {
		fn(s)
	}
	return true
}

// Submit persists the item as pending and requests a PIX charge priced at
// w*h*PricePerCell, scoped to the item id so the provider callback can
// resolve back to it. A persistence failure returns the flow to Composing
// with the caller's selection intact; a charge failure leaves the persisted
// item pending and ends the flow as Failed.
func (f *Flow) Submit(ctx context.Context, it *pixel.GridItem, payer payment.Payer) (*payment.PixCharge, error) {
	if s := f.State(); s != Composing {
		return nil, fmt.Errorf("cannot submit from state %s", s)
	}

	f.setState(PendingPersist)
	created, err := f.api.CreatePixel(ctx, it)
	if err != nil {
		f.setState(Composing)
		return nil, fmt.Errorf("failed to persist pixel: %w", err)
	}

	f.mu.Lock()
	f.item = created
	f.mu.Unlock()
	f.setState(AwaitingPayment)

	charge, err := f.api.CreatePixCharge(ctx, &payment.PixRequest{
		TransactionAmount: created.Price(),
		Description:       fmt.Sprintf("Pixel Grid - Payment for Pixel %s", created.ID),
		Payer:             payer,
		PixelID:           created.ID,
	})
	if err != nil {
		f.commit(Failed)
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}

	f.mu.Lock()
	f.charge = charge
	f.mu.Unlock()
	return charge, nil
}

// Await blocks until the flow resolves: approval observed by the periodic
// status poll, the payment window expiring, or ctx being cancelled. Both
// timers stop on exit, and the countdown's discard is conditioned on the
// pixel still being pending: a pixel approved in the same instant the
// timer fired survives and the flow resolves Approved instead.
func (f *Flow) Await(ctx context.Context) (State, error) {
	if s := f.State(); s != AwaitingPayment {
		return s, nil
	}

	f.mu.Lock()
	id := f.item.ID
	f.mu.Unlock()

	poll := time.NewTicker(f.pollInterval)
	defer poll.Stop()
	countdown := time.NewTimer(f.window)
	defer countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			return f.State(), ctx.Err()

		case <-poll.C:
			status, err := f.api.PixelStatus(ctx, id)
			if err != nil {
				log.Printf("Status poll error for pixel %s: %v", id, err)
				continue
			}
			if status == "approved" && f.commit(Approved) {
				return Approved, nil
			}
			if s := f.State(); s.Terminal() {
				return s, nil
			}

		case <-countdown.C:
			err := f.api.DeletePixel(ctx, id)
			if errors.Is(err, pixel.ErrNotPending) {
				// Approved in the same instant the countdown fired.
				f.commit(Approved)
				return f.State(), nil
			}
			if err != nil && !errors.Is(err, pixel.ErrNotFound) {
				log.Printf("Error discarding pixel %s on timeout: %v", id, err)
			}
			f.commit(Discarded)
			return f.State(), nil
		}
	}
}

// ConfirmPaid is the manual "I've paid" check: one status fetch, outside
// the poll cadence. It reports whether the flow is (now) approved.
func (f *Flow) ConfirmPaid(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.item == nil {
		f.mu.Unlock()
		return false, errors.New("no pixel submitted")
	}
	id := f.item.ID
	f.mu.Unlock()

	if s := f.State(); s.Terminal() {
		return s == Approved, nil
	}

	status, err := f.api.PixelStatus(ctx, id)
	if err != nil {
		return false, err
	}
	if status == "approved" {
		f.commit(Approved)
		return true, nil
	}
	return false, nil
}
