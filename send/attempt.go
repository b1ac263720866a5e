// Package send drives the lifecycle of a single send attempt: from
// destination entry, through classification, optional method
// selection and confirmation, to the one asynchronous dispatch into
// the external wallet engine and a terminal success or failure.
//
// The state machine is an explicit State enum with transitions
// validated centrally, so illegal combinations (sending while still
// confirming, editing while dispatching) are unrepresentable.
package send

import (
	"context"
	"fmt"
	"sync"

	"github.com/BlixtWallet/noah-sub000/amount"
	"github.com/BlixtWallet/noah-sub000/destination"
	"github.com/BlixtWallet/noah-sub000/rates"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/clock"
)

// Config holds the collaborators of a send attempt.
type Config struct {
	// Engine is the external wallet engine that executes the send.
	Engine WalletEngine

	// History receives one record per successful send.
	History History

	// Params selects the active network for classification.
	Params *chaincfg.Params

	// Rates supplies the exchange-rate snapshot for the amount
	// engine. Optional; an empty snapshot is used when nil.
	Rates rates.Source

	// Clock stamps result records. Optional; defaults to the wall
	// clock.
	Clock clock.Clock
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine == nil {
		return fmt.Errorf("wallet engine required")
	}
	if c.History == nil {
		return fmt.Errorf("history required")
	}
	if c.Params == nil {
		return fmt.Errorf("network params required")
	}
	return nil
}

// Attempt is one live send attempt. A fresh attempt is created per
// send screen instance and discarded after success acknowledgement or
// an explicit reset; it is never persisted.
type Attempt struct {
	cfg *Config

	mu sync.Mutex

	rawDestination string
	classification destination.Classification
	selected       destination.Method
	amt            *amount.Engine

	state State

	// preConfirm is the state Cancel returns to from Confirming.
	preConfirm State

	lastErr error
	comment string
	result  *PaymentResultRecord
}

// NewAttempt creates an idle attempt.
func NewAttempt(cfg *Config) (*Attempt, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Rates == nil {
		cfg.Rates = rates.NewSnapshot()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}

	return &Attempt{
		cfg:   cfg,
		amt:   amount.NewEngine(cfg.Rates),
		state: StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Destination returns the raw destination as entered.
func (a *Attempt) Destination() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.rawDestination
}

// Classification returns the current classification.
func (a *Attempt) Classification() destination.Classification {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.classification
}

// SelectedMethod returns the chosen sub-destination for unified URIs.
func (a *Attempt) SelectedMethod() destination.Method {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.selected
}

// Amount returns the attempt's amount engine. The engine must be
// driven from the same goroutine as the attempt.
func (a *Attempt) Amount() *amount.Engine {
	return a.amt
}

// Err returns the error of the last failed transition or dispatch.
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lastErr
}

// Result returns the normalized record after a successful dispatch.
func (a *Attempt) Result() *PaymentResultRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.result
}

// SetComment attaches an optional comment passed to the engine.
func (a *Attempt) SetComment(comment string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.comment = comment
}

// SetDestination replaces the raw destination and re-classifies it
// synchronously. From any state before dispatch this forcibly resets
// to Classified (or Idle when the string is emptied), discarding
// confirmation progress; it is the cancellation point of the flow.
// While dispatching, the destination is frozen and the call is
// rejected.
func (a *Attempt) SetDestination(raw string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateDispatching {
		return &TransitionError{State: a.state, Event: "edit destination"}
	}

	a.rawDestination = raw
	a.result = nil
	a.lastErr = nil

	if raw == "" {
		a.classification = destination.Classification{}
		a.selected = destination.MethodOnchain
		a.amt.ClearFixed()
		a.state = StateIdle
		return nil
	}

	a.classification = destination.Classify(raw, a.cfg.Params)

	if a.classification.HasAmount && !a.classification.AmountEditable {
		a.amt.SetFixed(a.classification.Amount)
	} else {
		a.amt.ClearFixed()
	}

	a.selected = destination.MethodOnchain
	if a.classification.Kind == destination.KindUnified {
		a.selected = a.classification.Unified.DefaultMethod()
	}

	a.state = StateClassified
	return nil
}

// SelectMethod records an explicit user choice among the
// sub-destinations of a unified URI. It is a no-op state with no
// network activity and is only reachable when more than one method is
// available.
func (a *Attempt) SelectMethod(m destination.Method) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateClassified && a.state != StateMethodSelection {
		return &TransitionError{State: a.state, Event: "select method"}
	}

	c := a.classification
	if c.Kind != destination.KindUnified || len(c.Unified.Methods()) < 2 {
		return &TransitionError{
			State: a.state,
			Event: "select method for a single-method destination",
		}
	}

	available := false
	for _, candidate := range c.Unified.Methods() {
		if candidate == m {
			available = true
			break
		}
	}
	if !available {
		return fmt.Errorf("method %s not offered by this "+
			"destination", m)
	}

	a.selected = m
	a.state = StateMethodSelection
	return nil
}

// Confirm moves to Confirming. It requires a classified,
// non-Unrecognized destination and a positive amount; otherwise the
// transition is rejected locally with ErrConfirmationRejected and the
// state is unchanged.
func (a *Attempt) Confirm() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateClassified && a.state != StateMethodSelection {
		return &TransitionError{State: a.state, Event: "confirm"}
	}

	if a.classification.Kind == destination.KindUnrecognized {
		return fmt.Errorf("%w: destination is not a valid payment "+
			"destination", ErrConfirmationRejected)
	}

	if _, err := a.amt.AmountSat(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfirmationRejected, err)
	}

	a.preConfirm = a.state
	a.state = StateConfirming
	return nil
}

// Cancel returns from Confirming to the pre-confirmation state with
// all fields intact. Cancellation is always permitted strictly before
// dispatch and never after.
func (a *Attempt) Cancel() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateConfirming {
		return &TransitionError{State: a.state, Event: "cancel"}
	}

	a.state = a.preConfirm
	return nil
}

// Dispatch performs the single asynchronous engine call for the
// resolved rail. On success the result is normalized and recorded to
// history before the attempt turns terminal; on engine rejection the
// attempt fails with the raw error preserved and nothing recorded.
func (a *Attempt) Dispatch(ctx context.Context) (*PaymentResultRecord,
	error) {

	a.mu.Lock()
	if a.state != StateConfirming {
		a.mu.Unlock()
		return nil, &TransitionError{State: a.state, Event: "dispatch"}
	}

	rail, dest, err := a.resolveRail()
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}

	amt, err := a.amt.AmountSat()
	if err != nil {
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrConfirmationRejected, err)
	}

	comment := a.comment
	invoiceFixed := a.classification.Kind ==
		destination.KindLightningInvoice && a.classification.HasAmount

	a.state = StateDispatching
	a.mu.Unlock()

	log.Infof("Dispatching %s payment of %v to %s", rail, amt, dest)

	result, engineErr := a.callEngine(
		ctx, rail, dest, amt, invoiceFixed, comment,
	)
	if engineErr != nil {
		dispatchErr := &DispatchError{Rail: rail, Err: engineErr}
		log.Errorf("Dispatch failed: %v", dispatchErr)

		a.mu.Lock()
		a.state = StateFailed
		a.lastErr = dispatchErr
		a.mu.Unlock()

		return nil, dispatchErr
	}

	rec, err := normalize(rail, result, dest, amt)
	if err != nil {
		log.Criticalf("Engine returned unmappable %s result: %v",
			rail, err)

		a.mu.Lock()
		a.state = StateFailed
		a.lastErr = err
		a.mu.Unlock()

		return nil, err
	}
	rec.CreatedAt = a.cfg.Clock.Now()

	// Record before the state turns terminal.
	recordErr := a.cfg.History.Record(ctx, rec)
	if recordErr != nil {
		log.Errorf("Failed to record payment in history: %v",
			recordErr)
	}

	a.mu.Lock()
	a.state = StateSucceeded
	a.result = rec
	a.mu.Unlock()

	if recordErr != nil {
		return rec, fmt.Errorf("payment sent but not recorded: %w",
			recordErr)
	}
	return rec, nil
}

// AcknowledgeFailure returns a failed attempt to Classified with the
// destination and amount intact, so the user can retry without
// re-typing. No automatic retry is ever performed.
func (a *Attempt) AcknowledgeFailure() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateFailed {
		return &TransitionError{State: a.state, Event: "acknowledge"}
	}

	a.lastErr = nil
	a.state = StateClassified
	return nil
}

// Reset clears destination, classification, amount and result in one
// atomic step and returns to Idle. It is how terminal states are
// exited, and is also permitted from any pre-dispatch state.
func (a *Attempt) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateDispatching {
		return &TransitionError{State: a.state, Event: "reset"}
	}

	a.rawDestination = ""
	a.classification = destination.Classification{}
	a.selected = destination.MethodOnchain
	a.amt.Reset()
	a.lastErr = nil
	a.result = nil
	a.state = StateIdle
	return nil
}

// resolveRail maps the classification (and, for unified URIs, the
// selected method) onto the rail and destination string to dispatch.
func (a *Attempt) resolveRail() (Rail, string, error) {
	c := a.classification
	switch c.Kind {
	case destination.KindOnchain:
		return RailOnchain, c.Destination, nil

	case destination.KindLightningInvoice:
		return RailBolt11, c.Destination, nil

	case destination.KindLightningAddress:
		return RailLnurl, c.Destination, nil

	case destination.KindArk:
		return RailArk, c.Destination, nil

	case destination.KindUnified:
		switch a.selected {
		case destination.MethodArk:
			return RailArk, c.Unified.ArkID, nil
		case destination.MethodLightning:
			return RailBolt11, c.Unified.Invoice, nil
		default:
			return RailOnchain, c.Unified.OnchainAddress, nil
		}

	default:
		return 0, "", fmt.Errorf("%w: destination is not a valid "+
			"payment destination", ErrConfirmationRejected)
	}
}

// callEngine performs exactly one rail-specific dispatch operation.
func (a *Attempt) callEngine(ctx context.Context, rail Rail, dest string,
	amt btcutil.Amount, invoiceFixed bool, comment string) (any, error) {

	switch rail {
	case RailOnchain:
		return a.cfg.Engine.SendOnchain(ctx, dest, amt, comment)

	case RailBolt11:
		// A fully invoice-fixed payment carries its amount in the
		// invoice itself.
		var amtPtr *btcutil.Amount
		if !invoiceFixed {
			amtPtr = &amt
		}
		return a.cfg.Engine.PayBolt11(ctx, dest, amtPtr, comment)

	case RailLnurl:
		return a.cfg.Engine.PayLnurl(ctx, dest, amt, comment)

	case RailArk:
		return a.cfg.Engine.SendArk(ctx, dest, amt, comment)

	default:
		return nil, &NormalizationError{
			Rail:   rail,
			Reason: "unknown rail",
		}
	}
}
