// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package execute applies transactions to the ledger components. Every
// state-changing path checks the kill-switch, then the capability of each
// component it writes, then the component's own rules.
package execute

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/surety/vms/suretyvm/access"
	"github.com/luxfi/surety/vms/suretyvm/events"
	"github.com/luxfi/surety/vms/suretyvm/txs"
)

var _ txs.Visitor = (*Tx)(nil)

// Tx executes a single transaction. On error the caller must discard every
// write the execution made.
type Tx struct {
	*Backend
	TxID   ids.ID
	Result Result
	Events []events.Event
}

func (e *Tx) SetOperatingStatusTx(tx *txs.SetOperatingStatusTx) error {
	changed, err := e.Access.SetOperatingStatus(tx.From, tx.Operational)
	if err != nil {
		return err
	}
	if !changed {
		e.Result.Outcome = NoOp
		return nil
	}
	e.Result.Outcome = Updated
	e.emit(&events.OperatingStatusChanged{Operational: tx.Operational})
	e.Log.Info("operating status changed",
		log.Stringer("txID", e.TxID),
		log.Bool("operational", tx.Operational),
	)
	return nil
}

func (e *Tx) AuthorizeCallerTx(tx *txs.AuthorizeCallerTx) error {
	if err := e.Access.AuthorizeCaller(tx.From, tx.Component, tx.Caller); err != nil {
		return err
	}
	e.Result.Outcome = Updated
	return nil
}

func (e *Tx) DeauthorizeCallerTx(tx *txs.DeauthorizeCallerTx) error {
	if err := e.Access.DeauthorizeCaller(tx.From, tx.Component, tx.Caller); err != nil {
		return err
	}
	e.Result.Outcome = Updated
	return nil
}

func (e *Tx) RegisterAirlineTx(tx *txs.RegisterAirlineTx) error {
	if err := e.require(access.Airlines); err != nil {
		return err
	}
	decision, err := e.Airlines.Register(tx.Candidate, tx.From)
	if err != nil {
		return err
	}

	switch {
	case decision.Registered:
		e.Result.Outcome = Registered
		e.emit(&events.AirlineRegistered{
			Airline: tx.Candidate,
			Votes:   decision.Votes,
		})
	case decision.Voted:
		e.Result.Outcome = Pending
		e.emit(&events.AirlineVoted{
			Candidate: tx.Candidate,
			Voter:     tx.From,
			Votes:     decision.Votes,
		})
	default:
		e.Result.Outcome = NoOp
	}
	return nil
}

func (e *Tx) FundAirlineTx(tx *txs.FundAirlineTx) error {
	if err := e.require(access.Funding); err != nil {
		return err
	}
	receipt, err := e.Funding.Fund(tx.From, tx.Value)
	if err != nil {
		return err
	}

	e.Result.Amount = tx.Value
	e.Result.Outcome = Updated
	if receipt.BecameFunded {
		e.Result.Outcome = Funded
	}
	e.emit(&events.AirlineFunded{
		Airline:     tx.From,
		Contributed: receipt.Contributed,
	})
	return nil
}

func (e *Tx) RegisterFlightTx(tx *txs.RegisterFlightTx) error {
	if err := e.require(access.Flights); err != nil {
		return err
	}
	f, err := e.Flights.Register(tx.Number, tx.Departure, tx.From)
	if err != nil {
		return err
	}

	key := f.Key()
	e.Result.Outcome = Registered
	e.Result.FlightKey = key
	e.emit(&events.FlightRegistered{
		FlightKey: key,
		Airline:   f.Airline,
		Number:    f.Number,
		Departure: f.Departure,
	})
	return nil
}

func (e *Tx) BuyInsuranceTx(tx *txs.BuyInsuranceTx) error {
	if err := e.require(access.Insurance); err != nil {
		return err
	}
	policy, err := e.Insurance.Buy(tx.FlightKey, tx.Value, tx.From)
	if err != nil {
		return err
	}

	e.Result.Outcome = Insured
	e.Result.Amount = policy.Premium
	e.Result.FlightKey = tx.FlightKey
	e.emit(&events.InsurancePurchased{
		FlightKey: tx.FlightKey,
		Passenger: tx.From,
		Premium:   policy.Premium,
	})
	return nil
}

func (e *Tx) WithdrawTx(tx *txs.WithdrawTx) error {
	if err := e.require(access.Insurance); err != nil {
		return err
	}
	amount, err := e.Insurance.Withdraw(tx.From)
	if err != nil {
		return err
	}
	if amount == 0 {
		e.Result.Outcome = NoOp
		return nil
	}

	e.Result.Outcome = Paid
	e.Result.Amount = amount
	e.emit(&events.Withdrawn{
		Passenger: tx.From,
		Amount:    amount,
	})
	return nil
}

func (e *Tx) RegisterOracleTx(tx *txs.RegisterOracleTx) error {
	if err := e.require(); err != nil {
		return err
	}
	o, err := e.Oracles.Register(tx.From, tx.Value)
	if err != nil {
		return err
	}

	e.Result.Outcome = Registered
	e.Result.Amount = tx.Value
	e.Result.Indices = o.Indices[:]
	e.emit(&events.OracleRegistered{
		Oracle:  tx.From,
		Indices: o.Indices,
	})
	return nil
}

func (e *Tx) FetchFlightStatusTx(tx *txs.FetchFlightStatusTx) error {
	if err := e.require(access.Flights); err != nil {
		return err
	}
	fetch, err := e.Oracles.FetchFlightStatus(tx.FlightKey, tx.From)
	if err != nil {
		return err
	}

	req := fetch.Request
	e.Result.Outcome = Requested
	e.Result.FlightKey = tx.FlightKey
	e.Result.Indices = []uint8{req.Index}
	// A repeated fetch re-announces the open request so late oracles can
	// answer it.
	if req.Open {
		e.emit(&events.OracleRequestCreated{
			Index:        req.Index,
			Airline:      fetch.Flight.Airline,
			FlightNumber: fetch.Flight.Number,
			Departure:    fetch.Flight.Departure,
			FlightKey:    tx.FlightKey,
		})
	}
	return nil
}

func (e *Tx) SubmitOracleResponseTx(tx *txs.SubmitOracleResponseTx) error {
	if err := e.require(access.Flights, access.Insurance); err != nil {
		return err
	}
	sub, err := e.Oracles.SubmitResponse(tx.Index, tx.FlightKey, tx.Status, tx.From)
	if err != nil {
		return err
	}

	e.Result.FlightKey = tx.FlightKey
	e.Result.Indices = []uint8{tx.Index}
	switch {
	case sub.Finalized:
		e.Result.Outcome = Finalized
		e.emit(&events.OracleReportFinalized{
			FlightKey: tx.FlightKey,
			Index:     tx.Index,
			Status:    tx.Status,
		})
		for _, credit := range sub.Credits {
			e.Result.Amount += credit.Amount
			e.emit(&events.InsureeCredited{
				FlightKey: tx.FlightKey,
				Passenger: credit.Passenger,
				Amount:    credit.Amount,
			})
		}
		e.Log.Info("flight status finalized",
			log.Stringer("flightKey", tx.FlightKey),
			log.Stringer("status", tx.Status),
			log.Bool("settled", sub.Settled),
			log.Int("credited", len(sub.Credits)),
		)
	case sub.Counted:
		e.Result.Outcome = Recorded
		e.emit(&events.OracleReport{
			FlightKey: tx.FlightKey,
			Index:     tx.Index,
			Status:    tx.Status,
			Tally:     sub.Tally,
		})
	default:
		e.Result.Outcome = NoOp
	}
	return nil
}

// require checks the kill-switch and that the ledger holds the capability
// for each component the transaction writes.
func (e *Tx) require(components ...access.Component) error {
	if err := e.Access.RequireOperational(); err != nil {
		return err
	}
	for _, component := range components {
		if err := e.Access.RequireAuthorized(component, e.AppID); err != nil {
			return err
		}
	}
	return nil
}

func (e *Tx) emit(evt events.Event) {
	e.Events = append(e.Events, evt)
}
