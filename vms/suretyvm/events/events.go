// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events defines the facts the ledger emits after an operation
// commits. Off-ledger collaborators, such as oracle nodes, react to them.
package events

import (
	"context"

	"github.com/luxfi/ids"

	"github.com/luxfi/surety/vms/suretyvm/flight"
)

//go:generate mockgen -package=eventsmock -destination=eventsmock/publisher.go -mock_names=Publisher=Publisher . Publisher

// Event is a fact emitted by a committed operation.
type Event interface {
	Name() string
}

// Publisher delivers committed events to collaborators.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// OracleRequestCreated asks oracles holding Index for the status of a
// flight.
type OracleRequestCreated struct {
	Index        uint8
	Airline      ids.ShortID
	FlightNumber string
	Departure    uint64
	FlightKey    ids.ID
}

// OracleReport is emitted for every counted response that did not reach
// quorum.
type OracleReport struct {
	FlightKey ids.ID
	Index     uint8
	Status    flight.Status
	Tally     uint64
}

// OracleReportFinalized is emitted when a status reaches quorum.
type OracleReportFinalized struct {
	FlightKey ids.ID
	Index     uint8
	Status    flight.Status
}

type OracleRegistered struct {
	Oracle  ids.ShortID
	Indices [3]uint8
}

type AirlineRegistered struct {
	Airline ids.ShortID
	Votes   uint32
}

type AirlineVoted struct {
	Candidate ids.ShortID
	Voter     ids.ShortID
	Votes     uint32
}

type AirlineFunded struct {
	Airline     ids.ShortID
	Contributed uint64
}

type FlightRegistered struct {
	FlightKey ids.ID
	Airline   ids.ShortID
	Number    string
	Departure uint64
}

type InsurancePurchased struct {
	FlightKey ids.ID
	Passenger ids.ShortID
	Premium   uint64
}

type InsureeCredited struct {
	FlightKey ids.ID
	Passenger ids.ShortID
	Amount    uint64
}

type Withdrawn struct {
	Passenger ids.ShortID
	Amount    uint64
}

type OperatingStatusChanged struct {
	Operational bool
}

func (*OracleRequestCreated) Name() string   { return "oracle_request" }
func (*OracleReport) Name() string           { return "oracle_report" }
func (*OracleReportFinalized) Name() string  { return "flight_status_info" }
func (*OracleRegistered) Name() string       { return "oracle_registered" }
func (*AirlineRegistered) Name() string      { return "airline_registered" }
func (*AirlineVoted) Name() string           { return "airline_voted" }
func (*AirlineFunded) Name() string          { return "airline_funded" }
func (*FlightRegistered) Name() string       { return "flight_registered" }
func (*InsurancePurchased) Name() string     { return "insurance_purchased" }
func (*InsureeCredited) Name() string        { return "insuree_credited" }
func (*Withdrawn) Name() string              { return "withdrawn" }
func (*OperatingStatusChanged) Name() string { return "operating_status_changed" }

// NoOpPublisher drops every event.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(context.Context, Event) {}
