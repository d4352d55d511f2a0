// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package airline implements multiparty admission of airlines. Below the
// consensus threshold a funded member admits a candidate directly; at or
// above it the candidate needs approvals from half of the funded members.
package airline

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/vms/suretyvm/funding"
	"github.com/luxfi/surety/vms/suretyvm/state"
)

var (
	ErrAlreadyRegistered = errors.New("airline is already registered")

	airlinePrefix = []byte("airline:")
	votePrefix    = []byte("vote:")
	countKey      = []byte("count")
)

// Airline is the admission record of a candidate or member.
type Airline struct {
	Registered   bool   `serialize:"true" json:"registered"`
	Votes        uint32 `serialize:"true" json:"votes"`
	RegisteredAt uint64 `serialize:"true" json:"registeredAt"`
}

// Eligibility reports the funding status the admission rule depends on.
type Eligibility interface {
	RequireFunded(ids.ShortID) error
	FundedCount() (uint64, error)
}

// Decision is the outcome of one admission call.
type Decision struct {
	Registered bool
	// Voted is false when the call repeated an approval already on record.
	Voted bool
	Votes uint32
}

type Registry struct {
	db        state.ReadWriter
	funding   Eligibility
	clock     *mockable.Clock
	threshold uint64
}

func New(db state.ReadWriter, clock *mockable.Clock, threshold uint32) *Registry {
	return &Registry{
		db:        db,
		clock:     clock,
		threshold: uint64(threshold),
	}
}

// SetEligibility attaches the funding ledger. Funding reads membership from
// the registry, so the two are built in sequence.
func (r *Registry) SetEligibility(e Eligibility) {
	r.funding = e
}

// RegisterFirst admits the genesis airline without any approval. It must be
// called on an empty registry.
func (r *Registry) RegisterFirst(airline ids.ShortID) error {
	count, err := r.Count()
	if err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("%w: registry already has %d airlines", ErrAlreadyRegistered, count)
	}
	return r.admit(airline, &Airline{})
}

// Register records caller's request to admit candidate.
func (r *Registry) Register(candidate, caller ids.ShortID) (*Decision, error) {
	registered, err := r.IsRegistered(caller)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, fmt.Errorf("%w: %s", funding.ErrUnknownAirline, caller)
	}
	if err := r.funding.RequireFunded(caller); err != nil {
		return nil, err
	}

	record, err := r.Get(candidate)
	if err != nil {
		return nil, err
	}
	if record.Registered {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, candidate)
	}

	count, err := r.Count()
	if err != nil {
		return nil, err
	}
	if count < r.threshold {
		if err := r.admit(candidate, record); err != nil {
			return nil, err
		}
		return &Decision{Registered: true, Voted: true, Votes: record.Votes}, nil
	}

	voteKey := state.Key(votePrefix, candidate[:], caller[:])
	voted, err := r.db.Has(voteKey)
	if err != nil {
		return nil, err
	}
	if voted {
		return &Decision{Votes: record.Votes}, nil
	}
	if err := state.Mark(r.db, voteKey); err != nil {
		return nil, err
	}
	record.Votes++

	funded, err := r.funding.FundedCount()
	if err != nil {
		return nil, err
	}
	if uint64(record.Votes)*2 >= funded {
		if err := r.admit(candidate, record); err != nil {
			return nil, err
		}
		return &Decision{Registered: true, Voted: true, Votes: record.Votes}, nil
	}
	if err := state.PutRecord(r.db, recordKey(candidate), record); err != nil {
		return nil, err
	}
	return &Decision{Voted: true, Votes: record.Votes}, nil
}

// Get returns the admission record of airline. Unknown airlines have a zero
// record.
func (r *Registry) Get(airline ids.ShortID) (*Airline, error) {
	record := &Airline{}
	err := state.GetRecord(r.db, recordKey(airline), record)
	if errors.Is(err, database.ErrNotFound) {
		return record, nil
	}
	return record, err
}

func (r *Registry) IsRegistered(airline ids.ShortID) (bool, error) {
	record, err := r.Get(airline)
	if err != nil {
		return false, err
	}
	return record.Registered, nil
}

func (r *Registry) HasVoted(candidate, voter ids.ShortID) (bool, error) {
	return r.db.Has(state.Key(votePrefix, candidate[:], voter[:]))
}

// Count returns the number of registered airlines.
func (r *Registry) Count() (uint64, error) {
	return state.GetCount(r.db, countKey)
}

func (r *Registry) admit(airline ids.ShortID, record *Airline) error {
	record.Registered = true
	record.RegisteredAt = r.clock.Unix()
	if err := state.PutRecord(r.db, recordKey(airline), record); err != nil {
		return err
	}
	_, err := state.Increment(r.db, countKey)
	return err
}

func recordKey(airline ids.ShortID) []byte {
	return state.Key(airlinePrefix, airline[:])
}
