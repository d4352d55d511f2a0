// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package funding tracks the stake each airline has contributed. Funding is
// one-way: there is no withdrawal, so an airline that becomes funded stays
// funded.
package funding

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/surety/vms/suretyvm/state"

	safemath "github.com/luxfi/math"
)

var (
	ErrUnknownAirline = errors.New("unknown airline")
	ErrNotFunded      = errors.New("airline is not funded")

	accountPrefix  = []byte("acct:")
	fundedCountKey = []byte("funded")
)

// Membership reports whether an identity is a registered airline.
type Membership interface {
	IsRegistered(ids.ShortID) (bool, error)
}

// Account is the funding record of one airline.
type Account struct {
	Contributed uint64 `serialize:"true" json:"contributed"`
	Funded      bool   `serialize:"true" json:"funded"`
}

// Receipt describes the effect of one contribution.
type Receipt struct {
	Account
	BecameFunded bool
}

type Ledger struct {
	db         state.ReadWriter
	members    Membership
	treasury   *state.Treasury
	minFunding uint64
}

func New(db state.ReadWriter, members Membership, treasury *state.Treasury, minFunding uint64) *Ledger {
	return &Ledger{
		db:         db,
		members:    members,
		treasury:   treasury,
		minFunding: minFunding,
	}
}

// Fund adds amount to the airline's cumulative contribution and marks it
// funded once the contribution reaches the minimum.
func (l *Ledger) Fund(airline ids.ShortID, amount uint64) (*Receipt, error) {
	registered, err := l.members.IsRegistered(airline)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAirline, airline)
	}

	acct, err := l.Account(airline)
	if err != nil {
		return nil, err
	}
	acct.Contributed, err = safemath.Add(acct.Contributed, amount)
	if err != nil {
		return nil, fmt.Errorf("funding %s: %w", airline, err)
	}

	receipt := &Receipt{}
	if !acct.Funded && acct.Contributed >= l.minFunding {
		acct.Funded = true
		receipt.BecameFunded = true
		if _, err := state.Increment(l.db, fundedCountKey); err != nil {
			return nil, err
		}
	}
	if err := state.PutRecord(l.db, accountKey(airline), acct); err != nil {
		return nil, err
	}
	if err := l.treasury.Deposit(amount); err != nil {
		return nil, err
	}
	receipt.Account = *acct
	return receipt, nil
}

// Account returns the airline's funding record. Airlines that never
// contributed have a zero record.
func (l *Ledger) Account(airline ids.ShortID) (*Account, error) {
	acct := &Account{}
	err := state.GetRecord(l.db, accountKey(airline), acct)
	if errors.Is(err, database.ErrNotFound) {
		return acct, nil
	}
	return acct, err
}

func (l *Ledger) IsFunded(airline ids.ShortID) (bool, error) {
	acct, err := l.Account(airline)
	if err != nil {
		return false, err
	}
	return acct.Funded, nil
}

// RequireFunded returns ErrNotFunded unless airline is funded.
func (l *Ledger) RequireFunded(airline ids.ShortID) error {
	funded, err := l.IsFunded(airline)
	if err != nil {
		return err
	}
	if !funded {
		return fmt.Errorf("%w: %s", ErrNotFunded, airline)
	}
	return nil
}

// FundedCount returns the number of funded airlines.
func (l *Ledger) FundedCount() (uint64, error) {
	return state.GetCount(l.db, fundedCountKey)
}

func accountKey(airline ids.ShortID) []byte {
	return state.Key(accountPrefix, airline[:])
}
