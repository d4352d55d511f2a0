// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package insurance holds passenger policies and the payable balances that
// settled claims accrue. Payouts are pulled by the passenger; crediting never
// moves value out of the treasury.
package insurance

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/vms/suretyvm/flight"
	"github.com/luxfi/surety/vms/suretyvm/state"

	safemath "github.com/luxfi/math"
)

// Payouts are premium * PayoutNumerator / PayoutDenominator.
const (
	PayoutNumerator   = 3
	PayoutDenominator = 2
)

var (
	ErrPremiumTooHigh = errors.New("premium exceeds the maximum")
	ErrZeroPremium    = errors.New("premium must be positive")
	ErrAlreadyInsured = errors.New("passenger is already insured on this flight")
	ErrFlightSettled  = errors.New("flight status is already settled")

	policyPrefix  = []byte("policy:")
	insureePrefix = []byte("insuree:")
	payablePrefix = []byte("payable:")
	countPrefix   = []byte("count:")
)

// Policy is one passenger's cover on one flight.
type Policy struct {
	Passenger   ids.ShortID `serialize:"true" json:"passenger"`
	Premium     uint64      `serialize:"true" json:"premium"`
	Credited    bool        `serialize:"true" json:"credited"`
	PurchasedAt uint64      `serialize:"true" json:"purchasedAt"`
}

// Credit is the amount added to one passenger's payable balance.
type Credit struct {
	Passenger ids.ShortID
	Amount    uint64
}

// Flights is the read side of the flight registry the pool depends on.
type Flights interface {
	Get(ids.ID) (*flight.Flight, error)
}

type Pool struct {
	db         state.ReadWriter
	flights    Flights
	treasury   *state.Treasury
	clock      *mockable.Clock
	maxPremium uint64
}

func New(
	db state.ReadWriter,
	flights Flights,
	treasury *state.Treasury,
	clock *mockable.Clock,
	maxPremium uint64,
) *Pool {
	return &Pool{
		db:         db,
		flights:    flights,
		treasury:   treasury,
		clock:      clock,
		maxPremium: maxPremium,
	}
}

// Buy insures passenger on flightKey for premium. The flight must exist and
// must not have settled.
func (p *Pool) Buy(flightKey ids.ID, premium uint64, passenger ids.ShortID) (*Policy, error) {
	f, err := p.flights.Get(flightKey)
	if err != nil {
		return nil, err
	}
	if f.Status != flight.Unknown {
		return nil, fmt.Errorf("%w: %s is %s", ErrFlightSettled, f.Number, f.Status)
	}
	if premium == 0 {
		return nil, ErrZeroPremium
	}
	if premium > p.maxPremium {
		return nil, fmt.Errorf("%w: %d > %d", ErrPremiumTooHigh, premium, p.maxPremium)
	}

	key := policyKey(flightKey, passenger)
	exists, err := p.db.Has(key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s on %s", ErrAlreadyInsured, passenger, f.Number)
	}

	seq, err := state.Increment(p.db, state.Key(countPrefix, flightKey[:]))
	if err != nil {
		return nil, err
	}
	if err := p.db.Put(insureeKey(flightKey, seq), passenger[:]); err != nil {
		return nil, err
	}

	policy := &Policy{
		Passenger:   passenger,
		Premium:     premium,
		PurchasedAt: p.clock.Unix(),
	}
	if err := state.PutRecord(p.db, key, policy); err != nil {
		return nil, err
	}
	return policy, p.treasury.Deposit(premium)
}

// Policy returns passenger's policy on flightKey, or database.ErrNotFound.
func (p *Pool) Policy(flightKey ids.ID, passenger ids.ShortID) (*Policy, error) {
	policy := &Policy{}
	if err := state.GetRecord(p.db, policyKey(flightKey, passenger), policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// Insurees returns the policies on flightKey in purchase order.
func (p *Pool) Insurees(flightKey ids.ID) ([]*Policy, error) {
	count, err := state.GetCount(p.db, state.Key(countPrefix, flightKey[:]))
	if err != nil {
		return nil, err
	}
	policies := make([]*Policy, 0, count)
	for seq := uint64(0); seq < count; seq++ {
		b, err := p.db.Get(insureeKey(flightKey, seq))
		if err != nil {
			return nil, err
		}
		passenger, err := ids.ToShortID(b)
		if err != nil {
			return nil, err
		}
		policy, err := p.Policy(flightKey, passenger)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

// CreditInsurees adds the payout of every uncredited policy on flightKey to
// the holder's payable balance. Calling it again credits nothing.
func (p *Pool) CreditInsurees(flightKey ids.ID) ([]Credit, error) {
	policies, err := p.Insurees(flightKey)
	if err != nil {
		return nil, err
	}

	var credits []Credit
	for _, policy := range policies {
		if policy.Credited {
			continue
		}
		amount, err := safemath.Mul(policy.Premium, PayoutNumerator)
		if err != nil {
			return nil, err
		}
		amount /= PayoutDenominator
		payable, err := p.Payable(policy.Passenger)
		if err != nil {
			return nil, err
		}
		payable, err = safemath.Add(payable, amount)
		if err != nil {
			return nil, fmt.Errorf("crediting %s: %w", policy.Passenger, err)
		}
		if err := database.PutUInt64(p.db, payableKey(policy.Passenger), payable); err != nil {
			return nil, err
		}

		policy.Credited = true
		if err := state.PutRecord(p.db, policyKey(flightKey, policy.Passenger), policy); err != nil {
			return nil, err
		}
		credits = append(credits, Credit{
			Passenger: policy.Passenger,
			Amount:    amount,
		})
	}
	return credits, nil
}

// Payable returns the balance passenger may withdraw.
func (p *Pool) Payable(passenger ids.ShortID) (uint64, error) {
	return state.GetCount(p.db, payableKey(passenger))
}

// Withdraw pays out passenger's whole payable balance and returns the amount.
// With nothing payable it returns zero and leaves state untouched.
func (p *Pool) Withdraw(passenger ids.ShortID) (uint64, error) {
	amount, err := p.Payable(passenger)
	if err != nil || amount == 0 {
		return 0, err
	}
	if err := p.treasury.Withdraw(amount); err != nil {
		return 0, err
	}
	return amount, p.db.Delete(payableKey(passenger))
}

func policyKey(flightKey ids.ID, passenger ids.ShortID) []byte {
	return state.Key(policyPrefix, flightKey[:], passenger[:])
}

func insureeKey(flightKey ids.ID, seq uint64) []byte {
	return state.Key(insureePrefix, flightKey[:], database.PackUInt64(seq))
}

func payableKey(passenger ids.ShortID) []byte {
	return state.Key(payablePrefix, passenger[:])
}
