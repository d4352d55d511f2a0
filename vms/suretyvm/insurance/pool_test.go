// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package insurance

import (
	"testing"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/utils/units"
	"github.com/luxfi/surety/vms/suretyvm/flight"
	"github.com/luxfi/surety/vms/suretyvm/state"
)

type funded struct{}

func (funded) RequireFunded(ids.ShortID) error {
	return nil
}

type testEnv struct {
	flights  *flight.Registry
	pool     *Pool
	treasury *state.Treasury
	key      ids.ID
}

func newTestEnv(t *testing.T) *testEnv {
	db := memdb.New()
	clock := &mockable.Clock{}
	flights := flight.New(prefixdb.New([]byte("flight"), db), funded{}, clock)
	treasury := state.NewTreasury(prefixdb.New([]byte("treasury"), db))

	f, err := flights.Register("ND1309", 1_800_000_000, ids.GenerateTestShortID())
	require.NoError(t, err)
	return &testEnv{
		flights:  flights,
		pool:     New(prefixdb.New([]byte("insurance"), db), flights, treasury, clock, units.Lux),
		treasury: treasury,
		key:      f.Key(),
	}
}

func TestBuy(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	passenger := ids.GenerateTestShortID()

	_, err := env.pool.Buy(env.key, units.Lux+1, passenger)
	require.ErrorIs(err, ErrPremiumTooHigh)

	_, err = env.pool.Buy(env.key, 0, passenger)
	require.ErrorIs(err, ErrZeroPremium)

	_, err = env.pool.Buy(ids.GenerateTestID(), units.Lux, passenger)
	require.ErrorIs(err, flight.ErrUnknownFlight)

	policy, err := env.pool.Buy(env.key, units.Lux, passenger)
	require.NoError(err)
	require.Equal(units.Lux, policy.Premium)
	require.False(policy.Credited)

	_, err = env.pool.Buy(env.key, units.Lux/2, passenger)
	require.ErrorIs(err, ErrAlreadyInsured)

	balance, err := env.treasury.Balance()
	require.NoError(err)
	require.Equal(units.Lux, balance)

	_, err = env.pool.Policy(env.key, ids.GenerateTestShortID())
	require.ErrorIs(err, database.ErrNotFound)
}

func TestBuyAfterSettlement(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	_, err := env.flights.SetStatus(env.key, flight.OnTime)
	require.NoError(err)

	_, err = env.pool.Buy(env.key, units.Lux, ids.GenerateTestShortID())
	require.ErrorIs(err, ErrFlightSettled)
}

func TestCreditInsureesOnce(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	p1 := ids.GenerateTestShortID()
	p2 := ids.GenerateTestShortID()
	_, err := env.pool.Buy(env.key, units.Lux, p1)
	require.NoError(err)
	_, err = env.pool.Buy(env.key, 3, p2)
	require.NoError(err)

	credits, err := env.pool.CreditInsurees(env.key)
	require.NoError(err)
	require.Equal([]Credit{
		{Passenger: p1, Amount: 1_500_000},
		{Passenger: p2, Amount: 4},
	}, credits)

	credits, err = env.pool.CreditInsurees(env.key)
	require.NoError(err)
	require.Empty(credits)

	payable, err := env.pool.Payable(p1)
	require.NoError(err)
	require.Equal(uint64(1_500_000), payable)

	policy, err := env.pool.Policy(env.key, p1)
	require.NoError(err)
	require.True(policy.Credited)
}

func TestWithdraw(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	passenger := ids.GenerateTestShortID()
	_, err := env.pool.Buy(env.key, units.Lux, passenger)
	require.NoError(err)
	_, err = env.pool.CreditInsurees(env.key)
	require.NoError(err)

	// The premium alone cannot cover a 1.5x payout.
	_, err = env.pool.Withdraw(passenger)
	require.ErrorIs(err, state.ErrInsufficientReserve)

	require.NoError(env.treasury.Deposit(10 * units.Lux))

	amount, err := env.pool.Withdraw(passenger)
	require.NoError(err)
	require.Equal(uint64(1_500_000), amount)

	amount, err = env.pool.Withdraw(passenger)
	require.NoError(err)
	require.Zero(amount)

	balance, err := env.treasury.Balance()
	require.NoError(err)
	require.Equal(11*units.Lux-1_500_000, balance)
}
