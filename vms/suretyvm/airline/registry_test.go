// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package airline

import (
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/utils/units"
	"github.com/luxfi/surety/vms/suretyvm/funding"
	"github.com/luxfi/surety/vms/suretyvm/state"
)

const minFunding = 10 * units.Lux

type testEnv struct {
	registry *Registry
	ledger   *funding.Ledger
}

func newTestEnv(t *testing.T, first ids.ShortID) *testEnv {
	db := memdb.New()
	clock := &mockable.Clock{}
	clock.Set(time.Unix(1_700_000_000, 0))

	registry := New(prefixdb.New([]byte("airline"), db), clock, 4)
	ledger := funding.New(
		prefixdb.New([]byte("funding"), db),
		registry,
		state.NewTreasury(prefixdb.New([]byte("treasury"), db)),
		minFunding,
	)
	registry.SetEligibility(ledger)
	require.NoError(t, registry.RegisterFirst(first))
	return &testEnv{
		registry: registry,
		ledger:   ledger,
	}
}

func (e *testEnv) fund(t *testing.T, airline ids.ShortID) {
	_, err := e.ledger.Fund(airline, minFunding)
	require.NoError(t, err)
}

func TestGenesisAirlineMustFundBeforeSponsoring(t *testing.T) {
	require := require.New(t)

	first := ids.GenerateTestShortID()
	env := newTestEnv(t, first)

	registered, err := env.registry.IsRegistered(first)
	require.NoError(err)
	require.True(registered)

	candidate := ids.GenerateTestShortID()
	_, err = env.registry.Register(candidate, first)
	require.ErrorIs(err, funding.ErrNotFunded)

	env.fund(t, first)
	decision, err := env.registry.Register(candidate, first)
	require.NoError(err)
	require.True(decision.Registered)
}

func TestRegisterRejectsUnknownCaller(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t, ids.GenerateTestShortID())
	_, err := env.registry.Register(ids.GenerateTestShortID(), ids.GenerateTestShortID())
	require.ErrorIs(err, funding.ErrUnknownAirline)
}

func TestRegisterRejectsMember(t *testing.T) {
	require := require.New(t)

	first := ids.GenerateTestShortID()
	env := newTestEnv(t, first)
	env.fund(t, first)

	second := ids.GenerateTestShortID()
	_, err := env.registry.Register(second, first)
	require.NoError(err)

	_, err = env.registry.Register(second, first)
	require.ErrorIs(err, ErrAlreadyRegistered)
}

func TestMultipartyAdmission(t *testing.T) {
	require := require.New(t)

	a1 := ids.GenerateTestShortID()
	env := newTestEnv(t, a1)
	env.fund(t, a1)

	// Below the threshold a funded member admits directly.
	members := []ids.ShortID{a1}
	for range 3 {
		candidate := ids.GenerateTestShortID()
		decision, err := env.registry.Register(candidate, a1)
		require.NoError(err)
		require.True(decision.Registered)
		members = append(members, candidate)
	}
	count, err := env.registry.Count()
	require.NoError(err)
	require.Equal(uint64(4), count)

	for _, member := range members[1:] {
		env.fund(t, member)
	}

	// Four funded members: two approvals are needed.
	a5 := ids.GenerateTestShortID()
	decision, err := env.registry.Register(a5, members[0])
	require.NoError(err)
	require.False(decision.Registered)
	require.True(decision.Voted)
	require.Equal(uint32(1), decision.Votes)

	// Repeated approval is not counted twice.
	decision, err = env.registry.Register(a5, members[0])
	require.NoError(err)
	require.False(decision.Registered)
	require.False(decision.Voted)
	require.Equal(uint32(1), decision.Votes)

	voted, err := env.registry.HasVoted(a5, members[0])
	require.NoError(err)
	require.True(voted)

	decision, err = env.registry.Register(a5, members[1])
	require.NoError(err)
	require.True(decision.Registered)
	require.Equal(uint32(2), decision.Votes)

	record, err := env.registry.Get(a5)
	require.NoError(err)
	require.True(record.Registered)
	require.Equal(uint64(1_700_000_000), record.RegisteredAt)

	// The new member is registered but cannot sponsor until it funds.
	_, err = env.registry.Register(ids.GenerateTestShortID(), a5)
	require.ErrorIs(err, funding.ErrNotFunded)
}

func TestUnfundedMembersDoNotCountTowardsMajority(t *testing.T) {
	require := require.New(t)

	a1 := ids.GenerateTestShortID()
	env := newTestEnv(t, a1)
	env.fund(t, a1)
	for range 3 {
		_, err := env.registry.Register(ids.GenerateTestShortID(), a1)
		require.NoError(err)
	}

	// Only a1 is funded, so its single approval is a majority.
	decision, err := env.registry.Register(ids.GenerateTestShortID(), a1)
	require.NoError(err)
	require.True(decision.Registered)
	require.Equal(uint32(1), decision.Votes)
}

func TestRegisterFirstOnlyOnce(t *testing.T) {
	env := newTestEnv(t, ids.GenerateTestShortID())
	require.ErrorIs(t, env.registry.RegisterFirst(ids.GenerateTestShortID()), ErrAlreadyRegistered)
}
