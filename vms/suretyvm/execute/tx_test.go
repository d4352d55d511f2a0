// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package execute_test

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/utils/units"
	"github.com/luxfi/surety/vms/suretyvm/access"
	"github.com/luxfi/surety/vms/suretyvm/config"
	"github.com/luxfi/surety/vms/suretyvm/events"
	"github.com/luxfi/surety/vms/suretyvm/execute"
	"github.com/luxfi/surety/vms/suretyvm/genesis"
	"github.com/luxfi/surety/vms/suretyvm/txs"
)

type testEnv struct {
	backend *execute.Backend
	genesis *genesis.Genesis
}

func newTestEnv(t *testing.T) *testEnv {
	g := genesis.Default()
	b := execute.NewBackend(memdb.New(), config.DefaultConfig(), &mockable.Clock{}, g.AppID, log.NewNoOpLogger())
	require.NoError(t, g.Apply(b))
	return &testEnv{
		backend: b,
		genesis: g,
	}
}

func (e *testEnv) execute(tx txs.UnsignedTx) (*execute.Tx, error) {
	executor := &execute.Tx{Backend: e.backend}
	return executor, tx.Visit(executor)
}

func TestKillSwitch(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	owner := env.genesis.Owner
	airline := env.genesis.FirstAirline

	_, err := env.execute(&txs.SetOperatingStatusTx{BaseTx: txs.BaseTx{From: airline}})
	require.ErrorIs(err, access.ErrUnauthorized)
	require.False(execute.IsTransient(err))

	executor, err := env.execute(&txs.SetOperatingStatusTx{BaseTx: txs.BaseTx{From: owner}})
	require.NoError(err)
	require.Equal(execute.Updated, executor.Result.Outcome)
	require.Equal([]events.Event{&events.OperatingStatusChanged{Operational: false}}, executor.Events)

	executor, err = env.execute(&txs.SetOperatingStatusTx{BaseTx: txs.BaseTx{From: owner}})
	require.NoError(err)
	require.Equal(execute.NoOp, executor.Result.Outcome)

	_, err = env.execute(&txs.FundAirlineTx{BaseTx: txs.BaseTx{From: airline}, Value: 10 * units.Lux})
	require.ErrorIs(err, access.ErrNotOperational)
	require.True(execute.IsTransient(err))

	_, err = env.execute(&txs.SetOperatingStatusTx{BaseTx: txs.BaseTx{From: owner}, Operational: true})
	require.NoError(err)

	executor, err = env.execute(&txs.FundAirlineTx{BaseTx: txs.BaseTx{From: airline}, Value: 10 * units.Lux})
	require.NoError(err)
	require.Equal(execute.Funded, executor.Result.Outcome)
}

func TestCapabilityRevoked(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	owner := env.genesis.Owner

	_, err := env.execute(&txs.DeauthorizeCallerTx{
		BaseTx:    txs.BaseTx{From: owner},
		Component: access.Insurance,
		Caller:    env.genesis.AppID,
	})
	require.NoError(err)

	_, err = env.execute(&txs.WithdrawTx{BaseTx: txs.BaseTx{From: ids.GenerateTestShortID()}})
	require.ErrorIs(err, access.ErrUnauthorized)

	_, err = env.execute(&txs.AuthorizeCallerTx{
		BaseTx:    txs.BaseTx{From: owner},
		Component: access.Insurance,
		Caller:    env.genesis.AppID,
	})
	require.NoError(err)

	executor, err := env.execute(&txs.WithdrawTx{BaseTx: txs.BaseTx{From: ids.GenerateTestShortID()}})
	require.NoError(err)
	require.Equal(execute.NoOp, executor.Result.Outcome)
	require.Empty(executor.Events)
}

func TestFlightLifecycleEvents(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	airline := env.genesis.FirstAirline

	executor, err := env.execute(&txs.FundAirlineTx{BaseTx: txs.BaseTx{From: airline}, Value: 10 * units.Lux})
	require.NoError(err)
	require.Equal([]events.Event{&events.AirlineFunded{Airline: airline, Contributed: 10 * units.Lux}}, executor.Events)

	executor, err = env.execute(&txs.RegisterFlightTx{
		BaseTx:    txs.BaseTx{From: airline},
		Number:    "ND1309",
		Departure: 1_800_000_000,
	})
	require.NoError(err)
	require.Equal(execute.Registered, executor.Result.Outcome)
	flightKey := executor.Result.FlightKey

	passenger := ids.GenerateTestShortID()
	executor, err = env.execute(&txs.BuyInsuranceTx{
		BaseTx:    txs.BaseTx{From: passenger},
		FlightKey: flightKey,
		Value:     units.Lux,
	})
	require.NoError(err)
	require.Equal(execute.Insured, executor.Result.Outcome)

	executor, err = env.execute(&txs.FetchFlightStatusTx{
		BaseTx:    txs.BaseTx{From: passenger},
		FlightKey: flightKey,
	})
	require.NoError(err)
	require.Equal(execute.Requested, executor.Result.Outcome)
	require.Len(executor.Result.Indices, 1)
	require.Equal([]events.Event{&events.OracleRequestCreated{
		Index:        executor.Result.Indices[0],
		Airline:      airline,
		FlightNumber: "ND1309",
		Departure:    1_800_000_000,
		FlightKey:    flightKey,
	}}, executor.Events)
}

func TestRegisterAirlineOutcomes(t *testing.T) {
	require := require.New(t)

	env := newTestEnv(t)
	a1 := env.genesis.FirstAirline
	_, err := env.execute(&txs.FundAirlineTx{BaseTx: txs.BaseTx{From: a1}, Value: 10 * units.Lux})
	require.NoError(err)

	members := []ids.ShortID{a1}
	for range 3 {
		candidate := ids.GenerateTestShortID()
		executor, err := env.execute(&txs.RegisterAirlineTx{BaseTx: txs.BaseTx{From: a1}, Candidate: candidate})
		require.NoError(err)
		require.Equal(execute.Registered, executor.Result.Outcome)
		members = append(members, candidate)
	}
	for _, member := range members[1:] {
		_, err := env.execute(&txs.FundAirlineTx{BaseTx: txs.BaseTx{From: member}, Value: 10 * units.Lux})
		require.NoError(err)
	}

	candidate := ids.GenerateTestShortID()
	executor, err := env.execute(&txs.RegisterAirlineTx{BaseTx: txs.BaseTx{From: a1}, Candidate: candidate})
	require.NoError(err)
	require.Equal(execute.Pending, executor.Result.Outcome)

	executor, err = env.execute(&txs.RegisterAirlineTx{BaseTx: txs.BaseTx{From: a1}, Candidate: candidate})
	require.NoError(err)
	require.Equal(execute.NoOp, executor.Result.Outcome)

	executor, err = env.execute(&txs.RegisterAirlineTx{BaseTx: txs.BaseTx{From: members[1]}, Candidate: candidate})
	require.NoError(err)
	require.Equal(execute.Registered, executor.Result.Outcome)
}
