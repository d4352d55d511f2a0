// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"strings"
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/surety/vms/suretyvm/access"
	"github.com/luxfi/surety/vms/suretyvm/flight"
)

func TestParse(t *testing.T) {
	require := require.New(t)

	sender := ids.GenerateTestShortID()
	tx, err := New(&SubmitOracleResponseTx{
		BaseTx:    BaseTx{From: sender, Nonce: 7},
		Index:     4,
		FlightKey: ids.GenerateTestID(),
		Status:    flight.AirlineDelay,
	})
	require.NoError(err)
	require.NotEmpty(tx.Bytes())

	parsed, err := Parse(tx.Bytes())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(tx.Unsigned, parsed.Unsigned)
	require.Equal(sender, parsed.Unsigned.Sender())
}

func TestNonceChangesID(t *testing.T) {
	require := require.New(t)

	sender := ids.GenerateTestShortID()
	tx1, err := New(&WithdrawTx{BaseTx: BaseTx{From: sender, Nonce: 1}})
	require.NoError(err)
	tx2, err := New(&WithdrawTx{BaseTx: BaseTx{From: sender, Nonce: 2}})
	require.NoError(err)
	require.NotEqual(tx1.ID(), tx2.ID())
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte{0x00, 0x00, 0xff})
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	sender := ids.GenerateTestShortID()
	base := BaseTx{From: sender}

	tests := []struct {
		name        string
		tx          UnsignedTx
		expectedErr error
	}{
		{
			name:        "no sender",
			tx:          &WithdrawTx{},
			expectedErr: ErrNoSender,
		},
		{
			name:        "withdraw",
			tx:          &WithdrawTx{BaseTx: base},
			expectedErr: nil,
		},
		{
			name:        "unknown component",
			tx:          &AuthorizeCallerTx{BaseTx: base, Component: "oracles", Caller: sender},
			expectedErr: ErrInvalidComponent,
		},
		{
			name:        "authorize without caller",
			tx:          &DeauthorizeCallerTx{BaseTx: base, Component: access.Insurance},
			expectedErr: ErrNoCaller,
		},
		{
			name:        "no candidate",
			tx:          &RegisterAirlineTx{BaseTx: base},
			expectedErr: ErrNoCandidate,
		},
		{
			name:        "zero funding",
			tx:          &FundAirlineTx{BaseTx: base},
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "empty flight number",
			tx:          &RegisterFlightTx{BaseTx: base, Departure: 1},
			expectedErr: flight.ErrInvalidNumber,
		},
		{
			name:        "oversized flight number",
			tx:          &RegisterFlightTx{BaseTx: base, Number: strings.Repeat("X", flight.MaxNumberLen+1), Departure: 1},
			expectedErr: flight.ErrInvalidNumber,
		},
		{
			name:        "zero premium",
			tx:          &BuyInsuranceTx{BaseTx: base, FlightKey: ids.GenerateTestID()},
			expectedErr: ErrInvalidAmount,
		},
		{
			name:        "zero oracle fee is left to execution",
			tx:          &RegisterOracleTx{BaseTx: base},
			expectedErr: nil,
		},
		{
			name:        "invalid status",
			tx:          &SubmitOracleResponseTx{BaseTx: base, Status: 25},
			expectedErr: flight.ErrInvalidStatus,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tx := &Tx{Unsigned: test.tx}
			require.ErrorIs(t, tx.Verify(), test.expectedErr)
		})
	}
}

func TestVerifyNil(t *testing.T) {
	var tx *Tx
	require.ErrorIs(t, tx.Verify(), ErrNilTx)
}
