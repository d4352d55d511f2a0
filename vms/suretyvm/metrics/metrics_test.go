// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/surety/vms/suretyvm/txs"
)

func TestNew(t *testing.T) {
	require := require.New(t)

	m, err := New(metric.NewRegistry())
	require.NoError(err)

	tx, err := txs.New(&txs.WithdrawTx{BaseTx: txs.BaseTx{From: ids.GenerateTestShortID()}})
	require.NoError(err)
	require.NoError(m.MarkTxAccepted(tx))
	require.NoError(m.MarkTxRejected(tx))

	m.MarkFinalized(1_500_000)
	m.MarkPaid(1_500_000)
	m.SetAirlines(5)
	m.SetOracles(20)
	m.SetTreasury(10)
}
