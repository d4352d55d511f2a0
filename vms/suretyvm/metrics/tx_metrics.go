// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/surety/vms/suretyvm/txs"
)

const txLabel = "tx"

var (
	_ txs.Visitor = (*txMetrics)(nil)

	txLabels = []string{txLabel}
)

type txMetrics struct {
	numTxs metric.CounterVec
}

func newTxMetrics(registerer metric.Registerer, name, help string) (*txMetrics, error) {
	m := &txMetrics{
		numTxs: metric.NewCounterVec(
			metric.CounterOpts{
				Name: name,
				Help: help,
			},
			txLabels,
		),
	}
	return m, registerer.Register(metric.AsCollector(m.numTxs))
}

func (m *txMetrics) inc(label string) error {
	m.numTxs.With(metric.Labels{
		txLabel: label,
	}).Inc()
	return nil
}

func (m *txMetrics) SetOperatingStatusTx(*txs.SetOperatingStatusTx) error {
	return m.inc("set_operating_status")
}

func (m *txMetrics) AuthorizeCallerTx(*txs.AuthorizeCallerTx) error {
	return m.inc("authorize_caller")
}

func (m *txMetrics) DeauthorizeCallerTx(*txs.DeauthorizeCallerTx) error {
	return m.inc("deauthorize_caller")
}

func (m *txMetrics) RegisterAirlineTx(*txs.RegisterAirlineTx) error {
	return m.inc("register_airline")
}

func (m *txMetrics) FundAirlineTx(*txs.FundAirlineTx) error {
	return m.inc("fund_airline")
}

func (m *txMetrics) RegisterFlightTx(*txs.RegisterFlightTx) error {
	return m.inc("register_flight")
}

func (m *txMetrics) BuyInsuranceTx(*txs.BuyInsuranceTx) error {
	return m.inc("buy_insurance")
}

func (m *txMetrics) WithdrawTx(*txs.WithdrawTx) error {
	return m.inc("withdraw")
}

func (m *txMetrics) RegisterOracleTx(*txs.RegisterOracleTx) error {
	return m.inc("register_oracle")
}

func (m *txMetrics) FetchFlightStatusTx(*txs.FetchFlightStatusTx) error {
	return m.inc("fetch_flight_status")
}

func (m *txMetrics) SubmitOracleResponseTx(*txs.SubmitOracleResponseTx) error {
	return m.inc("submit_oracle_response")
}
