// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/luxfi/surety/utils/wrappers"
	"github.com/luxfi/surety/vms/suretyvm/txs"
)

var _ Metrics = (*metricsImpl)(nil)

type Metrics interface {
	// MarkTxAccepted counts a committed transaction by type.
	MarkTxAccepted(tx *txs.Tx) error
	// MarkTxRejected counts a transaction that aborted.
	MarkTxRejected(tx *txs.Tx) error

	// MarkFinalized records a flight status reaching oracle quorum and the
	// total credited to insurees as a result.
	MarkFinalized(credited uint64)
	// MarkPaid records a payout withdrawn by a passenger.
	MarkPaid(amount uint64)

	SetAirlines(uint64)
	SetOracles(uint64)
	SetTreasury(uint64)
}

type metricsImpl struct {
	accepted *txMetrics
	rejected *txMetrics

	finalizations metric.Counter
	credited      metric.Counter
	paid          metric.Counter

	airlines metric.Gauge
	oracles  metric.Gauge
	treasury metric.Gauge
}

func New(registerer metric.Registerer) (Metrics, error) {
	accepted, err := newTxMetrics(registerer, "txs_accepted", "number of transactions accepted")
	errs := wrappers.Errs{Err: err}
	rejected, err := newTxMetrics(registerer, "txs_rejected", "number of transactions rejected")
	errs.Add(err)

	m := &metricsImpl{
		accepted: accepted,
		rejected: rejected,
		finalizations: metric.NewCounter(metric.CounterOpts{
			Name: "flight_status_finalized",
			Help: "Number of oracle requests that reached quorum",
		}),
		credited: metric.NewCounter(metric.CounterOpts{
			Name: "insuree_credited",
			Help: "Cumulative amount (in microLUX) credited to insurees",
		}),
		paid: metric.NewCounter(metric.CounterOpts{
			Name: "insuree_paid",
			Help: "Cumulative amount (in microLUX) withdrawn by insurees",
		}),
		airlines: metric.NewGauge(metric.GaugeOpts{
			Name: "registered_airlines",
			Help: "Number of registered airlines",
		}),
		oracles: metric.NewGauge(metric.GaugeOpts{
			Name: "registered_oracles",
			Help: "Number of registered oracles",
		}),
		treasury: metric.NewGauge(metric.GaugeOpts{
			Name: "treasury_balance",
			Help: "Value (in microLUX) held by the ledger",
		}),
	}

	errs.Add(
		registerer.Register(metric.AsCollector(m.finalizations)),
		registerer.Register(metric.AsCollector(m.credited)),
		registerer.Register(metric.AsCollector(m.paid)),
		registerer.Register(metric.AsCollector(m.airlines)),
		registerer.Register(metric.AsCollector(m.oracles)),
		registerer.Register(metric.AsCollector(m.treasury)),
	)
	return m, errs.Err
}

func (m *metricsImpl) MarkTxAccepted(tx *txs.Tx) error {
	return tx.Unsigned.Visit(m.accepted)
}

func (m *metricsImpl) MarkTxRejected(tx *txs.Tx) error {
	return tx.Unsigned.Visit(m.rejected)
}

func (m *metricsImpl) MarkFinalized(credited uint64) {
	m.finalizations.Inc()
	m.credited.Add(float64(credited))
}

func (m *metricsImpl) MarkPaid(amount uint64) {
	m.paid.Add(float64(amount))
}

func (m *metricsImpl) SetAirlines(n uint64) {
	m.airlines.Set(float64(n))
}

func (m *metricsImpl) SetOracles(n uint64) {
	m.oracles.Set(float64(n))
}

func (m *metricsImpl) SetTreasury(balance uint64) {
	m.treasury.Set(float64(balance))
}
