// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/surety/vms/suretyvm/flight"
)

var (
	_ UnsignedTx = (*RegisterOracleTx)(nil)
	_ UnsignedTx = (*FetchFlightStatusTx)(nil)
	_ UnsignedTx = (*SubmitOracleResponseTx)(nil)
)

// RegisterOracleTx registers the sender as an oracle, paying Value as the
// registration fee.
type RegisterOracleTx struct {
	BaseTx `serialize:"true"`
	Value  uint64 `serialize:"true" json:"value"`
}

func (tx *RegisterOracleTx) Visit(visitor Visitor) error {
	return visitor.RegisterOracleTx(tx)
}

// FetchFlightStatusTx asks the oracles for the status of FlightKey.
type FetchFlightStatusTx struct {
	BaseTx    `serialize:"true"`
	FlightKey ids.ID `serialize:"true" json:"flightKey"`
}

func (tx *FetchFlightStatusTx) Visit(visitor Visitor) error {
	return visitor.FetchFlightStatusTx(tx)
}

// SubmitOracleResponseTx reports Status for the request addressed to Index.
type SubmitOracleResponseTx struct {
	BaseTx    `serialize:"true"`
	Index     uint8         `serialize:"true" json:"index"`
	FlightKey ids.ID        `serialize:"true" json:"flightKey"`
	Status    flight.Status `serialize:"true" json:"status"`
}

func (tx *SubmitOracleResponseTx) Verify() error {
	if err := tx.BaseTx.Verify(); err != nil {
		return err
	}
	return tx.Status.Verify()
}

func (tx *SubmitOracleResponseTx) Visit(visitor Visitor) error {
	return visitor.SubmitOracleResponseTx(tx)
}
