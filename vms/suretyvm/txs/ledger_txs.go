// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/surety/vms/suretyvm/flight"
)

var (
	_ UnsignedTx = (*RegisterAirlineTx)(nil)
	_ UnsignedTx = (*FundAirlineTx)(nil)
	_ UnsignedTx = (*RegisterFlightTx)(nil)
	_ UnsignedTx = (*BuyInsuranceTx)(nil)
	_ UnsignedTx = (*WithdrawTx)(nil)

	ErrNoCandidate = errors.New("no candidate airline")
)

// RegisterAirlineTx admits Candidate, or records the sender's approval of
// it once the registry has reached the consensus threshold.
type RegisterAirlineTx struct {
	BaseTx    `serialize:"true"`
	Candidate ids.ShortID `serialize:"true" json:"candidate"`
}

func (tx *RegisterAirlineTx) Verify() error {
	if err := tx.BaseTx.Verify(); err != nil {
		return err
	}
	if tx.Candidate == ids.ShortEmpty {
		return ErrNoCandidate
	}
	return nil
}

func (tx *RegisterAirlineTx) Visit(visitor Visitor) error {
	return visitor.RegisterAirlineTx(tx)
}

// FundAirlineTx contributes Value to the sender's stake.
type FundAirlineTx struct {
	BaseTx `serialize:"true"`
	Value  uint64 `serialize:"true" json:"value"`
}

func (tx *FundAirlineTx) Verify() error {
	if err := tx.BaseTx.Verify(); err != nil {
		return err
	}
	if tx.Value == 0 {
		return fmt.Errorf("%w: zero funding", ErrInvalidAmount)
	}
	return nil
}

func (tx *FundAirlineTx) Visit(visitor Visitor) error {
	return visitor.FundAirlineTx(tx)
}

// RegisterFlightTx opens a flight operated by the sender.
type RegisterFlightTx struct {
	BaseTx    `serialize:"true"`
	Number    string `serialize:"true" json:"number"`
	Departure uint64 `serialize:"true" json:"departure"`
}

func (tx *RegisterFlightTx) Verify() error {
	if err := tx.BaseTx.Verify(); err != nil {
		return err
	}
	return flight.VerifyNumber(tx.Number)
}

func (tx *RegisterFlightTx) Visit(visitor Visitor) error {
	return visitor.RegisterFlightTx(tx)
}

// BuyInsuranceTx insures the sender on FlightKey with a premium of Value.
type BuyInsuranceTx struct {
	BaseTx    `serialize:"true"`
	FlightKey ids.ID `serialize:"true" json:"flightKey"`
	Value     uint64 `serialize:"true" json:"value"`
}

func (tx *BuyInsuranceTx) Verify() error {
	if err := tx.BaseTx.Verify(); err != nil {
		return err
	}
	if tx.Value == 0 {
		return fmt.Errorf("%w: zero premium", ErrInvalidAmount)
	}
	return nil
}

func (tx *BuyInsuranceTx) Visit(visitor Visitor) error {
	return visitor.BuyInsuranceTx(tx)
}

// WithdrawTx pays out the sender's payable balance.
type WithdrawTx struct {
	BaseTx `serialize:"true"`
}

func (tx *WithdrawTx) Visit(visitor Visitor) error {
	return visitor.WithdrawTx(tx)
}
