// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"

	safemath "github.com/luxfi/math"
)

var (
	ErrInsufficientReserve = errors.New("insufficient reserve")

	treasuryKey = []byte("balance")
)

// Treasury tracks the value held by the ledger: airline stakes, premiums and
// oracle fees flow in, insuree payouts flow out.
type Treasury struct {
	db ReadWriter
}

func NewTreasury(db ReadWriter) *Treasury {
	return &Treasury{db: db}
}

func (t *Treasury) Balance() (uint64, error) {
	return GetCount(t.db, treasuryKey)
}

func (t *Treasury) Deposit(amount uint64) error {
	balance, err := t.Balance()
	if err != nil {
		return err
	}
	balance, err = safemath.Add(balance, amount)
	if err != nil {
		return fmt.Errorf("treasury deposit of %d: %w", amount, err)
	}
	return database.PutUInt64(t.db, treasuryKey, balance)
}

func (t *Treasury) Withdraw(amount uint64) error {
	balance, err := t.Balance()
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientReserve, balance, amount)
	}
	return database.PutUInt64(t.db, treasuryKey, balance-amount)
}
