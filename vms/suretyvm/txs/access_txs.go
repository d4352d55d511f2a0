// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/surety/vms/suretyvm/access"
)

var (
	_ UnsignedTx = (*SetOperatingStatusTx)(nil)
	_ UnsignedTx = (*AuthorizeCallerTx)(nil)
	_ UnsignedTx = (*DeauthorizeCallerTx)(nil)

	ErrInvalidComponent = errors.New("invalid component")
	ErrNoCaller         = errors.New("no caller to authorize")
)

// SetOperatingStatusTx toggles the ledger's kill-switch. Owner only.
type SetOperatingStatusTx struct {
	BaseTx      `serialize:"true"`
	Operational bool `serialize:"true" json:"operational"`
}

func (tx *SetOperatingStatusTx) Visit(visitor Visitor) error {
	return visitor.SetOperatingStatusTx(tx)
}

// AuthorizeCallerTx grants Caller the capability to drive Component. Owner
// only.
type AuthorizeCallerTx struct {
	BaseTx    `serialize:"true"`
	Component access.Component `serialize:"true" json:"component"`
	Caller    ids.ShortID      `serialize:"true" json:"caller"`
}

func (tx *AuthorizeCallerTx) Verify() error {
	if err := tx.BaseTx.Verify(); err != nil {
		return err
	}
	return verifyCapability(tx.Component, tx.Caller)
}

func (tx *AuthorizeCallerTx) Visit(visitor Visitor) error {
	return visitor.AuthorizeCallerTx(tx)
}

// DeauthorizeCallerTx revokes a capability granted by AuthorizeCallerTx.
type DeauthorizeCallerTx struct {
	BaseTx    `serialize:"true"`
	Component access.Component `serialize:"true" json:"component"`
	Caller    ids.ShortID      `serialize:"true" json:"caller"`
}

func (tx *DeauthorizeCallerTx) Verify() error {
	if err := tx.BaseTx.Verify(); err != nil {
		return err
	}
	return verifyCapability(tx.Component, tx.Caller)
}

func (tx *DeauthorizeCallerTx) Visit(visitor Visitor) error {
	return visitor.DeauthorizeCallerTx(tx)
}

func verifyCapability(component access.Component, caller ids.ShortID) error {
	if !component.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidComponent, component)
	}
	if caller == ids.ShortEmpty {
		return ErrNoCaller
	}
	return nil
}
