// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txs defines the operations a caller may submit to the surety
// ledger. Every transaction carries the identity that submitted it; the
// ledger trusts that identity as already authenticated.
package txs

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
)

var (
	ErrNilTx         = errors.New("tx is nil")
	ErrNoSender      = errors.New("tx has no sender")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrWrongVersion  = errors.New("wrong codec version")
)

// UnsignedTx is an operation on the ledger.
type UnsignedTx interface {
	// Sender returns the identity the operation acts for.
	Sender() ids.ShortID

	// Verify checks the operation without reading state.
	Verify() error

	// Visit calls [visitor] with this transaction's concrete type
	Visit(visitor Visitor) error
}

// Tx wraps an UnsignedTx with its canonical encoding.
type Tx struct {
	Unsigned UnsignedTx `serialize:"true" json:"unsignedTx"`

	id    ids.ID
	bytes []byte
}

// New builds and initializes a Tx around unsigned.
func New(unsigned UnsignedTx) (*Tx, error) {
	tx := &Tx{Unsigned: unsigned}
	return tx, tx.Initialize()
}

// Parse decodes a Tx from its canonical encoding.
func Parse(b []byte) (*Tx, error) {
	tx := &Tx{}
	version, err := Codec.Unmarshal(b, tx)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse tx: %w", err)
	}
	if version != CodecVersion {
		return nil, fmt.Errorf("%w: %d", ErrWrongVersion, version)
	}
	tx.setBytes(b)
	return tx, nil
}

// Initialize computes the encoding and ID of tx.
func (tx *Tx) Initialize() error {
	b, err := Codec.Marshal(CodecVersion, tx)
	if err != nil {
		return fmt.Errorf("couldn't marshal tx: %w", err)
	}
	tx.setBytes(b)
	return nil
}

func (tx *Tx) setBytes(b []byte) {
	tx.bytes = b
	tx.id = hash.ComputeHash256Array(b)
}

func (tx *Tx) ID() ids.ID {
	return tx.id
}

func (tx *Tx) Bytes() []byte {
	return tx.bytes
}

// Verify checks tx without reading state.
func (tx *Tx) Verify() error {
	if tx == nil || tx.Unsigned == nil {
		return ErrNilTx
	}
	return tx.Unsigned.Verify()
}
