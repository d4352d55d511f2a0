// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import "github.com/luxfi/ids"

// BaseTx contains the fields common to every transaction. Nonce only makes
// otherwise identical transactions hash to different IDs.
type BaseTx struct {
	From  ids.ShortID `serialize:"true" json:"from"`
	Nonce uint64      `serialize:"true" json:"nonce"`
}

func (tx *BaseTx) Sender() ids.ShortID {
	return tx.From
}

func (tx *BaseTx) Verify() error {
	if tx.From == ids.ShortEmpty {
		return ErrNoSender
	}
	return nil
}
