// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package oracle

import (
	"encoding/binary"

	"github.com/luxfi/ids"
	"github.com/spaolacci/murmur3"
)

// Seed derives the pseudo-random value every index draw is taken from. It
// mixes the caller with a ledger-wide nonce so repeated draws by one caller
// differ. The output is predictable to anyone who knows the nonce; it
// spreads load across oracles and is not a defence against a caller that
// wants a particular index.
func Seed(caller ids.ShortID, nonce uint64) uint64 {
	b := make([]byte, 0, len(caller)+8)
	b = append(b, caller[:]...)
	b = binary.BigEndian.AppendUint64(b, nonce)
	return murmur3.Sum64(b)
}
