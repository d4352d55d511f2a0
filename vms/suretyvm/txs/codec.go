// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion = 0

var Codec codec.Manager

func init() {
	Codec = codec.NewManager(math.MaxInt32)
	lc := linearcodec.NewDefault()

	// Type IDs follow registration order; append new types at the end.
	err := errors.Join(
		lc.RegisterType(&SetOperatingStatusTx{}),
		lc.RegisterType(&AuthorizeCallerTx{}),
		lc.RegisterType(&DeauthorizeCallerTx{}),
		lc.RegisterType(&RegisterAirlineTx{}),
		lc.RegisterType(&FundAirlineTx{}),
		lc.RegisterType(&RegisterFlightTx{}),
		lc.RegisterType(&BuyInsuranceTx{}),
		lc.RegisterType(&RegisterOracleTx{}),
		lc.RegisterType(&FetchFlightStatusTx{}),
		lc.RegisterType(&SubmitOracleResponseTx{}),
		lc.RegisterType(&WithdrawTx{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}
