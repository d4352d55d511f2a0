// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package execute

import (
	"fmt"

	"github.com/luxfi/ids"
)

// Outcome classifies the effect of an accepted transaction.
type Outcome uint8

const (
	NoOp Outcome = iota
	Updated
	Registered
	Pending
	Funded
	Insured
	Recorded
	Finalized
	Paid
	Requested
)

func (o Outcome) String() string {
	switch o {
	case NoOp:
		return "noop"
	case Updated:
		return "updated"
	case Registered:
		return "registered"
	case Pending:
		return "pending"
	case Funded:
		return "funded"
	case Insured:
		return "insured"
	case Recorded:
		return "recorded"
	case Finalized:
		return "finalized"
	case Paid:
		return "paid"
	case Requested:
		return "requested"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Result is what an accepted transaction reports back to its sender.
type Result struct {
	Outcome Outcome
	// Indices are the oracle's assigned slots after RegisterOracleTx, or the
	// addressed slot after FetchFlightStatusTx.
	Indices []uint8
	// Amount is the value moved: contributed stake, premium, fee or payout.
	Amount uint64
	// FlightKey is set by transactions that name or create a flight.
	FlightKey ids.ID
}
