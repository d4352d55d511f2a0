// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// Allow the ledger to execute custom logic against the underlying
// transaction types.
type Visitor interface {
	// Access control
	SetOperatingStatusTx(*SetOperatingStatusTx) error
	AuthorizeCallerTx(*AuthorizeCallerTx) error
	DeauthorizeCallerTx(*DeauthorizeCallerTx) error

	// Airlines and flights
	RegisterAirlineTx(*RegisterAirlineTx) error
	FundAirlineTx(*FundAirlineTx) error
	RegisterFlightTx(*RegisterFlightTx) error

	// Insurance
	BuyInsuranceTx(*BuyInsuranceTx) error
	WithdrawTx(*WithdrawTx) error

	// Oracles
	RegisterOracleTx(*RegisterOracleTx) error
	FetchFlightStatusTx(*FetchFlightStatusTx) error
	SubmitOracleResponseTx(*SubmitOracleResponseTx) error
}
