// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package execute

import (
	"errors"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/vms/suretyvm/access"
	"github.com/luxfi/surety/vms/suretyvm/airline"
	"github.com/luxfi/surety/vms/suretyvm/config"
	"github.com/luxfi/surety/vms/suretyvm/flight"
	"github.com/luxfi/surety/vms/suretyvm/funding"
	"github.com/luxfi/surety/vms/suretyvm/insurance"
	"github.com/luxfi/surety/vms/suretyvm/oracle"
	"github.com/luxfi/surety/vms/suretyvm/state"
)

var (
	accessPrefix    = []byte("access")
	treasuryPrefix  = []byte("treasury")
	fundingPrefix   = []byte("funding")
	airlinePrefix   = []byte("airline")
	flightPrefix    = []byte("flight")
	insurancePrefix = []byte("insurance")
	oraclePrefix    = []byte("oracle")
)

// Backend is the set of ledger components a transaction executes against.
// AppID is the identity the ledger's own operations act as when a
// component checks its capability table.
type Backend struct {
	Access    *access.Control
	Treasury  *state.Treasury
	Funding   *funding.Ledger
	Airlines  *airline.Registry
	Flights   *flight.Registry
	Insurance *insurance.Pool
	Oracles   *oracle.Consensus
	AppID     ids.ShortID
	Log       log.Logger
}

// NewBackend builds the ledger components over db, giving each its own
// keyspace.
func NewBackend(
	db database.Database,
	cfg config.Config,
	clock *mockable.Clock,
	appID ids.ShortID,
	logger log.Logger,
) *Backend {
	treasury := state.NewTreasury(prefixdb.New(treasuryPrefix, db))

	airlines := airline.New(prefixdb.New(airlinePrefix, db), clock, cfg.ConsensusThreshold)
	ledger := funding.New(prefixdb.New(fundingPrefix, db), airlines, treasury, uint64(cfg.MinFunding))
	airlines.SetEligibility(ledger)

	flights := flight.New(prefixdb.New(flightPrefix, db), ledger, clock)
	pool := insurance.New(prefixdb.New(insurancePrefix, db), flights, treasury, clock, uint64(cfg.MaxPremium))
	oracles := oracle.New(
		oracle.Config{
			Fee:        uint64(cfg.OracleFee),
			Quorum:     uint64(cfg.OracleQuorum),
			IndexRange: cfg.IndexRange,
			CacheSize:  cfg.IndexCacheSize,
		},
		prefixdb.New(oraclePrefix, db),
		flights,
		pool,
		treasury,
		clock,
	)

	return &Backend{
		Access:    access.New(prefixdb.New(accessPrefix, db)),
		Treasury:  treasury,
		Funding:   ledger,
		Airlines:  airlines,
		Flights:   flights,
		Insurance: pool,
		Oracles:   oracles,
		AppID:     appID,
		Log:       logger,
	}
}

// IsTransient reports whether err may clear without the transaction
// changing, so that resubmitting later can succeed.
func IsTransient(err error) bool {
	return errors.Is(err, access.ErrNotOperational)
}
