// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package suretyvm implements the flight surety ledger: airline admission
// and funding, flight registration, passenger insurance and oracle-reported
// flight status with automatic crediting of delayed passengers.
//
// Every operation is atomic. It runs against a versioned view of the
// database that is committed only if the whole operation succeeds, and the
// events it emits are published only after that commit.
package suretyvm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/vms/suretyvm/config"
	"github.com/luxfi/surety/vms/suretyvm/events"
	"github.com/luxfi/surety/vms/suretyvm/execute"
	"github.com/luxfi/surety/vms/suretyvm/flight"
	"github.com/luxfi/surety/vms/suretyvm/genesis"
	"github.com/luxfi/surety/vms/suretyvm/insurance"
	"github.com/luxfi/surety/vms/suretyvm/metrics"
	"github.com/luxfi/surety/vms/suretyvm/oracle"
	"github.com/luxfi/surety/vms/suretyvm/txs"
)

const Version = "v1.0.0"

var (
	errNotInitialized     = errors.New("VM is not initialized")
	errAlreadyInitialized = errors.New("VM is already initialized")
	errShutdown           = errors.New("VM is shutting down")
	errInvalidHeight      = errors.New("block height must increase")

	vmPrefix     = []byte("vm")
	genesisKey   = []byte("genesis")
	heightKey    = []byte("height")
	blockTimeKey = []byte("blockTime")
)

// TxResult is the outcome of one transaction in a block. Err is set when the
// transaction was rejected; its writes were discarded.
type TxResult struct {
	TxID   ids.ID
	Result *execute.Result
	Err    error
}

// BlockResult is the deterministic result of processing a block.
type BlockResult struct {
	Height    uint64
	Timestamp time.Time
	Txs       []TxResult
	Accepted  int
	Rejected  int
}

// VM owns the ledger state. It runs no goroutines; callers drive it either
// one transaction at a time with IssueTx or a block at a time with
// ProcessBlock.
type VM struct {
	config.Config

	log log.Logger

	// lock serializes state access. Events leave through outbox in commit
	// order without holding lock.
	lock   sync.RWMutex
	outbox *outbox

	baseDB database.Database
	db     *versiondb.Database
	vmDB   database.Database

	clock mockable.Clock

	metrics   metrics.Metrics
	publisher events.Publisher
	backend   *execute.Backend
	genesis   *genesis.Genesis

	height        uint64
	lastBlockTime time.Time

	initialized bool
	shutdown    bool
}

// New returns an uninitialized VM.
func New(cfg config.Config, logger log.Logger) *VM {
	return &VM{
		Config: cfg,
		log:    logger,
		outbox: newOutbox(),
	}
}

// Initialize opens the ledger stored in db. A fresh database is seeded from
// genesisBytes; an empty genesis selects genesis.Default. configBytes, when
// present, replaces the VM's configuration.
func (vm *VM) Initialize(
	ctx context.Context,
	db database.Database,
	genesisBytes []byte,
	configBytes []byte,
	publisher events.Publisher,
	registerer metric.Registerer,
) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.initialized {
		return errAlreadyInitialized
	}
	if vm.log == nil {
		vm.log = log.NewNoOpLogger()
	}

	if len(configBytes) > 0 {
		cfg, err := config.ParseConfig(configBytes)
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		vm.Config = cfg
	}
	if err := vm.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	g := genesis.Default()
	if len(genesisBytes) > 0 {
		var err error
		g, err = genesis.Parse(genesisBytes)
		if err != nil {
			return fmt.Errorf("failed to parse genesis: %w", err)
		}
	}
	vm.genesis = g

	if registerer == nil {
		registerer = metric.NewRegistry()
	}
	m, err := metrics.New(registerer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	vm.metrics = m

	vm.publisher = publisher
	if vm.publisher == nil {
		vm.publisher = events.NoOpPublisher{}
	}

	vm.baseDB = db
	vm.db = versiondb.New(db)
	vm.vmDB = prefixdb.New(vmPrefix, vm.db)
	vm.backend = execute.NewBackend(vm.db, vm.Config, &vm.clock, g.AppID, vm.log)

	if err := vm.initGenesis(); err != nil {
		vm.db.Abort()
		return err
	}
	if err := vm.db.Commit(); err != nil {
		return fmt.Errorf("failed to commit genesis: %w", err)
	}
	vm.observe()

	vm.initialized = true
	vm.log.Info("surety VM initialized",
		log.Stringer("owner", g.Owner),
		log.Stringer("firstAirline", g.FirstAirline),
		log.Uint64("height", vm.height),
		log.Uint32("consensusThreshold", vm.ConsensusThreshold),
		log.Uint32("oracleQuorum", vm.OracleQuorum),
	)
	return nil
}

// initGenesis applies the genesis to a fresh database, or restores the block
// position of an existing one.
func (vm *VM) initGenesis() error {
	applied, err := vm.vmDB.Has(genesisKey)
	if err != nil {
		return err
	}
	if !applied {
		if err := vm.genesis.Apply(vm.backend); err != nil {
			return fmt.Errorf("failed to apply genesis: %w", err)
		}
		b, err := vm.genesis.Bytes()
		if err != nil {
			return err
		}
		return vm.vmDB.Put(genesisKey, b)
	}

	vm.height, err = database.GetUInt64(vm.vmDB, heightKey)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	blockTime, err := database.GetUInt64(vm.vmDB, blockTimeKey)
	switch {
	case err == nil:
		vm.lastBlockTime = time.Unix(int64(blockTime), 0)
	case !errors.Is(err, database.ErrNotFound):
		return err
	}
	return nil
}

// IssueTx executes tx atomically. On success the events it emitted are
// published in commit order; IssueTx returns once they are delivered or ctx
// is done. Undelivered events stay queued and go out with the next
// transaction's events. Waiting on delivery never holds the state lock.
func (vm *VM) IssueTx(ctx context.Context, tx *txs.Tx) (*execute.Result, error) {
	vm.lock.Lock()
	if err := vm.checkRunning(); err != nil {
		vm.lock.Unlock()
		return nil, err
	}

	executor, err := vm.executeTx(tx)
	if err != nil {
		vm.lock.Unlock()
		return nil, err
	}

	target := vm.outbox.add(executor.Events)
	vm.lock.Unlock()

	vm.outbox.flush(ctx, vm.publisher, target)
	return &executor.Result, nil
}

// ProcessBlock executes the transactions of a block in order with the clock
// pinned to blockTime. A rejected transaction is recorded in the result and
// does not fail the block.
func (vm *VM) ProcessBlock(ctx context.Context, height uint64, blockTime time.Time, blockTxs [][]byte) (*BlockResult, error) {
	vm.lock.Lock()
	if err := vm.checkRunning(); err != nil {
		vm.lock.Unlock()
		return nil, err
	}
	if height <= vm.height {
		vm.lock.Unlock()
		return nil, fmt.Errorf("%w: got %d, at %d", errInvalidHeight, height, vm.height)
	}

	vm.clock.Set(blockTime)
	result := &BlockResult{
		Height:    height,
		Timestamp: blockTime,
		Txs:       make([]TxResult, 0, len(blockTxs)),
	}
	var emitted []events.Event
	for _, b := range blockTxs {
		txResult := vm.processTx(b)
		if txResult.Err != nil {
			result.Rejected++
			vm.log.Warn("transaction failed",
				log.Stringer("txID", txResult.TxID),
				log.Err(txResult.Err),
			)
		} else {
			result.Accepted++
			emitted = append(emitted, txResult.events...)
		}
		result.Txs = append(result.Txs, txResult.TxResult)
	}

	if err := vm.putBlock(height, blockTime); err != nil {
		vm.lock.Unlock()
		return nil, err
	}
	vm.height = height
	vm.lastBlockTime = blockTime

	vm.log.Debug("block processed",
		log.Uint64("height", height),
		log.Int("accepted", result.Accepted),
		log.Int("rejected", result.Rejected),
	)

	target := vm.outbox.add(emitted)
	vm.lock.Unlock()

	vm.outbox.flush(ctx, vm.publisher, target)
	return result, nil
}

type processedTx struct {
	TxResult
	events []events.Event
}

func (vm *VM) processTx(b []byte) processedTx {
	tx, err := txs.Parse(b)
	if err != nil {
		return processedTx{TxResult: TxResult{Err: err}}
	}
	executor, err := vm.executeTx(tx)
	if err != nil {
		return processedTx{TxResult: TxResult{TxID: tx.ID(), Err: err}}
	}
	return processedTx{
		TxResult: TxResult{
			TxID:   tx.ID(),
			Result: &executor.Result,
		},
		events: executor.Events,
	}
}

// executeTx runs tx against the versioned view and commits it. Any error
// discards every write tx made. Expects vm.lock to be held.
func (vm *VM) executeTx(tx *txs.Tx) (*execute.Tx, error) {
	if err := tx.Verify(); err != nil {
		return nil, err
	}

	executor := &execute.Tx{
		Backend: vm.backend,
		TxID:    tx.ID(),
	}
	if err := tx.Unsigned.Visit(executor); err != nil {
		vm.db.Abort()
		vm.markRejected(tx, err)
		return nil, err
	}
	if err := vm.db.Commit(); err != nil {
		vm.db.Abort()
		return nil, fmt.Errorf("failed to commit tx %s: %w", tx.ID(), err)
	}

	if err := vm.metrics.MarkTxAccepted(tx); err != nil {
		vm.log.Warn("failed to update tx metrics", log.Err(err))
	}
	switch executor.Result.Outcome {
	case execute.Finalized:
		vm.metrics.MarkFinalized(executor.Result.Amount)
	case execute.Paid:
		vm.metrics.MarkPaid(executor.Result.Amount)
	}
	vm.observe()
	return executor, nil
}

func (vm *VM) markRejected(tx *txs.Tx, err error) {
	vm.log.Debug("transaction rejected",
		log.Stringer("txID", tx.ID()),
		log.Bool("transient", execute.IsTransient(err)),
		log.Err(err),
	)
	if err := vm.metrics.MarkTxRejected(tx); err != nil {
		vm.log.Warn("failed to update tx metrics", log.Err(err))
	}
}

// observe refreshes the gauges from committed state.
func (vm *VM) observe() {
	if airlines, err := vm.backend.Airlines.Count(); err == nil {
		vm.metrics.SetAirlines(airlines)
	}
	if oracles, err := vm.backend.Oracles.Count(); err == nil {
		vm.metrics.SetOracles(oracles)
	}
	if balance, err := vm.backend.Treasury.Balance(); err == nil {
		vm.metrics.SetTreasury(balance)
	}
}

func (vm *VM) putBlock(height uint64, blockTime time.Time) error {
	err := errors.Join(
		database.PutUInt64(vm.vmDB, heightKey, height),
		database.PutUInt64(vm.vmDB, blockTimeKey, uint64(max(blockTime.Unix(), 0))),
	)
	if err != nil {
		vm.db.Abort()
		return err
	}
	return vm.db.Commit()
}

// Expects vm.lock to be held.
func (vm *VM) checkRunning() error {
	switch {
	case vm.shutdown:
		return errShutdown
	case !vm.initialized:
		return errNotInitialized
	default:
		return nil
	}
}

// IsOperational reports whether state-changing operations are accepted.
func (vm *VM) IsOperational() (bool, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return false, err
	}
	return vm.backend.Access.IsOperational()
}

func (vm *VM) IsAirline(airline ids.ShortID) (bool, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return false, err
	}
	return vm.backend.Airlines.IsRegistered(airline)
}

func (vm *VM) IsAirlineFunded(airline ids.ShortID) (bool, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return false, err
	}
	return vm.backend.Funding.IsFunded(airline)
}

// AirlineVotes returns the number of approvals recorded for candidate.
func (vm *VM) AirlineVotes(candidate ids.ShortID) (uint32, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return 0, err
	}
	record, err := vm.backend.Airlines.Get(candidate)
	if err != nil {
		return 0, err
	}
	return record.Votes, nil
}

// FlightNumbers returns the number of every registered flight in
// registration order.
func (vm *VM) FlightNumbers() ([]string, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return nil, err
	}
	return vm.backend.Flights.Numbers()
}

// Flights returns every registered flight in registration order.
func (vm *VM) Flights() ([]*flight.Flight, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return nil, err
	}
	return vm.backend.Flights.List()
}

func (vm *VM) GetFlight(flightKey ids.ID) (*flight.Flight, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return nil, err
	}
	return vm.backend.Flights.Get(flightKey)
}

// GetMyIndexes returns the index slots assigned to oracle.
func (vm *VM) GetMyIndexes(oracleID ids.ShortID) ([oracle.IndicesPerOracle]uint8, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return [oracle.IndicesPerOracle]uint8{}, err
	}
	return vm.backend.Oracles.Indices(oracleID)
}

func (vm *VM) Payable(passenger ids.ShortID) (uint64, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return 0, err
	}
	return vm.backend.Insurance.Payable(passenger)
}

func (vm *VM) Policy(flightKey ids.ID, passenger ids.ShortID) (*insurance.Policy, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return nil, err
	}
	return vm.backend.Insurance.Policy(flightKey, passenger)
}

// Treasury returns the value held by the ledger.
func (vm *VM) Treasury() (uint64, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return 0, err
	}
	return vm.backend.Treasury.Balance()
}

// Genesis returns the genesis the ledger was initialized with.
func (vm *VM) Genesis() *genesis.Genesis {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	return vm.genesis
}

func (vm *VM) HealthCheck(context.Context) (interface{}, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkRunning(); err != nil {
		return nil, err
	}
	operational, err := vm.backend.Access.IsOperational()
	if err != nil {
		return nil, err
	}
	airlines, err := vm.backend.Airlines.Count()
	if err != nil {
		return nil, err
	}
	flights, err := vm.backend.Flights.Count()
	if err != nil {
		return nil, err
	}
	oracles, err := vm.backend.Oracles.Count()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"healthy":       true,
		"operational":   operational,
		"airlines":      airlines,
		"flights":       flights,
		"oracles":       oracles,
		"blockHeight":   vm.height,
		"pendingEvents": vm.outbox.len(),
	}, nil
}

func (*VM) Version(context.Context) (string, error) {
	return Version, nil
}

// Shutdown closes the VM's view of the database. The underlying database is
// owned by the caller.
func (vm *VM) Shutdown(context.Context) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.shutdown {
		return nil
	}
	vm.shutdown = true
	if vm.db == nil {
		return nil
	}
	if err := vm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	vm.log.Info("surety VM shutdown complete")
	return nil
}
