// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/surety/vms/suretyvm"
	"github.com/luxfi/surety/vms/suretyvm/config"
	"github.com/luxfi/surety/vms/suretyvm/events"
	"github.com/luxfi/surety/vms/suretyvm/execute"
	"github.com/luxfi/surety/vms/suretyvm/flight"
	"github.com/luxfi/surety/vms/suretyvm/genesis"
	"github.com/luxfi/surety/vms/suretyvm/txs"
)

const subscriptionBuffer = 256

var errAnswerTimeout = errors.New("oracles did not answer in time")

// Report summarizes a simulation run.
type Report struct {
	FlightKey ids.ID
	Status    flight.Status
	Requests  int
	Paid      uint64
	Treasury  uint64
}

type answer struct {
	flightKey ids.ID
	index     uint8
	err       error
}

// Simulator drives an in-memory ledger through airline admission, flight
// registration and insurance, then plays every registered oracle: each
// status request is answered by all oracles holding the requested index.
type Simulator struct {
	config *Config
	log    *zap.Logger

	vm   *suretyvm.VM
	feed *events.Feed

	nonce atomic.Uint64

	rngLock sync.Mutex
	rng     *rand.Rand

	// holders is filled before the feed subscription starts and is
	// read-only afterwards.
	holders map[uint8][]ids.ShortID
	answers chan answer
	done    chan struct{}
}

func NewSimulator(config *Config, logger *zap.Logger) *Simulator {
	return &Simulator{
		config:  config,
		log:     logger,
		rng:     rand.New(rand.NewPCG(config.Seed, config.Seed>>1)),
		holders: make(map[uint8][]ids.ShortID),
		answers: make(chan answer, 1),
		done:    make(chan struct{}),
	}
}

func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	vmLog := log.NewNoOpLogger()
	if s.config.Verbose {
		vmLog = log.NewLogger("suretyvm")
	}

	s.feed = events.NewFeed()
	defer s.feed.Close()

	s.vm = suretyvm.New(config.DefaultConfig(), vmLog)
	if err := s.vm.Initialize(ctx, memdb.New(), nil, nil, s.feed, metric.NewRegistry()); err != nil {
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	defer func() {
		if err := s.vm.Shutdown(context.Background()); err != nil {
			s.log.Warn("failed to shut down ledger", zap.Error(err))
		}
	}()

	if err := s.registerOracles(ctx); err != nil {
		return nil, err
	}

	sub, unsubscribe := s.feed.Subscribe(subscriptionBuffer)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.listen(gctx, sub)
	})

	var report *Report
	g.Go(func() error {
		defer unsubscribe()
		defer close(s.done)

		var err error
		report, err = s.scenario(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Simulator) registerOracles(ctx context.Context) error {
	for i := range s.config.Oracles {
		oracleID := genesis.Identity(fmt.Sprintf("oracle-%d", i+1))
		result, err := s.issue(ctx, &txs.RegisterOracleTx{
			BaseTx: s.base(oracleID),
			Value:  uint64(s.vm.OracleFee),
		})
		if err != nil {
			return fmt.Errorf("failed to register oracle %s: %w", oracleID, err)
		}
		for _, index := range result.Indices {
			s.holders[index] = append(s.holders[index], oracleID)
		}
		s.log.Debug("oracle registered",
			zap.Stringer("oracle", oracleID),
			zap.Uint8s("indices", result.Indices),
		)
	}
	s.log.Info("oracles registered", zap.Int("count", s.config.Oracles))
	return nil
}

// listen drains sub until it is closed. Oracle work is handed to goroutines
// so that publishers are never blocked on the listener.
func (s *Simulator) listen(ctx context.Context, sub <-chan events.Event) error {
	responders, rctx := errgroup.WithContext(ctx)
	for evt := range sub {
		switch evt := evt.(type) {
		case *events.OracleRequestCreated:
			s.log.Info("status requested",
				zap.String("flight", evt.FlightNumber),
				zap.Uint8("index", evt.Index),
				zap.Int("holders", len(s.holders[evt.Index])),
			)
			responders.Go(func() error {
				return s.respond(rctx, evt)
			})
		case *events.OracleReport:
			s.log.Debug("status reported",
				zap.Uint8("index", evt.Index),
				zap.Stringer("status", evt.Status),
				zap.Uint64("tally", evt.Tally),
			)
		case *events.OracleReportFinalized:
			s.log.Info("status finalized",
				zap.Stringer("flightKey", evt.FlightKey),
				zap.Uint8("index", evt.Index),
				zap.Stringer("status", evt.Status),
			)
		case *events.InsureeCredited:
			s.log.Info("passenger credited",
				zap.Stringer("passenger", evt.Passenger),
				zap.Uint64("amount", evt.Amount),
			)
		default:
			s.log.Debug("event", zap.String("name", evt.Name()))
		}
	}
	return responders.Wait()
}

// respond submits one response per oracle holding the requested index.
func (s *Simulator) respond(ctx context.Context, req *events.OracleRequestCreated) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, oracleID := range s.holders[req.Index] {
		status := s.nextStatus()
		g.Go(func() error {
			result, err := s.issue(gctx, &txs.SubmitOracleResponseTx{
				BaseTx:    s.base(oracleID),
				Index:     req.Index,
				FlightKey: req.FlightKey,
				Status:    status,
			})
			if err != nil {
				return fmt.Errorf("oracle %s failed to respond: %w", oracleID, err)
			}
			s.log.Debug("oracle responded",
				zap.Stringer("oracle", oracleID),
				zap.Stringer("status", status),
				zap.Stringer("outcome", result.Outcome),
			)
			return nil
		})
	}
	err := g.Wait()

	select {
	case s.answers <- answer{flightKey: req.FlightKey, index: req.Index, err: err}:
	case <-s.done:
	}
	return err
}

func (s *Simulator) scenario(ctx context.Context) (*Report, error) {
	first := s.vm.Genesis().FirstAirline
	if err := s.fund(ctx, first); err != nil {
		return nil, err
	}

	// Below the threshold a single funded sponsor admits new airlines.
	members := []ids.ShortID{first}
	for len(members) < int(s.vm.ConsensusThreshold) {
		candidate := genesis.Identity(fmt.Sprintf("airline-%d", len(members)+1))
		if _, err := s.registerAirline(ctx, candidate, first); err != nil {
			return nil, err
		}
		if err := s.fund(ctx, candidate); err != nil {
			return nil, err
		}
		members = append(members, candidate)
	}

	// From the threshold on, admission needs votes from half of the funded
	// airlines.
	candidate := genesis.Identity(fmt.Sprintf("airline-%d", len(members)+1))
	for _, voter := range members {
		result, err := s.registerAirline(ctx, candidate, voter)
		if err != nil {
			return nil, err
		}
		if result.Outcome == execute.Registered {
			break
		}
	}

	departure := uint64(time.Now().Add(s.config.Departure).Unix())
	result, err := s.issue(ctx, &txs.RegisterFlightTx{
		BaseTx:    s.base(first),
		Number:    s.config.Flight,
		Departure: departure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register flight: %w", err)
	}
	flightKey := result.FlightKey
	s.log.Info("flight registered",
		zap.String("flight", s.config.Flight),
		zap.Uint64("departure", departure),
		zap.Stringer("flightKey", flightKey),
	)

	passenger := genesis.Identity("passenger-1")
	premium := uint64(s.vm.MaxPremium)
	if _, err := s.issue(ctx, &txs.BuyInsuranceTx{
		BaseTx:    s.base(passenger),
		FlightKey: flightKey,
		Value:     premium,
	}); err != nil {
		return nil, fmt.Errorf("failed to buy insurance: %w", err)
	}
	s.log.Info("insurance purchased",
		zap.Stringer("passenger", passenger),
		zap.Uint64("premium", premium),
	)

	report := &Report{FlightKey: flightKey}
	for report.Requests < s.config.Requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		status, err := s.requestStatus(ctx, flightKey, passenger)
		if err != nil {
			return nil, err
		}
		report.Requests++
		if status != flight.Unknown {
			report.Status = status
			break
		}
	}
	if report.Status == flight.Unknown {
		s.log.Warn("no status reached quorum", zap.Int("requests", report.Requests))
	}

	result, err = s.issue(ctx, &txs.WithdrawTx{BaseTx: s.base(passenger)})
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw: %w", err)
	}
	report.Paid = result.Amount

	report.Treasury, err = s.vm.Treasury()
	if err != nil {
		return nil, err
	}
	return report, nil
}

// requestStatus asks for the status of a flight, waits for the oracles to
// answer and returns the settled status, or Unknown if no status reached
// quorum.
func (s *Simulator) requestStatus(ctx context.Context, flightKey ids.ID, requester ids.ShortID) (flight.Status, error) {
	if _, err := s.issue(ctx, &txs.FetchFlightStatusTx{
		BaseTx:    s.base(requester),
		FlightKey: flightKey,
	}); err != nil {
		return flight.Unknown, fmt.Errorf("failed to request flight status: %w", err)
	}

	// A request is announced only while it is open, and every request is
	// open until the flight settles.
	status, err := s.flightStatus(flightKey)
	if err != nil || status != flight.Unknown {
		return status, err
	}

	timer := time.NewTimer(s.config.Timeout)
	defer timer.Stop()

	select {
	case a := <-s.answers:
		if a.err != nil {
			return flight.Unknown, a.err
		}
	case <-timer.C:
		return flight.Unknown, errAnswerTimeout
	case <-ctx.Done():
		return flight.Unknown, ctx.Err()
	}
	return s.flightStatus(flightKey)
}

func (s *Simulator) flightStatus(flightKey ids.ID) (flight.Status, error) {
	f, err := s.vm.GetFlight(flightKey)
	if err != nil {
		return flight.Unknown, err
	}
	return f.Status, nil
}

func (s *Simulator) registerAirline(ctx context.Context, candidate, sponsor ids.ShortID) (*execute.Result, error) {
	result, err := s.issue(ctx, &txs.RegisterAirlineTx{
		BaseTx:    s.base(sponsor),
		Candidate: candidate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register airline %s: %w", candidate, err)
	}
	s.log.Info("airline registration",
		zap.Stringer("candidate", candidate),
		zap.Stringer("sponsor", sponsor),
		zap.Stringer("outcome", result.Outcome),
	)
	return result, nil
}

func (s *Simulator) fund(ctx context.Context, airline ids.ShortID) error {
	if _, err := s.issue(ctx, &txs.FundAirlineTx{
		BaseTx: s.base(airline),
		Value:  uint64(s.vm.MinFunding),
	}); err != nil {
		return fmt.Errorf("failed to fund airline %s: %w", airline, err)
	}
	return nil
}

// nextStatus returns the configured status, or a pseudo-random known code.
func (s *Simulator) nextStatus() flight.Status {
	if s.config.Status != flight.Unknown {
		return s.config.Status
	}

	s.rngLock.Lock()
	defer s.rngLock.Unlock()

	known := flight.Statuses[1:]
	return known[s.rng.IntN(len(known))]
}

func (s *Simulator) base(from ids.ShortID) txs.BaseTx {
	return txs.BaseTx{From: from, Nonce: s.nonce.Add(1)}
}

func (s *Simulator) issue(ctx context.Context, unsigned txs.UnsignedTx) (*execute.Result, error) {
	tx, err := txs.New(unsigned)
	if err != nil {
		return nil, err
	}
	return s.vm.IssueTx(ctx, tx)
}
