// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oracle assigns index slots to registered oracles and tallies their
// flight status reports. A request for a flight is addressed to one index;
// only oracles holding that index may answer it, and the first status to
// reach quorum settles the request.
package oracle

import (
	"errors"
	"fmt"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/vms/suretyvm/flight"
	"github.com/luxfi/surety/vms/suretyvm/insurance"
	"github.com/luxfi/surety/vms/suretyvm/state"
)

// IndicesPerOracle is the number of distinct index slots each oracle holds.
const IndicesPerOracle = 3

var (
	ErrInsufficientFee   = errors.New("insufficient registration fee")
	ErrAlreadyRegistered = errors.New("oracle is already registered")
	ErrNotRegistered     = errors.New("oracle is not registered")
	ErrIndexMismatch     = errors.New("index does not match oracle")
	ErrUnknownRequest    = errors.New("unknown oracle request")

	oraclePrefix  = []byte("oracle:")
	requestPrefix = []byte("request:")
	votePrefix    = []byte("vote:")
	tallyPrefix   = []byte("tally:")
	nonceKey      = []byte("nonce")
	countKey      = []byte("count")
)

// Oracle is a registered status reporter.
type Oracle struct {
	Indices      [IndicesPerOracle]uint8 `serialize:"true" json:"indices"`
	Fee          uint64                  `serialize:"true" json:"fee"`
	RegisteredAt uint64                  `serialize:"true" json:"registeredAt"`
}

// HasIndex reports whether the oracle holds index.
func (o *Oracle) HasIndex(index uint8) bool {
	for _, held := range o.Indices {
		if held == index {
			return true
		}
	}
	return false
}

// Request is a status query for one flight addressed to one index.
type Request struct {
	Index     uint8         `serialize:"true" json:"index"`
	FlightKey ids.ID        `serialize:"true" json:"flightKey"`
	Requester ids.ShortID   `serialize:"true" json:"requester"`
	Open      bool          `serialize:"true" json:"open"`
	Status    flight.Status `serialize:"true" json:"status"`
}

func (r *Request) Key() ids.ID {
	return RequestKey(r.Index, r.FlightKey)
}

// RequestKey identifies the request for flightKey addressed to index.
func RequestKey(index uint8, flightKey ids.ID) ids.ID {
	b := make([]byte, 0, 1+len(flightKey))
	b = append(b, index)
	b = append(b, flightKey[:]...)
	return hash.ComputeHash256Array(b)
}

// Fetch is the result of a status request.
type Fetch struct {
	Request *Request
	Flight  *flight.Flight
	// Created is false when the request already existed and was returned
	// untouched.
	Created bool
}

// Submission is the result of one oracle response.
type Submission struct {
	Request *Request
	Status  flight.Status
	Tally   uint64
	// Counted is false for responses that changed nothing: a repeat of an
	// earlier response or a response to a settled request.
	Counted   bool
	Finalized bool
	// Settled is true when finalization wrote the flight's status.
	Settled bool
	Credits []insurance.Credit
}

// Flights is the part of the flight registry finalization writes through.
type Flights interface {
	Get(ids.ID) (*flight.Flight, error)
	SetStatus(ids.ID, flight.Status) (bool, error)
}

// Claims credits policyholders when a flight settles as an airline delay.
type Claims interface {
	CreditInsurees(ids.ID) ([]insurance.Credit, error)
}

type Config struct {
	Fee        uint64
	Quorum     uint64
	IndexRange uint8
	CacheSize  int
}

type Consensus struct {
	config   Config
	db       state.ReadWriter
	flights  Flights
	claims   Claims
	treasury *state.Treasury
	clock    *mockable.Clock

	// Oracles never change once registered, so reads may be cached.
	indexCache cache.Cacher[ids.ShortID, *Oracle]
}

func New(
	config Config,
	db state.ReadWriter,
	flights Flights,
	claims Claims,
	treasury *state.Treasury,
	clock *mockable.Clock,
) *Consensus {
	return &Consensus{
		config:     config,
		db:         db,
		flights:    flights,
		claims:     claims,
		treasury:   treasury,
		clock:      clock,
		indexCache: lru.NewCache[ids.ShortID, *Oracle](config.CacheSize),
	}
}

// Register admits caller as an oracle and assigns it distinct indices.
func (c *Consensus) Register(caller ids.ShortID, fee uint64) (*Oracle, error) {
	if fee < c.config.Fee {
		return nil, fmt.Errorf("%w: paid %d, need %d", ErrInsufficientFee, fee, c.config.Fee)
	}
	key := oracleKey(caller)
	exists, err := c.db.Has(key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, caller)
	}

	held := set.NewSet[uint8](IndicesPerOracle)
	o := &Oracle{
		Fee:          fee,
		RegisteredAt: c.clock.Unix(),
	}
	for i := range o.Indices {
		index, err := c.drawIndex(caller)
		if err != nil {
			return nil, err
		}
		for held.Contains(index) {
			index = (index + 1) % c.config.IndexRange
		}
		held.Add(index)
		o.Indices[i] = index
	}

	if err := state.PutRecord(c.db, key, o); err != nil {
		return nil, err
	}
	if _, err := state.Increment(c.db, countKey); err != nil {
		return nil, err
	}
	return o, c.treasury.Deposit(fee)
}

// Get returns the oracle registered as caller.
func (c *Consensus) Get(caller ids.ShortID) (*Oracle, error) {
	if o, ok := c.indexCache.Get(caller); ok {
		return o, nil
	}
	o := &Oracle{}
	err := state.GetRecord(c.db, oracleKey(caller), o)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, caller)
	}
	if err != nil {
		return nil, err
	}
	c.indexCache.Put(caller, o)
	return o, nil
}

// Indices returns the index slots held by caller.
func (c *Consensus) Indices(caller ids.ShortID) ([IndicesPerOracle]uint8, error) {
	o, err := c.Get(caller)
	if err != nil {
		return [IndicesPerOracle]uint8{}, err
	}
	return o.Indices, nil
}

// Count returns the number of registered oracles.
func (c *Consensus) Count() (uint64, error) {
	return state.GetCount(c.db, countKey)
}

// FetchFlightStatus opens a status request for flightKey addressed to a
// freshly drawn index. If the request for that index already exists it is
// returned as is; its tallies are never reset.
func (c *Consensus) FetchFlightStatus(flightKey ids.ID, caller ids.ShortID) (*Fetch, error) {
	f, err := c.flights.Get(flightKey)
	if err != nil {
		return nil, err
	}
	index, err := c.drawIndex(caller)
	if err != nil {
		return nil, err
	}

	existing, err := c.Request(index, flightKey)
	switch {
	case err == nil:
		return &Fetch{Request: existing, Flight: f}, nil
	case !errors.Is(err, ErrUnknownRequest):
		return nil, err
	}

	req := &Request{
		Index:     index,
		FlightKey: flightKey,
		Requester: caller,
		Open:      true,
	}
	if err := state.PutRecord(c.db, requestKey(req.Key()), req); err != nil {
		return nil, err
	}
	return &Fetch{
		Request: req,
		Flight:  f,
		Created: true,
	}, nil
}

// Request returns the request for flightKey addressed to index.
func (c *Consensus) Request(index uint8, flightKey ids.ID) (*Request, error) {
	req := &Request{}
	err := state.GetRecord(c.db, requestKey(RequestKey(index, flightKey)), req)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: index %d for %s", ErrUnknownRequest, index, flightKey)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Tally returns the number of distinct oracles that reported status for the
// request.
func (c *Consensus) Tally(index uint8, flightKey ids.ID, status flight.Status) (uint64, error) {
	reqKey := RequestKey(index, flightKey)
	return state.GetCount(c.db, tallyKey(reqKey, status))
}

// SubmitResponse records caller's report of status for the request
// (index, flightKey). Reaching quorum closes the request and settles the
// flight; an airline delay credits the flight's insurees in the same step.
func (c *Consensus) SubmitResponse(index uint8, flightKey ids.ID, status flight.Status, caller ids.ShortID) (*Submission, error) {
	if err := status.Verify(); err != nil {
		return nil, err
	}
	if status == flight.Unknown {
		return nil, fmt.Errorf("%w: oracles must report a known status", flight.ErrInvalidStatus)
	}
	o, err := c.Get(caller)
	if errors.Is(err, ErrNotRegistered) {
		return nil, fmt.Errorf("%w: %s holds no indices", ErrIndexMismatch, caller)
	}
	if err != nil {
		return nil, err
	}
	if !o.HasIndex(index) {
		return nil, fmt.Errorf("%w: %s does not hold index %d", ErrIndexMismatch, caller, index)
	}

	req, err := c.Request(index, flightKey)
	if err != nil {
		return nil, err
	}
	sub := &Submission{
		Request: req,
		Status:  status,
	}
	reqKey := req.Key()
	if !req.Open {
		sub.Tally, err = state.GetCount(c.db, tallyKey(reqKey, status))
		return sub, err
	}

	voteKey := state.Key(votePrefix, reqKey[:], []byte{byte(status)}, caller[:])
	voted, err := c.db.Has(voteKey)
	if err != nil {
		return nil, err
	}
	if voted {
		sub.Tally, err = state.GetCount(c.db, tallyKey(reqKey, status))
		return sub, err
	}
	if err := state.Mark(c.db, voteKey); err != nil {
		return nil, err
	}
	prev, err := state.Increment(c.db, tallyKey(reqKey, status))
	if err != nil {
		return nil, err
	}
	sub.Counted = true
	sub.Tally = prev + 1
	if sub.Tally < c.config.Quorum {
		return sub, nil
	}

	req.Open = false
	req.Status = status
	if err := state.PutRecord(c.db, requestKey(reqKey), req); err != nil {
		return nil, err
	}
	sub.Finalized = true

	sub.Settled, err = c.flights.SetStatus(flightKey, status)
	if err != nil {
		return nil, err
	}
	if status != flight.AirlineDelay {
		return sub, nil
	}
	f, err := c.flights.Get(flightKey)
	if err != nil {
		return nil, err
	}
	if f.Status == flight.AirlineDelay {
		sub.Credits, err = c.claims.CreditInsurees(flightKey)
		if err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// drawIndex consumes one nonce and maps its seed onto the index range.
func (c *Consensus) drawIndex(caller ids.ShortID) (uint8, error) {
	nonce, err := state.Increment(c.db, nonceKey)
	if err != nil {
		return 0, err
	}
	return uint8(Seed(caller, nonce) % uint64(c.config.IndexRange)), nil
}

func oracleKey(caller ids.ShortID) []byte {
	return state.Key(oraclePrefix, caller[:])
}

func requestKey(reqKey ids.ID) []byte {
	return state.Key(requestPrefix, reqKey[:])
}

func tallyKey(reqKey ids.ID, status flight.Status) []byte {
	return state.Key(tallyPrefix, reqKey[:], []byte{byte(status)})
}
