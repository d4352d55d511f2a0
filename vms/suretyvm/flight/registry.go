// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flight

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/surety/utils/timer/mockable"
	"github.com/luxfi/surety/vms/suretyvm/state"
)

var (
	ErrDuplicateFlight = errors.New("flight is already registered")
	ErrUnknownFlight   = errors.New("unknown flight")
	ErrInvalidNumber   = errors.New("invalid flight number")

	flightPrefix = []byte("flight:")
	seqPrefix    = []byte("seq:")
	countKey     = []byte("count")
)

// MaxNumberLen bounds the length of a flight number.
const MaxNumberLen = 64

// Flight is a scheduled departure an airline has opened for insurance.
type Flight struct {
	Airline      ids.ShortID `serialize:"true" json:"airline"`
	Number       string      `serialize:"true" json:"number"`
	Departure    uint64      `serialize:"true" json:"departure"`
	Status       Status      `serialize:"true" json:"status"`
	RegisteredAt uint64      `serialize:"true" json:"registeredAt"`
}

func (f *Flight) Key() ids.ID {
	return Key(f.Airline, f.Number, f.Departure)
}

// Key derives the identifier of the flight (airline, number, departure).
// The number is length-prefixed so distinct triples never share a preimage.
func Key(airline ids.ShortID, number string, departure uint64) ids.ID {
	b := make([]byte, 0, len(airline)+2+len(number)+8)
	b = append(b, airline[:]...)
	b = binary.BigEndian.AppendUint16(b, uint16(len(number)))
	b = append(b, number...)
	b = binary.BigEndian.AppendUint64(b, departure)
	return hash.ComputeHash256Array(b)
}

// Operators reports which identities may register flights.
type Operators interface {
	RequireFunded(ids.ShortID) error
}

type Registry struct {
	db        state.ReadWriter
	operators Operators
	clock     *mockable.Clock
}

func New(db state.ReadWriter, operators Operators, clock *mockable.Clock) *Registry {
	return &Registry{
		db:        db,
		operators: operators,
		clock:     clock,
	}
}

// VerifyNumber returns ErrInvalidNumber for an empty flight number or one
// longer than MaxNumberLen.
func VerifyNumber(number string) error {
	if len(number) == 0 || len(number) > MaxNumberLen {
		return fmt.Errorf("%w: %q", ErrInvalidNumber, number)
	}
	return nil
}

// Register opens a flight operated by caller, who must be a funded airline.
func (r *Registry) Register(number string, departure uint64, caller ids.ShortID) (*Flight, error) {
	if err := VerifyNumber(number); err != nil {
		return nil, err
	}
	if err := r.operators.RequireFunded(caller); err != nil {
		return nil, err
	}

	f := &Flight{
		Airline:      caller,
		Number:       number,
		Departure:    departure,
		Status:       Unknown,
		RegisteredAt: r.clock.Unix(),
	}
	key := f.Key()
	exists, err := r.db.Has(recordKey(key))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s departing %d", ErrDuplicateFlight, number, departure)
	}

	seq, err := state.Increment(r.db, countKey)
	if err != nil {
		return nil, err
	}
	if err := database.PutID(r.db, sequenceKey(seq), key); err != nil {
		return nil, err
	}
	return f, state.PutRecord(r.db, recordKey(key), f)
}

func (r *Registry) Get(key ids.ID) (*Flight, error) {
	f := &Flight{}
	err := state.GetRecord(r.db, recordKey(key), f)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFlight, key)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *Registry) Count() (uint64, error) {
	return state.GetCount(r.db, countKey)
}

// List returns every registered flight in registration order.
func (r *Registry) List() ([]*Flight, error) {
	count, err := r.Count()
	if err != nil {
		return nil, err
	}
	flights := make([]*Flight, 0, count)
	for seq := uint64(0); seq < count; seq++ {
		key, err := database.GetID(r.db, sequenceKey(seq))
		if err != nil {
			return nil, err
		}
		f, err := r.Get(key)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, nil
}

// Numbers returns the flight number of every registered flight in
// registration order.
func (r *Registry) Numbers() ([]string, error) {
	flights, err := r.List()
	if err != nil {
		return nil, err
	}
	numbers := make([]string, len(flights))
	for i, f := range flights {
		numbers[i] = f.Number
	}
	return numbers, nil
}

// SetStatus records the settled status of a flight. Only the first settled
// status sticks; it reports whether the write was applied. Unknown settles
// nothing.
func (r *Registry) SetStatus(key ids.ID, status Status) (bool, error) {
	if err := status.Verify(); err != nil {
		return false, err
	}
	if status == Unknown {
		return false, nil
	}
	f, err := r.Get(key)
	if err != nil {
		return false, err
	}
	if f.Status != Unknown {
		return false, nil
	}
	f.Status = status
	return true, state.PutRecord(r.db, recordKey(key), f)
}

func recordKey(key ids.ID) []byte {
	return state.Key(flightPrefix, key[:])
}

func sequenceKey(seq uint64) []byte {
	return state.Key(seqPrefix, database.PackUInt64(seq))
}
