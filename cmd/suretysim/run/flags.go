// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/luxfi/surety/vms/suretyvm/flight"
)

const (
	OraclesKey   = "oracles"
	StatusKey    = "status"
	SeedKey      = "seed"
	RequestsKey  = "requests"
	FlightKey    = "flight"
	DepartureKey = "departure"
	TimeoutKey   = "timeout"
	VerboseKey   = "verbose"
)

var (
	errNoOracles  = errors.New("at least one oracle is required")
	errNoRequests = errors.New("at least one status request is required")
	errNoFlight   = errors.New("flight number is required")
)

func AddFlags(flags *pflag.FlagSet) {
	flags.Int(OraclesKey, 20, "Number of oracles to register")
	flags.Uint8(StatusKey, 0, "Status code every oracle reports (0 reports a pseudo-random code)")
	flags.Uint64(SeedKey, 0, "Seed for pseudo-random status codes (0 derives one from the clock)")
	flags.Int(RequestsKey, 10, "Maximum number of status requests before giving up on quorum")
	flags.String(FlightKey, "ND1309", "Flight number to register and insure")
	flags.Duration(DepartureKey, 24*time.Hour, "Departure offset from now")
	flags.Duration(TimeoutKey, 30*time.Second, "Time allowed for oracles to answer a request")
	flags.Bool(VerboseKey, false, "Log ledger internals")
}

type Config struct {
	Oracles   int
	Status    flight.Status
	Seed      uint64
	Requests  int
	Flight    string
	Departure time.Duration
	Timeout   time.Duration
	Verbose   bool
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	oracles, err := flags.GetInt(OraclesKey)
	if err != nil {
		return nil, err
	}
	if oracles <= 0 {
		return nil, errNoOracles
	}

	statusCode, err := flags.GetUint8(StatusKey)
	if err != nil {
		return nil, err
	}
	status := flight.Status(statusCode)
	if status != flight.Unknown {
		if err := status.Verify(); err != nil {
			return nil, fmt.Errorf("%s: %w", StatusKey, err)
		}
	}

	seed, err := flags.GetUint64(SeedKey)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	requests, err := flags.GetInt(RequestsKey)
	if err != nil {
		return nil, err
	}
	if requests <= 0 {
		return nil, errNoRequests
	}

	number, err := flags.GetString(FlightKey)
	if err != nil {
		return nil, err
	}
	if number == "" {
		return nil, errNoFlight
	}

	departure, err := flags.GetDuration(DepartureKey)
	if err != nil {
		return nil, err
	}

	timeout, err := flags.GetDuration(TimeoutKey)
	if err != nil {
		return nil, err
	}

	verbose, err := flags.GetBool(VerboseKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		Oracles:   oracles,
		Status:    status,
		Seed:      seed,
		Requests:  requests,
		Flight:    number,
		Departure: departure,
		Timeout:   timeout,
		Verbose:   verbose,
	}, nil
}
