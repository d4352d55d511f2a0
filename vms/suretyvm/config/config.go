// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/surety/utils/units"

	ljson "github.com/luxfi/surety/utils/json"
)

// IndicesPerOracle is the number of index slots every oracle holds.
const IndicesPerOracle = 3

var (
	ErrInvalidThreshold  = errors.New("invalid consensus threshold")
	ErrInvalidQuorum     = errors.New("invalid oracle quorum")
	ErrInvalidIndexRange = errors.New("invalid oracle index range")
	ErrInvalidAmount     = errors.New("invalid amount configuration")
)

// Config holds the admission, insurance and oracle parameters of the surety
// ledger. Amounts are in MicroLux.
type Config struct {
	// Airline admission
	MinFunding         ljson.Uint64 `json:"minFunding"`         // Default: 10 LUX
	ConsensusThreshold uint32       `json:"consensusThreshold"` // Default: 4

	// Insurance
	MaxPremium ljson.Uint64 `json:"maxPremium"` // Default: 1 LUX

	// Oracles
	OracleFee    ljson.Uint64 `json:"oracleFee"`    // Default: 1 LUX
	OracleQuorum uint32       `json:"oracleQuorum"` // Default: 3
	IndexRange   uint8        `json:"indexRange"`   // Indices are drawn from [0, IndexRange)

	// IndexCacheSize bounds the in-memory cache of oracle index assignments.
	IndexCacheSize int `json:"indexCacheSize"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() Config {
	return Config{
		MinFunding:         ljson.Uint64(10 * units.Lux),
		ConsensusThreshold: 4,
		MaxPremium:         ljson.Uint64(units.Lux),
		OracleFee:          ljson.Uint64(units.Lux),
		OracleQuorum:       3,
		IndexRange:         10,
		IndexCacheSize:     1024,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ConsensusThreshold == 0 {
		return ErrInvalidThreshold
	}
	if c.OracleQuorum == 0 {
		return ErrInvalidQuorum
	}
	if c.IndexRange < IndicesPerOracle {
		return fmt.Errorf("%w: %d is fewer than %d slots", ErrInvalidIndexRange, c.IndexRange, IndicesPerOracle)
	}
	if c.MinFunding == 0 {
		return fmt.Errorf("%w: minFunding must be positive", ErrInvalidAmount)
	}
	if c.MaxPremium == 0 {
		return fmt.Errorf("%w: maxPremium must be positive", ErrInvalidAmount)
	}
	if c.IndexCacheSize <= 0 {
		c.IndexCacheSize = DefaultConfig().IndexCacheSize
	}
	return nil
}

// ParseConfig parses configuration from JSON bytes on top of the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
