// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flight

import (
	"errors"
	"fmt"
)

var ErrInvalidStatus = errors.New("invalid flight status")

// Status is the reported state of a flight. The set of codes is closed.
type Status uint8

const (
	Unknown        Status = 0
	OnTime         Status = 10
	AirlineDelay   Status = 20
	WeatherDelay   Status = 30
	TechnicalDelay Status = 40
	OtherDelay     Status = 50
)

// Statuses lists every code an oracle may report.
var Statuses = []Status{Unknown, OnTime, AirlineDelay, WeatherDelay, TechnicalDelay, OtherDelay}

func (s Status) Valid() bool {
	switch s {
	case Unknown, OnTime, AirlineDelay, WeatherDelay, TechnicalDelay, OtherDelay:
		return true
	default:
		return false
	}
}

// Verify returns ErrInvalidStatus for codes outside the closed set.
func (s Status) Verify() error {
	if !s.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return nil
}

func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case OnTime:
		return "on_time"
	case AirlineDelay:
		return "airline_delay"
	case WeatherDelay:
		return "weather_delay"
	case TechnicalDelay:
		return "technical_delay"
	case OtherDelay:
		return "other_delay"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}
