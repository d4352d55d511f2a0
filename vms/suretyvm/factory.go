// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package suretyvm

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/surety"
	"github.com/luxfi/surety/vms/suretyvm/config"
)

var (
	// VMID is the unique identifier for the surety VM
	VMID = ids.ID{'s', 'u', 'r', 'e', 't', 'y', 'v', 'm'}

	_ surety.Factory = (*Factory)(nil)
)

// Factory creates new surety VM instances.
type Factory struct {
	config.Config
}

// New creates an uninitialized VM with the factory's configuration.
func (f *Factory) New(logger log.Logger) (interface{}, error) {
	return New(f.Config, logger), nil
}
