// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package access implements the ledger's kill-switch and its capability
// table. A component may only be driven by identities its table names.
package access

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/surety/vms/suretyvm/state"
)

var (
	ErrNotOperational = errors.New("ledger is not operational")
	ErrUnauthorized   = errors.New("caller is not authorized")
	ErrNoOwner        = errors.New("ledger has no owner")

	ownerKey         = []byte("owner")
	pausedKey        = []byte("paused")
	capabilityPrefix = []byte("cap:")
)

// Component names a ledger component that keeps a capability table.
type Component string

const (
	Funding   Component = "funding"
	Airlines  Component = "airlines"
	Flights   Component = "flights"
	Insurance Component = "insurance"
)

// Components lists every ledger component in dependency order.
var Components = []Component{Funding, Airlines, Flights, Insurance}

func (c Component) Valid() bool {
	switch c {
	case Funding, Airlines, Flights, Insurance:
		return true
	default:
		return false
	}
}

// Control stores the owner, the operating flag and the capability tables.
type Control struct {
	db state.ReadWriter
}

func New(db state.ReadWriter) *Control {
	return &Control{db: db}
}

// Initialize records the owner. The ledger starts operational.
func (c *Control) Initialize(owner ids.ShortID) error {
	return c.db.Put(ownerKey, owner[:])
}

func (c *Control) Owner() (ids.ShortID, error) {
	b, err := c.db.Get(ownerKey)
	if errors.Is(err, database.ErrNotFound) {
		return ids.ShortEmpty, ErrNoOwner
	}
	if err != nil {
		return ids.ShortEmpty, err
	}
	return ids.ToShortID(b)
}

func (c *Control) IsOperational() (bool, error) {
	paused, err := c.db.Has(pausedKey)
	return !paused, err
}

// SetOperatingStatus toggles the kill-switch. Existing state is untouched;
// only future writes are gated. It reports whether the flag changed.
func (c *Control) SetOperatingStatus(caller ids.ShortID, operational bool) (bool, error) {
	if err := c.requireOwner(caller); err != nil {
		return false, err
	}
	current, err := c.IsOperational()
	if err != nil {
		return false, err
	}
	if current == operational {
		return false, nil
	}
	if operational {
		return true, c.db.Delete(pausedKey)
	}
	return true, state.Mark(c.db, pausedKey)
}

// AuthorizeCaller adds identity to component's capability table.
func (c *Control) AuthorizeCaller(caller ids.ShortID, component Component, identity ids.ShortID) error {
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	return c.Authorize(component, identity)
}

// DeauthorizeCaller removes identity from component's capability table.
func (c *Control) DeauthorizeCaller(caller ids.ShortID, component Component, identity ids.ShortID) error {
	if err := c.requireOwner(caller); err != nil {
		return err
	}
	if !component.Valid() {
		return fmt.Errorf("%w: unknown component %q", ErrUnauthorized, component)
	}
	return c.db.Delete(capabilityKey(component, identity))
}

// Authorize writes a capability without an owner check. It is used when
// applying genesis.
func (c *Control) Authorize(component Component, identity ids.ShortID) error {
	if !component.Valid() {
		return fmt.Errorf("%w: unknown component %q", ErrUnauthorized, component)
	}
	return state.Mark(c.db, capabilityKey(component, identity))
}

func (c *Control) IsAuthorized(component Component, identity ids.ShortID) (bool, error) {
	return c.db.Has(capabilityKey(component, identity))
}

func (c *Control) RequireOperational() error {
	operational, err := c.IsOperational()
	if err != nil {
		return err
	}
	if !operational {
		return ErrNotOperational
	}
	return nil
}

func (c *Control) RequireAuthorized(component Component, identity ids.ShortID) error {
	authorized, err := c.IsAuthorized(component, identity)
	if err != nil {
		return err
	}
	if !authorized {
		return fmt.Errorf("%w: %s may not call %s", ErrUnauthorized, identity, component)
	}
	return nil
}

func (c *Control) requireOwner(caller ids.ShortID) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}
	if caller != owner {
		return fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
	}
	return nil
}

func capabilityKey(component Component, identity ids.ShortID) []byte {
	return state.Key(capabilityPrefix, []byte(component), []byte{'/'}, identity[:])
}
