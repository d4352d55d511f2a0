// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis describes the initial state of a surety ledger.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"

	"github.com/luxfi/surety/vms/suretyvm/access"
	"github.com/luxfi/surety/vms/suretyvm/execute"
)

var (
	ErrNoOwner        = errors.New("genesis has no owner")
	ErrNoFirstAirline = errors.New("genesis has no first airline")
	ErrNoAppID        = errors.New("genesis has no app identity")
)

// Genesis names the owner, the first airline and the identities that may
// drive every ledger component from the start. AppID is always authorized.
type Genesis struct {
	Owner        ids.ShortID
	FirstAirline ids.ShortID
	AppID        ids.ShortID
	Authorized   []ids.ShortID
}

// genesisJSON is the wire form of Genesis. Identities are encoded as strings.
type genesisJSON struct {
	Owner        string   `json:"owner"`
	FirstAirline string   `json:"firstAirline"`
	AppID        string   `json:"appID"`
	Authorized   []string `json:"authorized,omitempty"`
}

// Parse decodes and validates a JSON genesis.
func Parse(b []byte) (*Genesis, error) {
	var raw genesisJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal genesis: %w", err)
	}

	g := &Genesis{
		Authorized: make([]ids.ShortID, len(raw.Authorized)),
	}
	var err error
	if g.Owner, err = parseIdentity("owner", raw.Owner); err != nil {
		return nil, err
	}
	if g.FirstAirline, err = parseIdentity("firstAirline", raw.FirstAirline); err != nil {
		return nil, err
	}
	if g.AppID, err = parseIdentity("appID", raw.AppID); err != nil {
		return nil, err
	}
	for i, s := range raw.Authorized {
		if g.Authorized[i], err = parseIdentity("authorized", s); err != nil {
			return nil, err
		}
	}
	return g, g.Verify()
}

func (g *Genesis) Verify() error {
	switch {
	case g.Owner == ids.ShortEmpty:
		return ErrNoOwner
	case g.FirstAirline == ids.ShortEmpty:
		return ErrNoFirstAirline
	case g.AppID == ids.ShortEmpty:
		return ErrNoAppID
	default:
		return nil
	}
}

// Bytes encodes g as JSON.
func (g *Genesis) Bytes() ([]byte, error) {
	raw := genesisJSON{
		Owner:        g.Owner.String(),
		FirstAirline: g.FirstAirline.String(),
		AppID:        g.AppID.String(),
	}
	for _, id := range g.Authorized {
		raw.Authorized = append(raw.Authorized, id.String())
	}
	return json.Marshal(raw)
}

// Apply writes the genesis state through b: the owner, the unfunded first
// airline and the initial capability tables.
func (g *Genesis) Apply(b *execute.Backend) error {
	if err := g.Verify(); err != nil {
		return err
	}
	if err := b.Access.Initialize(g.Owner); err != nil {
		return err
	}
	if err := b.Airlines.RegisterFirst(g.FirstAirline); err != nil {
		return err
	}
	callers := append([]ids.ShortID{g.AppID}, g.Authorized...)
	for _, component := range access.Components {
		for _, caller := range callers {
			if err := b.Access.Authorize(component, caller); err != nil {
				return err
			}
		}
	}
	return nil
}

// Default returns a genesis with identities derived from fixed names. It is
// meant for local simulation and tests.
func Default() *Genesis {
	return &Genesis{
		Owner:        Identity("owner"),
		FirstAirline: Identity("airline-1"),
		AppID:        Identity("flightsurety-app"),
	}
}

// Identity derives a deterministic identity from name.
func Identity(name string) ids.ShortID {
	digest := hash.ComputeHash256([]byte(name))
	var id ids.ShortID
	copy(id[:], digest)
	return id
}

func parseIdentity(field, s string) (ids.ShortID, error) {
	id, err := ids.ShortFromString(s)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return id, nil
}
