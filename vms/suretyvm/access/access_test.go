// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package access

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func newTestControl(t *testing.T) (*Control, ids.ShortID) {
	owner := ids.GenerateTestShortID()
	c := New(memdb.New())
	require.NoError(t, c.Initialize(owner))
	return c, owner
}

func TestInitialOperatingStatus(t *testing.T) {
	require := require.New(t)

	c, owner := newTestControl(t)

	operational, err := c.IsOperational()
	require.NoError(err)
	require.True(operational)
	require.NoError(c.RequireOperational())

	got, err := c.Owner()
	require.NoError(err)
	require.Equal(owner, got)
}

func TestSetOperatingStatusOwnerOnly(t *testing.T) {
	require := require.New(t)

	c, owner := newTestControl(t)

	_, err := c.SetOperatingStatus(ids.GenerateTestShortID(), false)
	require.ErrorIs(err, ErrUnauthorized)

	operational, err := c.IsOperational()
	require.NoError(err)
	require.True(operational)

	changed, err := c.SetOperatingStatus(owner, false)
	require.NoError(err)
	require.True(changed)
	require.ErrorIs(c.RequireOperational(), ErrNotOperational)

	changed, err = c.SetOperatingStatus(owner, false)
	require.NoError(err)
	require.False(changed)

	changed, err = c.SetOperatingStatus(owner, true)
	require.NoError(err)
	require.True(changed)
	require.NoError(c.RequireOperational())
}

func TestCapabilityTable(t *testing.T) {
	require := require.New(t)

	c, owner := newTestControl(t)
	app := ids.GenerateTestShortID()

	require.ErrorIs(c.RequireAuthorized(Flights, app), ErrUnauthorized)

	err := c.AuthorizeCaller(app, Flights, app)
	require.ErrorIs(err, ErrUnauthorized)

	require.NoError(c.AuthorizeCaller(owner, Flights, app))
	require.NoError(c.RequireAuthorized(Flights, app))
	require.ErrorIs(c.RequireAuthorized(Insurance, app), ErrUnauthorized)

	require.NoError(c.DeauthorizeCaller(owner, Flights, app))
	require.ErrorIs(c.RequireAuthorized(Flights, app), ErrUnauthorized)

	err = c.AuthorizeCaller(owner, Component("treasury"), app)
	require.ErrorIs(err, ErrUnauthorized)
}

func TestNoOwner(t *testing.T) {
	c := New(memdb.New())
	_, err := c.SetOperatingStatus(ids.GenerateTestShortID(), false)
	require.ErrorIs(t, err, ErrNoOwner)
}
