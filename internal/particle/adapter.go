// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package particle provides the cloud client used to reach Particle devices.
// It defines the API contract the auth session and device controller depend on and an
// HTTP implementation of it against the Particle Cloud REST API.
package particle

import (
	"context"
	"errors"
)

// ErrNotLoggedIn is returned by calls that need an access token before Login succeeded.
var ErrNotLoggedIn = errors.New("not logged in to the Particle cloud")

// Device is a device visible to the authenticated account.
// Only ID and Name take part in lookup; Online is informational.
type Device struct {
	ID     string
	Name   string
	Online bool
}

// API defines the cloud operations the CLI depends on.
// Implementations may call the real Particle cloud or provide fakes for tests.
type API interface {
	// Login exchanges a username and password for an access token kept by the client.
	Login(ctx context.Context, username, password string) error
	// ListDevices returns the devices claimed by the logged-in account, in cloud order.
	ListDevices(ctx context.Context) ([]Device, error)
	// Invoke calls a firmware function on a device and returns its integer result.
	Invoke(ctx context.Context, deviceID, function, arg string) (int, error)
	// Logout revokes the current access token and forgets it.
	Logout(ctx context.Context) error
}
