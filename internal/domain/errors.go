// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// AuthError signals that a client rejected tagworker's credentials. The
// Worker logs it at ERROR and backs off the offending client's cycle
// instead of retrying immediately, per §7.
type AuthError struct {
	Instance string
	cause    error
}

func NewAuthError(instance string, cause error) *AuthError {
	return &AuthError{Instance: instance, cause: errors.WithStack(cause)}
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error for %s: %v", e.Instance, e.cause)
}

func (e *AuthError) Unwrap() error { return e.cause }

// TransportError signals a network/transport failure talking to a client
// (timeout, connection refused, TLS failure). The Worker logs it at ERROR
// and retries on the next scheduled cycle, per §7.
type TransportError struct {
	Instance string
	cause    error
}

func NewTransportError(instance string, cause error) *TransportError {
	return &TransportError{Instance: instance, cause: errors.WithStack(cause)}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.Instance, e.cause)
}

func (e *TransportError) Unwrap() error { return e.cause }

// ConfigError signals a malformed or incomplete configuration file. RunE
// maps it to exit code 1 per §10.3.
type ConfigError struct {
	cause error
}

func NewConfigError(cause error) *ConfigError {
	return &ConfigError{cause: errors.WithStack(cause)}
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config error: %v", e.cause) }
func (e *ConfigError) Unwrap() error { return e.cause }

// LockError signals that another tagworker process already holds the lock
// for this configuration. RunE maps it to exit code 1 per §10.4.
type LockError struct {
	cause error
}

func NewLockError(cause error) *LockError {
	return &LockError{cause: errors.WithStack(cause)}
}

func (e *LockError) Error() string { return fmt.Sprintf("lock error: %v", e.cause) }
func (e *LockError) Unwrap() error { return e.cause }
