// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package shared

import (
	"github.com/pkg/errors"
)

// Error taxonomy of the workflow core.
//
//   - ErrNotFound: artifact/threat/ticket missing. Non fatal, surfaced to the
//     caller as a structured error response.
//   - ErrValidation: malformed input, rejected before any mutation.
//   - ErrConcurrencyConflict: a conditional write lost a race against a
//     concurrent update. Retried internally with fresh reads; only surfaced
//     once retries are exhausted.
//
// Consistency violations between the cycle history and the live cycle are
// never represented as errors: they are healed in place and logged as a
// warning.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
