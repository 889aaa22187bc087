// Copyright 2025 stridemap contributors.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package utils

// FireAndForgetSynchronizer abstracts "go func()" so tests can run the
// function inline and wait for it to finish.
type FireAndForgetSynchronizer interface {
	FireAndForget(fn func())
}

type goroutineSynchronizer struct{}

func (goroutineSynchronizer) FireAndForget(fn func()) {
	go fn()
}

func NewFireAndForgetSynchronizer() FireAndForgetSynchronizer {
	return goroutineSynchronizer{}
}

// SyncFireAndForgetSynchronizer executes the function in the calling
// goroutine. Used during testing.
type SyncFireAndForgetSynchronizer struct{}

func (SyncFireAndForgetSynchronizer) FireAndForget(fn func()) {
	fn()
}
