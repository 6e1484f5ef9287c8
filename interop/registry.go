// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package interop

import (
	"fmt"
	"sort"
	"sync"
)

// Backend name constants.
const (
	// BackendSoftware is the pure-CPU reference backend.
	BackendSoftware = "software"
	// BackendNative is the gogpu/wgpu HAL backend (interop/native).
	BackendNative = "native"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() (Backend, error)

// registryEntry is a registered backend.
type registryEntry struct {
	name string

	// priority determines selection order (higher = preferred).
	// Standard priorities: 100 for GPU backends, 10 for software.
	priority int

	factory BackendFactory

	// available reports whether the backend can run on this system.
	// nil means always available.
	available func() bool
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*registryEntry)
)

// Register adds a backend factory under the given name. Typically called
// from init() in backend packages; registering an existing name replaces it.
// If available is nil the backend is assumed always available.
func Register(name string, priority int, factory BackendFactory, available func() bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = &registryEntry{
		name:      name,
		priority:  priority,
		factory:   factory,
		available: available,
	}
}

// Unregister removes a backend. Useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// Registered returns all registered backend names sorted by priority,
// highest first.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	entries := make([]*registryEntry, 0, len(registry))
	for _, e := range registry {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].name < entries[j].name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// New creates a backend by name.
func New(name string) (Backend, error) {
	registryMu.RLock()
	e, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q not registered", ErrNoBackend, name)
	}
	if e.available != nil && !e.available() {
		return nil, fmt.Errorf("%w: %q not available on this system", ErrNoBackend, name)
	}
	return e.factory()
}

// Default creates the best available backend by priority.
func Default() (Backend, error) {
	for _, name := range Registered() {
		b, err := New(name)
		if err == nil {
			return b, nil
		}
		slogger().Debug("backend unavailable", "name", name, "err", err)
	}
	return nil, ErrNoBackend
}
