// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package window defines the host surface a field viewer draws into.
//
// A Host owns the OS window (or its stand-in), reports the drawable size,
// delivers resize events, and hands out a presentation target per frame.
// Headless is a windowless host backed by a double-buffered RGBA image; it
// pairs with the software interop backend and is what tests run against.
// The gogpuwin subpackage provides a host over a real gogpu window.
package window
