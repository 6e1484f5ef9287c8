// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package interop implements the buffer pipeline shared between the compute
// and graphics runtimes.
//
// A field visualization frame moves through three stages, all operating on a
// single allocation visible to both runtimes:
//
//  1. Allocate creates a graphics buffer sized for the field and registers it
//     for shared access (the compute-side registration handle).
//  2. WriteColors maps the buffer into compute address space under a
//     write-discard policy, applies the colormap element-wise, synchronizes,
//     and unmaps, handing the buffer back to the graphics runtime.
//  3. Backend.Present binds the buffer contents as the source of a 2D image
//     and draws a textured quad covering the viewport.
//
// Ownership of the buffer alternates between the two runtimes and is tracked
// by an explicit state tag on SharedBuffer. Map and Unmap are the only legal
// transitions; the mapped slice must never be retained across an Unmap.
//
// Concrete runtimes are provided as backends selected through a priority
// registry: a pure-CPU "software" backend registered by this package, and the
// "native" backend over gogpu/wgpu in the interop/native subpackage.
package interop
