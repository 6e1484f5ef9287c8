// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native provides the GPU interop backend using gogpu/wgpu.
//
// Shared buffers live in device memory as storage buffers. Map hands the
// compute side a host staging slice; Unmap uploads it through the queue and
// keeps a host shadow copy for presentation and readback. Presentation goes
// through gpucontext texture targets, the same path gogpu windows draw
// through.
//
// The backend registers itself under the name "native" when a HAL backend
// is compiled in; build with the nogpu tag to exclude it entirely.
package native
