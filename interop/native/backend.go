// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/fieldview/interop"
)

// fenceTimeout bounds every GPU wait. A healthy queue signals in
// microseconds; anything near this limit is a hang.
const fenceTimeout = 5 * time.Second

func init() {
	interop.Register(interop.BackendNative, 100, func() (interop.Backend, error) {
		return New()
	}, func() bool {
		_, ok := hal.GetBackend(gputypes.BackendVulkan)
		return ok
	})
}

// nativeBuffer pairs a device storage buffer with its host-side views.
type nativeBuffer struct {
	buf   hal.Buffer
	elems int

	// shadow holds the last committed contents, for presentation and
	// readback without a device round trip.
	shadow []float32

	// staging is the compute-visible slice, non-nil while mapped.
	staging []float32
}

// Backend is the GPU interop backend. It owns a standalone device and queue
// opened on the first available adapter.
//
// Backend is not safe for concurrent use.
type Backend struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	nextID  atomic.Uint64
	buffers map[interop.BufferID]*nativeBuffer
	regs    map[interop.RegistrationID]interop.BufferID

	// lut is the GPU colormap pipeline, created lazily on first use.
	lut *lutPipeline

	// presenter caches the texture the quad samples from.
	presenter presenter

	closed bool
}

// New opens a device on the best available adapter and returns a GPU
// backend.
func New() (*Backend, error) {
	hb, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("native: vulkan backend not available")
	}
	instance, err := hb.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("native: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}

	b := &Backend{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		buffers:  make(map[interop.BufferID]*nativeBuffer),
		regs:     make(map[interop.RegistrationID]interop.BufferID),
	}
	b.nextID.Store(1)

	interop.Logger().Info("native backend initialized", "adapter", selected.Info.Name)
	return b, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return interop.BackendNative }

// CreateBuffer allocates a device storage buffer of elementCount float32
// values.
func (b *Backend) CreateBuffer(elementCount int, usage gputypes.BufferUsage) (interop.BufferID, error) {
	if b.closed {
		return interop.InvalidID, fmt.Errorf("native: backend closed")
	}
	if elementCount <= 0 {
		return interop.InvalidID, fmt.Errorf("%w: %d", interop.ErrInvalidElementCount, elementCount)
	}

	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fieldview_shared",
		Size:  uint64(elementCount) * 4,
		Usage: usage,
	})
	if err != nil {
		return interop.InvalidID, fmt.Errorf("native: create buffer: %w", err)
	}

	id := interop.BufferID(b.nextID.Add(1) - 1)
	b.buffers[id] = &nativeBuffer{
		buf:    buf,
		elems:  elementCount,
		shadow: make([]float32, elementCount),
	}
	return id, nil
}

// DestroyBuffer releases a device buffer. Unknown IDs are ignored.
func (b *Backend) DestroyBuffer(id interop.BufferID) {
	nb, ok := b.buffers[id]
	if !ok {
		return
	}
	delete(b.buffers, id)
	b.device.DestroyBuffer(nb.buf)
}

// RegisterShared registers a buffer for shared compute access.
func (b *Backend) RegisterShared(id interop.BufferID) (interop.RegistrationID, error) {
	if _, ok := b.buffers[id]; !ok {
		return interop.InvalidID, fmt.Errorf("%w: buffer %d", interop.ErrUnknownBuffer, id)
	}
	reg := interop.RegistrationID(b.nextID.Add(1) - 1)
	b.regs[reg] = id
	return reg, nil
}

// UnregisterShared removes a registration.
func (b *Backend) UnregisterShared(reg interop.RegistrationID) error {
	id, ok := b.regs[reg]
	if !ok {
		return fmt.Errorf("%w: %d", interop.ErrUnknownRegistration, reg)
	}
	if nb, ok := b.buffers[id]; ok {
		nb.staging = nil
	}
	delete(b.regs, reg)
	return nil
}

// Map hands out a host staging slice for a registered buffer. Write-discard:
// the slice starts zeroed, not with the buffer's device contents.
func (b *Backend) Map(reg interop.RegistrationID) ([]float32, error) {
	nb, err := b.lookup(reg)
	if err != nil {
		return nil, err
	}
	if nb.staging != nil {
		return nil, interop.ErrAlreadyMapped
	}
	nb.staging = make([]float32, nb.elems)
	return nb.staging, nil
}

// Unmap uploads the staging slice to the device buffer and retains it as
// the host shadow.
func (b *Backend) Unmap(reg interop.RegistrationID) error {
	nb, err := b.lookup(reg)
	if err != nil {
		return err
	}
	if nb.staging == nil {
		return interop.ErrNotMapped
	}

	b.queue.WriteBuffer(nb.buf, 0, floatsToBytes(nb.staging))
	nb.shadow = nb.staging
	nb.staging = nil
	return nil
}

// Sync submits a fence and blocks until the queue has drained.
func (b *Backend) Sync() error {
	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit(nil, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("native: wait for queue: ok=%v err=%w", ok, err)
	}
	return nil
}

// ReadBuffer copies the device buffer back through a staging buffer.
func (b *Backend) ReadBuffer(id interop.BufferID) ([]float32, error) {
	nb, ok := b.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", interop.ErrUnknownBuffer, id)
	}

	size := uint64(nb.elems) * 4
	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fieldview_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "fieldview_readback",
	})
	if err != nil {
		return nil, fmt.Errorf("native: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fieldview_readback"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(nb.buf, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("native: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)
	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("native: submit: %w", err)
	}
	ok, err = b.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return nil, fmt.Errorf("native: wait for readback: ok=%v err=%w", ok, err)
	}

	raw := make([]byte, size)
	if err := b.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("native: readback: %w", err)
	}
	return bytesToFloats(raw), nil
}

// Close destroys all resources, the device, and the instance.
func (b *Backend) Close() {
	if b.closed {
		return
	}
	b.closed = true

	for id, nb := range b.buffers {
		b.device.DestroyBuffer(nb.buf)
		delete(b.buffers, id)
	}
	b.regs = nil

	if b.lut != nil {
		b.lut.destroy(b.device)
		b.lut = nil
	}
	b.presenter.destroy()

	if b.device != nil {
		b.device.Destroy()
		b.device = nil
		b.queue = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
}

func (b *Backend) lookup(reg interop.RegistrationID) (*nativeBuffer, error) {
	id, ok := b.regs[reg]
	if !ok {
		return nil, fmt.Errorf("%w: %d", interop.ErrUnknownRegistration, reg)
	}
	nb, ok := b.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", interop.ErrUnknownBuffer, id)
	}
	return nb, nil
}
