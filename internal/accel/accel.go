// Package accel reports GPU identity, device count and VRAM. Every answer
// is computed once per Facts and kept for the life of the process.
package accel

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/ngenohkevin/sysinfo-agent/internal/cache"
)

// primaryDevice is the device reported as "the" GPU
const primaryDevice = 0

// Facts answers accelerator queries from a Backend.
type Facts struct {
	backend Backend
	timeout time.Duration

	count   cache.Lazy[int]
	primary cache.Lazy[*Device]
}

// NewFacts creates accelerator facts. A non-positive timeout leaves driver
// queries unbounded.
func NewFacts(backend Backend, timeout time.Duration) *Facts {
	return &Facts{backend: backend, timeout: timeout}
}

func (f *Facts) queryContext() (context.Context, context.CancelFunc) {
	if f.timeout > 0 {
		return context.WithTimeout(context.Background(), f.timeout)
	}
	return context.WithCancel(context.Background())
}

// DeviceCount returns the number of usable accelerators, 0 when none are
// present or the driver cannot be queried.
func (f *Facts) DeviceCount() int {
	return f.count.Get(func() int {
		ctx, cancel := f.queryContext()
		defer cancel()

		n, err := f.backend.DeviceCount(ctx)
		if err != nil {
			log.Printf("[accel] no accelerator detected: %v", err)
			return 0
		}
		if n < 0 {
			return 0
		}
		return n
	})
}

// Available reports whether at least one accelerator is usable
func (f *Facts) Available() bool {
	return f.DeviceCount() > 0
}

// device returns the primary device, or nil when it cannot be queried
func (f *Facts) device() *Device {
	if !f.Available() {
		return nil
	}
	return f.primary.Get(func() *Device {
		ctx, cancel := f.queryContext()
		defer cancel()

		dev, err := f.backend.Device(ctx, primaryDevice)
		if err != nil {
			log.Printf("[accel] failed to query gpu %d: %v", primaryDevice, err)
			return nil
		}
		return dev
	})
}

// GPU returns the name and compute capability of the primary device
func (f *Facts) GPU() GPUInfo {
	if !f.Available() {
		return GPUInfo{Name: NoGPU, Capability: NotAvail}
	}

	dev := f.device()
	if dev == nil {
		return GPUInfo{Name: UnknownGPU, Capability: NotAvail}
	}
	return GPUInfo{Name: dev.Name, Capability: dev.Capability}
}

// VRAM returns total memory of the primary device in whole GB
func (f *Facts) VRAM() int {
	dev := f.device()
	if dev == nil {
		return 0
	}
	return int(math.Round(dev.MemoryTotalMiB / 1024))
}
