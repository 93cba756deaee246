package accel

import "context"

// Fallback values for GPU identity
const (
	NoGPU      = "No GPU available"
	UnknownGPU = "Unknown GPU"
	NotAvail   = "N/A"
)

// Device describes one accelerator as reported by the driver
type Device struct {
	Index          int
	Name           string
	Capability     string
	MemoryTotalMiB float64
}

// GPUInfo is the identity of the primary accelerator
type GPUInfo struct {
	Name       string `json:"name"`
	Capability string `json:"capability"`
}

// Backend is the driver query interface used by Facts.
type Backend interface {
	DeviceCount(ctx context.Context) (int, error)
	Device(ctx context.Context, index int) (*Device, error)
}
