// Package report assembles a system snapshot from host, accelerator and
// Python environment facts.
package report

import (
	"math"

	"github.com/ngenohkevin/sysinfo-agent/internal/accel"
	"github.com/ngenohkevin/sysinfo-agent/internal/pyenv"
	"github.com/ngenohkevin/sysinfo-agent/internal/system"
)

const gib = 1024 * 1024 * 1024

// HostFacts is satisfied by *system.Facts
type HostFacts interface {
	CPU() system.CPUInfo
	SystemRAM() int
	OS() system.OSInfo
	Memory() system.MemorySample
	CPUUsage() float64
}

// AcceleratorFacts is satisfied by *accel.Facts
type AcceleratorFacts interface {
	Available() bool
	DeviceCount() int
	GPU() accel.GPUInfo
	VRAM() int
}

// EnvFacts is satisfied by *pyenv.Env
type EnvFacts interface {
	Runtime() pyenv.Runtime
	Libraries() []pyenv.LibraryVersion
}

// Collector builds reports. It is safe for concurrent use.
type Collector struct {
	host  HostFacts
	accel AcceleratorFacts
	env   EnvFacts
}

// NewCollector creates a new report collector
func NewCollector(host HostFacts, acc AcceleratorFacts, env EnvFacts) *Collector {
	return &Collector{host: host, accel: acc, env: env}
}

// Collect gathers a full report. Static facts come from cache after the
// first call; memory and CPU usage are sampled every time, and the CPU
// sample blocks for its measurement window.
func (c *Collector) Collect() Report {
	cpuInfo := c.host.CPU()
	ram := c.host.SystemRAM()
	osInfo := c.host.OS()
	rt := c.env.Runtime()

	mem := c.host.Memory()
	usage := c.host.CPUUsage()

	gpu, cuda := c.accelerator(rt)

	return Report{
		PythonVersion: rt.PythonVersion,
		OS:            osInfo,
		CPU:           CPU{CPUInfo: cpuInfo, Usage: usage},
		SystemRAMGB:   ram,
		Memory:        Memory{Total: ram, Available: mem.AvailableGB, Percent: mem.Percent},
		GPU:           gpu,
		CUDA:          cuda,
		PyTorch:       PyTorch{Version: rt.TorchVersion},
		Libraries:     c.env.Libraries(),
	}
}

// accelerator decides GPU identity and CUDA availability. When torch was
// imported its view wins, so a CPU-only build on a GPU host reports no
// CUDA. The driver backend answers only when torch is absent.
func (c *Collector) accelerator(rt pyenv.Runtime) (accel.GPUInfo, CUDA) {
	if rt.TorchLoaded {
		return torchAccelerator(rt)
	}

	available := c.accel.Available()
	deviceCount := 0
	if available {
		deviceCount = c.accel.DeviceCount()
	}
	return c.accel.GPU(), CUDA{
		Available:   available,
		Version:     rt.CUDAVersion,
		DeviceCount: deviceCount,
		VRAMGB:      c.accel.VRAM(),
	}
}

func torchAccelerator(rt pyenv.Runtime) (accel.GPUInfo, CUDA) {
	cuda := CUDA{Available: rt.CUDAAvailable, Version: rt.CUDAVersion}
	if !rt.CUDAAvailable {
		return accel.GPUInfo{Name: accel.NoGPU, Capability: accel.NotAvail}, cuda
	}

	cuda.DeviceCount = rt.DeviceCount
	if rt.Device == nil || rt.Device.Name == "" {
		return accel.GPUInfo{Name: accel.UnknownGPU, Capability: accel.NotAvail}, cuda
	}

	capability := rt.Device.Capability
	if capability == "" {
		capability = accel.NotAvail
	}
	cuda.VRAMGB = int(math.Round(float64(rt.Device.TotalMemory) / gib))
	return accel.GPUInfo{Name: rt.Device.Name, Capability: capability}, cuda
}
