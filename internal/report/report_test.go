package report

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngenohkevin/sysinfo-agent/internal/accel"
	"github.com/ngenohkevin/sysinfo-agent/internal/pyenv"
	"github.com/ngenohkevin/sysinfo-agent/internal/system"
)

type fakeHost struct {
	memCalls   int
	usageCalls int
}

func (h *fakeHost) CPU() system.CPUInfo {
	return system.CPUInfo{
		Brand:         "AMD Ryzen 9 7950X 16-Core Processor",
		Arch:          "x86_64",
		PhysicalCores: 16,
		LogicalCores:  32,
		HzActual:      "4.5000 GHz",
		HzAdvertised:  "4.5000 GHz",
	}
}

func (h *fakeHost) SystemRAM() int { return 64 }

func (h *fakeHost) OS() system.OSInfo {
	return system.OSInfo{System: "Linux", Release: "6.8.0", Version: "24.04", Platform: "Linux-6.8.0-x86_64"}
}

func (h *fakeHost) Memory() system.MemorySample {
	h.memCalls++
	return system.MemorySample{AvailableGB: float64(40 + h.memCalls), Percent: 30.5}
}

func (h *fakeHost) CPUUsage() float64 {
	h.usageCalls++
	return float64(h.usageCalls)
}

type fakeAccel struct{ devices int }

func (a fakeAccel) Available() bool { return a.devices > 0 }
func (a fakeAccel) DeviceCount() int { return a.devices }
func (a fakeAccel) GPU() accel.GPUInfo {
	return accel.GPUInfo{Name: "NVIDIA GeForce RTX 4090", Capability: "8.9"}
}
func (a fakeAccel) VRAM() int { return 24 }

type fakeEnv struct{ rt *pyenv.Runtime }

func (e fakeEnv) Runtime() pyenv.Runtime {
	if e.rt != nil {
		return *e.rt
	}
	return pyenv.Runtime{PythonVersion: "3.11.9", TorchVersion: "2.3.1+cu121", CUDAVersion: "12.1"}
}

func (fakeEnv) Libraries() []pyenv.LibraryVersion {
	return []pyenv.LibraryVersion{
		{Key: "torchvision_version", Version: "0.18.1"},
		{Key: "triton_version", Version: "3.0.0"},
		{Key: "opencv_version", Version: pyenv.NotInstalled},
	}
}

var topLevelKeys = []string{
	"python_version", "os", "cpu", "system_ram_gb", "memory", "gpu", "cuda", "pytorch",
}

var nestedKeys = map[string][]string{
	"os":      {"system", "release", "version", "platform"},
	"cpu":     {"brand", "arch", "physical_cores", "logical_cores", "hz_actual", "hz_advertised", "usage"},
	"memory":  {"total", "available", "percent"},
	"gpu":     {"name", "capability"},
	"cuda":    {"available", "version", "device_count", "vram_gb"},
	"pytorch": {"version"},
}

func assertWellFormed(t *testing.T, data []byte, libraryKeys ...string) map[string]any {
	t.Helper()

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range append(topLevelKeys, libraryKeys...) {
		assert.Contains(t, decoded, key)
	}
	for parent, keys := range nestedKeys {
		obj, ok := decoded[parent].(map[string]any)
		require.True(t, ok, "%s is not an object", parent)
		for _, key := range keys {
			assert.Contains(t, obj, key, "%s.%s", parent, key)
		}
	}
	return decoded
}

func TestCollect(t *testing.T) {
	c := NewCollector(&fakeHost{}, fakeAccel{devices: 2}, fakeEnv{})

	r := c.Collect()
	assert.Equal(t, "3.11.9", r.PythonVersion)
	assert.Equal(t, 64, r.SystemRAMGB)
	assert.Equal(t, 64, r.Memory.Total)
	assert.Equal(t, 41.0, r.Memory.Available)
	assert.Equal(t, 30.5, r.Memory.Percent)
	assert.Equal(t, 16, r.CPU.PhysicalCores)
	assert.Equal(t, 1.0, r.CPU.Usage)
	assert.Equal(t, CUDA{Available: true, Version: "12.1", DeviceCount: 2, VRAMGB: 24}, r.CUDA)
	assert.Equal(t, "2.3.1+cu121", r.PyTorch.Version)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	decoded := assertWellFormed(t, data, "torchvision_version", "triton_version", "opencv_version")
	assert.Equal(t, "3.0.0", decoded["triton_version"])
	assert.Equal(t, "AMD Ryzen 9 7950X 16-Core Processor", decoded["cpu"].(map[string]any)["brand"])
}

func TestCollect_StaticFieldsStableDynamicFresh(t *testing.T) {
	c := NewCollector(&fakeHost{}, fakeAccel{devices: 1}, fakeEnv{})

	first := c.Collect()
	second := c.Collect()

	assert.Equal(t, first.OS, second.OS)
	assert.Equal(t, first.CPU.CPUInfo, second.CPU.CPUInfo)
	assert.Equal(t, first.GPU, second.GPU)
	assert.Equal(t, first.CUDA, second.CUDA)
	assert.Equal(t, first.Libraries, second.Libraries)

	assert.NotEqual(t, first.CPU.Usage, second.CPU.Usage)
	assert.NotEqual(t, first.Memory.Available, second.Memory.Available)
}

func TestMarshalJSON_KeyOrder(t *testing.T) {
	r := NewCollector(&fakeHost{}, fakeAccel{}, fakeEnv{}).Collect()

	text, err := r.Text()
	require.NoError(t, err)

	order := append(append([]string{}, topLevelKeys...), "torchvision_version", "triton_version", "opencv_version")
	last := -1
	for _, key := range order {
		idx := strings.Index(text, `"`+key+`":`)
		require.GreaterOrEqual(t, idx, 0, key)
		assert.Greater(t, idx, last, "%s out of order", key)
		last = idx
	}

	assert.True(t, strings.HasPrefix(text, "{\n  \"python_version\": \"3.11.9\""))
}

// failingProbe fails every host query
type failingProbe struct{}

var errUnavailable = errors.New("unavailable")

func (failingProbe) CPUInfo() ([]cpu.InfoStat, error) { return nil, errUnavailable }
func (failingProbe) CPUCounts(bool) (int, error) { return 0, errUnavailable }
func (failingProbe) CPUPercent(time.Duration) ([]float64, error) { return nil, errUnavailable }
func (failingProbe) VirtualMemory() (*mem.VirtualMemoryStat, error) {
	return nil, errUnavailable
}
func (failingProbe) HostInfo() (*host.InfoStat, error) { return nil, errUnavailable }

type failingBackend struct{}

func (failingBackend) DeviceCount(context.Context) (int, error) { return 0, errUnavailable }
func (failingBackend) Device(context.Context, int) (*accel.Device, error) {
	return nil, errUnavailable
}

func TestCollect_EverythingFails(t *testing.T) {
	c := NewCollector(
		system.NewFacts(failingProbe{}, time.Millisecond),
		accel.NewFacts(failingBackend{}, time.Second),
		pyenv.New("/nonexistent/python3", time.Second, nil),
	)

	r := c.Collect()

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var keys []string
	for _, lib := range pyenv.DefaultWatchList {
		keys = append(keys, lib.Key())
	}
	assertWellFormed(t, data, keys...)

	assert.Equal(t, pyenv.Unknown, r.PythonVersion)
	assert.Equal(t, system.UnknownCPU, r.CPU.Brand)
	assert.Equal(t, system.Unknown, r.OS.System)
	assert.Equal(t, 0, r.SystemRAMGB)
	assert.Equal(t, Memory{}, r.Memory)
	assert.Equal(t, 0.0, r.CPU.Usage)
	assert.Equal(t, pyenv.NotInstalled, r.PyTorch.Version)
	for _, lib := range r.Libraries {
		assert.Equal(t, pyenv.NotInstalled, lib.Version, lib.Key)
	}
}

func TestCollect_NoAccelerator(t *testing.T) {
	c := NewCollector(&fakeHost{}, accel.NewFacts(failingBackend{}, time.Second), fakeEnv{})

	r := c.Collect()
	assert.Equal(t, accel.NoGPU, r.GPU.Name)
	assert.Equal(t, accel.NotAvail, r.GPU.Capability)
	assert.False(t, r.CUDA.Available)
	assert.Equal(t, 0, r.CUDA.DeviceCount)
	assert.Equal(t, 0, r.CUDA.VRAMGB)
}

func TestCollect_CPUOnlyTorchOnGPUHost(t *testing.T) {
	env := fakeEnv{rt: &pyenv.Runtime{
		PythonVersion: "3.11.9",
		TorchVersion:  "2.3.1+cpu",
		CUDAVersion:   "N/A",
		TorchLoaded:   true,
	}}
	c := NewCollector(&fakeHost{}, fakeAccel{devices: 1}, env)

	r := c.Collect()
	assert.Equal(t, accel.GPUInfo{Name: accel.NoGPU, Capability: accel.NotAvail}, r.GPU)
	assert.Equal(t, CUDA{Available: false, Version: "N/A"}, r.CUDA)
	assert.Equal(t, "2.3.1+cpu", r.PyTorch.Version)
}

func TestCollect_TorchDevice(t *testing.T) {
	env := fakeEnv{rt: &pyenv.Runtime{
		PythonVersion: "3.11.9",
		TorchVersion:  "2.3.1+cu121",
		CUDAVersion:   "12.1",
		TorchLoaded:   true,
		CUDAAvailable: true,
		DeviceCount:   2,
		Device:        &pyenv.CUDADevice{Name: "NVIDIA A100-SXM4-80GB", Capability: "8.0", TotalMemory: 85899345920},
	}}
	// nvidia-smi disagrees; the framework wins
	c := NewCollector(&fakeHost{}, fakeAccel{}, env)

	r := c.Collect()
	assert.Equal(t, accel.GPUInfo{Name: "NVIDIA A100-SXM4-80GB", Capability: "8.0"}, r.GPU)
	assert.Equal(t, CUDA{Available: true, Version: "12.1", DeviceCount: 2, VRAMGB: 80}, r.CUDA)
}

func TestCollect_TorchDeviceUnnamed(t *testing.T) {
	env := fakeEnv{rt: &pyenv.Runtime{
		TorchVersion:  "2.3.1+cu121",
		CUDAVersion:   "12.1",
		TorchLoaded:   true,
		CUDAAvailable: true,
		DeviceCount:   1,
	}}
	c := NewCollector(&fakeHost{}, fakeAccel{devices: 1}, env)

	r := c.Collect()
	assert.Equal(t, accel.GPUInfo{Name: accel.UnknownGPU, Capability: accel.NotAvail}, r.GPU)
	assert.True(t, r.CUDA.Available)
	assert.Equal(t, 1, r.CUDA.DeviceCount)
	assert.Equal(t, 0, r.CUDA.VRAMGB)
}

func TestReport_KeepsHTMLCharacters(t *testing.T) {
	r := Report{
		OS:        system.OSInfo{System: "Linux", Platform: "Linux-<wsl>&x"},
		Libraries: []pyenv.LibraryVersion{{Key: "numpy_version", Version: "1.26.4"}},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	// json.Marshal re-escapes, so check the raw encoding directly
	raw, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"platform":"Linux-<wsl>&x"`)
	assertWellFormed(t, data, "numpy_version")

	text, err := r.Text()
	require.NoError(t, err)
	assert.Contains(t, text, `"platform": "Linux-<wsl>&x"`)
	assert.NotContains(t, text, `\u003c`)
	assert.NotContains(t, text, `\u0026`)
	assert.True(t, strings.HasSuffix(text, "\n  \"numpy_version\": \"1.26.4\"\n}"))
}
