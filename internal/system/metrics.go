package system

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/ngenohkevin/sysinfo-agent/internal/cache"
)

const gib = 1024 * 1024 * 1024

// DefaultSampleWindow is how long CPUUsage measures utilization
const DefaultSampleWindow = 100 * time.Millisecond

var advertisedClock = regexp.MustCompile(`@\s*([0-9]+(?:\.[0-9]+)?)\s*GHz`)

// Facts answers host queries. CPU, SystemRAM and OS are computed once per
// Facts; Memory and CPUUsage are sampled on every call.
type Facts struct {
	probe        Probe
	sampleWindow time.Duration

	cpu cache.Lazy[CPUInfo]
	ram cache.Lazy[int]
	os  cache.Lazy[OSInfo]
}

// NewFacts creates host facts backed by probe
func NewFacts(probe Probe, sampleWindow time.Duration) *Facts {
	if sampleWindow <= 0 {
		sampleWindow = DefaultSampleWindow
	}
	return &Facts{
		probe:        probe,
		sampleWindow: sampleWindow,
	}
}

// CPU returns static CPU information. Arch and core counts are queried
// independently of the brand and clock, which degrade to "Unknown CPU"
// and "N/A". The clock is read once along with the brand, so hz_actual
// is the reported rated or maximum frequency rather than the momentary
// one.
func (f *Facts) CPU() CPUInfo {
	return f.cpu.Get(func() CPUInfo {
		info := CPUInfo{
			Brand:        UnknownCPU,
			Arch:         f.arch(),
			HzActual:     NotAvail,
			HzAdvertised: NotAvail,
		}

		if n, err := f.probe.CPUCounts(false); err == nil {
			info.PhysicalCores = n
		} else {
			log.Printf("[facts] physical core count unavailable: %v", err)
		}
		if n, err := f.probe.CPUCounts(true); err == nil {
			info.LogicalCores = n
		} else {
			log.Printf("[facts] logical core count unavailable: %v", err)
		}

		stats, err := f.probe.CPUInfo()
		if err != nil || len(stats) == 0 {
			log.Printf("[facts] cpu details unavailable: %v", err)
			return info
		}

		if stats[0].ModelName != "" {
			info.Brand = stats[0].ModelName
		}
		if stats[0].Mhz > 0 {
			info.HzActual = formatGHz(stats[0].Mhz / 1000)
			info.HzAdvertised = info.HzActual
		}
		if m := advertisedClock.FindStringSubmatch(info.Brand); m != nil {
			if ghz, err := strconv.ParseFloat(m[1], 64); err == nil {
				info.HzAdvertised = formatGHz(ghz)
			}
		}

		return info
	})
}

func (f *Facts) arch() string {
	if info, err := f.probe.HostInfo(); err == nil && info.KernelArch != "" {
		return info.KernelArch
	}
	return runtime.GOARCH
}

// SystemRAM returns total RAM in whole GB, or 0 if it cannot be read
func (f *Facts) SystemRAM() int {
	return f.ram.Get(func() int {
		vmem, err := f.probe.VirtualMemory()
		if err != nil {
			log.Printf("[facts] total memory unavailable: %v", err)
			return 0
		}
		return int(math.Round(float64(vmem.Total) / gib))
	})
}

// Memory samples available RAM and utilization. Never cached.
func (f *Facts) Memory() MemorySample {
	sample, err := f.getMemorySample()
	if err != nil {
		log.Printf("[facts] memory sample failed: %v", err)
		return MemorySample{}
	}
	return *sample
}

func (f *Facts) getMemorySample() (*MemorySample, error) {
	vmem, err := f.probe.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get virtual memory: %w", err)
	}

	return &MemorySample{
		AvailableGB: round1(float64(vmem.Available) / gib),
		Percent:     round1(vmem.UsedPercent),
	}, nil
}

// CPUUsage measures utilization over the sample window, blocking the
// caller for that long. Never cached.
func (f *Facts) CPUUsage() float64 {
	percent, err := f.probe.CPUPercent(f.sampleWindow)
	if err != nil {
		log.Printf("[facts] cpu sample failed: %v", err)
		return 0
	}
	if len(percent) == 0 {
		return 0
	}
	return round1(percent[0])
}

func formatGHz(ghz float64) string {
	return fmt.Sprintf("%.4f GHz", ghz)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
