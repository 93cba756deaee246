package system

import (
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Probe is the read-only view of the host used by Facts.
type Probe interface {
	CPUInfo() ([]cpu.InfoStat, error)
	CPUCounts(logical bool) (int, error)
	CPUPercent(interval time.Duration) ([]float64, error)
	VirtualMemory() (*mem.VirtualMemoryStat, error)
	HostInfo() (*host.InfoStat, error)
}

type gopsutilProbe struct{}

// NewProbe returns a Probe backed by gopsutil
func NewProbe() Probe {
	return gopsutilProbe{}
}

func (gopsutilProbe) CPUInfo() ([]cpu.InfoStat, error) {
	return cpu.Info()
}

func (gopsutilProbe) CPUCounts(logical bool) (int, error) {
	return cpu.Counts(logical)
}

func (gopsutilProbe) CPUPercent(interval time.Duration) ([]float64, error) {
	return cpu.Percent(interval, false)
}

func (gopsutilProbe) VirtualMemory() (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemory()
}

func (gopsutilProbe) HostInfo() (*host.InfoStat, error) {
	return host.Info()
}
