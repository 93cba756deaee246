package system

// Fallback values reported when a query cannot be answered
const (
	UnknownCPU = "Unknown CPU"
	Unknown    = "Unknown"
	NotAvail   = "N/A"
)

// CPUInfo contains static CPU identification
type CPUInfo struct {
	Brand         string `json:"brand"`
	Arch          string `json:"arch"`
	PhysicalCores int    `json:"physical_cores"`
	LogicalCores  int    `json:"logical_cores"`
	// HzActual is the clock gopsutil reports. On Linux that is
	// cpuinfo_max_freq when cpufreq is present, not a live reading.
	HzActual      string `json:"hz_actual"`
	HzAdvertised  string `json:"hz_advertised"`
}

// OSInfo contains operating system identification
type OSInfo struct {
	System   string `json:"system"`
	Release  string `json:"release"`
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

// MemorySample is a point-in-time view of RAM usage
type MemorySample struct {
	AvailableGB float64 `json:"available"`
	Percent     float64 `json:"percent"`
}
