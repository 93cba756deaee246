package report

import (
	"bytes"
	"encoding/json"

	"github.com/ngenohkevin/sysinfo-agent/internal/accel"
	"github.com/ngenohkevin/sysinfo-agent/internal/pyenv"
	"github.com/ngenohkevin/sysinfo-agent/internal/system"
)

// CPU merges static CPU identity with the current utilization
type CPU struct {
	system.CPUInfo
	Usage float64 `json:"usage"`
}

// Memory contains total RAM and the current sample
type Memory struct {
	Total     int     `json:"total"`
	Available float64 `json:"available"`
	Percent   float64 `json:"percent"`
}

// CUDA describes accelerator availability
type CUDA struct {
	Available   bool   `json:"available"`
	Version     string `json:"version"`
	DeviceCount int    `json:"device_count"`
	VRAMGB      int    `json:"vram_gb"`
}

// PyTorch holds the framework version
type PyTorch struct {
	Version string `json:"version"`
}

// Report is a full system snapshot. Every field always holds a value;
// failed queries show up as sentinel values.
type Report struct {
	PythonVersion string
	OS            system.OSInfo
	CPU           CPU
	SystemRAMGB   int
	Memory        Memory
	GPU           accel.GPUInfo
	CUDA          CUDA
	PyTorch       PyTorch
	Libraries     []pyenv.LibraryVersion
}

type field struct {
	key   string
	value any
}

func (r Report) fields() []field {
	fields := []field{
		{"python_version", r.PythonVersion},
		{"os", r.OS},
		{"cpu", r.CPU},
		{"system_ram_gb", r.SystemRAMGB},
		{"memory", r.Memory},
		{"gpu", r.GPU},
		{"cuda", r.CUDA},
		{"pytorch", r.PyTorch},
	}
	for _, lib := range r.Libraries {
		fields = append(fields, field{lib.Key, lib.Version})
	}
	return fields
}

// MarshalJSON encodes the report as one flat object. Keys keep a fixed
// order with library versions last, in watch-list order. HTML characters
// are left as typed.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(&buf, f.key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeValue(&buf, f.value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Text renders the report as indented JSON for display
func (r Report) Text() (string, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}
