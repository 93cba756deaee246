package accel

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const (
	smiIdxName = iota
	smiIdxComputeCap
	smiIdxMemTotal
)

const smiDeviceFields = 3

var runSmiCommand = runSmiDefault

func runSmiDefault(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, args[0], args[1:]...).Output()
}

// SMI queries NVIDIA devices through the nvidia-smi command line tool.
type SMI struct {
	path string
}

// NewSMI returns a backend that runs the nvidia-smi binary at path
func NewSMI(path string) *SMI {
	if path == "" {
		path = "nvidia-smi"
	}
	return &SMI{path: path}
}

// DeviceCount returns the number of visible GPUs
func (s *SMI) DeviceCount(ctx context.Context) (int, error) {
	out, err := runSmiCommand(ctx, s.path, "--query-gpu=count", "--format=csv,noheader,nounits")
	if err != nil {
		return 0, fmt.Errorf("nvidia-smi failed: %w", err)
	}

	rows := parseSmiOutput(out)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}

	count, err := strconv.Atoi(rows[0][0])
	if err != nil {
		return 0, fmt.Errorf("failed to parse device count %q: %w", rows[0][0], err)
	}
	return count, nil
}

// Device returns identity and memory of the GPU at index
func (s *SMI) Device(ctx context.Context, index int) (*Device, error) {
	out, err := runSmiCommand(ctx, s.path,
		"--query-gpu=name,compute_cap,memory.total",
		"--format=csv,noheader,nounits",
		"--id="+strconv.Itoa(index))
	if err != nil {
		return nil, fmt.Errorf("nvidia-smi failed: %w", err)
	}

	rows := parseSmiOutput(out)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data for gpu %d", index)
	}
	return parseDevice(index, rows[0])
}

func parseDevice(index int, fields []string) (*Device, error) {
	if len(fields) < smiDeviceFields {
		return nil, fmt.Errorf("gpu %d: expected %d fields, got %d", index, smiDeviceFields, len(fields))
	}

	name := fields[smiIdxName]
	if name == "" || isSmiNA(name) {
		return nil, fmt.Errorf("gpu %d: empty name", index)
	}

	dev := &Device{Index: index, Name: name, Capability: NotAvail}
	if cc := fields[smiIdxComputeCap]; cc != "" && !isSmiNA(cc) {
		dev.Capability = cc
	}
	// Memory is optional; an unparsable value leaves it at zero.
	if v, err := strconv.ParseFloat(fields[smiIdxMemTotal], 64); err == nil {
		dev.MemoryTotalMiB = v
	}
	return dev, nil
}

func parseSmiOutput(out []byte) [][]string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte{'\n'})
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		parts := strings.Split(string(line), ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		rows = append(rows, parts)
	}
	return rows
}

func isSmiNA(v string) bool {
	return v == "[N/A]" || v == "N/A" || strings.HasPrefix(v, "[Not Supported")
}
