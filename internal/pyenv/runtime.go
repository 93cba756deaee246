package pyenv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Unknown is reported when the interpreter cannot be queried
const Unknown = "Unknown"

// NotAvail is reported when the framework exposes no CUDA toolkit version
const NotAvail = "N/A"

// probeScript prints the interpreter, framework and toolkit versions and
// the framework's view of CUDA as JSON on the last line of stdout. A
// missing torch leaves the framework fields out.
const probeScript = `import json, sys
info = {"python_version": sys.version.split()[0]}
try:
    import torch
    info["torch_version"] = torch.__version__
    info["cuda_version"] = getattr(torch.version, "cuda", None)
    available = bool(torch.cuda.is_available())
    info["cuda_available"] = available
    info["device_count"] = torch.cuda.device_count() if available else 0
    if available:
        try:
            props = torch.cuda.get_device_properties(torch.cuda.current_device())
            info["device"] = {
                "name": props.name,
                "capability": "%d.%d" % (props.major, props.minor),
                "total_memory": props.total_memory,
            }
        except Exception:
            pass
except Exception:
    pass
print()
print(json.dumps(info))
`

// CUDADevice is the framework's description of the current CUDA device
type CUDADevice struct {
	Name        string `json:"name"`
	Capability  string `json:"capability"`
	TotalMemory uint64 `json:"total_memory"`
}

// Runtime describes the interpreter and numerical framework
type Runtime struct {
	PythonVersion string
	TorchVersion  string
	CUDAVersion   string

	// TorchLoaded is set when the interpreter imported torch, in which case
	// the CUDA fields below are the framework's answer.
	TorchLoaded   bool
	CUDAAvailable bool
	DeviceCount   int
	// Device is nil when CUDA is unavailable or the device query failed
	Device *CUDADevice
}

type probeResult struct {
	PythonVersion string      `json:"python_version"`
	TorchVersion  string      `json:"torch_version"`
	CUDAVersion   *string     `json:"cuda_version"`
	CUDAAvailable bool        `json:"cuda_available"`
	DeviceCount   int         `json:"device_count"`
	Device        *CUDADevice `json:"device"`
}

func probeRuntime(ctx context.Context, python string) (*probeResult, error) {
	out, err := runCommand(ctx, python, "-c", probeScript)
	if err != nil {
		return nil, fmt.Errorf("failed to probe interpreter: %w", err)
	}
	return parseRuntimeOutput(out)
}

// parseRuntimeOutput decodes the last non-empty line of out. Imports may
// print to stdout before the result.
func parseRuntimeOutput(out []byte) (*probeResult, error) {
	line := lastLine(out)
	if len(line) == 0 {
		return nil, fmt.Errorf("failed to parse probe output: empty output")
	}

	var res probeResult
	if err := json.Unmarshal(line, &res); err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}
	return &res, nil
}

func lastLine(out []byte) []byte {
	lines := bytes.Split(bytes.TrimSpace(out), []byte{'\n'})
	for i := len(lines) - 1; i >= 0; i-- {
		if line := bytes.TrimSpace(lines[i]); len(line) > 0 {
			return line
		}
	}
	return nil
}
