package node

import (
	"context"
	"fmt"

	"github.com/ngenohkevin/sysinfo-agent/internal/report"
)

// System info node identity
const (
	SystemInfoID          = "SysInfoDisplay"
	SystemInfoDisplayName = "System Info"
	SystemInfoCategory    = "utils"
)

// Reporter produces a system report
type Reporter interface {
	Collect() report.Report
}

// SystemInfo displays the system report as indented JSON text. It takes no
// inputs and produces no typed outputs.
type SystemInfo struct {
	reporter Reporter
}

// NewSystemInfo creates the system info node
func NewSystemInfo(reporter Reporter) *SystemInfo {
	return &SystemInfo{reporter: reporter}
}

// Execute collects a report and renders it for the UI
func (n *SystemInfo) Execute(ctx context.Context) (Output, error) {
	text, err := n.reporter.Collect().Text()
	if err != nil {
		return Output{}, fmt.Errorf("failed to render report: %w", err)
	}
	return Output{UI: UI{Text: text}}, nil
}

// RegisterSystemInfo adds the system info node to reg
func RegisterSystemInfo(reg *Registry, reporter Reporter) error {
	return reg.Register(Definition{
		ID:          SystemInfoID,
		DisplayName: SystemInfoDisplayName,
		Category:    SystemInfoCategory,
		OutputNode:  true,
		Node:        NewSystemInfo(reporter),
	})
}
