package fsl

import (
	"context"
	"os/exec"
	"sort"
	"strings"
	"time"

	"sctutils/internal/config"
)

const probeTimeout = 5 * time.Second

// ToolStatus represents the availability of a tool
type ToolStatus struct {
	Available bool
	Version   string
	Path      string
	Error     error
}

// ToolManager reports which of the configured binaries are usable.
type ToolManager struct {
	cfg config.FSL
}

// NewToolManager creates a tool manager for the configured binaries.
func NewToolManager(cfg config.FSL) *ToolManager {
	return &ToolManager{cfg: cfg}
}

// Required lists the binaries the toolkit invokes.
func (tm *ToolManager) Required() []string {
	names := []string{tm.cfg.SizeTool, tm.cfg.OrientationTool, tm.cfg.FileTypeTool}
	sort.Strings(names)
	return names
}

// CheckTool verifies that binary is on PATH and answers a bare invocation.
// FSL tools print usage and exit non-zero without arguments, so any output
// counts as a working binary.
func (tm *ToolManager) CheckTool(ctx context.Context, binary string) ToolStatus {
	path, err := exec.LookPath(binary)
	if err != nil {
		return ToolStatus{Available: false, Error: err}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, path).CombinedOutput()
	if err != nil && len(output) == 0 {
		return ToolStatus{Available: false, Path: path, Error: err}
	}
	return ToolStatus{Available: true, Version: extractVersion(string(output)), Path: path}
}

// GetToolStatus checks every required binary.
func (tm *ToolManager) GetToolStatus(ctx context.Context) map[string]ToolStatus {
	status := make(map[string]ToolStatus)
	for _, name := range tm.Required() {
		status[name] = tm.CheckTool(ctx, name)
	}
	return status
}

// extractVersion extracts version information from tool output
func extractVersion(output string) string {
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.Contains(strings.ToLower(line), "version") {
			return line
		}
	}
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		return strings.TrimSpace(lines[0])
	}
	return "unknown"
}
