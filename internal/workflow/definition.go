package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/internal/progression"
	"github.com/goliatone/go-estate/internal/runtimeconfig"
)

var (
	// ErrStatusNameRequired indicates a workflow status entry is missing its code.
	ErrStatusNameRequired = errors.New("workflow: status name required")
	// ErrStatusUnknown indicates a status code outside the contract status set.
	ErrStatusUnknown = errors.New("workflow: unknown status")
	// ErrTerminalWithoutPath indicates terminal statuses were configured without a path.
	ErrTerminalWithoutPath = errors.New("workflow: terminal statuses require a linear path")
)

// CompileTable converts the configured workflow into a progression table.
// An empty configuration yields the default brokerage table. Labels and colors
// left blank fall back to the stock values for that status.
func CompileTable(cfg runtimeconfig.WorkflowConfig) (*progression.Table, error) {
	if len(cfg.Path) == 0 {
		if len(cfg.Terminal) > 0 {
			return nil, ErrTerminalWithoutPath
		}
		return progression.DefaultTable(), nil
	}

	defaults := progression.DefaultStatusInfo()
	info := make(map[contracts.Status]progression.StatusInfo, len(cfg.Path)+len(cfg.Terminal))

	path, err := compileStatuses("path", cfg.Path, defaults, info)
	if err != nil {
		return nil, err
	}
	terminal, err := compileStatuses("terminal", cfg.Terminal, defaults, info)
	if err != nil {
		return nil, err
	}

	return progression.NewTable(path, terminal, info)
}

func compileStatuses(
	section string,
	configs []runtimeconfig.WorkflowStatusConfig,
	defaults map[contracts.Status]progression.StatusInfo,
	info map[contracts.Status]progression.StatusInfo,
) ([]contracts.Status, error) {
	out := make([]contracts.Status, 0, len(configs))
	for idx, cfg := range configs {
		raw := strings.TrimSpace(cfg.Status)
		if raw == "" {
			return nil, fmt.Errorf("%w at %s index %d", ErrStatusNameRequired, section, idx)
		}
		status, err := contracts.ParseStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrStatusUnknown, raw)
		}

		attrs := defaults[status]
		if label := strings.TrimSpace(cfg.Label); label != "" {
			attrs.Label = label
		}
		if color := strings.TrimSpace(cfg.Color); color != "" {
			attrs.Color = progression.Color(color)
		}
		info[status] = attrs
		out = append(out, status)
	}
	return out, nil
}
