package commands

import (
	"strings"

	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

const (
	commandModuleRoot    = "estate.commands"
	defaultCommandModule = "contracts"
)

// CommandLogger returns the logger for a command module such as "contracts".
// Entries carry component=command so they can be told apart from the
// service logs of the same module.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.ToLower(strings.TrimSpace(module))
	if name == "" {
		name = defaultCommandModule
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
