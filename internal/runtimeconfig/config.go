package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-estate/contracts"
)

var ErrStorageProviderUnknown = errors.New("estate config: storage provider is invalid")
var ErrStorageDriverUnknown = errors.New("estate config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("estate config: storage dsn is required for the bun provider")
var ErrCacheTTLInvalid = errors.New("estate config: cache ttl must be positive when cache is enabled")
var ErrLoggingProviderRequired = errors.New("estate config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("estate config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("estate config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("estate config: logging format is invalid")
var ErrInitialStatusInvalid = errors.New("estate config: contracts initial status is invalid")
var ErrExpiryWindowInvalid = errors.New("estate config: contracts expiry window must be zero or positive")
var ErrCommandTimeoutInvalid = errors.New("estate config: command timeout must be zero or positive")
var ErrCommandRetriesInvalid = errors.New("estate config: command max retries must be zero or positive")

const (
	StorageProviderMemory = "memory"
	StorageProviderBun    = "bun"

	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// Config aggregates feature flags and adapter bindings for the estate module.
type Config struct {
	Storage   StorageConfig
	Cache     CacheConfig
	Logging   LoggingConfig
	Workflow  WorkflowConfig
	Contracts ContractsConfig
	Activity  ActivityConfig
	Commands  CommandsConfig
	Features  Features
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
	// AutoMigrate creates the contract tables when the bun provider starts.
	AutoMigrate bool
}

// CacheConfig captures read cache behaviour for bun repositories.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// WorkflowConfig overrides the status table. Leaving Path empty keeps the default table.
type WorkflowConfig struct {
	Path     []WorkflowStatusConfig
	Terminal []WorkflowStatusConfig
}

// WorkflowStatusConfig declares a status and its display attributes.
type WorkflowStatusConfig struct {
	Status string
	Label  string
	Color  string
}

// ContractsConfig captures contract service defaults.
type ContractsConfig struct {
	InitialStatus string
	// ExpiryWindow is the lookahead used for the "expiring soon" dashboard count.
	ExpiryWindow time.Duration
}

// ActivityConfig controls activity emission for contract changes.
type ActivityConfig struct {
	Channel string
}

// CommandsConfig bounds command execution. A zero Timeout uses the handler default.
type CommandsConfig struct {
	Timeout    time.Duration
	MaxRetries int
}

// Features toggles module functionality.
type Features struct {
	Logger   bool
	Commands bool
	Activity bool
}

// DefaultConfig returns an in-memory configuration with the stock workflow.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: StorageProviderMemory,
			Driver:   StorageDriverSQLite,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
		Contracts: ContractsConfig{
			InitialStatus: string(contracts.DefaultInitialStatus),
			ExpiryWindow:  30 * 24 * time.Hour,
		},
		Activity: ActivityConfig{
			Channel: "estate",
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
		Features: Features{
			Commands: true,
		},
	}
}

// Validate ensures the configuration is internally consistent.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Provider) {
	case "", StorageProviderMemory:
	case StorageProviderBun:
		switch normalize(cfg.Storage.Driver) {
		case StorageDriverSQLite, StorageDriverPostgres:
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	if raw := strings.TrimSpace(cfg.Contracts.InitialStatus); raw != "" {
		if _, err := contracts.ParseStatus(raw); err != nil {
			return fmt.Errorf("%w: %s", ErrInitialStatusInvalid, raw)
		}
	}
	if cfg.Contracts.ExpiryWindow < 0 {
		return ErrExpiryWindowInvalid
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Commands.MaxRetries < 0 {
		return ErrCommandRetriesInvalid
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
