package estate

import (
	"github.com/goliatone/go-estate/internal/di"
	"github.com/goliatone/go-estate/internal/runtimeconfig"
)

var (
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrInitialStatusInvalid    = runtimeconfig.ErrInitialStatusInvalid
	ErrExpiryWindowInvalid     = runtimeconfig.ErrExpiryWindowInvalid
	ErrCommandTimeoutInvalid   = runtimeconfig.ErrCommandTimeoutInvalid
	ErrCommandRetriesInvalid   = runtimeconfig.ErrCommandRetriesInvalid
	ErrInitialStatusNotOnPath  = di.ErrInitialStatusNotOnPath
)

type (
	Config               = runtimeconfig.Config
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	WorkflowConfig       = runtimeconfig.WorkflowConfig
	WorkflowStatusConfig = runtimeconfig.WorkflowStatusConfig
	ContractsConfig      = runtimeconfig.ContractsConfig
	ActivityConfig       = runtimeconfig.ActivityConfig
	CommandsConfig       = runtimeconfig.CommandsConfig
	Features             = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
