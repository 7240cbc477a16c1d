package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	estatecontracts "github.com/goliatone/go-estate/contracts"
	"github.com/goliatone/go-estate/internal/commands"
	contractscmd "github.com/goliatone/go-estate/internal/commands/contracts"
	"github.com/goliatone/go-estate/internal/contracts"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/internal/logging/gologger"
	"github.com/goliatone/go-estate/internal/progression"
	"github.com/goliatone/go-estate/internal/runtimeconfig"
	"github.com/goliatone/go-estate/internal/storage"
	"github.com/goliatone/go-estate/internal/workflow"
	"github.com/goliatone/go-estate/pkg/activity"
	"github.com/goliatone/go-estate/pkg/activity/usersink"
	"github.com/goliatone/go-estate/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// ErrInitialStatusNotOnPath indicates the configured initial status is missing from the workflow path.
var ErrInitialStatusNotOnPath = errors.New("di: initial status is not part of the workflow path")

// CommandSubscription is returned by dispatchers when a handler is registered.
type CommandSubscription interface {
	Unsubscribe()
}

// CommandDispatcher registers command handlers. When none is supplied the
// container subscribes handlers on the go-command global dispatcher.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB           *bun.DB
	ownsDB          bool
	cacheService    repocache.CacheService
	keySerializer   repocache.KeySerializer
	newCacheService func(ttl time.Duration) (repocache.CacheService, error)

	clock         func() time.Time
	activityHooks activity.Hooks
	activitySink  interfaces.ActivitySink
	emitter       *activity.Emitter

	table        *progression.Table
	resolver     *progression.Resolver
	contractRepo contracts.ContractRepository
	contractSvc  contracts.Service

	commandDispatcher CommandDispatcher
	subscriptions     []CommandSubscription

	createHandler     *contractscmd.CreateContractHandler
	transitionHandler *contractscmd.TransitionContractHandler
	actionHandler     *contractscmd.ContractActionHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider built from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an existing database handle. The container will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithClock overrides the time source shared by the resolver and the service.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithActivityHooks registers hooks that receive contract activity.
func WithActivityHooks(hooks activity.Hooks) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithActivitySink forwards contract activity to a go-users sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithContractRepository overrides the repository chosen from configuration.
func WithContractRepository(repo contracts.ContractRepository) Option {
	return func(c *Container) {
		c.contractRepo = repo
	}
}

// WithContractService overrides the default contracts service.
func WithContractService(svc contracts.Service) Option {
	return func(c *Container) {
		c.contractSvc = svc
	}
}

// WithCommandDispatcher routes command registration through dispatcher.
func WithCommandDispatcher(dispatcher CommandDispatcher) Option {
	return func(c *Container) {
		c.commandDispatcher = dispatcher
	}
}

// NewContainer validates cfg and wires the module.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:          cfg,
		clock:           time.Now,
		newCacheService: defaultCacheService,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureWorkflow(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(context.Background()); err != nil {
		return nil, err
	}
	c.configureActivity()
	if err := c.configureContracts(); err != nil {
		c.closeDB()
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.Debug("container.ready",
		"storage", c.Config.Storage.Provider,
		"commands", len(c.subscriptions),
		"activity", c.emitter.Enabled(),
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "")
	return nil
}

func (c *Container) configureWorkflow() error {
	table, err := workflow.CompileTable(c.Config.Workflow)
	if err != nil {
		return err
	}
	c.table = table
	c.resolver = progression.NewResolver(table, progression.WithClock(c.clock))
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.contractRepo != nil {
		return nil
	}
	if !c.usesBun() {
		c.contractRepo = contracts.NewMemoryContractRepository()
		return nil
	}

	logger := logging.StorageLogger(c.loggerProvider)
	if c.bunDB == nil {
		db, err := storage.Open(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
		logger.Info("storage.opened", "driver", c.Config.Storage.Driver)
	}
	if c.Config.Storage.AutoMigrate {
		if err := storage.Migrate(ctx, c.bunDB); err != nil {
			c.closeDB()
			return err
		}
		logger.Info("storage.migrated")
	}

	if err := c.configureCacheDefaults(); err != nil {
		c.closeDB()
		return err
	}
	c.contractRepo = contracts.NewBunContractRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	return nil
}

func (c *Container) usesBun() bool {
	if c.bunDB != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), runtimeconfig.StorageProviderBun)
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.cacheService == nil {
		service, err := c.newCacheService(c.Config.Cache.DefaultTTL)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func defaultCacheService(ttl time.Duration) (repocache.CacheService, error) {
	cfg := repocache.DefaultConfig()
	if ttl > 0 {
		cfg.TTL = ttl
	}
	return repocache.NewCacheService(cfg)
}

func (c *Container) configureActivity() {
	hooks := append(activity.Hooks{}, c.activityHooks...)
	if c.activitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: c.activitySink})
	}
	c.emitter = activity.NewEmitter(hooks, activity.Config{
		Enabled: c.Config.Features.Activity,
		Channel: c.Config.Activity.Channel,
	})
}

func (c *Container) configureContracts() error {
	initial := estatecontracts.DefaultInitialStatus
	if raw := c.Config.Contracts.InitialStatus; raw != "" {
		parsed, err := estatecontracts.ParseStatus(raw)
		if err != nil {
			return err
		}
		initial = parsed
	}
	if c.resolver.CurrentStepIndex(initial) >= c.table.Len() {
		return fmt.Errorf("%w: %s", ErrInitialStatusNotOnPath, initial)
	}

	if c.contractSvc != nil {
		return nil
	}
	c.contractSvc = contracts.NewService(c.contractRepo,
		contracts.WithNow(c.clock),
		contracts.WithResolver(c.resolver),
		contracts.WithInitialStatus(initial),
		contracts.WithExpiryWindow(c.Config.Contracts.ExpiryWindow),
		contracts.WithLogger(logging.ContractsLogger(c.loggerProvider)),
		contracts.WithActivityEmitter(c.emitter),
	)
	return nil
}

func (c *Container) configureCommands() error {
	if !c.Config.Features.Commands {
		return nil
	}
	logger := commands.CommandLogger(c.loggerProvider, "contracts")
	rt := commands.Runtime{
		Timeout:    c.Config.Commands.Timeout,
		MaxRetries: c.Config.Commands.MaxRetries,
	}.Normalize()

	c.createHandler = contractscmd.NewCreateContractHandler(c.contractSvc, logger,
		commands.HandlerOptionsFor[contractscmd.CreateContractCommand](rt)...)
	c.transitionHandler = contractscmd.NewTransitionContractHandler(c.contractSvc, logger,
		commands.HandlerOptionsFor[contractscmd.TransitionContractCommand](rt)...)
	c.actionHandler = contractscmd.NewContractActionHandler(c.contractSvc, logger,
		commands.HandlerOptionsFor[contractscmd.ContractActionCommand](rt)...)

	registrations := []func() (CommandSubscription, error){
		func() (CommandSubscription, error) {
			return subscribeCommand[contractscmd.CreateContractCommand](c.commandDispatcher, c.createHandler, rt)
		},
		func() (CommandSubscription, error) {
			return subscribeCommand[contractscmd.TransitionContractCommand](c.commandDispatcher, c.transitionHandler, rt)
		},
		func() (CommandSubscription, error) {
			return subscribeCommand[contractscmd.ContractActionCommand](c.commandDispatcher, c.actionHandler, rt)
		},
	}
	for _, register := range registrations {
		sub, err := register()
		if err != nil {
			return fmt.Errorf("di: register command: %w", err)
		}
		if sub != nil {
			c.subscriptions = append(c.subscriptions, sub)
		}
	}
	return nil
}

// subscribeCommand registers handler on the injected dispatcher, or on the
// global dispatcher with rt's retry and timeout limits.
func subscribeCommand[T command.Message](registry CommandDispatcher, handler command.Commander[T], rt commands.Runtime) (CommandSubscription, error) {
	if registry != nil {
		return registry.RegisterCommand(handler)
	}
	return dispatcher.SubscribeCommand(handler, rt.RunnerOptions()...), nil
}

// Close releases command subscriptions and any database handle the container opened.
func (c *Container) Close() error {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}
	c.subscriptions = nil
	return c.closeDB()
}

func (c *Container) closeDB() error {
	if !c.ownsDB || c.bunDB == nil {
		return nil
	}
	c.ownsDB = false
	return c.bunDB.Close()
}

// LoggerProvider exposes the configured logger provider; nil means logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// BunDB exposes the database handle when the bun provider is active.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// Table returns the compiled workflow table.
func (c *Container) Table() *progression.Table {
	return c.table
}

// Resolver returns the progression resolver shared with the contracts service.
func (c *Container) Resolver() *progression.Resolver {
	return c.resolver
}

// ContractRepository exposes the configured contract repository.
func (c *Container) ContractRepository() contracts.ContractRepository {
	return c.contractRepo
}

// ContractService returns the configured contracts service.
func (c *Container) ContractService() contracts.Service {
	return c.contractSvc
}

// CreateContractHandler returns the create command handler, nil when commands are disabled.
func (c *Container) CreateContractHandler() *contractscmd.CreateContractHandler {
	return c.createHandler
}

// TransitionContractHandler returns the transition command handler.
func (c *Container) TransitionContractHandler() *contractscmd.TransitionContractHandler {
	return c.transitionHandler
}

// ContractActionHandler returns the action command handler.
func (c *Container) ContractActionHandler() *contractscmd.ContractActionHandler {
	return c.actionHandler
}
