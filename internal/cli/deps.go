package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/brew"
	"github.com/phpswitch/phpswitch/pkg/brewcache"
	"github.com/phpswitch/phpswitch/pkg/config"
	"github.com/phpswitch/phpswitch/pkg/execx"
	"github.com/phpswitch/phpswitch/pkg/registry"
	"github.com/phpswitch/phpswitch/pkg/resolver"
	"github.com/phpswitch/phpswitch/pkg/services"
	"github.com/phpswitch/phpswitch/pkg/shellsync"
	"github.com/phpswitch/phpswitch/pkg/switcher"
)

// engine bundles the wired components a command operates on. Commands
// build one per invocation; construction is cheap and hits no external
// process.
type engine struct {
	cfg      config.Config
	brew     *brew.Brew
	store    *brewcache.Store
	registry *registry.Client
	resolver *resolver.Resolver
	shell    *shellsync.Synchronizer
	services *services.Manager
	switcher *switcher.Switcher
	log      *log.Logger
}

// buildEngine wires the component graph using the logger from the command
// context and the config resolved from --config or the home dotfile.
func buildEngine(cmd *cobra.Command) (*engine, error) {
	logger := loggerFromContext(cmd.Context())

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	runner := execx.NewSystem(logger)
	b := brew.New(runner, logger)

	store, err := brewcache.NewDefaultStore()
	if err != nil {
		return nil, err
	}
	reg := registry.New(b, store, logger)

	sh, err := shellsync.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	res := resolver.New(b, runner, logger)
	svc := services.NewManager(runner, logger)

	sw := switcher.New(switcher.Deps{
		Registry: reg,
		Brew:     b,
		Shell:    sh,
		Services: svc,
		Resolver: res,
		Config:   cfg,
		Logger:   logger,
	})

	return &engine{
		cfg:      cfg,
		brew:     b,
		store:    store,
		registry: reg,
		resolver: res,
		shell:    sh,
		services: svc,
		switcher: sw,
		log:      logger,
	}, nil
}

// loadConfig honors the persistent --config flag and falls back to the
// canonical dotfile.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
