package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/hylla/portdash/internal/adapters/remote/httpclient"
	"github.com/hylla/portdash/internal/config"
	"github.com/hylla/portdash/internal/dashboard"
	"github.com/hylla/portdash/internal/platform"
	"github.com/hylla/portdash/internal/tui"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// annotationSkipConfig marks commands that only need resolved paths.
const annotationSkipConfig = "portdash/skip-config"

// errNotSignedIn is returned by commands that need an authorized identity.
var errNotSignedIn = errors.New("not signed in as an admin; run `portdash login <user-id> --admin`")

// program is the part of tea.Program used by the TUI command.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests swap it out.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// cli holds flag values and the runtime resolved before each command.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	appName    string
	devMode    bool
	baseURL    string

	paths        platform.Paths
	defaults     config.Config
	cfg          config.Config
	dbOverridden bool
	logger       *runtimeLogger
}

// run executes one CLI invocation.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := fang.Execute(ctx, root, fang.WithVersion(version))
	if closeErr := c.logger.Close(); closeErr != nil && c.logger.shouldLogToSink(c.logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
	return err
}

// newRootCmd builds the command tree. The bare command runs the dashboard TUI.
func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "portdash",
		Short: "Manage your portfolio projects from the terminal",
		Long: `portdash is a terminal dashboard for the projects you publish on your portfolio site.

Run it without a subcommand to browse, page through, and delete your projects.
Use "portdash serve" to host a local project service with the same REST routes.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}

	appName := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("PORTDASH_APP_NAME")); envApp != "" {
		appName = envApp
	}
	devMode := version == "dev"
	if envDev, ok := parseBoolEnv("PORTDASH_DEV_MODE"); ok {
		devMode = envDev
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to sqlite database used by serve and seed")
	flags.StringVar(&c.appName, "app", appName, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", devMode, "use dev mode paths (<app>-dev)")
	flags.StringVar(&c.baseURL, "base-url", "", "override remote.base_url")

	root.AddCommand(
		newListCmd(c),
		newDeleteCmd(c),
		newLoginCmd(c),
		newServeCmd(c),
		newSeedCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newPathsCmd(c),
	)
	return root
}

// resolve computes paths, loads config, and configures the runtime logger for cmd.
func (c *cli) resolve(cmd *cobra.Command) error {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
	if err != nil {
		return err
	}
	c.paths = paths
	if _, skip := cmd.Annotations[annotationSkipConfig]; skip {
		return nil
	}

	if strings.TrimSpace(c.configPath) == "" {
		c.configPath = paths.ConfigPath
		if envPath := strings.TrimSpace(os.Getenv("PORTDASH_CONFIG")); envPath != "" {
			c.configPath = envPath
		}
	}
	c.dbOverridden = strings.TrimSpace(c.dbPath) != ""
	if !c.dbOverridden {
		c.dbPath = paths.DBPath
		if envPath := strings.TrimSpace(os.Getenv("PORTDASH_DB_PATH")); envPath != "" {
			c.dbPath = envPath
			c.dbOverridden = true
		}
	}

	c.defaults = config.Default(c.dbPath)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Logging.DevFile.Dir) == "" {
		cfg.Logging.DevFile.Dir = paths.LogDir
	}
	c.cfg = cfg

	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if cmd == cmd.Root() {
		// The dashboard owns the terminal; runtime logs go to the dev file only.
		logger.SetConsoleEnabled(false)
	}
	c.logger = logger

	logger.Info("startup configuration resolved", "app", c.appName, "dev_mode", c.devMode, "command", cmd.Name())
	logger.Debug("runtime paths resolved", "config_path", c.configPath, "data_dir", paths.DataDir, "db_path", c.dbPath)
	logger.Info("configuration loaded", "config_path", c.configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return nil
}

// loadConfig reads the config file and applies flag overrides.
func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath, c.defaults)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", c.configPath, err)
	}
	if c.dbOverridden {
		cfg.Database.Path = c.dbPath
	}
	if baseURL := strings.TrimSpace(c.baseURL); baseURL != "" {
		cfg.Remote.BaseURL = baseURL
	}
	return cfg, nil
}

// remoteClient builds the HTTP project client from the remote config.
func (c *cli) remoteClient() (*httpclient.Client, error) {
	client, err := httpclient.New(
		c.cfg.Remote.BaseURL,
		httpclient.WithTimeout(time.Duration(c.cfg.Remote.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("configure project client: %w", err)
	}
	return client, nil
}

// runTUI starts the dashboard program.
func (c *cli) runTUI(ctx context.Context) error {
	client, err := c.remoteClient()
	if err != nil {
		return err
	}
	actors := &configActorProvider{cli: c, last: actorFromConfig(c.cfg)}
	m := tui.NewModel(
		client,
		actors,
		tui.WithNavigator(dashboard.NewClipboardNavigator(c.cfg.Remote.BaseURL)),
		tui.WithLogger(c.logger),
		tui.WithMarkdownStyle(os.Getenv("GLAMOUR_STYLE")),
	)

	c.logger.Info("command flow start", "command", "tui", "base_url", c.cfg.Remote.BaseURL)
	if _, err := programFactory(m).Run(); err != nil {
		c.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	c.logger.Info("command flow complete", "command", "tui")
	return nil
}

// configActorProvider re-reads the identity section each time the dashboard asks for the actor.
type configActorProvider struct {
	cli  *cli
	last dashboard.Actor
}

// CurrentActor returns the configured identity, keeping the last good one when the file cannot be read.
func (p *configActorProvider) CurrentActor() dashboard.Actor {
	cfg, err := p.cli.loadConfig()
	if err != nil {
		p.cli.logger.Warn("identity reload failed", "config_path", p.cli.configPath, "err", err)
		return p.last
	}
	p.last = actorFromConfig(cfg)
	return p.last
}

// actorFromConfig maps the identity section to a dashboard actor.
func actorFromConfig(cfg config.Config) dashboard.Actor {
	userID := strings.TrimSpace(cfg.Identity.UserID)
	return dashboard.Actor{
		ID:           userID,
		IsAuthorized: userID != "" && cfg.Identity.IsAdmin,
	}
}

// parseBoolEnv parses a boolean environment variable, reporting whether it was set and valid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
