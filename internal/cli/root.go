// Package cli implements the dwitlit command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/dwitlit/internal/jsonl"
	"github.com/mesh-intelligence/dwitlit/internal/paths"
	"github.com/mesh-intelligence/dwitlit/pkg/dwitlit"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// userErrors are failures caused by the input rather than the environment.
var userErrors = []error{
	errUsage,
	types.ErrNotFound,
	types.ErrInvalidIdentifier,
	types.ErrRejectedReference,
	types.ErrCycle,
	types.ErrHasBacklinks,
	types.ErrBackendUnknown,
	types.ErrDriverUnknown,
	types.ErrBusyTimeoutInvalid,
	jsonl.ErrMalformedLine,
}

// errUsage marks argument and flag errors detected by the commands.
var errUsage = errors.New("usage")

// usageError wraps a message as a user error.
func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// exitCode maps a command error to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// app holds state shared by one invocation of the root command.
type app struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	verbose   bool

	v   *viper.Viper
	log *logrus.Logger

	// started is set once flags and arguments were accepted and a command
	// began running.
	started bool
}

func newApp() *app {
	return &app{v: viper.New(), log: logrus.New()}
}

// NewRootCmd creates the top-level "dwitlit" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dwitlit",
		Short: "An embedded graph-structured record store",
		Long: "dwitlit stores labeled records with ordered links to other records,\n" +
			"deduplicates identical records and keeps backlink indexes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (env "+paths.EnvDataDir+")")
	pf.StringVar(&a.backend, "backend", "", "storage backend: sqlite or memory")
	pf.BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newCreateCmd(a),
		newGetCmd(a),
		newRemoveCmd(a),
		newConfirmCmd(a),
		newListCmd(a),
		newLinksCmd(a),
		newBacklinksCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command with args and returns the exit code.
// Errors are printed to stderr. Flag, argument and unknown-command errors
// are user errors.
func Execute(args []string, stdout, stderr io.Writer) int {
	a := newApp()
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "error:", err)
	if !a.started {
		return exitUserError
	}
	return exitCode(err)
}

// setup configures logging and loads configuration.
func (a *app) setup(cmd *cobra.Command) error {
	// Cobra checks required flags and flag groups after this hook runs.
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return err
	}
	if err := cmd.ValidateFlagGroups(); err != nil {
		return err
	}
	a.started = true
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetLevel(logrus.WarnLevel)
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}

	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = configDir

	if err := a.loadConfig(); err != nil {
		return err
	}
	if err := a.v.BindPFlag(cfgKeyBackend, cmd.Root().PersistentFlags().Lookup("backend")); err != nil {
		return fmt.Errorf("bind backend flag: %w", err)
	}

	dataDir, err := paths.ResolveDataDir(a.dataDir, a.v.GetString(cfgKeyDataDir))
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.dataDir = dataDir

	a.log.WithFields(logrus.Fields{
		"config_dir": a.configDir,
		"data_dir":   a.dataDir,
		"backend":    a.v.GetString(cfgKeyBackend),
	}).Debug("configuration resolved")
	return nil
}

// storeConfig builds the store configuration from flags and config.yaml.
func (a *app) storeConfig() types.Config {
	return types.Config{
		Backend: a.v.GetString(cfgKeyBackend),
		DataDir: a.dataDir,
		SQLite: types.SQLiteConfig{
			Driver:        a.v.GetString(cfgKeySQLiteDriver),
			BusyTimeoutMS: a.v.GetInt(cfgKeyBusyTimeout),
		},
		Logger: a.log,
	}
}

// openStore opens the configured store. The caller closes it.
func (a *app) openStore() (types.Store, error) {
	cfg := a.storeConfig()
	if cfg.Backend == types.BackendMemory {
		a.log.Warn("memory backend does not persist between commands")
	}
	s, err := dwitlit.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

// withStore opens the store, runs fn and closes the store.
func (a *app) withStore(fn func(s types.Store) error) (err error) {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	return fn(s)
}
