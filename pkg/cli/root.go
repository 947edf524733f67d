package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/ryotarai/fwctl/pkg/config"
	"github.com/ryotarai/fwctl/pkg/firewall"
	applog "github.com/ryotarai/fwctl/pkg/logger"
	"github.com/ryotarai/fwctl/pkg/runner"
	"github.com/spf13/cobra"
	"os"
	"strings"
)

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

var (
	conf        *config.Config
	fw          firewall.Firewall
	closeLogger = func() error { return nil }
)

var rootFlags struct {
	logLevel   string
	configPath string
}

// errNoAction makes the process exit 1 after the failure object is printed.
var errNoAction = errors.New("no action specified")

// errRootFlag marks an unparsable flag in place of the action.
var errRootFlag = errors.New("unknown action flag")

var newFirewall = func(cfg *config.Config, logger zerolog.Logger) (firewall.Firewall, error) {
	r := runner.NewExec(logger, cfg.Netsh.Timeout, cfg.Netsh.Path)
	return firewall.New(logger, r, cfg.Firewall.Backend, cfg.Netsh.Path)
}

var rootCmd = &cobra.Command{
	Use:           "fwctl",
	Short:         "Query and change the Windows firewall, printing JSON",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.DisableFlagParsing {
			takeGlobalFlags(args)
		}
		return setup()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if err := emit(cmd, runner.Failure("No action specified")); err != nil {
				return err
			}
			return errNoAction
		}
		return emitUnknownAction(cmd, args[0])
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&rootFlags.logLevel, "log-level", "", "", "log level (one of trace, debug, info, warn and error)")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configPath, "config", "", "", "path to a config file")

	// "help" is an ordinary unknown action
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "__help",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emitUnknownAction(cmd, cmd.Name())
		},
	})
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if cmd == rootCmd {
			return fmt.Errorf("%w: %s", errRootFlag, err)
		}
		return err
	})
}

func Execute() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	defer closeLogger()

	if errors.Is(err, errRootFlag) && len(args) > 0 {
		if err := emitUnknownAction(rootCmd, args[0]); err != nil {
			logger.Error().Msg(err.Error())
			return 1
		}
		return 0
	}

	if err != nil {
		if !errors.Is(err, errNoAction) {
			logger.Error().Msg(err.Error())
		}
		return 1
	}
	return 0
}

func setup() error {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return err
	}
	if rootFlags.logLevel != "" {
		cfg.Log.Level = rootFlags.logLevel
	}

	l, err := applog.New(applog.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Path:   cfg.Log.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	logger = l.Logger
	closeLogger = l.Close
	conf = cfg

	fw, err = newFirewall(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up firewall backend: %w", err)
	}

	return nil
}

// takeGlobalFlags applies leading --log-level and --config flags for
// commands that receive their arguments verbatim, and returns the rest.
func takeGlobalFlags(args []string) []string {
	for len(args) > 0 {
		name, value, hasValue := strings.Cut(args[0], "=")
		var target *string
		switch name {
		case "--log-level":
			target = &rootFlags.logLevel
		case "--config":
			target = &rootFlags.configPath
		default:
			return args
		}

		if hasValue {
			args = args[1:]
		} else if len(args) > 1 {
			value = args[1]
			args = args[2:]
		} else {
			return args
		}
		*target = value
	}
	return args
}

// verbatim wraps an operation so it only sees its positional arguments.
func verbatim(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return run(cmd, takeGlobalFlags(args))
	}
}

func emitUnknownAction(cmd *cobra.Command, action string) error {
	return emit(cmd, runner.Failure(fmt.Sprintf("Unknown action: %s", action)))
}

// emit writes v as a single JSON line to the command's stdout.
func emit(cmd *cobra.Command, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
