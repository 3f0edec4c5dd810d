package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dimensions "github.com/goliatone/go-dimensions"
	"github.com/goliatone/go-dimensions/internal/logger"
)

// ConfigEnv names the environment variable consulted when --config is not set.
const ConfigEnv = "DIMENSIONS_CONFIG"

const defaultConfigPath = "dimensions.yaml"

type rootOptions struct {
	configPaths []string
	envFile     string
	logLevel    string
	logEnv      string
}

// app carries the state shared by subcommands once the root pre-run succeeds.
type app struct {
	log      *zap.Logger
	resolver *dimensions.Resolver
}

// Execute runs the dimensions command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := rootOptions{}
	state := &app{}
	cmd := &cobra.Command{
		Use:          "dimensions",
		Short:        "Resolve content dimensions for request URIs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.init(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if state.log != nil {
				_ = state.log.Sync()
			}
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&opts.configPaths, "config", nil, "dimension config paths (yaml or json), later files override earlier ones; defaults to $"+ConfigEnv+" or "+defaultConfigPath)
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the config")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logEnv, "log-env", "dev", "log format: dev or prod")

	cmd.AddCommand(newResolveCmd(state))
	cmd.AddCommand(newEvalCmd(state))
	return cmd
}

func (a *app) init(cmd *cobra.Command, opts rootOptions) error {
	if err := loadEnvFile(opts.envFile); err != nil {
		return err
	}
	a.log = logger.New(logger.Config{
		Env:    opts.logEnv,
		Level:  opts.logLevel,
		Output: cmd.ErrOrStderr(),
	})

	paths := resolveConfigPaths(opts.configPaths)
	cfg, err := dimensions.LoadConfigLayers(paths...)
	if err != nil {
		return err
	}
	a.log.Debug("config loaded",
		zap.Strings("paths", paths),
		zap.Strings("dimensions", cfg.Names()),
		zap.String("snapshot_id", cfg.SnapshotID),
	)

	zl := dimensions.NewZapLogger(a.log)
	a.resolver = dimensions.NewResolver(cfg,
		dimensions.WithResolutionLogger(zl),
		dimensions.WithEvaluatorLogger(zl),
	)
	return nil
}

func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

func resolveConfigPaths(flagValues []string) []string {
	if paths := dimensions.SplitConfigPaths(strings.Join(flagValues, ",")); len(paths) > 0 {
		return paths
	}
	if paths := dimensions.SplitConfigPaths(os.Getenv(ConfigEnv)); len(paths) > 0 {
		return paths
	}
	return []string{defaultConfigPath}
}
