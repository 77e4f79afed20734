// Package main provides the clinanno command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/clinanno/internal/catalog"
	"github.com/inodb/clinanno/internal/clinvar"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".clinanno"

// logger is replaced in the root command's PersistentPreRunE.
var logger = zap.NewNop()

// usageError marks errors caused by invalid command-line input.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "clinanno",
		Short: "Annotate VCF files with ClinVar PS1/PM5 evidence",
		Long: `clinanno adds ACMG PS1 and PM5 evidence to VCF records by comparing each
record's RefSeq protein change with pathogenic ClinVar variants at the same
residue.

Build the ClinVar catalog once with "clinanno build", then annotate files
with "clinanno annotate".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			logger = l
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.clinanno.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initConfig loads .env, the config file and CLINANNO_ environment variables.
func initConfig(cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	home, _ := os.UserHomeDir()
	setDefaults(home)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home != "" {
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CLINANNO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv("ncbi.api_key", "CLINANNO_NCBI_API_KEY", "NCBI_API_KEY")
	viper.BindEnv("ncbi.email", "CLINANNO_NCBI_EMAIL", "NCBI_EMAIL")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func setDefaults(home string) {
	viper.SetDefault("catalog.path", catalog.DefaultPath())
	viper.SetDefault("build.workdir", filepath.Join(home, ".clinanno", "checkpoints"))
	viper.SetDefault("build.delay", clinvar.DefaultDelay.String())
	viper.SetDefault("annotate.workers", 0)
	viper.SetDefault("ncbi.base_url", clinvar.DefaultBaseURL)
	viper.SetDefault("ncbi.tool", "clinanno")
	viper.SetDefault("ncbi.retmax", clinvar.DefaultRetMax)
	viper.SetDefault("ncbi.timeout", (30 * time.Minute).String())
}

// bindFlags binds config keys to the named flags of the running command.
// Call it from PreRunE; several commands bind the same key.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// newLogger builds a console logger on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	cfg.DisableStacktrace = !verbose
	return cfg.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clinanno version %s (%s) built %s\n", version, commit, date)
		},
	}
}
