package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage clinanno configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.clinanno.yaml.
Every key can also be set through the environment, e.g. CLINANNO_BUILD_DELAY=10s.`,
		Example: `  clinanno config                                 # show effective config
  clinanno config set ncbi.email me@example.org    # set a value
  clinanno config set build.delay 10s
  clinanno config get catalog.path                 # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if ncbi, ok := settings["ncbi"].(map[string]any); ok {
		if _, set := ncbi["api_key"]; set {
			ncbi["api_key"] = "<redacted>"
		}
	}

	if f := viper.ConfigFileUsed(); f != "" {
		fmt.Fprintf(w, "# Config file: %s\n", f)
	} else {
		fmt.Fprintf(w, "# No config file. Defaults apply; write one with: clinanno config set <key> <value>\n")
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

// configKeys lists the settings that config set accepts.
var configKeys = []string{
	"catalog.path",
	"build.workdir",
	"build.delay",
	"annotate.workers",
	"ncbi.api_key",
	"ncbi.email",
	"ncbi.base_url",
	"ncbi.tool",
	"ncbi.retmax",
	"ncbi.timeout",
}

func runConfigSet(w io.Writer, key, value string) error {
	key = strings.ToLower(key)
	if !slices.Contains(configKeys, key) {
		return &usageError{fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(configKeys, ", "))}
	}

	// Stored as written; typed getters cast on read.
	viper.Set(key, value)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("write config %s: %w", cfgFile, err)
	}

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
