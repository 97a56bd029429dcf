// Package cmd holds the libkv command line tool.
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to the upper-cased flag names when reading the
// environment, so --log-level is LIBKV_LOG_LEVEL.
const EnvPrefix = "LIBKV"

// Config is the effective configuration shared by every subcommand.
type Config struct {
	Backend     string
	Path        string
	Domain      string
	LogLevel    string
	LogFormat   string
	SyncWrites  bool
	Metrics     bool
	Compression string
}

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	conf := &Config{}
	rc := &cobra.Command{
		Use:   "libkv",
		Short: "Inspect and drive typed containers stored in a sorted key-value store.",
		Long: `libkv opens a badger, bolt or in-memory store and works with the
typed containers kept in it: raw scans, priority queues and lists.

Configuration is read from flags, then LIBKV_* environment variables, then
the TOML file given by --config.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setAllConfig(viper.New(), cmd.Flags(), EnvPrefix)
		},
	}
	flags := rc.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file to read from.")
	flags.StringVar(&conf.Backend, "backend", "badger", "Store backend: badger, bolt or memory.")
	flags.StringVar(&conf.Path, "path", "", "Directory (badger) or file (bolt) of the store.")
	flags.StringVar(&conf.Domain, "domain", "", "Key prefix that isolates this tool's data within the store.")
	flags.StringVar(&conf.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error.")
	flags.StringVar(&conf.LogFormat, "log-format", "text", "Log format: text or json.")
	flags.BoolVar(&conf.SyncWrites, "sync-writes", false, "Sync the store to disk on every commit.")
	flags.BoolVar(&conf.Metrics, "metrics", false, "Print storage metrics to stderr on exit.")
	flags.StringVar(&conf.Compression, "compression", "none", "Value compression for list elements: none, lz4 or zstd.")

	rc.AddCommand(newScanCommand(conf, stdout, stderr))
	rc.AddCommand(newQueueCommand(conf, stdout, stderr))
	rc.AddCommand(newVectorCommand(conf, stdout, stderr))
	rc.AddCommand(newConfigCommand(conf, stdout))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig takes flags as the definition of every configuration option
// and its default. It then applies the command line, the environment and
// the config file, in that priority order, by setting each flag that was not
// given explicitly.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet, envPrefix string) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	validTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
		for _, key := range v.AllKeys() {
			if !validTags[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		flagErr = f.Value.Set(v.GetString(f.Name))
	})
	return flagErr
}
