package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newConfigCommand(conf *Config, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration.",
		Long: `config prints the configuration after flags, environment and the
config file have been applied, in TOML form suitable for --config.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(stdout, "backend = %q\n", conf.Backend)
			fmt.Fprintf(stdout, "path = %q\n", conf.Path)
			fmt.Fprintf(stdout, "domain = %q\n", conf.Domain)
			fmt.Fprintf(stdout, "log-level = %q\n", conf.LogLevel)
			fmt.Fprintf(stdout, "log-format = %q\n", conf.LogFormat)
			fmt.Fprintf(stdout, "sync-writes = %t\n", conf.SyncWrites)
			fmt.Fprintf(stdout, "metrics = %t\n", conf.Metrics)
			fmt.Fprintf(stdout, "compression = %q\n", conf.Compression)
			return nil
		},
	}
}
