package cmd

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AmitPr/libkv/store"
)

func newScanCommand(conf *Config, stdout, stderr io.Writer) *cobra.Command {
	var (
		prefix  string
		hexOut  bool
		reverse bool
		limit   int
	)
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Print raw entries under a key prefix.",
		Long: `scan prints the raw keys and values stored under --prefix in key order,
one entry per line. Keys and values are quoted unless --hex is given.
`,
		Args: cobra.NoArgs,
		RunE: withSession(conf, stderr, func(cmd *cobra.Command, args []string, s *session) error {
			order := store.Ascending
			if reverse {
				order = store.Descending
			}
			return s.db.View(func(txn store.Txn) error {
				low, high := store.PrefixBounds([]byte(prefix))
				it, err := txn.RangeRaw(low, high, order)
				if err != nil {
					return err
				}
				defer it.Close()
				for n := 0; (limit <= 0 || n < limit) && it.Next(); n++ {
					if hexOut {
						fmt.Fprintf(stdout, "%s %s\n", hex.EncodeToString(it.Key()), hex.EncodeToString(it.Value()))
					} else {
						fmt.Fprintf(stdout, "%q %q\n", it.Key(), it.Value())
					}
				}
				return it.Err()
			})
		}),
	}
	flags := scanCmd.Flags()
	flags.StringVar(&prefix, "prefix", "", "Only print keys starting with this prefix.")
	flags.BoolVar(&hexOut, "hex", false, "Print keys and values hex encoded.")
	flags.BoolVar(&reverse, "reverse", false, "Scan in descending key order.")
	flags.IntVar(&limit, "limit", 0, "Stop after this many entries; 0 means no limit.")
	return scanCmd
}
