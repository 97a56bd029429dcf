package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/AmitPr/libkv"
	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/store"
)

func newVectorCommand(conf *Config, stdout, stderr io.Writer) *cobra.Command {
	var name string
	list := func(s *session) libkv.List[string] {
		return libkv.NewList([]byte(name), codec.Compressed(codec.String, s.algo))
	}

	vectorCmd := &cobra.Command{
		Use:     "vector",
		Aliases: []string{"list"},
		Short:   "Work with an append-only list of strings.",
	}
	vectorCmd.PersistentFlags().StringVar(&name, "name", "vector", "Key prefix of the list.")

	vectorCmd.AddCommand(&cobra.Command{
		Use:   "push VALUE...",
		Short: "Append values and print their indexes.",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(conf, stderr, func(cmd *cobra.Command, args []string, s *session) error {
			var idx []uint64
			err := s.db.Update(func(txn store.Txn) error {
				idx = idx[:0]
				for _, v := range args {
					i, err := list(s).Push(txn, v)
					if err != nil {
						return err
					}
					idx = append(idx, i)
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, i := range idx {
				fmt.Fprintln(stdout, i)
			}
			return nil
		}),
	})
	vectorCmd.AddCommand(&cobra.Command{
		Use:   "pop",
		Short: "Remove and print the last value.",
		Args:  cobra.NoArgs,
		RunE: withSession(conf, stderr, func(cmd *cobra.Command, args []string, s *session) error {
			var (
				v  string
				ok bool
			)
			err := s.db.Update(func(txn store.Txn) (err error) {
				v, ok, err = list(s).Pop(txn)
				return err
			})
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("list %q is empty", name)
			}
			fmt.Fprintln(stdout, v)
			return nil
		}),
	})
	vectorCmd.AddCommand(&cobra.Command{
		Use:   "get INDEX",
		Short: "Print the value at INDEX.",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(conf, stderr, func(cmd *cobra.Command, args []string, s *session) error {
			i, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Wrapf(err, "index %q", args[0])
			}
			var (
				v  string
				ok bool
			)
			err = s.db.View(func(txn store.Txn) (err error) {
				v, ok, err = list(s).Get(txn, i)
				return err
			})
			if err != nil {
				return err
			}
			if !ok {
				return errors.Wrapf(libkv.ErrIndexOutOfRange, "index %d", i)
			}
			fmt.Fprintln(stdout, v)
			return nil
		}),
	})
	vectorCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every index and value.",
		Args:  cobra.NoArgs,
		RunE: withSession(conf, stderr, func(cmd *cobra.Command, args []string, s *session) error {
			return s.db.View(func(txn store.Txn) error {
				it, err := list(s).All(txn, store.Ascending)
				if err != nil {
					return err
				}
				for e, err := range it.All() {
					if err != nil {
						return err
					}
					fmt.Fprintf(stdout, "%d\t%s\n", e.Key, e.Value)
				}
				return nil
			})
		}),
	})
	vectorCmd.AddCommand(&cobra.Command{
		Use:   "len",
		Short: "Print the number of values.",
		Args:  cobra.NoArgs,
		RunE: withSession(conf, stderr, func(cmd *cobra.Command, args []string, s *session) error {
			return s.db.View(func(txn store.Txn) error {
				n, err := list(s).Len(txn)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, n)
				return nil
			})
		}),
	})
	return vectorCmd
}
