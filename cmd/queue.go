package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/AmitPr/libkv"
	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/key"
	"github.com/AmitPr/libkv/store"
)

func newQueueCommand(conf *Config, stdout, stderr io.Writer) *cobra.Command {
	var (
		name string
		desc bool
	)
	queue := func() libkv.PriorityQueue[int64, string] {
		return libkv.NewPriorityQueue([]byte(name), key.Int64, codec.String)
	}
	order := func() store.Order {
		if desc {
			return store.Descending
		}
		return store.Ascending
	}

	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Work with a priority queue of strings keyed by int64 priority.",
	}
	queueCmd.PersistentFlags().StringVar(&name, "name", "queue", "Key prefix of the queue.")
	queueCmd.PersistentFlags().BoolVar(&desc, "desc", false, "Take the largest priority instead of the smallest.")

	queueCmd.AddCommand(&cobra.Command{
		Use:   "push PRIORITY VALUE",
		Short: "Store VALUE under PRIORITY, replacing any value already there.",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(conf, stderr, func(cmd *cobra.Command, args []string, s *session) error {
			p, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.Wrapf(err, "priority %q", args[0])
			}
			return s.db.Update(func(txn store.Txn) error {
				return queue().Push(txn, p, args[1])
			})
		}),
	})

	// pop and peek differ only in whether the entry is removed.
	take := func(remove bool) func(*cobra.Command, []string, *session) error {
		return func(cmd *cobra.Command, args []string, s *session) error {
			var (
				p   int64
				v   string
				ok  bool
				err error
			)
			run := s.db.View
			if remove {
				run = s.db.Update
			}
			err = run(func(txn store.Txn) error {
				if remove {
					p, v, ok, err = queue().Pop(txn, order())
				} else {
					p, v, ok, err = queue().Peek(txn, order())
				}
				return err
			})
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("queue %q is empty", name)
			}
			fmt.Fprintf(stdout, "%d\t%s\n", p, v)
			return nil
		}
	}
	queueCmd.AddCommand(&cobra.Command{
		Use:   "pop",
		Short: "Remove and print the first entry.",
		Args:  cobra.NoArgs,
		RunE:  withSession(conf, stderr, take(true)),
	})
	queueCmd.AddCommand(&cobra.Command{
		Use:   "peek",
		Short: "Print the first entry without removing it.",
		Args:  cobra.NoArgs,
		RunE:  withSession(conf, stderr, take(false)),
	})
	queueCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every entry in priority order.",
		Args:  cobra.NoArgs,
		RunE: withSession(conf, stderr, func(cmd *cobra.Command, args []string, s *session) error {
			return s.db.View(func(txn store.Txn) error {
				it, err := queue().Range(txn, libkv.Unbounded[int64](), libkv.Unbounded[int64](), order())
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
	return queueCmd
}
