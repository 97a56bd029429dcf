package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/internal/logging"
	"github.com/AmitPr/libkv/store"
	"github.com/AmitPr/libkv/store/badger"
	"github.com/AmitPr/libkv/store/bolt"
	"github.com/AmitPr/libkv/store/memory"
	"github.com/AmitPr/libkv/store/metrics"
)

// session is an opened store plus what a command needs around it.
type session struct {
	db    store.DB
	log   *slog.Logger
	reg   *prometheus.Registry
	algo  codec.Compression
	close func() error
}

func openSession(conf *Config, stderr io.Writer) (*session, error) {
	level, err := logging.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(stderr, level, conf.LogFormat)
	if err != nil {
		return nil, err
	}
	algo, err := codec.ParseCompression(conf.Compression)
	if err != nil {
		return nil, err
	}

	s := &session{log: log, algo: algo}
	switch conf.Backend {
	case "memory":
		db := memory.New(memory.WithLogger(log))
		s.db, s.close = db, db.Close
	case "badger":
		if conf.Path == "" {
			return nil, errors.New("badger backend needs --path")
		}
		db, err := badger.Open(conf.Path, badger.WithLogger(log), badger.WithSyncWrites(conf.SyncWrites))
		if err != nil {
			return nil, err
		}
		s.db, s.close = db, db.Close
	case "bolt":
		if conf.Path == "" {
			return nil, errors.New("bolt backend needs --path")
		}
		db, err := bolt.Open(conf.Path, bolt.WithLogger(log), bolt.WithNoSync(!conf.SyncWrites))
		if err != nil {
			return nil, err
		}
		s.db, s.close = db, db.Close
	default:
		return nil, errors.Errorf("unknown backend %q", conf.Backend)
	}

	if conf.Domain != "" {
		s.db = store.PrefixedDB(s.db, []byte(conf.Domain))
	}
	if conf.Metrics {
		s.reg = prometheus.NewRegistry()
		c := metrics.NewCollector("libkv")
		if err := c.Register(s.reg); err != nil {
			s.close()
			return nil, err
		}
		s.db = c.DB(s.db)
	}
	log.Debug("opened store", "backend", conf.Backend, "path", conf.Path, "domain", conf.Domain)
	return s, nil
}

// finish closes the store and, with metrics enabled, writes every non-zero
// sample to w.
func (s *session) finish(w io.Writer) error {
	err := s.close()
	if s.reg == nil {
		return err
	}
	families, gerr := s.reg.Gather()
	if gerr != nil {
		return gerr
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			if value == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return err
}

// withSession adapts fn to a cobra RunE that opens the configured store
// for the duration of the command.
func withSession(conf *Config, stderr io.Writer, fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(conf, stderr)
		if err != nil {
			return err
		}
		runErr := fn(cmd, args, s)
		if err := s.finish(stderr); err != nil && runErr == nil {
			runErr = err
		}
		return runErr
	}
}
