package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/notesync/internal/logging"
	"github.com/mesh-intelligence/notesync/internal/netstate"
	"github.com/mesh-intelligence/notesync/internal/orchestrator"
	"github.com/mesh-intelligence/notesync/internal/remote"
	"github.com/mesh-intelligence/notesync/pkg/sqlite"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

// session is an assembled sync core for one command.
type session struct {
	settings settings
	logger   *slog.Logger
	backend  *sqlite.Store
	conn     types.Connectivity
	orch     *orchestrator.Orchestrator
	closers  []io.Closer
}

// sessionOptions selects optional behavior of openSession.
type sessionOptions struct {
	// watch starts the connectivity observer so transitions are delivered.
	watch bool
	// noStartupSync skips the sync an already-online start would run.
	noStartupSync bool
}

// openSession loads the configuration, opens the local database and starts
// the orchestrator. When the network is already online the initial sync
// runs to completion before openSession returns, unless noStartupSync is
// set.
func openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(s.Log)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	sess := &session{settings: s, logger: logger, closers: []io.Closer{logCloser}}

	backend, err := sqlite.Open(s.Core.DataDir)
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	sess.backend = backend

	client, err := remote.New(s.Core.RemoteBaseURL, remote.WithLogger(logger))
	if err != nil {
		sess.Close()
		return nil, err
	}

	conn, err := sess.connectivity(ctx, opts.watch)
	if err != nil {
		sess.Close()
		return nil, err
	}
	sess.conn = conn

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithRemoteTimeout(s.Core.RemoteTimeout),
	}
	if opts.noStartupSync {
		orchOpts = append(orchOpts, orchestrator.WithoutStartupSync())
	}
	sess.orch = orchestrator.New(backend, client, conn, orchOpts...)
	if err := sess.orch.Start(ctx); err != nil {
		sess.Close()
		return nil, err
	}
	sess.orch.Wait()
	return sess, nil
}

// connectivity builds the observer for the configured network mode.
func (s *session) connectivity(ctx context.Context, watch bool) (types.Connectivity, error) {
	cfg := s.settings.Core
	switch cfg.NetworkMode {
	case types.NetworkModeOnline:
		return netstate.Static{State: netstate.AlwaysOnline}, nil

	case types.NetworkModeProbe:
		health, err := netstate.HealthURL(cfg.RemoteBaseURL)
		if err != nil {
			return nil, err
		}
		p := netstate.NewProbeObserver(health, cfg.ProbeInterval, netstate.WithLogger(s.logger))
		if watch {
			if err := p.Start(ctx); err != nil {
				return nil, err
			}
			s.closers = append(s.closers, p)
		}
		return p, nil

	default:
		f := netstate.NewFileObserver(cfg.StateFile, netstate.WithLogger(s.logger))
		if watch {
			if err := f.Start(); err != nil {
				return nil, err
			}
			s.closers = append(s.closers, f)
		}
		return f, nil
	}
}

// Close stops the orchestrator and releases everything the session opened,
// in reverse order.
func (s *session) Close() error {
	var errs []error
	if s.orch != nil {
		errs = append(errs, s.orch.Close())
	}
	if s.backend != nil {
		errs = append(errs, s.backend.Detach())
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}
