package portal

import (
	"context"
	"sync"

	"revision-validator/core/browser"
	"revision-validator/core/reconcile"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Session drives the portal windows shared by the FSE and engineering sources.
type Session struct {
	client       browser.Client
	cfg          Config
	fseSearchURL string
	logger       *zap.Logger

	mu     sync.Mutex
	opened bool
}

var _ reconcile.Session = (*Session)(nil)

// NewSession creates a Session. fseSearchURL is where the FSE window is sent
// back to when extraction has to recover.
func NewSession(client browser.Client, cfg Config, fseSearchURL string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{client: client, cfg: cfg, fseSearchURL: fseSearchURL, logger: logger}
}

// Open starts the browser on the portal login page.
func (s *Session) Open(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return eris.Wrap(err, "failed to start browser")
	}
	s.mu.Lock()
	s.opened = true
	s.mu.Unlock()

	if err := s.client.Navigate(ctx, s.cfg.URL); err != nil {
		return eris.Wrapf(err, "failed to open portal %s", s.cfg.URL)
	}
	s.logger.Info("Portal opened", zap.String("url", s.cfg.URL))
	return nil
}

// Enter opens the FSE window for extraction or the drawings page for comparison.
func (s *Session) Enter(ctx context.Context, phase reconcile.Phase) error {
	switch phase {
	case reconcile.PhaseExtract:
		if err := s.client.FollowNewWindow(ctx, s.cfg.FSELink); err != nil {
			return eris.Wrap(err, "failed to open FSE window")
		}
	case reconcile.PhaseCompare:
		if err := s.openDrawings(ctx); err != nil {
			return err
		}
	default:
		return eris.Errorf("unknown phase %q", phase)
	}
	s.logger.Info("Entered phase", zap.String("phase", string(phase)))
	return nil
}

// Recover returns the current window to the starting view of phase.
func (s *Session) Recover(ctx context.Context, phase reconcile.Phase) error {
	s.client.LeaveFrames()

	switch phase {
	case reconcile.PhaseExtract:
		if err := s.client.Navigate(ctx, s.fseSearchURL); err != nil {
			return eris.Wrap(err, "failed to reload FSE search")
		}
	case reconcile.PhaseCompare:
		if err := s.openDrawings(ctx); err != nil {
			return err
		}
	default:
		return eris.Errorf("unknown phase %q", phase)
	}
	s.logger.Info("Session recovered", zap.String("phase", string(phase)))
	return nil
}

func (s *Session) openDrawings(ctx context.Context) error {
	if err := s.client.SwitchToMain(ctx); err != nil {
		return eris.Wrap(err, "failed to switch to portal window")
	}
	if err := s.client.Navigate(ctx, s.cfg.URL); err != nil {
		return eris.Wrapf(err, "failed to open portal %s", s.cfg.URL)
	}
	if err := s.client.Click(ctx, s.cfg.DrawingsLink); err != nil {
		return eris.Wrap(err, "failed to open drawings page")
	}
	return nil
}

// Close shuts the browser down if Open started it.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return nil
	}
	s.opened = false
	return s.client.Close()
}
