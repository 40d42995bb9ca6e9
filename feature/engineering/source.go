package engineering

import (
	"context"
	"errors"
	"strings"

	"revision-validator/core/browser"
	"revision-validator/core/reconcile"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SourceName identifies the drawing repository in Unavailable errors and logs.
const SourceName = "engineering"

// Source reads drawing revisions from the engineering portal.
type Source struct {
	client browser.Client
	cfg    Config
	logger *zap.Logger
}

var _ reconcile.DrawingSource = (*Source)(nil)

// NewSource creates a Source driving client. The client must already show the
// drawings page of the portal.
func NewSource(client browser.Client, cfg Config, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{client: client, cfg: cfg, logger: logger.With(zap.String("source", SourceName))}
}

// ParseRevision returns the last whitespace separated token of text.
func ParseRevision(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// FetchDrawing searches partNumber and reads the revision of its first drawing.
// Once the search was submitted the back button is clicked, whatever the
// outcome; a failed click is returned as a plain error.
func (s *Source) FetchDrawing(ctx context.Context, partNumber string) (reconcile.DrawingFields, error) {
	if strings.TrimSpace(partNumber) == "" {
		return reconcile.DrawingFields{}, reconcile.NewUnavailable(SourceName, reconcile.ReasonNotFound,
			eris.New("no part number given"))
	}
	defer s.client.LeaveFrames()

	s.client.LeaveFrames()
	if err := s.client.EnterFrames(ctx, s.cfg.ContentFrame, s.cfg.InnerFrame); err != nil {
		return reconcile.DrawingFields{}, classify(err, "frames")
	}

	fields := []browser.Field{{Selector: s.cfg.PartNumberInput, Value: partNumber}}
	if err := s.client.FillAndSubmit(ctx, fields, s.cfg.DrawingButton); err != nil {
		return reconcile.DrawingFields{}, classify(err, "search")
	}

	drawing, err := s.readRevision(ctx, partNumber)

	if berr := s.client.Click(ctx, s.cfg.BackButton); berr != nil {
		return reconcile.DrawingFields{}, eris.Wrapf(berr, "failed to return to drawing search after %s", partNumber)
	}
	if err != nil {
		return reconcile.DrawingFields{}, err
	}

	s.logger.Debug("Drawing revision found", zap.String("part_number", partNumber), zap.String("revision", drawing.Revision))
	return drawing, nil
}

func (s *Source) readRevision(ctx context.Context, partNumber string) (reconcile.DrawingFields, error) {
	wctx, cancel := context.WithTimeout(ctx, s.cfg.ResultTimeout())
	defer cancel()

	outcomes := []string{s.cfg.RevisionNode}
	if s.cfg.NotFound != "" {
		outcomes = append(outcomes, s.cfg.NotFound)
	}
	idx, err := s.client.WaitForAny(wctx, outcomes...)
	if err != nil {
		return reconcile.DrawingFields{}, classify(err, "revision")
	}
	if idx == 1 {
		return reconcile.DrawingFields{}, reconcile.NewUnavailable(SourceName, reconcile.ReasonNotFound,
			eris.Errorf("no drawing for %s", partNumber))
	}

	texts, err := s.client.TextsOf(ctx, s.cfg.RevisionNode)
	if err != nil {
		return reconcile.DrawingFields{}, classify(err, "revision")
	}
	if len(texts) == 0 {
		return reconcile.DrawingFields{}, reconcile.NewUnavailable(SourceName, reconcile.ReasonStructural,
			eris.New("revision node vanished"))
	}

	return reconcile.DrawingFields{PartNumber: partNumber, Revision: ParseRevision(texts[0])}, nil
}

func classify(err error, step string) error {
	switch {
	case errors.Is(err, browser.ErrTimeout):
		return reconcile.NewUnavailable(SourceName, reconcile.ReasonTimeout, eris.Wrap(err, step))
	case errors.Is(err, browser.ErrElementNotFound):
		return reconcile.NewUnavailable(SourceName, reconcile.ReasonStructural, eris.Wrap(err, step))
	default:
		return eris.Wrapf(err, "engineering %s failed", step)
	}
}
