package fse

import (
	"context"
	"errors"
	"strings"

	"revision-validator/core/browser"
	"revision-validator/core/reconcile"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SourceName identifies the FSE system in Unavailable errors and logs.
const SourceName = "fse"

const (
	labelOrderItem    = "order_item"
	labelCodem        = "codem"
	labelPart         = "part"
	labelPlant        = "plant"
	labelTraceability = "traceability"
)

// Source reads work orders from the FSE search page.
type Source struct {
	client browser.Client
	cfg    Config
	logger *zap.Logger
}

var _ reconcile.WorkOrderSource = (*Source)(nil)

// NewSource creates a Source driving client. The client must already show the
// FSE search view.
func NewSource(client browser.Client, cfg Config, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{client: client, cfg: cfg, logger: logger.With(zap.String("source", SourceName))}
}

// FetchWorkOrder searches key and reads the work order header. The page is
// returned to the search view afterwards, whatever the outcome.
func (s *Source) FetchWorkOrder(ctx context.Context, key reconcile.Key) (reconcile.WorkOrder, error) {
	wo, err := s.fetch(ctx, key)

	if rerr := s.client.Navigate(ctx, s.cfg.SearchURL); rerr != nil {
		return reconcile.WorkOrder{}, eris.Wrapf(rerr, "failed to return to FSE search after %s", key)
	}
	if err != nil {
		return reconcile.WorkOrder{}, err
	}
	return wo, nil
}

func (s *Source) fetch(ctx context.Context, key reconcile.Key) (reconcile.WorkOrder, error) {
	fields := []browser.Field{
		{Selector: s.cfg.OrderInput, Value: key.Order},
		{Selector: s.cfg.LineInput, Value: key.Line},
	}
	if err := s.client.FillAndSubmit(ctx, fields, s.cfg.SearchButton); err != nil {
		return reconcile.WorkOrder{}, classify(err, "search")
	}

	outcomes := []string{s.cfg.DetailsButton}
	if s.cfg.NoResults != "" {
		outcomes = append(outcomes, s.cfg.NoResults)
	}
	idx, err := s.client.WaitForAny(ctx, outcomes...)
	if err != nil {
		return reconcile.WorkOrder{}, classify(err, "search results")
	}
	if idx == 1 {
		return reconcile.WorkOrder{}, reconcile.NewUnavailable(SourceName, reconcile.ReasonNotFound,
			eris.Errorf("no work order for %s", key))
	}

	if err := s.client.Click(ctx, s.cfg.DetailsButton); err != nil {
		return reconcile.WorkOrder{}, classify(err, "details")
	}

	texts, err := s.client.WaitForAndExtract(ctx, s.cfg.Header, map[string]string{
		labelOrderItem:    s.cfg.OrderItem,
		labelCodem:        s.cfg.CodemDate,
		labelPart:         s.cfg.PartBlob,
		labelPlant:        s.cfg.Plant,
		labelTraceability: s.cfg.Traceability,
	})
	if err != nil {
		var missing *browser.MissingError
		if !errors.As(err, &missing) {
			return reconcile.WorkOrder{}, classify(err, "header")
		}
		if _, ok := texts[labelPart]; !ok {
			return reconcile.WorkOrder{}, classify(err, "part number block")
		}
		s.logger.Debug("Optional header blocks absent", zap.Strings("labels", missing.Labels))
	}

	serials, err := s.client.TextsOf(ctx, s.cfg.Serials)
	if err != nil {
		return reconcile.WorkOrder{}, classify(err, "serial numbers")
	}

	return Parse(texts, serials), nil
}

// Parse builds a work order from the extracted header texts.
func Parse(texts map[string]string, serials []string) reconcile.WorkOrder {
	var f reconcile.WorkOrderFields
	f.Order, f.Item = SplitOrderItem(texts[labelOrderItem])
	f.Codem, f.RoutingRevDate = SplitCodemDate(texts[labelCodem])
	f.PartNumber, f.PartRevision, f.LID = SplitPartBlob(texts[labelPart])
	f.Plant = strings.TrimSpace(texts[labelPlant])
	f.Traceability = StripLabel(texts[labelTraceability], TraceabilityLabel)
	f.Serials = JoinSerials(serials)

	return reconcile.WorkOrder{
		Fields:     f,
		PartNumber: ExtractPartNumber(f.PartNumber),
		Revision:   f.PartRevision,
	}
}

// classify maps browser errors to Unavailable reasons. Anything else stays a
// plain error.
func classify(err error, step string) error {
	switch {
	case errors.Is(err, browser.ErrTimeout):
		return reconcile.NewUnavailable(SourceName, reconcile.ReasonTimeout, eris.Wrap(err, step))
	case errors.Is(err, browser.ErrElementNotFound):
		return reconcile.NewUnavailable(SourceName, reconcile.ReasonStructural, eris.Wrap(err, step))
	default:
		return eris.Wrapf(err, "FSE %s failed", step)
	}
}
