package control

import (
	"errors"

	"revision-validator/core/logger"
	"revision-validator/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Ledger is the read side of the ledger the API reports from.
type Ledger interface {
	Summary(scope []string) (reconcile.Summary, error)
	ErrorRows(scope []string) ([]reconcile.Row, error)
}

// SnapshotLister lists diagnostic snapshots, newest first.
type SnapshotLister interface {
	List() ([]string, error)
}

// Handler exposes a run's Control over HTTP.
type Handler struct {
	control   *reconcile.Control
	ledger    Ledger
	snapshots SnapshotLister
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. snapshots may be nil.
func NewHandler(control *reconcile.Control, ledger Ledger, snapshots SnapshotLister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{control: control, ledger: ledger, snapshots: snapshots, logger: logger}
}

// RegisterRoutes registers the run routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/run")
	group.Get("/", h.HandleStatus)
	group.Post("/pause", h.HandlePause)
	group.Post("/resume", h.HandleResume)
	group.Post("/cancel", h.HandleCancel)
	group.Post("/ack", h.HandleAck)
	group.Post("/decision", h.HandleDecision)
	group.Get("/summary", h.HandleSummary)
	group.Get("/errors", h.HandleErrors)
	group.Get("/snapshots", h.HandleSnapshots)
}

// DecisionRequest is the body of POST /run/decision.
type DecisionRequest struct {
	Decision string `json:"decision"`
}

// ErrorRow is one row listed by GET /run/errors.
type ErrorRow struct {
	ID                  string                                `json:"id"`
	PartNumber          string                                `json:"part_number"`
	FSERevision         string                                `json:"fse_revision"`
	EngineeringRevision string                                `json:"engineering_revision"`
	DatabaseRevision    string                                `json:"database_revision"`
	Results             map[string]reconcile.ComparisonResult `json:"results"`
}

// HandleStatus returns the current run status.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.control.Snapshot())
}

// HandlePause pauses the run at the next work item boundary.
func (h *Handler) HandlePause(c *fiber.Ctx) error {
	logger.WithRayID(h.logger, c).Info("Pause requested")
	h.control.Pause()
	return c.JSON(h.control.Snapshot())
}

// HandleResume resumes a paused run.
func (h *Handler) HandleResume(c *fiber.Ctx) error {
	logger.WithRayID(h.logger, c).Info("Resume requested")
	h.control.Resume()
	return c.JSON(h.control.Snapshot())
}

// HandleCancel cancels the run at the next work item boundary.
func (h *Handler) HandleCancel(c *fiber.Ctx) error {
	logger.WithRayID(h.logger, c).Warn("Cancel requested")
	h.control.Cancel()
	return c.JSON(h.control.Snapshot())
}

// HandleAck acknowledges the pending operator prompt.
func (h *Handler) HandleAck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	if err := h.control.Acknowledge(); err != nil {
		l.Warn("Acknowledgement rejected", zap.Error(err))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	l.Info("Prompt acknowledged")
	return c.JSON(h.control.Snapshot())
}

// HandleDecision answers the reprocess decision point.
func (h *Handler) HandleDecision(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	decision, err := reconcile.ParseDecision(req.Decision)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.control.Decide(decision); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, reconcile.ErrNotAwaiting) {
			status = fiber.StatusConflict
		}
		l.Warn("Decision rejected", zap.String("decision", string(decision)), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	l.Info("Decision accepted", zap.String("decision", string(decision)))
	return c.JSON(h.control.Snapshot())
}

// HandleSummary returns verdict counts over the whole ledger.
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.ledger.Summary(nil)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Summary failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}

// HandleErrors lists the ledger rows with a verdict other than OK.
func (h *Handler) HandleErrors(c *fiber.Ctx) error {
	rows, err := h.ledger.ErrorRows(nil)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing error rows failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	out := make([]ErrorRow, 0, len(rows))
	for _, row := range rows {
		results := make(map[string]reconcile.ComparisonResult, len(reconcile.Pairs))
		for _, p := range reconcile.Pairs {
			results[p.String()] = row.Results[p]
		}
		out = append(out, ErrorRow{
			ID:                  row.ID,
			PartNumber:          row.PartNumber,
			FSERevision:         row.FSERevision,
			EngineeringRevision: row.EngineeringRevision,
			DatabaseRevision:    row.DatabaseRevision,
			Results:             results,
		})
	}
	return c.JSON(out)
}

// HandleSnapshots lists diagnostic snapshot files.
func (h *Handler) HandleSnapshots(c *fiber.Ctx) error {
	if h.snapshots == nil {
		return c.JSON([]string{})
	}
	names, err := h.snapshots.List()
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing snapshots failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}
