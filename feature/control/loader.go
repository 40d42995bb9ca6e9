package control

import (
	"revision-validator/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the run control feature.
func NewFeature(control *reconcile.Control, ledger Ledger, snapshots SnapshotLister, logger *zap.Logger) *Feature {
	return &Feature{handler: NewHandler(control, ledger, snapshots, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "control"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
