package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"revision-validator/core/browser"
	"revision-validator/core/config"
	"revision-validator/core/diagnostics"
	"revision-validator/core/input"
	"revision-validator/core/ledger"
	"revision-validator/core/loader"
	"revision-validator/core/logger"
	"revision-validator/core/middleware/auth"
	"revision-validator/core/middleware/rayid"
	"revision-validator/core/reconcile"
	"revision-validator/core/storage"
	"revision-validator/feature/control"
	"revision-validator/feature/engineering"
	"revision-validator/feature/fse"
	"revision-validator/feature/integrity"
	"revision-validator/feature/partsdb"
	"revision-validator/feature/portal"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const decisionAsk = "ask"

var (
	inputPath    string
	inputSheet   string
	decisionMode string
	maxReprocess int
	serveAPI     bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract work orders and reconcile their revisions",
	Long: `Reads the input table, extracts every work order the ledger does not know yet,
then compares the FSE revision with the engineering drawing and the parts database.

The browser opens on the portal login page; log in and confirm each navigation
step in the terminal. Rows with errors can be reprocessed at the end of a pass.

Examples:
  # Interactive run with the defaults from .env
  run

  # Unattended: reprocess errors once, then finish
  run --decision reprocess --max-reprocess 1

  # Expose the control API on server.port
  run --serve`,
	RunE: runValidation,
}

func init() {
	runCmd.Flags().StringVar(&inputPath, "input", "", "Input workbook (overrides files.input)")
	runCmd.Flags().StringVar(&inputSheet, "input-sheet", "", "Input sheet name (overrides files.input_sheet)")
	runCmd.Flags().StringVar(&decisionMode, "decision", "", "Reprocess decision: ask, reprocess or finish (overrides run.decision)")
	runCmd.Flags().IntVar(&maxReprocess, "max-reprocess", -1, "Automatic reprocess passes before finishing (overrides run.max_reprocess)")
	runCmd.Flags().BoolVar(&serveAPI, "serve", false, "Start the control API (overrides server.enabled)")

	RootCmd.AddCommand(runCmd)
}

// applyRunFlags folds command flags into cfg.
func applyRunFlags(cfg *config.Config) {
	if inputPath != "" {
		cfg.Files.Input = inputPath
	}
	if inputSheet != "" {
		cfg.Files.InputSheet = inputSheet
	}
	if decisionMode != "" {
		cfg.Run.Decision = decisionMode
	}
	if maxReprocess >= 0 {
		cfg.Run.MaxReprocess = maxReprocess
	}
	if serveAPI {
		cfg.Server.Enabled = true
	}
}

// parseDecisionMode returns the automatic decision, or "" when the operator decides.
func parseDecisionMode(mode string) (reconcile.Decision, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" || mode == decisionAsk {
		return "", nil
	}
	return reconcile.ParseDecision(mode)
}

func runValidation(cmd *cobra.Command, args []string) error {
	// 1. Load Configuration
	cfg, logg, err := setup()
	if err != nil {
		return err
	}
	defer logg.Sync()
	applyRunFlags(cfg)

	auto, err := parseDecisionMode(cfg.Run.Decision)
	if err != nil {
		return fmt.Errorf("invalid decision mode %q: %w", cfg.Run.Decision, err)
	}

	// 2. Read the work items. A malformed table aborts before anything is touched.
	items, err := input.Load(cfg.Files.Input, cfg.Files.InputSheet)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	logg.Info("Input loaded", zap.String("file", cfg.Files.Input), zap.Int("items", len(items)))

	// 3. Open the ledger
	led, err := ledger.Open(cfg.Files.Ledger, cfg.Files.LedgerSheet, logg)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 4. Collaborators
	db := connectParts(cfg, logg)
	defer closeDB(db)
	parts, err := partsdb.NewSource(db, cfg.Parts, logg)
	if err != nil {
		return fmt.Errorf("invalid parts configuration: %w", err)
	}

	client := browser.NewRod(cfg.Browser, logg)
	session := portal.NewSession(client, cfg.Portal, cfg.FSE.SearchURL, logg)
	workOrders := fse.NewSource(client, cfg.FSE, logg)
	drawings := engineering.NewSource(client, cfg.Engineering, logg)

	store := openStorage(ctx, cfg, logg)
	snapshots := diagnostics.NewSnapshotter(client, cfg.Files.ErrorsDir, logg)
	if store != nil {
		snapshots = snapshots.WithUpload(store, cfg.Storage.Bucket, cfg.Storage.Prefix)
	}

	// 5. Engine and its control surface
	ctrl := reconcile.NewControl()
	engine := reconcile.NewEngine(led, workOrders, drawings, parts, session, ctrl, logg)
	engine.Snapshots = snapshots

	if auto != "" {
		newAutoDecider(ctrl, auto, cfg.Run.MaxReprocess, logg)
	}
	go newConsole(ctrl, os.Stdout, logg).serve(os.Stdin)

	// 6. Optional control API
	if cfg.Server.Enabled {
		app, err := newControlApp(cfg, logg, ctrl, led, snapshots, store, db)
		if err != nil {
			return err
		}
		go func() {
			logg.Info("Starting control API", zap.String("address", cfg.Server.Address()), zap.Bool("secured", cfg.Server.Secured()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Error("Control API stopped", zap.Error(err))
			}
		}()
		defer func() { _ = app.Shutdown() }()
	}

	// 7. Interrupts cancel at the next work item boundary
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
			logg.Warn("Interrupt received, cancelling after the current item")
			ctrl.Cancel()
		case <-ctx.Done():
		}
	}()

	report, err := engine.Run(ctx, items)
	if report != nil {
		printReport(report, led.Path())
	}
	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}
	logg.Info("Run finished",
		zap.String("outcome", string(report.Outcome)),
		zap.Int("passes", report.Passes),
		zap.Int("error_rows", len(report.ErrorRows)))
	return nil
}

// newControlApp builds the fiber app serving the control and integrity features.
func newControlApp(cfg *config.Config, logg *zap.Logger, ctrl *reconcile.Control, led *ledger.Ledger, snapshots *diagnostics.Snapshotter, store storage.Client, db *gorm.DB) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager()
	mgr.Register(control.NewFeature(ctrl, led, snapshots, logg))
	mgr.Register(integrity.NewFeature(store, db, integrityOptions(cfg), logg))

	// RayID first so every log line carries it
	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Debug("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

	if err := mgr.LoadAll(app); err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}
	return app, nil
}

func printReport(report *reconcile.Report, ledgerFile string) {
	fmt.Println("\n=== Validation Report ===")
	fmt.Printf("Outcome: %s\n", report.Outcome)
	fmt.Printf("Passes: %d\n", report.Passes)
	fmt.Printf("Extracted: %d (failed %d)\n", report.Extracted, report.ExtractFailures)
	fmt.Printf("Compared: %d (failed %d)\n", report.Compared, report.CompareFailures)
	fmt.Printf("Error Rows: %d\n", len(report.ErrorRows))
	if len(report.ErrorRows) > 0 {
		fmt.Printf("  %s\n", strings.Join(report.ErrorRows, ", "))
	}
	fmt.Printf("Ledger: %s\n", ledgerFile)
}
