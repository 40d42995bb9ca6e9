package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"revision-validator/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag    bool
	jsonOutput bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the parts database, the ledger and the snapshot bucket",
	Long: `Runs the pre-flight checks of a validation run without opening the browser:
the parts table must carry every record column, an existing ledger must have the
columns the run writes, and the diagnostics bucket must exist when uploads are enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()

		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.TimeoutSeconds+cfg.Storage.TimeoutSeconds)*time.Second)
		defer cancel()

		db := connectParts(cfg, logg)
		defer closeDB(db)
		store := openStorage(ctx, cfg, logg)

		svc := integrity.NewService(store, db, integrityOptions(cfg), logg)
		if fixFlag && store != nil {
			if err := svc.FixStorage(ctx); err != nil {
				return fmt.Errorf("failed to fix storage: %w", err)
			}
		}

		report := svc.RunAll(ctx)
		if jsonOutput {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Println(string(data))
		} else {
			printCheck(report)
		}

		logg.Info("Checks completed",
			zap.Bool("healthy", report.Healthy()),
			zap.Duration("execution_time", time.Since(startTime)))
		if !report.Healthy() {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}

func printCheck(report *integrity.Report) {
	fmt.Println("\n=== Pre-flight Checks ===")
	for _, c := range []struct {
		name   string
		result integrity.Result
	}{
		{"Database", report.Database},
		{"Ledger", report.Ledger},
		{"Storage", report.Storage},
	} {
		fmt.Printf("%-9s %s", c.name+":", c.result.Status)
		if c.result.Error != "" {
			fmt.Printf(" (%s)", c.result.Error)
		}
		fmt.Println()
		if c.result.Status == "error" && c.result.Report != nil {
			data, _ := json.MarshalIndent(c.result.Report, "  ", "  ")
			fmt.Printf("  %s\n", data)
		}
	}
}

func init() {
	checkCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the diagnostics bucket when it is missing")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full report as JSON")
	RootCmd.AddCommand(checkCmd)
}
