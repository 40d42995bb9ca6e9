package cmd

import (
	"fmt"
	"sort"

	"revision-validator/core/ledger"
	"revision-validator/core/reconcile"

	"github.com/spf13/cobra"
)

var showRows bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show verdict counts and error rows of the ledger",
	Long:  `Reads the ledger and prints how many rows each comparison marked OK, DIVERGENT or FAILED.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()

		report, err := ledger.Inspect(cfg.Files.Ledger, cfg.Files.LedgerSheet)
		if err != nil {
			return fmt.Errorf("failed to inspect ledger: %w", err)
		}
		if !report.Exists {
			fmt.Printf("No ledger at %s yet.\n", report.Path)
			return nil
		}

		led, err := ledger.Open(cfg.Files.Ledger, cfg.Files.LedgerSheet, logg)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		summary, err := led.Summary(nil)
		if err != nil {
			return fmt.Errorf("failed to summarize ledger: %w", err)
		}
		printSummary(summary)

		if showRows {
			rows, err := led.ErrorRows(nil)
			if err != nil {
				return fmt.Errorf("failed to list error rows: %w", err)
			}
			printErrorRows(rows)
		}
		return nil
	},
}

func printSummary(s reconcile.Summary) {
	fmt.Println("\n=== Ledger Status ===")
	fmt.Printf("Total Rows: %d\n", s.TotalRows)
	fmt.Printf("Pending: %d\n", s.Pending)
	fmt.Printf("PN Not Found: %d\n", s.PartNumberMissing)
	fmt.Printf("Error Rows: %d\n", s.ErrorRows)
	for _, pair := range reconcile.Pairs {
		counts := s.Verdicts[pair.String()]
		verdicts := make([]string, 0, len(counts))
		for v := range counts {
			verdicts = append(verdicts, string(v))
		}
		sort.Strings(verdicts)

		fmt.Printf("%s:", pair)
		for _, v := range verdicts {
			fmt.Printf(" %s=%d", v, counts[reconcile.Verdict(v)])
		}
		fmt.Println()
	}
}

func printErrorRows(rows []reconcile.Row) {
	if len(rows) == 0 {
		return
	}
	fmt.Println("\n=== Error Rows ===")
	for _, row := range rows {
		fmt.Printf("%s  PN=%s  FSE=%s  ENG=%s  BANCO=%s\n",
			row.ID, row.PartNumber, row.FSERevision, row.EngineeringRevision, row.DatabaseRevision)
		for _, pair := range reconcile.Pairs {
			res := row.Results[pair]
			if res.Verdict == reconcile.VerdictOK {
				continue
			}
			verdict := string(res.Verdict)
			if res.IsEmpty() {
				verdict = "PENDING"
			}
			fmt.Printf("  %-13s %s  %s\n", pair.String()+":", verdict, res.Detail)
		}
	}
}

func init() {
	statusCmd.Flags().BoolVar(&showRows, "rows", false, "List every error row")
	RootCmd.AddCommand(statusCmd)
}
