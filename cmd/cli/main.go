package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"impactproof/adapters/report"
	"impactproof/adapters/tabular"
	"impactproof/app"
	"impactproof/domain/check"
	"impactproof/domain/profile"
	"impactproof/domain/record"
	"impactproof/internal"
	"impactproof/internal/config"
	"impactproof/ports"
)

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "impactproof",
		Short: "Configuration-driven data-quality scorecards for donor reporting",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a dataset against a run configuration",
		Long: `Standardize the dataset, execute the configured quality checks, and write
the scorecard, issue list, and fix list to the configured output directory.

Example: impactproof run --config impactproof.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluation(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "impactproof.yaml", "Path to the run configuration")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print a per-field profile of the dataset without scoring it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "impactproof.yaml", "Path to the run configuration")
	return cmd
}

func runEvaluation(ctx context.Context, configPath string) error {
	log := internal.DefaultLogger
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	rows, err := readDataset(ctx, cfg)
	if err != nil {
		return err
	}

	svc := app.NewRunService(log)
	result, err := svc.Evaluate(ctx, rows, cfg)
	if err != nil {
		// Config errors abort before any check executes; no outputs exist
		return err
	}

	writer, err := report.NewCSVWriter(cfg.Output.Path)
	if err != nil {
		return err
	}
	var w ports.ReportWriter = writer
	if err := w.WriteScorecard(result.Scorecard); err != nil {
		return err
	}
	if err := w.WriteIssues(result.Results); err != nil {
		return err
	}
	if err := w.WriteFixList(result.FixList); err != nil {
		return err
	}
	mdPath := filepath.Join(cfg.Output.Path, "report.md")
	if err := os.WriteFile(mdPath, []byte(report.Markdown(result)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printSummary(result)
	log.Info("outputs written to %s", cfg.Output.Path)
	return nil
}

func runProfile(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	rows, err := readDataset(ctx, cfg)
	if err != nil {
		return err
	}
	records, _, err := record.Standardize(rows, cfg.Fields, cfg.MissingLabels)
	if err != nil {
		return err
	}

	p := profile.Compute(records)
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tPRESENT\tNA\tNO\tUNKNOWN\tABSENT\tMISSING\tDISTINCT")
	for _, f := range p.Fields {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%.1f%%\t%d\n",
			f.Column, f.Present, f.ExplicitNA, f.ExplicitNo, f.ExplicitUnk, f.Absent, f.MissingRate*100, f.DistinctCount)
	}
	return tw.Flush()
}

func readDataset(ctx context.Context, cfg *config.RunConfig) ([]record.RawRow, error) {
	var reader ports.DatasetReader
	switch cfg.Dataset.Source {
	case "postgres":
		dsn := cfg.Dataset.DSN
		if dsn == "" {
			dsn = config.LoadEnv().PostgresDSN
		}
		pg, err := tabular.NewPostgresReader(dsn, cfg.Dataset.Query)
		if err != nil {
			return nil, err
		}
		defer pg.Close()
		reader = pg
	default:
		reader = tabular.NewFileReader(cfg.Dataset.Path, cfg.Dataset.Sheet)
	}
	return reader.Read(ctx)
}

func printSummary(result *app.RunResult) {
	fmt.Printf("\nData quality scorecard (run %s)\n\n", result.RunID)
	for _, row := range result.Scorecard.Rows {
		fmt.Printf("  %-14s %s  metric=%.4f  issues=%d\n", row.Check, colorVerdict(row.Verdict), row.Metric, row.IssueCount)
	}
	fmt.Printf("\n  overall: %s\n\n", colorVerdict(result.Scorecard.Overall))
}

func colorVerdict(v check.Verdict) string {
	switch v {
	case check.VerdictPass:
		return color.GreenString(string(v))
	case check.VerdictWarn:
		return color.YellowString(string(v))
	default:
		return color.RedString(string(v))
	}
}
