package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"crosscheck/internal/cli"
	"crosscheck/internal/engine"
	"crosscheck/internal/export"
	"crosscheck/internal/model"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a change's object list for collision risk",
		Long: `Analyze ingests a transport object list (pasted text on stdin, or a
.txt/.csv/.json file), classifies each object against the ownership
catalog, detects overlap with previously analyzed changes, and prints
an explainable risk score. The findings are stored so future analyses
can detect overlap against this change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().String("change-id", "", "change/transport identifier (required)")
	cmd.Flags().Int("window", 0, "overlap window in days (default from config, then 30)")
	cmd.Flags().String("format", "text", "output format (text, json)")
	cmd.Flags().StringP("output", "o", "", "write findings JSON to a file")
	cmd.Flags().Bool("dry-run", false, "do not persist the findings to history")
	_ = cmd.MarkFlagRequired("change-id")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	changeID, _ := cmd.Flags().GetString("change-id")
	window, _ := cmd.Flags().GetInt("window")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if window == 0 {
		window = viper.GetInt("analysis.window_days")
	}

	var inputPath string
	if len(args) > 0 {
		inputPath = args[0]
	}

	result, err := readObjects(inputPath)
	if err != nil {
		return err
	}

	snapshot, err := loadCatalog()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng, err := engine.New(store, snapshot)
	if err != nil {
		return err
	}

	doc, err := eng.Analyze(ctx, engine.Request{
		ChangeID:   changeID,
		Records:    result.Records,
		Skipped:    result.Skipped,
		WindowDays: window,
		Weights:    scoringWeights(),
		DryRun:     dryRun,
	})
	if err != nil {
		return err
	}

	if output != "" {
		f, err := os.Create(output) // #nosec G304 -- user-chosen output path
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer func() { _ = f.Close() }()
		if err := export.WriteJSON(f, doc); err != nil {
			return err
		}
	}

	if format == "json" {
		return export.WriteJSON(cmd.OutOrStdout(), doc)
	}

	printFindings(cmd, doc)
	return nil
}

func printFindings(cmd *cobra.Command, doc model.FindingsDocument) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Findings for %s", doc.ChangeID)))
	fmt.Fprintf(out, "Risk: %.2f %s   Objects: %d   Apps impacted: %d   Overlaps: %d\n\n",
		doc.Summary.RiskScore,
		cli.FormatRiskLevel(string(doc.Summary.RiskLevel)),
		doc.Summary.ObjectsTotal,
		doc.Summary.AppsImpacted,
		doc.Summary.OverlapsFound,
	)

	fmt.Fprintln(out, cli.FormatTitle("Score breakdown"))
	fmt.Fprintln(out, cli.RenderScoreBreakdown(doc.Score))
	fmt.Fprintln(out)

	if len(doc.Overlaps) > 0 {
		fmt.Fprintln(out, cli.FormatTitle("Overlaps with other changes"))
		fmt.Fprintln(out, cli.RenderOverlaps(doc.Overlaps))
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, cli.FormatTitle("Top risk objects"))
	fmt.Fprintln(out, cli.RenderObjectRisks(doc.ObjectRisks))

	if n := len(doc.Meta.SkippedRecords); n > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d input record(s) skipped:", n)))
		for _, s := range doc.Meta.SkippedRecords {
			fmt.Fprintf(out, "  %s (%s)\n", s.Raw, s.Reason)
		}
	}
}
