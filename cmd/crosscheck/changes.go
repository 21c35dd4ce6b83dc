package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"crosscheck/internal/cli"
	"crosscheck/internal/engine"
	"crosscheck/internal/export"
)

func changesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Manage the stored change history",
	}

	cmd.AddCommand(changesListCmd())
	cmd.AddCommand(changesShowCmd())
	cmd.AddCommand(changesDeleteCmd())
	cmd.AddCommand(changesImportCmd())

	return cmd
}

func changesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List analyzed changes, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			changes, err := store.ListChanges(cmd.Context())
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				cmd.Println("No changes stored yet. Run 'crosscheck analyze' first.")
				return nil
			}

			cmd.Println(cli.RenderChanges(changes))
			return nil
		},
	}
}

func changesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <change-id>",
		Short: "Show the stored findings for a change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			doc, err := store.GetChange(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printFindings(cmd, doc)
			return nil
		},
	}
}

func changesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <change-id>",
		Short: "Delete a stored change from history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteChange(cmd.Context(), args[0]); err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess("deleted " + args[0]))
			return nil
		},
	}
}

func changesImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Bulk-import prior change exports into history",
		Long: `Import analyzes every object-list file (.txt, .csv, .json) in a
directory and stores the findings, using each file's base name as the
change ID. Useful for seeding overlap history from existing transport
exports.`,
		Args: cobra.ExactArgs(1),
		RunE: runChangesImport,
	}

	cmd.Flags().Int("window", 0, "overlap window in days used while importing")

	return cmd
}

func runChangesImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	window, _ := cmd.Flags().GetInt("window")
	if window == 0 {
		window = viper.GetInt("analysis.window_days")
	}

	entries, err := os.ReadDir(args[0])
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".csv", ".json":
			files = append(files, filepath.Join(args[0], entry.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no importable files in %s", args[0])
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

	bar := progressbar.Default(int64(len(files)), "importing changes")

	imported := 0
	for _, file := range files {
		_ = bar.Add(1)

		result, err := readObjects(file)
		if err != nil {
			cmd.PrintErrln(cli.FormatWarning(fmt.Sprintf("skipping %s: %v", file, err)))
			continue
		}

		changeID := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if _, err := eng.Analyze(ctx, engine.Request{
			ChangeID:   changeID,
			Records:    result.Records,
			Skipped:    result.Skipped,
			WindowDays: window,
			Weights:    scoringWeights(),
		}); err != nil {
			cmd.PrintErrln(cli.FormatWarning(fmt.Sprintf("skipping %s: %v", file, err)))
			continue
		}
		imported++
	}

	cmd.Println(cli.FormatSuccess(fmt.Sprintf("imported %d of %d change(s)", imported, len(files))))
	return nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <change-id>",
		Short: "Export stored findings as JSON or an HTML checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			doc, err := store.GetChange(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output) // #nosec G304 -- user-chosen output path
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			switch format {
			case "html":
				return export.WriteHTML(out, doc)
			case "json", "":
				return export.WriteJSON(out, doc)
			default:
				return fmt.Errorf("unknown export format: %s", format)
			}
		},
	}

	cmd.Flags().String("format", "json", "export format (json, html)")
	cmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	return cmd
}
