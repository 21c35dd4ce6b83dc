package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crosscheck/internal/cli"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the ownership catalog",
	}

	cmd.AddCommand(catalogValidateCmd())
	cmd.AddCommand(catalogShowCmd())

	return cmd
}

func catalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configured catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := loadCatalog()
			if err != nil {
				return err
			}

			cmd.Println(cli.FormatSuccess(fmt.Sprintf(
				"catalog OK: %d rules, max criticality %.2f, version %s",
				len(snapshot.Rules), snapshot.MaxWeight, snapshot.Version)))
			return nil
		},
	}
}

func catalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the catalog rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := loadCatalog()
			if err != nil {
				return err
			}

			cmd.Println(cli.FormatTitle(fmt.Sprintf("Ownership catalog (version %s)", snapshot.Version)))
			cmd.Println(cli.RenderRules(snapshot.Rules))
			return nil
		},
	}
}
