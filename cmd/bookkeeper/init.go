package main

import (
	"fmt"

	"github.com/Veraticus/bookkeeper/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func initCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and seed default categories and budgets",
		Long: `Create the database file and its tables. On first run the default
category tree and the configured day, week and month budgets are stored.
Running it again leaves existing data alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := &terminalView{}
			s, err := openSession(cmd.Context(), v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if !s.seeded {
				_, err := fmt.Fprintln(out, cli.FormatInfo("Database already initialized at "+s.db.Path()))
				return err
			}
			_, err = fmt.Fprintln(out, cli.FormatSuccess("Initialized "+s.db.Path()+" with default categories and budgets"))
			return err
		},
	}
}
