package main

import (
	"github.com/Veraticus/bookkeeper/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func uiCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Browse expenses, categories and budgets interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			board := tui.NewBoard()
			s, err := openSession(cmd.Context(), v, board)
			if err != nil {
				return err
			}
			defer s.Close()

			return tui.Run(cmd.Context(), s.presenter.Handlers(), board)
		},
	}
}
