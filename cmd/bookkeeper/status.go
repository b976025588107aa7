package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func statusCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show spending against each budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := &terminalView{}
			s, err := openSession(cmd.Context(), v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.presenter.Refresh(cmd.Context()); err != nil {
				return err
			}
			return view.printStatus(cmd.OutOrStdout())
		},
	}
}
