package main

import (
	"fmt"

	"github.com/Veraticus/bookkeeper/internal/cli"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func budgetCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets"},
		Short:   "Show and set spending limits",
	}

	cmd.AddCommand(listBudgetsCmd(v))
	cmd.AddCommand(setBudgetCmd(v))

	return cmd
}

func listBudgetsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets with what has been spent",
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
			return view.printBudgets(cmd.OutOrStdout())
		},
	}
}

func setBudgetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "set <day|week|month> <amount>",
		Short: "Set the limit for a period",
		Long:  `Set the total for a period. The budget is created when the period has none.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			period, err := model.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			total, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			view := &terminalView{}
			s, err := openSession(ctx, v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.presenter.UpdateBudget(ctx, model.NewBudget(period, total)); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			msg := fmt.Sprintf("Set %s budget to %d", period.Label(), total)
			if _, err := fmt.Fprintln(out, cli.FormatSuccess(msg)); err != nil {
				return err
			}
			return view.printWarnings(out)
		},
	}
}
