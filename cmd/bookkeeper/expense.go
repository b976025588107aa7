package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/bookkeeper/internal/cli"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func expenseCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses"},
		Short:   "Record and manage expenses",
		Long: `Add, change, inspect and delete expenses. Every change recalculates
how much of each budget has been spent.`,
	}

	cmd.AddCommand(listExpensesCmd(v))
	cmd.AddCommand(showExpenseCmd(v))
	cmd.AddCommand(addExpenseCmd(v))
	cmd.AddCommand(updateExpenseCmd(v))
	cmd.AddCommand(deleteExpenseCmd(v))
	cmd.AddCommand(setExpenseCmd(v))

	return cmd
}

func listExpensesCmd(v *viper.Viper) *cobra.Command {
	var (
		category string
		since    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			view := &terminalView{}
			s, err := openSession(ctx, v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.presenter.Refresh(ctx); err != nil {
				return err
			}

			categoryRef, err := resolveCategory(view.categories, category)
			if err != nil {
				return err
			}
			var from time.Time
			if since != "" {
				if from, err = time.ParseInLocation("2006-01-02", since, time.Local); err != nil {
					return fmt.Errorf("invalid --since date %q: want YYYY-MM-DD", since)
				}
			}

			expenses := make([]model.Expense, 0, len(view.expenses))
			for _, e := range view.expenses {
				if categoryRef != nil && (e.Category == nil || *e.Category != *categoryRef) {
					continue
				}
				if !from.IsZero() && e.ExpenseDate.Before(from) {
					continue
				}
				expenses = append(expenses, e)
			}
			return view.printExpenses(cmd.OutOrStdout(), expenses)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only expenses in this category (name or id)")
	cmd.Flags().StringVar(&since, "since", "", "Only expenses on or after this date (YYYY-MM-DD)")

	return cmd
}

func showExpenseCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pk, err := parsePK(args[0])
			if err != nil {
				return err
			}

			view := &terminalView{}
			s, err := openSession(ctx, v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.presenter.Refresh(ctx); err != nil {
				return err
			}
			e, err := s.presenter.GetExpense(ctx, pk)
			if err != nil {
				return err
			}
			return view.printExpense(cmd.OutOrStdout(), *e)
		},
	}
}

func addExpenseCmd(v *viper.Viper) *cobra.Command {
	var (
		category string
		date     string
		comment  string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a new expense",
		Long: `Record an expense in whole currency units. The date defaults to now and
accepts YYYY-MM-DD or DDMMYYYY.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			view := &terminalView{}
			s, err := openSession(ctx, v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.presenter.Refresh(ctx); err != nil {
				return err
			}
			categoryRef, err := resolveCategory(view.categories, category)
			if err != nil {
				return err
			}

			e := model.NewExpense(amount, categoryRef, time.Time{}, comment)
			if date != "" {
				if err := e.SetAttr("expense_date", date); err != nil {
					return err
				}
			}

			pk, err := s.presenter.CreateExpense(ctx, e)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded expense %d: %d", pk, amount))); err != nil {
				return err
			}
			return view.printWarnings(out)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category name or id")
	cmd.Flags().StringVar(&date, "date", "", "Date of the expense (YYYY-MM-DD or DDMMYYYY)")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-form note")

	return cmd
}

func updateExpenseCmd(v *viper.Viper) *cobra.Command {
	var (
		amount   int64
		category string
		date     string
		comment  string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change several fields of an expense at once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pk, err := parsePK(args[0])
			if err != nil {
				return err
			}

			view := &terminalView{}
			s, err := openSession(ctx, v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.presenter.Refresh(ctx); err != nil {
				return err
			}
			e, err := s.presenter.GetExpense(ctx, pk)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("amount") {
				e.Amount = amount
			}
			if flags.Changed("category") {
				if e.Category, err = resolveCategory(view.categories, category); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				if err := e.SetAttr("expense_date", date); err != nil {
					return err
				}
			}
			if flags.Changed("comment") {
				e.Comment = comment
			}

			if err := s.presenter.UpdateExpense(ctx, *e); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Updated expense %d", pk))); err != nil {
				return err
			}
			return view.printWarnings(out)
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "New amount in whole currency units")
	cmd.Flags().StringVar(&category, "category", "", "New category name or id (empty clears it)")
	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD or DDMMYYYY)")
	cmd.Flags().StringVar(&comment, "comment", "", "New comment")

	return cmd
}

func deleteExpenseCmd(v *viper.Viper) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pk, err := parsePK(args[0])
			if err != nil {
				return err
			}

			if !force {
				reader := cli.NewNonBlockingReader(cmd.InOrStdin())
				ok, err := cli.Confirm(ctx, reader, cmd.OutOrStdout(), fmt.Sprintf("Delete expense %d?", pk))
				if err != nil {
					return err
				}
				if !ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Deletion cancelled."))
					return err
				}
			}

			view := &terminalView{}
			s, err := openSession(ctx, v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.presenter.DeleteExpense(ctx, pk); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted expense %d", pk)))
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "yes", "y", false, "Delete without asking")

	return cmd
}

func setExpenseCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <attribute> <value>",
		Short: "Set one attribute of an expense",
		Long: `Set a single attribute from its text form. Attributes are amount,
category (a category id, empty to clear), expense_date (YYYY-MM-DD or
DDMMYYYY) and comment.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pk, err := parsePK(args[0])
			if err != nil {
				return err
			}

			view := &terminalView{}
			s, err := openSession(ctx, v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.presenter.SetExpenseAttr(ctx, pk, args[1], args[2]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			msg := fmt.Sprintf("Set %s of expense %d to %s", args[1], pk, strconv.Quote(args[2]))
			if _, err := fmt.Fprintln(out, cli.FormatSuccess(msg)); err != nil {
				return err
			}
			return view.printWarnings(out)
		},
	}
}
