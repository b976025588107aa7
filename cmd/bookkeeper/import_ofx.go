package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/bookkeeper/internal/cli"
	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/ofx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importOFXCmd(v *viper.Viper) *cobra.Command {
	var (
		category string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import expenses from OFX/QFX files",
		Long: `Import the debits of OFX or QFX (Quicken) statements exported from your
bank as expenses. Credits are skipped and amounts are rounded to whole units.

Examples:
  # Import single file
  bookkeeper import-ofx ~/Downloads/checking_jan_2024.qfx

  # Import all QFX files in a directory under one category
  bookkeeper import-ofx --category groceries ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), "Expenses imported so far are kept.")

			parser := ofx.NewParser()
			var expenses []model.Expense
			for _, path := range files {
				parsed, err := parseOFXFile(ctx, parser, path)
				if err != nil {
					common.LogError(err, "Skipping OFX file", common.Fields{"file": path})
					continue
				}
				expenses = append(expenses, parsed...)
			}

			out := cmd.OutOrStdout()
			if len(expenses) == 0 {
				_, err := fmt.Fprintln(out, cli.FormatInfo("No debits found to import"))
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

			if dryRun {
				for i := range expenses {
					expenses[i].Category = categoryRef
				}
				if err := view.printExpenses(out, expenses); err != nil {
					return err
				}
				_, err := fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d expenses would be imported", len(expenses))))
				return err
			}

			progress := cli.NewProgress(cmd.ErrOrStderr(), len(expenses), "Importing expenses...")
			imported := 0
			for _, e := range expenses {
				if err := ctx.Err(); err != nil {
					break
				}
				e.Category = categoryRef
				if _, err := s.presenter.CreateExpense(ctx, e); err != nil {
					progress.Done()
					return fmt.Errorf("imported %d of %d expenses: %w", imported, len(expenses), err)
				}
				imported++
				progress.Step()
			}
			progress.Done()

			if _, err := fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d of %d expenses", imported, len(expenses)))); err != nil {
				return err
			}
			if err := view.printWarnings(out); err != nil {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "File every imported expense under this category (name or id)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Preview import without saving")

	return cmd
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) ([]model.Expense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	expenses, err := parser.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	slog.Info("Processed file", "file", filepath.Base(path), "expenses", len(expenses))
	return expenses, nil
}
