package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/bookkeeper/internal/categorytree"
	"github.com/Veraticus/bookkeeper/internal/cli"
	"github.com/Veraticus/bookkeeper/internal/common"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func categoryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage expense categories",
		Long:    `List, add, update, delete and import the categories expenses are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd(v))
	cmd.AddCommand(addCategoryCmd(v))
	cmd.AddCommand(updateCategoryCmd(v))
	cmd.AddCommand(deleteCategoryCmd(v))
	cmd.AddCommand(importCategoriesCmd(v))

	return cmd
}

func listCategoriesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
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
			return view.printCategories(cmd.OutOrStdout())
		},
	}
}

func addCategoryCmd(v *viper.Viper) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a category, optionally below an existing parent given by name or id.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			parentRef, err := resolveCategory(view.categories, parent)
			if err != nil {
				return err
			}

			pk, err := s.presenter.CreateCategory(ctx, args[0], parentRef)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (id %d)", args[0], pk)))
			return err
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent category name or id")

	return cmd
}

func updateCategoryCmd(v *viper.Viper) *cobra.Command {
	var (
		name     string
		parent   string
		noParent bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category or move it under another parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pk, err := parsePK(args[0])
			if err != nil {
				return err
			}
			if parent != "" && noParent {
				return fmt.Errorf("--parent and --no-parent cannot be combined")
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

			var cat *model.Category
			for i := range view.categories {
				if view.categories[i].PK == pk {
					cat = &view.categories[i]
					break
				}
			}
			if cat == nil {
				return fmt.Errorf("category %d: %w", pk, common.ErrNotFound)
			}

			if name != "" {
				cat.Name = name
			}
			switch {
			case noParent:
				cat.Parent = nil
			case parent != "":
				if cat.Parent, err = resolveCategory(view.categories, parent); err != nil {
					return err
				}
			}

			if err := s.presenter.UpdateCategory(ctx, *cat); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %d", pk)))
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New category name")
	cmd.Flags().StringVar(&parent, "parent", "", "New parent category name or id")
	cmd.Flags().BoolVar(&noParent, "no-parent", false, "Move the category to the top level")

	return cmd
}

func deleteCategoryCmd(v *viper.Viper) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. Subcategories move to the top level and expenses
filed under it become uncategorized.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pk, err := parsePK(args[0])
			if err != nil {
				return err
			}

			if !force {
				reader := cli.NewNonBlockingReader(cmd.InOrStdin())
				ok, err := cli.Confirm(ctx, reader, cmd.OutOrStdout(), fmt.Sprintf("Delete category %d?", pk))
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

			if err := s.presenter.DeleteCategory(ctx, pk); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %d", pk)))
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "yes", "y", false, "Delete without asking")

	return cmd
}

func importCategoriesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import an indented category outline",
		Long: `Import categories from an outline where each line is a name and
indentation marks the parent. Use - to read from standard input.

  produce
  meat
      raw meat
      meat products`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read outline: %w", err)
			}

			pairs, err := categorytree.Parse(bytes.NewReader(data))
			if err != nil {
				return err
			}

			view := &terminalView{}
			s, err := openSession(ctx, v, view)
			if err != nil {
				return err
			}
			defer s.Close()

			progress := cli.NewProgress(cmd.ErrOrStderr(), len(pairs), "Importing categories...")
			imported, err := s.presenter.ImportCategories(ctx, bytes.NewReader(data), progress.Step)
			progress.Done()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d categories", len(imported))))
			return err
		},
	}
}
