package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/bookkeeper/internal/cli"
	"github.com/Veraticus/bookkeeper/internal/consumption"
	"github.com/Veraticus/bookkeeper/internal/model"
	"github.com/Veraticus/bookkeeper/internal/presenter"
)

var _ presenter.View = (*terminalView)(nil)

// terminalView keeps what the presenter last published so a command can
// print it once the call returns.
type terminalView struct {
	categories []model.Category
	expenses   []model.Expense
	budgets    []model.Budget
	overspent  []consumption.Overflow
	totals     consumption.Consumption
}

func (v *terminalView) SetCategoryList(categories []model.Category) { v.categories = categories }

func (v *terminalView) SetExpenseList(expenses []model.Expense) { v.expenses = expenses }

func (v *terminalView) SetBudgetList(budgets []model.Budget) { v.budgets = budgets }

func (v *terminalView) UpdateConsumptions(totals consumption.Consumption) { v.totals = totals }

func (v *terminalView) WarnOverspent(overflows []consumption.Overflow) { v.overspent = overflows }

func (v *terminalView) categoryName(ref *int64) string {
	if ref == nil {
		return ""
	}
	for _, c := range v.categories {
		if c.PK == *ref {
			return c.Name
		}
	}
	return ""
}

func writeHeader(w io.Writer, columns ...string) {
	styled := make([]string, len(columns))
	rules := make([]string, len(columns))
	for i, c := range columns {
		styled[i] = cli.TableHeaderStyle.Render(c)
		rules[i] = strings.Repeat("-", max(len(c), 4))
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	fmt.Fprintln(w, strings.Join(rules, "\t"))
}

func (v *terminalView) printCategories(out io.Writer) error {
	if len(v.categories) == 0 {
		_, err := fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'bookkeeper category add' to create one."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeHeader(w, "ID", "Name", "Parent")
	for _, c := range v.categories {
		parent := v.categoryName(c.Parent)
		if parent == "" {
			parent = cli.SubtleStyle.Render("(top level)")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.PK, c.Name, parent)
	}
	return w.Flush()
}

func (v *terminalView) printExpenses(out io.Writer, expenses []model.Expense) error {
	if len(expenses) == 0 {
		_, err := fmt.Fprintln(out, cli.InfoStyle.Render("No expenses found. Use 'bookkeeper expense add' to record one."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeHeader(w, "ID", "Date", "Amount", "Category", "Comment")
	for _, e := range expenses {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			e.PK,
			e.ExpenseDate.Local().Format("2006-01-02"),
			e.Amount,
			v.categoryName(e.Category),
			e.Comment)
	}
	return w.Flush()
}

func (v *terminalView) printExpense(out io.Writer, e model.Expense) error {
	category := v.categoryName(e.Category)
	if category == "" {
		category = cli.SubtleStyle.Render("(none)")
	}

	content := fmt.Sprintf("Amount:   %d\n", e.Amount) +
		fmt.Sprintf("Category: %s\n", category) +
		fmt.Sprintf("Date:     %s\n", e.ExpenseDate.Local().Format("2006-01-02 15:04")) +
		fmt.Sprintf("Added:    %s\n", e.AddedDate.Local().Format("2006-01-02 15:04")) +
		fmt.Sprintf("Comment:  %s", e.Comment)

	_, err := fmt.Fprintln(out, cli.RenderBox(fmt.Sprintf("Expense #%d", e.PK), content))
	return err
}

func (v *terminalView) printBudgets(out io.Writer) error {
	if len(v.budgets) == 0 {
		_, err := fmt.Fprintln(out, cli.InfoStyle.Render("No budgets found. Use 'bookkeeper budget set' to create one."))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeHeader(w, "Period", "Budget", "Spent", "Remaining")
	for _, b := range v.budgets {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n",
			b.Period.Label(),
			b.TotalAmount,
			cli.FormatAmount(b.ConsumedAmount, b.TotalAmount),
			b.Remaining())
	}
	return w.Flush()
}

func (v *terminalView) printStatus(out io.Writer) error {
	totals := make(map[model.Period]int64, len(v.budgets))
	for _, b := range v.budgets {
		totals[b.Period] = b.TotalAmount
	}

	var lines []string
	for _, p := range model.Periods() {
		spent := v.totals.For(p)
		limit, ok := totals[p]
		if !ok {
			lines = append(lines, fmt.Sprintf("%-6s %d (no budget)", p.Label(), spent))
			continue
		}
		lines = append(lines, fmt.Sprintf("%-6s %s of %d", p.Label(), cli.FormatAmount(spent, limit), limit))
	}

	if _, err := fmt.Fprintln(out, cli.RenderBox(cli.ChartIcon+" Spending", strings.Join(lines, "\n"))); err != nil {
		return err
	}
	return v.printWarnings(out)
}

// printWarnings prints one line per exceeded budget, or nothing.
func (v *terminalView) printWarnings(out io.Writer) error {
	for _, o := range v.overspent {
		if _, err := fmt.Fprintln(out, cli.FormatWarning(o.String())); err != nil {
			return err
		}
	}
	return nil
}
