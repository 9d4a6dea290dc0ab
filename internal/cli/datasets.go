package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crossplot/pkg/dataset"
)

func (c *CLI) datasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"data"},
		Short:   "List, fetch and preview the example datasets",
	}

	cmd.AddCommand(c.datasetsListCommand())
	cmd.AddCommand(c.datasetsFetchCommand())
	cmd.AddCommand(c.datasetsShowCommand())
	cmd.AddCommand(c.datasetsPickCommand())

	return cmd
}

func (c *CLI) datasetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the known datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, e := range dataset.Catalog() {
				rows = append(rows, []string{e.Name, strings.Join(tableNames(e), ", "), e.Description})
			}
			fmt.Println(renderTable([]string{"Dataset", "Tables", "Description"}, rows))
			return nil
		},
	}
}

func (c *CLI) datasetsFetchCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:               "fetch [dataset...]",
		Short:             "Download datasets into the cache",
		Long:              `Download the named datasets, or every dataset when none is named, so later renders work offline.`,
		ValidArgsFunction: completeDatasets,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = dataset.Names()
			}
			return c.runFetch(cmd.Context(), args, refresh)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "download again even if cached")
	return cmd
}

func (c *CLI) runFetch(ctx context.Context, names []string, refresh bool) error {
	backend, err := c.openCache(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()
	loader := c.newLoader(backend, refresh)

	failed := 0
	for _, name := range names {
		prog := newProgress(c.Logger)
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %s...", name))
		spinner.Start()
		ds, err := loader.Load(ctx, name)
		spinner.Stop()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			printWarning("%s: %v", name, err)
			failed++
			continue
		}
		prog.done("fetched dataset", "name", name, "tables", len(ds.Tables()))
		printSuccess("%s", name)
		for _, table := range ds.Tables() {
			t, _ := ds.Table(table)
			printDetail("%-12s %d rows × %d columns", table, t.Len(), len(t.Columns))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed", failed, len(names))
	}
	return nil
}

func (c *CLI) datasetsShowCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show [dataset] [table]",
		Short: "Preview the first rows of a dataset table",
		Args:  cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return dataset.Names(), cobra.ShellCompDirectiveNoFileComp
			}
			e, err := dataset.Lookup(args[0])
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return tableNames(e), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			table := ""
			if len(args) == 2 {
				table = args[1]
			}
			return c.runShow(cmd.Context(), args[0], table, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "rows", "n", 10, "number of rows to show")
	return cmd
}

func (c *CLI) runShow(ctx context.Context, name, table string, limit int) error {
	backend, err := c.openCache(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	t, err := c.newLoader(backend, false).LoadTable(ctx, name, table)
	if err != nil {
		return err
	}

	headers := append([]string{"#"}, t.Columns...)
	if t.Index != nil {
		headers[0] = ""
	}
	rowNames := t.RowNames()
	n := min(limit, t.Len())
	rows := make([][]string, n)
	for i := range n {
		rows[i] = append([]string{rowNames[i]}, t.Rows[i]...)
	}

	fmt.Println(StyleTitle.Render(name+"/"+t.Name) + " " + StyleDim.Render(fmt.Sprintf("%d rows × %d columns", t.Len(), len(t.Columns))))
	fmt.Println(renderTable(headers, rows))
	if numeric := numericSummary(t); numeric != "" {
		printDetail("%s", numeric)
	}
	return nil
}

// numericSummary reports the value range of the table's numeric columns.
func numericSummary(t *dataset.Table) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	cols := 0
	for _, col := range t.Columns {
		values, err := t.Floats(col)
		if err != nil {
			continue
		}
		cols++
		for _, v := range values {
			if !math.IsNaN(v) {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
	}
	if cols == 0 || math.IsInf(lo, 1) {
		return ""
	}
	return fmt.Sprintf("%d numeric columns, range [%s, %s]", cols,
		strconv.FormatFloat(lo, 'g', 4, 64), strconv.FormatFloat(hi, 'g', 4, 64))
}

func (c *CLI) datasetsPickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a dataset interactively and fetch it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(NewDatasetListModel(dataset.Catalog()), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			m, ok := final.(DatasetListModel)
			if !ok || m.Selected == nil {
				printInfo("No dataset selected")
				return nil
			}
			if err := c.runFetch(cmd.Context(), []string{m.Selected.Name}, false); err != nil {
				return err
			}
			printNewline()
			printNextStep("Preview", "crossplot datasets show "+m.Selected.Name)
			return nil
		},
	}
}
