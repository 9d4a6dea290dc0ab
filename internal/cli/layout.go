package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crossplot/pkg/layout"
	"github.com/matzehuels/crossplot/pkg/pipeline"
)

// regionJSON is the --json form of a layout region.
type regionJSON struct {
	Side   string  `json:"side"`
	Name   string  `json:"name"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (c *CLI) layoutCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "layout [figure.toml]",
		Short: "Print the regions a figure allocates",
		Long: `Build a figure without drawing it and print the rectangle every main chunk
and side block receives. Coordinates are in inches from the bottom-left corner.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFigures,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print regions as JSON")
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, asJSON bool) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	b, err := runner.Build(ctx, pipeline.Options{Path: input, Logger: c.Logger})
	if err != nil {
		return err
	}
	if err := b.Render(); err != nil {
		return err
	}
	regions, err := b.Regions()
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(regionsJSON(regions))
	}

	w, h := b.Size()
	fmt.Println(StyleTitle.Render(displayName(input, b.Name())) + " " + StyleDim.Render(fmt.Sprintf("%.2f × %.2f in", w, h)))
	fmt.Println(renderTable([]string{"Side", "Name", "Left", "Bottom", "Width", "Height"}, regionRows(regions)))
	return nil
}

func regionsJSON(regions []layout.Region) []regionJSON {
	out := make([]regionJSON, len(regions))
	for i, r := range regions {
		out[i] = regionJSON{
			Side:   r.Side.String(),
			Name:   r.Name,
			Left:   r.Left,
			Bottom: r.Bottom,
			Width:  r.Width(),
			Height: r.Height(),
		}
	}
	return out
}

func regionRows(regions []layout.Region) [][]string {
	rows := make([][]string, len(regions))
	for i, r := range regions {
		name := r.Name
		if name == "" {
			name = "—"
		}
		rows[i] = []string{
			r.Side.String(), name,
			fmt.Sprintf("%.3f", r.Left), fmt.Sprintf("%.3f", r.Bottom),
			fmt.Sprintf("%.3f", r.Width()), fmt.Sprintf("%.3f", r.Height()),
		}
	}
	return rows
}
