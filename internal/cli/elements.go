package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/alchemytree/pkg/recipe"
)

// elementsCommand creates the elements command for listing the catalog.
func (c *CLI) elementsCommand() *cobra.Command {
	var basicOnly bool

	cmd := &cobra.Command{
		Use:   "elements",
		Short: "List the element catalog",
		Long: `List the element catalog used to label recipe nodes.

The built-in catalog is used unless the config file names another one
(catalog = "path/to/catalog.toml").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := c.loadCatalog()
			if err != nil {
				return err
			}
			if cat == nil {
				cat = recipe.DefaultCatalog()
			}
			elems := cat.Elements()
			if basicOnly {
				elems = basicElements(elems)
			}
			printElements(elems)
			return nil
		},
	}

	cmd.Flags().BoolVar(&basicOnly, "basic", false, "list only basic elements")

	return cmd
}

func basicElements(elems []recipe.Element) []recipe.Element {
	var out []recipe.Element
	for _, e := range elems {
		if e.IsBasic {
			out = append(out, e)
		}
	}
	return out
}

// elementsTable lays out elems as a bordered table.
func elementsTable(elems []recipe.Element) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, len(elems))
	for _, e := range elems {
		basic := ""
		if e.IsBasic {
			basic = "basic"
		}
		rows = append(rows, []string{strconv.Itoa(e.ID), e.Glyph, e.Name, basic})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "", "Element", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return StyleDim
			case elems[row].IsBasic:
				return styleBasic
			}
			return StyleValue
		})
}

func printElements(elems []recipe.Element) {
	if len(elems) == 0 {
		printInfo("No elements")
		return
	}
	fmt.Fprintln(stdout, elementsTable(elems).Render())
	printDetail("%s", plural(len(elems), "element"))
}
