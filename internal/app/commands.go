package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"QueChoisir/internal/catalog"
	"QueChoisir/internal/compare"
	"QueChoisir/internal/domain"
)

// Catalog lists every product from the configured sources.
func (a *Application) Catalog(ctx context.Context, w io.Writer) error {
	products, err := a.catalog.Products(ctx)
	if err != nil {
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tPRICE\tSPECIFICATIONS")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, p.Category, p.Price.StringFixed(2), p.Specifications)
	}
	return tw.Flush()
}

// Analyze scores one product by name and prints every criterion.
func (a *Application) Analyze(ctx context.Context, w io.Writer, name string) error {
	product, err := a.findProduct(ctx, name)
	if err != nil {
		return err
	}

	result, err := a.engine.Analyze(ctx, product)
	if err != nil {
		return errors.New(a.engine.ErrorMessage())
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "%s\t%s\n", product.Name, product.Category)
	for _, c := range domain.Criteria() {
		fmt.Fprintf(tw, "%s\t%d\n", c.Label(), c.Score(result))
	}
	fmt.Fprintf(tw, "Overall\t%d\n", result.OverallScore)
	fmt.Fprintf(tw, "Weighted\t%.1f\n", domain.WeightedScore(result, a.settings.Current()))
	if err := tw.Flush(); err != nil {
		return err
	}
	if result.Reasoning != "" {
		fmt.Fprintf(w, "\n%s\n", result.Reasoning)
	}
	return nil
}

// Top refreshes the featured products and prints the weighted ranking.
// Failed products are listed as not analyzed and reported after the table.
func (a *Application) Top(ctx context.Context, w io.Writer) error {
	entries, refreshErr := a.rankings.Refresh(ctx)
	if entries == nil {
		return refreshErr
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tPRODUCT\tCATEGORY\tOVERALL\tWEIGHTED")
	for _, e := range entries {
		if !e.Analyzed {
			fmt.Fprintf(tw, "%d\t%s\t%s\t-\t-\n", e.Rank, e.Product.Name, e.Product.Category)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.1f\n", e.Rank, e.Product.Name, e.Product.Category, e.Overall, e.Weighted)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return refreshErr
}

// Compare selects up to three products, analyzes the missing ones and
// prints them side by side.
func (a *Application) Compare(ctx context.Context, w io.Writer, names []string) error {
	if len(names) < 2 || len(names) > compare.MaxProducts {
		return fmt.Errorf("compare needs 2 to %d products, got %d", compare.MaxProducts, len(names))
	}

	all, err := a.catalog.Products(ctx)
	if err != nil {
		return err
	}
	products, err := catalog.FindAll(all, names)
	if err != nil {
		return err
	}

	a.selection.Clear()
	for _, p := range products {
		if !a.selection.Toggle(p) {
			return fmt.Errorf("product %q listed twice", p.Name)
		}
	}

	selected := a.selection.Products()
	analyzeErr := a.engine.AnalyzeSelection(ctx, selected)
	weights := a.settings.Current()

	tw := newTable(w)
	header := []string{"CRITERION"}
	for _, p := range selected {
		header = append(header, p.Name)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	row := func(label string, value func(domain.Product) string) {
		cells := []string{label}
		for _, p := range selected {
			if !a.engine.HasResult(p) {
				cells = append(cells, "-")
				continue
			}
			cells = append(cells, value(p))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	for _, c := range domain.Criteria() {
		row(c.Label(), func(p domain.Product) string {
			res, _ := a.engine.Result(p)
			return strconv.Itoa(c.Score(res))
		})
	}
	row("Overall", func(p domain.Product) string {
		return strconv.Itoa(a.engine.OverallScore(p))
	})
	row("Weighted", func(p domain.Product) string {
		return strconv.FormatFloat(a.engine.WeightedScore(p, weights), 'f', 1, 64)
	})
	if err := tw.Flush(); err != nil {
		return err
	}

	if analyzeErr != nil {
		return errors.New(a.engine.ErrorMessage())
	}
	return nil
}

// Weights handles "show", "set <criterion> <value>", "reset" and "normalized".
func (a *Application) Weights(ctx context.Context, w io.Writer, args []string) error {
	action := "show"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "show":
		return printWeights(w, a.settings.Current(), a.settings.IsUsingDefaults())
	case "normalized":
		return printWeights(w, a.settings.Normalized(), false)
	case "reset":
		if err := a.settings.ResetToDefaults(ctx); err != nil {
			return err
		}
		return printWeights(w, a.settings.Current(), a.settings.IsUsingDefaults())
	case "set":
		if len(args) != 3 {
			return errors.New("usage: weights set <criterion> <value>")
		}
		criterion, err := domain.ParseCriterion(args[1])
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q: %w", args[2], err)
		}
		if err := a.settings.Update(ctx, criterion, value); err != nil {
			return err
		}
		return printWeights(w, a.settings.Current(), a.settings.IsUsingDefaults())
	default:
		return fmt.Errorf("unknown weights action %q", action)
	}
}

// printWeights renders one weight per row; isDefault marks the stored defaults.
func printWeights(w io.Writer, weights domain.WeightSettings, isDefault bool) error {
	tw := newTable(w)
	for _, c := range domain.Criteria() {
		fmt.Fprintf(tw, "%s\t%s\t%g\n", c, c.Label(), weights.Get(c))
	}
	if isDefault {
		fmt.Fprintln(tw, "(defaults)\t\t")
	}
	return tw.Flush()
}

func (a *Application) findProduct(ctx context.Context, name string) (domain.Product, error) {
	products, err := a.catalog.Products(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	return catalog.FindByName(products, name)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
