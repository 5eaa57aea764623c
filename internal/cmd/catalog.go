package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"storebot/internal/catalog"
	"storebot/internal/config"
)

var (
	catalogFile   string
	catalogSearch string
	catalogBrands int
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the product catalog",
	Long: `Load the catalog CSV the same way the bot does and print a summary:
product counts, browse buckets, the largest brands and the static item
categories. Use --search to preview what the /search command returns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := catalogFile
		if path == "" {
			config.LoadEnv()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			path = cfg.CatalogPath
		}

		store := catalog.NewStore(path)
		store.Load()
		snap := store.Snapshot()

		out := cmd.OutOrStdout()
		if catalogSearch != "" {
			printSearch(out, snap.Index, catalogSearch)
			return nil
		}
		printReport(out, store, catalogBrands)
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "catalog CSV (default from config)")
	catalogCmd.Flags().StringVarP(&catalogSearch, "search", "s", "", "show search results for a term")
	catalogCmd.Flags().IntVar(&catalogBrands, "brands", 10, "number of brands to list")
	rootCmd.AddCommand(catalogCmd)
}

func printReport(w io.Writer, store *catalog.Store, topBrands int) {
	snap := store.Snapshot()
	idx := snap.Index
	stats := store.Stats()

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📦 Catalog %v", stats["source"])))
	if degraded, _ := stats["degraded"].(bool); degraded {
		fmt.Fprintln(w, warnStyle.Render("⚠️  CSV unavailable, serving the built-in fallback catalog"))
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Cars:  "), countStyle.Render(humanize.Comma(count(stats, "cars_count"))))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Brands:"), countStyle.Render(humanize.Comma(count(stats, "brands_count"))))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Items: "), countStyle.Render(humanize.Comma(count(stats, "items_count"))))
	if loaded, ok := stats["last_loaded"].(time.Time); ok {
		fmt.Fprintf(w, "%s %s (age %v)\n", labelStyle.Render("Loaded:"), labelStyle.Render(humanize.Time(loaded)), stats["cache_age"])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Categories"))
	for _, cat := range idx.Categories() {
		products, err := idx.CategoryProducts(cat.Key)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", nameStyle.Render(cat.Name), countStyle.Render(fmt.Sprintf("(%d)", len(products))))
	}

	brands := idx.Brands()
	if topBrands > 0 && len(brands) > topBrands {
		brands = brands[:topBrands]
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Brands"))
	for _, brand := range brands {
		fmt.Fprintf(w, "  %s %s %s\n", nameStyle.Render(brand),
			countStyle.Render(fmt.Sprintf("%d", len(idx.ByBrand(brand)))),
			idStyle.Render(catalog.BucketOf(brand)))
	}
}

func printSearch(w io.Writer, idx *catalog.Index, term string) {
	results := idx.Search(term)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("🔍 %q: %d result(s)", term, len(results))))
	for _, car := range results {
		fmt.Fprintf(w, "  %s %s %s\n", nameStyle.Render(car.Name), countStyle.Render(displayPrice(car.Price)), idStyle.Render(car.ID))
	}
}

func displayPrice(p catalog.Price) string {
	if p.IsContact() {
		return p.String()
	}
	return "$" + p.String()
}

func count(stats map[string]interface{}, key string) int64 {
	n, _ := stats[key].(int)
	return int64(n)
}
