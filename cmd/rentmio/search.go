package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mhsenam/rentmio/internal/browse"
	"github.com/mhsenam/rentmio/internal/models"
	"github.com/mhsenam/rentmio/internal/utils"
)

func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Browse listings page by page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			minPrice, _ := flags.GetFloat64("min-price")
			maxPrice, _ := flags.GetFloat64("max-price")
			pages, _ := flags.GetInt("pages")
			pageSize, _ := flags.GetInt("page-size")
			term, _ := flags.GetString("term")

			f := browse.Filter{Term: term}
			if flags.Changed("bedrooms") {
				n, _ := flags.GetInt("bedrooms")
				f.Bedrooms = utils.Ptr(n)
			}
			if flags.Changed("bathrooms") {
				n, _ := flags.GetFloat64("bathrooms")
				f.Bathrooms = utils.Ptr(n)
			}
			if v, _ := flags.GetString("type"); v != "" {
				f.PropertyType = utils.Ptr(v)
			}
			if v, _ := flags.GetString("location"); v != "" {
				f.Location = utils.Ptr(v)
			}

			api, _, err := openSession(cmd)
			if err != nil {
				return err
			}
			ctrl := browse.NewController(api).WithPageSize(pageSize)

			ctx := cmd.Context()
			if err := ctrl.ApplyFilters(ctx, f, browse.PriceRange{Min: minPrice, Max: maxPrice}); err != nil {
				return err
			}
			for page := 1; page < pages && ctrl.HasMore(); page++ {
				if err := ctrl.LoadMore(ctx); err != nil {
					return err
				}
			}

			if ctrl.Empty() {
				fmt.Println("No properties match these filters.")
				return nil
			}
			printProperties(ctrl.Properties())
			if ctrl.HasMore() {
				fmt.Println("More results available; raise --pages to see them.")
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Float64("min-price", browse.DefaultPriceRange.Min, "Lowest nightly or monthly price")
	flags.Float64("max-price", browse.DefaultPriceRange.Max, "Highest nightly or monthly price")
	flags.Int("bedrooms", 0, "Minimum bedrooms")
	flags.Float64("bathrooms", 0, "Minimum bathrooms")
	flags.String("type", "", "Property type, e.g. apartment")
	flags.String("location", "", "Location substring")
	flags.String("term", "", "Free-text search term")
	flags.Int("pages", 1, "How many pages to load")
	flags.Int("page-size", browse.DefaultPageSize, "Listings per page")
	return cmd
}

func printProperties(props []*models.Property) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLOCATION\tPRICE\tBEDS\tBATHS\tRATING")
	for _, p := range props {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f/%s\t%d\t%.1f\t%.1f (%d)\n",
			p.ID, p.Title, p.Location, p.Price, p.PriceType, p.Bedrooms, p.Bathrooms, p.Rating, p.ReviewCount)
	}
	_ = tw.Flush()
}
