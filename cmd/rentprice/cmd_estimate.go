package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rushteam/rentprice/config"
	"github.com/rushteam/rentprice/core"
)

type estimateOptions struct {
	bedrooms   int
	bathrooms  int
	attrs      core.PropertyAttributes
	outputJSON bool
}

func newEstimateCommand(root *rootOptions) *cobra.Command {
	opts := &estimateOptions{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate monthly rent for a property",
		Example: `  rentprice estimate --bedrooms 2 --property-type Flat --city London --postcode "SW1A 1AA"
  rentprice estimate -c rentprice.yaml --bedrooms 3 --property-type House --garden --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.bind(cmd)
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			rt, err := config.Build(cmd.Context(), cfg, slog.Default())
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Service.Estimate(cmd.Context(), opts.attrs)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), res, opts.outputJSON)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.bedrooms, "bedrooms", 0, "Number of bedrooms (required)")
	f.IntVar(&opts.bathrooms, "bathrooms", 0, "Number of bathrooms")
	f.StringVar(&opts.attrs.PropertyType, "property-type", "", "Property type, e.g. Flat, House (required)")
	f.StringVar(&opts.attrs.City, "city", "", "City")
	f.StringVar(&opts.attrs.Postcode, "postcode", "", "Postcode")
	f.StringVar(&opts.attrs.FurnishingStatus, "furnishing", "", "Furnishing status, e.g. Furnished")
	f.BoolVar(&opts.attrs.HasParking, "parking", false, "Property has parking")
	f.BoolVar(&opts.attrs.HasGarden, "garden", false, "Property has a garden")
	f.BoolVar(&opts.outputJSON, "json", false, "Print the result as JSON")

	return cmd
}

// bind copies int flags into optional fields only when the user set them,
// so a missing --bedrooms is reported as missing rather than as 0.
func (o *estimateOptions) bind(cmd *cobra.Command) {
	if cmd.Flags().Changed("bedrooms") {
		o.attrs.Bedrooms = core.IntPtr(o.bedrooms)
	}
	if cmd.Flags().Changed("bathrooms") {
		o.attrs.Bathrooms = core.IntPtr(o.bathrooms)
	}
}

func writeResult(w io.Writer, res *core.PredictionResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintf(w, "Estimated rent: %.0f / month\n", res.EstimatedPrice)
	fmt.Fprintf(w, "Range:          %.0f - %.0f\n", res.PriceRange.Min, res.PriceRange.Max)
	fmt.Fprintf(w, "Confidence:     %.0f%%\n", res.Confidence*100)
	fmt.Fprintf(w, "Source:         %s\n", res.ModelStatus)
	if len(res.ComparableProperties) > 0 {
		fmt.Fprintf(w, "Comparables:\n")
		for _, c := range res.ComparableProperties {
			fmt.Fprintf(w, "  %-12s %8.0f  %d bed %s %s\n", c.ID, c.PricePerMonth, c.Bedrooms, c.PropertyType, c.Postcode)
		}
	}
	return nil
}
