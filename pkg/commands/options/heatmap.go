package options

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// HeatmapOptions selects the month or year to draw.
type HeatmapOptions struct {
	Month    int
	Year     int
	FullYear bool
}

func AddHeatmapArgs(cmd *cobra.Command, o *HeatmapOptions) {
	cmd.Flags().IntVarP(&o.Month, "month", "m", 0,
		"Month to show, 1-12. Defaults to the current month.")
	cmd.Flags().IntVarP(&o.Year, "year", "y", 0,
		"Year to show. Defaults to the current year.")
	cmd.Flags().BoolVar(&o.FullYear, "full-year", false,
		"Show all twelve months.")
}

// Resolve fills zero values from now and checks the month.
func (o *HeatmapOptions) Resolve(now time.Time) (int, time.Month, error) {
	year, month := o.Year, time.Month(o.Month)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	if month < time.January || month > time.December {
		return 0, 0, fmt.Errorf("invalid month %d, expected 1-12", o.Month)
	}
	return year, month, nil
}
