package output

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// heatmapColumns folds every digit onto its most significant byte so that
// passes with wide digits fit the same 256-column grid.
const heatmapColumns = 256

// bucketGrid counts records per pass and leading digit byte.
func bucketGrid(passes []PassSummary) ([][heatmapColumns]int, int) {
	grid := make([][heatmapColumns]int, len(passes))
	var maxCount int
	for p, pass := range passes {
		shift := 8 * max(pass.Span.Width-1, 0)
		for _, b := range pass.Buckets {
			col := int(b.Digit >> shift)
			grid[p][col] += b.Count
			maxCount = max(maxCount, grid[p][col])
		}
	}
	return grid, maxCount
}

// PlotBucketHeatmap creates an interactive heatmap of bucket occupancy, one row per pass
func PlotBucketHeatmap(passes []PassSummary, filename string) error {
	if len(passes) == 0 {
		return fmt.Errorf("no passes to plot")
	}
	grid, maxCount := bucketGrid(passes)

	// Prepare data with hover info
	var heatmapData []opts.HeatMapData
	for p, row := range grid {
		for col, count := range row {
			if count == 0 {
				continue
			}
			span := passes[p].Span
			label := fmt.Sprintf("pass %d, bytes %d-%d, leading byte 0x%02x", passes[p].Pass, span.Offset, span.Offset+span.Width-1, col)
			heatmapData = append(heatmapData, opts.HeatMapData{
				Value: [3]interface{}{col, p, count},
				Name:  label, // This appears in tooltip via {b}
			})
		}
	}

	passLabels := make([]string, len(passes))
	for i, pass := range passes {
		passLabels[i] = fmt.Sprintf("pass %d", pass.Pass)
	}

	heatmap := charts.NewHeatMap()
	heatmap.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "Radix Bucket Heatmap",
			Width:           "180vh",
			Height:          "60vh",
			Theme:           types.ThemeVintage,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Records per Bucket and Pass",
			Left:  "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "item",
			Formatter: opts.FuncOpts(`function (params) {
		return params.name + '<br />Records: ' + params.value[2];
	}`),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show: opts.Bool(true),
			Min:  0,
			Max:  float32(maxCount),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#ffff8f", "#ff0000", "#000000"},
			},
			Orient: "vertical",
			Right:  "5%",
			Top:    "middle",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:        "Leading digit byte",
			Type:        "category",
			Data:        makeRange(0, heatmapColumns-1),
			SplitNumber: 16,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Pass",
			Type: "category",
			Data: passLabels,
		}),
	)

	heatmap.AddSeries("Buckets", heatmapData)

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(heatmap)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create heatmap file %s: %w", filename, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering heatmap: %w", err)
	}
	return nil
}

// makeRange creates an integer slice [min..max]
func makeRange(min, max int) []int {
	r := make([]int, max-min+1)
	for i := range r {
		r[i] = min + i
	}
	return r
}
