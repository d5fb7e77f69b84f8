package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mdevolde/trace-analyzer/internal/activity"
)

func writeHTML(w io.Writer, c *chart) error {
	hours := make([]string, activity.HoursPerDay)
	for h := range hours {
		hours[h] = strconv.Itoa(h)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.title,
			Width:     fmt.Sprintf("%dpx", c.width),
			Height:    fmt.Sprintf("%dpx", c.height),
		}),
		charts.WithTitleOpts(opts.Title{Title: c.title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour of day", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Activity", Min: 0, Max: c.yMax}),
	)
	line.SetXAxis(hours)

	for _, s := range c.lines {
		data := make([]opts.LineData, len(s.values))
		for h, v := range s.values {
			data[h] = opts.LineData{Value: v}
		}
		line.AddSeries(s.label, data)
	}

	return line.Render(w)
}
