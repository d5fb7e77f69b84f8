package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mdevolde/trace-analyzer/internal/activity"
)

// imageFormats are the extensions plot.WriterTo accepts.
var imageFormats = map[string]bool{
	"png": true, "svg": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// pixelsPerInch matches the default resolution of the gonum raster canvas.
const pixelsPerInch = 96

func writeImage(w io.Writer, c *chart, format string) error {
	p := plot.New()
	p.Title.Text = c.title
	p.X.Label.Text = "Hour of day"
	p.Y.Label.Text = "Activity"
	p.X.Min = 0
	p.X.Max = activity.HoursPerDay - 1
	p.Y.Min = 0
	p.Y.Max = float64(c.yMax)
	p.Add(plotter.NewGrid())

	for i, s := range c.lines {
		pts := make(plotter.XYs, activity.HoursPerDay)
		for hour, v := range s.values {
			pts[hour] = plotter.XY{X: float64(hour), Y: float64(v)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	width := vg.Length(c.width) * vg.Inch / pixelsPerInch
	height := vg.Length(c.height) * vg.Inch / pixelsPerInch
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("%s canvas: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}
