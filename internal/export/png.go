package export

import (
	"fmt"
	"image/color"
	"io"

	"github.com/san-kum/latctl/internal/lateral"
	"github.com/san-kum/latctl/internal/sim"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var controllerColors = [lateral.NumControllers]color.Color{
	color.RGBA{R: 200, G: 0, B: 200, A: 255},
	color.RGBA{R: 0, G: 160, B: 200, A: 255},
	color.RGBA{R: 220, G: 160, B: 0, A: 255},
	color.RGBA{R: 0, G: 170, B: 90, A: 255},
}

const (
	pngWidth  = 14 * vg.Inch
	pngHeight = 6 * vg.Inch
)

// newTorquePlot draws the output torque over time with a marker per cycle
// colored by the controller that produced it.
func newTorquePlot(title string, cycles []sim.Cycle) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Torque"
	p.Y.Min, p.Y.Max = -lateral.SteerMax, lateral.SteerMax
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(cycles))
	var byController [lateral.NumControllers]plotter.XYs
	for _, c := range cycles {
		pt := plotter.XY{X: c.Time, Y: c.Command.Torque}
		pts = append(pts, pt)
		if sel := c.Command.Diagnostics.Selected; c.Command.Diagnostics.Active && sel.Valid() {
			byController[sel] = append(byController[sel], pt)
		}
	}

	if len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Width = vg.Points(1)
		line.Color = color.Gray{Y: 90}
		p.Add(line)
		p.Legend.Add("output", line)
	}

	for id, xys := range byController {
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = controllerColors[id]
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
		p.Legend.Add(lateral.ControllerID(id).String(), sc)
	}
	return p, nil
}

// RenderPNG saves the torque chart of a run to path.
func RenderPNG(path, title string, cycles []sim.Cycle) error {
	p, err := newTorquePlot(title, cycles)
	if err != nil {
		return err
	}
	if err := p.Save(pngWidth, pngHeight, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WritePNG streams the torque chart of a run to w.
func WritePNG(w io.Writer, title string, cycles []sim.Cycle) error {
	p, err := newTorquePlot(title, cycles)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
