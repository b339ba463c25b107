package render

import (
	"errors"
	"image/color"

	"github.com/soypat/jigsaw"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotHistory plots the point count of every engine call of a run and the
// size of the seed handed to the engine. Converged calls are marked. The
// image format follows the extension of path (png, svg, pdf...).
func PlotHistory(path string, trace []jigsaw.Step) error {
	p, err := historyPlot(trace)
	if err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func historyPlot(trace []jigsaw.Step) (*plot.Plot, error) {
	if len(trace) == 0 {
		return nil, errors.New("empty trace")
	}
	points := make(plotter.XYs, len(trace))
	kept := make(plotter.XYs, len(trace))
	var converged plotter.XYs
	for i, s := range trace {
		points[i].X, points[i].Y = float64(i), float64(s.Points)
		kept[i].X, kept[i].Y = float64(i), float64(s.Kept)
		if s.Converged {
			converged = append(converged, kept[i])
		}
	}
	p := plot.New()
	p.Title.Text = "Refinement history"
	p.X.Label.Text = "Engine call"
	p.Y.Label.Text = "Points"
	p.Add(plotter.NewGrid())

	lpoints, err := plotter.NewLine(points)
	if err != nil {
		return nil, err
	}
	lpoints.Color = color.RGBA{R: 0x46, G: 0x89, B: 0x66, A: 255}
	lkept, err := plotter.NewLine(kept)
	if err != nil {
		return nil, err
	}
	lkept.Color = color.RGBA{R: 0xb6, G: 0x49, B: 0x26, A: 255}
	lkept.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(lpoints, lkept)
	p.Legend.Add("mesh", lpoints)
	p.Legend.Add("seed", lkept)
	if len(converged) > 0 {
		sc, err := plotter.NewScatter(converged)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("converged", sc)
	}
	return p, nil
}
