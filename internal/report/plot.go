package report

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"vidstab/internal/motion"
)

var (
	rawColor      = color.RGBA{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF}
	smoothedColor = color.RGBA{R: 0x7C, G: 0x3A, B: 0xED, A: 0xFF}
)

// AnglePlotPath is where PlotTrajectory puts the rotation chart for a
// translation chart written to path.
func AnglePlotPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_angle" + ext
}

// PlotTrajectory charts the raw and smoothed camera path. Translation goes
// to path and rotation to AnglePlotPath(path); the image format follows the
// extension. It returns the files written.
func PlotTrajectory(path string, raw, smoothed motion.Trajectory) ([]string, error) {
	if len(raw) != len(smoothed) {
		return nil, fmt.Errorf("%w: raw has %d points, smoothed %d",
			motion.ErrShapeMismatch, len(raw), len(smoothed))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no trajectory to plot")
	}

	pTr := plot.New()
	pTr.Title.Text = "Camera Translation"
	pTr.X.Label.Text = "Frame"
	pTr.Y.Label.Text = "Offset (px)"

	pAngle := plot.New()
	pAngle.Title.Text = "Camera Rotation"
	pAngle.X.Label.Text = "Frame"
	pAngle.Y.Label.Text = "Angle (rad)"

	series := []struct {
		p      *plot.Plot
		label  string
		dashed bool
		pick   func(motion.TrajectoryPoint) float64
	}{
		{pTr, "x", false, func(p motion.TrajectoryPoint) float64 { return p.X }},
		{pTr, "y", true, func(p motion.TrajectoryPoint) float64 { return p.Y }},
		{pAngle, "angle", false, func(p motion.TrajectoryPoint) float64 { return p.A }},
	}

	for _, s := range series {
		for _, tr := range []struct {
			name  string
			t     motion.Trajectory
			color color.Color
		}{
			{"raw", raw, rawColor},
			{"smoothed", smoothed, smoothedColor},
		} {
			line, err := plotter.NewLine(points(tr.t, s.pick))
			if err != nil {
				return nil, err
			}
			line.Color = tr.color
			line.Width = vg.Points(1)
			if s.dashed {
				line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			}
			s.p.Add(line)
			s.p.Legend.Add(fmt.Sprintf("%s %s", tr.name, s.label), line)
		}
	}

	written := make([]string, 0, 2)
	for _, out := range []struct {
		p    *plot.Plot
		path string
	}{
		{pTr, path},
		{pAngle, AnglePlotPath(path)},
	} {
		out.p.Legend.Top = true
		out.p.Legend.Left = false
		out.p.Legend.XOffs = -10
		out.p.Legend.YOffs = -10

		if err := out.p.Save(14*vg.Inch, 6*vg.Inch, out.path); err != nil {
			return written, fmt.Errorf("save plot %s: %w", out.path, err)
		}
		written = append(written, out.path)
	}
	return written, nil
}

func points(t motion.Trajectory, pick func(motion.TrajectoryPoint) float64) plotter.XYs {
	pts := make(plotter.XYs, len(t))
	for i, p := range t {
		pts[i] = plotter.XY{X: float64(i + 1), Y: pick(p)}
	}
	return pts
}
