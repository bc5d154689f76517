package monitor

import (
	"fmt"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// handleWristCurve renders the last analysed swing's lead-wrist height
// series as a PNG, with the detected event indices marked. Debugging-only;
// the curve shape is the fastest way to sanity-check event detection on a
// new camera placement.
func (ws *WebServer) handleWristCurve(w http.ResponseWriter, r *http.Request) {
	result := ws.orch.LastResult()
	if result == nil || len(result.WristCurve) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no swing with a wrist curve analysed yet")
		return
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Lead Wrist Height (swing %s)", result.ID)
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "normalised height"
	// Image Y grows downward; flip so "up" reads up.
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	pts := make(plotter.XYs, len(result.WristCurve))
	for i, y := range result.WristCurve {
		pts[i].X = float64(i)
		pts[i].Y = y
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("build line: %v", err))
		return
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("wrist", line)

	events := plotter.XYs{
		{X: float64(result.Events.Address), Y: result.WristCurve[clampIndex(result.Events.Address, len(result.WristCurve))]},
		{X: float64(result.Events.Top), Y: result.WristCurve[clampIndex(result.Events.Top, len(result.WristCurve))]},
		{X: float64(result.Events.Impact), Y: result.WristCurve[clampIndex(result.Events.Impact, len(result.WristCurve))]},
		{X: float64(result.Events.Finish), Y: result.WristCurve[clampIndex(result.Events.Finish, len(result.WristCurve))]},
	}
	scatter, err := plotter.NewScatter(events)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("build markers: %v", err))
		return
	}
	scatter.GlyphStyle.Radius = vg.Points(4)
	p.Add(scatter)
	p.Legend.Add("events", scatter)
	p.Legend.Top = true

	wt, err := p.WriterTo(12*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render plot: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := wt.WriteTo(w); err != nil {
		return
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
