package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleScoreHistory renders a quick line chart (HTML) of the overall-score
// series using go-echarts. This is a debugging-only endpoint (no auth) to
// eyeball score trends without a front-end.
// Query params:
//   - limit (optional; default 200) caps the number of points
func (ws *WebServer) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no database configured")
		return
	}

	limit := 200
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 2000 {
			limit = v
		}
	}

	points, err := ws.db.ScoreHistory(r.Context(), limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("score history: %v", err))
		return
	}
	if len(points) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no swings recorded yet")
		return
	}

	labels := make([]string, 0, len(points))
	data := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Timestamp.Format("01-02 15:04:05"))
		data = append(data, opts.LineData{Value: p.Score})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Swing Scores", Theme: "dark", Width: "1100px", Height: "500px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Overall Score History", Subtitle: fmt.Sprintf("last %d swings", len(points))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "score"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("overall_score", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
