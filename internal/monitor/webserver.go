// Package monitor serves the HTTP interface of the swing analyzer: a status
// and results API plus debug-grade chart endpoints for tuning the capture
// rig. It is not a front-end; the endpoints are the operator's window into a
// running pipeline.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/swing.report/internal/capture"
	"github.com/banshee-data/swing.report/internal/db"
	"github.com/banshee-data/swing.report/internal/pipeline"
	"github.com/banshee-data/swing.report/internal/shotmux"
	"github.com/banshee-data/swing.report/internal/version"
)

// WebServer handles the HTTP interface for monitoring the swing pipeline.
type WebServer struct {
	address string
	orch    *pipeline.Orchestrator
	db      *db.DB
	shots   *shotmux.ShotLog
	cameras []*capture.Camera
	server  *http.Server
	started time.Time
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address  string
	Pipeline *pipeline.Orchestrator
	DB       *db.DB
	Shots    *shotmux.ShotLog
	Cameras  []*capture.Camera
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address: config.Address,
		orch:    config.Pipeline,
		db:      config.DB,
		shots:   config.Shots,
		cameras: config.Cameras,
		started: time.Now(),
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Mux exposes the underlying mux so callers can attach debug routes
// (shotmux console, tailsql) before Start.
func (ws *WebServer) Mux() *http.ServeMux {
	return ws.server.Handler.(*http.ServeMux)
}

// Start begins the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/status", ws.handleStatus)
	mux.HandleFunc("/api/swings", ws.handleSwings)
	mux.HandleFunc("/api/swing", ws.handleSwing)
	mux.HandleFunc("/api/latest", ws.handleLatest)
	mux.HandleFunc("/api/references", ws.handleReferences)
	mux.HandleFunc("/debug/charts/score-history", ws.handleScoreHistory)
	mux.HandleFunc("/debug/charts/wrist-curve", ws.handleWristCurve)

	return mux
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"git_sha": version.GitSHA,
	})
}

// statusResponse is the /api/status payload.
type statusResponse struct {
	Uptime       string         `json:"uptime"`
	SessionID    string         `json:"session_id,omitempty"`
	SessionState string         `json:"session_state"`
	SwingCount   int            `json:"swing_count"`
	PoseCount    int            `json:"pose_count"`
	Cameras      []cameraStatus `json:"cameras"`
	ShotsSeen    int            `json:"shots_seen"`
	ShotsDropped int            `json:"shots_dropped"`
}

type cameraStatus struct {
	ID         string `json:"id"`
	Buffered   int    `json:"buffered"`
	Capacity   int    `json:"capacity"`
	GrabErrors uint64 `json:"grab_errors"`
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Uptime:       time.Since(ws.started).Round(time.Second).String(),
		SessionState: string(pipeline.SessionIdle),
	}
	if s := ws.orch.Session(); s != nil {
		resp.SessionID = s.ID
		resp.SessionState = string(s.State())
		resp.SwingCount = s.SwingCount()
		resp.PoseCount = s.PoseCount()
	}
	for _, cam := range ws.cameras {
		resp.Cameras = append(resp.Cameras, cameraStatus{
			ID:         cam.ID,
			Buffered:   cam.Buffer().Len(),
			Capacity:   cam.Buffer().Capacity(),
			GrabErrors: cam.GrabErrors(),
		})
	}
	if ws.shots != nil {
		resp.ShotsSeen, resp.ShotsDropped = ws.shots.Stats()
	}
	ws.writeJSON(w, resp)
}

func (ws *WebServer) handleSwings(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no database configured")
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	swings, err := ws.db.ListSwings(r.Context(), limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list swings: %v", err))
		return
	}
	ws.writeJSON(w, swings)
}

func (ws *WebServer) handleSwing(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no database configured")
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "missing 'id' parameter")
		return
	}
	swing, err := ws.db.GetSwing(r.Context(), id)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("get swing: %v", err))
		return
	}
	if swing == nil {
		ws.writeJSONError(w, http.StatusNotFound, "swing not found")
		return
	}
	ws.writeJSON(w, swing)
}

func (ws *WebServer) handleLatest(w http.ResponseWriter, r *http.Request) {
	result := ws.orch.LastResult()
	if result == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no swing analysed yet")
		return
	}
	ws.writeJSON(w, result)
}

func (ws *WebServer) handleReferences(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		ws.writeJSONError(w, http.StatusInternalServerError, "no database configured")
		return
	}
	refs, err := ws.db.ListReferences(r.Context(), r.URL.Query().Get("club"))
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list references: %v", err))
		return
	}
	ws.writeJSON(w, refs)
}
