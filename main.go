package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/swing.report/internal/capture"
	"github.com/banshee-data/swing.report/internal/config"
	"github.com/banshee-data/swing.report/internal/db"
	"github.com/banshee-data/swing.report/internal/monitor"
	"github.com/banshee-data/swing.report/internal/pipeline"
	"github.com/banshee-data/swing.report/internal/pose"
	"github.com/banshee-data/swing.report/internal/shotmux"
	"github.com/banshee-data/swing.report/internal/swing"
	"github.com/banshee-data/swing.report/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to JSON configuration file (optional; defaults apply)")
	devMode    = flag.Bool("dev", false, "Run with a scripted pose adapter and a mock launch monitor feed")
	listen     = flag.String("listen", "", "HTTP listen address (overrides config)")
	dbFile     = flag.String("db", "", "Path to the SQLite database file (overrides config)")
	club       = flag.String("club", "", "Start a session for this club at boot (e.g. 7i, driver)")
	verbose    = flag.Bool("verbose", false, "Enable diagnostic logging")
	trace      = flag.Bool("trace", false, "Enable trace logging (implies -verbose)")
)

// mockShotLine is the launch monitor payload replayed in dev mode, in the
// OpenGolfSim JSON shape.
const mockShotLine = `{"BallData":{"Speed":142.5,"VerticalAngle":14.2,"HorizontalAngle":-1.3,"TotalSpin":5600},"ClubData":{"Speed":96.1},"ShotData":{"CarryDistance":168,"TotalDistance":181},"Club":"7i"}`

func setupLogging() {
	var diag, tr io.Writer
	if *verbose || *trace {
		diag = os.Stderr
	}
	if *trace {
		tr = os.Stderr
	}
	swing.SetLogWriters(swing.LogWriters{Ops: os.Stderr, Diag: diag, Trace: tr})
	capture.SetLogWriters(capture.LogWriters{Ops: os.Stderr, Diag: diag, Trace: tr})
	pipeline.SetLogWriters(pipeline.LogWriters{Ops: os.Stderr, Diag: diag, Trace: tr})
	shotmux.SetLogWriters(shotmux.LogWriters{Ops: os.Stderr, Diag: diag, Trace: tr})
}

func loadConfig() *config.CaptureConfig {
	if *configPath == "" {
		return config.EmptyCaptureConfig()
	}
	cfg, err := config.LoadCaptureConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %q: %v", *configPath, err)
	}
	return cfg
}

// buildPoseAdapter picks the pose estimation binding. A real estimator binds
// here through pose.Adapter; dev mode replays a scripted swing so the whole
// pipeline exercises without one.
func buildPoseAdapter() pose.Adapter {
	if *devMode {
		return pose.NewScriptedAdapter(pose.SyntheticSwing(90))
	}
	return pose.NullAdapter{}
}

// batchOptionsFromConfig plumbs the batch tuning fields of the capture
// config into one run's options.
func batchOptionsFromConfig(cfg *config.CaptureConfig, club string) pipeline.BatchOptions {
	return pipeline.BatchOptions{
		Downsample: cfg.GetDownsampleFactor(),
		Timeout:    cfg.GetBatchTimeout(),
		Club:       club,
	}
}

// runBatchCommand analyses one recorded swing from two directories of
// extracted frames, saves the result, and prints a summary.
func runBatchCommand(args []string, cfg *config.CaptureConfig) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	frontDir := fs.String("front", "", "Directory of front-view frames (png/jpeg, filename order)")
	sideDir := fs.String("side", "", "Directory of side-view frames")
	batchClub := fs.String("club", "", "Club for corpus matching (e.g. 7i, driver)")
	fs.Parse(args)
	if *frontDir == "" || *sideDir == "" {
		log.Fatal("batch requires -front and -side frame directories")
	}

	front, err := pipeline.NewDirFrameSource(*frontDir)
	if err != nil {
		log.Fatalf("Failed to open front frames: %v", err)
	}
	side, err := pipeline.NewDirFrameSource(*sideDir)
	if err != nil {
		log.Fatalf("Failed to open side frames: %v", err)
	}

	database, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	adapter := buildPoseAdapter()
	defer adapter.Close()

	pcfg := pipeline.DefaultConfig()
	pcfg.FPS = cfg.GetFPS()
	pcfg.ResizeWidth = cfg.GetResizeWidth()
	orch := pipeline.New(pcfg, adapter, nil, pipeline.WithCorpus(database))

	opts := batchOptionsFromConfig(cfg, *batchClub)
	opts.Progress = func(fraction float64, message string) {
		log.Printf("batch %3.0f%%: %s", fraction*100, message)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batch, err := orch.RunBatch(ctx, front, side, opts)
	if err != nil {
		log.Fatalf("Batch failed after %d/%d pairs: %v (%s)", batch.ProcessedPairs, batch.TotalPairs, err, batch.Message)
	}
	for _, e := range batch.Errors {
		log.Printf("batch warning: %s", e)
	}

	// The batch orchestrator has no sink; the save is explicit so the
	// process cannot exit before the result lands.
	r := batch.Result
	if err := database.SaveResult(ctx, r); err != nil {
		log.Fatalf("Failed to save swing %s: %v", r.ID, err)
	}
	fmt.Printf("swing %s: score %.1f, %d flaws, match %s (similarity %.1f), club %q, %d pairs in %s\n",
		r.ID, r.Flaws.OverallScore, r.Flaws.FlawCount, r.Match.Label, r.Match.Similarity,
		r.Club, batch.ProcessedPairs, batch.Elapsed.Round(time.Millisecond))
}

// buildShotFeed picks the launch monitor transport: mock in dev mode, serial
// when a device path is configured, UDP when a listen address is configured.
// Returns nil when no feed is configured.
func buildShotFeed(cfg *config.CaptureConfig) shotmux.Feed {
	if *devMode {
		return shotmux.NewMockShotMux([]byte(mockShotLine), cfg.GetDebounce())
	}
	if path := cfg.GetShotSerialPath(); path != "" {
		feed, err := shotmux.NewSerialShotMux(path, shotmux.PortOptions{})
		if err != nil {
			log.Fatalf("Failed to open launch monitor serial port %q: %v", path, err)
		}
		return feed
	}
	if addr := cfg.GetShotListenAddr(); addr != "" {
		feed, err := shotmux.NewUDPShotMux(addr)
		if err != nil {
			log.Fatalf("Failed to open launch monitor UDP listener %q: %v", addr, err)
		}
		return feed
	}
	return nil
}

// Main
func main() {
	flag.Parse()
	setupLogging()
	log.Printf("swing.report %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	cfg := loadConfig()
	if *listen != "" {
		cfg.ListenAddr = listen
	}
	if *dbFile != "" {
		cfg.DBPath = dbFile
	}

	// Subcommands run and exit before any of the live pipeline spins up.
	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "migrate":
			db.RunMigrateCommand(args[1:], cfg.GetDBPath(), cfg.GetMigrationsDir())
			return
		case "batch":
			runBatchCommand(args[1:], cfg)
			return
		}
	}

	database, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Camera sources. Hardware capture binds here through capture.Source; the
	// synthetic source keeps the rig runnable without cameras attached.
	frontBuf := capture.NewFrameBuffer(cfg.GetBufferSeconds(), cfg.GetFPS())
	sideBuf := capture.NewFrameBuffer(cfg.GetBufferSeconds(), cfg.GetFPS())
	frontSrc := capture.NewSyntheticSource(640, 480, cfg.GetFPS(), nil)
	sideSrc := capture.NewSyntheticSource(640, 480, cfg.GetFPS(), nil)
	front := capture.NewCamera(cfg.GetFrontCamera(), frontSrc, frontBuf, nil)
	side := capture.NewCamera(cfg.GetSideCamera(), sideSrc, sideBuf, nil)
	cameras := []*capture.Camera{front, side}

	adapter := buildPoseAdapter()
	defer adapter.Close()

	feed := buildShotFeed(cfg)
	var shotLog *shotmux.ShotLog
	if feed != nil {
		defer feed.Close()
		shotLog = shotmux.NewShotLog(cfg.GetMinShotInterval(), nil)
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.FPS = cfg.GetFPS()
	pcfg.PollInterval = cfg.GetPollInterval()
	pcfg.Debounce = cfg.GetDebounce()
	pcfg.ResizeWidth = cfg.GetResizeWidth()

	opts := []pipeline.Option{
		pipeline.WithCorpus(database),
		pipeline.WithSink(database),
	}
	if shotLog != nil {
		opts = append(opts, pipeline.WithShots(shotLog))
	}
	orch := pipeline.New(pcfg, adapter, cameras, opts...)

	if *club != "" {
		if _, err := orch.StartSession(*club); err != nil {
			log.Fatalf("Failed to start session for club %q: %v", *club, err)
		}
		log.Printf("Session started for club %q", *club)
	}

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address:  cfg.GetListenAddr(),
		Pipeline: orch,
		DB:       database,
		Shots:    shotLog,
		Cameras:  cameras,
	})

	// Mount the admin debugging routes (accessible only in dev mode or over
	// Tailscale).
	database.AttachAdminRoutes(ws.Mux())
	if feed != nil {
		feed.AttachAdminRoutes(ws.Mux())
	}

	// Create a wait group for the camera, shot feed, pipeline, and HTTP
	// server routines.
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, cam := range cameras {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cam.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("camera %s error: %v", cam.ID, err)
			}
			log.Printf("camera %s routine terminated", cam.ID)
		}()
	}

	if feed != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := feed.Monitor(ctx); err != nil && err != context.Canceled {
				log.Printf("failed to monitor launch monitor feed: %v", err)
			}
			log.Print("shot feed routine terminated")
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := shotLog.Run(ctx, feed); err != nil && err != context.Canceled {
				log.Printf("shot log error: %v", err)
			}
			log.Print("shot log routine terminated")
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := orch.RunLive(ctx); err != nil && err != context.Canceled {
			log.Printf("live pipeline error: %v", err)
		}
		log.Print("live pipeline routine terminated")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("web server error: %v", err)
		}
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
