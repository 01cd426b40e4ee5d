package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadgen/config"
	"leadgen/httputil"
	"leadgen/logging"
	"leadgen/scheduler"
	"leadgen/scraper"
	"leadgen/services"
	"leadgen/storage"
	"leadgen/workers"
)

var (
	mode       = flag.String("mode", "", "Run one scrape in the given mode (test|full|debug) and exit")
	location   = flag.String("location", "", "Scrape a single location across all categories and exit")
	exportFlag = flag.Bool("export", false, "Export businesses without websites to CSV and exit")
	exportCity = flag.String("city", "", "City filter for -export")
	exportOut  = flag.String("out", "", "Output filename for -export (default: auto-generated)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("leadgen.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Loaded %d locations x %d categories",
		len(cfg.Tasks.Locations), len(cfg.Tasks.Categories))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()

	if *exportFlag {
		exporter := services.NewExportService(pgStore)
		path, count, err := exporter.ExportCSV(ctx, *exportCity, *exportOut)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.Printf("Exported %d businesses without websites to %s", count, path)
		return
	}

	opsStore, err := storage.NewSQLiteStore(cfg.OpsDBPath)
	if err != nil {
		log.Fatalf("Failed to open ops database: %v", err)
	}
	defer opsStore.Close()

	leadService := services.NewLeadService(pgStore)
	orchestrator := scraper.NewOrchestrator(cfg, pgStore, leadService)
	orchestrator.SetOpsLogger(opsStore)
	metrics := scraper.NewMetrics()
	orchestrator.SetMetrics(metrics)

	// Cooperative stop: cancel between items so in-flight runs finalize
	// as partial instead of being killed.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Stop requested, finishing current item...")
		cancel()
	}()

	if *location != "" {
		log.Printf("Running interactive scrape for %s", *location)
		if err := orchestrator.RunLocation(ctx, *location); err != nil && ctx.Err() == nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		log.Println("Scrape complete")
		return
	}

	if *mode != "" {
		log.Printf("Running %s scrape", *mode)
		if err := orchestrator.RunMode(ctx, *mode); err != nil && ctx.Err() == nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		log.Println("Scrape complete")
		return
	}

	// Daemon mode.
	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler()}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server failed: %v", err)
			}
		}()
		defer metricsServer.Close()
		log.Printf("Metrics served on %s", cfg.MetricsAddr)
	}

	sched := scheduler.New(cfg, orchestrator, opsStore)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	clients := httputil.NewClients(os.Getenv("PROXY_URL"))
	websiteWorker := workers.NewWebsiteCheckWorker(pgStore, clients.Website)
	sched.SetWebsiteWorker(websiteWorker)
	go websiteWorker.Run(ctx, 7*24*time.Hour, 20, 30*time.Minute)
	log.Println("Website check worker started")

	log.Println("Daemon running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("Goodbye!")
}
