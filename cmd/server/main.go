package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/opportunity-analyst/internal/analysis"
	"github.com/ignite/opportunity-analyst/internal/api"
	"github.com/ignite/opportunity-analyst/internal/config"
	"github.com/ignite/opportunity-analyst/internal/dataset"
	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
	"github.com/ignite/opportunity-analyst/internal/report"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  B2B Sales Analyst AI API (cmd/server/main.go)             ║")
	log.Println("║  Cross-sell and upsell opportunity analysis                ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedact(cfg.Log.RedactEnabled())

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := dataset.NewSource(ctx, cfg.Dataset)
	if err != nil {
		log.Fatalf("Failed to configure dataset source: %v", err)
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}
	log.Printf("Dataset source: %s", src.Describe())

	reporter, redisClient, err := report.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to configure report generator: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Println("Report cache connected")
	}

	svc := analysis.NewService(src, reporter, cfg.Dataset.LoadTimeout())

	// The server starts even without data so /health can say why.
	if _, err := svc.Reload(ctx); err != nil {
		log.Printf("Warning: initial table load failed: %v (POST /api/reload to retry)", err)
	} else {
		st := svc.Status()
		log.Printf("Transaction table loaded: %d rows, %d customers", st.Rows, st.Customers)
	}

	if cfg.Dataset.Source == config.SourceFile && cfg.Dataset.Watch {
		go func() {
			err := dataset.WatchFile(ctx, cfg.Dataset.Path, dataset.DefaultDebounce, func() {
				if _, err := svc.Reload(ctx); err != nil {
					log.Printf("Warning: reload after file change failed: %v", err)
				}
			})
			if err != nil {
				log.Printf("Warning: file watcher stopped: %v", err)
			}
		}()
		log.Printf("Watching %s for changes", cfg.Dataset.Path)
	}

	server := api.NewServer(cfg.Server, svc, redisClient)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
