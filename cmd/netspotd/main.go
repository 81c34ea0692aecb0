package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sifis-home/netspot-control/internal/api"
	"github.com/sifis-home/netspot-control/internal/auth"
	"github.com/sifis-home/netspot-control/internal/config"
	"github.com/sifis-home/netspot-control/internal/facade"
	"github.com/sifis-home/netspot-control/internal/tlscert"
)

func main() {
	log.Println("🚀 starting netspotd...")

	cfg, err := config.Load(os.Getenv("NETSPOTD_CONFIG"), os.Args[1:])
	if err != nil {
		log.Fatalf("❌ failed to load configuration: %v", err)
	}
	log.Printf("📋 runtime-path=%s db-path=%s listen=%s:%d", cfg.RuntimePath, cfg.DBPath, cfg.ListenAddress, cfg.ListenPort)

	f, err := facade.New(facade.Config{
		RuntimePath:  cfg.RuntimePath,
		DBPath:       cfg.DBPath,
		ShowMessages: cfg.ShowMessages,
		DHTURL:       cfg.DHTURL,
	})
	if err != nil {
		log.Fatalf("❌ failed to start facade: %v", err)
	}

	guard, err := auth.New(cfg.AdminTokenHash)
	if err != nil {
		log.Fatalf("❌ failed to start auth guard: %v", err)
	}
	if guard.Enabled() {
		log.Println("✅ admin auth guard enabled")
	}

	backupDir := filepath.Join(cfg.RuntimePath, "backups")
	server := api.New(f, guard, backupDir)
	router := server.Router()

	httpServer := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort),
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	if cfg.TLSDomain != "" {
		provisioner, err := tlscert.New(cfg.TLSDomain, "", filepath.Join(cfg.RuntimePath, "certs"), 80)
		if err != nil {
			log.Fatalf("❌ failed to provision TLS certificate: %v", err)
		}
		httpServer.TLSConfig = &tls.Config{GetCertificate: provisioner.GetCertificate}
		log.Printf("✅ TLS certificate provisioned for %s", cfg.TLSDomain)
	}

	go func() {
		log.Printf("🚀 control surface listening on %s", httpServer.Addr)
		var serveErr error
		if httpServer.TLSConfig != nil {
			serveErr = httpServer.ListenAndServeTLS("", "")
		} else {
			serveErr = httpServer.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			log.Fatalf("❌ control surface failed: %v", serveErr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.ShutdownAfter > 0 {
		go func() {
			time.Sleep(time.Duration(cfg.ShutdownAfter) * time.Second)
			log.Printf("⏰ shutdown-after elapsed, exiting")
			quit <- syscall.SIGTERM
		}()
	}

	<-quit
	log.Println("🛑 shutting down netspotd...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("❌ control surface forced to shutdown: %v", err)
	}

	f.Shutdown()
	log.Println("✅ netspotd exited cleanly")
}
