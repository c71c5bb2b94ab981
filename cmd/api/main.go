package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"silas.org/internal/admin"
	"silas.org/internal/firmdir"
	"silas.org/internal/httpapi"
	"silas.org/internal/obs"
	"silas.org/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("SILAS_BUILD_COMMIT"))

	dsn := os.Getenv("SILAS_PG_DSN")
	if dsn == "" {
		log.Fatal("missing SILAS_PG_DSN")
	}
	if os.Getenv("SILAS_GATEWAY_SECRET") == "" {
		log.Fatal("missing SILAS_GATEWAY_SECRET")
	}
	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	svc, err := admin.NewService(store,
		admin.WithFirmDirectory(firmdir.New(store)),
	)
	if err != nil {
		log.Fatalf("init admin service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: store.DB()}, version, svc)

	handler := httpapi.RequestID(
		httpapi.LoggingJSON(
			httpapi.SecurityHeaders(
				httpapi.CORS(
					httpapi.MaxBodyBytes(
						httpapi.RateLimit(api.Handler(), 50, 25),
						1<<20,
					),
				),
			),
		),
	)

	addr := os.Getenv("SILAS_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	obs.LogEvent("info", "starting silas-api", map[string]any{
		"version": version,
		"addr":    addr,
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	obs.LogEvent("info", "shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = store.Close()

	obs.LogEvent("info", "stopped", nil)
}
