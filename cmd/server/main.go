package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signaling-server/internal/discovery"
	"signaling-server/internal/platform/config"
	"signaling-server/internal/platform/logger"
	"signaling-server/internal/platform/metrics"
	"signaling-server/internal/signaling"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	loadErr := config.Load()

	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	log := logger.New(logLevel, logFormat)
	if loadErr != nil {
		log.Warn("could not read .env", "error", loadErr)
	}

	port := config.GetEnv("PORT", "3000")
	maxSegments := config.GetEnvInt("BUFFER_MAX_SEGMENTS", signaling.DefaultMaxSegments)
	codeLength := config.GetEnvInt("ROOM_CODE_LENGTH", signaling.DefaultCodeLength)
	staticDir := config.GetEnv("STATIC_DIR", "public")
	opts := signaling.Options{
		MaxSegmentBytes: config.GetEnvInt64("MAX_SEGMENT_BYTES", signaling.DefaultMaxSegmentBytes),
		MaxSignalBytes:  config.GetEnvInt64("MAX_SIGNAL_BYTES", signaling.DefaultMaxSignalBytes),
		SendQueue:       config.GetEnvInt("WS_SEND_QUEUE", signaling.DefaultSendQueue),
		PingInterval:    config.GetEnvDuration("WS_PING_INTERVAL", 30*time.Second),
	}

	iceServers, err := config.ICEServers(
		config.SplitList(config.GetEnv("STUN_URLS", config.DefaultSTUNURL)),
		config.SplitList(config.GetEnv("TURN_URIS", "", "TURN_URI")),
		config.GetEnv("TURN_USER", "", "TURN_USERNAME"),
		config.GetEnv("TURN_PASS", "", "TURN_PASSWORD"),
	)
	if err != nil {
		log.Error("invalid ice server configuration", "error", err)
		os.Exit(1)
	}

	met := metrics.New()
	reg := signaling.NewRegistry(signaling.NewCodeGenerator(codeLength, nil), maxSegments)
	relay := signaling.NewRelay(reg, log, met)
	h := signaling.NewHandler(relay, log, opts)
	info := discovery.NewHandler(port, config.GetEnv("NGROK_URL", ""), iceServers, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() {
			met.SetActiveRooms(reg.Count())
			met.SetActiveSessions(relay.SessionCount())
		}).ServeHTTP(w, r)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}` + "\n"))
	})
	r.Method(http.MethodGet, "/info", info)
	h.Routes(r)
	if fi, err := os.Stat(staticDir); err == nil && fi.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	} else {
		log.Info("static directory not found, not serving static files", "static_dir", staticDir)
	}

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("signaling server starting",
		"port", port,
		"buffer_max_segments", maxSegments,
		"room_code_length", codeLength,
		"ice_servers", len(iceServers),
		"lan_ips", discovery.LocalIPv4s(),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
