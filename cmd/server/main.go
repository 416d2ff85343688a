// Command server exposes the batch audit over HTTP: JSON results from
// POST /audit, the rendered PDF from POST /audit/report.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"pagemeta-crawler/internal/config"
	"pagemeta-crawler/internal/crawler"
	"pagemeta-crawler/internal/extractor"
	"pagemeta-crawler/internal/report"
	"pagemeta-crawler/pkg/logger"
)

type auditReq struct {
	URLs []string `json:"urls"`
}

func main() {
	cfgPath := os.Getenv("PAGEMETA_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := logger.Setup(false, cfg.LogPath); err != nil {
		logrus.Fatalf("open log file: %v", err)
	}

	client := crawler.NewHTTPClient(cfg.Timeout(), 5*time.Second, cfg.MaxBodyBytes)
	orc := crawler.NewOrchestrator(client, extractor.New(), crawler.Options{
		Workers: cfg.Workers,
		Timeout: cfg.Timeout(),
		Delay:   cfg.Delay(),
	})

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// POST /audit  { "urls": ["https://...", ...] } -> result list
	mux.HandleFunc("/audit", func(w http.ResponseWriter, r *http.Request) {
		urls, ok := decodeAuditReq(w, r)
		if !ok {
			return
		}
		results := orc.Crawl(r.Context(), urls)
		writeJSON(w, http.StatusOK, results)
	})

	// POST /audit/report  { "urls": [...] } -> the PDF itself
	mux.HandleFunc("/audit/report", func(w http.ResponseWriter, r *http.Request) {
		urls, ok := decodeAuditReq(w, r)
		if !ok {
			return
		}
		results := orc.Crawl(r.Context(), urls)
		doc := report.Build(results, time.Now())

		f, err := os.CreateTemp("", "audit-report-*.pdf")
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		tmp := f.Name()
		f.Close()
		defer os.Remove(tmp)

		if err := report.WritePDF(doc, tmp); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="crawler_report.pdf"`)
		http.ServeFile(w, r, tmp)
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      logRequest(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // batches can be slow: N urls / workers * timeout
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logrus.Infof("server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logrus.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logrus.Info("bye")
}

func decodeAuditReq(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return nil, false
	}
	var req auditReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.URLs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return nil, false
	}
	return req.URLs, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.Infof("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
