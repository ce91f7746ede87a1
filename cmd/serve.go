package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/export"
	"github.com/sells-group/xbrl-cli/internal/xbrl"
	"github.com/sells-group/xbrl-cli/internal/xbrl/transform"
	"github.com/sells-group/xbrl-cli/internal/xbrl/uri"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server that parses instances on request",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "serve"))
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildMux(newEnv(cfg), log),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		log.Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseStatus maps a parse failure to an HTTP status. Document problems are
// the caller's, everything else (mostly fetch failures) is upstream.
func parseStatus(err error) int {
	for _, target := range []error{
		xbrl.ErrTaxonomyNotFound,
		xbrl.ErrConceptNotFound,
		xbrl.ErrUnitNotFound,
		xbrl.ErrContextNotFound,
		xbrl.ErrResourceBlockNotFound,
		xbrl.ErrMalformedDocument,
		xbrl.ErrParse,
		xbrl.ErrFormat,
		xbrl.ErrValue,
	} {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusBadGateway
}

func buildMux(e *env, log *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /v1/parse", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		if !uri.IsRemote(req.URL) {
			writeError(w, http.StatusBadRequest, "url must be http or https")
			return
		}

		inst, err := e.parser(log).ParseInstance(r.Context(), req.URL)
		if err != nil {
			log.Warn("parse failed", zap.String("url", req.URL), zap.Error(err))
			writeError(w, parseStatus(err), err.Error())
			return
		}
		log.Info("parsed instance", zap.String("url", req.URL), zap.Int("facts", len(inst.Facts)))
		writeJSON(w, http.StatusOK, export.NewDocument(inst))
	})

	mux.HandleFunc("GET /v1/transform", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		format := q.Get("format")
		if format == "" {
			writeError(w, http.StatusBadRequest, "format is required")
			return
		}
		out, err := applyTransform(format, q.Get("value"))
		switch {
		case errors.Is(err, transform.ErrUnknownFormat):
			writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeJSON(w, http.StatusOK, map[string]string{"format": format, "value": out})
		}
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
