package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adsops/google-ads-mcp-server/internal/protocol"
	"github.com/adsops/google-ads-mcp-server/internal/version"
)

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Addr            string
	Auth            AuthConfig
	ShutdownTimeout time.Duration
}

// NewHTTPHandler builds the router: JSON-RPC on POST / and POST /mcp, plus
// health, version and metrics endpoints.
func NewHTTPHandler(server *Server, auth AuthConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(version.Get())
	})

	r.Group(func(r chi.Router) {
		r.Use(NewAuthMiddleware(auth))
		r.Handle("/metrics", server.Metrics().Handler())
		r.Post("/", rpcHandler(server))
		r.Post("/mcp", rpcHandler(server))
	})
	return r
}

// RunHTTP serves until ctx is cancelled, then shuts down gracefully.
func RunHTTP(ctx context.Context, server *Server, cfg HTTPConfig) error {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHTTPHandler(server, cfg.Auth),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		server.log.WithField("addr", cfg.Addr).Info("HTTP MCP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		server.log.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			server.log.WithError(err).Error("graceful shutdown failed")
			return srv.Close()
		}
		return nil
	}
}

func rpcHandler(server *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocol.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, protocol.Response{JSONRPC: "2.0", ID: normalizeID(nil), Error: &protocol.ResponseError{Code: CodeParseError, Message: "invalid JSON"}}, http.StatusBadRequest)
			return
		}

		resp, err := server.Handle(r.Context(), req)
		if err != nil {
			writeJSON(w, WriteError(req.ID, CodeInternalError, "internal error", err), http.StatusInternalServerError)
			return
		}
		if IsNotification(req) {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		writeJSON(w, resp, http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, resp protocol.Response, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}
