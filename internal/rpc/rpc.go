// Package rpc implements the HTTP-based RPC dispatch surface: it extracts
// the caller's identity, rejects unknown procedure names with a protocol
// fault, and forwards known ones to the API.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/landialler/landiallerd/logger"

	"github.com/landialler/landiallerd/internal/api"
	"github.com/landialler/landiallerd/internal/registry"
	"github.com/landialler/landiallerd/internal/socket"
	"github.com/landialler/landiallerd/status"
)

// API is the subset of *api.API the dispatcher depends on.
type API interface {
	Connect(ctx context.Context, id registry.ClientID) bool
	Disconnect(ctx context.Context, id registry.ClientID, all bool) bool
	GetStatus(ctx context.Context, id registry.ClientID) api.Status
}

type callRequest struct {
	Procedure string          `json:"procedure"`
	Args      json.RawMessage `json:"args"`
}

type disconnectArgs struct {
	All bool `json:"all"`
}

// NewRouter builds the chi router serving the RPC surface, the Prometheus
// scrape endpoint, and the operator status page.
func NewRouter(a API, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(socket.LoggerMiddleware("rpc", log.Debug))
	r.Use(socket.HeadersMiddleware(http.Header{"Content-Type": []string{"application/json"}}))

	r.Post("/rpc/call", handleCall(a))
	r.Post("/rpc/connect", handleConnect(a))
	r.Post("/rpc/disconnect", handleDisconnect(a))
	r.Post("/rpc/get_status", handleGetStatus(a))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/debug/status", status.Handle)

	return r
}

// clientID derives the ClientId from the caller's network address, per the
// RPC dispatch contract: the host part of the remote address, nothing more.
func clientID(r *http.Request) registry.ClientID {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return registry.ClientID(r.RemoteAddr)
	}
	return registry.ClientID(host)
}

func writeResult(w http.ResponseWriter, result any) {
	json.NewEncoder(w).Encode(map[string]any{"result": result}) //nolint:errcheck
}

func writeFault(w http.ResponseWriter, status int, format string, args ...any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"fault": fmt.Sprintf(format, args...)}) //nolint:errcheck
}

func handleCall(a API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req callRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFault(w, http.StatusBadRequest, "could not decode request: %v", err)
			return
		}

		id := clientID(r)
		switch req.Procedure {
		case "connect":
			writeResult(w, a.Connect(r.Context(), id))
		case "disconnect":
			var args disconnectArgs
			if len(req.Args) > 0 {
				if err := json.Unmarshal(req.Args, &args); err != nil {
					writeFault(w, http.StatusBadRequest, "could not decode disconnect args: %v", err)
					return
				}
			}
			writeResult(w, a.Disconnect(r.Context(), id, args.All))
		case "get_status":
			s := a.GetStatus(r.Context(), id)
			writeResult(w, map[string]any{"clients": s.Clients, "connected": s.Connected, "seconds": s.Seconds})
		default:
			writeFault(w, http.StatusNotFound, "Unknown procedure name: %s", req.Procedure)
		}
	}
}

func handleConnect(a API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, a.Connect(r.Context(), clientID(r)))
	}
}

func handleDisconnect(a API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var args disconnectArgs
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
				writeFault(w, http.StatusBadRequest, "could not decode disconnect args: %v", err)
				return
			}
		}
		writeResult(w, a.Disconnect(r.Context(), clientID(r), args.All))
	}
}

func handleGetStatus(a API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := a.GetStatus(r.Context(), clientID(r))
		writeResult(w, map[string]any{"clients": s.Clients, "connected": s.Connected, "seconds": s.Seconds})
	}
}
