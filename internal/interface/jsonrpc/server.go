// Package jsonrpc exposes C10's application.Service over a single JSON-RPC
// 2.0 HTTP endpoint, built with a gorilla/mux router-with-handlers shape:
// one POST route, batch or single request dispatch, a uuid.New()
// correlation id per request, and error translation from pkg/errors.Error
// into the {code, message, data} envelope.
package jsonrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coinshift-network/coinshiftd/internal/core/application"
	pkgerrors "github.com/coinshift-network/coinshiftd/pkg/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const jsonrpcVersion = "2.0"

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type rpcError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// Server wires application.Service's methods into a method table, keyed by
// the RPC method names
type Server struct {
	svc    application.Service
	router *mux.Router
	methods map[string]handlerFunc
}

type handlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// NewServer builds the method table and the single-route mux.Router. Call
// Handler to get the http.Handler to serve.
func NewServer(svc application.Service) *Server {
	s := &Server{svc: svc, router: mux.NewRouter()}
	s.methods = map[string]handlerFunc{
		"create_swap":              s.handleCreateSwap,
		"claim_swap":                s.handleClaimSwap,
		"update_swap_l1_txid":       s.handleUpdateSwapL1Txid,
		"get_swap_status":           s.handleGetSwapStatus,
		"list_swaps":                s.handleListSwaps,
		"list_swaps_by_recipient":   s.handleListSwapsByRecipient,
		"reconstruct_swaps":         s.handleReconstructSwaps,
		"cleanup_orphaned_locks":    s.handleCleanupOrphanedLocks,
		"get_l1_health":             s.handleGetL1Health,
	}
	s.router.HandleFunc("/rpc", s.handleHTTP).Methods("POST")
	return s
}

// Handler returns the http.Handler to pass to http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := uuid.New().String()
	logger := log.WithField("correlation_id", correlationID)

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		logger.WithError(err).Warn("failed to decode JSON-RPC body")
		writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if isBatch(raw) {
		var reqs []request
		if err := json.Unmarshal(raw, &reqs); err != nil {
			writeHTTPError(w, http.StatusBadRequest, "invalid batch request")
			return
		}
		out := make([]response, 0, len(reqs))
		for _, req := range reqs {
			out = append(out, s.dispatch(ctx, logger, req))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		writeHTTPError(w, http.StatusBadRequest, "invalid request")
		return
	}
	resp := s.dispatch(ctx, logger, req)
	status := http.StatusOK
	if resp.Error != nil {
		status = statusForCode(resp.Error.Code)
	}
	writeJSON(w, status, resp)
}

func (s *Server) dispatch(ctx context.Context, logger *log.Entry, req request) response {
	logger = logger.WithField("method", req.Method)
	handler, ok := s.methods[req.Method]
	if !ok {
		logger.Warn("unknown JSON-RPC method")
		return response{JSONRPC: jsonrpcVersion, ID: req.ID, Error: &rpcError{
			Code: -32601, Message: "method not found",
		}}
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		logger.WithError(err).Warn("JSON-RPC method returned an error")
		return response{JSONRPC: jsonrpcVersion, ID: req.ID, Error: toRPCError(err)}
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		logger.WithError(err).Error("failed to encode JSON-RPC result")
		return response{JSONRPC: jsonrpcVersion, ID: req.ID, Error: &rpcError{
			Code: int(pkgerrors.Internal.Code), Message: "failed to encode result",
		}}
	}
	return response{JSONRPC: jsonrpcVersion, ID: req.ID, Result: encoded}
}

// toRPCError translates a pkgerrors.Error into the {code, message, data}
// envelope; any other error becomes an opaque internal
// error so application bugs never leak stack-trace-shaped strings to a
// caller.
func toRPCError(err error) *rpcError {
	if typed, ok := err.(pkgerrors.Error); ok {
		return &rpcError{
			Code:    int(typed.Code()),
			Message: typed.CodeName(),
			Data:    typed.Metadata(),
		}
	}
	return &rpcError{Code: int(pkgerrors.Internal.Code), Message: "internal error"}
}

// statusForCode is the Disposition->HTTPStatus mapping this transport
// assigns: reject-rpc and not-found shaped codes
// surface as 4xx, everything else as 500 so an operator's monitoring can
// tell "bad request" from "core is unwell" at a glance.
func statusForCode(code int) int {
	switch code {
	case int(pkgerrors.SwapNotFound.Code):
		return http.StatusNotFound
	case int(pkgerrors.SwapIdMismatch.Code), int(pkgerrors.InvalidStateTransition.Code),
		int(pkgerrors.LockedInputViolation.Code), int(pkgerrors.InsufficientL2Amount.Code),
		int(pkgerrors.SwapAlreadyExists.Code), int(pkgerrors.OrphanedLock.Code),
		int(pkgerrors.InvalidTransaction.Code):
		return http.StatusBadRequest
	case int(pkgerrors.ChainNotConfigured.Code):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func isBatch(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTTPError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
