package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bennettsmith-io/labrelay-core/internal/dispatch"
	"github.com/bennettsmith-io/labrelay-core/internal/message"
	"github.com/bennettsmith-io/labrelay-core/internal/registry"
)

// submitRequestBody is the JSON body for POST /api/v1/requests.
type submitRequestBody struct {
	// Target is the hop chain to the destination, endpoint name first.
	Target   []string          `json:"target"`
	ObjectID string            `json:"object_id"`
	Method   string            `json:"method"`
	Args     []string          `json:"args"`
	Kwargs   map[string]string `json:"kwargs"`
	Priority bool              `json:"priority"`
	Rank     int32             `json:"rank"`
}

// handleSubmitRequest submits a request to a remote endpoint.
//
// With ?wait=true the handler blocks until the terminal reply arrives and
// returns it. Without it, the handler returns 202 with the request ID; the
// caller retrieves the reply via GET /api/v1/replies/{request_id} or the
// WebSocket stream.
func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	addr, err := message.BuildAddress([]string{s.client.Endpoint()}, body.Target)
	if err != nil {
		writeBadRequest(w, "invalid target: "+err.Error())
		return
	}

	req, err := message.NewRequest(addr, body.ObjectID, body.Method, body.Args, body.Kwargs)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if body.Priority {
		req = req.WithPriority(body.Rank)
	} else {
		req.Rank = body.Rank
	}

	if err := s.client.Send(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, dispatch.ErrDuplicateRequestID):
			writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
		case errors.Is(err, dispatch.ErrClientClosed):
			writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
		default:
			writeInternalError(w, "failed to send request")
		}
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"request_id": req.RequestID,
		})
		return
	}

	rep, err := s.client.Await(r.Context(), req.RequestID)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrTimeout):
			writeError(w, http.StatusGatewayTimeout, ErrCodeTimeout, "timed out waiting for reply")
		case errors.Is(err, dispatch.ErrClientClosed):
			writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
		default:
			writeInternalError(w, "failed to await reply")
		}
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// handleGetReply retrieves the reply for an outstanding request, if one has
// arrived. Consuming a reply removes the request from the pending table.
func (s *Server) handleGetReply(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "request_id")

	rep, ok, err := s.client.Poll(requestID)
	if err != nil {
		writeNotFound(w, "no pending request with that ID")
		return
	}
	if !ok {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"request_id": requestID,
			"status":     "pending",
		})
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// handleCancelRequest abandons an outstanding request. A reply arriving
// afterwards is treated as an orphan and discarded.
func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "request_id")

	if err := s.client.Cancel(requestID); err != nil {
		writeNotFound(w, "no pending request with that ID")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListRegistry returns this node's own object catalog.
func (s *Server) handleListRegistry(w http.ResponseWriter, _ *http.Request) {
	specs := s.registry.Describe()
	writeJSON(w, http.StatusOK, map[string]any{
		"objects": specs,
		"count":   len(specs),
	})
}

// handleListEndpoints returns all endpoints with a stored catalog.
func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "catalog store not configured")
		return
	}

	records, err := s.repo.ListEndpoints(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list endpoints")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoints": records,
		"count":     len(records),
	})
}

// handleGetCatalog returns the stored catalog for a remote endpoint.
func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "catalog store not configured")
		return
	}

	endpoint := chi.URLParam(r, "endpoint")
	specs, err := s.repo.GetCatalog(r.Context(), endpoint)
	if err != nil {
		if errors.Is(err, registry.ErrObjectNotFound) {
			writeNotFound(w, "no catalog stored for endpoint")
			return
		}
		writeInternalError(w, "failed to load catalog")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"endpoint": endpoint,
		"objects":  specs,
		"count":    len(specs),
	})
}
