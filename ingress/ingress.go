// Package ingress is the narrow "new object" notification HTTP handler
// the monolith deployment exposes. It is deliberately minimal - not a
// full S3-compatible upload surface (spec.md §1 keeps that external) -
// just the seam a local file-upload convenience route calls after writing
// into UPLOAD_DIR (SPEC_FULL.md §C.3).
package ingress

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/xeipuuv/gojsonschema"

	"github.com/livepeer/hlsfrag/errors"
	"github.com/livepeer/hlsfrag/log"
	"github.com/livepeer/hlsfrag/orchestrator"
)

type newSourceRequest struct {
	SourceKey string `json:"source_key"`
}

type newSourceResponse struct {
	VideoID string `json:"video_id"`
}

// Handlers bundles the orchestrator the notification handler hands work
// off to.
type Handlers struct {
	Orchestrator orchestrator.Service
}

// NewSource handles POST /api/v1/sources: validate the payload, kick off
// orchestration synchronously, and return the new video_id. Every
// orchestration failure, NoSegments included, surfaces as a 500; a bad
// payload is a 400.
func (h Handlers) NewSource() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			errors.WriteHTTPInternalServerError(w, "cannot read payload", err)
			return
		}

		result, err := compiledNewSourceSchema.Validate(gojsonschema.NewBytesLoader(payload))
		if err != nil {
			errors.WriteHTTPBadRequest(w, "cannot validate payload", err)
			return
		}
		if !result.Valid() {
			errors.WriteHTTPBadBodySchema("NewSource", w, result.Errors())
			return
		}

		var req newSourceRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			errors.WriteHTTPBadRequest(w, "invalid request payload", err)
			return
		}

		videoID, err := h.Orchestrator.HandleNewSource(r.Context(), req.SourceKey)
		if err != nil {
			log.LogNoRequestID("handle new source failed", "source_key", req.SourceKey, "err", err.Error())
			errors.WriteHTTPInternalServerError(w, "failed to process source", err)
			return
		}

		respBytes, err := json.Marshal(newSourceResponse{VideoID: videoID})
		if err != nil {
			log.LogNoRequestID("failed to marshal response", "err", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(respBytes); err != nil {
			log.LogNoRequestID("failed to write response", "err", err.Error())
		}
	}
}
