package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"

	"aquacheck/adapters/excel"
	"aquacheck/domain/core"
	"aquacheck/domain/water"
	"aquacheck/internal/errors"
	"aquacheck/ports"
)

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, loaded := h.analysis.Model()
	status := "ok"
	if !loaded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: status, ModelLoaded: loaded})
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var sample measurements
	if err := decodeJSON(w, r, &sample); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.analysis.HandleSubmission(r.Context(), sample.values())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// measurements is a submitted sample as decoded from JSON. A null value
// decodes to nil and is treated as absent, never as zero.
type measurements map[string]*float64

func (m measurements) values() map[string]float64 {
	out := make(map[string]float64, len(m))
	for name, v := range m {
		if v != nil {
			out[name] = *v
		}
	}
	return out
}

type batchRequest struct {
	Samples []measurements `json:"samples"`
}

// handleBatch accepts either a CSV body (text/csv) with a parameter header
// row or a JSON body {"samples": [...]}.
func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	rows, err := h.readBatch(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(rows) == 0 {
		h.writeError(w, r, errors.InvalidInput("batch contains no samples"))
		return
	}

	report, err := h.batch.Score(r.Context(), rows)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) readBatch(w http.ResponseWriter, r *http.Request) ([]ports.SampleRow, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" {
		records, err := excel.ReadCSV(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
		rows, err := excel.ParseRows(records)
		if err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
		return rows, nil
	}

	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	rows := make([]ports.SampleRow, len(req.Samples))
	for i, sample := range req.Samples {
		rows[i] = ports.SampleRow{Line: i + 1, Values: sample.values()}
	}
	return rows, nil
}

type schemaResponse struct {
	Policy     water.InputPolicy `json:"policy"`
	Order      []water.Parameter `json:"order"`
	Parameters []water.Spec      `json:"parameters"`
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, schemaResponse{
		Policy:     h.analysis.Schema().Policy(),
		Order:      water.Parameters[:],
		Parameters: water.Specs(),
	})
}

type modelResponse struct {
	Model    ports.ModelInfo    `json:"model"`
	Registry *ports.ModelRecord `json:"registry,omitempty"`
}

func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	info, ok := h.analysis.Model()
	if !ok {
		h.writeError(w, r, core.ErrModelNotLoaded)
		return
	}

	resp := modelResponse{Model: info}
	if h.registry != nil {
		record, err := h.registry.Get(r.Context(), info.Digest)
		switch {
		case err == nil:
			resp.Registry = record
		case stderrors.Is(err, core.ErrNotFound):
		default:
			h.logger.Warn("registry lookup for %s failed: %v", info.Digest.Short(), err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.InvalidInput(fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}
