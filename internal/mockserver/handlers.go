package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wau-ai/wau-cli/internal/a2a"
	"github.com/wau-ai/wau-cli/internal/agentcard"
	"github.com/wau-ai/wau-cli/internal/registry"
	"github.com/wau-ai/wau-cli/internal/wallet"
)

const maxBodySize = 1 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeDetail(w, http.StatusBadRequest, "url is required")
		return
	}

	result := s.fetch(r.Context(), req.URL)
	switch {
	case result.Found:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(result.Card)
	case result.ExitCode == a2a.ExitNetwork:
		writeDetail(w, http.StatusBadGateway, fmt.Sprintf("could not reach %s: %s", req.URL, result.Error))
	case result.ExitCode == a2a.ExitInvalidCard:
		writeDetail(w, http.StatusUnprocessableEntity, result.Error)
	default:
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("no agent card found at %s", req.URL))
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var reg agentcard.Registration
	if err := json.Unmarshal(raw, &reg); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(reg.Name) == "" || strings.TrimSpace(reg.Description) == "" {
		writeDetail(w, http.StatusBadRequest, "name and description are required")
		return
	}
	if err := agentcard.ValidateRegistration(raw); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, violations(err))
		return
	}

	if publisher := r.Header.Get(registry.HeaderPublisher); publisher != "" || r.Header.Get(registry.HeaderSignature) != "" {
		scheme := r.Header.Get(registry.HeaderSignatureScheme)
		if err := wallet.Verify(scheme, publisher, raw, r.Header.Get(registry.HeaderSignature)); err != nil {
			writeDetail(w, http.StatusUnauthorized, "attestation rejected: "+err.Error())
			return
		}
		s.logger.Info("verified publisher attestation", "publisher", publisher, "scheme", scheme)
	}

	id, err := s.store.create(reg.Name, reg.URL)
	if errors.Is(err, errDuplicate) {
		writeDetail(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("agent registered", "task_id", id, "name", reg.Name)
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.store.next(chi.URLParam(r, "id"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// violations renders schema errors in the list form {"msg": ...}.
func violations(err error) []map[string]string {
	var invalid *agentcard.InvalidCardError
	if !errors.As(err, &invalid) {
		return []map[string]string{{"msg": err.Error()}}
	}
	out := make([]map[string]string, 0, len(invalid.Violations))
	for _, v := range invalid.Violations {
		out = append(out, map[string]string{"msg": v})
	}
	return out
}
