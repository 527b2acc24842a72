package importer

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/growship/backend/internal/auth"
	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
)

// Handler exposes the import pipeline over HTTP. Each step is a separate
// endpoint; the client carries all state between them.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the import endpoints on the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/imports/upload", h.handleUpload)
	mux.HandleFunc("POST /api/imports/validate", h.handleValidate)
	mux.HandleFunc("POST /api/imports/confirm", h.handleConfirm)
	mux.HandleFunc("GET /api/imports/history", h.handleHistory)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.ActorIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	kind, err := domain.ParseImportKind(r.FormValue("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	orgID, err := uuid.Parse(r.FormValue("organizationId"))
	if err != nil {
		http.Error(w, "invalid organizationId", http.StatusBadRequest)
		return
	}
	if !enforceOrgScope(w, r, orgID) {
		return
	}

	var distributorID uuid.UUID
	if raw := r.FormValue("distributorId"); raw != "" {
		distributorID, err = uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid distributorId", http.StatusBadRequest)
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file part is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Upload(r.Context(), UploadRequest{
		ActorID:        actorID,
		Kind:           kind,
		FileName:       header.Filename,
		Payload:        payload,
		OrganizationID: orgID,
		DistributorID:  distributorID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type validatePayload struct {
	Kind           string                `json:"kind"`
	Records        []domain.ImportRecord `json:"records"`
	OrganizationID uuid.UUID             `json:"organizationId"`
	DistributorID  uuid.UUID             `json:"distributorId,omitempty"`
	FileHash       string                `json:"fileHash"`
}

type validateResponse struct {
	Valid          bool                   `json:"valid"`
	Success        bool                   `json:"success"`
	IsDuplicate    bool                   `json:"isDuplicate,omitempty"`
	PreviousImport *domain.PriorImport    `json:"previousImport,omitempty"`
	ValidRecords   []domain.ImportRecord  `json:"validRecords,omitempty"`
	InvalidRecords []domain.InvalidRecord `json:"invalidRecords,omitempty"`
	Errors         []domain.FieldError    `json:"errors,omitempty"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.ActorIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var payload validatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	kind, err := domain.ParseImportKind(payload.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !enforceOrgScope(w, r, payload.OrganizationID) {
		return
	}

	result, err := h.svc.Validate(r.Context(), ValidateRequest{
		ActorID:        actorID,
		Kind:           kind,
		Records:        payload.Records,
		OrganizationID: payload.OrganizationID,
		DistributorID:  payload.DistributorID,
		FileHash:       payload.FileHash,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Duplicate != nil {
		writeJSON(w, http.StatusConflict, validateResponse{
			Success:        false,
			IsDuplicate:    true,
			PreviousImport: result.Duplicate,
		})
		return
	}

	acceptable := result.Outcome.IsAcceptable()
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:          acceptable,
		Success:        acceptable,
		ValidRecords:   result.Outcome.Valid,
		InvalidRecords: result.Outcome.Invalid,
		Errors:         result.Outcome.FieldErrors(),
	})
}

type confirmPayload struct {
	Kind           string                `json:"kind"`
	Records        []domain.ImportRecord `json:"records"`
	OrganizationID uuid.UUID             `json:"organizationId"`
	DistributorID  uuid.UUID             `json:"distributorId,omitempty"`
	FileHash       string                `json:"fileHash"`
	FileName       string                `json:"fileName"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.ActorIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var payload confirmPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	kind, err := domain.ParseImportKind(payload.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !enforceOrgScope(w, r, payload.OrganizationID) {
		return
	}

	summary, err := h.svc.Confirm(r.Context(), ConfirmRequest{
		ActorID:        actorID,
		Kind:           kind,
		Records:        payload.Records,
		OrganizationID: payload.OrganizationID,
		DistributorID:  payload.DistributorID,
		FileHash:       payload.FileHash,
		FileName:       payload.FileName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if summary.Successful > 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, summary)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.ActorIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	orgID, err := uuid.Parse(r.URL.Query().Get("organizationId"))
	if err != nil {
		http.Error(w, "invalid organizationId", http.StatusBadRequest)
		return
	}
	if !enforceOrgScope(w, r, orgID) {
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	entries, err := h.svc.History(r.Context(), actorID, orgID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"imports": entries})
}

// enforceOrgScope rejects requests that name an organization outside the
// tenant the session is pinned to. Requests that leave the organization
// blank pass through for the scope resolver to fill in.
func enforceOrgScope(w http.ResponseWriter, r *http.Request, orgID uuid.UUID) bool {
	if orgID == uuid.Nil {
		return true
	}
	if err := auth.EnforceOrganizationScope(r.Context(), orgID); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

type errorResponse struct {
	Error          string              `json:"error"`
	Code           string              `json:"code,omitempty"`
	PreviousImport *domain.PriorImport `json:"previousImport,omitempty"`
}

// writeError maps the typed error taxonomy onto HTTP statuses. Unknown
// errors are logged and answered as opaque 500s.
func writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		writeJSON(w, domain.HTTPStatus(de.Kind), errorResponse{
			Error:          de.Message,
			Code:           string(de.Kind),
			PreviousImport: de.Prior,
		})
		return
	}
	log.Printf("[HTTP] internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "internal server error",
		Code:  string(domain.ErrInternal),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}
