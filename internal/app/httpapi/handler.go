// Package httpapi exposes the application services over REST.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	app "github.com/berea-labs/study_layer/internal/app"
	"github.com/berea-labs/study_layer/internal/app/domain/entitlement"
	"github.com/berea-labs/study_layer/internal/app/storage"
	svcerrors "github.com/berea-labs/study_layer/internal/errors"
	"github.com/berea-labs/study_layer/internal/logging"
	"github.com/berea-labs/study_layer/internal/metrics"
	"github.com/berea-labs/study_layer/internal/middleware"
)

const defaultHistoryLimit = 20

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app     *app.Application
	metrics *metrics.Metrics
	log     *logging.Logger
}

// NewHandler returns a router exposing the REST API. The metrics argument may
// be nil, in which case no /metrics endpoint is mounted and no domain metrics
// are recorded.
func NewHandler(application *app.Application, m *metrics.Metrics, log *logging.Logger) *mux.Router {
	if log == nil {
		log = logging.NewNop()
	}
	h := &handler{app: application, metrics: m, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/mentor/questions", h.askMentor).Methods(http.MethodPost)
	v1.HandleFunc("/studies/generate", h.generateStudy).Methods(http.MethodPost)
	v1.HandleFunc("/studies", h.listStudies).Methods(http.MethodGet)
	v1.HandleFunc("/studies/{id}", h.getStudy).Methods(http.MethodGet)
	v1.HandleFunc("/entitlement", h.entitlementStatus).Methods(http.MethodGet)
	v1.HandleFunc("/entitlement/offerings", h.offerings).Methods(http.MethodGet)
	v1.HandleFunc("/entitlement/purchase", h.purchase).Methods(http.MethodPost)
	v1.HandleFunc("/entitlement/restore", h.restore).Methods(http.MethodPost)

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Mentor ---

func (h *handler) askMentor(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Question string `json:"question"`
		StudyID  string `json:"studyId"`
		Context  string `json:"context"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, svcerrors.InvalidInput("invalid request body"))
		return
	}

	userID := middleware.GetUserID(r.Context())
	answer, err := h.app.Mentor.Answer(r.Context(), payload.Question, userID, payload.StudyID, payload.Context)
	if err != nil {
		h.recordGeneration("answer", err)
		writeError(w, err)
		return
	}
	h.recordGeneration("answer", nil)
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// --- Studies ---

// generateStudy runs the free-tier gate before any model work. A denied
// request never touches the counter; an allowed one increments it before
// generation so a crash mid-generation still consumes the attempt.
func (h *handler) generateStudy(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Passage   string `json:"passage"`
		Reference string `json:"reference"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, svcerrors.InvalidInput("invalid request body"))
		return
	}

	ctx := r.Context()
	installID := middleware.GetInstallID(ctx)
	if installID == "" {
		writeError(w, svcerrors.InvalidInput(middleware.InstallIDHeader+" header is required"))
		return
	}
	userID := middleware.GetUserID(ctx)

	status, checkErr := h.app.Entitlements.Status(ctx, installID, userID)
	if status.NeedsSubscription {
		h.recordGateCheck("denied")
		if checkErr != nil {
			writeError(w, checkErr)
			return
		}
		writeError(w, svcerrors.SubscriptionRequired(entitlement.FreeStudyLimit))
		return
	}
	h.recordGateCheck("allowed")

	if _, err := h.app.Entitlements.IncrementStudyCount(ctx, installID); err != nil {
		writeError(w, err)
		return
	}

	st, err := h.app.Studies.Generate(ctx, payload.Passage, payload.Reference, userID)
	if err != nil {
		h.recordGeneration("study", err)
		writeError(w, err)
		return
	}
	h.recordGeneration("study", nil)
	writeJSON(w, http.StatusCreated, st)
}

func (h *handler) getStudy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	st, err := h.app.Studies.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, svcerrors.NotFound("study", id))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handler) listStudies(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, svcerrors.InvalidInput(middleware.UserIDHeader+" header is required"))
		return
	}
	studies, err := h.app.Studies.ListByUser(r.Context(), userID, defaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"studies": studies})
}

// --- Entitlement ---

func (h *handler) entitlementStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	installID := middleware.GetInstallID(ctx)
	if installID == "" {
		writeError(w, svcerrors.InvalidInput(middleware.InstallIDHeader+" header is required"))
		return
	}

	status, err := h.app.Entitlements.Status(ctx, installID, middleware.GetUserID(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *handler) offerings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	packages, err := h.app.Entitlements.Offerings(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"packages": packages})
}

func (h *handler) purchase(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Package string `json:"package"`
		Receipt string `json:"receipt"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, svcerrors.InvalidInput("invalid request body"))
		return
	}
	if payload.Package == "" {
		writeError(w, svcerrors.InvalidInput("package is required"))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, svcerrors.InvalidInput(middleware.UserIDHeader+" header is required"))
		return
	}

	result, err := h.app.Entitlements.Purchase(r.Context(), userID, payload.Package, payload.Receipt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) restore(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, svcerrors.InvalidInput(middleware.UserIDHeader+" header is required"))
		return
	}

	active, err := h.app.Entitlements.Restore(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"subscribed": active})
}

// --- Metrics helpers ---

func (h *handler) recordGateCheck(verdict string) {
	if h.metrics != nil {
		h.metrics.RecordGateCheck(verdict)
	}
}

func (h *handler) recordGeneration(kind string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.metrics.RecordGeneration(kind, outcome)
}

// --- Encoding helpers ---

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := svcerrors.StatusOf(err)
	code := ""
	var svcErr *svcerrors.ServiceError
	if errors.As(err, &svcErr) {
		code = svcErr.Code
	}
	if errors.Is(err, storage.ErrNotFound) {
		status = http.StatusNotFound
		code = svcerrors.CodeNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": err.Error()}
	if code != "" {
		body["code"] = code
	}
	_ = json.NewEncoder(w).Encode(body)
}
