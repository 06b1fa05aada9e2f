// Package handlers provides the HTTP API for debaite.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/debaite/debaite/internal/config"
	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/internal/drift"
	"github.com/debaite/debaite/internal/engine"
	"github.com/debaite/debaite/internal/export"
	"github.com/debaite/debaite/internal/knowledge"
	"github.com/debaite/debaite/internal/observability"
	"github.com/debaite/debaite/internal/persona"
	"github.com/debaite/debaite/internal/storage"
	"github.com/debaite/debaite/provider"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Storage   storage.Storage
	Registry  *provider.Registry
	Config    *config.Config
	Retriever knowledge.Retriever
	Drift     *drift.Controller
	Metrics   *observability.Metrics

	// Personas are custom templates that take precedence over builtins.
	Personas []persona.Template
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	deps    Deps
	domains *knowledge.DomainMap
}

// New creates a new Handler.
func New(deps Deps) *Handler {
	var explicit map[string]string
	if deps.Config != nil {
		explicit = deps.Config.Domains
	}
	return &Handler{
		deps:    deps,
		domains: knowledge.NewDomainMap(explicit),
	}
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealthz)
	r.Handle("/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/providers", h.handleListProviders)
		r.Get("/providers/health", h.handleProvidersHealth)
		r.Get("/personas", h.handleListPersonas)

		r.Route("/debates", func(r chi.Router) {
			r.Get("/", h.handleListDebates)
			r.Post("/", h.handleCreateDebate)
			r.Get("/{id}", h.handleGetDebate)
			r.Delete("/{id}", h.handleDeleteDebate)
			r.Get("/{id}/export", h.handleExportDebate)
		})
	})

	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.json(w, map[string]string{"status": "ok"})
}

func (h *Handler) handleListProviders(w http.ResponseWriter, r *http.Request) {
	result := make([]map[string]interface{}, 0)
	for _, name := range h.deps.Registry.Names() {
		if name == "mock" {
			continue
		}
		p, err := h.deps.Registry.Get(name)
		if err != nil {
			continue
		}
		result = append(result, map[string]interface{}{
			"name":      p.Name(),
			"available": p.Available(),
		})
	}
	h.json(w, result)
}

func (h *Handler) handleProvidersHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result := make(map[string]interface{})

	for _, name := range h.deps.Registry.Names() {
		if name == "mock" {
			continue
		}
		p, err := h.deps.Registry.Get(name)
		if err != nil {
			continue
		}
		status := provider.HealthCheck(ctx, p)
		result[name] = map[string]interface{}{
			"available":     status.Available,
			"response_time": status.ResponseTime.Seconds(),
			"error":         status.Error,
			"checked_at":    status.CheckedAt,
		}
	}

	h.json(w, map[string]interface{}{"providers": result})
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	custom := make(map[string]bool, len(h.deps.Personas))
	for _, t := range h.deps.Personas {
		custom[t.ID] = true
	}
	templates := append([]persona.Template(nil), h.deps.Personas...)
	for _, t := range persona.Builtin() {
		if !custom[t.ID] {
			templates = append(templates, t)
		}
	}
	h.json(w, templates)
}

func (h *Handler) handleListDebates(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 {
		limit = 20
	}

	debates, err := h.deps.Storage.ListDebates(limit, offset)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if debates == nil {
		debates = []*core.DebateSummary{}
	}
	h.json(w, debates)
}

func (h *Handler) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.deps.Storage.GetDebate(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if record == nil {
		h.jsonError(w, "debate not found", http.StatusNotFound)
		return
	}
	h.json(w, record)
}

func (h *Handler) handleDeleteDebate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.deps.Storage.GetDebate(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if record == nil {
		h.jsonError(w, "debate not found", http.StatusNotFound)
		return
	}
	if err := h.deps.Storage.DeleteDebate(id); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExportDebate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.deps.Storage.GetDebate(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if record == nil {
		h.jsonError(w, "debate not found", http.StatusNotFound)
		return
	}

	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatMarkdown
	}
	exporter, err := export.GetExporter(format)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := export.GenerateFilename(record, exporter.FileExtension())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	switch format {
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case export.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	}

	if err := exporter.Export(record, w); err != nil {
		slog.Error("export failed", "id", id, "format", format, "error", err)
	}
}

// participantSpec is a participant in a create-debate request: either a
// template reference or inline fields.
type participantSpec struct {
	Template  string `json:"template,omitempty"`
	Name      string `json:"name,omitempty"`
	Persona   string `json:"persona,omitempty"`
	Role      string `json:"role,omitempty"`
	Expertise string `json:"expertise,omitempty"`
	Style     string `json:"style,omitempty"`
	Domain    string `json:"domain,omitempty"`
}

type createDebateRequest struct {
	Topic        string            `json:"topic"`
	Participants []participantSpec `json:"participants"`
	Mode         string            `json:"mode,omitempty"`
	MaxRounds    int               `json:"max_rounds,omitempty"`
	Provider     string            `json:"provider,omitempty"`
	Model        string            `json:"model,omitempty"`
	Batched      bool              `json:"batched,omitempty"`
}

func (h *Handler) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req createDebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	defaults := h.deps.Config.Defaults
	if req.Mode == "" {
		req.Mode = defaults.Mode
	}
	if req.MaxRounds == 0 {
		req.MaxRounds = defaults.MaxRounds
	}
	if req.Provider == "" {
		req.Provider = defaults.Provider
	}
	if req.Model == "" {
		req.Model = defaults.Model
	}

	mode, err := core.ParseContextMode(req.Mode)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	participants, err := h.buildParticipants(req.Participants)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	generator, err := h.deps.Registry.Get(req.Provider)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := engine.New(engine.Config{
		Topic:          req.Topic,
		Participants:   participants,
		Mode:           mode,
		MaxRounds:      req.MaxRounds,
		WindowSize:     defaults.WindowSize,
		SummarizeEvery: defaults.SummarizeEvery,
		Batched:        req.Batched,
		Model:          req.Model,
	}, engine.Deps{
		Generator: generator,
		Retriever: h.deps.Retriever,
		Drift:     h.deps.Drift,
		Metrics:   h.deps.Metrics,
	})
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, runErr := session.Run(r.Context())
	if record != nil {
		if err := h.deps.Storage.SaveDebate(record); err != nil {
			h.jsonError(w, "failed to store debate: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if runErr != nil {
		h.jsonError(w, runErr.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// buildParticipants expands template references and fills in domains.
func (h *Handler) buildParticipants(specs []participantSpec) ([]core.Participant, error) {
	participants := make([]core.Participant, 0, len(specs))
	for i, spec := range specs {
		p := core.Participant{
			ID:        core.GenerateID(),
			Name:      spec.Name,
			Persona:   spec.Persona,
			Role:      spec.Role,
			Expertise: spec.Expertise,
			Style:     spec.Style,
			Domain:    spec.Domain,
		}
		if spec.Template != "" {
			t := persona.Resolve(spec.Template, h.deps.Personas)
			if t == nil {
				return nil, fmt.Errorf("unknown persona template: %s", spec.Template)
			}
			if p.Name == "" {
				p.Name = t.Name
			}
			if p.Persona == "" {
				p.Persona = t.Persona
			}
			if p.Role == "" {
				p.Role = t.Role
			}
			if p.Expertise == "" {
				p.Expertise = t.Expertise
			}
			if p.Style == "" {
				p.Style = t.Style
			}
		}
		if p.Name == "" {
			return nil, fmt.Errorf("participant %d has no name", i+1)
		}
		if p.Domain == "" {
			p.Domain = h.domains.DomainFor(p.Role)
		}
		participants = append(participants, p)
	}
	return participants, nil
}

func (h *Handler) json(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
