// Package api exposes the dashboard HTTP surface: cached report
// endpoints, configuration, scheduler control, and the astrodex and
// equipment CRUD.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/WorldOfGZ/myastroboard/internal/cache"
	"github.com/WorldOfGZ/myastroboard/internal/domain"
	"github.com/WorldOfGZ/myastroboard/internal/jobsched"
	"github.com/WorldOfGZ/myastroboard/internal/report"
	"github.com/WorldOfGZ/myastroboard/internal/settings"
	"github.com/WorldOfGZ/myastroboard/internal/store/postgres"
)

// Pagination defaults and limits.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ReportCache resolves report lookups through the tiered cache.
type ReportCache interface {
	Lookup(ctx context.Context, key domain.CacheKey, compute cache.ComputeFunc) cache.Result
	Snapshot() (map[domain.CacheKey]bool, bool)
}

// SettingsStore reads and writes the user configuration.
type SettingsStore interface {
	Load() (settings.Settings, error)
	Save(cfg settings.Settings) error
}

// LocationDetector reacts to configuration saves that move the
// observing site.
type LocationDetector interface {
	Check(current domain.LocationSignature) (bool, error)
}

// SchedulerControl answers scheduler status and trigger requests,
// locally on the leader and through the shared files elsewhere.
type SchedulerControl interface {
	Status() domain.SchedulerStatus
	TriggerNow(ctx context.Context) jobsched.TriggerResult
}

// Store persists astrodex items and equipment profiles.
type Store interface {
	ListAstrodexItems(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.AstrodexItem, error)
	GetAstrodexItem(ctx context.Context, id, userID uuid.UUID) (domain.AstrodexItem, error)
	CreateAstrodexItem(ctx context.Context, item domain.AstrodexItem) error
	UpdateAstrodexItem(ctx context.Context, item domain.AstrodexItem) error
	DeleteAstrodexItem(ctx context.Context, id, userID uuid.UUID) error

	ListEquipmentProfiles(ctx context.Context, userID uuid.UUID, kind domain.EquipmentKind) ([]domain.EquipmentProfile, error)
	GetEquipmentProfile(ctx context.Context, id, userID uuid.UUID) (domain.EquipmentProfile, error)
	CreateEquipmentProfile(ctx context.Context, p domain.EquipmentProfile) error
	UpdateEquipmentProfile(ctx context.Context, p domain.EquipmentProfile) error
	DeleteEquipmentProfile(ctx context.Context, id, userID uuid.UUID) error
}

// AnalyticsSink records report request counts. Optional.
type AnalyticsSink interface {
	Record(ctx context.Context, key string, outcome string)
}

// HealthChecker provides database health status for the /health endpoint.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	cache      ReportCache
	generators map[domain.CacheKey]report.Generator
	settings   SettingsStore
	detector   LocationDetector
	scheduler  SchedulerControl
	userID     uuid.UUID // single-tenant for now

	store     Store         // optional, nil = CRUD disabled
	analytics AnalyticsSink // optional
	db        HealthChecker // optional
}

func NewHandler(
	reportCache ReportCache,
	generators map[domain.CacheKey]report.Generator,
	settingsStore SettingsStore,
	detector LocationDetector,
	scheduler SchedulerControl,
	userID uuid.UUID,
) *Handler {
	return &Handler{
		cache:      reportCache,
		generators: generators,
		settings:   settingsStore,
		detector:   detector,
		scheduler:  scheduler,
		userID:     userID,
	}
}

// WithStore enables the astrodex and equipment CRUD endpoints.
func (h *Handler) WithStore(store Store) *Handler {
	h.store = store
	return h
}

// WithAnalytics records report request counts per key and outcome.
func (h *Handler) WithAnalytics(sink AnalyticsSink) *Handler {
	h.analytics = sink
	return h
}

// WithHealthChecker sets the database health checker for verbose /health responses.
func (h *Handler) WithHealthChecker(db HealthChecker) *Handler {
	h.db = db
	return h
}

// reportRoutes maps fixed report paths to their cache keys. The
// best-window endpoint is routed separately because of its mode
// parameter.
var reportRoutes = map[string]domain.CacheKey{
	"/api/moon/report":        domain.KeyMoonReport,
	"/api/sun/today":          domain.KeySunReport,
	"/api/moon/dark-window":   domain.KeyDarkWindow,
	"/api/moon/next-7-nights": domain.KeyMoonPlanner,
	"/api/eclipse/solar":      domain.KeySolarEclipse,
	"/api/eclipse/lunar":      domain.KeyLunarEclipse,
	"/api/horizon/graph":      domain.KeyHorizonGraph,
	"/api/weather/forecast":   domain.KeyWeather,
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if key, ok := reportRoutes[path]; ok && r.Method == http.MethodGet {
		h.report(w, r, key)
		return
	}

	switch {
	case path == "/health" && r.Method == http.MethodGet:
		h.health(w, r)

	case path == "/api/cache" && r.Method == http.MethodGet:
		h.cacheStatus(w, r)

	case path == "/api/tonight/best-window" && r.Method == http.MethodGet:
		h.bestWindow(w, r)

	case path == "/api/config" && r.Method == http.MethodGet:
		h.getConfig(w, r)

	case path == "/api/config" && r.Method == http.MethodPost:
		h.updateConfig(w, r)

	case path == "/api/scheduler/status" && r.Method == http.MethodGet:
		h.schedulerStatus(w, r)

	case path == "/api/scheduler/trigger" && r.Method == http.MethodPost:
		h.schedulerTrigger(w, r)

	case strings.HasPrefix(path, "/api/astrodex/items"):
		h.routeAstrodex(w, r)

	case strings.HasPrefix(path, "/api/equipment/"):
		h.routeEquipment(w, r)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	verbose := r.URL.Query().Get("verbose") == "true"

	if !verbose || h.db == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	resp := HealthResponse{
		Status:     "ok",
		Components: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Components["database"] = "unhealthy: " + err.Error()
	} else {
		resp.Components["database"] = "healthy"
	}

	statusCode := http.StatusOK
	if resp.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, resp)
}

// report serves one cached report: a valid entry returns 200 with the
// raw payload, an empty cache returns 202 so the frontend polls, and a
// failed synchronous compute returns 500.
func (h *Handler) report(w http.ResponseWriter, r *http.Request, key domain.CacheKey) {
	cfg, err := h.settings.Load()
	if err != nil {
		log.Printf("api: load settings error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}
	loc := reportLocation(cfg)

	var compute cache.ComputeFunc
	if gen, ok := h.generators[key]; ok {
		compute = func(ctx context.Context) (json.RawMessage, error) {
			return gen.Generate(ctx, loc)
		}
	}

	res := h.cache.Lookup(r.Context(), key, compute)
	h.recordAnalytics(key, res.Outcome)

	switch res.Outcome {
	case cache.OutcomeHit:
		writeRawJSON(w, http.StatusOK, res.Entry.Data)
	case cache.OutcomeMiss:
		writeJSON(w, http.StatusAccepted, PendingResponse{Status: "pending"})
	default:
		writeError(w, http.StatusInternalServerError, "report computation failed")
	}
}

func (h *Handler) bestWindow(w http.ResponseWriter, r *http.Request) {
	var key domain.CacheKey
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "strict":
		key = domain.KeyBestWindowStrict
	case "practical":
		key = domain.KeyBestWindowPractical
	case "illumination":
		key = domain.KeyBestWindowIllumination
	default:
		writeError(w, http.StatusBadRequest, "mode must be strict, practical or illumination")
		return
	}
	h.report(w, r, key)
}

func (h *Handler) cacheStatus(w http.ResponseWriter, r *http.Request) {
	statuses, allReady := h.cache.Snapshot()

	resp := CacheStatusResponse{
		Entries:  make(map[string]bool, len(statuses)),
		AllReady: allReady,
	}
	for key, valid := range statuses {
		resp.Entries[string(key)] = valid
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.Load()
	if err != nil {
		log.Printf("api: load settings error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// updateConfig merges the request body over the stored configuration,
// persists it, and runs the location change check so a moved observing
// site resets the caches immediately instead of on the next refresh
// cycle.
func (h *Handler) updateConfig(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	cfg, err := h.settings.Load()
	if err != nil {
		log.Printf("api: load settings error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := validateLocation(cfg.Location); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.Save(cfg); err != nil {
		log.Printf("api: save settings error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save configuration")
		return
	}

	if reset, err := h.detector.Check(cfg.Signature()); err != nil {
		log.Printf("api: location check error: %v", err)
	} else if reset {
		log.Println("api: location changed, caches reset")
	}

	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) schedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.Status())
}

func (h *Handler) schedulerTrigger(w http.ResponseWriter, r *http.Request) {
	// The cycle outlives the request, so detach its context from the
	// request lifetime.
	result := h.scheduler.TriggerNow(context.WithoutCancel(r.Context()))
	if result.Status == "error" {
		writeError(w, http.StatusInternalServerError, result.Reason)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

func (h *Handler) routeAstrodex(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// /api/astrodex/items or /api/astrodex/items/{id}
	switch {
	case len(parts) == 3 && r.Method == http.MethodGet:
		h.listAstrodex(w, r)
	case len(parts) == 3 && r.Method == http.MethodPost:
		h.createAstrodex(w, r)
	case len(parts) == 4:
		id, err := uuid.Parse(parts[3])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.getAstrodex(w, r, id)
		case http.MethodPut:
			h.updateAstrodex(w, r, id)
		case http.MethodDelete:
			h.deleteAstrodex(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) listAstrodex(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.store.ListAstrodexItems(r.Context(), h.userID, limit, offset)
	if err != nil {
		log.Printf("api: list astrodex error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	resp := ListAstrodexResponse{Items: make([]AstrodexItemResponse, len(items))}
	for i, item := range items {
		resp.Items[i] = astrodexResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createAstrodex(w http.ResponseWriter, r *http.Request) {
	var req AstrodexItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateAstrodexItem(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	item := domain.AstrodexItem{
		ID:            uuid.New(),
		UserID:        h.userID,
		Name:          req.Name,
		ObjectType:    req.ObjectType,
		Catalogue:     req.Catalogue,
		RA:            req.RA,
		Dec:           req.Dec,
		Constellation: req.Constellation,
		Magnitude:     req.Magnitude,
		Size:          req.Size,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.store.CreateAstrodexItem(r.Context(), item); err != nil {
		log.Printf("api: create astrodex item error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	writeJSON(w, http.StatusCreated, astrodexResponse(item))
}

func (h *Handler) getAstrodex(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	item, err := h.store.GetAstrodexItem(r.Context(), id, h.userID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		log.Printf("api: get astrodex item error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	writeJSON(w, http.StatusOK, astrodexResponse(item))
}

// updateAstrodex changes only the mutable fields. Name, catalogue and
// coordinates identify the object and stay fixed after creation.
func (h *Handler) updateAstrodex(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req AstrodexItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.store.GetAstrodexItem(r.Context(), id, h.userID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		log.Printf("api: get astrodex item error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}

	if req.ObjectType != "" {
		item.ObjectType = req.ObjectType
	}
	if req.Constellation != "" {
		item.Constellation = req.Constellation
	}
	if req.Magnitude != "" {
		item.Magnitude = req.Magnitude
	}
	if req.Size != "" {
		item.Size = req.Size
	}
	if req.Notes != "" {
		item.Notes = req.Notes
	}
	item.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateAstrodexItem(r.Context(), item); err != nil {
		log.Printf("api: update astrodex item error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, astrodexResponse(item))
}

func (h *Handler) deleteAstrodex(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.store.DeleteAstrodexItem(r.Context(), id, h.userID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		log.Printf("api: delete astrodex item error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) routeEquipment(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// /api/equipment/{kind} or /api/equipment/{kind}/{id}
	if len(parts) < 3 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	kind, ok := equipmentKind(parts[2])
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case len(parts) == 3 && r.Method == http.MethodGet:
		h.listEquipment(w, r, kind)
	case len(parts) == 3 && r.Method == http.MethodPost:
		h.createEquipment(w, r, kind)
	case len(parts) == 4:
		id, err := uuid.Parse(parts[3])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid profile id")
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.getEquipment(w, r, id)
		case http.MethodPut:
			h.updateEquipment(w, r, id)
		case http.MethodDelete:
			h.deleteEquipment(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func equipmentKind(segment string) (domain.EquipmentKind, bool) {
	switch segment {
	case "telescopes":
		return domain.EquipmentTelescope, true
	case "cameras":
		return domain.EquipmentCamera, true
	}
	return "", false
}

func (h *Handler) listEquipment(w http.ResponseWriter, r *http.Request, kind domain.EquipmentKind) {
	profiles, err := h.store.ListEquipmentProfiles(r.Context(), h.userID, kind)
	if err != nil {
		log.Printf("api: list equipment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}

	resp := ListEquipmentResponse{Profiles: make([]EquipmentResponse, len(profiles))}
	for i, p := range profiles {
		resp.Profiles[i] = equipmentResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createEquipment(w http.ResponseWriter, r *http.Request, kind domain.EquipmentKind) {
	var req EquipmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateEquipment(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	p := domain.EquipmentProfile{
		ID:            uuid.New(),
		UserID:        h.userID,
		Kind:          kind,
		Name:          req.Name,
		FocalLengthMM: req.FocalLengthMM,
		ApertureMM:    req.ApertureMM,
		PixelSizeUM:   req.PixelSizeUM,
		SensorWidthMM: req.SensorWidthMM,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.store.CreateEquipmentProfile(r.Context(), p); err != nil {
		log.Printf("api: create equipment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}
	writeJSON(w, http.StatusCreated, equipmentResponse(p))
}

func (h *Handler) getEquipment(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	p, err := h.store.GetEquipmentProfile(r.Context(), id, h.userID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		log.Printf("api: get equipment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, equipmentResponse(p))
}

func (h *Handler) updateEquipment(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req EquipmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateEquipment(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.store.GetEquipmentProfile(r.Context(), id, h.userID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		log.Printf("api: get equipment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	p.Name = req.Name
	p.FocalLengthMM = req.FocalLengthMM
	p.ApertureMM = req.ApertureMM
	p.PixelSizeUM = req.PixelSizeUM
	p.SensorWidthMM = req.SensorWidthMM
	p.Notes = req.Notes
	p.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateEquipmentProfile(r.Context(), p); err != nil {
		log.Printf("api: update equipment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, equipmentResponse(p))
}

func (h *Handler) deleteEquipment(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.store.DeleteEquipmentProfile(r.Context(), id, h.userID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		log.Printf("api: delete equipment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordAnalytics counts the request off the hot path. A slow or down
// Redis must not delay report responses.
func (h *Handler) recordAnalytics(key domain.CacheKey, outcome cache.Outcome) {
	if h.analytics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.analytics.Record(ctx, string(key), string(outcome))
	}()
}

func reportLocation(cfg settings.Settings) report.Location {
	return report.Location{
		Name:      cfg.Location.Name,
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Elevation: cfg.Location.Elevation,
		Timezone:  cfg.Location.Timezone,
	}
}

// decodeBody decodes a size-limited JSON request body into v. On
// failure it writes the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: json encode error: %v", err)
	}
}

func writeRawJSON(w http.ResponseWriter, status int, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Printf("api: write error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// parsePagination extracts and validates limit/offset query parameters.
// Returns DefaultLimit if limit is not specified, and 0 for offset if not specified.
// Returns an error if limit exceeds MaxLimit or if values are negative/invalid.
func parsePagination(r *http.Request) (limit, offset int, err error) {
	limit = DefaultLimit
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, err
		}
		if limit < 0 {
			return 0, 0, strconv.ErrRange
		}
		if limit > MaxLimit {
			return 0, 0, &limitExceededError{max: MaxLimit}
		}
		if limit == 0 {
			limit = DefaultLimit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, err
		}
		if offset < 0 {
			return 0, 0, strconv.ErrRange
		}
	}

	return limit, offset, nil
}

type limitExceededError struct {
	max int
}

func (e *limitExceededError) Error() string {
	return "limit exceeds maximum of " + strconv.Itoa(e.max)
}
