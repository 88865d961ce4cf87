package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/TemirB/satrec-registry/internal/application/service"
	"github.com/TemirB/satrec-registry/internal/domain"
	"github.com/TemirB/satrec-registry/internal/observability"
	"github.com/TemirB/satrec-registry/internal/tle"
)

//go:generate mockgen -source httpapi.go -destination=httpapi_mock_test.go -package=httpapi

const maxBodyBytes = 32 << 20

type SatelliteService interface {
	CreateWithStats(ctx context.Context, in domain.NewSatellite) (*domain.Satellite, service.WriteStats, error)
	BulkCreateWithStats(ctx context.Context, entries []domain.NewSatellite) (domain.BulkResult, service.WriteStats, error)
	List(ctx context.Context) ([]domain.Satellite, error)
	GetByIDWithStats(ctx context.Context, id string) (*domain.Satellite, service.LookupStats, error)
	UpdateByIDWithStats(ctx context.Context, id string, patch domain.Patch) (*domain.Satellite, service.WriteStats, error)
	DeleteByID(ctx context.Context, id string) (*domain.Satellite, error)
}

type Server struct {
	service SatelliteService
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
}

// New wires the routes. metricsHandler is mounted on /metrics when not nil.
func New(service SatelliteService, logger *zap.Logger, metrics observability.Metrics, metricsHandler http.Handler) *Server {
	s := &Server{
		service: service,
		logger:  logger,
		router:  chi.NewRouter(),
		metrics: metrics,
	}
	s.routes(metricsHandler)
	return s
}

func (s *Server) routes(metricsHandler http.Handler) {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(ServerTimingApp(s.metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1/satellites", func(r chi.Router) {
		r.Post("/", s.createSatellite)
		r.Post("/bulk", s.bulkCreate)
		r.Get("/", s.listSatellites)
		r.Get("/{id}", s.getSatellite)
		r.Patch("/{id}", s.updateSatellite)
		r.Delete("/{id}", s.deleteSatellite)
	})
}

func (s *Server) createSatellite(w http.ResponseWriter, r *http.Request) {
	if !hasMediaType(r, "application/json") {
		s.writeError(w, r, errUnsupportedMedia)
		return
	}

	var in domain.NewSatellite
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	sat, st, err := s.service.CreateWithStats(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	observability.AppendServerTiming(w, "derive", st.DeriveMs, "")
	observability.AppendServerTiming(w, "db_write", st.DBWriteMs, "")
	w.Header().Set("Location", "/v1/satellites/"+sat.ID)
	writeJSONStatus(w, http.StatusCreated, sat)
}

// bulkCreate takes either a JSON array of entries or a text/plain 3-line
// catalog. The batch is stored completely or not at all.
func (s *Server) bulkCreate(w http.ResponseWriter, r *http.Request) {
	var entries []domain.NewSatellite
	switch {
	case hasMediaType(r, "application/json"):
		if err := s.decodeJSON(w, r, &entries); err != nil {
			s.writeError(w, r, err)
			return
		}
	case hasMediaType(r, "text/plain"):
		var err error
		entries, err = tle.ParseStrict(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	default:
		s.writeError(w, r, errUnsupportedMedia)
		return
	}

	res, st, err := s.service.BulkCreateWithStats(r.Context(), entries)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	observability.AppendServerTiming(w, "derive", st.DeriveMs, "")
	observability.AppendServerTiming(w, "db_write", st.DBWriteMs, "")
	writeJSONStatus(w, http.StatusCreated, res)
}

func (s *Server) listSatellites(w http.ResponseWriter, r *http.Request) {
	sats, err := s.service.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, sats)
}

func (s *Server) getSatellite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sat, st, err := s.service.GetByIDWithStats(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	observability.SetLookupHeaders(w, string(st.Source), st.CacheMs, st.DBMs)
	writeJSON(w, sat)
}

func (s *Server) updateSatellite(w http.ResponseWriter, r *http.Request) {
	if !hasMediaType(r, "application/json") {
		s.writeError(w, r, errUnsupportedMedia)
		return
	}

	var patch domain.Patch
	if err := s.decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	sat, st, err := s.service.UpdateByIDWithStats(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	observability.AppendServerTiming(w, "derive", st.DeriveMs, "")
	observability.AppendServerTiming(w, "db_write", st.DBWriteMs, "")
	writeJSON(w, sat)
}

func (s *Server) deleteSatellite(w http.ResponseWriter, r *http.Request) {
	sat, err := s.service.DeleteByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, sat)
}

var (
	errBadJSON          = errors.New("bad json")
	errUnsupportedMedia = errors.New("unsupported content type")
)

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		s.logger.Debug("Error while decoding JSON", zap.Error(err))
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON value", errBadJSON)
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMalformedTLE),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, errBadJSON):
		return http.StatusBadRequest
	case errors.Is(err, errUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		msg = "internal error"
	}
	writeJSONStatus(w, status, errorBody{Error: msg})
}

func hasMediaType(r *http.Request, want string) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == want
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http server shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
