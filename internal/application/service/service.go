package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TemirB/satrec-registry/internal/domain"
	"github.com/TemirB/satrec-registry/internal/observability"
	"github.com/TemirB/satrec-registry/internal/pkg/pool"
)

//go:generate mockgen -source service.go -destination=service_mock_test.go -package=service

type Cache interface {
	Set(*domain.Satellite)
	Get(string) (*domain.Satellite, bool)
	Remove(string)
}

type Storage interface {
	Insert(context.Context, *domain.Satellite) (string, error)
	InsertMany(context.Context, []domain.Satellite) (int, error)
	FindAll(context.Context) ([]domain.Satellite, error)
	FindByID(context.Context, string) (*domain.Satellite, error)
	Save(context.Context, *domain.Satellite) error
	RemoveByID(context.Context, string) (*domain.Satellite, error)
}

type Deriver interface {
	Derive(lineOne, lineTwo string) (domain.OrbitalState, error)
}

// Service owns the satellite lifecycle. Every write derives the satrec
// completely before touching the store and then writes once, so a stored
// record always satisfies Satrec == Derive(TLE).
//
// There is no version check on update: two concurrent updates of one id end
// last-write-wins. Each stored record is still coherent.
type Service struct {
	deriver     Deriver
	cache       Cache
	storage     Storage
	logger      *zap.Logger
	metrics     observability.Metrics
	bulkWorkers int
	newID       func() string
}

type Option func(*Service)

// WithBulkWorkers bounds parallel derivation in BulkCreate.
func WithBulkWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkWorkers = n
		}
	}
}

func NewService(deriver Deriver, cache Cache, storage Storage, logger *zap.Logger, metrics observability.Metrics, opts ...Option) *Service {
	s := &Service{
		deriver:     deriver,
		cache:       cache,
		storage:     storage,
		logger:      logger,
		metrics:     metrics,
		bulkWorkers: 4,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, in domain.NewSatellite) (*domain.Satellite, error) {
	sat, _, err := s.CreateWithStats(ctx, in)
	return sat, err
}

func (s *Service) CreateWithStats(ctx context.Context, in domain.NewSatellite) (*domain.Satellite, WriteStats, error) {
	var st WriteStats

	if err := in.Validate(); err != nil {
		return nil, st, err
	}

	t0 := time.Now()
	state, err := s.deriver.Derive(in.LineOne, in.LineTwo)
	st.DeriveMs = convertToMs(t0)
	s.metrics.ObserveDerive(1, st.DeriveMs, err == nil)
	if err != nil {
		s.logger.Warn("Rejected malformed TLE",
			zap.String("name", in.Name),
			zap.Error(err),
		)
		return nil, st, fmt.Errorf("create %q: %w", in.Name, err)
	}

	sat := &domain.Satellite{
		Name:   in.Name,
		TLE:    domain.TLE{LineOne: in.LineOne, LineTwo: in.LineTwo},
		Satrec: state,
	}

	t1 := time.Now()
	_, err = s.storage.Insert(ctx, sat)
	st.DBWriteMs = convertToMs(t1)
	s.metrics.ObserveWrite(observability.OpCreate, st.DBWriteMs, err == nil)
	if err != nil {
		s.logger.Error("Error while inserting satellite in db",
			zap.String("name", in.Name),
			zap.Error(err),
		)
		return nil, st, fmt.Errorf("create %q: %w", in.Name, err)
	}

	s.cache.Set(sat)
	s.logger.Info("Satellite created",
		zap.String("satellite_id", sat.ID),
		zap.String("satnum", state.SatNum),
		zap.Float64("derive_ms", st.DeriveMs),
		zap.Float64("db_write_ms", st.DBWriteMs),
	)
	return sat, st, nil
}

func (s *Service) BulkCreate(ctx context.Context, entries []domain.NewSatellite) (domain.BulkResult, error) {
	res, _, err := s.BulkCreateWithStats(ctx, entries)
	return res, err
}

// BulkCreateWithStats derives every entry locally, then submits the batch in
// a single InsertMany. One bad entry rejects the whole batch before the store
// is touched. Ids are generated here because the bulk store path does not
// report generated keys.
func (s *Service) BulkCreateWithStats(ctx context.Context, entries []domain.NewSatellite) (domain.BulkResult, WriteStats, error) {
	return s.bulkCreate(ctx, entries, func(int) string { return s.newID() }, false)
}

// BulkCreateKeyed is BulkCreate for batches that may be submitted again, such
// as a redelivered Kafka message or a retry after a write timed out. Ids are
// derived from key and position, so a batch that already landed is reported
// with its ids instead of being inserted twice.
func (s *Service) BulkCreateKeyed(ctx context.Context, key string, entries []domain.NewSatellite) (domain.BulkResult, error) {
	if key == "" {
		return s.BulkCreate(ctx, entries)
	}
	res, _, err := s.bulkCreate(ctx, entries, func(i int) string { return BatchID(key, i) }, true)
	return res, err
}

var batchNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("satrec-registry/bulk"))

// BatchID is the id of entry i of the batch identified by key.
func BatchID(key string, i int) string {
	return uuid.NewSHA1(batchNamespace, []byte(fmt.Sprintf("%s#%d", key, i))).String()
}

func (s *Service) bulkCreate(ctx context.Context, entries []domain.NewSatellite, idFor func(int) string, keyed bool) (domain.BulkResult, WriteStats, error) {
	var st WriteStats
	if len(entries) == 0 {
		return domain.BulkResult{IDs: []string{}}, st, nil
	}

	sats := make([]domain.Satellite, len(entries))
	t0 := time.Now()
	err := pool.ForEach(s.bulkWorkers, len(entries), func(i int) error {
		e := entries[i]
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		state, err := s.deriver.Derive(e.LineOne, e.LineTwo)
		if err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, strings.TrimSpace(e.Name), err)
		}
		sats[i] = domain.Satellite{
			ID:     idFor(i),
			Name:   e.Name,
			TLE:    domain.TLE{LineOne: e.LineOne, LineTwo: e.LineTwo},
			Satrec: state,
		}
		return nil
	})
	st.DeriveMs = convertToMs(t0)
	s.metrics.ObserveDerive(len(entries), st.DeriveMs, err == nil)
	if err != nil {
		s.logger.Warn("Bulk ingestion rejected, nothing persisted",
			zap.Int("entries", len(entries)),
			zap.Error(err),
		)
		return domain.BulkResult{}, st, err
	}

	t1 := time.Now()
	n, err := s.storage.InsertMany(ctx, sats)
	if err != nil && keyed && errors.Is(err, domain.ErrDuplicateID) && s.landed(ctx, sats[0]) {
		s.logger.Info("Bulk batch already stored, skipping",
			zap.Int("entries", len(entries)),
			zap.String("first_id", sats[0].ID),
		)
		n, err = 0, nil
	}
	st.DBWriteMs = convertToMs(t1)
	s.metrics.ObserveWrite(observability.OpBulkCreate, st.DBWriteMs, err == nil)
	if err != nil {
		s.logger.Error("Error while bulk inserting satellites in db",
			zap.Int("entries", len(entries)),
			zap.Error(err),
		)
		return domain.BulkResult{}, st, fmt.Errorf("bulk create: %w", err)
	}

	ids := make([]string, len(sats))
	for i := range sats {
		ids[i] = sats[i].ID
	}
	s.logger.Info("Satellites bulk created",
		zap.Int("entries", len(entries)),
		zap.Int("inserted", n),
		zap.Float64("derive_ms", st.DeriveMs),
		zap.Float64("db_write_ms", st.DBWriteMs),
	)
	return domain.BulkResult{Inserted: n, IDs: ids}, st, nil
}

// landed reports whether sat is already stored under its id. InsertMany is
// all-or-nothing, so one stored entry means the whole batch is.
func (s *Service) landed(ctx context.Context, sat domain.Satellite) bool {
	stored, err := s.storage.FindByID(ctx, sat.ID)
	return err == nil && stored != nil && stored.TLE == sat.TLE
}

// List returns stored records as they are; nothing is re-derived.
func (s *Service) List(ctx context.Context) ([]domain.Satellite, error) {
	sats, err := s.storage.FindAll(ctx)
	if err != nil {
		s.logger.Error("Can't list satellites", zap.Error(err))
		return nil, fmt.Errorf("list: %w", err)
	}
	if sats == nil {
		sats = []domain.Satellite{}
	}
	return sats, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Satellite, error) {
	sat, _, err := s.GetByIDWithStats(ctx, id)
	return sat, err
}

func (s *Service) GetByIDWithStats(ctx context.Context, id string) (*domain.Satellite, LookupStats, error) {
	var st LookupStats

	if strings.TrimSpace(id) == "" {
		return nil, st, domain.InvalidInput("id is required")
	}

	// Try cache
	tCacheStart := time.Now()
	if sat, ok := s.cache.Get(id); ok {
		st.Source = SourceCache
		st.CacheMs = convertToMs(tCacheStart)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, 0)

		s.logger.Debug("Satellite fetched from cache",
			zap.String("satellite_id", id),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return sat, st, nil
	}

	// Try DB
	s.metrics.IncCacheMiss()
	st.CacheMs = convertToMs(tCacheStart)

	tDbStart := time.Now()
	sat, err := s.find(ctx, id)
	if err != nil {
		return nil, st, err
	}

	st.Source = SourceDB
	st.DBMs = convertToMs(tDbStart)

	s.cache.Set(sat)

	s.metrics.ObserveLookup(string(st.Source), st.CacheMs, st.DBMs)
	s.logger.Debug("Satellite fetched from DB",
		zap.String("satellite_id", id),
		zap.Float64("cache_ms", st.CacheMs),
		zap.Float64("db_ms", st.DBMs),
	)
	return sat, st, nil
}

func (s *Service) UpdateByID(ctx context.Context, id string, patch domain.Patch) (*domain.Satellite, error) {
	sat, _, err := s.UpdateByIDWithStats(ctx, id, patch)
	return sat, err
}

// UpdateByIDWithStats merges the patch into the stored record. When either
// TLE line is touched the satrec is re-derived from the merged pair, never
// from the changed line alone. A failed derivation leaves the record as is.
func (s *Service) UpdateByIDWithStats(ctx context.Context, id string, patch domain.Patch) (*domain.Satellite, WriteStats, error) {
	var st WriteStats

	if strings.TrimSpace(id) == "" {
		return nil, st, domain.InvalidInput("id is required")
	}
	if err := patch.Validate(); err != nil {
		return nil, st, err
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return nil, st, err
	}
	if patch.Empty() {
		return current, st, nil
	}

	merged := patch.Apply(*current)
	if patch.TouchesTLE() {
		t0 := time.Now()
		state, err := s.deriver.Derive(merged.TLE.LineOne, merged.TLE.LineTwo)
		st.DeriveMs = convertToMs(t0)
		s.metrics.ObserveDerive(1, st.DeriveMs, err == nil)
		if err != nil {
			s.logger.Warn("Rejected update with malformed TLE",
				zap.String("satellite_id", id),
				zap.Error(err),
			)
			return nil, st, fmt.Errorf("update %s: %w", id, err)
		}
		merged.Satrec = state
	}

	t1 := time.Now()
	err = s.storage.Save(ctx, &merged)
	st.DBWriteMs = convertToMs(t1)
	s.metrics.ObserveWrite(observability.OpUpdate, st.DBWriteMs, err == nil)
	if err != nil {
		// The outcome of a failed write is unknown; drop the entry so the
		// next read goes to the store.
		s.cache.Remove(id)
		s.logger.Error("Error while saving satellite in db",
			zap.String("satellite_id", id),
			zap.Error(err),
		)
		return nil, st, fmt.Errorf("update %s: %w", id, err)
	}

	s.cache.Set(&merged)
	s.logger.Info("Satellite updated",
		zap.String("satellite_id", id),
		zap.Bool("tle_changed", patch.TouchesTLE()),
		zap.Float64("db_write_ms", st.DBWriteMs),
	)
	return &merged, st, nil
}

// DeleteByID removes the record and returns it as it was just before removal.
func (s *Service) DeleteByID(ctx context.Context, id string) (*domain.Satellite, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.InvalidInput("id is required")
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	removed, err := s.storage.RemoveByID(ctx, id)
	s.metrics.ObserveWrite(observability.OpDelete, convertToMs(t0), err == nil)
	s.cache.Remove(id)
	if err != nil {
		s.logger.Error("Error while removing satellite from db",
			zap.String("satellite_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("delete %s: %w", id, err)
	}
	if removed == nil {
		removed = current
	}

	s.logger.Info("Satellite deleted",
		zap.String("satellite_id", id),
		zap.String("name", removed.Name),
	)
	return removed, nil
}

// find reads straight from the store and turns an absent record into
// domain.ErrNotFound.
func (s *Service) find(ctx context.Context, id string) (*domain.Satellite, error) {
	sat, err := s.storage.FindByID(ctx, id)
	if err == nil && sat == nil {
		err = domain.ErrNotFound
	}
	if err != nil {
		s.logger.Info("Can't find satellite",
			zap.String("satellite_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("satellite %s: %w", id, err)
	}
	return sat, nil
}
