package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TemirB/satrec-registry/internal/config"
	"github.com/TemirB/satrec-registry/internal/domain"
)

var _ domain.SatelliteRepository = (*Repo)(nil)

var copyColumns = []string{"id", "name", "tle_line_one", "tle_line_two", "satrec", "created_at", "updated_at"}

type Repo struct {
	pool   *pgxpool.Pool
	tables config.Tables
	now    func() time.Time
}

func New(pool *pgxpool.Pool, t config.Tables) *Repo {
	return &Repo{
		pool:   pool,
		tables: t,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (r *Repo) ident() pgx.Identifier { return pgx.Identifier{r.tables.Schema, r.tables.Satellite} }

func (r *Repo) qt() string { return r.ident().Sanitize() }

func (r *Repo) Insert(ctx context.Context, sat *domain.Satellite) (string, error) {
	satrec, err := json.Marshal(sat.Satrec)
	if err != nil {
		return "", fmt.Errorf("encode satrec: %w", err)
	}
	id := uuid.NewString()
	now := r.now()

	_, err = r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, name, tle_line_one, tle_line_two, satrec, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$6)
	`, r.qt()), id, sat.Name, sat.TLE.LineOne, sat.TLE.LineTwo, satrec, now)
	if err != nil {
		return "", wrap("insert", err)
	}

	sat.ID, sat.CreatedAt, sat.UpdatedAt = id, now, now
	return id, nil
}

// InsertMany streams the batch with COPY: one round trip, one statement, so
// the batch lands as a whole or not at all.
func (r *Repo) InsertMany(ctx context.Context, sats []domain.Satellite) (int, error) {
	if len(sats) == 0 {
		return 0, nil
	}
	now := r.now()
	rows := make([][]any, 0, len(sats))
	for _, s := range sats {
		if s.ID == "" {
			return 0, fmt.Errorf("insert many: %w: missing id", domain.ErrInvalidInput)
		}
		satrec, err := json.Marshal(s.Satrec)
		if err != nil {
			return 0, fmt.Errorf("encode satrec for %s: %w", s.ID, err)
		}
		rows = append(rows, []any{s.ID, s.Name, s.TLE.LineOne, s.TLE.LineTwo, satrec, now, now})
	}

	n, err := r.pool.CopyFrom(ctx, r.ident(), copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, wrap("insert many", err)
	}
	return int(n), nil
}

func (r *Repo) FindAll(ctx context.Context) ([]domain.Satellite, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, name, tle_line_one, tle_line_two, satrec, created_at, updated_at
		FROM %s
		ORDER BY seq
	`, r.qt()))
	if err != nil {
		return nil, wrap("find all", err)
	}
	defer rows.Close()

	var out []domain.Satellite
	for rows.Next() {
		s, err := scanSatellite(rows)
		if err != nil {
			return nil, wrap("find all", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("find all", err)
	}
	return out, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*domain.Satellite, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, name, tle_line_one, tle_line_two, satrec, created_at, updated_at
		FROM %s WHERE id=$1
	`, r.qt()), id)
	s, err := scanSatellite(row)
	if err != nil {
		return nil, wrap("find by id", err)
	}
	return s, nil
}

// Save writes name, both TLE lines and satrec in a single UPDATE.
func (r *Repo) Save(ctx context.Context, sat *domain.Satellite) error {
	satrec, err := json.Marshal(sat.Satrec)
	if err != nil {
		return fmt.Errorf("encode satrec: %w", err)
	}
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET
		  name=$2, tle_line_one=$3, tle_line_two=$4, satrec=$5, updated_at=$6
		WHERE id=$1
		RETURNING created_at, updated_at
	`, r.qt()), sat.ID, sat.Name, sat.TLE.LineOne, sat.TLE.LineTwo, satrec, r.now()).
		Scan(&sat.CreatedAt, &sat.UpdatedAt)
	if err != nil {
		return wrap("save", err)
	}
	return nil
}

func (r *Repo) RemoveByID(ctx context.Context, id string) (*domain.Satellite, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE id=$1
		RETURNING id, name, tle_line_one, tle_line_two, satrec, created_at, updated_at
	`, r.qt()), id)
	s, err := scanSatellite(row)
	if err != nil {
		return nil, wrap("remove", err)
	}
	return s, nil
}

func scanSatellite(row pgx.Row) (*domain.Satellite, error) {
	var (
		s      domain.Satellite
		satrec []byte
	)
	if err := row.Scan(&s.ID, &s.Name, &s.TLE.LineOne, &s.TLE.LineTwo, &satrec, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(satrec, &s.Satrec); err != nil {
		return nil, fmt.Errorf("decode satrec of %s: %w", s.ID, err)
	}
	s.CreatedAt, s.UpdatedAt = s.CreatedAt.UTC(), s.UpdatedAt.UTC()
	return &s, nil
}

const uniqueViolation = "23505"

func wrap(op string, err error) error {
	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
		pgErr   *pgconn.PgError
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicateID, err)
	case errors.As(err, &connErr), errors.As(err, &netErr), pgconn.Timeout(err), pgconn.SafeToRetry(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
