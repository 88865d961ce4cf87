package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/TemirB/satrec-registry/internal/cache"
	"github.com/TemirB/satrec-registry/internal/domain"
	"github.com/TemirB/satrec-registry/internal/memstore"
	"github.com/TemirB/satrec-registry/internal/observability"
	"github.com/TemirB/satrec-registry/internal/orbit"
)

const (
	starlinkL1 = "1 44713U 19074A   24100.50000000  .00001000  00000-0  10000-4 0  9998"
	starlinkL2 = "2 44713  53.0000 200.0000 0001500  90.0000 270.0000 15.06000000    07"
)

type fixture struct {
	svc     *Service
	store   *memstore.Store
	deriver *orbit.Deriver
	metrics *observability.Inmem
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	d, err := orbit.NewDeriver(orbit.GravityWGS72)
	require.NoError(t, err)
	c, err := cache.New(16)
	require.NoError(t, err)
	st := memstore.New()
	m := observability.NewInmem(64)

	return fixture{
		svc:     NewService(d, c, st, zaptest.NewLogger(t), m, WithBulkWorkers(2)),
		store:   st,
		deriver: d,
		metrics: m,
	}
}

// requireCoherent checks that every stored record carries the satrec of its
// own TLE pair.
func requireCoherent(t *testing.T, f fixture) {
	t.Helper()
	sats, err := f.store.FindAll(context.Background())
	require.NoError(t, err)
	for _, s := range sats {
		want, err := f.deriver.Derive(s.TLE.LineOne, s.TLE.LineTwo)
		require.NoError(t, err)
		require.Equal(t, want, s.Satrec, "satellite %s", s.ID)
	}
}

func TestCreateIsCoherent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sat, err := f.svc.Create(ctx, domain.NewSatellite{Name: "ISS", LineOne: l1, LineTwo: l2})
	require.NoError(t, err)
	require.NotEmpty(t, sat.ID)
	requireCoherent(t, f)

	got, err := f.svc.GetByID(ctx, sat.ID)
	require.NoError(t, err)
	require.Equal(t, sat.Satrec, got.Satrec)
}

func TestMalformedCreateStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, domain.NewSatellite{Name: "junk", LineOne: "not a tle", LineTwo: l2})
	require.ErrorIs(t, err, domain.ErrMalformedTLE)
	require.Zero(t, f.store.Len())
}

func TestBulkCreateAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	good := []domain.NewSatellite{
		{Name: "ISS", LineOne: l1, LineTwo: l2},
		{Name: "ISS 2019", LineOne: l1b, LineTwo: l2b},
		{Name: "STARLINK-1007", LineOne: starlinkL1, LineTwo: starlinkL2},
	}

	res, err := f.svc.BulkCreate(ctx, good)
	require.NoError(t, err)
	require.Equal(t, 3, res.Inserted)
	require.Len(t, res.IDs, 3)
	requireCoherent(t, f)

	for i, id := range res.IDs {
		got, err := f.svc.GetByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, good[i].Name, got.Name)
	}

	bad := append([]domain.NewSatellite{}, good...)
	bad[1].LineTwo = l2b[:68] + "0"
	_, err = f.svc.BulkCreate(ctx, bad)
	require.ErrorIs(t, err, domain.ErrMalformedTLE)
	require.Equal(t, 3, f.store.Len())
}

func TestUpdateKeepsCoherence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sat, err := f.svc.Create(ctx, domain.NewSatellite{Name: "ISS", LineOne: l1, LineTwo: l2})
	require.NoError(t, err)
	before := sat.Satrec

	newName := "ISS (ZARYA)"
	renamed, err := f.svc.UpdateByID(ctx, sat.ID, domain.Patch{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, newName, renamed.Name)
	require.Equal(t, before, renamed.Satrec)

	line1, line2 := l1b, l2b
	moved, err := f.svc.UpdateByID(ctx, sat.ID, domain.Patch{LineOne: &line1, LineTwo: &line2})
	require.NoError(t, err)
	require.NotEqual(t, before, moved.Satrec)
	requireCoherent(t, f)

	// Cache must serve the new state, not the old one.
	got, err := f.svc.GetByID(ctx, sat.ID)
	require.NoError(t, err)
	require.Equal(t, moved.Satrec, got.Satrec)

	broken := "1 25544U 98067A   19156.50900463  .00003075  00000-0  59442-4 0  9990"
	_, err = f.svc.UpdateByID(ctx, sat.ID, domain.Patch{LineOne: &broken})
	require.ErrorIs(t, err, domain.ErrMalformedTLE)

	got, err = f.svc.GetByID(ctx, sat.ID)
	require.NoError(t, err)
	require.Equal(t, moved.TLE, got.TLE)
	requireCoherent(t, f)
}

func TestUpdateSingleLineMismatchIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sat, err := f.svc.Create(ctx, domain.NewSatellite{Name: "ISS", LineOne: l1, LineTwo: l2})
	require.NoError(t, err)

	// Line one of another object does not pair with the stored line two.
	other := starlinkL1
	_, err = f.svc.UpdateByID(ctx, sat.ID, domain.Patch{LineOne: &other})
	require.ErrorIs(t, err, domain.ErrMalformedTLE)
	requireCoherent(t, f)
}

func TestDeleteThenLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sat, err := f.svc.Create(ctx, domain.NewSatellite{Name: "ISS", LineOne: l1, LineTwo: l2})
	require.NoError(t, err)

	removed, err := f.svc.DeleteByID(ctx, sat.ID)
	require.NoError(t, err)
	require.Equal(t, sat.ID, removed.ID)
	require.Equal(t, sat.Satrec, removed.Satrec)

	_, err = f.svc.GetByID(ctx, sat.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.UpdateByID(ctx, sat.ID, domain.Patch{})
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.DeleteByID(ctx, sat.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListReturnsStoredRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sats, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, sats)

	_, err = f.svc.Create(ctx, domain.NewSatellite{Name: "ISS", LineOne: l1, LineTwo: l2})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.NewSatellite{Name: "STARLINK-1007", LineOne: starlinkL1, LineTwo: starlinkL2})
	require.NoError(t, err)

	sats, err = f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, sats, 2)
	require.Equal(t, "ISS", sats[0].Name)
	require.Equal(t, "STARLINK-1007", sats[1].Name)
}

func TestMetricsFollowWritePath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sat, err := f.svc.Create(ctx, domain.NewSatellite{Name: "ISS", LineOne: l1, LineTwo: l2})
	require.NoError(t, err)
	require.Equal(t, []string{"derive", "write"}, f.metrics.Last())

	// A rejected batch is derived but never written.
	_, err = f.svc.BulkCreate(ctx, []domain.NewSatellite{{Name: "junk", LineOne: "x", LineTwo: "y"}})
	require.Error(t, err)
	require.Equal(t, []string{"derive", "write", "derive"}, f.metrics.Last())

	// Create cached the record, so the first read is a hit.
	_, err = f.svc.GetByID(ctx, sat.ID)
	require.NoError(t, err)
	hits, misses := f.metrics.CacheTotals()
	require.Equal(t, 1, hits)
	require.Zero(t, misses)
}
