package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/metrics"
	"routegraph/dashboard/internal/models"
)

func newLocationStore(backend *mockCollectionBackend[models.Location]) *CollectionStore[models.Location] {
	return NewCollectionStore[models.Location](models.EntityLocation, backend, constants.MsgFetchLocationsFailed, nil)
}

func TestCollectionStore_FetchAllReplaces(t *testing.T) {
	calls := 0
	backend := &mockCollectionBackend[models.Location]{
		listFunc: func(ctx context.Context) ([]models.Location, error) {
			calls++
			if calls == 1 {
				return locations(1, 2, 3), nil
			}
			return locations(4), nil
		},
	}
	s := newLocationStore(backend)
	assert.Equal(t, models.StatusIdle, s.Status())

	require.NoError(t, s.FetchAll(context.Background()))
	require.NoError(t, s.FetchAll(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, models.StatusSucceeded, snap.Status)
	assert.Equal(t, []int64{4}, ids(snap.Items))
}

func TestCollectionStore_FetchAllFailureKeepsMessage(t *testing.T) {
	backend := &mockCollectionBackend[models.Location]{
		listFunc: func(ctx context.Context) ([]models.Location, error) {
			return nil, httpError(500, "")
		},
	}
	s := newLocationStore(backend)

	err := s.FetchAll(context.Background())

	require.Error(t, err)
	snap := s.Snapshot()
	assert.Equal(t, models.StatusFailed, snap.Status)
	assert.Equal(t, constants.GetErrorMessage(constants.ErrCodeServerError), snap.Error)
}

func TestCollectionStore_FetchThenPushDelete(t *testing.T) {
	backend := &mockCollectionBackend[models.Location]{
		listFunc: func(ctx context.Context) ([]models.Location, error) { return locations(1, 2, 3), nil },
	}
	s := newLocationStore(backend)
	require.NoError(t, s.FetchAll(context.Background()))

	ev := locEvent(models.ActionDelete, 2, 0)
	ev.Origin = models.OriginPush
	s.ApplyEvent(ev)

	assert.Equal(t, []int64{1, 3}, ids(s.Snapshot().Items))
}

func TestCollectionStore_MutationFailureLeavesState(t *testing.T) {
	backend := &mockCollectionBackend[models.Location]{
		listFunc: func(ctx context.Context) ([]models.Location, error) { return locations(1), nil },
		createFunc: func(ctx context.Context, body models.Location) (models.Location, error) {
			return models.Location{}, httpError(400, "y: must not be null")
		},
		updateFunc: func(ctx context.Context, id int64, body models.Location) (models.Location, error) {
			return models.Location{}, httpError(404, "")
		},
		deleteFunc: func(ctx context.Context, id int64) error { return httpError(500, "") },
	}
	s := newLocationStore(backend)
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.Snapshot()

	_, err := s.Create(context.Background(), models.Location{})
	assert.Error(t, err)
	_, err = s.Update(context.Background(), 1, models.Location{})
	assert.Error(t, err)
	assert.Error(t, s.Delete(context.Background(), 1))

	assert.Equal(t, before, s.Snapshot())
}

func TestCollectionStore_LocalAndEchoedMutations(t *testing.T) {
	backend := &mockCollectionBackend[models.Location]{
		listFunc: func(ctx context.Context) ([]models.Location, error) { return locations(1, 2), nil },
		createFunc: func(ctx context.Context, body models.Location) (models.Location, error) {
			body.ID = models.IDPtr(3)
			return body, nil
		},
		updateFunc: func(ctx context.Context, id int64, body models.Location) (models.Location, error) {
			body.ID = models.IDPtr(id)
			return body, nil
		},
		deleteFunc: func(ctx context.Context, id int64) error { return nil },
	}
	s := newLocationStore(backend)
	require.NoError(t, s.FetchAll(context.Background()))

	created, err := s.Create(context.Background(), models.Location{Y: 30})
	require.NoError(t, err)
	echo := models.ChangeEvent[models.Location]{Entity: models.EntityLocation, Action: models.ActionCreate, Data: created, Origin: models.OriginPush}
	s.ApplyEvent(echo)
	assert.Equal(t, []int64{3, 1, 2}, ids(s.Snapshot().Items))

	// concurrently deleted elsewhere: the update reinserts instead of duplicating
	s.ApplyEvent(locEvent(models.ActionDelete, 2, 0))
	_, err = s.Update(context.Background(), 2, models.Location{Y: 21})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, ids(s.Snapshot().Items))

	require.NoError(t, s.Delete(context.Background(), 3))
	s.ApplyEvent(locEvent(models.ActionDelete, 3, 0))
	assert.Equal(t, []int64{2, 1}, ids(s.Snapshot().Items))

	got, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, int64(21), got.Y)
}

func TestCollectionStore_DiscardsStaleFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	backend := &mockCollectionBackend[models.Location]{
		listFunc: func(ctx context.Context) ([]models.Location, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				close(started)
				<-release
				return locations(1), nil
			}
			return locations(2), nil
		},
	}
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	s := NewCollectionStore[models.Location](models.EntityLocation, backend, constants.MsgFetchLocationsFailed, reg)

	done := make(chan error)
	go func() { done <- s.FetchAll(context.Background()) }()
	<-started

	require.NoError(t, s.FetchAll(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []int64{2}, ids(s.Snapshot().Items))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.StaleResponses.WithLabelValues("location")))
}

func TestCollectionStore_FetchErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	backend := &mockCollectionBackend[models.Location]{
		listFunc: func(ctx context.Context) ([]models.Location, error) { return nil, boom },
	}
	s := newLocationStore(backend)

	assert.ErrorIs(t, s.FetchAll(context.Background()), boom)
	assert.Equal(t, constants.MsgFetchLocationsFailed, s.Snapshot().Error)
}
