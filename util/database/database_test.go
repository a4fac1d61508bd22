package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Luis24M/biblioinfo-back/util/apperr"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	return New("mongodb://127.0.0.1:1", "testdb", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// offlineClient builds a client handle without reaching any server.
func offlineClient(t *testing.T) *mongo.Client {
	t.Helper()
	cl, err := mongo.Connect(context.Background(),
		options.Client().ApplyURI("mongodb://127.0.0.1:1").SetServerSelectionTimeout(time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Disconnect(context.Background()) })
	return cl
}

func TestConnect_SingleFlight(t *testing.T) {
	d := newTestDB(t)
	cl := offlineClient(t)

	var dials int32
	d.dial = func() error {
		atomic.AddInt32(&dials, 1)
		time.Sleep(50 * time.Millisecond)
		d.mu.Lock()
		d.client = cl
		d.lastErr = nil
		d.mu.Unlock()
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = d.Connect(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestConnect_BoundedRetries(t *testing.T) {
	d := newTestDB(t)

	var dials int32
	d.dial = func() error {
		atomic.AddInt32(&dials, 1)
		return errors.New("connection refused")
	}

	err := d.Connect(context.Background())
	require.Error(t, err)
	require.Equal(t, apperr.Unavailable, apperr.KindOf(err))
	require.Equal(t, int32(dialAttempts), atomic.LoadInt32(&dials))
}

func TestCollection_FailsFastWhileDown(t *testing.T) {
	d := newTestDB(t)
	d.dial = func() error { return errors.New("connection refused") }

	_, err := d.Collection(context.Background(), "libros")
	require.Equal(t, apperr.Unavailable, apperr.KindOf(err))

	// once the bounded dial has settled, callers must not wait on the
	// background reconnect loop
	start := time.Now()
	_, err = d.Collection(context.Background(), "libros")
	require.Equal(t, apperr.Unavailable, apperr.KindOf(err))
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestConnect_WaitCanceled(t *testing.T) {
	d := newTestDB(t)

	release := make(chan struct{})
	d.dial = func() error {
		<-release
		return errors.New("late")
	}
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Connect(ctx)
	require.Equal(t, apperr.Unavailable, apperr.KindOf(err))
}

func TestCollection_UsesConnectedClient(t *testing.T) {
	d := newTestDB(t)
	cl := offlineClient(t)

	d.mu.Lock()
	d.client = cl
	d.mu.Unlock()

	coll, err := d.Collection(context.Background(), "libros")
	require.NoError(t, err)
	require.Equal(t, "libros", coll.Name())
	require.Equal(t, "testdb", coll.Database().Name())
}
