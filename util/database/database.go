// Package database holds the shared Mongo handle. Connection is lazy:
// the first caller pays the dial cost, concurrent callers wait on the
// same in-flight attempt, and once an attempt has failed request-time
// callers fail fast while a detached loop keeps retrying.
package database

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Luis24M/biblioinfo-back/util/apperr"
)

const (
	dialAttempts   = 3
	dialTimeout    = 10 * time.Second
	backoffBase    = 500 * time.Millisecond
	reconnectEvery = 5 * time.Second
)

type DB struct {
	uri  string
	name string
	log  *slog.Logger

	mu           sync.Mutex
	client       *mongo.Client
	inflight     chan struct{}
	lastErr      error
	reconnecting bool

	dial func() error // swapped out in tests
}

func New(uri, name string, log *slog.Logger) *DB {
	d := &DB{uri: uri, name: name, log: log}
	d.dial = d.dialOnce
	return d
}

// Connect makes an eager connection attempt. Failure is not fatal to
// the caller: the handle keeps retrying in the background and requests
// fail fast until it succeeds.
func (d *DB) Connect(ctx context.Context) error {
	_, err := d.ensure(ctx)
	return err
}

// Collection resolves a collection on the connected client, failing
// fast with an Unavailable error when the store is unreachable.
func (d *DB) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	cl, err := d.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return cl.Database(d.name).Collection(name), nil
}

func (d *DB) Close(ctx context.Context) error {
	d.mu.Lock()
	cl := d.client
	d.client = nil
	d.mu.Unlock()
	if cl == nil {
		return nil
	}
	return cl.Disconnect(ctx)
}

func (d *DB) ensure(ctx context.Context) (*mongo.Client, error) {
	d.mu.Lock()
	if d.client != nil {
		cl := d.client
		d.mu.Unlock()
		return cl, nil
	}
	if d.inflight == nil {
		if d.lastErr != nil {
			// A previous attempt already failed; the reconnect loop owns
			// further retries and requests must not hang on it.
			err := d.lastErr
			d.mu.Unlock()
			return nil, apperr.Wrap(apperr.Unavailable, "database unreachable", err)
		}
		d.inflight = make(chan struct{})
		go d.connect(d.inflight)
	}
	ch := d.inflight
	d.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
		return nil, apperr.Wrap(apperr.Unavailable, "database connect wait canceled", ctx.Err())
	}

	d.mu.Lock()
	cl, err := d.client, d.lastErr
	d.mu.Unlock()
	if cl == nil {
		return nil, apperr.Wrap(apperr.Unavailable, "database unreachable", err)
	}
	return cl, nil
}

// connect runs the bounded dial loop for one single-flight attempt and
// wakes every waiter when it settles.
func (d *DB) connect(ch chan struct{}) {
	var err error
	for i := 0; i < dialAttempts; i++ {
		if i > 0 {
			time.Sleep(backoffBase << (i - 1))
		}
		if err = d.dial(); err == nil {
			break
		}
		d.log.Warn("mongo dial failed", "attempt", i+1, "err", err)
	}

	d.mu.Lock()
	d.lastErr = err
	d.inflight = nil
	startLoop := err != nil && !d.reconnecting
	if startLoop {
		d.reconnecting = true
	}
	d.mu.Unlock()
	close(ch)

	if startLoop {
		go d.reconnectLoop()
	}
}

// reconnectLoop retries in the background after the bounded dial gave
// up. Detached from request handling, best-effort.
func (d *DB) reconnectLoop() {
	for {
		time.Sleep(reconnectEvery)

		d.mu.Lock()
		if d.client != nil {
			d.reconnecting = false
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()

		if err := d.dial(); err != nil {
			d.log.Warn("mongo reconnect failed", "err", err)
			continue
		}

		d.mu.Lock()
		d.lastErr = nil
		d.reconnecting = false
		d.mu.Unlock()
		return
	}
}

func (d *DB) dialOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(d.uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetConnectTimeout(dialTimeout)

	cl, err := mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	if err := cl.Ping(ctx, nil); err != nil {
		_ = cl.Disconnect(context.Background())
		return err
	}

	d.mu.Lock()
	d.client = cl
	d.lastErr = nil
	d.mu.Unlock()

	d.log.Info("connected to MongoDB", "db", d.name)
	return nil
}
