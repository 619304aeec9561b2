package diagnostics

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sarchlab/propjson/hooking"
	"github.com/sarchlab/propjson/serialization"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
)

// backend stores batches of entries.
type backend interface {
	createTable(ctx context.Context) error
	insert(ctx context.Context, entries []Entry) error
	close() error
}

// Recorder is a hook that buffers diagnostics and writes them to a database
// in batches. Each Recorder writes under its own session id.
type Recorder struct {
	mu sync.Mutex

	backend   backend
	logger    *zap.Logger
	session   string
	batchSize int
	seq       int64
	entries   []Entry
	now       func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(r *Recorder)

// WithBatchSize sets how many entries are buffered before a write.
func WithBatchSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithSession replaces the generated session id.
func WithSession(session string) RecorderOption {
	return func(r *Recorder) {
		r.session = session
	}
}

// WithRecorderLogger sets where write failures are logged.
func WithRecorderLogger(logger *zap.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func newRecorder(b backend, opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{
		backend:   b,
		logger:    zap.NewNop(),
		session:   xid.New().String(),
		batchSize: 1000,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	err := b.createTable(context.Background())
	if err != nil {
		return nil, err
	}

	atexit.Register(func() {
		if err := r.Flush(); err != nil {
			r.logger.Error("flush diagnostics at exit", zap.Error(err))
		}
	})

	return r, nil
}

// Session returns the session id entries are written under.
func (r *Recorder) Session() string {
	return r.session
}

// Func buffers the diagnostic carried by ctx.
func (r *Recorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != serialization.HookPosDiagnostic {
		return
	}

	d, ok := ctx.Item.(serialization.Diagnostic)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.entries = append(r.entries, entryOf(r.session, r.seq, r.now(), d))

	if len(r.entries) >= r.batchSize {
		if err := r.flushLocked(); err != nil {
			r.logger.Error("write diagnostics", zap.Error(err))
		}
	}
}

// Flush writes all buffered entries.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.entries) == 0 {
		return nil
	}

	err := r.backend.insert(context.Background(), r.entries)
	if err != nil {
		return err
	}

	r.entries = nil

	return nil
}

// Close flushes and releases the database.
func (r *Recorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}

	return r.backend.close()
}
