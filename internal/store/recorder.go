package store

import (
	"context"
	"sync"
	"time"

	"github.com/footprint-tools/comfort/internal/domain"
	"github.com/footprint-tools/comfort/internal/events"
	"github.com/footprint-tools/comfort/internal/log"
)

// Recorder writes every complete event of a bus into a Store.
type Recorder struct {
	store  *Store
	logger domain.Logger
	now    func() time.Time

	cancel context.CancelFunc
	done   sync.WaitGroup
}

// NewRecorder returns a recorder writing into s.
func NewRecorder(s *Store, logger domain.Logger) *Recorder {
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Recorder{store: s, logger: logger, now: time.Now}
}

// Start subscribes to the complete stream of bus. Publishing a complete
// event returns once its row is written.
func (r *Recorder) Start(ctx context.Context, bus *events.Bus) error {
	ctx, r.cancel = context.WithCancel(ctx)

	messages, err := bus.Stream(ctx, events.Complete)
	if err != nil {
		r.cancel()
		return err
	}

	r.done.Add(1)
	go func() {
		defer r.done.Done()
		for msg := range messages {
			r.record(ctx, msg.Payload)
			msg.Ack()
		}
	}()
	return nil
}

func (r *Recorder) record(ctx context.Context, payload []byte) {
	rec, err := events.Decode(payload)
	if err != nil {
		r.logger.Warn("store: undecodable complete event: %v", err)
		return
	}

	err = r.store.Insert(ctx, Invocation{
		InvocationID: rec.ID,
		Name:         rec.Name,
		Command:      rec.Command,
		Args:         rec.Args,
		ErrorCode:    rec.ErrorCode,
		Error:        rec.Error,
		ExitCode:     rec.ExitCode,
		Elapsed:      time.Duration(rec.ElapsedMS) * time.Millisecond,
		CreatedAt:    r.now(),
	})
	if err != nil {
		r.logger.Error("store: insert invocation failed: %v (command=%s, id=%s)", err, rec.Command, rec.ID)
	}
}

// Stop ends the subscription and waits for the pending write.
func (r *Recorder) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.done.Wait()
}
