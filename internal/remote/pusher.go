package remote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dripline/dripline/internal/metrics"
	"github.com/dripline/dripline/internal/model"
)

// DefaultQueueSize bounds the outbound push queue. The queue is at-most-once:
// when full, new work is dropped and counted, never blocked on.
const DefaultQueueSize = 256

type taskKind int

const (
	taskLog taskKind = iota
	taskDelete
)

type task struct {
	kind        taskKind
	dateKey     string
	event       model.DrinkEvent
	remoteLogID string
}

// Queue is the one-way outbound sync queue. Local mutations enqueue work and
// return immediately; a single worker drains the queue in the background.
// Failures are terminal for that task — no retry loop, local state is
// authoritative for the session.
type Queue struct {
	client   *Client
	logger   *slog.Logger
	recorder metrics.Recorder

	tasks    chan task
	onLogged func(dateKey, drinkID, remoteLogID string)
}

// NewQueue creates a push queue over the given backend client.
func NewQueue(client *Client, logger *slog.Logger, recorder metrics.Recorder) *Queue {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Queue{
		client:   client,
		logger:   logger.With("component", "remote.queue"),
		recorder: recorder,
		tasks:    make(chan task, DefaultQueueSize),
	}
}

// SetOnLogged registers the completion callback invoked when a pushed drink
// is assigned its remote id. Must be called before Run.
func (q *Queue) SetOnLogged(fn func(dateKey, drinkID, remoteLogID string)) {
	q.onLogged = fn
}

// EnqueueLog schedules a drink event push. Never blocks; drops when the
// queue is full.
func (q *Queue) EnqueueLog(dateKey string, event model.DrinkEvent) {
	q.enqueue(task{kind: taskLog, dateKey: dateKey, event: event})
}

// EnqueueDelete schedules a remote log deletion. Never blocks.
func (q *Queue) EnqueueDelete(remoteLogID string) {
	q.enqueue(task{kind: taskDelete, remoteLogID: remoteLogID})
}

func (q *Queue) enqueue(t task) {
	if !q.client.Configured() {
		return
	}
	select {
	case q.tasks <- t:
		q.recorder.SetSyncQueueDepth(int64(len(q.tasks)))
	default:
		q.recorder.IncSyncPush("dropped")
		q.logger.Warn("sync queue full, dropping task", "kind", t.kind)
	}
}

// Run drains the queue until the context is cancelled.
func (q *Queue) Run(ctx context.Context) error {
	q.logger.Info("sync queue started")
	for {
		select {
		case <-ctx.Done():
			q.logger.Info("sync queue stopping", "pending", len(q.tasks))
			return ctx.Err()
		case t := <-q.tasks:
			q.recorder.SetSyncQueueDepth(int64(len(q.tasks)))
			q.process(ctx, t)
		}
	}
}

// process performs one push. Failures are logged and swallowed; the local
// copy stays authoritative.
func (q *Queue) process(ctx context.Context, t task) {
	start := time.Now()

	userID, err := q.client.EnsureBackendUser(ctx)
	if err != nil {
		q.recorder.IncSyncPush("failed")
		q.logBestEffortFailure("resolve backend user", err)
		return
	}

	switch t.kind {
	case taskLog:
		remoteLogID, err := q.client.LogHydration(ctx, userID, t.event)
		if err != nil {
			q.recorder.IncSyncPush("failed")
			q.logBestEffortFailure("push drink", err)
			return
		}
		if q.onLogged != nil {
			q.onLogged(t.dateKey, t.event.ID, remoteLogID)
		}
	case taskDelete:
		if err := q.client.DeleteHydrationLog(ctx, userID, t.remoteLogID); err != nil {
			q.recorder.IncSyncPush("failed")
			q.logBestEffortFailure("delete remote drink", err)
			return
		}
	}

	q.recorder.IncSyncPush("success")
	q.recorder.ObserveSyncPushDuration(time.Since(start))
}

func (q *Queue) logBestEffortFailure(op string, err error) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		// Local-only mode, nothing to report.
	case errors.Is(err, ErrAuthInvalid):
		q.logger.Warn("sync skipped, session invalid", "op", op)
	default:
		q.logger.Warn("best-effort sync failed", "op", op, "error", err)
	}
}
