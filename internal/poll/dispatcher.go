package poll

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/manthan/quizbot/internal/metrics"
)

// Publisher publishes a single question row.
type Publisher interface {
	Publish(ctx context.Context, row int, chatID int64) bool
}

// Dispatcher publishes batches of questions one at a time in the background.
// At most one job runs per batch id.
type Dispatcher struct {
	rows         RowStore
	publisher    Publisher
	defaultTimer time.Duration
	logger       *slog.Logger

	mu   sync.Mutex
	jobs map[string]*Job
	wg   sync.WaitGroup
}

func NewDispatcher(rows RowStore, publisher Publisher, defaultTimer time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		rows:         rows,
		publisher:    publisher,
		defaultTimer: defaultTimer,
		logger:       logger,
		jobs:         make(map[string]*Job),
	}
}

type JobResult struct {
	Published int
	Failed    int
	Cancelled bool
}

// Job is a handle to a running batch.
type Job struct {
	BatchID string
	ChatID  int64
	Total   int

	cancel context.CancelFunc
	done   chan struct{}
	result JobResult
}

// Cancel stops the job before its next publish.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) (JobResult, error) {
	select {
	case <-j.done:
		return j.result, nil
	case <-ctx.Done():
		return JobResult{}, ctx.Err()
	}
}

// NextBatch returns the batch id of the first unpublished question and the
// unpublished questions of that batch in row order.
func (d *Dispatcher) NextBatch(ctx context.Context) (string, []*Question, error) {
	questions, err := d.rows.Rows(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("read rows: %w", err)
	}

	var batchID string
	found := false
	for _, q := range questions {
		if !q.Published() && q.Publishable() {
			batchID = q.QuizID
			found = true
			break
		}
	}
	if !found {
		return "", nil, ErrNoPendingQuestions
	}

	var batch []*Question
	for _, q := range questions {
		if q.QuizID == batchID && !q.Published() && q.Publishable() {
			batch = append(batch, q)
		}
	}
	return batchID, batch, nil
}

// Start begins publishing the next pending batch to chatID and returns
// without waiting. If that batch is already being published, the running job
// is returned and started is false.
func (d *Dispatcher) Start(ctx context.Context, chatID int64) (job *Job, started bool, err error) {
	batchID, batch, err := d.NextBatch(ctx)
	if err != nil {
		return nil, false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if running, ok := d.jobs[batchID]; ok {
		return running, false, nil
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	job = &Job{
		BatchID: batchID,
		ChatID:  chatID,
		Total:   len(batch),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	d.jobs[batchID] = job
	metrics.BatchesStarted.Inc()

	d.logger.Info("batch started",
		"quiz_id", batchID,
		"chat_id", chatID,
		"questions", len(batch),
	)

	d.wg.Add(1)
	go d.run(jobCtx, job, batch)
	return job, true, nil
}

func (d *Dispatcher) run(ctx context.Context, job *Job, batch []*Question) {
	defer d.wg.Done()
	defer close(job.done)
	defer job.cancel()
	defer func() {
		d.mu.Lock()
		if d.jobs[job.BatchID] == job {
			delete(d.jobs, job.BatchID)
		}
		d.mu.Unlock()
	}()

	for i, q := range batch {
		if ctx.Err() != nil {
			job.result.Cancelled = true
			break
		}

		if d.publisher.Publish(ctx, q.Row, job.ChatID) {
			job.result.Published++
		} else {
			job.result.Failed++
		}

		if i == len(batch)-1 {
			break
		}

		timer := time.NewTimer(q.Timer(d.defaultTimer))
		select {
		case <-ctx.Done():
			timer.Stop()
			job.result.Cancelled = true
		case <-timer.C:
		}
		if job.result.Cancelled {
			break
		}
	}

	d.logger.Info("batch finished",
		"quiz_id", job.BatchID,
		"chat_id", job.ChatID,
		"published", job.result.Published,
		"failed", job.result.Failed,
		"cancelled", job.result.Cancelled,
	)
}

// Running returns the job publishing batchID, if any.
func (d *Dispatcher) Running(batchID string) (*Job, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	job, ok := d.jobs[batchID]
	return job, ok
}

// CancelChat cancels every job publishing into chatID and returns how many
// were cancelled.
func (d *Dispatcher) CancelChat(chatID int64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, job := range d.jobs {
		if job.ChatID == chatID {
			job.Cancel()
			n++
		}
	}
	return n
}

// Shutdown cancels all jobs and waits for them to stop.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	for _, job := range d.jobs {
		job.Cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}
