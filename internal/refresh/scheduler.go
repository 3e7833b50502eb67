package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// minTick floors the scheduler tick to prevent CPU thrashing.
const minTick = time.Second

// Job is one unit of periodic work, typically a board update.
type Job struct {
	// Name identifies the job in results and logs. Names must be unique
	// within a scheduler.
	Name string

	// Interval overrides the scheduler's default interval when positive.
	Interval time.Duration

	// Run performs the work. It should return promptly once ctx is done.
	Run func(ctx context.Context) error
}

// Result is the outcome of one job run.
type Result struct {
	Job      string
	Err      error
	Duration time.Duration
	RanAt    time.Time
}

// Scheduler runs jobs periodically with a bounded worker pool.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	jobs           []Job
	interval       time.Duration
	maxConcurrency int
	results        chan Result
	logger         *slog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once

	lastRunAt    map[string]time.Time
	baseInterval time.Duration
}

// NewScheduler creates a [Scheduler] for jobs. Jobs without an interval use
// interval. At most maxConcurrency jobs run at once.
func NewScheduler(jobs []Job, interval time.Duration, maxConcurrency int, logger *slog.Logger) *Scheduler {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Scheduler{
		jobs:           jobs,
		interval:       interval,
		maxConcurrency: maxConcurrency,
		results:        make(chan Result, len(jobs)),
		logger:         logger,
	}
}

// Results emits one [Result] per job run. The channel is closed when the
// scheduler stops; consumers should drain it.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// calculateBaseInterval returns the GCD of all job intervals.
func (s *Scheduler) calculateBaseInterval() time.Duration {
	if len(s.jobs) == 0 {
		return s.interval
	}

	result := s.intervalOf(s.jobs[0])
	for _, j := range s.jobs[1:] {
		result = gcdDuration(result, s.intervalOf(j))
	}

	if result < minTick {
		result = minTick
	}
	return result
}

func (s *Scheduler) intervalOf(j Job) time.Duration {
	if j.Interval > 0 {
		return j.Interval
	}
	return s.interval
}

func gcdDuration(a, b time.Duration) time.Duration {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Start runs every job once, then keeps running due jobs until [Scheduler.Stop]
// is called or ctx is cancelled. Start does not block.
//
// Start is idempotent. If Stop was called first, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.lastRunAt = make(map[string]time.Time, len(s.jobs))
	s.baseInterval = s.calculateBaseInterval()

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		s.runDueJobs(runCtx, true)

		ticker := time.NewTicker(s.baseInterval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.runDueJobs(runCtx, false)
			}
		}
	}()
}

// Stop cancels the scheduler and waits for running jobs to finish. The
// results channel is closed on return. Stop is idempotent and safe to call
// before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.closeOnce.Do(func() { close(s.results) })
}

// runDueJobs runs jobs whose interval has elapsed, or all of them when
// immediate is set. lastRunAt is stamped when a run starts.
func (s *Scheduler) runDueJobs(ctx context.Context, immediate bool) {
	now := time.Now()
	due := make([]Job, 0, len(s.jobs))

	s.mu.Lock()
	for _, j := range s.jobs {
		last, ok := s.lastRunAt[j.Name]
		if immediate || !ok || now.Sub(last) >= s.intervalOf(j) {
			due = append(due, j)
			s.lastRunAt[j.Name] = now
		}
	}
	s.mu.Unlock()

	if len(due) == 0 {
		return
	}
	s.runJobs(ctx, due)
}

func (s *Scheduler) runJobs(ctx context.Context, jobs []Job) {
	queue := make(chan Job, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < s.maxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				result := s.runJob(ctx, j)
				select {
				case s.results <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for _, j := range jobs {
		select {
		case queue <- j:
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return
		}
	}
	close(queue)
	wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, j Job) Result {
	start := time.Now()
	err := s.safeRun(ctx, j)
	return Result{
		Job:      j.Name,
		Err:      err,
		Duration: time.Since(start),
		RanAt:    start,
	}
}

// safeRun calls the job with panic recovery. A panic is logged with its stack
// under a correlation id, and the returned error carries the same id.
func (s *Scheduler) safeRun(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("job panic",
				"job", j.Name,
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("job panic (correlation_id: %s)", correlationID)
		}
	}()
	if j.Run == nil {
		return nil
	}
	return j.Run(ctx)
}
