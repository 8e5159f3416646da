package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pedrinsang/classboard/app/calendar"
	"github.com/pedrinsang/classboard/app/cfg"
)

var (
	ErrTaskRunning = errors.New("task of this type is already queued or running")
	ErrQueueFull   = errors.New("task queue is full")
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type JobStats struct {
	Type          TaskType   `json:"type"`
	Running       bool       `json:"running"`
	Runs          int        `json:"runs"`
	Failures      int        `json:"failures"`
	LastStartedAt *time.Time `json:"last_started_at,omitempty"`
	LastDuration  string     `json:"last_duration,omitempty"`
	LastCount     int        `json:"last_count"`
	LastError     string     `json:"last_error,omitempty"`
}

// Scheduler runs the daily checks once per local day after ChecksHour and the
// news scraper every ScrapeInterval. At most one task per type is queued or
// running at any time.
type Scheduler struct {
	factory        *Factory
	location       *time.Location
	interval       time.Duration
	checksHour     int
	scrapeInterval time.Duration
	workerCount    int
	now            func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface

	mu             sync.Mutex
	inFlight       map[TaskType]bool
	lastChecksDate string
	lastScrapeAt   time.Time
	stats          map[TaskType]*JobStats
}

func NewScheduler(factory *Factory, c *cfg.Cfg) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		factory:        factory,
		location:       c.Location,
		interval:       time.Duration(c.SchedulerInterval) * time.Second,
		checksHour:     c.ChecksHour,
		scrapeInterval: time.Duration(c.ScrapeInterval) * time.Second,
		workerCount:    c.WorkerCount,
		now:            time.Now,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 8),
		inFlight:       make(map[TaskType]bool),
		stats: map[TaskType]*JobStats{
			TaskTypeDailyChecks: {Type: TaskTypeDailyChecks},
			TaskTypeScrapeNews:  {Type: TaskTypeScrapeNews},
		},
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Trigger queues a run outside the schedule.
func (s *Scheduler) Trigger(taskType TaskType) error {
	return s.enqueue(taskType)
}

func (s *Scheduler) Stats() []JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]JobStats, 0, len(s.stats))
	for _, taskType := range []TaskType{TaskTypeDailyChecks, TaskTypeScrapeNews} {
		st := *s.stats[taskType]
		st.Running = s.inFlight[taskType]
		result = append(result, st)
	}
	return result
}

func (s *Scheduler) enqueueDueTasks() {
	now := s.now()

	s.mu.Lock()
	checksDue := dailyChecksDue(now, s.location, s.checksHour, s.lastChecksDate)
	scrapeDue := intervalDue(now, s.lastScrapeAt, s.scrapeInterval)
	s.mu.Unlock()

	if checksDue {
		if err := s.enqueue(TaskTypeDailyChecks); err != nil {
			slog.Warn("Failed to enqueue task", "type", string(TaskTypeDailyChecks), "error", err)
		} else {
			s.mu.Lock()
			s.lastChecksDate = calendar.Today(now, s.location)
			s.mu.Unlock()
		}
	}

	if scrapeDue {
		if err := s.enqueue(TaskTypeScrapeNews); err != nil {
			slog.Warn("Failed to enqueue task", "type", string(TaskTypeScrapeNews), "error", err)
		} else {
			s.mu.Lock()
			s.lastScrapeAt = now
			s.mu.Unlock()
		}
	}
}

func (s *Scheduler) enqueue(taskType TaskType) error {
	task, err := s.factory.NewTask(taskType)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[taskType] {
		return ErrTaskRunning
	}

	select {
	case s.taskQueue <- task:
		s.inFlight[taskType] = true
		slog.Debug("Task enqueued", "type", string(taskType), "id", task.GetID())
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := Run(taskCtx, task)
	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "error", err)
	}

	s.finish(task, err)
}

func (s *Scheduler) finish(task TaskInterface, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taskType := task.GetType()
	delete(s.inFlight, taskType)

	st := s.stats[taskType]
	duration := task.GetDuration()
	startedAt := time.Now().Add(-duration)

	st.Runs++
	st.LastStartedAt = &startedAt
	st.LastDuration = duration.String()
	st.LastCount = task.GetCount()
	st.LastError = ""
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	}
}

// dailyChecksDue reports whether the daily checks should start: the local hour
// has reached checksHour and they have not been started today.
func dailyChecksDue(now time.Time, loc *time.Location, checksHour int, lastDate string) bool {
	if now.In(loc).Hour() < checksHour {
		return false
	}
	return calendar.Today(now, loc) != lastDate
}

func intervalDue(now, last time.Time, interval time.Duration) bool {
	return last.IsZero() || now.Sub(last) >= interval
}
