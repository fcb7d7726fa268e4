package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskQueued  TaskStatus = "queued"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

type TaskInfo struct {
	ID         string     `json:"id"`
	Status     TaskStatus `json:"status"`
	Input      string     `json:"input"`
	Result     string     `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type queuedTask struct {
	info   *TaskInfo
	ctx    context.Context
	cancel context.CancelFunc
}

var ErrQueueFull = fmt.Errorf("queue is full")

// TaskStore holds async agent executions: a bounded queue feeding
// worker goroutines, with per-task timeouts.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*queuedTask
	queue chan *queuedTask
}

func NewTaskStore(maxQueue int) *TaskStore {
	if maxQueue <= 0 {
		maxQueue = 16
	}
	return &TaskStore{
		tasks: make(map[string]*queuedTask),
		queue: make(chan *queuedTask, maxQueue),
	}
}

func (s *TaskStore) Enqueue(parent context.Context, input string, timeout time.Duration) (*TaskInfo, error) {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(parent, timeout)

	info := &TaskInfo{
		ID:        id,
		Status:    TaskQueued,
		Input:     input,
		CreatedAt: time.Now(),
	}
	qt := &queuedTask{info: info, ctx: ctx, cancel: cancel}

	s.mu.Lock()
	s.tasks[id] = qt
	s.mu.Unlock()

	select {
	case s.queue <- qt:
		cp := *info
		return &cp, nil
	default:
		cancel()
		s.mu.Lock()
		delete(s.tasks, id)
		s.mu.Unlock()
		return nil, ErrQueueFull
	}
}

func (s *TaskStore) Get(id string) (*TaskInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qt, ok := s.tasks[id]
	if !ok || qt == nil || qt.info == nil {
		return nil, false
	}
	cp := *qt.info
	return &cp, true
}

func (s *TaskStore) QueueLen() int {
	return len(s.queue)
}

func (s *TaskStore) update(id string, fn func(info *TaskInfo)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qt := s.tasks[id]
	if qt == nil || qt.info == nil {
		return
	}
	fn(qt.info)
}

// RunWorkers starts n goroutines draining the queue through execute
// until ctx is cancelled.
func (s *TaskStore) RunWorkers(ctx context.Context, n int, execute func(ctx context.Context, input string) (string, error)) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		go s.worker(ctx, execute)
	}
}

func (s *TaskStore) worker(ctx context.Context, execute func(ctx context.Context, input string) (string, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case qt := <-s.queue:
			s.runTask(qt, execute)
		}
	}
}

func (s *TaskStore) runTask(qt *queuedTask, execute func(ctx context.Context, input string) (string, error)) {
	defer qt.cancel()

	now := time.Now()
	s.update(qt.info.ID, func(info *TaskInfo) {
		info.Status = TaskRunning
		info.StartedAt = &now
	})

	result, err := execute(qt.ctx, qt.info.Input)

	finished := time.Now()
	s.update(qt.info.ID, func(info *TaskInfo) {
		info.FinishedAt = &finished
		if err != nil {
			info.Status = TaskFailed
			info.Error = err.Error()
			return
		}
		info.Status = TaskDone
		info.Result = result
	})
}
