package eventloop

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by explicit calls instead of wall time. It is
// used by tests to step reflow passes and animation ticks deterministically.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers []manualTimer
	seq    int
}

type manualTimer struct {
	at   time.Time
	seq  int
	task func()
}

var _ Scheduler = (*Manual)(nil)

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Post queues task until the next RunPending or Advance.
func (m *Manual) Post(task func()) {
	if task == nil {
		return
	}
	m.mu.Lock()
	m.queue = append(m.queue, task)
	m.mu.Unlock()
}

// After registers task to fire once the clock has moved d past now.
func (m *Manual) After(d time.Duration, task func()) {
	if task == nil {
		return
	}
	m.mu.Lock()
	m.seq++
	m.timers = append(m.timers, manualTimer{at: m.now.Add(d), seq: m.seq, task: task})
	m.mu.Unlock()
}

// Now returns the virtual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// RunPending runs queued tasks, including ones they post, until the queue is
// empty. It returns how many tasks ran.
func (m *Manual) RunPending() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return ran
		}
		task := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		task()
		ran++
	}
}

// Advance drains the queue, then moves the clock forward by d, firing due
// timers in order and draining the queue after each one.
func (m *Manual) Advance(d time.Duration) {
	m.RunPending()

	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		idx := m.nextDueLocked(target)
		if idx < 0 {
			m.now = target
			m.mu.Unlock()
			m.RunPending()
			return
		}
		timer := m.timers[idx]
		m.timers = append(m.timers[:idx], m.timers[idx+1:]...)
		m.now = timer.at
		m.mu.Unlock()

		timer.task()
		m.RunPending()
	}
}

func (m *Manual) nextDueLocked(target time.Time) int {
	if len(m.timers) == 0 {
		return -1
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at.Equal(m.timers[j].at) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].at.Before(m.timers[j].at)
	})
	if m.timers[0].at.After(target) {
		return -1
	}
	return 0
}

// Pending returns the number of queued tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// PendingTimers returns the number of timers that have not fired yet.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
