package scheduler

import (
	"log"
	"sort"
	"sync"
	"time"
)

// Job describes one pending callback.
type Job struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

// Registry maps job ids to pending timers. It is last-write-wins per id:
// scheduling an id that already has a timer replaces it. The registry is
// in-memory only; callers re-derive jobs from persisted deadlines at startup.
type Registry struct {
	mu      sync.Mutex
	pending map[string]*entry
}

type entry struct {
	at    time.Time
	timer *time.Timer
}

func New() *Registry {
	return &Registry{pending: make(map[string]*entry)}
}

// Schedule registers fn to run at the given instant. A deadline at or before
// now runs fn synchronously before Schedule returns, so a restart that slept
// through a deadline still executes the transition instead of dropping it.
func (r *Registry) Schedule(id string, at time.Time, fn func()) {
	r.mu.Lock()
	r.cancelLocked(id)

	if !at.After(time.Now()) {
		r.mu.Unlock()
		r.fire(id, fn)
		return
	}

	e := &entry{at: at}
	e.timer = time.AfterFunc(time.Until(at), func() {
		r.mu.Lock()
		if cur, ok := r.pending[id]; ok && cur == e {
			delete(r.pending, id)
		}
		r.mu.Unlock()
		r.fire(id, fn)
	})
	r.pending[id] = e
	r.mu.Unlock()
}

// Cancel stops and forgets the pending job. Unknown ids are a no-op.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	r.cancelLocked(id)
	r.mu.Unlock()
}

// Reschedule moves an existing job to a new instant, or schedules it fresh.
func (r *Registry) Reschedule(id string, at time.Time, fn func()) {
	r.Cancel(id)
	r.Schedule(id, at, fn)
}

// Jobs lists pending jobs ordered by deadline.
func (r *Registry) Jobs() []Job {
	r.mu.Lock()
	jobs := make([]Job, 0, len(r.pending))
	for id, e := range r.pending {
		jobs = append(jobs, Job{ID: id, At: e.at})
	}
	r.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].At.Equal(jobs[j].At) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].At.Before(jobs[j].At)
	})
	return jobs
}

// fire is the single execution path for both timer-driven and past-due jobs.
// A panicking callback must not take down the process or other timers.
func (r *Registry) fire(id string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("🔥 Scheduled job %s panicked: %v", id, rec)
		}
	}()
	fn()
}

func (r *Registry) cancelLocked(id string) {
	if e, ok := r.pending[id]; ok {
		e.timer.Stop()
		delete(r.pending, id)
	}
}
