package async

import (
	"sync"

	"go.uber.org/zap"

	sync_ "github.com/alanbriolat/video-resolver/internal/sync"
)

// Pool runs jobs on at most maxWorkers goroutines. Workers are started on demand and exit as soon as the queue is
// empty, so an idle Pool holds no goroutines.
type Pool struct {
	mu         sync.Mutex
	queue      []func()
	active     int
	maxWorkers int
	idle       *sync_.Event
	log        *zap.SugaredLogger
}

func NewPool(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	idle := sync_.NewEvent()
	idle.Set()
	return &Pool{
		maxWorkers: maxWorkers,
		idle:       idle,
		log:        zap.S().Named("pool"),
	}
}

// Run queues a job, starting a new worker if fewer than maxWorkers are running. It never blocks.
func (p *Pool) Run(job func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, job)
	p.idle.Clear()
	if p.active < p.maxWorkers {
		p.active++
		go p.work()
	}
}

// Active returns the number of running workers.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Idle returns a channel that is closed once nothing is queued or running, which may be immediately.
func (p *Pool) Idle() <-chan struct{} {
	return p.idle.Wait()
}

// Pending returns the number of queued jobs not yet picked up by a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Pool) work() {
	for {
		job, ok := p.next()
		if !ok {
			return
		}
		p.run(job)
	}
}

// next pops a job, or retires the worker if there are none; both happen under the same lock as Run, so a job is
// never queued without a worker to pick it up.
func (p *Pool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		p.active--
		if p.active == 0 {
			p.idle.Set()
		}
		return nil, false
	}
	job := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return job, true
}

func (p *Pool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("job panicked", "panic", r)
		}
	}()
	job()
}
