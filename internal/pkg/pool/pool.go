package pool

import (
	"sync"
	"sync/atomic"
)

type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		jobs: make(chan func(), n*2),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for f := range p.jobs {
				if f != nil {
					f()
				}
			}
		}()
	}
	return p
}

func (p *Pool) Submit(f func()) {
	p.jobs <- f
}

func (p *Pool) Close() {
	close(p.jobs)
}

func (p *Pool) Wait() {
	p.wg.Wait()
}

// ForEach runs fn for every index in [0, n) on a pool of the given size.
// Once a call fails the remaining indexes are skipped; the returned error is
// the one with the lowest index among the calls that ran.
func ForEach(workers, n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}

	errs := make([]error, n)
	var failed atomic.Bool

	p := New(workers)
	for i := 0; i < n; i++ {
		if failed.Load() {
			break
		}
		i := i
		p.Submit(func() {
			if failed.Load() {
				return
			}
			if err := fn(i); err != nil {
				errs[i] = err
				failed.Store(true)
			}
		})
	}
	p.Close()
	p.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
