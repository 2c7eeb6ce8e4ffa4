package worker

import (
	"context"
	"errors"
	"sync"
)

// Worker is a unit of work the Manager runs.
type Worker interface {
	Start(ctx context.Context) error
}

// Manager starts a set of workers side by side.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

// Start runs every worker concurrently and waits until all of them have
// returned. A failing worker does not stop the others; their errors are
// joined in worker order.
func (m *Manager) Start(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, len(m.workers))
	for i, w := range m.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = w.Start(ctx)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}
