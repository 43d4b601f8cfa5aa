package processor

import (
	"context"
	"sync"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	result *ProcessResult
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (*ProcessResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{name: name, args: args})
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
