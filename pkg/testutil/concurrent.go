package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/sentinel"
)

// ConcurrentResult tallies outcomes of RunConcurrent.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Errors    int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent starts n goroutines, releases them together and classifies
// what fn returns. Single-use violations count as conflicts.
func RunConcurrent(n int, fn func(i int) error) *ConcurrentResult {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		tally [4]atomic.Int32
	)
	for i := range n {
		wg.Go(func() {
			<-start
			tally[classify(fn(i))].Add(1)
		})
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: tally[outcomeSuccess].Load(),
		Conflicts: tally[outcomeConflict].Load(),
		NotFounds: tally[outcomeNotFound].Load(),
		Errors:    tally[outcomeError].Load(),
	}
}

const (
	outcomeSuccess = iota
	outcomeConflict
	outcomeNotFound
	outcomeError
)

func classify(err error) int {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, sentinel.ErrAlreadyUsed),
		dErrors.HasCode(err, dErrors.CodeConflict),
		dErrors.HasCode(err, dErrors.CodeAlreadyInitialized):
		return outcomeConflict
	case errors.Is(err, sentinel.ErrNotFound),
		dErrors.HasCode(err, dErrors.CodeNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
