package testutil

import (
	"errors"
	"sync"

	"backupauth/pkg/admission"
	"backupauth/pkg/platform/sentinel"
)

// Outcome buckets the error returned by one concurrent call.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeConflict
	OutcomeNotFound
	OutcomeThrottled
	OutcomeError
)

// Classify maps err onto an Outcome. Admission refusals count as throttled.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if _, ok := admission.As(err); ok {
		return OutcomeThrottled
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, sentinel.ErrNotFound):
		return OutcomeNotFound
	}
	return OutcomeError
}

// ConcurrentResult counts outcomes of a RunConcurrent call.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
	Throttled int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds + r.Throttled
}

func (r *ConcurrentResult) add(o Outcome) {
	switch o {
	case OutcomeSuccess:
		r.Successes++
	case OutcomeConflict:
		r.Conflicts++
	case OutcomeNotFound:
		r.NotFounds++
	case OutcomeThrottled:
		r.Throttled++
	default:
		r.Errors++
	}
}

// RunConcurrent releases n goroutines at once, each calling fn with its index,
// and tallies the outcomes once all have returned.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	outcomes := make([]Outcome, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			outcomes[i] = Classify(fn(i))
		}()
	}
	close(start)
	wg.Wait()

	res := &ConcurrentResult{}
	for _, o := range outcomes {
		res.add(o)
	}
	return res
}
