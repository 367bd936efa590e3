package processor

import "fmt"

type Status string

const (
	StatusSucceeded Status = "succeeded"
	// StatusPartial means at least one To-Do creation or Daily completion failed.
	StatusPartial Status = "partial"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is the outcome of processing one account.
type Result struct {
	Account   string
	Status    Status
	Reason    string
	Converted int
	Created   int
	Completed int
	Errors    []error
}

func (r Result) String() string {
	s := fmt.Sprintf("%s: %s (converted=%d created=%d completed=%d)", r.Account, r.Status, r.Converted, r.Created, r.Completed)
	if r.Reason != "" {
		s += ": " + r.Reason
	}
	return s
}

// Failed reports whether any account in results failed outright.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}
