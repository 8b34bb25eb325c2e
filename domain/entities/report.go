package entities

import "time"

// Verdict represents the outcome of a scenario
type Verdict string

const (
	VerdictPassed  Verdict = "passed"
	VerdictFailed  Verdict = "failed"
	VerdictFlaky   Verdict = "flaky"
	VerdictSkipped Verdict = "skipped"
)

// AttemptResult represents one execution of a scenario
type AttemptResult struct {
	Attempt    int           `json:"attempt"`
	Passed     bool          `json:"passed"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
}

// ScenarioResult represents the verdict of a scenario across its attempts
type ScenarioResult struct {
	Scenario string          `json:"scenario"`
	Project  string          `json:"project"`
	Verdict  Verdict         `json:"verdict"`
	Attempts []AttemptResult `json:"attempts"`
}

// LastAttempt returns the final attempt, if any ran
func (r ScenarioResult) LastAttempt() (AttemptResult, bool) {
	if len(r.Attempts) == 0 {
		return AttemptResult{}, false
	}
	return r.Attempts[len(r.Attempts)-1], true
}

// RunReport aggregates the results of a whole run
type RunReport struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Results    []ScenarioResult `json:"results"`
}

// Count returns how many results carry verdict
func (r RunReport) Count(verdict Verdict) int {
	n := 0
	for _, res := range r.Results {
		if res.Verdict == verdict {
			n++
		}
	}
	return n
}

// Passed reports whether no scenario failed
func (r RunReport) Passed() bool {
	return r.Count(VerdictFailed) == 0
}
