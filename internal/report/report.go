package report

import "time"

// Test statuses recovered from a transcript.
const (
	StatusPassed         = "passed"
	StatusFailed         = "failed"
	StatusSetupFailed    = "setup_failed"
	StatusTeardownFailed = "teardown_failed"
	StatusIncomplete     = "incomplete"
)

// TestResult captures the outcome of a single test invocation.
type TestResult struct {
	Group    string
	Name     string
	Status   string
	Duration time.Duration
	Timed    bool

	// TeardownFailed marks a failed test whose teardown failed as well.
	TeardownFailed bool

	Result  int
	Message string
	File    string
	Line    int

	// Output holds lines the test printed itself.
	Output []string
}

// Failures returns how many failures the invocation contributes to a run.
func (t TestResult) Failures() int {
	switch t.Status {
	case StatusFailed:
		if t.TeardownFailed {
			return 2
		}
		return 1
	case StatusTeardownFailed:
		return 1
	default:
		return 0
	}
}

// HasDetail reports whether a failure detail block was attached.
func (t TestResult) HasDetail() bool {
	return t.File != ""
}

// DeviceSummary is the summary line the harness printed itself.
type DeviceSummary struct {
	Total    int
	Passed   int
	Failed   int
	Duration time.Duration
	Timed    bool
}

// Summary aggregates transcript results.
type Summary struct {
	TotalGroups int
	TotalTests  int
	Passed      int
	Failed      int
	SetupFailed int
	Incomplete  int
	Duration    time.Duration
	ExitCode    int
}

// Add folds other into s.
func (s *Summary) Add(other Summary) {
	s.TotalGroups += other.TotalGroups
	s.TotalTests += other.TotalTests
	s.Passed += other.Passed
	s.Failed += other.Failed
	s.SetupFailed += other.SetupFailed
	s.Incomplete += other.Incomplete
	s.Duration += other.Duration
	if other.ExitCode != 0 {
		s.ExitCode = other.ExitCode
	}
}

// Transcript is one scraped test run.
type Transcript struct {
	Source   string
	Tests    []TestResult
	Summary  Summary
	Device   *DeviceSummary
	Warnings []string
}
