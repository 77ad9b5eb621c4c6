package jats

// Result is the outcome of a DTD validation run.
type Result int

const (
	ResultFailed Result = iota
	ResultPassed
	// ResultToolUnavailable means validation was not attempted.
	ResultToolUnavailable
)

var resultStrings = map[Result]string{
	ResultFailed:          "failed",
	ResultPassed:          "passed",
	ResultToolUnavailable: "tool unavailable",
}

func (r Result) Passed() bool {
	return r == ResultPassed
}

func (r Result) String() string {
	if str, ok := resultStrings[r]; ok {
		return str
	}
	return "unknown"
}
