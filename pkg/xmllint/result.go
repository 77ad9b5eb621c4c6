package xmllint

import (
	"bytes"
	"os/exec"
	"strings"
	"time"

	"emperror.dev/errors"
)

type StageResult struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
}

func (s *StageResult) String() string {
	return s.Command + " " + strings.Join(s.Args, " ")
}

type PipelineResult struct {
	Stages   []*StageResult
	Duration time.Duration
}

// Success is true if every stage exited with zero.
func (r *PipelineResult) Success() bool {
	if r == nil || len(r.Stages) == 0 {
		return false
	}
	for _, stage := range r.Stages {
		if stage.ExitCode != 0 {
			return false
		}
	}
	return true
}

// Diagnostics returns the non-empty stderr lines of all stages.
func (r *PipelineResult) Diagnostics() []string {
	var lines []string
	if r == nil {
		return lines
	}
	for _, stage := range r.Stages {
		for _, line := range strings.Split(stage.Stderr, "\n") {
			if line = strings.TrimRight(line, "\r "); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

func newStageResult(command string, args []string, runErr error, stderr *bytes.Buffer) (*StageResult, error) {
	stage := &StageResult{
		Command: command,
		Args:    args,
		Stderr:  stderr.String(),
	}
	if runErr == nil {
		return stage, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		// -1 if the process was killed
		stage.ExitCode = exitErr.ExitCode()
		return stage, nil
	}
	return nil, errors.Wrapf(runErr, "cannot run command '%s'", stage.String())
}
