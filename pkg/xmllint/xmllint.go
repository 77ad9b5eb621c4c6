package xmllint

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/google/shlex"
)

const DefaultCommand = "xmllint"

// Tool is a configured xmllint executable. The zero value is not usable, use NewTool.
type Tool struct {
	command string
	args    []string
	timeout time.Duration
	nonet   bool
}

// NewTool splits command with shell quoting rules. The first part is the
// executable, the rest is prepended to every invocation.
func NewTool(command string, timeout time.Duration, nonet bool) (*Tool, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	parts, err := shlex.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse xmllint command '%s'", command)
	}
	if len(parts) < 1 {
		return nil, errors.Errorf("xmllint command '%s' is empty", command)
	}
	return &Tool{
		command: parts[0],
		args:    parts[1:],
		timeout: timeout,
		nonet:   nonet,
	}, nil
}

func (t *Tool) Command() string {
	return t.command
}

func (t *Tool) Timeout() time.Duration {
	return t.timeout
}

func (t *Tool) NoNet() bool {
	return t.nonet
}

// Available resolves the executable on the search path.
func (t *Tool) Available() (string, bool) {
	path, err := exec.LookPath(t.command)
	if err != nil {
		return "", false
	}
	return path, true
}

func (t *Tool) buildArgs(args ...string) []string {
	result := make([]string, 0, len(t.args)+len(args)+1)
	result = append(result, t.args...)
	if t.nonet {
		result = append(result, "--nonet")
	}
	return append(result, args...)
}

func (t *Tool) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(ctx, t.timeout)
	}
	return context.WithCancel(ctx)
}

var versionRegexp = regexp.MustCompile(`using libxml version (\S+)`)

// Version returns the libxml version reported by the executable.
func (t *Tool) Version(ctx context.Context) (string, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, t.command, append(append([]string{}, t.args...), "--version")...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "cannot run command '%s --version'", t.command)
	}
	if m := versionRegexp.FindStringSubmatch(out.String()); m != nil {
		return m[1], nil
	}
	return strings.TrimSpace(out.String()), nil
}

// DropDTDValidate runs
//
//	xmllint --dropdtd <file> | xmllint --noout --dtdvalid <dtd> -
//
// Exit codes of both stages are reported in the result. An error is returned
// only if a stage could not be run at all.
func (t *Tool) DropDTDValidate(ctx context.Context, file, dtd string) (*PipelineResult, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	dropArgs := t.buildArgs("--dropdtd", file)
	validArgs := t.buildArgs("--noout", "--dtdvalid", dtd, "-")

	var dropStderr, validStderr bytes.Buffer
	drop := exec.CommandContext(ctx, t.command, dropArgs...)
	drop.Stderr = &dropStderr
	valid := exec.CommandContext(ctx, t.command, validArgs...)
	valid.Stderr = &validStderr

	pipe, err := drop.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create pipe")
	}
	valid.Stdin = pipe

	if err := valid.Start(); err != nil {
		_ = pipe.Close()
		return nil, errors.Wrapf(err, "cannot start command '%s %s'", t.command, strings.Join(validArgs, " "))
	}
	dropErr := drop.Run()
	validErr := valid.Wait()

	result := &PipelineResult{}
	dropStage, err := newStageResult(t.command, dropArgs, dropErr, &dropStderr)
	if err != nil {
		return nil, err
	}
	validStage, err := newStageResult(t.command, validArgs, validErr, &validStderr)
	if err != nil {
		return nil, err
	}
	result.Stages = []*StageResult{dropStage, validStage}
	result.Duration = time.Since(start)
	return result, nil
}
