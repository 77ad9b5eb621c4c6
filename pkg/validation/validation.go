package validation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"emperror.dev/errors"
	"golang.org/x/exp/slices"
)

type ErrorCode string

const (
	E001 = ErrorCode("E001")
	E002 = ErrorCode("E002")
	E003 = ErrorCode("E003")
	E004 = ErrorCode("E004")
	E005 = ErrorCode("E005")
	E006 = ErrorCode("E006")
	E007 = ErrorCode("E007")
	E008 = ErrorCode("E008")
	E009 = ErrorCode("E009")
	E010 = ErrorCode("E010")
	E011 = ErrorCode("E011")
	E012 = ErrorCode("E012")
	E013 = ErrorCode("E013")
	W001 = ErrorCode("W001")
	W002 = ErrorCode("W002")
	W003 = ErrorCode("W003")
)

var Errors = map[ErrorCode]*Error{
	E001: {Code: E001, Description: "package file cannot be read"},
	E002: {Code: E002, Description: "package is not a zip archive"},
	E003: {Code: E003, Description: "manifest.xml missing in package root"},
	E004: {Code: E004, Description: "manifest.xml is not well-formed"},
	E005: {Code: E005, Description: "manifest.xml does not conform to the MECA manifest schema"},
	E006: {Code: E006, Description: "file referenced by manifest is missing"},
	E007: {Code: E007, Description: "no article-metadata item with xml instance in manifest"},
	E008: {Code: E008, Description: "JATS article not valid against DTD"},
	E009: {Code: E009, Description: "manifest.xml not valid against DTD"},
	E010: {Code: E010, Description: "transfer.xml not valid against DTD"},
	E011: {Code: E011, Description: "xmllint not available, DTD validation not possible"},
	E012: {Code: E012, Description: "no local DTD for document"},
	E013: {Code: E013, Description: "file in package not referenced by manifest"},
	W001: {Code: W001, Description: "file in package not referenced by manifest"},
	W002: {Code: W002, Description: "manifest instance without media-type"},
	W003: {Code: W003, Description: "manifest.xml does not conform to the MECA manifest schema"},
}

type Error struct {
	Code         ErrorCode `json:"code" yaml:"code"`
	Description  string    `json:"description" yaml:"description"`
	Description2 string    `json:"details,omitempty" yaml:"details,omitempty"`
	Context      string    `json:"context,omitempty" yaml:"context,omitempty"`
}

func GetError(code ErrorCode) *Error {
	if err, ok := Errors[code]; ok {
		return err
	}
	return &Error{
		Code:        code,
		Description: fmt.Sprintf("unknown error %s", code),
	}
}

func (e *Error) AppendDescription(format string, a ...any) *Error {
	return &Error{
		Code:         e.Code,
		Description:  e.Description,
		Context:      e.Context,
		Description2: strings.TrimSpace(e.Description2 + " " + fmt.Sprintf(format, a...)),
	}
}

func (e *Error) AppendContext(context string) *Error {
	return &Error{
		Code:         e.Code,
		Description:  e.Description,
		Description2: e.Description2,
		Context:      context,
	}
}

func (e *Error) IsWarning() bool {
	return len(e.Code) > 0 && e.Code[0] == 'W'
}

func (e *Error) Error() string {
	return fmt.Sprintf("Validation Error #%s - %s [%s]", e.Code, e.Description, e.Description2)
}

type Status struct {
	mu       sync.Mutex
	Errors   []*Error `json:"errors" yaml:"errors"`
	Warnings []*Error `json:"warnings" yaml:"warnings"`
}

func (status *Status) Compact() {
	status.mu.Lock()
	defer status.mu.Unlock()
	eq := func(e1, e2 *Error) bool {
		return e1.Code == e2.Code && e1.Description2 == e2.Description2 && e1.Context == e2.Context
	}
	status.Errors = slices.CompactFunc(status.Errors, eq)
	status.Warnings = slices.CompactFunc(status.Warnings, eq)
}

func (status *Status) Valid() bool {
	status.mu.Lock()
	defer status.mu.Unlock()
	return len(status.Errors) == 0
}

func (status *Status) add(e *Error) {
	status.mu.Lock()
	defer status.mu.Unlock()
	if e.IsWarning() {
		status.Warnings = append(status.Warnings, e)
	} else {
		status.Errors = append(status.Errors, e)
	}
}

type contextKey struct{}

func NewContextValidation(parent context.Context) context.Context {
	return context.WithValue(parent, contextKey{}, &Status{
		Errors:   []*Error{},
		Warnings: []*Error{},
	})
}

func GetValidationStatus(ctx context.Context) (*Status, error) {
	statusAny := ctx.Value(contextKey{})
	if statusAny == nil {
		return nil, errors.New("no validation status in context")
	}
	status, ok := statusAny.(*Status)
	if !ok {
		return nil, errors.New("validation status not of type *Status")
	}
	return status, nil
}

// Add records a finding. Codes starting with W are warnings.
func Add(ctx context.Context, code ErrorCode, contextString string, format string, a ...any) error {
	status, err := GetValidationStatus(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot add validation error")
	}
	status.add(GetError(code).AppendDescription(format, a...).AppendContext(contextString))
	return nil
}
