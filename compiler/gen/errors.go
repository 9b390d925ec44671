package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrTemplateNotFound indicates a template name that no source provides.
	ErrTemplateNotFound = errors.New("tmplgen: template not found")
	// ErrTemplateRender indicates a template evaluation failure.
	ErrTemplateRender = errors.New("tmplgen: template render failed")
	// ErrInvalidIdentifier indicates a table or column name outside the identifier grammar.
	ErrInvalidIdentifier = errors.New("tmplgen: invalid identifier")
	// ErrMissingPrimaryKey indicates a table without primary-key columns.
	ErrMissingPrimaryKey = errors.New("tmplgen: missing primary key")
	// ErrFileWrite indicates an I/O failure while emitting a file.
	ErrFileWrite = errors.New("tmplgen: file write failed")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("tmplgen: missing configuration")
	// ErrLocked indicates another generation pass holds the target root.
	ErrLocked = errors.New("tmplgen: target root is locked by another run")
)

// TemplateNotFoundError is returned when no search path contains a template.
type TemplateNotFoundError struct {
	Name    string
	Sources []string
}

// Error implements the error interface.
func (e *TemplateNotFoundError) Error() string {
	var b strings.Builder
	b.WriteString("tmplgen: template ")
	fmt.Fprintf(&b, "%q", e.Name)
	b.WriteString(" not found")
	if len(e.Sources) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(e.Sources, ", "))
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for TemplateNotFoundError.
func (e *TemplateNotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// NewTemplateNotFoundError creates a new TemplateNotFoundError.
func NewTemplateNotFoundError(name string, sources ...string) *TemplateNotFoundError {
	return &TemplateNotFoundError{Name: name, Sources: sources}
}

// TemplateRenderError represents a template evaluation fault: a malformed
// expansion point, a missing metadata field or invalid generated output.
type TemplateRenderError struct {
	Template string // Template name
	Field    string // Offending field or expansion point (if known)
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *TemplateRenderError) Error() string {
	var b strings.Builder
	b.WriteString("tmplgen: render error")
	if e.Template != "" {
		b.WriteString(" in template ")
		b.WriteString(e.Template)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *TemplateRenderError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for TemplateRenderError.
func (e *TemplateRenderError) Is(target error) bool {
	return target == ErrTemplateRender
}

// NewTemplateRenderError creates a new TemplateRenderError.
func NewTemplateRenderError(template, field, message string, cause error) *TemplateRenderError {
	return &TemplateRenderError{
		Template: template,
		Field:    field,
		Message:  message,
		Cause:    cause,
	}
}

// InvalidIdentifierError is returned for table, class or column names
// containing characters outside the accepted identifier grammar.
type InvalidIdentifierError struct {
	Kind  string // "table", "class" or "column"
	Table string // Owning table (for columns)
	Name  string
}

// Error implements the error interface.
func (e *InvalidIdentifierError) Error() string {
	var b strings.Builder
	b.WriteString("tmplgen: invalid ")
	if e.Kind != "" {
		b.WriteString(e.Kind)
		b.WriteString(" ")
	}
	b.WriteString("identifier ")
	fmt.Fprintf(&b, "%q", e.Name)
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for InvalidIdentifierError.
func (e *InvalidIdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// NewInvalidIdentifierError creates a new InvalidIdentifierError.
func NewInvalidIdentifierError(kind, table, name string) *InvalidIdentifierError {
	return &InvalidIdentifierError{Kind: kind, Table: table, Name: name}
}

// MissingPrimaryKeyError is returned for tables without a primary key.
// Load and list entry points are keyed by the primary key.
type MissingPrimaryKeyError struct {
	Table string
}

// Error implements the error interface.
func (e *MissingPrimaryKeyError) Error() string {
	var b strings.Builder
	b.WriteString("tmplgen: table ")
	fmt.Fprintf(&b, "%q", e.Table)
	b.WriteString(" has no primary key")
	return b.String()
}

// Is reports whether the target matches the sentinel error for MissingPrimaryKeyError.
func (e *MissingPrimaryKeyError) Is(target error) bool {
	return target == ErrMissingPrimaryKey
}

// NewMissingPrimaryKeyError creates a new MissingPrimaryKeyError.
func NewMissingPrimaryKeyError(table string) *MissingPrimaryKeyError {
	return &MissingPrimaryKeyError{Table: table}
}

// FileWriteError represents an I/O failure while emitting a file.
type FileWriteError struct {
	Path  string
	Op    string // "mkdir", "create", "write", ...
	Cause error
}

// Error implements the error interface.
func (e *FileWriteError) Error() string {
	var b strings.Builder
	b.WriteString("tmplgen: file write error")
	if e.Op != "" {
		b.WriteString(" (")
		b.WriteString(e.Op)
		b.WriteString(")")
	}
	if e.Path != "" {
		b.WriteString(" on ")
		b.WriteString(e.Path)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *FileWriteError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for FileWriteError.
func (e *FileWriteError) Is(target error) bool {
	return target == ErrFileWrite
}

// NewFileWriteError creates a new FileWriteError.
func NewFileWriteError(path, op string, cause error) *FileWriteError {
	return &FileWriteError{Path: path, Op: op, Cause: cause}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("tmplgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("tmplgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IsTemplateNotFound reports whether the error is a TemplateNotFoundError.
func IsTemplateNotFound(err error) bool {
	var nf *TemplateNotFoundError
	return errors.As(err, &nf)
}

// IsRenderError reports whether the error is a TemplateRenderError.
func IsRenderError(err error) bool {
	var re *TemplateRenderError
	return errors.As(err, &re)
}

// IsInvalidIdentifier reports whether the error is an InvalidIdentifierError.
func IsInvalidIdentifier(err error) bool {
	var ie *InvalidIdentifierError
	return errors.As(err, &ie)
}

// IsMissingPrimaryKey reports whether the error is a MissingPrimaryKeyError.
func IsMissingPrimaryKey(err error) bool {
	var pe *MissingPrimaryKeyError
	return errors.As(err, &pe)
}

// IsFileWriteError reports whether the error is a FileWriteError.
func IsFileWriteError(err error) bool {
	var we *FileWriteError
	return errors.As(err, &we)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
