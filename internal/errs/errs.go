// Package errs defines the structured error taxonomy shared across CodeContext.
package errs

import "fmt"

// Kind classifies an Error so callers (CLI, retriever, sync engine) can
// branch on failure category without string matching.
type Kind string

const (
	Configuration       Kind = "configuration"
	Embedding           Kind = "embedding"
	Storage             Kind = "storage"
	Indexing            Kind = "indexing"
	Search              Kind = "search"
	Parser              Kind = "parser"
	Validation          Kind = "validation"
	Git                 Kind = "git"
	UnsupportedLanguage Kind = "unsupported_language"
	FileNotInRepository Kind = "file_not_in_repository"
	InvalidChecksum     Kind = "invalid_checksum"
	InvalidParameter    Kind = "invalid_parameter"
	ProviderNotFound    Kind = "provider_not_found"
	ProjectNotFound     Kind = "project_not_found"
	EmptyQuery          Kind = "empty_query"
)

// Error is the single structured error type returned across package
// boundaries. CLI commands inspect Kind to pick an exit path and print Hint
// as a next-action suggestion.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with no hint or cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind that chains an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithHint attaches a next-action remediation hint.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// ProviderNotFoundError mirrors the original's ProviderNotFoundError:
// it names the requested provider and lists what is actually registered.
func ProviderNotFoundError(providerType string, available []string) *Error {
	avail := "none"
	if len(available) > 0 {
		avail = joinComma(available)
	}
	return &Error{
		Kind:    ProviderNotFound,
		Message: fmt.Sprintf("provider %q not found", providerType),
		Hint:    fmt.Sprintf("available providers: %s", avail),
	}
}

// ProjectNotFoundError optionally carries (id, name) suggestions for
// near-miss project lookups, matching the original's "Did you mean" hint.
func ProjectNotFoundError(project string, suggestions [][2]string) *Error {
	if len(suggestions) == 0 {
		return &Error{
			Kind:    ProjectNotFound,
			Message: fmt.Sprintf("project %q not found", project),
			Hint:    "use 'codecontext list-projects' to see all available projects",
		}
	}
	max := len(suggestions)
	if max > 3 {
		max = 3
	}
	hint := "did you mean:"
	for _, s := range suggestions[:max] {
		hint += fmt.Sprintf(" %s (%s);", s[1], s[0])
	}
	return &Error{
		Kind:    ProjectNotFound,
		Message: fmt.Sprintf("project %q not found", project),
		Hint:    hint,
	}
}

// EmptyQueryError matches the original's usage-hint message verbatim in spirit.
func EmptyQueryError() *Error {
	return &Error{
		Kind:    EmptyQuery,
		Message: "search query cannot be empty",
		Hint:    `usage: codecontext search "your query"`,
	}
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}
