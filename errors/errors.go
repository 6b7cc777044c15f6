package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRead      Phase = "read"      // stream, heap and row decoding
	PhaseResolve   Phase = "resolve"   // token and cross-reference resolution
	PhaseConstruct Phase = "construct" // instruction and entity construction
	PhaseInterpret Phase = "interpret" // raw data re-interpretation
	PhaseWrite     Phase = "write"     // write-back and encoding
	PhaseLoad      Phase = "load"      // image loading
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindInvalidData     Kind = "invalid_data"
	KindInvalidToken    Kind = "invalid_token"
	KindUnsupported     Kind = "unsupported"
	KindOperandMismatch Kind = "operand_mismatch"
	KindDuplicate       Kind = "duplicate"
	KindOverflow        Kind = "overflow"
	KindInvalidInput    Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Table  string
	Token  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Table != "" {
		b.WriteString(" in ")
		b.WriteString(e.Table)
	}
	if e.Token != "" {
		b.WriteString(" at ")
		b.WriteString(e.Token)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. An empty Phase in the
// target matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return stderrors.Is(err, &Error{Kind: k})
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Table sets the table name
func (b *Builder) Table(name string) *Builder {
	b.err.Table = name
	return b
}

// Token sets the token the error refers to
func (b *Builder) Token(tok fmt.Stringer) *Builder {
	b.err.Token = tok.String()
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates a not-found error
func NotFound(phase Phase, what string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, value),
		Value:  value,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, table string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Table:  table,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// InvalidToken creates an error for a token that cannot be encoded or
// decoded in the requested context
func InvalidToken(phase Phase, tok fmt.Stringer, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidToken,
		Token:  tok.String(),
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OperandMismatch creates an opcode/operand category mismatch error
func OperandMismatch(opcode, category, supplied string) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindOperandMismatch,
		Detail: fmt.Sprintf("opcode %s takes %s, got %s", opcode, category, supplied),
	}
}

// Duplicate creates an error for an entity appended twice
func Duplicate(table string, tok fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindDuplicate,
		Table:  table,
		Token:  tok.String(),
		Detail: "entity already appended",
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
