package errors

import "errors"

// Kind classifies a domain error so the API layer can pick a status code
// without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindAuth
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a domain error with a kind. Sentinels below are *Error values, so
// errors.Is works on them directly and KindOf works through any %w chain.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Kind() Kind { return e.kind }

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func NotFound(msg string) *Error   { return New(KindNotFound, msg) }
func Validation(msg string) *Error { return New(KindValidation, msg) }
func Auth(msg string) *Error       { return New(KindAuth, msg) }

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.kind
	}
	return KindInternal
}

func Is(err, target error) bool { return errors.Is(err, target) }

var (
	ErrUserNotFound       = NotFound("user not found")
	ErrProjectNotFound    = NotFound("project not found")
	ErrTaskNotFound       = NotFound("task not found")
	ErrCommentNotFound    = NotFound("comment not found")
	ErrAttachmentNotFound = NotFound("attachment not found")

	ErrUsernameTaken     = Validation("username is already taken")
	ErrEmailTaken        = Validation("email is already taken")
	ErrInvalidInput      = Validation("invalid input")
	ErrInvalidUsername   = Validation("invalid username")
	ErrInvalidEmail      = Validation("invalid email")
	ErrInvalidPassword   = Validation("invalid password")
	ErrInvalidName       = Validation("invalid name")
	ErrInvalidRole       = Validation("invalid user role")
	ErrInvalidStatus     = Validation("invalid task status")
	ErrInvalidPriority   = Validation("invalid task priority")
	ErrInvalidTitle      = Validation("invalid task title")
	ErrInvalidDate       = Validation("invalid date, expected YYYY-MM-DD")
	ErrInvalidColor      = Validation("invalid project color")
	ErrEmptyComment      = Validation("comment content must not be blank")
	ErrInvalidAttachment = Validation("invalid attachment metadata")

	ErrInvalidCredentials = Auth("invalid username or password")
	ErrUnauthorized       = Auth("unauthenticated request")
	ErrInvalidToken       = Auth("invalid token")

	ErrForbidden = New(KindForbidden, "only the author or an admin may do this")

	ErrInternalServer        = New(KindInternal, "internal server error")
	ErrDatabaseConnection    = New(KindInternal, "database connection failed")
	ErrConfigFileReadFailed  = New(KindInternal, "failed to read config file")
	ErrConfigParseFailed     = New(KindInternal, "failed to parse config file")
	ErrConfigInvalidFormat   = New(KindInternal, "invalid config value")
	ErrInvalidGzipRequest    = Validation("invalid gzip request body")
	ErrGzipCompressionFailed = New(KindInternal, "gzip compression failed")
)
