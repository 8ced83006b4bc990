package catalog

import (
	"errors"
	"strings"
)

// Kind classifies catalog errors. All kinds are expected, caller-handled
// outcomes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDuplicateKey
	KindInvalidValue
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindInvalidValue:
		return "invalid_value"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a catalog error with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is matches the kind sentinels (ErrNotFound, ErrConflict, ...) against any
// error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels, for use with errors.Is.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrDuplicateKey = &Error{Kind: KindDuplicateKey}
	ErrInvalidValue = &Error{Kind: KindInvalidValue}
	ErrConflict     = &Error{Kind: KindConflict}
)

var (
	ErrBookExists      = &Error{Kind: KindDuplicateKey, Message: "Book with this ISBN already exists"}
	ErrBookNotFound    = &Error{Kind: KindNotFound, Message: "Book not found"}
	ErrBookBorrowed    = &Error{Kind: KindConflict, Message: "Cannot delete book - copies are currently borrowed"}
	ErrNegativeCopies  = &Error{Kind: KindInvalidValue, Message: "Total copies cannot be negative"}
	ErrMemberExists    = &Error{Kind: KindDuplicateKey, Message: "Member ID already exists"}
	ErrMemberNotFound  = &Error{Kind: KindNotFound, Message: "Member not found"}
	ErrMemberHasBooks  = &Error{Kind: KindConflict, Message: "Cannot delete member - they have borrowed books"}
	ErrBorrowLimit     = &Error{Kind: KindConflict, Message: "Member has reached borrow limit (3 books)"}
	ErrNoCopies        = &Error{Kind: KindConflict, Message: "No copies available for borrowing"}
	ErrAlreadyBorrowed = &Error{Kind: KindConflict, Message: "Member already borrowed this book"}
	ErrNotBorrowed     = &Error{Kind: KindConflict, Message: "Member hasn't borrowed this book"}
)

func invalidGenreError() *Error {
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = string(g)
	}
	return &Error{
		Kind:    KindInvalidValue,
		Message: "Invalid genre. Must be one of: " + strings.Join(names, ", "),
	}
}

func invalidPatchError(err error) *Error {
	return &Error{Kind: KindInvalidValue, Message: "Invalid patch: " + err.Error()}
}

// KindOf returns the kind of a catalog error, or KindUnknown for nil and
// foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
