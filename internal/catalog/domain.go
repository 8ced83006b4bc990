// internal/catalog/domain.go
package catalog

import (
	"slices"

	"github.com/google/uuid"
)

// BorrowLimit is the number of books a member may hold at once.
const BorrowLimit = 3

// Genre is a label from the fixed genre registry.
type Genre string

const (
	Fiction    Genre = "Fiction"
	NonFiction Genre = "Non-Fiction"
	SciFi      Genre = "Sci-Fi"
	Mystery    Genre = "Mystery"
	Biography  Genre = "Biography"
	History    Genre = "History"
)

var genres = [...]Genre{Fiction, NonFiction, SciFi, Mystery, Biography, History}

// Genres returns the genre registry in its canonical order.
func Genres() []Genre {
	return slices.Clone(genres[:])
}

// Valid reports whether g is in the registry.
func (g Genre) Valid() bool {
	return slices.Contains(genres[:], g)
}

// Book is a catalog title and the state of its copies.
type Book struct {
	ISBN            string   `json:"isbn"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	Genre           Genre    `json:"genre"`
	TotalCopies     int      `json:"total_copies"`
	AvailableCopies int      `json:"available_copies"`
	Borrowers       []string `json:"borrowers"`
}

func (b Book) clone() Book {
	b.Borrowers = slices.Clone(b.Borrowers)
	return b
}

// Member represents a library member.
type Member struct {
	ID       string   `json:"member_id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Borrowed []string `json:"borrowed_books"`
}

func (m Member) clone() Member {
	m.Borrowed = slices.Clone(m.Borrowed)
	return m
}

// SearchField selects the book attribute SearchBooks matches against.
type SearchField string

const (
	SearchByTitle  SearchField = "title"
	SearchByAuthor SearchField = "author"
)

// BookPatch holds the mutable book fields. Nil fields are left untouched.
type BookPatch struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Genre       *Genre  `json:"genre,omitempty"`
	TotalCopies *int    `json:"total_copies,omitempty"`
}

// MemberPatch holds the mutable member fields. Nil fields are left untouched.
type MemberPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Event types appended to the journal.
const (
	EventBookAdded     = "BookAdded"
	EventBookUpdated   = "BookUpdated"
	EventBookDeleted   = "BookDeleted"
	EventMemberAdded   = "MemberAdded"
	EventMemberUpdated = "MemberUpdated"
	EventMemberDeleted = "MemberDeleted"
	EventBookBorrowed  = "BookBorrowed"
	EventBookReturned  = "BookReturned"
)

// Aggregate types used in the journal.
const (
	AggregateBook   = "book"
	AggregateMember = "member"
	AggregateLoan   = "loan"
)

// BookAddedEvent is published when a new book is added.
type BookAddedEvent struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       Genre  `json:"genre"`
	TotalCopies int    `json:"total_copies"`
}

// BookUpdatedEvent carries the patch applied to a book.
type BookUpdatedEvent struct {
	ISBN  string    `json:"isbn"`
	Patch BookPatch `json:"patch"`
}

// BookDeletedEvent is published when a book leaves the catalog.
type BookDeletedEvent struct {
	ISBN string `json:"isbn"`
}

// MemberAddedEvent is published when a new member registers.
type MemberAddedEvent struct {
	ID    string `json:"member_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MemberUpdatedEvent carries the patch applied to a member.
type MemberUpdatedEvent struct {
	ID    string      `json:"member_id"`
	Patch MemberPatch `json:"patch"`
}

// MemberDeletedEvent is published when a member is removed.
type MemberDeletedEvent struct {
	ID string `json:"member_id"`
}

// LoanEvent is the payload of BookBorrowed and BookReturned. AvailableCopies
// is the count after the event applied.
type LoanEvent struct {
	LoanID          uuid.UUID `json:"loan_id"`
	MemberID        string    `json:"member_id"`
	ISBN            string    `json:"isbn"`
	AvailableCopies int       `json:"available_copies"`
}
