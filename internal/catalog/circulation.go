package catalog

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// BorrowBook lends one copy of a book to a member.
//
// Checks run in order and stop at the first failure: the member exists, the
// book exists, the member is under BorrowLimit, a copy is available, and the
// member does not already hold this book. On success the member's list, the
// book's borrowers and the available count change together.
func (s *service) BorrowBook(ctx context.Context, memberID, isbn string) (err error) {
	attrs := []attribute.KeyValue{
		attribute.String("member.id", memberID),
		attribute.String("book.isbn", isbn),
	}
	ctx, span := s.start(ctx, opBorrowBook, attrs)
	defer func() { s.finish(ctx, span, opBorrowBook, err, attrs) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	book, ok := s.books[isbn]
	if !ok {
		return ErrBookNotFound
	}
	if len(member.member.Borrowed) >= BorrowLimit {
		return ErrBorrowLimit
	}
	if book.book.AvailableCopies <= 0 {
		return ErrNoCopies
	}
	if slices.Contains(member.member.Borrowed, isbn) {
		return ErrAlreadyBorrowed
	}

	loanID := uuid.New()
	event := LoanEvent{
		LoanID:          loanID,
		MemberID:        memberID,
		ISBN:            isbn,
		AvailableCopies: book.book.AvailableCopies - 1,
	}
	if err := s.record(ctx, AggregateLoan, loanID, EventBookBorrowed, event); err != nil {
		return err
	}

	member.member.Borrowed = append(member.member.Borrowed, isbn)
	book.book.Borrowers = append(book.book.Borrowers, memberID)
	book.book.AvailableCopies--
	s.loans[loanKey{memberID: memberID, isbn: isbn}] = loanID

	span.SetAttributes(attribute.String("loan.id", loanID.String()))
	return nil
}

// ReturnBook takes back a copy the member holds and closes the loan.
func (s *service) ReturnBook(ctx context.Context, memberID, isbn string) (err error) {
	attrs := []attribute.KeyValue{
		attribute.String("member.id", memberID),
		attribute.String("book.isbn", isbn),
	}
	ctx, span := s.start(ctx, opReturnBook, attrs)
	defer func() { s.finish(ctx, span, opReturnBook, err, attrs) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[memberID]
	if !ok {
		return ErrMemberNotFound
	}
	book, ok := s.books[isbn]
	if !ok {
		return ErrBookNotFound
	}
	if !slices.Contains(member.member.Borrowed, isbn) {
		return ErrNotBorrowed
	}

	key := loanKey{memberID: memberID, isbn: isbn}
	loanID := s.loans[key]
	event := LoanEvent{
		LoanID:          loanID,
		MemberID:        memberID,
		ISBN:            isbn,
		AvailableCopies: book.book.AvailableCopies + 1,
	}
	if err := s.record(ctx, AggregateLoan, loanID, EventBookReturned, event); err != nil {
		return err
	}

	member.member.Borrowed = removeValue(member.member.Borrowed, isbn)
	book.book.Borrowers = removeValue(book.book.Borrowers, memberID)
	book.book.AvailableCopies++
	delete(s.loans, key)

	span.SetAttributes(attribute.String("loan.id", loanID.String()))
	return nil
}
