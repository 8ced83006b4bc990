package catalog_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingabdulai001/The-mini-library-management-system/internal/catalog"
)

func TestBorrowAndReturn(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustAddBook(t, svc, "1234567890", "Python Programming", "John Doe", catalog.NonFiction, 2)
	mustAddMember(t, svc, "M001", "Alice Smith", "alice@email.com")

	require.NoError(t, svc.BorrowBook(ctx, "M001", "1234567890"))

	book, err := svc.GetBook(ctx, "1234567890")
	require.NoError(t, err)
	assert.Equal(t, 1, book.AvailableCopies)
	assert.Equal(t, []string{"M001"}, book.Borrowers)
	assert.Equal(t, []string{"1234567890"}, svc.BorrowedBooks(ctx, "M001"))

	err = svc.BorrowBook(ctx, "M001", "1234567890")
	assert.ErrorIs(t, err, catalog.ErrAlreadyBorrowed)

	require.NoError(t, svc.ReturnBook(ctx, "M001", "1234567890"))

	book, err = svc.GetBook(ctx, "1234567890")
	require.NoError(t, err)
	assert.Equal(t, 2, book.AvailableCopies)
	assert.Empty(t, book.Borrowers)
	assert.Empty(t, svc.BorrowedBooks(ctx, "M001"))

	err = svc.ReturnBook(ctx, "M001", "1234567890")
	assert.ErrorIs(t, err, catalog.ErrNotBorrowed)
}

func TestBorrowBookCheckOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(t *testing.T, svc catalog.Service)
		memberID string
		isbn     string
		want     error
	}{
		{
			name:     "unknown member wins over unknown book",
			memberID: "ghost",
			isbn:     "missing",
			want:     catalog.ErrMemberNotFound,
		},
		{
			name: "unknown book",
			setup: func(t *testing.T, svc catalog.Service) {
				mustAddMember(t, svc, "M001", "Alice", "alice@email.com")
			},
			memberID: "M001",
			isbn:     "missing",
			want:     catalog.ErrBookNotFound,
		},
		{
			name: "limit wins over no copies",
			setup: func(t *testing.T, svc catalog.Service) {
				mustAddMember(t, svc, "M001", "Alice", "alice@email.com")
				mustAddMember(t, svc, "M002", "Bob", "bob@email.com")
				for i := range catalog.BorrowLimit {
					isbn := fmt.Sprintf("B%d", i)
					mustAddBook(t, svc, isbn, "Book", "Author", catalog.Fiction, 1)
					require.NoError(t, svc.BorrowBook(context.Background(), "M001", isbn))
				}
				mustAddBook(t, svc, "X", "Empty", "Author", catalog.Fiction, 1)
				require.NoError(t, svc.BorrowBook(context.Background(), "M002", "X"))
			},
			memberID: "M001",
			isbn:     "X",
			want:     catalog.ErrBorrowLimit,
		},
		{
			name: "no copies wins over already borrowed",
			setup: func(t *testing.T, svc catalog.Service) {
				mustAddMember(t, svc, "M001", "Alice", "alice@email.com")
				mustAddBook(t, svc, "X", "Single", "Author", catalog.Fiction, 1)
				require.NoError(t, svc.BorrowBook(context.Background(), "M001", "X"))
			},
			memberID: "M001",
			isbn:     "X",
			want:     catalog.ErrNoCopies,
		},
		{
			name: "zero copy book",
			setup: func(t *testing.T, svc catalog.Service) {
				mustAddMember(t, svc, "M001", "Alice", "alice@email.com")
				mustAddBook(t, svc, "Z", "Reference Only", "Author", catalog.History, 0)
			},
			memberID: "M001",
			isbn:     "Z",
			want:     catalog.ErrNoCopies,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			if tt.setup != nil {
				tt.setup(t, svc)
			}
			before, err := svc.History(ctx)
			require.NoError(t, err)

			err = svc.BorrowBook(ctx, tt.memberID, tt.isbn)
			require.ErrorIs(t, err, tt.want)

			after, err := svc.History(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after, "a rejected borrow leaves no trace")
		})
	}
}

func TestReturnBookCheckOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustAddMember(t, svc, "M001", "Alice", "alice@email.com")
	mustAddBook(t, svc, "1", "Dune", "Frank Herbert", catalog.SciFi, 1)

	assert.ErrorIs(t, svc.ReturnBook(ctx, "ghost", "missing"), catalog.ErrMemberNotFound)
	assert.ErrorIs(t, svc.ReturnBook(ctx, "M001", "missing"), catalog.ErrBookNotFound)
	assert.ErrorIs(t, svc.ReturnBook(ctx, "M001", "1"), catalog.ErrNotBorrowed)
}

func TestBorrowLimit(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustAddBook(t, svc, "9780134853987", "Clean Code", "Robert Martin", catalog.NonFiction, 3)
	mustAddBook(t, svc, "9780201633610", "Design Patterns", "Gamma et al.", catalog.NonFiction, 2)
	mustAddBook(t, svc, "9780451524935", "1984", "George Orwell", catalog.Fiction, 4)
	mustAddBook(t, svc, "9780441013593", "Dune", "Frank Herbert", catalog.SciFi, 3)
	mustAddMember(t, svc, "MEM001", "Alice Johnson", "alice@email.com")

	require.NoError(t, svc.BorrowBook(ctx, "MEM001", "9780134853987"))
	require.NoError(t, svc.BorrowBook(ctx, "MEM001", "9780201633610"))
	require.NoError(t, svc.BorrowBook(ctx, "MEM001", "9780441013593"))

	err := svc.BorrowBook(ctx, "MEM001", "9780451524935")
	require.ErrorIs(t, err, catalog.ErrBorrowLimit)
	assert.Equal(t, "Member has reached borrow limit (3 books)", err.Error())

	require.NoError(t, svc.ReturnBook(ctx, "MEM001", "9780134853987"))
	assert.NoError(t, svc.BorrowBook(ctx, "MEM001", "9780451524935"))
	assert.Len(t, svc.BorrowedBooks(ctx, "MEM001"), catalog.BorrowLimit)
}

func TestDeleteWhileBorrowed(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustAddBook(t, svc, "1", "Clean Code", "Robert Martin", catalog.NonFiction, 3)
	mustAddMember(t, svc, "M001", "Alice", "alice@email.com")
	require.NoError(t, svc.BorrowBook(ctx, "M001", "1"))

	err := svc.DeleteBook(ctx, "1")
	require.ErrorIs(t, err, catalog.ErrConflict)
	assert.Equal(t, "Cannot delete book - copies are currently borrowed", err.Error())

	err = svc.DeleteMember(ctx, "M001")
	require.ErrorIs(t, err, catalog.ErrConflict)
	assert.Equal(t, "Cannot delete member - they have borrowed books", err.Error())

	require.NoError(t, svc.ReturnBook(ctx, "M001", "1"))
	assert.NoError(t, svc.DeleteBook(ctx, "1"))
	assert.NoError(t, svc.DeleteMember(ctx, "M001"))
}

func TestBorrowedListsStaySymmetric(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustAddBook(t, svc, "A", "Alpha", "Author", catalog.Mystery, 2)
	mustAddBook(t, svc, "B", "Beta", "Author", catalog.Biography, 2)
	mustAddMember(t, svc, "M1", "One", "one@email.com")
	mustAddMember(t, svc, "M2", "Two", "two@email.com")

	require.NoError(t, svc.BorrowBook(ctx, "M1", "A"))
	require.NoError(t, svc.BorrowBook(ctx, "M2", "A"))
	require.NoError(t, svc.BorrowBook(ctx, "M1", "B"))
	require.NoError(t, svc.ReturnBook(ctx, "M1", "A"))

	a, err := svc.GetBook(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"M2"}, a.Borrowers)
	assert.Equal(t, 1, a.AvailableCopies)

	assert.Equal(t, []string{"B"}, svc.BorrowedBooks(ctx, "M1"))
	assert.Equal(t, []string{"A"}, svc.BorrowedBooks(ctx, "M2"))
}

func TestBorrowedBooksReturnsCopy(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustAddBook(t, svc, "A", "Alpha", "Author", catalog.Mystery, 1)
	mustAddMember(t, svc, "M1", "One", "one@email.com")
	require.NoError(t, svc.BorrowBook(ctx, "M1", "A"))

	borrowed := svc.BorrowedBooks(ctx, "M1")
	borrowed[0] = "tampered"

	member, err := svc.GetMember(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, member.Borrowed)
}

func TestConcurrentBorrowPreventsDoubleLending(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustAddBook(t, svc, "single", "Last Copy", "Author", catalog.Fiction, 1)

	const members = 10
	for i := range members {
		mustAddMember(t, svc, fmt.Sprintf("M%02d", i), "Member", "member@email.com")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  int
	)
	for i := range members {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := svc.BorrowBook(ctx, id, "single")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if assert.ErrorIs(t, err, catalog.ErrNoCopies) {
				failures++
			}
		}(fmt.Sprintf("M%02d", i))
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one borrow should succeed")
	assert.Equal(t, members-1, failures)

	book, err := svc.GetBook(ctx, "single")
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)
	assert.Len(t, book.Borrowers, 1)
}

func TestRaisedTotalDoesNotAddLendableCopies(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	mustAddBook(t, svc, "1", "Clean Code", "Robert Martin", catalog.NonFiction, 1)
	mustAddMember(t, svc, "M001", "Alice", "alice@email.com")
	mustAddMember(t, svc, "M002", "Bob", "bob@email.com")

	_, err := svc.UpdateBook(ctx, "1", catalog.BookPatch{TotalCopies: ptr(2)})
	require.NoError(t, err)
	require.NoError(t, svc.BorrowBook(ctx, "M001", "1"))

	// no copies is checked before already borrowed
	assert.ErrorIs(t, svc.BorrowBook(ctx, "M001", "1"), catalog.ErrNoCopies)
	assert.ErrorIs(t, svc.BorrowBook(ctx, "M002", "1"), catalog.ErrNoCopies)
}
