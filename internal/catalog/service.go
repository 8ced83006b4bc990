// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/kingabdulai001/The-mini-library-management-system/internal/eventstore"
)

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, isbn, title, author string, genre Genre, totalCopies int) (Book, error)
	GetBook(ctx context.Context, isbn string) (Book, error)
	UpdateBook(ctx context.Context, isbn string, patch BookPatch) (Book, error)
	DeleteBook(ctx context.Context, isbn string) error
	SearchBooks(ctx context.Context, field SearchField, keyword string) []Book

	AddMember(ctx context.Context, id, name, email string) (Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
	UpdateMember(ctx context.Context, id string, patch MemberPatch) (Member, error)
	DeleteMember(ctx context.Context, id string) error

	BorrowBook(ctx context.Context, memberID, isbn string) error
	ReturnBook(ctx context.Context, memberID, isbn string) error

	Books(ctx context.Context) []Book
	Members(ctx context.Context) []Member
	Genres() []Genre
	BorrowedBooks(ctx context.Context, memberID string) []string

	History(ctx context.Context) ([]eventstore.Event, error)
}
