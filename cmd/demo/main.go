// cmd/demo/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kingabdulai001/The-mini-library-management-system/internal/catalog"
	"github.com/kingabdulai001/The-mini-library-management-system/internal/config"
	"github.com/kingabdulai001/The-mini-library-management-system/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		logger.Error("failed to set up telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	svc := catalog.NewService(catalog.WithLogger(logger.With(slog.String("service", cfg.ServiceName))))
	if err := run(ctx, os.Stdout, svc); err != nil {
		logger.Error("demo failed", slog.Any("error", err))
		_ = providers.Shutdown(ctx)
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, svc catalog.Service) error {
	fmt.Fprintln(w, "🚀 Mini Library Management System Demo")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	fmt.Fprintln(w, "\n1. Adding Books:")
	books := []struct {
		isbn, title, author string
		genre               catalog.Genre
		copies              int
	}{
		{"9780134853987", "Clean Code", "Robert Martin", catalog.NonFiction, 3},
		{"9780201633610", "Design Patterns", "Gamma et al.", catalog.NonFiction, 2},
		{"9780451524935", "1984", "George Orwell", catalog.Fiction, 4},
		{"9780441013593", "Dune", "Frank Herbert", catalog.SciFi, 3},
	}
	for _, b := range books {
		_, err := svc.AddBook(ctx, b.isbn, b.title, b.author, b.genre, b.copies)
		fmt.Fprintf(w, "   Adding '%s': %s\n", b.title, catalog.Report(err, catalog.MsgBookAdded).Message)
	}

	fmt.Fprintln(w, "\n2. Adding Members:")
	members := []struct{ id, name, email string }{
		{"MEM001", "Alice Johnson", "alice@email.com"},
		{"MEM002", "Bob Smith", "bob@email.com"},
		{"MEM003", "Carol Davis", "carol@email.com"},
	}
	for _, m := range members {
		_, err := svc.AddMember(ctx, m.id, m.name, m.email)
		fmt.Fprintf(w, "   Adding %s: %s\n", m.name, catalog.Report(err, catalog.MsgMemberAdded).Message)
	}

	fmt.Fprintln(w, "\n3. Searching Books:")
	fmt.Fprintln(w, "   Searching for 'code':")
	for _, b := range svc.SearchBooks(ctx, catalog.SearchByTitle, "code") {
		fmt.Fprintf(w, "     - %s by %s\n", b.Title, b.Author)
	}
	fmt.Fprintln(w, "   Searching for author 'Orwell':")
	for _, b := range svc.SearchBooks(ctx, catalog.SearchByAuthor, "orwell") {
		fmt.Fprintf(w, "     - %s by %s\n", b.Title, b.Author)
	}

	fmt.Fprintln(w, "\n4. Borrowing Books:")
	borrows := []struct{ memberID, isbn string }{
		{"MEM001", "9780134853987"},
		{"MEM001", "9780201633610"},
		{"MEM002", "9780451524935"},
		{"MEM001", "9780441013593"},
	}
	for _, b := range borrows {
		err := svc.BorrowBook(ctx, b.memberID, b.isbn)
		fmt.Fprintf(w, "   %s borrowing '%s': %s\n", b.memberID, title(ctx, svc, b.isbn), catalog.Report(err, catalog.MsgBookBorrowed).Message)
	}

	fmt.Fprintln(w, "\n5. Testing Borrow Limit:")
	err := svc.BorrowBook(ctx, "MEM001", "9780451524935")
	fmt.Fprintf(w, "   MEM001 trying to borrow fourth book: %s\n", catalog.Report(err, catalog.MsgBookBorrowed).Message)

	fmt.Fprintln(w, "\n6. Returning a Book:")
	err = svc.ReturnBook(ctx, "MEM001", "9780134853987")
	fmt.Fprintf(w, "   MEM001 returning '%s': %s\n", title(ctx, svc, "9780134853987"), catalog.Report(err, catalog.MsgBookReturned).Message)

	fmt.Fprintln(w, "\n7. Updating Book:")
	patch, err := catalog.DecodeBookPatch([]byte(`{"total_copies": 5}`))
	if err == nil {
		_, err = svc.UpdateBook(ctx, "9780134853987", patch)
	}
	fmt.Fprintf(w, "   Updating 'Clean Code' copies to 5: %s\n", catalog.Report(err, catalog.MsgBookUpdated).Message)

	fmt.Fprintln(w, "\n8. Current Library Status:")
	fmt.Fprintf(w, "   Total books: %d\n", len(svc.Books(ctx)))
	fmt.Fprintf(w, "   Total members: %d\n", len(svc.Members(ctx)))
	fmt.Fprintln(w, "\n   Books in library:")
	for _, b := range svc.Books(ctx) {
		fmt.Fprintf(w, "     - %s: %d/%d available\n", b.Title, b.AvailableCopies, b.TotalCopies)
	}
	fmt.Fprintln(w, "\n   Member borrowing status:")
	for _, m := range svc.Members(ctx) {
		fmt.Fprintf(w, "     - %s: %d books borrowed\n", m.Name, len(m.Borrowed))
	}

	fmt.Fprintln(w, "\n9. Cleanup Operations:")
	for _, m := range svc.Members(ctx) {
		for _, isbn := range m.Borrowed {
			if err := svc.ReturnBook(ctx, m.ID, isbn); err != nil {
				return fmt.Errorf("return %s for %s: %w", isbn, m.ID, err)
			}
		}
	}
	err = svc.DeleteBook(ctx, "9780134853987")
	fmt.Fprintf(w, "   Deleting 'Clean Code': %s\n", catalog.Report(err, catalog.MsgBookDeleted).Message)
	err = svc.DeleteMember(ctx, "MEM003")
	fmt.Fprintf(w, "   Deleting member Carol Davis: %s\n", catalog.Report(err, catalog.MsgMemberDeleted).Message)

	history, err := svc.History(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	fmt.Fprintf(w, "\n10. Journal (%d events):\n", len(history))
	for _, e := range history {
		fmt.Fprintf(w, "   #%d %s %s v%d\n", e.ID, e.AggregateType, e.EventType, e.Version)
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "✅ Demo completed successfully!")
	return nil
}

func title(ctx context.Context, svc catalog.Service, isbn string) string {
	book, err := svc.GetBook(ctx, isbn)
	if err != nil {
		return "Unknown"
	}
	return book.Title
}
