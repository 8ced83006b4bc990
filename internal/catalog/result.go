package catalog

// Success messages reported by Report.
const (
	MsgBookAdded     = "Book added successfully"
	MsgBookUpdated   = "Book updated successfully"
	MsgBookDeleted   = "Book deleted successfully"
	MsgMemberAdded   = "Member added successfully"
	MsgMemberUpdated = "Member updated successfully"
	MsgMemberDeleted = "Member deleted successfully"
	MsgBookBorrowed  = "Book borrowed successfully"
	MsgBookReturned  = "Book returned successfully"
)

// Result is the (success, message) view of an operation outcome.
type Result struct {
	OK      bool
	Kind    Kind
	Message string
}

// Report turns the error returned by an operation into a Result, using
// success as the message when err is nil.
func Report(err error, success string) Result {
	if err == nil {
		return Result{OK: true, Message: success}
	}
	return Result{Kind: KindOf(err), Message: err.Error()}
}
