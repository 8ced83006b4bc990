package catalog

import (
	jsoniter "github.com/json-iterator/go"
)

// Patch keys must match the field names exactly; "TITLE" is not "title".
var json = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

// DecodeBookPatch reads a BookPatch from a JSON object. Only title, author,
// genre and total_copies are honoured; other keys are ignored, as are null
// values.
func DecodeBookPatch(data []byte) (BookPatch, error) {
	var patch BookPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return BookPatch{}, invalidPatchError(err)
	}
	return patch, nil
}

// DecodeMemberPatch reads a MemberPatch from a JSON object. Only name and
// email are honoured.
func DecodeMemberPatch(data []byte) (MemberPatch, error) {
	var patch MemberPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return MemberPatch{}, invalidPatchError(err)
	}
	return patch, nil
}

func (p BookPatch) validate() error {
	if p.Genre != nil && !p.Genre.Valid() {
		return invalidGenreError()
	}
	if p.TotalCopies != nil && *p.TotalCopies < 0 {
		return ErrNegativeCopies
	}
	return nil
}

func (p BookPatch) apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	// AvailableCopies is not recomputed.
	if p.TotalCopies != nil {
		b.TotalCopies = *p.TotalCopies
	}
}

func (p MemberPatch) apply(m *Member) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Email != nil {
		m.Email = *p.Email
	}
}
