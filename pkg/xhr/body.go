package xhr

// Blob stands in for a browser Blob as a request or response body: raw bytes
// plus a self-declared content type.
type Blob struct {
	Data []byte

	// Type is used verbatim as the inferred Content-Type when the body is
	// sent without one; it is never parsed or normalized. Empty means no
	// inference.
	Type string
}

// Size returns the body size in bytes.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// FormEntry is one name/value pair of a FormData body.
type FormEntry struct {
	Name  string
	Value string
}

// FormData stands in for multipart form data: an ordered list of name/value
// entries. Entry order is preserved.
type FormData struct {
	entries []FormEntry
}

// NewFormData returns an empty form body.
func NewFormData() *FormData {
	return &FormData{}
}

// Append adds an entry. Repeated names are kept as separate entries.
func (f *FormData) Append(name, value string) {
	f.entries = append(f.entries, FormEntry{Name: name, Value: value})
}

// Entries returns a copy of the entries in insertion order.
func (f *FormData) Entries() []FormEntry {
	out := make([]FormEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

func (f *FormData) size() int {
	if f == nil {
		return 0
	}
	total := 0
	for _, e := range f.entries {
		total += len(e.Name) + len(e.Value)
	}
	return total
}

// BodySize returns the byte size attributed to a request or response body:
// UTF-8 length for strings, raw length for byte slices, the declared size
// for blobs, and the summed entry lengths for form data. Unknown body types
// count as zero.
func BodySize(body any) int {
	switch b := body.(type) {
	case nil:
		return 0
	case string:
		return len(b)
	case []byte:
		return len(b)
	case *Blob:
		return b.Size()
	case *FormData:
		return b.size()
	}
	return 0
}

// multipartBoundary is the fixed boundary used for inferred multipart
// content types. The body is never serialized, so the boundary stays
// constant and inferred headers are deterministic.
const multipartBoundary = "-----MockXhrBoundary"

// inferContentType returns the Content-Type implied by a body sent without
// an explicit header, or "" when nothing should be inferred.
func inferContentType(body any) string {
	switch b := body.(type) {
	case string:
		return "text/plain;charset=UTF-8"
	case *Blob:
		if b == nil {
			return ""
		}
		return b.Type
	case []byte, *FormData:
		return "multipart/form-data; boundary=" + multipartBoundary
	}
	return ""
}
