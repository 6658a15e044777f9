package document

import (
	"fmt"
	"net/url"
	"strings"
)

// Metadata describes a book.
type Metadata struct {
	Title    string
	Author   string
	Language string
}

// PageLabel maps a location in the book to a printed page label.
type PageLabel struct {
	Target Location
	Label  string
}

// Location is a resolved link target: either an external URI, kept as
// written, or a path inside the book with an optional fragment.
type Location struct {
	External string
	Path     string
	Fragment string
}

// IsExternal reports whether the location points outside the book.
func (l Location) IsExternal() bool { return l.External != "" }

func (l Location) String() string {
	if l.External != "" {
		return l.External
	}
	if l.Fragment != "" {
		return l.Path + "#" + l.Fragment
	}
	return l.Path
}

// ResolveLink resolves target against base, the path of the document the
// link appears in. Targets with a scheme are external.
func ResolveLink(target, base string) (Location, error) {
	target = strings.TrimSpace(target)
	u, err := url.Parse(target)
	if err != nil {
		return Location{}, fmt.Errorf("bad link %q: %w", target, err)
	}
	if u.Scheme != "" {
		return Location{External: target}, nil
	}
	ref := (&url.URL{Path: base}).ResolveReference(u)
	return Location{Path: strings.TrimPrefix(ref.Path, "/"), Fragment: ref.Fragment}, nil
}
