// Package epub reads chapters, metadata and navigation from EPUB files.
package epub

import (
	"archive/zip"
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"bookterm/document"
)

const (
	containerPath = "META-INF/container.xml"
	xhtmlType     = "application/xhtml+xml"
	ncxType       = "application/x-dtbncx+xml"
	unknown       = "Unknown"
)

// ErrMissingEntry is returned when a referenced archive entry does not exist.
var ErrMissingEntry = errors.New("no such entry in archive")

type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type manifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type packageDoc struct {
	Metadata struct {
		Titles    []string `xml:"title"`
		Creators  []string `xml:"creator"`
		Languages []string `xml:"language"`
	} `xml:"metadata"`
	Manifest []manifestItem `xml:"manifest>item"`
	Spine    struct {
		TOC      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
	Guide []struct {
		Type string `xml:"type,attr"`
		Href string `xml:"href,attr"`
	} `xml:"guide>reference"`
}

// Book is an opened EPUB archive.
type Book struct {
	path     string
	zr       *zip.ReadCloser
	files    map[string]*zip.File
	rootfile string
	opf      packageDoc

	metadata  document.Metadata
	chapters  []document.Chapter
	nav       *navDoc
	bodyStart document.Location
	hasStart  bool
}

// Open reads the container, package document and spine of the EPUB at
// path. The book records the absolute path.
func Open(path string) (*Book, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	b := &Book{path: path, zr: zr, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		b.files[f.Name] = f
	}
	if err := b.load(); err != nil {
		zr.Close()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return b, nil
}

func (b *Book) load() error {
	var c container
	if err := b.decode(containerPath, &c); err != nil {
		return err
	}
	if len(c.Rootfiles) == 0 || c.Rootfiles[0].FullPath == "" {
		return fmt.Errorf("%s: no rootfile", containerPath)
	}
	b.rootfile = c.Rootfiles[0].FullPath
	if err := b.decode(b.rootfile, &b.opf); err != nil {
		return err
	}

	md := b.opf.Metadata
	b.metadata = document.Metadata{
		Title:    first(md.Titles, unknown),
		Author:   first(md.Creators, unknown),
		Language: first(md.Languages, ""),
	}

	items := make(map[string]manifestItem, len(b.opf.Manifest))
	for _, it := range b.opf.Manifest {
		items[it.ID] = it
	}
	for _, ref := range b.opf.Spine.ItemRefs {
		it, ok := items[ref.IDRef]
		if !ok || it.MediaType != xhtmlType {
			continue
		}
		id := b.resolve(it.Href, b.rootfile).Path
		markup, err := b.ReadFile(id)
		if err != nil {
			return err
		}
		b.chapters = append(b.chapters, document.Chapter{
			ID:     id,
			Markup: string(markup),
			Index:  len(b.chapters),
		})
	}

	for _, it := range b.opf.Manifest {
		if !hasProperty(it.Properties, "nav") {
			continue
		}
		path := b.resolve(it.Href, b.rootfile).Path
		markup, err := b.ReadFile(path)
		if err != nil {
			return err
		}
		if b.nav, err = parseNav(string(markup), path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		break
	}

	switch {
	case b.nav != nil && b.nav.bodyStart != nil:
		b.bodyStart, b.hasStart = *b.nav.bodyStart, true
	default:
		if href, ok := b.guide("start", "text"); ok {
			b.bodyStart, b.hasStart = b.resolve(href, b.rootfile), true
		}
	}
	return nil
}

func first(values []string, fallback string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}

func hasProperty(props, name string) bool {
	for _, p := range strings.Fields(props) {
		if p == name {
			return true
		}
	}
	return false
}

// resolve joins href onto base. Broken hrefs resolve to nothing.
func (b *Book) resolve(href, base string) document.Location {
	loc, err := document.ResolveLink(href, base)
	if err != nil {
		return document.Location{}
	}
	return loc
}

func (b *Book) guide(types ...string) (string, bool) {
	for _, t := range types {
		for _, ref := range b.opf.Guide {
			if ref.Type == t && ref.Href != "" {
				return ref.Href, true
			}
		}
	}
	return "", false
}

func (b *Book) decode(name string, v any) error {
	data, err := b.ReadFile(name)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// ReadFile returns the contents of one archive entry.
func (b *Book) ReadFile(name string) ([]byte, error) {
	f, ok := b.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Close releases the archive.
func (b *Book) Close() error { return b.zr.Close() }

// Path returns the file the book was opened from.
func (b *Book) Path() string { return b.path }

// Metadata returns title, author and language.
func (b *Book) Metadata() document.Metadata { return b.metadata }

// Chapters returns the spine documents in reading order.
func (b *Book) Chapters() []document.Chapter { return b.chapters }

// BodyStart returns where the main text begins, if the book says.
func (b *Book) BodyStart() (document.Location, bool) { return b.bodyStart, b.hasStart }

// PageList returns the printed page labels from the nav document.
func (b *Book) PageList() []document.PageLabel {
	if b.nav == nil {
		return nil
	}
	return b.nav.pages
}

// TOC returns the table of contents markup and the path its links are
// relative to. The nav document is preferred, then the guide, then the NCX.
func (b *Book) TOC() (markup, base string, ok bool) {
	if b.nav != nil && b.nav.toc != "" {
		return b.nav.toc, b.nav.path, true
	}
	if href, ok := b.guide("toc"); ok {
		path := b.resolve(href, b.rootfile).Path
		if data, err := b.ReadFile(path); err == nil {
			return string(data), path, true
		}
	}
	if path, ok := b.ncxPath(); ok {
		if data, err := b.ReadFile(path); err == nil {
			if markup, err := ncxMarkup(data); err == nil && markup != "" {
				return markup, path, true
			}
		}
	}
	return "", "", false
}

// Hash identifies the book by content: blake2b-512 over the CRC32 of every
// entry in archive order, each written as a little-endian uint64.
func (b *Book) Hash() string {
	h, _ := blake2b.New512(nil)
	var buf [8]byte
	for _, f := range b.zr.File {
		binary.LittleEndian.PutUint64(buf[:], uint64(f.CRC32))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Extract copies the entry name into dir, keeping its relative path, and
// returns the written file.
func (b *Book) Extract(name, dir string) (string, error) {
	f, ok := b.files[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingEntry, name)
	}
	dest := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %s escapes %s", name, dir)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return "", fmt.Errorf("extracting %s: %w", name, err)
	}
	return dest, out.Close()
}
