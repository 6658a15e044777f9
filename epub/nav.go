package epub

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"bookterm/document"
)

// navDoc holds what the EPUB 3 navigation document provides.
type navDoc struct {
	path      string
	toc       string
	bodyStart *document.Location
	pages     []document.PageLabel
}

func parseNav(markup, path string) (*navDoc, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	nav := &navDoc{path: path}

	if toc := withType(doc.Find("nav"), "toc").First(); toc.Length() > 0 {
		if nav.toc, err = goquery.OuterHtml(toc); err != nil {
			return nil, err
		}
	}
	if a := withType(doc.Find("a[href]"), "bodymatter").First(); a.Length() > 0 {
		if loc, err := document.ResolveLink(a.AttrOr("href", ""), path); err == nil {
			nav.bodyStart = &loc
		}
	}
	withType(doc.Find("nav"), "page-list").First().Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		loc, err := document.ResolveLink(a.AttrOr("href", ""), path)
		if err != nil {
			return
		}
		nav.pages = append(nav.pages, document.PageLabel{
			Target: loc,
			Label:  strings.TrimSpace(a.Text()),
		})
	})
	return nav, nil
}

// withType keeps the elements whose epub:type lists name.
func withType(s *goquery.Selection, name string) *goquery.Selection {
	return s.FilterFunction(func(_ int, e *goquery.Selection) bool {
		return hasProperty(e.AttrOr("epub:type", ""), name)
	})
}

type navPoint struct {
	Label   string `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Points []navPoint `xml:"navPoint"`
}

type ncxDoc struct {
	Points []navPoint `xml:"navMap>navPoint"`
}

// ncxPath finds the NCX named by the spine, or any manifest item of the
// NCX media type.
func (b *Book) ncxPath() (string, bool) {
	if id := b.opf.Spine.TOC; id != "" {
		for _, it := range b.opf.Manifest {
			if it.ID == id {
				return b.resolve(it.Href, b.rootfile).Path, true
			}
		}
	}
	for _, it := range b.opf.Manifest {
		if it.MediaType == ncxType {
			return b.resolve(it.Href, b.rootfile).Path, true
		}
	}
	return "", false
}

// ncxMarkup converts an NCX navMap into nested list markup.
func ncxMarkup(data []byte) (string, error) {
	var n ncxDoc
	if err := xml.Unmarshal(data, &n); err != nil {
		return "", err
	}
	if len(n.Points) == 0 {
		return "", nil
	}
	var sb strings.Builder
	writePoints(&sb, n.Points)
	return sb.String(), nil
}

func writePoints(sb *strings.Builder, points []navPoint) {
	sb.WriteString("<ol>")
	for _, p := range points {
		fmt.Fprintf(sb, `<li><a href="%s">%s</a>`,
			html.EscapeString(p.Content.Src), html.EscapeString(strings.TrimSpace(p.Label)))
		if len(p.Points) > 0 {
			writePoints(sb, p.Points)
		}
		sb.WriteString("</li>")
	}
	sb.WriteString("</ol>")
}
