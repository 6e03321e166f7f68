package feed

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/domainsuffixes/internal/logging"
	"github.com/domainsuffixes/internal/registry"
	"github.com/domainsuffixes/internal/trie"
)

const (
	rootZoneTableID = "tld-table"
	notAssigned     = "Not assigned"
)

var punyHrefPattern = regexp.MustCompile(`^/domains/root/db/(xn--.+?)\.html$`)

// bidiMarks strips the leading dot of IANA labels and the direction marks
// wrapped around right-to-left scripts.
var bidiMarks = strings.NewReplacer("\u200e", "", "\u200f", "", ".", "")

// ParseRootZone reads the IANA root zone database page and returns every
// assigned TLD. base resolves the relative delegation links. Any row that does
// not have the expected three cells fails the whole parse.
func ParseRootZone(r io.Reader, base string) ([]registry.TLDEntry, error) {
	const source = "root zone"

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, NewParseErrorWithCause(source, 0, "invalid base url", err)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, NewParseErrorWithCause(source, 0, "invalid html", err)
	}

	table := findByID(doc, atom.Table, rootZoneTableID)
	if table == nil {
		return nil, NewParseError(source, 0, "table #"+rootZoneTableID+" not found")
	}
	body := firstChild(table, atom.Tbody)
	if body == nil {
		return nil, NewParseError(source, 0, "table has no body")
	}

	var entries []registry.TLDEntry
	row := 0
	for tr := body.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != html.ElementNode || tr.DataAtom != atom.Tr {
			continue
		}
		row++

		cells := children(tr, atom.Td)
		if len(cells) != 3 {
			return nil, NewParseError(source, row, fmt.Sprintf("row has %d cells, want 3", len(cells)))
		}

		link := findFirst(cells[0], atom.A)
		if link == nil {
			return nil, NewParseError(source, row, "tld cell has no link")
		}
		tld := bidiMarks.Replace(strings.TrimSpace(text(link)))
		if tld == "" {
			return nil, NewParseError(source, row, "empty tld")
		}

		registryName := strings.TrimSpace(text(cells[2]))
		if registryName == notAssigned {
			continue
		}

		typ := strings.TrimSpace(text(cells[1]))
		tldType, ok := trie.ParseTLDType(typ)
		if !ok {
			return nil, NewFieldParseError(source, row, "type", typ, "unknown tld type")
		}

		href := attr(link, "href")
		ref, err := baseURL.Parse(href)
		if err != nil {
			return nil, NewParseErrorWithCause(source, row, "invalid delegation link", err)
		}

		entry := registry.TLDEntry{
			Suffix:        tld,
			DelegationRef: ref.String(),
			Type:          tldType,
			Registry:      registryName,
		}
		if m := punyHrefPattern.FindStringSubmatch(href); m != nil {
			entry.Punycode = m[1]
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, NewParseError(source, 0, "no assigned tlds")
	}
	return entries, nil
}

// ApplyDates sets each entry's creation date from dates. Missing dates are
// logged and left empty.
func ApplyDates(entries []registry.TLDEntry, dates map[string]time.Time) {
	if len(dates) == 0 {
		logging.Warn("no registration dates loaded")
		return
	}
	missing := 0
	for i := range entries {
		d, ok := dates[entries[i].Suffix]
		if !ok {
			logging.Debug("registration date not found", logging.TLD(entries[i].Suffix))
			missing++
			continue
		}
		entries[i].Created = &d
	}
	if missing > 0 {
		logging.Warn("registration dates missing", logging.Count("tld", missing))
	}
}

func findByID(n *html.Node, a atom.Atom, id string) *html.Node {
	return find(n, func(n *html.Node) bool {
		return n.DataAtom == a && attr(n, "id") == id
	})
}

// findFirst returns the first element below n, at any depth, of kind a.
func findFirst(n *html.Node, a atom.Atom) *html.Node {
	return find(n, func(c *html.Node) bool { return c != n && c.DataAtom == a })
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func firstChild(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

func children(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
