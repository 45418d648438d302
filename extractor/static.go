package extractor

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StaticDocument is a Document over already-rendered HTML, e.g. a saved
// page or a test fixture. Nothing in it changes after parsing, so
// WaitElement either succeeds at once or waits out ctx.
type StaticDocument struct {
	doc *goquery.Document
}

// NewStaticDocument parses rendered HTML.
func NewStaticDocument(r io.Reader) (*StaticDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &StaticDocument{doc: doc}, nil
}

// NewStaticDocumentString parses rendered HTML held in a string.
func NewStaticDocumentString(html string) (*StaticDocument, error) {
	return NewStaticDocument(strings.NewReader(html))
}

func (d *StaticDocument) WaitElement(ctx context.Context, selector string) error {
	if d.doc.Find(selector).Length() > 0 {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (d *StaticDocument) Element(ctx context.Context, selector string) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := d.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil, ErrElementNotFound
	}
	return staticNode{s: s}, nil
}

func (d *StaticDocument) Elements(ctx context.Context, selector string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel := d.doc.Find(selector)
	nodes := make([]Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, staticNode{s: s})
	})
	return nodes, nil
}

type staticNode struct {
	s *goquery.Selection
}

func (n staticNode) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := n.s.Attr(name)
	return v, ok, nil
}

func (n staticNode) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	found := n.s.Find(selector).First()
	if found.Length() == 0 {
		return "", ErrElementNotFound
	}
	return strings.TrimSpace(found.Text()), nil
}
