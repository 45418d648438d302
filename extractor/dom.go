package extractor

import (
	"context"
	"errors"
)

// ErrElementNotFound is returned by a Document or Node when a selector
// matches nothing.
var ErrElementNotFound = errors.New("element not found")

// Document is the slice of a browser page the extractor needs. Every call
// is bounded by ctx; implementations that poll (a live browser) keep
// retrying until ctx expires.
type Document interface {
	// WaitElement blocks until at least one element matches selector.
	WaitElement(ctx context.Context, selector string) error

	// Element returns the first element matching selector.
	Element(ctx context.Context, selector string) (Node, error)

	// Elements returns every element currently matching selector, in
	// document order. It does not wait.
	Elements(ctx context.Context, selector string) ([]Node, error)
}

// Node is a single element of a Document.
type Node interface {
	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)

	// Text returns the trimmed rendered text of the first descendant
	// matching selector. A live node waits for the descendant to appear
	// until ctx ends.
	Text(ctx context.Context, selector string) (string, error)
}
