// Package mock provides test doubles for prreview interfaces.
package mock

import (
	"io"

	"github.com/fwojciec/prreview"
)

// Compile-time interface verification.
var _ prreview.Parser = (*Parser)(nil)

// Parser is a mock implementation of prreview.Parser.
type Parser struct {
	ParseFn func(r io.Reader) (*prreview.Diff, error)
}

func (p *Parser) Parse(r io.Reader) (*prreview.Diff, error) {
	return p.ParseFn(r)
}
