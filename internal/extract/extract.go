// Package extract turns an uploaded statement document into ordered
// per-page text blocks.
package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDF extracts plain text from text-based PDF documents. Scanned or
// corrupt documents fail with a decode error; no OCR is attempted.
type PDF struct{}

// NewPDF creates a PDF text extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Pages decodes the document and returns the plain text of each page in
// document order. The input is read only; calling Pages again on the
// same bytes restarts the sequence from the first page.
func (e *PDF) Pages(ctx context.Context, doc []byte) (pages []string, err error) {
	// The pdf reader panics on some malformed inputs instead of
	// returning an error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("decode pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("decode pdf: %w", err)
	}

	totalPages := reader.NumPage()
	pages = make([]string, 0, totalPages)

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := reader.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text from page %d: %w", pageIndex, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}
