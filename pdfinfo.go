package letterpdf

import (
	"bytes"
	"fmt"

	"rsc.io/pdf"
)

// CountPages returns the number of pages in a PDF document.
func CountPages(data []byte) (n int, err error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return 0, fmt.Errorf("%w: not a PDF", ErrParse)
	}

	// rsc.io/pdf panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: reading PDF: %v", ErrParse, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: reading PDF: %v", ErrParse, err)
	}
	return r.NumPage(), nil
}
