package letterpdf

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// testPDF builds a minimal PDF with the given number of empty pages.
func testPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]byte, 0, pages*8)
	for i := range pages {
		kids = fmt.Appendf(kids, "%d 0 R ", i+3)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for range pages {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestCountPages(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d pages", n), func(t *testing.T) {
			t.Parallel()

			got, err := CountPages(testPDF(n))
			if err != nil {
				t.Fatalf("CountPages() unexpected error: %v", err)
			}
			if got != n {
				t.Errorf("CountPages() = %d, want %d", got, n)
			}
		})
	}
}

func TestCountPages_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a PDF", data: []byte("<html></html>")},
		{name: "truncated", data: []byte("%PDF-1.4\n1 0 obj\n")},
		{name: "cut before trailer", data: testPDF(2)[:120]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := CountPages(tt.data); !errors.Is(err, ErrParse) {
				t.Errorf("CountPages() error = %v, want ErrParse", err)
			}
		})
	}
}
