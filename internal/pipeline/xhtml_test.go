package pipeline

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/alnah/go-letterpdf/internal/textenc"
)

const prolog = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + xhtmlDoctype + "\n"

func normalize(t *testing.T, markup string) string {
	t.Helper()

	out, err := NewXHTMLNormalizer().Normalize(context.Background(), markup, "UTF-8")
	if err != nil {
		t.Fatalf("Normalize(%q) unexpected error: %v", markup, err)
	}
	return out
}

// assertWellFormed parses s with the strict encoding/xml decoder.
func assertWellFormed(t *testing.T, s string) {
	t.Helper()

	dec := xml.NewDecoder(strings.NewReader(s))
	dec.Strict = true
	depth, roots := 0, 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("output is not well-formed XML: %v\n%s", err, s)
		}
		switch tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if roots != 1 {
		t.Fatalf("output has %d root elements, want 1", roots)
	}
}

func TestXHTMLNormalizer_Exact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fragment gets full document",
			input: "<p>Hello<br>world",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><p>Hello<br />world</p></body></html>`,
		},
		{
			name:  "empty input",
			input: "",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body></body></html>`,
		},
		{
			name:  "existing title kept",
			input: "<html lang=en><head><title>Letter</title></head><body><img src=qr.png alt=QR></body></html>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml" lang="en"><head><title>Letter</title></head><body><img src="qr.png" alt="QR" /></body></html>`,
		},
		{
			name:  "entities decoded and re-escaped",
			input: "<p>AT&T &lt;tag&gt; &copy;&nbsp;x</p>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><p>AT&amp;T &lt;tag&gt; ©` + " " + `x</p></body></html>`,
		},
		{
			name:  "duplicate and invalid attributes dropped",
			input: `<p class="a" class="b" data-x=1 @click="f" v-on:tap="g" xmlns="urn:x">t</p>`,
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><p class="a" data-x="1">t</p></body></html>`,
		},
		{
			name:  "attribute whitespace preserved",
			input: "<p title=\"a\nb\tc\">t</p>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><p title="a&#10;b&#9;c">t</p></body></html>`,
		},
		{
			name:  "prefixed element unwrapped",
			input: "<p>a<o:p>b</o:p>c</p>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><p>abc</p></body></html>`,
		},
		{
			name:  "script with markup characters",
			input: "<script>if (a < b && c) {}</script>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><script>/*<![CDATA[*/if (a < b && c) {}/*]]>*/</script><title></title></head><body></body></html>`,
		},
		{
			name:  "style without markup characters left alone",
			input: "<style>a > b { color: red }</style>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><style>a > b { color: red }</style><title></title></head><body></body></html>`,
		},
		{
			name:  "comment made xml safe",
			input: "<p><!-- a -- b --->x</p>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><p><!-- a - - b - -->x</p></body></html>`,
		},
		{
			name:  "svg gets its namespace",
			input: `<svg viewBox="0 0 10 10"><a xlink:href="#x"><circle r="1"/></a></svg>`,
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 10 10"><a xlink:href="#x"><circle r="1" /></a></svg></body></html>`,
		},
		{
			name:  "mathml gets its namespace",
			input: "<math><mi>x</mi></math>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><math xmlns="http://www.w3.org/1998/Math/MathML"><mi>x</mi></math></body></html>`,
		},
		{
			name:  "control characters removed",
			input: "<p>a\x01b\x0bc</p>",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><p>abc</p></body></html>`,
		},
		{
			name:  "plaintext becomes pre",
			input: "<plaintext>a < b",
			want:  `<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><pre>a &lt; b</pre></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := normalize(t, tt.input)
			if want := prolog + tt.want; got != want {
				t.Errorf("Normalize(%q)\n got: %s\nwant: %s", tt.input, got, want)
			}
			assertWellFormed(t, got)
		})
	}
}

func TestXHTMLNormalizer_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []struct {
		name  string
		input string
	}{
		{name: "misnested", input: "<p>unclosed <b>bold <i>both</b> italic"},
		{name: "implicit tbody", input: "<table><tr><td>1<td>2</table>"},
		{name: "lists", input: "<ul><li>one<li>two</ul>"},
		{name: "table in p", input: "<p>intro<table><tr><td>x</td></tr></table>"},
		{name: "head whitespace", input: "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=utf-8>\n</head>\n<body>\n<p>x</p>\n</body>\n</html>\n"},
		{name: "script cdata end", input: `<script>var s = "]]>" + (1 < 2);</script>`},
		{name: "iframe fallback", input: "<iframe><b>x</b> &amp;</iframe>"},
		{name: "pre newline", input: "<pre>\n\nindented\n</pre><textarea>\nfield</textarea>"},
		{name: "svg foreign html", input: `<svg><foreignObject><p>html<br>inside</p></foreignObject></svg>`},
		{name: "comments", input: "<!--top--><p><!---->x<!--a-->b--></p><!--after-->"},
		{name: "xml declaration", input: `<?xml version="1.0"?><html><body><p>x</p></body></html>`},
		{name: "letter", input: `<!DOCTYPE html><html><head><meta charset="utf-8"><title>Letter</title>
<style>.page-break { page-break-before: always; }</style></head>
<body><div class="letterhead">Zerobase</div><p>Dear owner,</p>
<div class="page-break"></div><img src="qr/zerobase-qr.png" alt="QR"></body></html>`},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			once := normalize(t, tt.input)
			twice := normalize(t, once)
			if once != twice {
				t.Errorf("normalization is not idempotent\nonce:  %s\ntwice: %s", once, twice)
			}
			assertWellFormed(t, once)
		})
	}
}

func TestXHTMLNormalizer_Encoding(t *testing.T) {
	t.Parallel()

	n := NewXHTMLNormalizer()
	ctx := context.Background()

	got, err := n.Normalize(ctx, "<p>Caf\xe9</p>", "latin1")
	if err != nil {
		t.Fatalf("Normalize(latin1) unexpected error: %v", err)
	}
	if !strings.Contains(got, "<p>Café</p>") {
		t.Errorf("latin1 input not decoded to UTF-8: %s", got)
	}
	if !strings.Contains(got, `encoding="UTF-8"`) {
		t.Error("output should always declare UTF-8")
	}

	if _, err := n.Normalize(ctx, "<p>\xff</p>", "UTF-8"); !errors.Is(err, textenc.ErrDecode) {
		t.Errorf("Normalize(invalid UTF-8) error = %v, want textenc.ErrDecode", err)
	}
	if _, err := n.Normalize(ctx, "<p>x</p>", "no-such-charset"); !errors.Is(err, textenc.ErrUnsupportedEncoding) {
		t.Errorf("Normalize(unknown label) error = %v, want textenc.ErrUnsupportedEncoding", err)
	}
}

func TestXHTMLNormalizer_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewXHTMLNormalizer().Normalize(ctx, "<p>x</p>", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Normalize() error = %v, want context.Canceled", err)
	}
}

func TestSafeComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "a--b", want: "a- -b"},
		{in: "a---b", want: "a- - -b"},
		{in: "ends-", want: "ends- "},
		{in: ">x", want: " >x"},
		{in: "->x", want: " ->x"},
	}

	for _, tt := range tests {
		if got := safeComment(tt.in); got != tt.want {
			t.Errorf("safeComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if got := safeComment(tt.in); strings.Contains(got, "--") || strings.HasSuffix(got, "-") {
			t.Errorf("safeComment(%q) = %q is not XML safe", tt.in, got)
		}
	}
}

func TestIsNCName(t *testing.T) {
	t.Parallel()

	valid := []string{"p", "data-x", "_a", "a.b", "h1", "élément"}
	invalid := []string{"", "1a", "-a", "a:b", "@click", `a"b`}

	for _, s := range valid {
		if !isNCName(s) {
			t.Errorf("isNCName(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if isNCName(s) {
			t.Errorf("isNCName(%q) = true, want false", s)
		}
	}
}
