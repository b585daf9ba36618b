package pipeline

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-letterpdf/internal/textenc"
)

// Namespaces written on the XHTML root and on foreign subtrees.
const (
	NamespaceXHTML  = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
	NamespaceXLink  = "http://www.w3.org/1999/xlink"
)

const (
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`
	xhtmlDoctype   = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">`

	scriptCDATAStart = "/*<![CDATA[*/"
	scriptCDATAEnd   = "/*]]>*/"
	cdataStart       = "<![CDATA["
	cdataEnd         = "]]>"
	cdataEndSplit    = "]]]]><![CDATA[>"
)

// leadingProlog matches an XML declaration and/or doctype at the start of
// the input. Both are replaced so every parse runs in no-quirks mode.
var leadingProlog = regexp.MustCompile(`(?is)^\s*(?:<\?xml[^>]*\?>\s*)?(?:<!doctype[^>]*>)?`)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// rawTextElements hold unescaped text in HTML. Their content becomes CDATA.
// plaintext is absent: it cannot be closed in HTML and is written as pre.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "iframe": true, "noembed": true,
	"noframes": true, "noscript": true, "xmp": true,
}

// Normalizer turns arbitrary HTML into well-formed XHTML.
type Normalizer interface {
	Normalize(ctx context.Context, markup, encoding string) (string, error)
}

// XHTMLNormalizer repairs HTML with the HTML5 parsing algorithm and
// serializes the tree as XHTML 1.0 Transitional in UTF-8.
//
// The output always carries an XML declaration, the XHTML doctype, an
// xmlns-qualified <html> root, a <head> with a <title> and a <body>.
// Normalizing its own output returns the same string.
type XHTMLNormalizer struct{}

// NewXHTMLNormalizer creates an XHTMLNormalizer.
func NewXHTMLNormalizer() *XHTMLNormalizer {
	return &XHTMLNormalizer{}
}

// Normalize parses markup permissively and returns it as XHTML.
//
// With a UTF-8 (or empty) encoding, markup must be valid UTF-8. With any
// other label, markup holds raw bytes in that encoding and is decoded first.
// The only failures are textenc.ErrUnsupportedEncoding and textenc.ErrDecode.
func (n *XHTMLNormalizer) Normalize(ctx context.Context, markup, encoding string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	decoded, err := textenc.Decode([]byte(markup), encoding)
	if err != nil {
		return "", err
	}

	source := "<!DOCTYPE html>" + leadingProlog.ReplaceAllString(decoded, "")
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		// strings.Reader never fails; keep the contract anyway.
		return "", err
	}

	ensureTitle(doc)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(decoded) + len(decoded)/8 + 256)
	b.WriteString(xmlDeclaration)
	b.WriteByte('\n')
	b.WriteString(xhtmlDoctype)
	b.WriteByte('\n')

	w := &xhtmlWriter{b: &b}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		w.node(c, "")
	}

	return b.String(), nil
}

// ensureTitle adds an empty <title> to <head> when none exists.
func ensureTitle(doc *html.Node) {
	head := findElement(doc, atom.Head)
	if head == nil {
		return
	}
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Title {
			return
		}
	}
	head.AppendChild(&html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: "title"})
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a && n.Namespace == "" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// xhtmlWriter serializes an html.Node tree as XML.
type xhtmlWriter struct {
	b *strings.Builder
}

// node writes n. parentNS is the html.Node namespace of the nearest element
// ancestor ("" for HTML, "svg", "math").
func (w *xhtmlWriter) node(n *html.Node, parentNS string) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.node(c, parentNS)
		}
	case html.DoctypeNode, html.ErrorNode:
		// The doctype is written once by Normalize.
	case html.CommentNode:
		w.b.WriteString("<!--")
		w.b.WriteString(safeComment(n.Data))
		w.b.WriteString("-->")
	case html.TextNode:
		w.b.WriteString(escapeText(n.Data))
	case html.RawNode:
		w.b.WriteString(n.Data)
	case html.ElementNode:
		w.element(n, parentNS)
	}
}

func (w *xhtmlWriter) element(n *html.Node, parentNS string) {
	name := n.Data
	if n.Namespace == "" && name == "plaintext" {
		name = "pre"
	}
	if !isNCName(name) {
		// Unknown prefixes and junk tag names cannot be expressed in XML;
		// keep the content.
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.node(c, parentNS)
		}
		return
	}

	w.b.WriteByte('<')
	w.b.WriteString(name)

	if ns := rootNamespace(n, parentNS); ns != "" {
		w.attr("xmlns", ns)
		if n.Namespace == "svg" {
			w.attr("xmlns:xlink", NamespaceXLink)
		}
	}
	w.attrs(n)

	if n.Namespace == "" && voidElements[name] {
		w.b.WriteString(" />")
		return
	}
	if n.FirstChild == nil && n.Namespace != "" {
		w.b.WriteString(" />")
		return
	}
	w.b.WriteByte('>')

	switch {
	case n.Namespace == "" && rawTextElements[name]:
		w.rawText(n)
	default:
		if n.Namespace == "" && (name == "pre" || name == "textarea" || name == "listing") {
			// The HTML parser drops one newline right after these start tags.
			if c := n.FirstChild; c != nil && c.Type == html.TextNode && strings.HasPrefix(c.Data, "\n") {
				w.b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.node(c, n.Namespace)
		}
	}

	w.b.WriteString("</")
	w.b.WriteString(name)
	w.b.WriteByte('>')
}

// rootNamespace returns the default namespace to declare on n, or "" when
// n inherits it from its parent.
func rootNamespace(n *html.Node, parentNS string) string {
	if n.DataAtom == atom.Html && n.Namespace == "" && (n.Parent == nil || n.Parent.Type == html.DocumentNode) {
		return NamespaceXHTML
	}
	if n.Namespace == parentNS {
		return ""
	}
	switch n.Namespace {
	case "svg":
		return NamespaceSVG
	case "math":
		return NamespaceMathML
	case "":
		return NamespaceXHTML
	}
	return ""
}

// attrs writes n's attributes, dropping namespace declarations (written by
// element), duplicates and names XML cannot express.
func (w *xhtmlWriter) attrs(n *html.Node) {
	seen := make(map[string]bool, len(n.Attr))
	for _, a := range n.Attr {
		name, ok := attrName(a, n.Namespace != "")
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		w.attr(name, a.Val)
	}
}

func (w *xhtmlWriter) attr(name, val string) {
	w.b.WriteByte(' ')
	w.b.WriteString(name)
	w.b.WriteString(`="`)
	w.b.WriteString(escapeAttr(val))
	w.b.WriteByte('"')
}

// attrName returns the qualified XML name of a, or false to drop it.
// Only the predeclared xml prefix and, inside SVG or MathML, xlink survive.
func attrName(a html.Attribute, foreign bool) (string, bool) {
	prefix, local := a.Namespace, a.Key
	if prefix == "" {
		if i := strings.IndexByte(local, ':'); i >= 0 {
			prefix, local = local[:i], local[i+1:]
		}
	}

	if prefix == "xmlns" || (prefix == "" && local == "xmlns") {
		return "", false
	}
	if !isNCName(local) {
		return "", false
	}

	switch prefix {
	case "":
		return local, true
	case "xml":
		return "xml:" + local, true
	case "xlink":
		if foreign {
			return "xlink:" + local, true
		}
	}
	return "", false
}

// rawText writes the content of a script-like element. Text without markup
// characters is written as-is; anything else goes in a CDATA section.
// Wrappers from a previous pass are removed first.
func (w *xhtmlWriter) rawText(n *html.Node) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}

	script := n.Data == "script" || n.Data == "style"
	content := unwrapCDATA(stripInvalidXMLChars(sb.String()), script)
	if content == "" {
		return
	}

	if !strings.ContainsAny(content, "<&") && !strings.Contains(content, cdataEnd) {
		w.b.WriteString(content)
		return
	}

	body := strings.ReplaceAll(content, cdataEnd, cdataEndSplit)
	if script {
		w.b.WriteString(scriptCDATAStart)
		w.b.WriteString(body)
		w.b.WriteString(scriptCDATAEnd)
		return
	}
	w.b.WriteString(cdataStart)
	w.b.WriteString(body)
	w.b.WriteString(cdataEnd)
}

// unwrapCDATA reverses rawText so normalization is idempotent.
func unwrapCDATA(s string, script bool) string {
	start, end := cdataStart, cdataEnd
	if script {
		start, end = scriptCDATAStart, scriptCDATAEnd
	}
	if len(s) < len(start)+len(end) || !strings.HasPrefix(s, start) || !strings.HasSuffix(s, end) {
		return s
	}
	inner := s[len(start) : len(s)-len(end)]
	return strings.ReplaceAll(inner, cdataEndSplit, cdataEnd)
}

// safeComment makes comment text legal in XML (no "--", no trailing "-")
// and stable under HTML reparsing (no leading ">" or "->").
func safeComment(s string) string {
	s = stripInvalidXMLChars(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	if strings.HasSuffix(s, "-") {
		s += " "
	}
	if strings.HasPrefix(s, ">") || strings.HasPrefix(s, "->") {
		s = " " + s
	}
	return s
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\t", "&#9;",
	"\n", "&#10;",
	"\r", "&#13;",
)

func escapeText(s string) string {
	return textEscaper.Replace(stripInvalidXMLChars(s))
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(stripInvalidXMLChars(s))
}

// stripInvalidXMLChars removes runes outside the XML 1.0 Char production.
func stripInvalidXMLChars(s string) string {
	clean := true
	for _, r := range s {
		if !isXMLChar(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// isNCName reports whether s is an XML name without a colon.
func isNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == ':' {
			return false
		}
		if i == 0 {
			if !isNameStart(r) {
				return false
			}
			continue
		}
		if !isNameStart(r) && !isNameChar(r) {
			return false
		}
	}
	return true
}

func isNameStart(r rune) bool {
	switch {
	case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		return true
	case r < 0x80:
		return false
	}
	return unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	switch {
	case r == '-' || r == '.' || (r >= '0' && r <= '9'):
		return true
	case r == 0xB7:
		return true
	case r < 0x80:
		return false
	}
	return unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

// Compile-time interface check.
var _ Normalizer = (*XHTMLNormalizer)(nil)
