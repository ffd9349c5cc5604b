package manifest

import (
	"bytes"
	"encoding/xml"
	"strings"
)

const xmlDeclaration = "<?xml version='1.0' encoding='UTF-8'?>\n"

var (
	// Text keeps newlines and tabs literal; only markup characters are
	// replaced, so leaf text round-trips verbatim.
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\r", "&#13;",
		"\n", "&#10;",
		"\t", "&#09;",
	)
)

// Serialize renders root as a pretty-printed document: XML declaration,
// two-space indentation per level, "\n" line endings. Output is
// byte-stable for an identical tree.
func Serialize(root *Node) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	writeNode(&buf, root, 0)

	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)

	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(n.XMLName.Local)
	for _, attr := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(attrName(attr.Name))
		buf.WriteString(`="`)
		buf.WriteString(attrEscaper.Replace(attr.Value))
		buf.WriteByte('"')
	}

	switch {
	case len(n.Nodes) > 0:
		buf.WriteByte('>')
		// Mixed content: non-whitespace text goes on the opening line.
		// Whitespace-only text between children is indentation of the
		// source document and is replaced by ours.
		if text := strings.TrimSpace(n.Content); text != "" {
			buf.WriteString(textEscaper.Replace(text))
		}
		buf.WriteByte('\n')
		for _, child := range n.Nodes {
			writeNode(buf, child, depth+1)
		}
		buf.WriteString(indent)
		buf.WriteString("</")
		buf.WriteString(n.XMLName.Local)
		buf.WriteString(">\n")
	case n.Content != "":
		buf.WriteByte('>')
		buf.WriteString(textEscaper.Replace(n.Content))
		buf.WriteString("</")
		buf.WriteString(n.XMLName.Local)
		buf.WriteString(">\n")
	default:
		buf.WriteString(" />\n")
	}
}

func attrName(name xml.Name) string {
	if name.Space == "xmlns" {
		return "xmlns:" + name.Local
	}

	return name.Local
}
