// Package manifest reads addon manifests and serializes the repository
// aggregate. Manifests are kept as a generic node tree so unrecognized
// children survive aggregation verbatim.
package manifest

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	// RootTag is the expected root element of a package manifest.
	RootTag = "addon"
	// AggregateTag is the root element of the repository aggregate.
	AggregateTag = "addons"

	// DefaultVersion substitutes a missing version attribute.
	DefaultVersion = "0.0.0"
)

// assetTags are the child elements whose text declares a media file
// shipped next to the manifest.
var assetTags = []string{"icon", "fanart", "screenshot"}

// Node is one element of a parsed manifest. Attributes and children keep
// document order so serialization is stable.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []*Node    `xml:",any"`
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Name.Local == name && attr.Name.Space == "" {
			return attr.Value, true
		}
	}

	return "", false
}

func (n *Node) findAllText(tag string, out []string) []string {
	for _, child := range n.Nodes {
		if child.XMLName.Local == tag {
			if text := strings.TrimSpace(child.Content); text != "" {
				out = append(out, text)
			}
		}

		out = child.findAllText(tag, out)
	}

	return out
}

// Manifest is one package manifest: the typed identity plus the raw tree
// for round-trip serialization.
type Manifest struct {
	ID      string
	Version string
	Assets  []string
	Root    *Node
	Raw     []byte
}

// Parse decodes manifest bytes. The version defaults to DefaultVersion and
// a missing id is legal; asset declarations with empty text or repeated
// paths are dropped. The root tag is not enforced here, callers that
// require it check Root.XMLName.
func Parse(data []byte) (*Manifest, error) {
	root := &Node{}
	if err := xml.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("cannot parse manifest: %w", err)
	}

	m := &Manifest{
		Version: DefaultVersion,
		Root:    root,
		Raw:     data,
	}

	if id, ok := root.Attr("id"); ok {
		m.ID = id
	}
	if ver, ok := root.Attr("version"); ok && ver != "" {
		m.Version = ver
	}

	seen := make(map[string]struct{})
	for _, tag := range assetTags {
		for _, asset := range root.findAllText(tag, nil) {
			if _, exists := seen[asset]; exists {
				continue
			}

			seen[asset] = struct{}{}
			m.Assets = append(m.Assets, asset)
		}
	}

	return m, nil
}

// Aggregate wraps package roots, already sorted by the caller, into a new
// aggregate document.
func Aggregate(roots []*Node) *Node {
	return &Node{
		XMLName: xml.Name{Local: AggregateTag},
		Nodes:   roots,
	}
}
