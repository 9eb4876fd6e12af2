// Package dom implements the DOM tree the scripting layer operates on.
//
// Nodes are backed by golang.org/x/net/html nodes so that parsing,
// serialization and selector matching share one tree. A Document keeps the
// identity map from raw nodes to *Node values: asking for the same position
// in the tree twice yields the same *Node.
package dom

// NodeType is the numeric node type exposed as Node.nodeType.
type NodeType uint16

const (
	ElementNode          NodeType = 1
	AttributeNode        NodeType = 2
	TextNode             NodeType = 3
	CDATASectionNode     NodeType = 4
	CommentNode          NodeType = 8
	DocumentNode         NodeType = 9
	DocumentTypeNode     NodeType = 10
	DocumentFragmentNode NodeType = 11
)

// String returns the constant name used on the Node interface object.
func (nt NodeType) String() string {
	switch nt {
	case ElementNode:
		return "ELEMENT_NODE"
	case AttributeNode:
		return "ATTRIBUTE_NODE"
	case TextNode:
		return "TEXT_NODE"
	case CDATASectionNode:
		return "CDATA_SECTION_NODE"
	case CommentNode:
		return "COMMENT_NODE"
	case DocumentNode:
		return "DOCUMENT_NODE"
	case DocumentTypeNode:
		return "DOCUMENT_TYPE_NODE"
	case DocumentFragmentNode:
		return "DOCUMENT_FRAGMENT_NODE"
	default:
		return "UNKNOWN_NODE"
	}
}

// Namespace URIs.
const (
	HTMLNamespace   = "http://www.w3.org/1999/xhtml"
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
)
