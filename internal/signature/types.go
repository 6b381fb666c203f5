package signature

import "github.com/ubreblanca/vscode-py-sig-lens/internal/scanner"

// NodeKind selects the active shape of a Node.
type NodeKind string

const (
	NodeName       NodeKind = "name"
	NodeGeneric    NodeKind = "generic"
	NodeUnion      NodeKind = "union"
	NodeOptional   NodeKind = "optional"
	NodeCallable   NodeKind = "callable"
	NodeLiteral    NodeKind = "literal"
	NodeForwardRef NodeKind = "forward_ref"
	NodeAny        NodeKind = "any"
	NodeUnknown    NodeKind = "unknown"
)

// Node is one parsed type annotation. Exactly one shape is active, selected
// by Kind; fields not used by that shape stay zero. An annotation whose
// structure cannot be recovered degrades to NodeUnknown instead of failing
// the surrounding parse.
type Node struct {
	Kind NodeKind

	// Name holds the dotted name of NodeName nodes and the quoted content of
	// NodeForwardRef nodes.
	Name string

	// Base is the generic's base type (the X of X[A, B]).
	Base *Node

	// Args carries the generic's arguments, the union's members, and the
	// callable's parameters, in declared order.
	Args []*Node

	// Elem is the optional's element and the callable's return type.
	Elem *Node

	// Tokens holds Literal members as raw source text, never evaluated.
	Tokens []string
}

func NewName(name string) *Node {
	return &Node{Kind: NodeName, Name: name}
}

func NewGeneric(base *Node, args ...*Node) *Node {
	return &Node{Kind: NodeGeneric, Base: base, Args: args}
}

func NewUnion(members ...*Node) *Node {
	return &Node{Kind: NodeUnion, Args: members}
}

func NewOptional(elem *Node) *Node {
	return &Node{Kind: NodeOptional, Elem: elem}
}

func NewCallable(params []*Node, ret *Node) *Node {
	return &Node{Kind: NodeCallable, Args: params, Elem: ret}
}

func NewLiteral(tokens ...string) *Node {
	return &Node{Kind: NodeLiteral, Tokens: tokens}
}

func NewForwardRef(text string) *Node {
	return &Node{Kind: NodeForwardRef, Name: text}
}

func NewAny() *Node {
	return &Node{Kind: NodeAny}
}

func NewUnknown() *Node {
	return &Node{Kind: NodeUnknown}
}

// Equal reports structural equality of two annotation nodes. Literal members
// compare as opaque text.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind || n.Name != other.Name {
		return false
	}
	if !n.Base.Equal(other.Base) || !n.Elem.Equal(other.Elem) {
		return false
	}
	if len(n.Args) != len(other.Args) || len(n.Tokens) != len(other.Tokens) {
		return false
	}
	for i := range n.Args {
		if !n.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	for i := range n.Tokens {
		if n.Tokens[i] != other.Tokens[i] {
			return false
		}
	}
	return true
}

// ParamKind classifies how a parameter binds its arguments.
type ParamKind string

const (
	ParamPositional    ParamKind = "positional"
	ParamKeywordOnly   ParamKind = "keyword-only"
	ParamVarPositional ParamKind = "*args"
	ParamVarKeyword    ParamKind = "**kwargs"
)

// Parameter is one entry of a parameter list. Annotation presence and
// default presence are independent: an unannotated parameter with a default
// has HasDefault set and a nil Annotation.
type Parameter struct {
	Name       string
	Annotation *Node
	HasDefault bool
	Kind       ParamKind
}

// TypeParameter is one entry of a bracketed type-parameter list
// (name[T: Bound]). Bound is nil for unbounded parameters.
type TypeParameter struct {
	Name  string
	Bound *Node
}

// Model is the structured signature of one declaration, rebuilt wholesale on
// every pipeline run. Return is nil when the declaration has no return
// annotation, which renders differently from an explicit None annotation.
type Model struct {
	Decl       *scanner.Declaration
	TypeParams []TypeParameter
	Params     []Parameter
	Return     *Node
}
