package scanner

// Kind classifies a scanned declaration.
type Kind string

const (
	KindFunction      Kind = "function"
	KindAsyncFunction Kind = "async function"
	KindMethod        Kind = "method"
	KindClassMethod   Kind = "classmethod"
	KindStaticMethod  Kind = "staticmethod"
	KindClass         Kind = "class"
)

// Declaration is one callable or class header found in a document.
// StartLine is the first line of the span including decorators; EndLine is
// the last line of the signature header, not the body. Both are 1-based.
// Header holds the exact source slice from the declaration name through the
// end of the return annotation (or parameter list when none), so it covers
// type-parameter lists and multi-line parameter lists verbatim.
// Declarations are immutable once produced.
type Declaration struct {
	Kind       Kind
	Name       string
	StartLine  int
	EndLine    int
	Decorators []string
	Header     string
	Async      bool

	// Enclosing points at the nearest enclosing class declaration, nil at
	// module level or inside a plain function body. Non-owning; used only
	// for name qualification.
	Enclosing *Declaration
}

// QualifiedName returns the declaration name prefixed with its enclosing
// class chain, e.g. "Outer.Inner.method".
func (d *Declaration) QualifiedName() string {
	if d.Enclosing == nil {
		return d.Name
	}
	return d.Enclosing.QualifiedName() + "." + d.Name
}

// IsMethodKind reports whether the declaration lives in a class body.
func (d *Declaration) IsMethodKind() bool {
	switch d.Kind {
	case KindMethod, KindClassMethod, KindStaticMethod:
		return true
	}
	return false
}
