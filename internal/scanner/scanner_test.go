package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Scanner:
// - Extract module-level functions with accurate lines and header text
// - Extract classes and associate their methods (enclosing reference)
// - Classify classmethod/staticmethod via decorators
// - Record decorators verbatim and anchor spans at the first decorator line
// - Handle async functions and async methods
// - Delimit multi-line signatures (EndLine at the return annotation)
// - Carry type-parameter lists in the header text
// - Treat dunder names as ordinary names
// - Nested defs are plain functions; nested classes qualify through the chain
// - Malformed declarations are skipped, valid neighbors survive
// - Empty and non-UTF-8 input yield no declarations and no panic

func findDecl(decls []*Declaration, name string) *Declaration {
	for _, d := range decls {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func TestScanner_FunctionsAndMethods(t *testing.T) {
	t.Parallel()

	source := []byte(`def top(x: int) -> int:
    return x


class Calculator:
    def __init__(self, precision: int = 2):
        self.precision = precision

    @classmethod
    def create(cls) -> "Calculator":
        return cls()

    @staticmethod
    def is_valid_number(value: float) -> bool:
        return value == value
`)

	decls := New().Scan(source)
	require.Len(t, decls, 5)

	top := decls[0]
	assert.Equal(t, KindFunction, top.Kind)
	assert.Equal(t, "top", top.Name)
	assert.Equal(t, 1, top.StartLine)
	assert.Equal(t, 1, top.EndLine)
	assert.Equal(t, "top(x: int) -> int", top.Header)
	assert.Nil(t, top.Enclosing)

	calc := decls[1]
	assert.Equal(t, KindClass, calc.Kind)
	assert.Equal(t, "Calculator", calc.Name)
	assert.Equal(t, 5, calc.StartLine)
	assert.Equal(t, 5, calc.EndLine)
	assert.Equal(t, "Calculator", calc.Header)

	initMethod := decls[2]
	assert.Equal(t, KindMethod, initMethod.Kind)
	assert.Equal(t, "__init__", initMethod.Name)
	assert.Equal(t, 6, initMethod.StartLine)
	require.NotNil(t, initMethod.Enclosing)
	assert.Equal(t, "Calculator.__init__", initMethod.QualifiedName())
	assert.Equal(t, "__init__(self, precision: int = 2)", initMethod.Header)

	create := decls[3]
	assert.Equal(t, KindClassMethod, create.Kind)
	assert.Equal(t, 9, create.StartLine, "span starts at the decorator line")
	assert.Equal(t, 10, create.EndLine)
	assert.Equal(t, []string{"classmethod"}, create.Decorators)
	assert.Equal(t, `create(cls) -> "Calculator"`, create.Header)

	isValid := decls[4]
	assert.Equal(t, KindStaticMethod, isValid.Kind)
	assert.Equal(t, "Calculator.is_valid_number", isValid.QualifiedName())
}

func TestScanner_Decorators(t *testing.T) {
	t.Parallel()

	source := []byte(`@functools.lru_cache(maxsize=128)
@custom.marker
def cached(x: int) -> int:
    return x * 2
`)

	decls := New().Scan(source)
	require.Len(t, decls, 1)

	cached := decls[0]
	assert.Equal(t, KindFunction, cached.Kind)
	assert.Equal(t, 1, cached.StartLine)
	assert.Equal(t, 3, cached.EndLine)
	assert.Equal(t, []string{"functools.lru_cache(maxsize=128)", "custom.marker"}, cached.Decorators)
}

func TestScanner_AsyncFunctions(t *testing.T) {
	t.Parallel()

	source := []byte(`async def fetch_data(url: str) -> str:
    return url

class Service:
    async def process(self, item: dict) -> bool:
        return True
`)

	decls := New().Scan(source)
	require.Len(t, decls, 3)

	fetch := findDecl(decls, "fetch_data")
	require.NotNil(t, fetch)
	assert.Equal(t, KindAsyncFunction, fetch.Kind)
	assert.True(t, fetch.Async)
	assert.Equal(t, "fetch_data(url: str) -> str", fetch.Header)

	process := findDecl(decls, "process")
	require.NotNil(t, process)
	assert.Equal(t, KindMethod, process.Kind, "async methods keep the method kind")
	assert.True(t, process.Async)
}

func TestScanner_MultiLineSignature(t *testing.T) {
	t.Parallel()

	source := []byte(`def complex_function(
    text: str,
    count: int = 1,
    tags: list[str] = ["a", "b"],
    *args,
    **kwargs,
) -> Optional[str]:
    return None
`)

	decls := New().Scan(source)
	require.Len(t, decls, 1)

	fn := decls[0]
	assert.Equal(t, 1, fn.StartLine)
	assert.Equal(t, 7, fn.EndLine, "signature ends at the return annotation line")
	assert.True(t, strings.HasPrefix(fn.Header, "complex_function("))
	assert.True(t, strings.HasSuffix(fn.Header, "Optional[str]"))
	assert.Contains(t, fn.Header, "**kwargs")
}

func TestScanner_TypeParameters(t *testing.T) {
	t.Parallel()

	source := []byte(`def find_max[T: Comparable](items: list[T]) -> T:
    return items[0]

class Stack[T]:
    def push(self, item: T) -> None:
        pass
`)

	decls := New().Scan(source)
	require.Len(t, decls, 3)

	findMax := decls[0]
	assert.Equal(t, "find_max[T: Comparable](items: list[T]) -> T", findMax.Header)

	stack := decls[1]
	assert.Equal(t, KindClass, stack.Kind)
	assert.Equal(t, "Stack[T]", stack.Header, "class header keeps the type-parameter list")
}

func TestScanner_ClassWithBases(t *testing.T) {
	t.Parallel()

	source := []byte(`class Node(Generic[T]):
    def __init__(self, value: T, next_node: "Node | None" = None):
        self.value = value
`)

	decls := New().Scan(source)
	require.Len(t, decls, 2)
	assert.Equal(t, "Node(Generic[T])", decls[0].Header)
	assert.Equal(t, `__init__(self, value: T, next_node: "Node | None" = None)`, decls[1].Header)
}

func TestScanner_DunderNames(t *testing.T) {
	t.Parallel()

	source := []byte(`class Wrapper:
    def __call__(self) -> int:
        return 0

    def __mangled_helper(self, __x: int) -> int:
        return __x
`)

	decls := New().Scan(source)
	require.Len(t, decls, 3)

	call := findDecl(decls, "__call__")
	require.NotNil(t, call)
	assert.Equal(t, KindMethod, call.Kind)
	assert.Equal(t, "Wrapper.__call__", call.QualifiedName())

	mangled := findDecl(decls, "__mangled_helper")
	require.NotNil(t, mangled)
	assert.Equal(t, "__mangled_helper(self, __x: int) -> int", mangled.Header)
}

func TestScanner_NestedDeclarations(t *testing.T) {
	t.Parallel()

	source := []byte(`def outer():
    def inner(x: int) -> int:
        return x

    class Local:
        def method(self) -> None:
            pass

class Outer:
    class Inner:
        def leaf(self) -> str:
            return ""
`)

	decls := New().Scan(source)
	require.Len(t, decls, 7)

	inner := findDecl(decls, "inner")
	require.NotNil(t, inner)
	assert.Equal(t, KindFunction, inner.Kind, "a def nested in a def is a plain function")
	assert.Nil(t, inner.Enclosing)

	method := findDecl(decls, "method")
	require.NotNil(t, method)
	assert.Equal(t, KindMethod, method.Kind)
	assert.Equal(t, "Local.method", method.QualifiedName())

	leaf := findDecl(decls, "leaf")
	require.NotNil(t, leaf)
	assert.Equal(t, "Outer.Inner.leaf", leaf.QualifiedName())
}

func TestScanner_MalformedNeighbors(t *testing.T) {
	t.Parallel()

	source := []byte(`def before() -> int:
    return 1

def broken(a, b

def after(x: str) -> str:
    return x
`)

	var decls []*Declaration
	require.NotPanics(t, func() {
		decls = New().Scan(source)
	})

	before := findDecl(decls, "before")
	require.NotNil(t, before, "declaration before the malformed one survives")
	assert.Equal(t, "before() -> int", before.Header)

	after := findDecl(decls, "after")
	require.NotNil(t, after, "declaration after the malformed one survives")
	assert.Equal(t, "after(x: str) -> str", after.Header)
}

func TestScanner_EmptyAndInvalidInput(t *testing.T) {
	t.Parallel()

	s := New()

	assert.Empty(t, s.Scan(nil))
	assert.Empty(t, s.Scan([]byte("")))
	assert.Empty(t, s.Scan([]byte{0xff, 0xfe, 0x00}), "non-UTF-8 input is rejected")
	assert.Empty(t, s.Scan([]byte("x = 1\nprint(x)\n")), "no declarations means no results")
}

func TestScanner_ConditionalDeclarations(t *testing.T) {
	t.Parallel()

	source := []byte(`import sys

if sys.version_info >= (3, 12):
    def modern(x: int) -> int:
        return x
else:
    def modern(x):
        return x
`)

	decls := New().Scan(source)
	require.Len(t, decls, 2, "declarations under compound statements are found")
	assert.Equal(t, KindFunction, decls[0].Kind)
	assert.Equal(t, KindFunction, decls[1].Kind)
}
