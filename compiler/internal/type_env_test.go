package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestTypeEnv(t *testing.T, source string) TypeEnv {
	env, err := buildTypeEnv(parseTestProgram(t, source))
	require.Nil(t, err, source)
	return env
}

const shapesSource = `
class C extends B {
	A origin
}
class A {
	int x
	int getX() {
		return x
	}
}
class B extends A {
	bool visible
	int area(int scale) {
		return scale
	}
	int area(int scale, int offset) {
		return scale + offset
	}
}
`

func TestTypeEnv_Build(t *testing.T) {
	env := buildTestTypeEnv(t, shapesSource)
	require.Len(t, env, 3)
	b := env.lookUpClass("B")
	require.NotNil(t, b)
	assert.Equal(t, "A", b.ParentName)
	assert.Equal(t, []string{"visible"}, b.Fields())
	require.Len(t, b.Funcs(), 2)
	assert.Equal(t, "area#int", b.Funcs()[0].Canonical)
	assert.Equal(t, "area#int,int", b.Funcs()[1].Canonical)
	assert.Equal(t, []string{"scale", "offset"}, b.Funcs()[1].ParamNames)
	// C is declared before its parent.
	assert.Equal(t, Type("A"), env.lookUpClass("C").VariablesSymbolTable["origin"])
}

func TestTypeEnv_LookupVarTypeByClass(t *testing.T) {
	env := buildTestTypeEnv(t, shapesSource)
	testData := []struct {
		varName, className string
		expectedType       Type
		expectedOwner      string
		ok                 bool
	}{
		{varName: "x", className: "A", expectedType: IntType, expectedOwner: "A", ok: true},
		{varName: "x", className: "B", expectedType: IntType, expectedOwner: "A", ok: true},
		{varName: "x", className: "C", expectedType: IntType, expectedOwner: "A", ok: true},
		{varName: "visible", className: "C", expectedType: BoolType, expectedOwner: "B", ok: true},
		{varName: "visible", className: "A"},
		{varName: "y", className: "B"},
		{varName: "x", className: "Missing"},
	}
	for _, data := range testData {
		tp, owner, ok := env.lookupVarTypeByClass(data.varName, data.className)
		assert.Equal(t, data.ok, ok, data)
		assert.Equal(t, data.expectedType, tp, data)
		assert.Equal(t, data.expectedOwner, owner, data)
	}
}

func TestTypeEnv_LookupMethodTypeByClass(t *testing.T) {
	env := buildTestTypeEnv(t, shapesSource)
	fn, ok := env.lookupMethodTypeByClass("getX#", "C")
	require.True(t, ok)
	assert.Equal(t, "A", fn.ClassName)
	assert.Equal(t, IntType, fn.ReturnType)

	fn, ok = env.lookupMethodTypeByClass(funcCanonicalName("area", []Type{IntType}), "C")
	require.True(t, ok)
	assert.Equal(t, "B", fn.ClassName)

	_, ok = env.lookupMethodTypeByClass(funcCanonicalName("area", []Type{BoolType}), "C")
	assert.False(t, ok)
	_, ok = env.lookupMethodTypeByClass("area#int", "A")
	assert.False(t, ok)
}

func TestTypeEnv_AssertTypeIs(t *testing.T) {
	env := buildTestTypeEnv(t, shapesSource)
	testData := []struct {
		expected, actual Type
		ok               bool
	}{
		{expected: IntType, actual: IntType, ok: true},
		{expected: "A", actual: "A", ok: true},
		{expected: "A", actual: "B", ok: true},
		{expected: "A", actual: "C", ok: true},
		{expected: "B", actual: "A", ok: false},
		{expected: "C", actual: "B", ok: false},
		{expected: IntType, actual: BoolType, ok: false},
		{expected: "A", actual: IntType, ok: false},
		{expected: IntType, actual: VoidType, ok: false},
	}
	for _, data := range testData {
		err := env.assertTypeIs(data.expected, data.actual)
		if data.ok {
			assert.Nil(t, err, data)
			continue
		}
		kind, _ := ErrorKindOf(err)
		assert.Equal(t, TypeMismatch, kind, data)
	}
}

func TestTypeEnv_Ancestors(t *testing.T) {
	env := buildTestTypeEnv(t, shapesSource)
	assert.Equal(t, []string{"A", "B", "C"}, env.ancestors("C"))
	assert.Equal(t, []string{"A"}, env.ancestors("A"))
	assert.True(t, env.isSubclassOf("C", "A"))
	assert.True(t, env.isSubclassOf("A", "A"))
	assert.False(t, env.isSubclassOf("A", "C"))
}

func TestTypeEnv_BuildError(t *testing.T) {
	testData := []struct {
		source   string
		expected ErrorKind
	}{
		{source: "class A {\n}\nclass A {\n}", expected: DuplicateDeclaration},
		{source: "class int {\n}", expected: DuplicateDeclaration},
		{source: "class B extends Missing {\n}", expected: UnknownType},
		{source: "class A {\n\tMissing m\n}", expected: UnknownType},
		{source: "class A {\n\tvoid v\n}", expected: UnknownType},
		{source: "class A {\n\tMissing f() {\n\t}\n}", expected: UnknownType},
		{source: "class A {\n\tvoid f(Missing m) {\n\t}\n}", expected: UnknownType},
		{source: "class A {\n\tint x\n\tbool x\n}", expected: DuplicateDeclaration},
		{source: "class A {\n\tvoid f(int a) {\n\t}\n\tint f(int b) {\n\t\treturn b\n\t}\n}", expected: DuplicateDeclaration},
		{source: "class A {\n\tvoid f(int a, bool a) {\n\t}\n}", expected: DuplicateDeclaration},
		{source: "class A extends A {\n}", expected: CyclicInheritance},
		{source: "class A extends B {\n}\nclass B extends C {\n}\nclass C extends A {\n}", expected: CyclicInheritance},
	}
	for _, data := range testData {
		_, err := buildTypeEnv(parseTestProgram(t, data.source))
		require.NotNil(t, err, data.source)
		kind, _ := ErrorKindOf(err)
		assert.Equal(t, data.expected, kind, data.source)
	}
}

func TestTypeEnv_OverloadsAreDistinct(t *testing.T) {
	env := buildTestTypeEnv(t, "class A {\n\tvoid f(int a) {\n\t}\n\tvoid f(bool a) {\n\t}\n\tvoid f() {\n\t}\n}")
	assert.Len(t, env.lookUpClass("A").FuncSymbolTable, 3)
}
