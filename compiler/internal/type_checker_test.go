package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeCheckTestProgram(t *testing.T, source string) (*ProgramAst, TypeEnv) {
	program := parseTestProgram(t, source)
	env, err := typeCheck(program)
	require.Nil(t, err, source)
	return program, env
}

// wrapMethod puts body into `void run()` of class T, next to the given members.
func wrapMethod(members string, body string) string {
	return "class A {\n\tint x\n}\nclass B extends A {\n\tint y\n}\n" +
		"class T {\n" + members + "\n\tvoid run() {\n" + body + "\n\t}\n}\n"
}

func TestTypeChecker_TypeCheckExpression(t *testing.T) {
	testData := []struct {
		content  string
		expected Type
	}{
		{content: "15", expected: IntType},
		{content: "true", expected: BoolType},
		{content: "1 + 2 * 3", expected: IntType},
		{content: "1 == 2", expected: BoolType},
		{content: "true != false", expected: BoolType},
		{content: "!(1 == 2) || false", expected: BoolType},
		{content: "-(4 / 2)", expected: IntType},
	}
	for _, data := range testData {
		expr, err := parseExpressionSource(data.content)
		require.Nil(t, err, data.content)
		tp, err := typeCheckExpression(TypeEnv{}, expr)
		require.Nil(t, err, data.content)
		assert.Equal(t, data.expected, tp, data.content)
		assert.Equal(t, data.expected, expr.ResolvedType(), data.content)
	}
}

func TestTypeChecker_TypeCheckExpressionError(t *testing.T) {
	testData := []struct {
		content  string
		expected ErrorKind
	}{
		{content: "!2", expected: InvalidOperation},
		{content: "-true", expected: InvalidOperation},
		{content: "1 + true", expected: InvalidOperation},
		{content: "1 && 2", expected: InvalidOperation},
		{content: "1 == false", expected: InvalidOperation},
		{content: "x", expected: UndeclaredVariable},
		{content: "f()", expected: UndeclaredMethod},
		{content: "new B", expected: UnknownType},
	}
	for _, data := range testData {
		expr, err := parseExpressionSource(data.content)
		require.Nil(t, err, data.content)
		_, err = typeCheckExpression(TypeEnv{}, expr)
		require.NotNil(t, err, data.content)
		kind, _ := ErrorKindOf(err)
		assert.Equal(t, data.expected, kind, data.content)
	}
}

func TestTypeChecker_Annotations(t *testing.T) {
	program, _ := typeCheckTestProgram(t, wrapMethod("\tB b\n\tint f(int v) {\n\t\treturn v\n\t}",
		"\t\tint s = b.x + f(1)\n\t\tb.y = s"))
	run := program.Classes[2].Methods()[1]
	assert.Equal(t, "run#", run.Canonical)
	decl := run.FuncBody.Statements[0].(*VarDeclareAssignAst)
	sum := decl.Value.(*BinaryExpressionAst)
	assert.Equal(t, "+#int,int", sum.Canonical)
	assert.Equal(t, IntType, sum.ResolvedType())

	field := sum.LeftExpr.(*VariableAst)
	assert.Equal(t, "A", field.Owner)
	assert.Equal(t, Type("B"), field.ObjectType)
	assert.Equal(t, IntType, field.ResolvedType())

	call := sum.RightExpr.(*CallAst)
	assert.Equal(t, "f#int", call.Canonical)
	assert.Equal(t, "T", call.Owner)
	assert.Equal(t, Type("T"), call.ObjectType)
	assert.Equal(t, IntType, call.ResolvedType())

	let := run.FuncBody.Statements[1].(*LetStatementAst)
	assert.Equal(t, "B", let.LetVariable.Owner)
	local := let.Value.(*VariableAst)
	assert.Equal(t, "", local.Owner)
	assert.Equal(t, IntType, local.ResolvedType())
}

func TestTypeChecker_Upcast(t *testing.T) {
	// A derived value is accepted wherever an ancestor is expected.
	typeCheckTestProgram(t, wrapMethod("\tA keep(A a) {\n\t\treturn a\n\t}\n\tA make() {\n\t\treturn new B\n\t}",
		"\t\tA a = new B\n\t\tB b = new B\n\t\ta = b\n\t\tA c = make()"))

	// But not the other way around.
	testData := []string{
		"\t\tB b = new A",
		"\t\tA a = new A\n\t\tB b = new B\n\t\tb = a",
	}
	for _, body := range testData {
		_, err := typeCheck(parseTestProgram(t, wrapMethod("", body)))
		require.NotNil(t, err, body)
		kind, _ := ErrorKindOf(err)
		assert.Equal(t, TypeMismatch, kind, body)
	}
}

func TestTypeChecker_Overloads(t *testing.T) {
	program, _ := typeCheckTestProgram(t, wrapMethod(
		"\tint f(int a) {\n\t\treturn a\n\t}\n\tint f(int a, int b) {\n\t\treturn a + b\n\t}\n\tint f(bool a) {\n\t\treturn 0\n\t}",
		"\t\tint r = f(1)\n\t\tr = f(1, 2)\n\t\tr = f(true)"))
	statements := program.Classes[2].Methods()[3].FuncBody.Statements
	assert.Equal(t, "f#int", statements[0].(*VarDeclareAssignAst).Value.(*CallAst).Canonical)
	assert.Equal(t, "f#int,int", statements[1].(*LetStatementAst).Value.(*CallAst).Canonical)
	assert.Equal(t, "f#bool", statements[2].(*LetStatementAst).Value.(*CallAst).Canonical)

	// Arguments are not upcast to find an overload.
	_, err := typeCheck(parseTestProgram(t, wrapMethod("\tvoid g(A a) {\n\t}", "\t\tg(new B)")))
	kind, _ := ErrorKindOf(err)
	assert.Equal(t, UndeclaredMethod, kind)
}

func TestTypeChecker_Scoping(t *testing.T) {
	// Nested blocks shadow, and a sibling block can reuse a name.
	typeCheckTestProgram(t, wrapMethod("", `
		int v = 1
		if v == 1 {
			bool v = true
		} else {
			int v = 2
		}
		while true {
			int w = v
		}
		{
			bool w = false
		}
		int w = v`))

	testData := []struct {
		members, body string
		expected      ErrorKind
	}{
		{body: "\t\tif true {\n\t\t\tint z = 1\n\t\t}\n\t\tz = 2", expected: UndeclaredVariable},
		{body: "\t\twhile false {\n\t\t\tint z = 1\n\t\t}\n\t\tint q = z", expected: UndeclaredVariable},
		{body: "\t\tint z\n\t\tint z", expected: DuplicateDeclaration},
		{body: "\t\tint z\n\t\tbool z", expected: DuplicateDeclaration},
		{members: "\tvoid p(int a) {\n\t\tint a = 1\n\t}", expected: DuplicateDeclaration},
		{body: "\t\tMissing m", expected: UnknownType},
		{body: "\t\tint z = z", expected: UndeclaredVariable},
	}
	for _, data := range testData {
		_, err := typeCheck(parseTestProgram(t, wrapMethod(data.members, data.body)))
		require.NotNil(t, err, data.body)
		kind, _ := ErrorKindOf(err)
		assert.Equal(t, data.expected, kind, data.members+data.body)
	}
}

func TestTypeChecker_LocalsBeforeMembers(t *testing.T) {
	program, _ := typeCheckTestProgram(t, wrapMethod("\tint x", "\t\tbool x = true\n\t\tx = false\n\t\tthis.x = 1"))
	statements := program.Classes[2].Methods()[0].FuncBody.Statements
	local := statements[1].(*LetStatementAst).LetVariable
	assert.Equal(t, BoolType, local.ResolvedType())
	assert.Equal(t, "", local.Owner)
	member := statements[2].(*LetStatementAst).LetVariable
	assert.Equal(t, IntType, member.ResolvedType())
	assert.Equal(t, "T", member.Owner)
}

func TestTypeChecker_Error(t *testing.T) {
	testData := []struct {
		members, body string
		expected      ErrorKind
	}{
		{body: "\t\tint z = true", expected: TypeMismatch},
		{body: "\t\tif 1 {\n\t\t}", expected: TypeMismatch},
		{body: "\t\twhile 1 + 1 {\n\t\t}", expected: TypeMismatch},
		{body: "\t\treturn 1", expected: TypeMismatch},
		{members: "\tint f() {\n\t\treturn\n\t}", expected: TypeMismatch},
		{members: "\tint f() {\n\t\treturn true\n\t}", expected: TypeMismatch},
		{body: "\t\tundeclared = 1", expected: UndeclaredVariable},
		{body: "\t\tA a = new A\n\t\ta.y = 1", expected: UndeclaredVariable},
		{body: "\t\tmissing()", expected: UndeclaredMethod},
		{body: "\t\tA a = new A\n\t\ta.run()", expected: UndeclaredMethod},
		{body: "\t\tint i = 1\n\t\ti.x = 2", expected: InvalidOperation},
		{body: "\t\tint i = 1\n\t\ti.f()", expected: InvalidOperation},
		{body: "\t\tthis = new T", expected: InvalidOperation},
		{body: "\t\tint z = run()", expected: TypeMismatch},
		{body: "\t\tint z = 1 + run()", expected: InvalidOperation},
		{body: "\t\tA a = new Missing", expected: UnknownType},
	}
	for _, data := range testData {
		_, err := typeCheck(parseTestProgram(t, wrapMethod(data.members, data.body)))
		require.NotNil(t, err, data.body)
		kind, _ := ErrorKindOf(err)
		assert.Equal(t, data.expected, kind, data.members+data.body)
	}
}

func TestTypeChecker_MethodReturnAnalysis(t *testing.T) {
	testData := []struct {
		method string
		ok     bool
	}{
		{method: "int f() {\n\treturn 1\n}", ok: true},
		{method: "int f() {\n}", ok: false},
		{method: "void f() {\n}", ok: true},
		{method: "int f(bool b) {\n\tif b {\n\t\treturn 1\n\t} else {\n\t\treturn 2\n\t}\n}", ok: true},
		{method: "int f(bool b) {\n\tif b {\n\t\treturn 1\n\t}\n}", ok: false},
		{method: "int f(bool b) {\n\twhile b {\n\t\treturn 1\n\t}\n}", ok: false},
		{method: "int f() {\n\t{\n\t\treturn 1\n\t}\n}", ok: true},
	}
	for _, data := range testData {
		_, err := typeCheck(parseTestProgram(t, "class A {\n"+data.method+"\n}"))
		if data.ok {
			assert.Nil(t, err, data.method)
			continue
		}
		kind, _ := ErrorKindOf(err)
		assert.Equal(t, MissingReturn, kind, data.method)
	}
}

func TestTypeChecker_ForwardReferences(t *testing.T) {
	typeCheckTestProgram(t, `
class First {
	Second s
	int f() {
		return s.g(this) + h()
	}
	int h() {
		return 1
	}
}
class Second {
	int g(First f) {
		return 2
	}
}`)
}
