package internal

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const shapeProgram = `
class Shape {
	int sides
	int describe() {
		return sides
	}
}

class Square extends Shape {
	int side
	int area() {
		return side * side
	}
	int area(int scale) {
		return area() * scale
	}
}

class Main {
	int main() {
		Square s = new Square
		s.sides = 4
		s.side = 3
		Shape shape = s
		if s.area(2) == 18 && shape.describe() == 4 {
			return 0
		}
		return 1
	}
}
`

func TestCompiler_Compile(t *testing.T) {
	code, err := Compile(shapeProgram, discardLogger())
	require.Nil(t, err)
	for _, expected := range []string{
		"struct Square {\n\tstruct Shape df_parent;\n\tint side;\n};\n",
		"\tstruct Square* s = DF_NEW(Square);\n",
		"\t((struct Shape*)s)->sides = 4;\n",
		"\ts->side = 3;\n",
		"\tstruct Shape* shape = (struct Shape*)s;\n",
		"\tif (((df_6Square4area3int(s, 2)==18)&&(df_5Shape8describe(shape)==4))) {\n",
		"\treturn (df_6Square4area(this)*scale);\n",
		"int main(void) {\n",
	} {
		assert.Contains(t, code, expected)
	}
	// Types come before functions, functions before the entry point.
	structPos := bytes.Index([]byte(code), []byte("struct Shape {"))
	funcPos := bytes.Index([]byte(code), []byte("int df_5Shape8describe(struct Shape* this);"))
	mainPos := bytes.Index([]byte(code), []byte("int main(void)"))
	assert.True(t, structPos >= 0 && structPos < funcPos && funcPos < mainPos)
}

func TestCompiler_CompileError(t *testing.T) {
	testData := []struct {
		source   string
		expected ErrorKind
	}{
		{source: "class A {\n\tint x;\n}", expected: IllegalCharacter},
		{source: "class A {\n\tint x y\n}", expected: SyntaxError},
		{source: "class A extends B {\n}", expected: UnknownType},
		{source: "class A {\n\tint f() {\n\t\treturn true\n\t}\n}", expected: TypeMismatch},
		{source: "class A {\n\tint f() {\n\t}\n}", expected: MissingReturn},
	}
	for _, data := range testData {
		code, err := Compile(data.source, discardLogger())
		require.NotNil(t, err, data.source)
		assert.Equal(t, "", code)
		kind, ok := ErrorKindOf(err)
		require.True(t, ok)
		assert.Equal(t, data.expected, kind, data.source)
	}
}

func TestCompiler_Logging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Compile(shapeProgram, logger)
	require.Nil(t, err)
	for _, stage := range []string{"start parser", "start type checker", "start generate codes", "done"} {
		assert.Contains(t, buf.String(), stage)
	}

	// A failing stage is the last one logged.
	buf.Reset()
	_, err = Compile("class A {\n\tint f() {\n\t}\n}", logger)
	require.NotNil(t, err)
	assert.Contains(t, buf.String(), "start type checker")
	assert.NotContains(t, buf.String(), "start generate codes")
}

func TestCompiler_NilLogger(t *testing.T) {
	code, err := Compile(shapeProgram, nil)
	require.Nil(t, err)
	assert.Contains(t, code, "int main(void) {\n")

	path := filepath.Join(t.TempDir(), "shape.df")
	require.Nil(t, os.WriteFile(path, []byte(shapeProgram), 0644))
	fileCode, err := CompileFile(path, nil)
	require.Nil(t, err)
	assert.Equal(t, code, fileCode)
}

func TestCompiler_CompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.df")
	require.Nil(t, os.WriteFile(path, []byte(shapeProgram), 0644))
	code, err := CompileFile(path, discardLogger())
	require.Nil(t, err)
	assert.Contains(t, code, "int main(void) {\n")

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.df"), discardLogger())
	assert.NotNil(t, err)
	_, isCompileError := ErrorKindOf(err)
	assert.False(t, isCompileError)
}

func TestCompiler_ErrorKind(t *testing.T) {
	testData := []struct {
		kind  ErrorKind
		stage string
	}{
		{kind: IllegalCharacter, stage: "Lexer"},
		{kind: SyntaxError, stage: "Parser"},
		{kind: UnknownType, stage: "Semantic"},
		{kind: CyclicInheritance, stage: "Semantic"},
		{kind: TypeMismatch, stage: "Semantic"},
		{kind: CodeGenError, stage: "CodeGen"},
	}
	for _, data := range testData {
		assert.Equal(t, data.stage, data.kind.Stage(), data.kind.String())
	}
	err := makeSemanticError(TypeMismatch, "expect type %s, but got %s", IntType, BoolType)
	assert.Equal(t, "TypeMismatch: expect type int, but got bool", err.Error())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}
