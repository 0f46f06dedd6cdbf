package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// genEnv is the state of one code generation: the class and method being lowered, the local
// scopes of that method, and the three output sections.
type genEnv struct {
	env       TypeEnv
	curClass  *ClassSymbolTable
	curMethod *FuncSymbolTable
	scopes    []map[string]Type

	structDef strings.Builder
	funcDef   strings.Builder
	mainDef   strings.Builder
	tabs      int
	temps     int
}

func newGenEnv(env TypeEnv) *genEnv {
	return &genEnv{env: env}
}

func (gen *genEnv) enterScope() {
	gen.scopes = append(gen.scopes, map[string]Type{})
}

func (gen *genEnv) leaveScope() {
	gen.scopes = gen.scopes[:len(gen.scopes)-1]
}

func (gen *genEnv) declare(name string, t Type) {
	gen.scopes[len(gen.scopes)-1][name] = t
}

func (gen *genEnv) lookupLocal(name string) (Type, bool) {
	for i := len(gen.scopes) - 1; i >= 0; i-- {
		if t, ok := gen.scopes[i][name]; ok {
			return t, true
		}
	}
	return "", false
}

// newTemp names a fresh C variable of the current function.
func (gen *genEnv) newTemp() string {
	gen.temps++
	return generatedPrefix + "init_" + strconv.Itoa(gen.temps)
}

// writeLine writes one line into buf at the current indentation.
func (gen *genEnv) writeLine(buf *strings.Builder, format string, args ...interface{}) {
	buf.WriteString(strings.Repeat("\t", gen.tabs))
	fmt.Fprintf(buf, format, args...)
	buf.WriteString("\n")
}

// output concatenates the sections: types, functions, entry point.
func (gen *genEnv) output() string {
	return gen.structDef.String() + gen.funcDef.String() + gen.mainDef.String()
}

// C words and <stdlib.h> names dflat programs may use as names. They get a trailing
// underscore, and so does every name starting with the df_ prefix the generator uses for
// its own names.
var cReservedWords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true, "continue": true,
	"default": true, "do": true, "double": true, "else": true, "enum": true, "extern": true,
	"float": true, "for": true, "goto": true, "if": true, "inline": true, "int": true, "long": true,
	"register": true, "restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true, "unsigned": true,
	"void": true, "volatile": true, "while": true, "_Bool": true, "_Complex": true, "_Imaginary": true,
	"calloc": true, "NULL": true, "DF_NEW": true, "main": true,
	// <stdlib.h> macros and types.
	"EXIT_SUCCESS": true, "EXIT_FAILURE": true, "RAND_MAX": true, "MB_CUR_MAX": true,
	"size_t": true, "wchar_t": true, "div_t": true, "ldiv_t": true, "lldiv_t": true,
}

const generatedPrefix = "df_"

func cName(name string) string {
	if cReservedWords[name] || strings.HasPrefix(name, generatedPrefix) {
		return name + "_"
	}
	return name
}

// cType lowers a dflat type: int and bool are C ints, a class is a pointer to its struct.
func cType(t Type) string {
	switch t {
	case IntType, BoolType:
		return "int"
	case VoidType:
		return "void"
	}
	return "struct " + cName(string(t)) + "*"
}

// cFuncName is the C function of method canonical declared by className. Every part is
// prefixed by its length, so no two (class, method, parameter types) share a name.
func cFuncName(className, canonical string) string {
	name, argTypes := splitCanonicalName(canonical)
	var sb strings.Builder
	sb.WriteString(generatedPrefix)
	for _, part := range append([]string{className, name}, typeNames(argTypes)...) {
		sb.WriteString(strconv.Itoa(len(part)))
		sb.WriteString(part)
	}
	return sb.String()
}

func typeNames(types []Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
