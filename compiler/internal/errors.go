package internal

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// Lexer.
	IllegalCharacter ErrorKind = iota
	// Parser.
	SyntaxError
	// Type environment build.
	UnknownType
	DuplicateDeclaration
	CyclicInheritance
	// Type checking.
	UndeclaredVariable
	UndeclaredMethod
	InvalidOperation
	TypeMismatch
	MissingReturn
	// Code generation. Reaching this means a compiler defect, never a source defect.
	CodeGenError
)

var errorKindNames = map[ErrorKind]string{
	IllegalCharacter:     "IllegalCharacter",
	SyntaxError:          "SyntaxError",
	UnknownType:          "UnknownType",
	DuplicateDeclaration: "DuplicateDeclaration",
	CyclicInheritance:    "CyclicInheritance",
	UndeclaredVariable:   "UndeclaredVariable",
	UndeclaredMethod:     "UndeclaredMethod",
	InvalidOperation:     "InvalidOperation",
	TypeMismatch:         "TypeMismatch",
	MissingReturn:        "MissingReturn",
	CodeGenError:         "CodeGenError",
}

func (kind ErrorKind) String() string {
	name, ok := errorKindNames[kind]
	if !ok {
		return fmt.Sprintf("ErrorKind(%d)", int(kind))
	}
	return name
}

// Stage names the pipeline stage that reports errors of this kind.
func (kind ErrorKind) Stage() string {
	switch kind {
	case IllegalCharacter:
		return "Lexer"
	case SyntaxError:
		return "Parser"
	case CodeGenError:
		return "CodeGen"
	default:
		return "Semantic"
	}
}

// CompileError is the single error value every stage reports. The pipeline stops at the
// first one.
type CompileError struct {
	Kind ErrorKind
	Msg  string
}

func (err *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", err.Kind, err.Msg)
}

func makeError(kind ErrorKind, format string, msg ...interface{}) error {
	return &CompileError{Kind: kind, Msg: fmt.Sprintf(format, msg...)}
}

func makeSemanticError(kind ErrorKind, format string, msg ...interface{}) error {
	return makeError(kind, format, msg...)
}

func makeCodeGenError(format string, msg ...interface{}) error {
	return makeError(CodeGenError, format, msg...)
}

// ErrorKindOf returns the kind carried by err and whether err is a CompileError at all.
func ErrorKindOf(err error) (ErrorKind, bool) {
	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		return 0, false
	}
	return compileErr.Kind, true
}
