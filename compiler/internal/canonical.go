package internal

import (
	"strings"
)

// Canonical names turn overload resolution into a name lookup: a method or operator is
// addressed by its declared name plus the ordered types of its arguments. The type checker
// and the code generator both call these functions and therefore agree on every call site.

const (
	canonicalSeparator    = "#"
	canonicalArgSeparator = ","
)

func funcCanonicalName(name string, argTypes []Type) string {
	args := make([]string, len(argTypes))
	for i, argType := range argTypes {
		args[i] = string(argType)
	}
	return name + canonicalSeparator + strings.Join(args, canonicalArgSeparator)
}

func unopCanonicalName(op *OpAst, operand Type) string {
	return funcCanonicalName(op.Name, []Type{operand})
}

func binopCanonicalName(op *OpAst, left, right Type) string {
	return funcCanonicalName(op.Name, []Type{left, right})
}

// splitCanonicalName is the inverse of funcCanonicalName.
func splitCanonicalName(canonical string) (name string, argTypes []Type) {
	i := strings.LastIndex(canonical, canonicalSeparator)
	if i < 0 {
		return canonical, nil
	}
	name = canonical[:i]
	if i+1 == len(canonical) {
		return name, nil
	}
	for _, arg := range strings.Split(canonical[i+1:], canonicalArgSeparator) {
		argTypes = append(argTypes, Type(arg))
	}
	return name, argTypes
}

// builtinOperators maps the canonical name of every operator the base language defines to
// its result type.
var builtinOperators = map[string]Type{}

func registerBinop(op *OpAst, left, right, result Type) {
	builtinOperators[binopCanonicalName(op, left, right)] = result
}

func registerUnop(op *OpAst, operand, result Type) {
	builtinOperators[unopCanonicalName(op, operand)] = result
}

func init() {
	for _, op := range []*OpAst{&AddOpAst, &MinusOpAst, &MultipleOpAst, &DivideOpAst} {
		registerBinop(op, IntType, IntType, IntType)
	}
	for _, op := range []*OpAst{&EqualOpAst, &NotEqualOpAst} {
		registerBinop(op, IntType, IntType, BoolType)
		registerBinop(op, BoolType, BoolType, BoolType)
	}
	for _, op := range []*OpAst{&AndOpAst, &OrOpAst} {
		registerBinop(op, BoolType, BoolType, BoolType)
	}
	registerUnop(&BooleanNegationOpAst, BoolType, BoolType)
	registerUnop(&NegationOpAst, IntType, IntType)
}

func lookUpOperator(canonical string) (Type, bool) {
	t, ok := builtinOperators[canonical]
	return t, ok
}
