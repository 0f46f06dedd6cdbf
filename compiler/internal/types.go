package internal

// Type is a nominal dflat type: one of the primitive names below or a class name.
type Type string

const (
	IntType  Type = "int"
	BoolType Type = "bool"
	// VoidType is only valid as a method return type.
	VoidType Type = "void"
)

var primitiveTypes = map[Type]bool{
	IntType:  true,
	BoolType: true,
}

func (t Type) isPrimitive() bool {
	return primitiveTypes[t]
}

func (t Type) String() string {
	return string(t)
}
