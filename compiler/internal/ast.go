package internal

import (
	"reflect"
	"strconv"
	"strings"
)

// In this file, we defined all ast of dflat according to the dflat grammar. A program is a list
// of classes; there is no package declaration and no import.
//
// Every node is one variant of a closed set, identified by its AstKind. Passes consume nodes
// with type switches. The type checker writes its results (types, canonical names, owners)
// into the annotation fields of expression nodes; those fields never take part in equality.

type AstKind int

const (
	// Expressions.
	BinaryExpressionKind AstKind = iota
	UnaryExpressionKind
	IntegerConstantKind
	BooleanConstantKind
	VariableKind
	CallKind
	NewObjectKind
	// Statements.
	LetStatementKind
	VarDeclareKind
	VarDeclareAssignKind
	DoStatementKind
	ReturnStatementKind
	BlockKind
	// Control blocks.
	IfStatementKind
	WhileStatementKind
	// Declarations.
	MethodKind
	ClassKind
)

type Ast interface {
	Kind() AstKind
	String() string
}

type ExpressionAst interface {
	Ast
	// ResolvedType is the type computed by the type checker, empty before checking.
	ResolvedType() Type
	setResolvedType(Type)
}

type StatementAst interface {
	Ast
	statementNode()
}

type typedExpression struct {
	TP Type
}

func (e *typedExpression) ResolvedType() Type {
	return e.TP
}

func (e *typedExpression) setResolvedType(t Type) {
	e.TP = t
}

type ProgramAst struct {
	Classes []*ClassAst
}

func (program *ProgramAst) String() string {
	classes := make([]string, len(program.Classes))
	for i, class := range program.Classes {
		classes[i] = class.String()
	}
	return strings.Join(classes, "\n")
}

// class B extends A { members }
type ClassAst struct {
	ClassName  string
	ParentName string // Empty when the class has no parent.
	// Members keeps source order. Each member is a *VarDeclareAst (field) or a *MethodAst.
	Members []Ast
}

func (class *ClassAst) Fields() (fields []*VarDeclareAst) {
	for _, member := range class.Members {
		if field, ok := member.(*VarDeclareAst); ok {
			fields = append(fields, field)
		}
	}
	return
}

func (class *ClassAst) Methods() (methods []*MethodAst) {
	for _, member := range class.Members {
		if method, ok := member.(*MethodAst); ok {
			methods = append(methods, method)
		}
	}
	return
}

// int func(int x, bool y) { statements }
type MethodAst struct {
	ReturnTP Type
	FuncName string
	Params   []*FuncParamAst
	FuncBody *BlockAst

	Canonical string // Set by the type checker.
}

type FuncParamAst struct {
	ParamTP   Type
	ParamName string
}

func (method *MethodAst) ParamTypes() []Type {
	types := make([]Type, len(method.Params))
	for i, param := range method.Params {
		types[i] = param.ParamTP
	}
	return types
}

type BlockAst struct {
	Statements []StatementAst
}

// if (x == y) { statements } else { statements }
type IfStatementAst struct {
	Condition        ExpressionAst
	IfTrueStatements *BlockAst
	ElseStatements   *BlockAst // Nil without else.
}

// while (x == y) { statements }
type WhileStatementAst struct {
	Condition  ExpressionAst
	Statements *BlockAst
}

// x = 1 + y, or obj.x = 1 + y
type LetStatementAst struct {
	LetVariable *VariableAst
	Value       ExpressionAst
}

// int x
type VarDeclareAst struct {
	VarType Type
	VarName string
}

// int x = 1 + y
type VarDeclareAssignAst struct {
	VarType Type
	VarName string
	Value   ExpressionAst
}

// func(x, y) or obj.func(x, y) used as a statement.
type DoStatementAst struct {
	Call *CallAst
}

type ReturnStatementAst struct {
	Return ExpressionAst // Nil for a bare return.
}

type BinaryExpressionAst struct {
	LeftExpr  ExpressionAst
	Op        *OpAst
	RightExpr ExpressionAst

	Canonical string
	typedExpression
}

type UnaryExpressionAst struct {
	Op   *OpAst
	Expr ExpressionAst

	Canonical string
	typedExpression
}

type IntegerConstantAst struct {
	Value int
	typedExpression
}

type BooleanConstantAst struct {
	Value bool
	typedExpression
}

// var, obj.var or this.
type VariableAst struct {
	Object  string // Empty when there is no explicit object.
	VarName string

	// Owner is the class declaring the member, empty for locals and `this`.
	Owner string
	// ObjectType is the static type of the receiver of a member access.
	ObjectType Type
	typedExpression
}

type CallAst struct {
	// We allow call like: obj.m1(), where obj is a variable or this.
	// If just call m1(), then m1 is a method of the current class.
	FuncProvider string
	FuncName     string
	Params       []ExpressionAst

	Canonical  string
	Owner      string
	ObjectType Type
	typedExpression
}

// new B. Constructor arguments are not supported yet.
type NewObjectAst struct {
	ClassName string
	typedExpression
}

type OpAst struct {
	OpTP     OpType
	Op       OpCode
	priority int
	// associative chains of the same operator nest to the right: 1 + 2 + 3 is 1 + (2 + 3).
	associative bool
	Name        string
}

var (
	OrOpAst       = OpAst{OpTP: BinaryOPTP, Op: OrOpTP, priority: 1, associative: true, Name: "||"}
	AndOpAst      = OpAst{OpTP: BinaryOPTP, Op: AndOpTP, priority: 2, associative: true, Name: "&&"}
	EqualOpAst    = OpAst{OpTP: BinaryOPTP, Op: EqualOpTp, priority: 3, Name: "=="}
	NotEqualOpAst = OpAst{OpTP: BinaryOPTP, Op: NotEqualOpTP, priority: 3, Name: "!="}
	AddOpAst      = OpAst{OpTP: BinaryOPTP, Op: AddOpTP, priority: 4, associative: true, Name: "+"}
	MinusOpAst    = OpAst{OpTP: BinaryOPTP, Op: MinusOpTP, priority: 4, Name: "-"}
	MultipleOpAst = OpAst{OpTP: BinaryOPTP, Op: MultipleOpTP, priority: 5, associative: true, Name: "*"}
	DivideOpAst   = OpAst{OpTP: BinaryOPTP, Op: DivideOpTP, priority: 5, Name: "/"}

	NegationOpAst        = OpAst{OpTP: UnaryOPTP, Op: NegationOpTP, Name: "-"}
	BooleanNegationOpAst = OpAst{OpTP: UnaryOPTP, Op: BooleanNegationOpTP, Name: "!"}
)

func (op OpAst) String() string {
	return op.Name
}

type OpType int

const (
	UnaryOPTP OpType = iota
	BinaryOPTP
)

type OpCode int

const (
	AddOpTP OpCode = iota
	MinusOpTP
	MultipleOpTP
	DivideOpTP
	AndOpTP
	OrOpTP
	EqualOpTp
	NotEqualOpTP

	// Unary Op
	NegationOpTP
	BooleanNegationOpTP
)

func (*BinaryExpressionAst) Kind() AstKind { return BinaryExpressionKind }
func (*UnaryExpressionAst) Kind() AstKind  { return UnaryExpressionKind }
func (*IntegerConstantAst) Kind() AstKind  { return IntegerConstantKind }
func (*BooleanConstantAst) Kind() AstKind  { return BooleanConstantKind }
func (*VariableAst) Kind() AstKind         { return VariableKind }
func (*CallAst) Kind() AstKind             { return CallKind }
func (*NewObjectAst) Kind() AstKind        { return NewObjectKind }
func (*LetStatementAst) Kind() AstKind     { return LetStatementKind }
func (*VarDeclareAst) Kind() AstKind       { return VarDeclareKind }
func (*VarDeclareAssignAst) Kind() AstKind { return VarDeclareAssignKind }
func (*DoStatementAst) Kind() AstKind      { return DoStatementKind }
func (*ReturnStatementAst) Kind() AstKind  { return ReturnStatementKind }
func (*BlockAst) Kind() AstKind            { return BlockKind }
func (*IfStatementAst) Kind() AstKind      { return IfStatementKind }
func (*WhileStatementAst) Kind() AstKind   { return WhileStatementKind }
func (*MethodAst) Kind() AstKind           { return MethodKind }
func (*ClassAst) Kind() AstKind            { return ClassKind }

func (*LetStatementAst) statementNode()     {}
func (*VarDeclareAst) statementNode()       {}
func (*VarDeclareAssignAst) statementNode() {}
func (*DoStatementAst) statementNode()      {}
func (*ReturnStatementAst) statementNode()  {}
func (*BlockAst) statementNode()            {}
func (*IfStatementAst) statementNode()      {}
func (*WhileStatementAst) statementNode()   {}

func isNilAst(ast Ast) bool {
	if ast == nil {
		return true
	}
	v := reflect.ValueOf(ast)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Equal compares two trees structurally. Nodes of different kinds are never equal, two absent
// trees are equal and an absent tree never equals a present one.
func Equal(a, b Ast) bool {
	if isNilAst(a) || isNilAst(b) {
		return isNilAst(a) && isNilAst(b)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *BinaryExpressionAst:
		y := b.(*BinaryExpressionAst)
		return x.Op.Op == y.Op.Op && Equal(x.LeftExpr, y.LeftExpr) && Equal(x.RightExpr, y.RightExpr)
	case *UnaryExpressionAst:
		y := b.(*UnaryExpressionAst)
		return x.Op.Op == y.Op.Op && Equal(x.Expr, y.Expr)
	case *IntegerConstantAst:
		return x.Value == b.(*IntegerConstantAst).Value
	case *BooleanConstantAst:
		return x.Value == b.(*BooleanConstantAst).Value
	case *VariableAst:
		y := b.(*VariableAst)
		return x.Object == y.Object && x.VarName == y.VarName
	case *CallAst:
		y := b.(*CallAst)
		return x.FuncProvider == y.FuncProvider && x.FuncName == y.FuncName && equalExpressions(x.Params, y.Params)
	case *NewObjectAst:
		return x.ClassName == b.(*NewObjectAst).ClassName
	case *LetStatementAst:
		y := b.(*LetStatementAst)
		return Equal(x.LetVariable, y.LetVariable) && Equal(x.Value, y.Value)
	case *VarDeclareAst:
		y := b.(*VarDeclareAst)
		return x.VarType == y.VarType && x.VarName == y.VarName
	case *VarDeclareAssignAst:
		y := b.(*VarDeclareAssignAst)
		return x.VarType == y.VarType && x.VarName == y.VarName && Equal(x.Value, y.Value)
	case *DoStatementAst:
		return Equal(x.Call, b.(*DoStatementAst).Call)
	case *ReturnStatementAst:
		return Equal(x.Return, b.(*ReturnStatementAst).Return)
	case *BlockAst:
		y := b.(*BlockAst)
		if len(x.Statements) != len(y.Statements) {
			return false
		}
		for i := range x.Statements {
			if !Equal(x.Statements[i], y.Statements[i]) {
				return false
			}
		}
		return true
	case *IfStatementAst:
		y := b.(*IfStatementAst)
		return Equal(x.Condition, y.Condition) && Equal(x.IfTrueStatements, y.IfTrueStatements) &&
			Equal(x.ElseStatements, y.ElseStatements)
	case *WhileStatementAst:
		y := b.(*WhileStatementAst)
		return Equal(x.Condition, y.Condition) && Equal(x.Statements, y.Statements)
	case *MethodAst:
		y := b.(*MethodAst)
		if x.ReturnTP != y.ReturnTP || x.FuncName != y.FuncName || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if *x.Params[i] != *y.Params[i] {
				return false
			}
		}
		return Equal(x.FuncBody, y.FuncBody)
	case *ClassAst:
		y := b.(*ClassAst)
		if x.ClassName != y.ClassName || x.ParentName != y.ParentName || len(x.Members) != len(y.Members) {
			return false
		}
		for i := range x.Members {
			if !Equal(x.Members[i], y.Members[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func equalExpressions(a, b []ExpressionAst) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// The String methods print source-like text, used by -emit-ast and in test failures.

func (expr *BinaryExpressionAst) String() string {
	return "(" + expr.LeftExpr.String() + " " + expr.Op.Name + " " + expr.RightExpr.String() + ")"
}

func (expr *UnaryExpressionAst) String() string {
	return "(" + expr.Op.Name + expr.Expr.String() + ")"
}

func (expr *IntegerConstantAst) String() string {
	return strconv.Itoa(expr.Value)
}

func (expr *BooleanConstantAst) String() string {
	return strconv.FormatBool(expr.Value)
}

func (expr *VariableAst) String() string {
	if expr.Object == "" {
		return expr.VarName
	}
	return expr.Object + "." + expr.VarName
}

func (expr *CallAst) String() string {
	params := make([]string, len(expr.Params))
	for i, param := range expr.Params {
		params[i] = param.String()
	}
	name := expr.FuncName
	if expr.FuncProvider != "" {
		name = expr.FuncProvider + "." + name
	}
	return name + "(" + strings.Join(params, ", ") + ")"
}

func (expr *NewObjectAst) String() string {
	return "new " + expr.ClassName
}

func (stm *LetStatementAst) String() string {
	return stm.LetVariable.String() + " = " + stm.Value.String()
}

func (stm *VarDeclareAst) String() string {
	return string(stm.VarType) + " " + stm.VarName
}

func (stm *VarDeclareAssignAst) String() string {
	return string(stm.VarType) + " " + stm.VarName + " = " + stm.Value.String()
}

func (stm *DoStatementAst) String() string {
	return stm.Call.String()
}

func (stm *ReturnStatementAst) String() string {
	if stm.Return == nil {
		return "return"
	}
	return "return " + stm.Return.String()
}

func (stm *BlockAst) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, statement := range stm.Statements {
		sb.WriteString(indentLines(statement.String()))
	}
	sb.WriteString("}")
	return sb.String()
}

func (stm *IfStatementAst) String() string {
	ret := "if " + stm.Condition.String() + " " + stm.IfTrueStatements.String()
	if stm.ElseStatements != nil {
		ret += " else " + stm.ElseStatements.String()
	}
	return ret
}

func (stm *WhileStatementAst) String() string {
	return "while " + stm.Condition.String() + " " + stm.Statements.String()
}

func (method *MethodAst) String() string {
	params := make([]string, len(method.Params))
	for i, param := range method.Params {
		params[i] = string(param.ParamTP) + " " + param.ParamName
	}
	return string(method.ReturnTP) + " " + method.FuncName + "(" + strings.Join(params, ", ") + ") " +
		method.FuncBody.String()
}

func (class *ClassAst) String() string {
	var sb strings.Builder
	sb.WriteString("class " + class.ClassName)
	if class.ParentName != "" {
		sb.WriteString(" extends " + class.ParentName)
	}
	sb.WriteString(" {\n")
	for _, member := range class.Members {
		sb.WriteString(indentLines(member.String()))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func indentLines(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		sb.WriteString("\t" + line + "\n")
	}
	return sb.String()
}
