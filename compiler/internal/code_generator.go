package internal

import (
	"strconv"
	"strings"
)

// The generated C has three sections, written to their own buffers and joined in order:
//
//   types:     includes, the allocation macro, one struct per class, parents first.
//   functions: a prototype for every method, then every definition.
//   entry:     a C main calling Main.main(), when the program has one.
//
// A derived struct starts with its parent struct, so a pointer to it is also a pointer to
// the parent. Every method becomes a free function taking `this` first.

const (
	parentMember = generatedPrefix + "parent"
	emptyMember  = generatedPrefix + "empty"
	mainClass    = "Main"
	mainMethod   = "main"
)

// generateCodes lowers a type checked program.
func generateCodes(program *ProgramAst, env TypeEnv) (string, error) {
	gen := newGenEnv(env)
	gen.generateTypesCode(program)
	err := gen.generateFuncsCode(program)
	if err != nil {
		return "", err
	}
	gen.generateEntryCode()
	return gen.output(), nil
}

// generateExpression lowers one expression outside of any class.
func generateExpression(expr ExpressionAst) (string, error) {
	return newGenEnv(TypeEnv{}).generateExpressionCode(expr)
}

func (gen *genEnv) generateTypesCode(program *ProgramAst) {
	gen.writeLine(&gen.structDef, "#include <stdlib.h>")
	gen.writeLine(&gen.structDef, "")
	gen.writeLine(&gen.structDef, "#define DF_NEW(T) ((struct T*)calloc(1, sizeof(struct T)))")
	gen.writeLine(&gen.structDef, "")
	if len(program.Classes) == 0 {
		return
	}
	for _, class := range program.Classes {
		gen.writeLine(&gen.structDef, "struct %s;", cName(class.ClassName))
	}
	gen.writeLine(&gen.structDef, "")
	generated := map[string]bool{}
	for _, class := range program.Classes {
		gen.generateStructCode(class.ClassName, generated)
	}
}

// generateStructCode writes the struct of className after the structs of its ancestors.
func (gen *genEnv) generateStructCode(className string, generated map[string]bool) {
	for _, name := range gen.env.ancestors(className) {
		if generated[name] {
			continue
		}
		generated[name] = true
		class := gen.env.lookUpClass(name)
		gen.writeLine(&gen.structDef, "struct %s {", cName(name))
		gen.tabs++
		if class.ParentName != "" {
			gen.writeLine(&gen.structDef, "struct %s %s;", cName(class.ParentName), parentMember)
		}
		for _, field := range class.Fields() {
			gen.writeLine(&gen.structDef, "%s %s;", cType(class.VariablesSymbolTable[field]), cName(field))
		}
		if class.ParentName == "" && len(class.Fields()) == 0 {
			gen.writeLine(&gen.structDef, "char %s;", emptyMember)
		}
		gen.tabs--
		gen.writeLine(&gen.structDef, "};")
		gen.writeLine(&gen.structDef, "")
	}
}

func (gen *genEnv) funcSignature(fn *FuncSymbolTable) string {
	params := []string{cType(Type(fn.ClassName)) + " this"}
	for i, name := range fn.ParamNames {
		params = append(params, cType(fn.ParamTypes[i])+" "+cName(name))
	}
	return cType(fn.ReturnType) + " " + cFuncName(fn.ClassName, fn.Canonical) + "(" + strings.Join(params, ", ") + ")"
}

func (gen *genEnv) generateFuncsCode(program *ProgramAst) error {
	hasMethod := false
	for _, class := range program.Classes {
		for _, fn := range gen.env.lookUpClass(class.ClassName).Funcs() {
			gen.writeLine(&gen.funcDef, "%s;", gen.funcSignature(fn))
			hasMethod = true
		}
	}
	if hasMethod {
		gen.writeLine(&gen.funcDef, "")
	}
	for _, class := range program.Classes {
		gen.curClass = gen.env.lookUpClass(class.ClassName)
		for _, method := range class.Methods() {
			err := gen.generateMethodCode(method)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (gen *genEnv) generateMethodCode(method *MethodAst) error {
	canonical := funcCanonicalName(method.FuncName, method.ParamTypes())
	if method.Canonical != canonical {
		return makeCodeGenError("method %s is annotated as %q", canonical, method.Canonical)
	}
	fn, ok := gen.curClass.FuncSymbolTable[canonical]
	if !ok {
		return makeCodeGenError("method %s is missing from class %s", canonical, gen.curClass.ClassName)
	}
	gen.curMethod = fn
	gen.scopes = []map[string]Type{{}}
	gen.temps = 0
	for i, name := range fn.ParamNames {
		gen.declare(name, fn.ParamTypes[i])
	}
	gen.writeLine(&gen.funcDef, "%s {", gen.funcSignature(fn))
	gen.tabs++
	err := gen.generateStatementsCode(method.FuncBody.Statements)
	if err != nil {
		return err
	}
	gen.tabs--
	gen.writeLine(&gen.funcDef, "}")
	gen.writeLine(&gen.funcDef, "")
	return nil
}

// generateEntryCode writes a C main when class Main has a main() returning int or void.
func (gen *genEnv) generateEntryCode() {
	fn, ok := gen.env.lookupMethodTypeByClass(funcCanonicalName(mainMethod, nil), mainClass)
	if !ok || fn.ClassName != mainClass || (fn.ReturnType != IntType && fn.ReturnType != VoidType) {
		return
	}
	receiver := generatedPrefix + "main"
	call := cFuncName(fn.ClassName, fn.Canonical) + "(" + receiver + ")"
	gen.tabs = 0
	gen.writeLine(&gen.mainDef, "int main(void) {")
	gen.tabs++
	gen.writeLine(&gen.mainDef, "%s %s = DF_NEW(%s);", cType(mainClass), receiver, cName(mainClass))
	if fn.ReturnType == IntType {
		gen.writeLine(&gen.mainDef, "return %s;", call)
	} else {
		gen.writeLine(&gen.mainDef, "%s;", call)
		gen.writeLine(&gen.mainDef, "return 0;")
	}
	gen.tabs--
	gen.writeLine(&gen.mainDef, "}")
}

func (gen *genEnv) generateStatementsCode(statements []StatementAst) error {
	for _, stm := range statements {
		err := gen.generateStatementCode(stm)
		if err != nil {
			return err
		}
	}
	return nil
}

func (gen *genEnv) generateStatementCode(statement StatementAst) error {
	switch stm := statement.(type) {
	case *VarDeclareAst:
		gen.declare(stm.VarName, stm.VarType)
		gen.writeLine(&gen.funcDef, "%s %s;", cType(stm.VarType), cName(stm.VarName))
	case *VarDeclareAssignAst:
		// The value is generated before the variable is in scope.
		value, err := gen.generateConvertedCode(stm.Value, stm.VarType)
		if err != nil {
			return err
		}
		// In C the new variable is already visible in its own initializer, so a value that may
		// read the outer variable goes through a temporary.
		if _, shadows := gen.lookupLocal(stm.VarName); shadows {
			temp := gen.newTemp()
			gen.writeLine(&gen.funcDef, "%s %s = %s;", cType(stm.VarType), temp, value)
			value = temp
		}
		gen.declare(stm.VarName, stm.VarType)
		gen.writeLine(&gen.funcDef, "%s %s = %s;", cType(stm.VarType), cName(stm.VarName), value)
	case *LetStatementAst:
		return gen.generateLetStatementCode(stm)
	case *DoStatementAst:
		call, err := gen.generateCallCode(stm.Call)
		if err != nil {
			return err
		}
		gen.writeLine(&gen.funcDef, "%s;", call)
	case *ReturnStatementAst:
		if stm.Return == nil {
			gen.writeLine(&gen.funcDef, "return;")
			return nil
		}
		value, err := gen.generateConvertedCode(stm.Return, gen.curMethod.ReturnType)
		if err != nil {
			return err
		}
		gen.writeLine(&gen.funcDef, "return %s;", value)
	case *BlockAst:
		gen.writeLine(&gen.funcDef, "{")
		err := gen.generateBlockCode(stm)
		if err != nil {
			return err
		}
		gen.writeLine(&gen.funcDef, "}")
	case *IfStatementAst:
		return gen.generateIfStatementCode(stm)
	case *WhileStatementAst:
		return gen.generateWhileStatementCode(stm)
	default:
		return makeCodeGenError("unknown statement %s", statement)
	}
	return nil
}

// generateBlockCode writes the statements of block one level deeper, in a new scope.
func (gen *genEnv) generateBlockCode(block *BlockAst) error {
	gen.enterScope()
	gen.tabs++
	err := gen.generateStatementsCode(block.Statements)
	gen.tabs--
	gen.leaveScope()
	return err
}

func (gen *genEnv) generateLetStatementCode(stm *LetStatementAst) error {
	target, err := gen.generateVariableCode(stm.LetVariable)
	if err != nil {
		return err
	}
	targetType, err := gen.annotatedType(stm.LetVariable)
	if err != nil {
		return err
	}
	value, err := gen.generateConvertedCode(stm.Value, targetType)
	if err != nil {
		return err
	}
	gen.writeLine(&gen.funcDef, "%s = %s;", target, value)
	return nil
}

func (gen *genEnv) generateIfStatementCode(stm *IfStatementAst) error {
	condition, err := gen.generateExpressionCode(stm.Condition)
	if err != nil {
		return err
	}
	gen.writeLine(&gen.funcDef, "if (%s) {", condition)
	err = gen.generateBlockCode(stm.IfTrueStatements)
	if err != nil {
		return err
	}
	if stm.ElseStatements != nil {
		gen.writeLine(&gen.funcDef, "} else {")
		err = gen.generateBlockCode(stm.ElseStatements)
		if err != nil {
			return err
		}
	}
	gen.writeLine(&gen.funcDef, "}")
	return nil
}

func (gen *genEnv) generateWhileStatementCode(stm *WhileStatementAst) error {
	condition, err := gen.generateExpressionCode(stm.Condition)
	if err != nil {
		return err
	}
	gen.writeLine(&gen.funcDef, "while (%s) {", condition)
	err = gen.generateBlockCode(stm.Statements)
	if err != nil {
		return err
	}
	gen.writeLine(&gen.funcDef, "}")
	return nil
}

func (gen *genEnv) annotatedType(expr ExpressionAst) (Type, error) {
	t := expr.ResolvedType()
	if t == "" {
		return "", makeCodeGenError("expression %s has no type", expr)
	}
	return t, nil
}

// generateConvertedCode generates expr as a value of type target, upcasting a class value
// whose static type is a descendant of target.
func (gen *genEnv) generateConvertedCode(expr ExpressionAst, target Type) (string, error) {
	code, err := gen.generateExpressionCode(expr)
	if err != nil {
		return "", err
	}
	t, err := gen.annotatedType(expr)
	if err != nil {
		return "", err
	}
	if t == target || !gen.env.isClassType(target) {
		return code, nil
	}
	return "(" + cType(target) + ")" + code, nil
}

func (gen *genEnv) generateExpressionCode(expr ExpressionAst) (string, error) {
	switch e := expr.(type) {
	case *IntegerConstantAst:
		return strconv.Itoa(e.Value), nil
	case *BooleanConstantAst:
		if e.Value {
			return "1", nil
		}
		return "0", nil
	case *BinaryExpressionAst:
		l, err := gen.generateExpressionCode(e.LeftExpr)
		if err != nil {
			return "", err
		}
		r, err := gen.generateExpressionCode(e.RightExpr)
		if err != nil {
			return "", err
		}
		return "(" + l + e.Op.Name + r + ")", nil
	case *UnaryExpressionAst:
		operand, err := gen.generateExpressionCode(e.Expr)
		if err != nil {
			return "", err
		}
		return "(" + e.Op.Name + operand + ")", nil
	case *VariableAst:
		return gen.generateVariableCode(e)
	case *CallAst:
		return gen.generateCallCode(e)
	case *NewObjectAst:
		return "DF_NEW(" + cName(e.ClassName) + ")", nil
	}
	return "", makeCodeGenError("unknown expression %s", expr)
}

// generateNameCode resolves an unqualified name the same way the type checker does: this,
// then locals, then fields of this.
func (gen *genEnv) generateNameCode(name string) (string, Type, error) {
	if gen.curClass == nil {
		return "", "", makeCodeGenError("%s used outside of a class", name)
	}
	if name == thisKeyword {
		return "this", Type(gen.curClass.ClassName), nil
	}
	if t, ok := gen.lookupLocal(name); ok {
		return cName(name), t, nil
	}
	t, owner, ok := gen.env.lookupVarTypeByClass(name, gen.curClass.ClassName)
	if !ok {
		return "", "", makeCodeGenError("can't resolve %s in class %s", name, gen.curClass.ClassName)
	}
	return fieldAccessCode("this", Type(gen.curClass.ClassName), owner, name), t, nil
}

func (gen *genEnv) generateVariableCode(variable *VariableAst) (string, error) {
	if variable.Object == "" {
		code, _, err := gen.generateNameCode(variable.VarName)
		return code, err
	}
	receiver, receiverType, err := gen.generateNameCode(variable.Object)
	if err != nil {
		return "", err
	}
	if receiverType != variable.ObjectType {
		return "", makeCodeGenError("%s has type %s, but is annotated as %q", variable.Object, receiverType,
			variable.ObjectType)
	}
	_, owner, ok := gen.env.lookupVarTypeByClass(variable.VarName, string(receiverType))
	if !ok || owner != variable.Owner {
		return "", makeCodeGenError("can't resolve %s on class %s", variable, receiverType)
	}
	return fieldAccessCode(receiver, receiverType, owner, variable.VarName), nil
}

// fieldAccessCode reads field of receiver, upcasting the receiver to the declaring class
// when the field is inherited.
func fieldAccessCode(receiver string, receiverType Type, owner, field string) string {
	if string(receiverType) == owner {
		return receiver + "->" + cName(field)
	}
	return "((" + cType(Type(owner)) + ")" + receiver + ")->" + cName(field)
}

// generateCallCode recomputes the canonical name from the argument types and requires it to
// agree with the type checker's annotation.
func (gen *genEnv) generateCallCode(call *CallAst) (string, error) {
	args := make([]string, 0, len(call.Params)+1)
	argTypes := make([]Type, len(call.Params))
	for i, param := range call.Params {
		t, err := gen.annotatedType(param)
		if err != nil {
			return "", err
		}
		argTypes[i] = t
	}
	canonical := funcCanonicalName(call.FuncName, argTypes)
	if call.Canonical != canonical {
		return "", makeCodeGenError("call %s resolves to %s, but is annotated as %q", call, canonical,
			call.Canonical)
	}
	receiver, receiverType := "this", Type("")
	if call.FuncProvider == "" {
		if gen.curClass == nil {
			return "", makeCodeGenError("call %s outside of a class", call)
		}
		receiverType = Type(gen.curClass.ClassName)
	} else {
		var err error
		receiver, receiverType, err = gen.generateNameCode(call.FuncProvider)
		if err != nil {
			return "", err
		}
	}
	if receiverType != call.ObjectType {
		return "", makeCodeGenError("receiver of %s has type %s, but is annotated as %q", call, receiverType,
			call.ObjectType)
	}
	fn, ok := gen.env.lookupMethodTypeByClass(canonical, string(receiverType))
	if !ok || fn.ClassName != call.Owner {
		return "", makeCodeGenError("can't resolve %s on class %s", canonical, receiverType)
	}
	if string(receiverType) != fn.ClassName {
		receiver = "(" + cType(Type(fn.ClassName)) + ")" + receiver
	}
	args = append(args, receiver)
	for _, param := range call.Params {
		arg, err := gen.generateExpressionCode(param)
		if err != nil {
			return "", err
		}
		args = append(args, arg)
	}
	return cFuncName(fn.ClassName, canonical) + "(" + strings.Join(args, ", ") + ")", nil
}
