package internal

// typeChecker walks method bodies with the current class and a stack of local scopes. The
// parameters and the top level of a method body share the first scope.
type typeChecker struct {
	env       TypeEnv
	curClass  *ClassSymbolTable
	curMethod *FuncSymbolTable
	scopes    []map[string]Type
}

// typeCheck builds the type environment of program, checks every method body and annotates
// the expressions in place.
func typeCheck(program *ProgramAst) (TypeEnv, error) {
	env, err := buildTypeEnv(program)
	if err != nil {
		return nil, err
	}
	checker := &typeChecker{env: env}
	for _, class := range program.Classes {
		checker.curClass = env.lookUpClass(class.ClassName)
		for _, method := range class.Methods() {
			err = checker.typeCheckMethod(method)
			if err != nil {
				return nil, err
			}
		}
	}
	return env, nil
}

// typeCheckExpression types one expression outside of any class. env may be empty, in which
// case only constants and operators type check.
func typeCheckExpression(env TypeEnv, expr ExpressionAst) (Type, error) {
	checker := &typeChecker{env: env}
	return checker.typeCheckExpression(expr)
}

func (checker *typeChecker) typeCheckMethod(method *MethodAst) error {
	canonical := funcCanonicalName(method.FuncName, method.ParamTypes())
	fn := checker.curClass.FuncSymbolTable[canonical]
	method.Canonical = canonical
	checker.curMethod = fn
	checker.scopes = []map[string]Type{{}}
	for i, name := range fn.ParamNames {
		checker.scopes[0][name] = fn.ParamTypes[i]
	}
	err := checker.typeCheckStatements(method.FuncBody.Statements)
	if err != nil {
		return err
	}
	return methodReturnAnalysis(method)
}

func (checker *typeChecker) enterScope() {
	checker.scopes = append(checker.scopes, map[string]Type{})
}

func (checker *typeChecker) leaveScope() {
	checker.scopes = checker.scopes[:len(checker.scopes)-1]
}

func (checker *typeChecker) declareLocal(name string, t Type) error {
	if !checker.env.validType(t) {
		return makeSemanticError(UnknownType, "unknown type %s of variable %s", t, name)
	}
	scope := checker.scopes[len(checker.scopes)-1]
	if _, ok := scope[name]; ok {
		return makeSemanticError(DuplicateDeclaration, "duplicate variable name: %s in method %s", name,
			checker.curMethod.FuncName)
	}
	scope[name] = t
	return nil
}

func (checker *typeChecker) lookupLocal(name string) (Type, bool) {
	for i := len(checker.scopes) - 1; i >= 0; i-- {
		if t, ok := checker.scopes[i][name]; ok {
			return t, true
		}
	}
	return "", false
}

// resolveName types an unqualified name: this, then locals from the innermost scope out, then
// fields of this. owner is empty unless the name is a field.
func (checker *typeChecker) resolveName(name string) (t Type, owner string, err error) {
	if name == thisKeyword {
		if checker.curClass == nil {
			return "", "", makeSemanticError(UndeclaredVariable, "this used outside of a class")
		}
		return Type(checker.curClass.ClassName), "", nil
	}
	if t, ok := checker.lookupLocal(name); ok {
		return t, "", nil
	}
	if checker.curClass != nil {
		if t, owner, ok := checker.env.lookupVarTypeByClass(name, checker.curClass.ClassName); ok {
			return t, owner, nil
		}
	}
	return "", "", makeSemanticError(UndeclaredVariable, "undeclared variable %s", name)
}

// resolveObject types the qualifier of obj.member, which must be of a class type.
func (checker *typeChecker) resolveObject(object string) (Type, error) {
	t, _, err := checker.resolveName(object)
	if err != nil {
		return "", err
	}
	if !checker.env.isClassType(t) {
		return "", makeSemanticError(InvalidOperation, "%s of type %s has no members", object, t)
	}
	return t, nil
}

func (checker *typeChecker) typeCheckStatements(statements []StatementAst) error {
	for _, statement := range statements {
		err := checker.typeCheckStatement(statement)
		if err != nil {
			return err
		}
	}
	return nil
}

func (checker *typeChecker) typeCheckStatement(statement StatementAst) error {
	switch stm := statement.(type) {
	case *VarDeclareAst:
		return checker.declareLocal(stm.VarName, stm.VarType)
	case *VarDeclareAssignAst:
		return checker.typeCheckVarDeclareAssignStatement(stm)
	case *LetStatementAst:
		return checker.typeCheckLetStatement(stm)
	case *DoStatementAst:
		_, err := checker.typeCheckCall(stm.Call)
		return err
	case *ReturnStatementAst:
		return checker.typeCheckReturnStatement(stm)
	case *BlockAst:
		return checker.typeCheckBlock(stm)
	case *IfStatementAst:
		return checker.typeCheckIfStatement(stm)
	case *WhileStatementAst:
		return checker.typeCheckWhileStatement(stm)
	}
	return makeSemanticError(InvalidOperation, "unknown statement %s", statement)
}

// The value is typed before the variable exists, so `int x = x` refers to an outer x.
func (checker *typeChecker) typeCheckVarDeclareAssignStatement(stm *VarDeclareAssignAst) error {
	valueType, err := checker.typeCheckExpression(stm.Value)
	if err != nil {
		return err
	}
	if err = checker.declareLocal(stm.VarName, stm.VarType); err != nil {
		return err
	}
	return checker.env.assertTypeIs(stm.VarType, valueType)
}

func (checker *typeChecker) typeCheckLetStatement(stm *LetStatementAst) error {
	target := stm.LetVariable
	if target.Object == "" && target.VarName == thisKeyword {
		return makeSemanticError(InvalidOperation, "can't assign to this")
	}
	targetType, err := checker.typeCheckVariable(target)
	if err != nil {
		return err
	}
	valueType, err := checker.typeCheckExpression(stm.Value)
	if err != nil {
		return err
	}
	return checker.env.assertTypeIs(targetType, valueType)
}

func (checker *typeChecker) typeCheckReturnStatement(stm *ReturnStatementAst) error {
	expected := checker.curMethod.ReturnType
	if stm.Return == nil {
		if expected != VoidType {
			return makeSemanticError(TypeMismatch, "method %s must return %s", checker.curMethod.FuncName, expected)
		}
		return nil
	}
	actual, err := checker.typeCheckExpression(stm.Return)
	if err != nil {
		return err
	}
	if expected == VoidType {
		return makeSemanticError(TypeMismatch, "void method %s returns a %s", checker.curMethod.FuncName, actual)
	}
	return checker.env.assertTypeIs(expected, actual)
}

func (checker *typeChecker) typeCheckBlock(block *BlockAst) error {
	checker.enterScope()
	defer checker.leaveScope()
	return checker.typeCheckStatements(block.Statements)
}

func (checker *typeChecker) typeCheckCondition(condition ExpressionAst) error {
	t, err := checker.typeCheckExpression(condition)
	if err != nil {
		return err
	}
	if t != BoolType {
		return makeSemanticError(TypeMismatch, "condition %s must be bool, but got %s", condition, t)
	}
	return nil
}

func (checker *typeChecker) typeCheckIfStatement(stm *IfStatementAst) error {
	err := checker.typeCheckCondition(stm.Condition)
	if err != nil {
		return err
	}
	err = checker.typeCheckBlock(stm.IfTrueStatements)
	if err != nil || stm.ElseStatements == nil {
		return err
	}
	return checker.typeCheckBlock(stm.ElseStatements)
}

func (checker *typeChecker) typeCheckWhileStatement(stm *WhileStatementAst) error {
	err := checker.typeCheckCondition(stm.Condition)
	if err != nil {
		return err
	}
	return checker.typeCheckBlock(stm.Statements)
}

// typeCheckExpression types expr post-order and records the result on every node.
func (checker *typeChecker) typeCheckExpression(expr ExpressionAst) (t Type, err error) {
	switch e := expr.(type) {
	case *IntegerConstantAst:
		t = IntType
	case *BooleanConstantAst:
		t = BoolType
	case *BinaryExpressionAst:
		t, err = checker.typeCheckBinaryExpression(e)
	case *UnaryExpressionAst:
		t, err = checker.typeCheckUnaryExpression(e)
	case *VariableAst:
		t, err = checker.typeCheckVariable(e)
	case *CallAst:
		t, err = checker.typeCheckCall(e)
	case *NewObjectAst:
		if !checker.env.isClassNameExist(e.ClassName) {
			return "", makeSemanticError(UnknownType, "unknown class %s", e.ClassName)
		}
		t = Type(e.ClassName)
	default:
		return "", makeSemanticError(InvalidOperation, "unknown expression %s", expr)
	}
	if err != nil {
		return "", err
	}
	expr.setResolvedType(t)
	return t, nil
}

func (checker *typeChecker) typeCheckBinaryExpression(expr *BinaryExpressionAst) (Type, error) {
	l, err := checker.typeCheckExpression(expr.LeftExpr)
	if err != nil {
		return "", err
	}
	r, err := checker.typeCheckExpression(expr.RightExpr)
	if err != nil {
		return "", err
	}
	canonical := binopCanonicalName(expr.Op, l, r)
	t, ok := lookUpOperator(canonical)
	if !ok {
		return "", makeSemanticError(InvalidOperation, "unsupported operation %s on %s and %s", expr.Op, l, r)
	}
	expr.Canonical = canonical
	return t, nil
}

func (checker *typeChecker) typeCheckUnaryExpression(expr *UnaryExpressionAst) (Type, error) {
	operand, err := checker.typeCheckExpression(expr.Expr)
	if err != nil {
		return "", err
	}
	canonical := unopCanonicalName(expr.Op, operand)
	t, ok := lookUpOperator(canonical)
	if !ok {
		return "", makeSemanticError(InvalidOperation, "unsupported operation %s on %s", expr.Op, operand)
	}
	expr.Canonical = canonical
	return t, nil
}

func (checker *typeChecker) typeCheckVariable(variable *VariableAst) (Type, error) {
	if variable.Object == "" {
		t, owner, err := checker.resolveName(variable.VarName)
		if err != nil {
			return "", err
		}
		variable.Owner = owner
		if owner != "" {
			variable.ObjectType = Type(checker.curClass.ClassName)
		}
		variable.setResolvedType(t)
		return t, nil
	}
	objectType, err := checker.resolveObject(variable.Object)
	if err != nil {
		return "", err
	}
	t, owner, ok := checker.env.lookupVarTypeByClass(variable.VarName, string(objectType))
	if !ok {
		return "", makeSemanticError(UndeclaredVariable, "class %s has no variable %s", objectType, variable.VarName)
	}
	variable.Owner, variable.ObjectType = owner, objectType
	variable.setResolvedType(t)
	return t, nil
}

// typeCheckCall types the arguments first, then looks the canonical name up from the
// receiver's class upward. Arguments must match the parameter types exactly.
func (checker *typeChecker) typeCheckCall(call *CallAst) (Type, error) {
	argTypes := make([]Type, len(call.Params))
	for i, param := range call.Params {
		t, err := checker.typeCheckExpression(param)
		if err != nil {
			return "", err
		}
		argTypes[i] = t
	}
	var receiverType Type
	if call.FuncProvider == "" {
		if checker.curClass == nil {
			return "", makeSemanticError(UndeclaredMethod, "undeclared method %s", call.FuncName)
		}
		receiverType = Type(checker.curClass.ClassName)
	} else {
		t, err := checker.resolveObject(call.FuncProvider)
		if err != nil {
			return "", err
		}
		receiverType = t
	}
	canonical := funcCanonicalName(call.FuncName, argTypes)
	fn, ok := checker.env.lookupMethodTypeByClass(canonical, string(receiverType))
	if !ok {
		return "", makeSemanticError(UndeclaredMethod, "class %s has no method %s", receiverType, canonical)
	}
	call.Canonical, call.Owner, call.ObjectType = canonical, fn.ClassName, receiverType
	call.setResolvedType(fn.ReturnType)
	return fn.ReturnType, nil
}

// Check those func who have return a non-void return type, should as least have a return
// on every path.
func methodReturnAnalysis(method *MethodAst) error {
	if method.ReturnTP == VoidType || blockReturnAnalysis(method.FuncBody) {
		return nil
	}
	return makeSemanticError(MissingReturn, "method %s doesn't return on every path", method.FuncName)
}

func blockReturnAnalysis(block *BlockAst) bool {
	for _, statement := range block.Statements {
		if statementReturnAnalysis(statement) {
			return true
		}
	}
	return false
}

func statementReturnAnalysis(statement StatementAst) bool {
	switch stm := statement.(type) {
	case *ReturnStatementAst:
		return true
	case *BlockAst:
		return blockReturnAnalysis(stm)
	case *IfStatementAst:
		return stm.ElseStatements != nil && blockReturnAnalysis(stm.IfTrueStatements) &&
			blockReturnAnalysis(stm.ElseStatements)
	}
	// A while body may never run.
	return false
}
