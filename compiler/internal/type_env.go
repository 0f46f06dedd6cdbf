package internal

// TypeEnv is the symbol table of a whole program, keyed by class name.
type TypeEnv map[string]*ClassSymbolTable

type ClassSymbolTable struct {
	ClassName  string
	ParentName string
	// Fields declared by this class only, inherited ones are found through ParentName.
	VariablesSymbolTable map[string]Type
	variableOrder        []string
	// Methods keyed by canonical name.
	FuncSymbolTable map[string]*FuncSymbolTable
	funcOrder       []string
}

type FuncSymbolTable struct {
	ClassName  string // The declaring class.
	FuncName   string
	Canonical  string
	ParamTypes []Type
	ParamNames []string
	ReturnType Type
}

// Fields returns the names of the fields declared by this class, in source order.
func (classSymbolTable *ClassSymbolTable) Fields() []string {
	return classSymbolTable.variableOrder
}

// Funcs returns the methods declared by this class, in source order.
func (classSymbolTable *ClassSymbolTable) Funcs() []*FuncSymbolTable {
	funcs := make([]*FuncSymbolTable, len(classSymbolTable.funcOrder))
	for i, canonical := range classSymbolTable.funcOrder {
		funcs[i] = classSymbolTable.FuncSymbolTable[canonical]
	}
	return funcs
}

// buildTypeEnv registers every class first, so that classes and methods can be used before
// their declaration, then fills members and checks the inheritance graph once.
func buildTypeEnv(program *ProgramAst) (TypeEnv, error) {
	env := TypeEnv{}
	for _, class := range program.Classes {
		err := env.registerClass(class)
		if err != nil {
			return nil, err
		}
	}
	for _, class := range program.Classes {
		err := env.buildClassSymbolTable(class)
		if err != nil {
			return nil, err
		}
	}
	err := env.checkInheritance()
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (env TypeEnv) registerClass(class *ClassAst) error {
	className := Type(class.ClassName)
	if className.isPrimitive() || className == VoidType {
		return makeSemanticError(DuplicateDeclaration, "class %s redeclares a primitive type", className)
	}
	if _, ok := env[class.ClassName]; ok {
		return makeSemanticError(DuplicateDeclaration, "found duplicate className: %s", className)
	}
	env[class.ClassName] = &ClassSymbolTable{
		ClassName:            class.ClassName,
		ParentName:           class.ParentName,
		VariablesSymbolTable: map[string]Type{},
		FuncSymbolTable:      map[string]*FuncSymbolTable{},
	}
	return nil
}

func (env TypeEnv) buildClassSymbolTable(class *ClassAst) error {
	classSymbolTable := env[class.ClassName]
	if class.ParentName != "" && !env.isClassNameExist(class.ParentName) {
		return makeSemanticError(UnknownType, "unknown parent class %s of class %s", class.ParentName, class.ClassName)
	}
	for _, field := range class.Fields() {
		err := env.buildVariable(classSymbolTable, field)
		if err != nil {
			return err
		}
	}
	for _, method := range class.Methods() {
		err := env.buildMethod(classSymbolTable, method)
		if err != nil {
			return err
		}
	}
	return nil
}

func (env TypeEnv) buildVariable(classSymbolTable *ClassSymbolTable, field *VarDeclareAst) error {
	if !env.validType(field.VarType) {
		return makeSemanticError(UnknownType, "unknown type %s of field %s on class %s", field.VarType,
			field.VarName, classSymbolTable.ClassName)
	}
	if _, ok := classSymbolTable.VariablesSymbolTable[field.VarName]; ok {
		return makeSemanticError(DuplicateDeclaration, "duplicate variable name: %s on class %s", field.VarName,
			classSymbolTable.ClassName)
	}
	classSymbolTable.VariablesSymbolTable[field.VarName] = field.VarType
	classSymbolTable.variableOrder = append(classSymbolTable.variableOrder, field.VarName)
	return nil
}

func (env TypeEnv) buildMethod(classSymbolTable *ClassSymbolTable, method *MethodAst) error {
	if method.ReturnTP != VoidType && !env.validType(method.ReturnTP) {
		return makeSemanticError(UnknownType, "unknown return type %s of method %s on class %s", method.ReturnTP,
			method.FuncName, classSymbolTable.ClassName)
	}
	fn := &FuncSymbolTable{
		ClassName:  classSymbolTable.ClassName,
		FuncName:   method.FuncName,
		ReturnType: method.ReturnTP,
	}
	names := map[string]bool{}
	for _, param := range method.Params {
		if !env.validType(param.ParamTP) {
			return makeSemanticError(UnknownType, "unknown type %s of param %s in method %s", param.ParamTP,
				param.ParamName, method.FuncName)
		}
		if names[param.ParamName] {
			return makeSemanticError(DuplicateDeclaration, "duplicate param name: %s in method %s", param.ParamName,
				method.FuncName)
		}
		names[param.ParamName] = true
		fn.ParamTypes = append(fn.ParamTypes, param.ParamTP)
		fn.ParamNames = append(fn.ParamNames, param.ParamName)
	}
	fn.Canonical = funcCanonicalName(method.FuncName, fn.ParamTypes)
	if _, ok := classSymbolTable.FuncSymbolTable[fn.Canonical]; ok {
		return makeSemanticError(DuplicateDeclaration, "duplicate method: %s at class %s", fn.Canonical,
			classSymbolTable.ClassName)
	}
	classSymbolTable.FuncSymbolTable[fn.Canonical] = fn
	classSymbolTable.funcOrder = append(classSymbolTable.funcOrder, fn.Canonical)
	return nil
}

// checkInheritance walks every parent chain once. Lookups afterwards assume the graph is a forest.
func (env TypeEnv) checkInheritance() error {
	done := map[string]bool{}
	for className := range env {
		onPath := map[string]bool{}
		for name := className; name != "" && !done[name]; name = env[name].ParentName {
			if onPath[name] {
				return makeSemanticError(CyclicInheritance, "cyclic inheritance involving class %s", name)
			}
			onPath[name] = true
		}
		for name := range onPath {
			done[name] = true
		}
	}
	return nil
}

func (env TypeEnv) lookUpClass(className string) *ClassSymbolTable {
	return env[className]
}

func (env TypeEnv) isClassNameExist(className string) bool {
	_, ok := env[className]
	return ok
}

// validType reports whether t can be the type of a variable: a primitive or a declared class.
func (env TypeEnv) validType(t Type) bool {
	return t.isPrimitive() || env.isClassNameExist(string(t))
}

func (env TypeEnv) isClassType(t Type) bool {
	return !t.isPrimitive() && env.isClassNameExist(string(t))
}

// lookupVarTypeByClass finds field varName in className or its nearest ancestor declaring it.
// owner is the declaring class.
func (env TypeEnv) lookupVarTypeByClass(varName, className string) (t Type, owner string, ok bool) {
	for class := env.lookUpClass(className); class != nil; class = env.lookUpClass(class.ParentName) {
		if t, ok = class.VariablesSymbolTable[varName]; ok {
			return t, class.ClassName, true
		}
	}
	return "", "", false
}

// lookupMethodTypeByClass finds the method with the given canonical name in className or its
// nearest ancestor declaring it. The declaring class is the returned table's ClassName.
func (env TypeEnv) lookupMethodTypeByClass(canonical, className string) (*FuncSymbolTable, bool) {
	for class := env.lookUpClass(className); class != nil; class = env.lookUpClass(class.ParentName) {
		if fn, ok := class.FuncSymbolTable[canonical]; ok {
			return fn, true
		}
	}
	return nil, false
}

// ancestors returns className and its ancestors, root first.
func (env TypeEnv) ancestors(className string) (chain []string) {
	for class := env.lookUpClass(className); class != nil; class = env.lookUpClass(class.ParentName) {
		chain = append([]string{class.ClassName}, chain...)
	}
	return
}

// isSubclassOf reports whether derived is ancestor or inherits from it.
func (env TypeEnv) isSubclassOf(derived, ancestor string) bool {
	for class := env.lookUpClass(derived); class != nil; class = env.lookUpClass(class.ParentName) {
		if class.ClassName == ancestor {
			return true
		}
	}
	return false
}

// assertTypeIs accepts actual where expected is required: equal types, or a class value
// whose class descends from the expected class.
func (env TypeEnv) assertTypeIs(expected, actual Type) error {
	if expected == actual {
		return nil
	}
	if env.isClassType(expected) && env.isClassType(actual) && env.isSubclassOf(string(actual), string(expected)) {
		return nil
	}
	return makeSemanticError(TypeMismatch, "expect type %s, but got %s", expected, actual)
}
