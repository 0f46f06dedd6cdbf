package internal

import (
	"strconv"
)

// buildExpressionsTree folds terms and the binary ops between them into one tree by
// precedence climbing. len(exprTerms) is always len(ops) + 1.
func buildExpressionsTree(ops []*OpAst, exprTerms []ExpressionAst) ExpressionAst {
	if len(ops) == 0 {
		return exprTerms[0]
	}
	ret, _ := buildExpressionsTree0(ops, exprTerms, 0, 0, nil)
	return ret
}

// buildExpressionsTree0 consumes ops from loc while their priority is at least minPriority,
// or while they are chainOp. A chain of one associative op nests to the right, any other run
// of equal priority nests to the left.
func buildExpressionsTree0(ops []*OpAst, exprTerms []ExpressionAst, loc int, minPriority int,
	chainOp *OpAst) (ExpressionAst, int) {
	lhs := exprTerms[loc]
	i := loc
	for i < len(ops) && (ops[i].priority >= minPriority || ops[i] == chainOp) {
		op := ops[i]
		rhs := exprTerms[i+1]
		j := i + 1
		for j < len(ops) && (ops[j].priority > op.priority || (op.associative && ops[j] == op)) {
			if ops[j] == op {
				rhs, j = buildExpressionsTree0(ops, exprTerms, j, op.priority+1, op)
			} else {
				rhs, j = buildExpressionsTree0(ops, exprTerms, j, ops[j].priority, nil)
			}
		}
		lhs = &BinaryExpressionAst{LeftExpr: lhs, Op: op, RightExpr: rhs}
		exprTerms[j] = lhs
		i = j
	}
	return lhs, i
}

func (parser *Parser) parseExpressions() (exprs []ExpressionAst, err error) {
	for parser.hasRemainTokens() {
		expression, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expression)
		_, match := parser.expectToken(CommaTP, false)
		if !match {
			break
		}
		parser.stepForward()
	}
	return
}

func (parser *Parser) parseExpression() (ExpressionAst, error) {
	leftExprTerm, err := parser.parseExpressionTerm()
	if err != nil {
		return nil, err
	}
	var ops []*OpAst
	exprTerms := []ExpressionAst{leftExprTerm}
	for parser.matchOp() {
		op, err := parser.parseOpAst()
		if err != nil {
			return nil, err
		}
		exprTerm, err := parser.parseExpressionTerm()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		exprTerms = append(exprTerms, exprTerm)
	}
	return buildExpressionsTree(ops, exprTerms), nil
}

func (parser *Parser) parseExpressionTerm() (expr ExpressionAst, err error) {
	if !parser.hasRemainTokens() {
		return nil, parser.makeError(false)
	}
	token, _ := parser.getCurrentToken()
	switch token.tp {
	case IntegerTP:
		expr, err = parser.parseIntegerConstantTerm()
	// When it's identifier, it can be a constant, a call or a variable like: i, obj.i
	case IdentifierTP:
		switch token.content {
		case trueKeyword, falseKeyword:
			parser.stepForward()
			expr = &BooleanConstantAst{Value: token.content == trueKeyword}
		default:
			expr, err = parser.parseSubRoutineCallExpressionOrVarExpressionTerm()
		}
	case NewTP:
		expr, err = parser.parseNewObjectTerm()
	case LeftParentThesesTP:
		expr, err = parser.parseSubExpressionTerm()
	// An unary operation for negative.
	case MinusTP, NotTP:
		expr, err = parser.parseNegationExpressionTerm()
	default:
		err = parser.makeError(true)
	}
	return
}

func (parser *Parser) parseIntegerConstantTerm() (ExpressionAst, error) {
	token, match := parser.expectToken(IntegerTP, true)
	if !match {
		return nil, parser.makeError(true)
	}
	// The target int is a C int.
	value, err := strconv.ParseInt(token.content, 10, 32)
	if err != nil {
		return nil, makeError(SyntaxError, "integer constant %s out of range at line %d", token.content, token.line)
	}
	return &IntegerConstantAst{Value: int(value)}, nil
}

// Could be varName|obj.varName|funcName(args)|obj.funcName(args).
func (parser *Parser) parseSubRoutineCallExpressionOrVarExpressionTerm() (ExpressionAst, error) {
	object, name, err := parser.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(LeftParentThesesTP, false); match {
		return parser.parseFuncCall(object, name)
	}
	return &VariableAst{Object: object, VarName: name}, nil
}

// The provider and name are already consumed, the parser is at the (.
func (parser *Parser) parseFuncCall(provider string, funcName string) (*CallAst, error) {
	if _, match := parser.expectToken(LeftParentThesesTP, true); !match {
		return nil, parser.makeError(true)
	}
	call := &CallAst{FuncProvider: provider, FuncName: funcName}
	if _, match := parser.expectToken(RightParentThesesTP, true); match {
		return call, nil
	}
	params, err := parser.parseExpressions()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true)
	}
	call.Params = params
	return call, nil
}

// new ClassName, optionally followed by (). Constructor arguments are rejected.
func (parser *Parser) parseNewObjectTerm() (ExpressionAst, error) {
	if _, match := parser.expectToken(NewTP, true); !match {
		return nil, parser.makeError(true)
	}
	className, err := parser.parseName()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(LeftParentThesesTP, true); match {
		if _, match = parser.expectToken(RightParentThesesTP, true); !match {
			return nil, parser.makeError(true)
		}
	}
	return &NewObjectAst{ClassName: className}, nil
}

// Parentheses only group, they don't produce a node.
func (parser *Parser) parseSubExpressionTerm() (ExpressionAst, error) {
	_, match := parser.expectToken(LeftParentThesesTP, true)
	if !match {
		return nil, parser.makeError(false)
	}
	expr, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	_, match = parser.expectToken(RightParentThesesTP, true)
	if !match {
		return nil, parser.makeError(true)
	}
	return expr, nil
}

// Note: for expession, 5 + -2, our compiler won't generate error, as c does.
func (parser *Parser) parseNegationExpressionTerm() (ExpressionAst, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	var op *OpAst
	switch token.tp {
	case NotTP:
		op = &BooleanNegationOpAst
	case MinusTP:
		op = &NegationOpAst
	default:
		return nil, parser.makeError(true)
	}
	parser.stepForward()
	exprTerm, err := parser.parseExpressionTerm()
	if err != nil {
		return nil, err
	}
	return &UnaryExpressionAst{Op: op, Expr: exprTerm}, nil
}

var binaryOpTokenMap = map[TokenType]*OpAst{
	AddTP:      &AddOpAst,
	MinusTP:    &MinusOpAst,
	MultiplyTP: &MultipleOpAst,
	DivideTP:   &DivideOpAst,
	AndTP:      &AndOpAst,
	OrTP:       &OrOpAst,
	EqualTP:    &EqualOpAst,
	NotEqualTP: &NotEqualOpAst,
}

func (parser *Parser) parseOpAst() (*OpAst, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	op, ok := binaryOpTokenMap[token.tp]
	if !ok {
		return nil, parser.makeError(true)
	}
	parser.stepForward()
	return op, nil
}

func (parser *Parser) matchOp() bool {
	if !parser.hasRemainTokens() {
		return false
	}
	token, _ := parser.getCurrentToken()
	_, ok := binaryOpTokenMap[token.tp]
	return ok
}

// parseExpressionSource parses a standalone expression, all tokens must be consumed.
func parseExpressionSource(source string) (ExpressionAst, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	parser := &Parser{currentTokens: tokens}
	expr, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	parser.skipNewLines()
	if parser.hasRemainTokens() {
		return nil, parser.makeError(true)
	}
	return expr, nil
}
