package internal

import (
	"io"
)

// Parser is a recursive descent parser over the tokens of one dflat source.
type Parser struct {
	currentTokenPos int
	currentTokens   []*Token
}

// Those identifiers are recognised by content and can't be used as names.
const (
	classKeyword   = "class"
	extendsKeyword = "extends"
	returnKeyword  = "return"
	trueKeyword    = "true"
	falseKeyword   = "false"
	thisKeyword    = "this"
)

var reservedNames = map[string]bool{
	classKeyword:   true,
	extendsKeyword: true,
	returnKeyword:  true,
	trueKeyword:    true,
	falseKeyword:   true,
	thisKeyword:    true,
}

func (parser *Parser) reset() {
	parser.currentTokenPos, parser.currentTokens = 0, nil
}

// Parse tokenizes rd and parses the whole program.
func (parser *Parser) Parse(rd io.Reader) (*ProgramAst, error) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return nil, err
	}
	parser.reset()
	parser.currentTokens = tokens
	return parser.ParseProgram()
}

// program := { classDecl }
func (parser *Parser) ParseProgram() (*ProgramAst, error) {
	program := &ProgramAst{}
	for {
		parser.skipNewLines()
		if !parser.hasRemainTokens() {
			return program, nil
		}
		class, err := parser.ParseClassDeclaration()
		if err != nil {
			return nil, err
		}
		program.Classes = append(program.Classes, class)
	}
}

// class Identifier [extends Identifier] {
//    members
// }
func (parser *Parser) ParseClassDeclaration() (*ClassAst, error) {
	if !parser.expectKeyword(classKeyword) {
		return nil, parser.makeError(true)
	}
	className, err := parser.parseName()
	if err != nil {
		return nil, err
	}
	class := &ClassAst{ClassName: className}
	if parser.expectKeyword(extendsKeyword) {
		class.ParentName, err = parser.parseName()
		if err != nil {
			return nil, err
		}
	}
	parser.skipNewLines()
	_, match := parser.expectToken(LeftBraceTP, true)
	if !match {
		return nil, parser.makeError(true)
	}
	for {
		parser.skipNewLines()
		if !parser.hasRemainTokens() {
			return nil, parser.makeError(false)
		}
		if _, match = parser.expectToken(RightBraceTP, true); match {
			return class, nil
		}
		member, err := parser.ParseMemberDeclaration()
		if err != nil {
			return nil, err
		}
		class.Members = append(class.Members, member)
	}
}

// A member is a field: `int x`, or a method: `int f(int a, bool b) { statements }`.
func (parser *Parser) ParseMemberDeclaration() (Ast, error) {
	tp, err := parser.parseTypeName()
	if err != nil {
		return nil, err
	}
	name, err := parser.parseName()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(LeftParentThesesTP, false); !match {
		if err = parser.expectStatementEnd(); err != nil {
			return nil, err
		}
		return &VarDeclareAst{VarType: tp, VarName: name}, nil
	}
	method := &MethodAst{ReturnTP: tp, FuncName: name}
	method.Params, err = parser.ParseFuncParams()
	if err != nil {
		return nil, err
	}
	method.FuncBody, err = parser.ParseBlock()
	if err != nil {
		return nil, err
	}
	if err = parser.expectStatementEnd(); err != nil {
		return nil, err
	}
	return method, nil
}

// (type name, type name)
func (parser *Parser) ParseFuncParams() (params []*FuncParamAst, err error) {
	_, match := parser.expectToken(LeftParentThesesTP, true)
	if !match {
		return nil, parser.makeError(true)
	}
	if _, match = parser.expectToken(RightParentThesesTP, true); match {
		return nil, nil
	}
	for {
		param := &FuncParamAst{}
		param.ParamTP, err = parser.parseTypeName()
		if err != nil {
			return nil, err
		}
		param.ParamName, err = parser.parseName()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if _, match = parser.expectToken(CommaTP, true); !match {
			break
		}
	}
	if _, match = parser.expectToken(RightParentThesesTP, true); !match {
		return nil, parser.makeError(true)
	}
	return params, nil
}

// {
//    statement
//    statement
// }
func (parser *Parser) ParseBlock() (*BlockAst, error) {
	parser.skipNewLines()
	_, match := parser.expectToken(LeftBraceTP, true)
	if !match {
		return nil, parser.makeError(true)
	}
	block := &BlockAst{}
	for {
		parser.skipNewLines()
		if !parser.hasRemainTokens() {
			return nil, parser.makeError(false)
		}
		if _, match = parser.expectToken(RightBraceTP, true); match {
			return block, nil
		}
		statement, err := parser.ParseStatement()
		if err != nil {
			return nil, err
		}
		if err = parser.expectStatementEnd(); err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, statement)
	}
}

func (parser *Parser) ParseStatement() (StatementAst, error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	switch token.tp {
	case IfTP:
		return parser.ParseIfStatement()
	case WhileTP:
		return parser.ParseWhileStatement()
	case LeftBraceTP:
		return parser.ParseBlock()
	case IdentifierTP:
		if token.content == returnKeyword {
			return parser.ParseReturnStatement()
		}
		// type name starts a declaration, otherwise it's an assignment or a call.
		if next := parser.peekToken(1); next != nil && next.tp == IdentifierTP {
			return parser.ParseVarDeclaration()
		}
		return parser.ParseLetOrDoStatement()
	}
	// for is a keyword, but there is no for statement yet.
	return nil, parser.makeError(true)
}

// if exp { statements } [else { statements }]
func (parser *Parser) ParseIfStatement() (*IfStatementAst, error) {
	if _, match := parser.expectToken(IfTP, true); !match {
		return nil, parser.makeError(true)
	}
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	ifTrue, err := parser.ParseBlock()
	if err != nil {
		return nil, err
	}
	ret := &IfStatementAst{Condition: condition, IfTrueStatements: ifTrue}
	pos := parser.currentTokenPos
	parser.skipNewLines()
	if _, match := parser.expectToken(ElseTP, true); !match {
		// The newlines end the if statement.
		parser.currentTokenPos = pos
		return ret, nil
	}
	ret.ElseStatements, err = parser.ParseBlock()
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// while exp { statements }
func (parser *Parser) ParseWhileStatement() (*WhileStatementAst, error) {
	if _, match := parser.expectToken(WhileTP, true); !match {
		return nil, parser.makeError(true)
	}
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := parser.ParseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStatementAst{Condition: condition, Statements: body}, nil
}

// return [exp]
func (parser *Parser) ParseReturnStatement() (*ReturnStatementAst, error) {
	if !parser.expectKeyword(returnKeyword) {
		return nil, parser.makeError(true)
	}
	if parser.atStatementEnd() {
		return &ReturnStatementAst{}, nil
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ReturnStatementAst{Return: value}, nil
}

// type name [= exp]
func (parser *Parser) ParseVarDeclaration() (StatementAst, error) {
	tp, err := parser.parseTypeName()
	if err != nil {
		return nil, err
	}
	name, err := parser.parseName()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(AssignTP, true); !match {
		return &VarDeclareAst{VarType: tp, VarName: name}, nil
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	return &VarDeclareAssignAst{VarType: tp, VarName: name, Value: value}, nil
}

// [obj.]name = exp, or [obj.]name(args)
func (parser *Parser) ParseLetOrDoStatement() (StatementAst, error) {
	object, name, err := parser.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	if _, match := parser.expectToken(LeftParentThesesTP, false); match {
		call, err := parser.parseFuncCall(object, name)
		if err != nil {
			return nil, err
		}
		return &DoStatementAst{Call: call}, nil
	}
	if _, match := parser.expectToken(AssignTP, true); !match {
		return nil, parser.makeError(true)
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	return &LetStatementAst{LetVariable: &VariableAst{Object: object, VarName: name}, Value: value}, nil
}

// [obj.]name where obj may be this, and name may be this only when unqualified.
func (parser *Parser) parseQualifiedName() (object string, name string, err error) {
	token, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return "", "", parser.makeError(true)
	}
	if _, match = parser.expectToken(DotTP, true); !match {
		if token.content != thisKeyword && reservedNames[token.content] {
			return "", "", parser.makeError(false)
		}
		return "", token.content, nil
	}
	if token.content != thisKeyword && reservedNames[token.content] {
		return "", "", parser.makeError(false)
	}
	name, err = parser.parseName()
	return token.content, name, err
}

// parseName reads an identifier that may name a class, member or local.
func (parser *Parser) parseName() (string, error) {
	token, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return "", parser.makeError(true)
	}
	if reservedNames[token.content] {
		return "", parser.makeError(false)
	}
	return token.content, nil
}

// Type names are resolved later, so int, bool, void and class names all look the same here.
func (parser *Parser) parseTypeName() (Type, error) {
	name, err := parser.parseName()
	return Type(name), err
}

func (parser *Parser) expectKeyword(keyword string) bool {
	token, match := parser.expectToken(IdentifierTP, false)
	if !match || token.content != keyword {
		return false
	}
	parser.stepForward()
	return true
}

// A statement ends at a newline, or right before the } closing its block.
func (parser *Parser) atStatementEnd() bool {
	if !parser.hasRemainTokens() {
		return true
	}
	token, _ := parser.getCurrentToken()
	return token.tp == NewLineTP || token.tp == RightBraceTP
}

func (parser *Parser) expectStatementEnd() error {
	if !parser.atStatementEnd() {
		return parser.makeError(true)
	}
	parser.expectToken(NewLineTP, true)
	return nil
}

func (parser *Parser) skipNewLines() {
	for {
		if _, match := parser.expectToken(NewLineTP, true); !match {
			return
		}
	}
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens)
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) getCurrentToken() (*Token, error) {
	if !parser.hasRemainTokens() {
		return nil, parser.makeError(true)
	}
	return parser.currentTokens[parser.currentTokenPos], nil
}

func (parser *Parser) peekToken(offset int) *Token {
	pos := parser.currentTokenPos + offset
	if pos >= len(parser.currentTokens) {
		return nil
	}
	return parser.currentTokens[pos]
}

func (parser *Parser) expectToken(expectedTokenTp TokenType, walk bool) (*Token, bool) {
	if parser.currentTokenPos >= len(parser.currentTokens) || parser.currentTokens[parser.currentTokenPos].tp !=
		expectedTokenTp {
		return nil, false
	}
	token := parser.currentTokens[parser.currentTokenPos]
	if walk {
		parser.currentTokenPos++
	}
	return token, true
}

func (parser *Parser) makeError(useCurrentPos bool) error {
	currentPos := parser.currentTokenPos
	if !useCurrentPos {
		currentPos--
	}
	if currentPos < 0 || currentPos >= len(parser.currentTokens) {
		return makeError(SyntaxError, "unexpected token ends")
	}
	currentToken := parser.currentTokens[currentPos]
	return makeError(SyntaxError, "syntax error near %s at line %d", currentToken, currentToken.line)
}
