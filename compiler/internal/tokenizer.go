package internal

import (
	"bufio"
	"dflat/util"
	"io"
	"strings"
)

// A simple Tokenizer for dflat.

// Dflat source has those elements:
// * KeyWord: if, else, for, while, new. Other reserved words (class, extends, return, true,
// 			false, this) are identifiers that the parser recognises by content.
// * Symbol: (, ), ,, {, }, =, +, -, *, /, !, ., newline, ==, !=, &&, ||.
// * Constant: integer.
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: //.

type TokenType int

const (
	IfTP                TokenType = iota // if
	ElseTP                               // else
	ForTP                                // for
	WhileTP                              // while
	NewTP                                // new
	LeftParentThesesTP                   // (
	RightParentThesesTP                  // )
	CommaTP                              // ,
	LeftBraceTP                          // {
	RightBraceTP                         // }
	AssignTP                             // =
	AddTP                                // +
	MinusTP                              // -
	MultiplyTP                           // *
	DivideTP                             // /
	NotTP                                // !
	DotTP                                // .
	NewLineTP                            // \n
	EqualTP                              // ==
	NotEqualTP                           // !=
	AndTP                                // &&
	OrTP                                 // ||
	IntegerTP                            // 1010
	IdentifierTP                         // varA
)

var tokenTypeNames = map[TokenType]string{
	IfTP: "if", ElseTP: "else", ForTP: "for", WhileTP: "while", NewTP: "new",
	LeftParentThesesTP: "(", RightParentThesesTP: ")", CommaTP: ",", LeftBraceTP: "{",
	RightBraceTP: "}", AssignTP: "=", AddTP: "+", MinusTP: "-", MultiplyTP: "*", DivideTP: "/",
	NotTP: "!", DotTP: ".", NewLineTP: "newline", EqualTP: "==", NotEqualTP: "!=", AndTP: "&&",
	OrTP: "||", IntegerTP: "integer", IdentifierTP: "identifier",
}

func (tp TokenType) String() string {
	return tokenTypeNames[tp]
}

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"if":    IfTP,
	"else":  ElseTP,
	"for":   ForTP,
	"while": WhileTP,
	"new":   NewTP,
}

// simpleSymbolTokenTPMap is the mapping from one character symbols to the corresponding TokenTP.
var simpleSymbolTokenTPMap = map[byte]TokenType{
	'(':  LeftParentThesesTP,
	')':  RightParentThesesTP,
	',':  CommaTP,
	'{':  LeftBraceTP,
	'}':  RightBraceTP,
	'=':  AssignTP,
	'+':  AddTP,
	'-':  MinusTP,
	'*':  MultiplyTP,
	'/':  DivideTP,
	'!':  NotTP,
	'.':  DotTP,
	'\n': NewLineTP,
}

// doubleSymbolTokenTPMap is checked before simpleSymbolTokenTPMap so that == is never read as two =.
var doubleSymbolTokenTPMap = map[string]TokenType{
	"==": EqualTP,
	"!=": NotEqualTP,
	"&&": AndTP,
	"||": OrTP,
}

type Token struct {
	content  string
	line     int
	startPos int
	endPos   int
	tp       TokenType
}

func (t *Token) String() string {
	if t.tp == NewLineTP {
		return "\\n"
	}
	return t.content
}

type Tokenizer struct {
	currentPos  int
	currentLine int
	tokens      []*Token
}

// getNextToken returns the next token from line, or nil when the rest of line is blank or a comment.
func (tokenizer *Tokenizer) getNextToken(line []byte) (*Token, error) {
	tokenizer.trimSpace(line)
	if !tokenizer.hasRemainCharacters(line) {
		return nil, nil
	}
	b := line[tokenizer.currentPos]
	switch {
	case b == '/' && tokenizer.currentPos+1 < len(line) && line[tokenizer.currentPos+1] == '/':
		// Comment to the end of line, but keep the newline: it still ends a statement.
		tokenizer.currentPos = len(line)
		if line[len(line)-1] == '\n' {
			tokenizer.currentPos--
		}
		return tokenizer.getNextToken(line)
	case util.IsNumber(b):
		return tokenizer.tokenNumber(line), nil
	case util.IsLetterOrUnderscore(b):
		return tokenizer.toKeywordOrIdentifier(line), nil
	}
	if token := tokenizer.tokenDoubleSymbol(line); token != nil {
		return token, nil
	}
	if token := tokenizer.tokenSimpleSymbol(line); token != nil {
		return token, nil
	}
	return nil, makeError(IllegalCharacter, "Illegal character: %c at line %d", b, tokenizer.currentLine)
}

// trimSpace will step forward through line and skip all continuous blanks.
func (tokenizer *Tokenizer) trimSpace(line []byte) {
	for tokenizer.currentPos < len(line) && util.IsBlank(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters(line []byte) bool {
	return tokenizer.currentPos < len(line)
}

func (tokenizer *Tokenizer) tokenDoubleSymbol(line []byte) *Token {
	if tokenizer.currentPos+1 >= len(line) {
		return nil
	}
	symbol := string(line[tokenizer.currentPos : tokenizer.currentPos+2])
	tp, ok := doubleSymbolTokenTPMap[symbol]
	if !ok {
		return nil
	}
	token := &Token{
		content:  symbol,
		line:     tokenizer.currentLine,
		tp:       tp,
		startPos: tokenizer.currentPos,
		endPos:   tokenizer.currentPos + 2,
	}
	tokenizer.currentPos += 2
	return token
}

func (tokenizer *Tokenizer) tokenSimpleSymbol(line []byte) *Token {
	symbol := line[tokenizer.currentPos]
	tp, ok := simpleSymbolTokenTPMap[symbol]
	if !ok {
		return nil
	}
	token := &Token{
		content:  string(symbol),
		line:     tokenizer.currentLine,
		tp:       tp,
		startPos: tokenizer.currentPos,
		endPos:   tokenizer.currentPos + 1,
	}
	tokenizer.currentPos++
	return token
}

func (tokenizer *Tokenizer) tokenNumber(line []byte) *Token {
	// Look forward to find a continuous number. Whatever follows is the parser's concern.
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) && util.IsNumber(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	return &Token{
		content:  string(line[startPos:tokenizer.currentPos]),
		line:     tokenizer.currentLine,
		tp:       IntegerTP,
		startPos: startPos,
		endPos:   tokenizer.currentPos,
	}
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier(line []byte) *Token {
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) && util.IsLetterOrUnderscoreOrNumber(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	content := string(line[startPos:tokenizer.currentPos])
	tp, isKeyWord := keyWordTokenTPMap[content]
	if !isKeyWord {
		tp = IdentifierTP
	}
	return &Token{
		content:  content,
		line:     tokenizer.currentLine,
		tp:       tp,
		startPos: startPos,
		endPos:   tokenizer.currentPos,
	}
}

// Tokenize accepts a source `rd` and tokenizes its content according to dflat rules.
// This method is the main method of this tokenizer.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) (tokens []*Token, err error) {
	bfReader := bufio.NewReader(rd)
	tokenizer.currentLine = 0
	for {
		tokenizer.currentLine++
		tokenizer.currentPos = 0
		line, readErr := bfReader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}
		err = tokenizer.parseLine(line)
		if err != nil {
			return nil, err
		}
		if readErr == io.EOF {
			return tokenizer.tokens, nil
		}
	}
}

func (tokenizer *Tokenizer) parseLine(line []byte) error {
	for {
		token, err := tokenizer.getNextToken(line)
		if err != nil {
			return err
		}
		if token == nil {
			return nil
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
	}
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine = 0, 0
	tokenizer.tokens = nil
}

func tokenize(source string) ([]*Token, error) {
	tokenizer := &Tokenizer{}
	return tokenizer.Tokenize(strings.NewReader(source))
}
