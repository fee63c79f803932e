package sql

import (
	"strings"
)

type Token struct {
	Type  TokenType
	Value string
}

type TokenType int

const (
	Identifier TokenType = iota
	TableIdentifier
	Wildcard
	String
	Int
	Literal
	Comma
	Semicolon
	ParenOpen
	ParenClose
	Equals
	Operator
	And
	Or
	Select
	From
	Where
	Limit
	Order
	By
	Asc
	Desc
	Count
	Group
	Having
	Create
	Insert
	Into
	Values
	Update
	Set
	Delete
	Join
	Inner
	On
	EOF
	Unknown
)

var keywords = map[string]TokenType{
	"TABLE":  TableIdentifier,
	"AND":    And,
	"OR":     Or,
	"SELECT": Select,
	"FROM":   From,
	"WHERE":  Where,
	"LIMIT":  Limit,
	"ORDER":  Order,
	"BY":     By,
	"ASC":    Asc,
	"DESC":   Desc,
	"COUNT":  Count,
	"GROUP":  Group,
	"HAVING": Having,
	"CREATE": Create,
	"INSERT": Insert,
	"INTO":   Into,
	"VALUES": Values,
	"UPDATE": Update,
	"SET":    Set,
	"DELETE": Delete,
	"JOIN":   Join,
	"INNER":  Inner,
	"ON":     On,
}

var punctuation = map[byte]TokenType{
	',': Comma,
	';': Semicolon,
	'(': ParenOpen,
	')': ParenClose,
	'*': Wildcard,
}

// valued token types print their text alongside the type name
var tokenNames = map[TokenType]string{
	Identifier:      "Identifier",
	TableIdentifier: "TableIdentifier",
	Wildcard:        "Wildcard",
	String:          "String",
	Int:             "Int",
	Literal:         "Literal",
	Comma:           "Comma",
	Semicolon:       "Semicolon",
	ParenOpen:       "ParenOpen",
	ParenClose:      "ParenClose",
	Equals:          "Equals",
	Operator:        "Operator",
	EOF:             "EOF",
}

func (token Token) String() string {
	switch token.Type {
	case Identifier, String, Int, Literal, Operator:
		return tokenNames[token.Type] + "(" + token.Value + ")"
	case Unknown:
		return "Unknown(" + token.Value + ")"
	}
	if name, ok := tokenNames[token.Type]; ok {
		return name
	}
	// keywords print as written, upper-cased
	return "Keyword(" + strings.ToUpper(token.Value) + ")"
}

// Lexer reads tokens from a statement. Its whole state is the byte offset
// of the next unread character.
type Lexer struct {
	sql string
	pos int
}

func NewLexer(sql string) *Lexer {
	return &Lexer{sql: sql}
}

func (lexer *Lexer) peekByte() byte {
	if lexer.pos >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.pos]
}

// scan advances over every byte accepted by keep and returns them.
func (lexer *Lexer) scan(keep func(byte) bool) string {
	start := lexer.pos
	for lexer.pos < len(lexer.sql) && keep(lexer.sql[lexer.pos]) {
		lexer.pos++
	}
	return lexer.sql[start:lexer.pos]
}

func (lexer *Lexer) skipWhitespace() {
	lexer.scan(isWhitespace)
}

func (lexer *Lexer) NextToken() Token {
	lexer.skipWhitespace()

	ch := lexer.peekByte()
	switch {
	case ch == 0:
		return Token{Type: EOF}
	case ch == '\'' || ch == '"':
		return lexer.quoted(ch)
	case isOperator(ch):
		operator := lexer.scan(isOperator)
		if operator == "=" {
			return Token{Type: Equals, Value: operator}
		}
		return Token{Type: Operator, Value: operator}
	case isDigit(ch):
		return Token{Type: Int, Value: lexer.scan(isDigit)}
	case isWordByte(ch):
		word := lexer.scan(isWordByte)
		if kind, ok := keywords[strings.ToUpper(word)]; ok {
			return Token{Type: kind, Value: word}
		}
		return Token{Type: Identifier, Value: word}
	}

	lexer.pos++
	if kind, ok := punctuation[ch]; ok {
		return Token{Type: kind, Value: string(ch)}
	}
	return Token{Type: Unknown, Value: string(ch)}
}

// ReadLiteral reads a value in literal position. A quoted string is read
// as a String token. Anything else is one bare run up to a comma, closing
// parenthesis, semicolon, whitespace or end of input, returned as a
// Literal token for core.CastLiteral. When no run starts here the next
// ordinary token is returned instead.
func (lexer *Lexer) ReadLiteral() Token {
	lexer.skipWhitespace()

	if ch := lexer.peekByte(); ch == '\'' || ch == '"' {
		return lexer.quoted(ch)
	}

	if run := lexer.scan(isLiteralByte); run != "" {
		return Token{Type: Literal, Value: run}
	}
	return lexer.NextToken()
}

// quoted reads a string delimited by quote. An unterminated string is an
// Unknown token holding the text read so far.
func (lexer *Lexer) quoted(quote byte) Token {
	lexer.pos++ // opening quote
	text := lexer.scan(func(ch byte) bool { return ch != quote })
	if lexer.pos >= len(lexer.sql) {
		return Token{Type: Unknown, Value: text}
	}
	lexer.pos++ // closing quote
	return Token{Type: String, Value: text}
}

func (lexer *Lexer) PeekToken() Token {
	saved := lexer.pos
	token := lexer.NextToken()
	lexer.pos = saved
	return token
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isWordByte(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_' || ch == '.' || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isOperator(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>'
}

func isLiteralByte(ch byte) bool {
	return ch != ',' && ch != ')' && ch != ';' && !isWhitespace(ch)
}

// tokenize lexes sql up to and including the first EOF or Unknown token.
func tokenize(sql string) []Token {
	lexer := NewLexer(sql)

	var tokens []Token
	for {
		token := lexer.NextToken()
		tokens = append(tokens, token)
		if token.Type == EOF || token.Type == Unknown {
			return tokens
		}
	}
}
