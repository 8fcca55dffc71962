package query

import (
	"strings"
	"unicode"
)

type TokenType int

const (
	ILLEGAL TokenType = iota
	IDENTIFIER
	INTEGER_LITERAL
	CREATE
	DATABASE
	TABLE
	INSERT
	INTO
	VALUES
	SELECT
	FROM
	WHERE
	ASTERISK
	COMMA
	SEMICOLON
	EQUALS
	OPENING_PARENTHESIS
	CLOSING_PARENTHESIS
)

var keywords = map[string]TokenType{
	"CREATE":   CREATE,
	"DATABASE": DATABASE,
	"TABLE":    TABLE,
	"INSERT":   INSERT,
	"INTO":     INTO,
	"VALUES":   VALUES,
	"SELECT":   SELECT,
	"FROM":     FROM,
	"WHERE":    WHERE,
}

var tokenNames = map[TokenType]string{
	ILLEGAL:             "illegal",
	IDENTIFIER:          "identifier",
	INTEGER_LITERAL:     "integer literal",
	CREATE:              "CREATE",
	DATABASE:            "DATABASE",
	TABLE:               "TABLE",
	INSERT:              "INSERT",
	INTO:                "INTO",
	VALUES:              "VALUES",
	SELECT:              "SELECT",
	FROM:                "FROM",
	WHERE:               "WHERE",
	ASTERISK:            "*",
	COMMA:               ",",
	SEMICOLON:           ";",
	EQUALS:              "=",
	OPENING_PARENTHESIS: "(",
	CLOSING_PARENTHESIS: ")",
}

func (t Token) String() string {
	switch t.Type {
	case IDENTIFIER, INTEGER_LITERAL, ILLEGAL:
		return tokenNames[t.Type] + " " + "\"" + t.Literal + "\""
	default:
		return "\"" + tokenNames[t.Type] + "\""
	}
}

// Tokenize splits a statement into tokens. Keywords are matched case
// insensitively, identifiers keep the casing they were written in.
func Tokenize(input string) []Token {
	tokens := []Token{}
	runes := []rune(input)

	for pos := 0; pos < len(runes); {
		char := runes[pos]

		switch {
		case unicode.IsSpace(char):
			pos++

		case isWordStart(char):
			start := pos
			for pos < len(runes) && isWordChar(runes[pos]) {
				pos++
			}

			word := string(runes[start:pos])
			if keyword, ok := keywords[strings.ToUpper(word)]; ok {
				tokens = append(tokens, Token{Type: keyword, Literal: word})
			} else {
				tokens = append(tokens, Token{Type: IDENTIFIER, Literal: word})
			}

		case unicode.IsDigit(char):
			start := pos
			for pos < len(runes) && unicode.IsDigit(runes[pos]) {
				pos++
			}
			tokens = append(tokens, Token{Type: INTEGER_LITERAL, Literal: string(runes[start:pos])})

		default:
			tokens = append(tokens, symbolToken(char))
			pos++
		}
	}

	return tokens
}

func symbolToken(char rune) Token {
	literal := string(char)

	switch char {
	case '*':
		return Token{Type: ASTERISK, Literal: literal}
	case ',':
		return Token{Type: COMMA, Literal: literal}
	case ';':
		return Token{Type: SEMICOLON, Literal: literal}
	case '=':
		return Token{Type: EQUALS, Literal: literal}
	case '(':
		return Token{Type: OPENING_PARENTHESIS, Literal: literal}
	case ')':
		return Token{Type: CLOSING_PARENTHESIS, Literal: literal}
	default:
		return Token{Type: ILLEGAL, Literal: literal}
	}
}

func isWordStart(char rune) bool {
	return unicode.IsLetter(char) || char == '_'
}

func isWordChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsDigit(char) || char == '_'
}

// Token is one lexical element of a statement.
type Token struct {
	Type    TokenType
	Literal string
}
