package query

import (
	"strconv"

	"bsql/record"
)

// Command is a fully validated, typed statement ready for dispatch.
type Command interface {
	command()
}

type CreateDatabase struct {
	DatabaseName string
}

type CreateTable struct {
	TableName string
	Columns   []record.ColumnInfo
}

type InsertInto struct {
	TableName string
	Values    []record.Value
}

type Select struct {
	Identifiers []string
	TableName   string
	Where       []Condition
}

// Condition is an equality filter from a WHERE clause.
type Condition struct {
	Column string
	Value  record.Value
}

func (CreateDatabase) command() {}
func (CreateTable) command()    {}
func (InsertInto) command()     {}
func (Select) command()         {}

// Parse reads one statement, up to the first semicolon. Any tokens
// after the semicolon are ignored.
func Parse(input string) (Command, error) {
	tokens := []Token{}
	for _, token := range Tokenize(input) {
		if token.Type == SEMICOLON {
			break
		}
		tokens = append(tokens, token)
	}

	p := &parser{tokens: tokens}

	first, ok := p.peek()
	if !ok {
		return nil, ErrMissingToken
	}

	switch first.Type {
	case CREATE:
		return p.parseCreate()
	case INSERT:
		return p.parseInsert()
	case SELECT:
		return p.parseSelect()
	default:
		return nil, &UnexpectedTokenError{Token: first}
	}
}

func (p *parser) parseCreate() (Command, error) {
	if _, err := p.expect(CREATE); err != nil {
		return nil, err
	}

	keyword, err := p.next()
	if err != nil {
		return nil, err
	}

	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	switch keyword.Type {
	case DATABASE:
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return CreateDatabase{DatabaseName: name.Literal}, nil

	case TABLE:
		return p.parseCreateTable(name.Literal)

	default:
		return nil, &UnexpectedTokenError{Token: keyword}
	}
}

func (p *parser) parseCreateTable(tableName string) (Command, error) {
	if _, err := p.expect(OPENING_PARENTHESIS); err != nil {
		return nil, err
	}

	columns := []record.ColumnInfo{}
	for {
		if token, ok := p.peek(); ok && token.Type == CLOSING_PARENTHESIS {
			break
		}

		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}

		typeName, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}

		dataType, ok := record.DataTypeFromName(typeName.Literal)
		if !ok {
			return nil, &UnexpectedTokenError{Token: typeName}
		}

		columns = append(columns, record.ColumnInfo{Name: name.Literal, DataType: dataType})

		if token, ok := p.peek(); ok && token.Type == COMMA {
			p.pos++
		}
	}

	if _, err := p.expect(CLOSING_PARENTHESIS); err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return CreateTable{TableName: tableName, Columns: columns}, nil
}

func (p *parser) parseInsert() (Command, error) {
	if _, err := p.expect(INSERT); err != nil {
		return nil, err
	}
	if _, err := p.expect(INTO); err != nil {
		return nil, err
	}

	tableName, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(VALUES); err != nil {
		return nil, err
	}
	if _, err := p.expect(OPENING_PARENTHESIS); err != nil {
		return nil, err
	}

	values := []record.Value{}
	for {
		if token, ok := p.peek(); ok && token.Type == CLOSING_PARENTHESIS {
			break
		}

		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		if token, ok := p.peek(); ok && token.Type == COMMA {
			p.pos++
		}
	}

	if _, err := p.expect(CLOSING_PARENTHESIS); err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return InsertInto{TableName: tableName.Literal, Values: values}, nil
}

func (p *parser) parseSelect() (Command, error) {
	if _, err := p.expect(SELECT); err != nil {
		return nil, err
	}

	identifiers := []string{}
	for {
		token, err := p.next()
		if err != nil {
			return nil, err
		}

		switch token.Type {
		case ASTERISK:
			identifiers = append(identifiers, "*")
		case IDENTIFIER:
			identifiers = append(identifiers, token.Literal)
		case COMMA:
			// step over the separator
		case FROM:
			return p.parseSelectFrom(identifiers)
		default:
			return nil, &UnexpectedTokenError{Token: token}
		}
	}
}

func (p *parser) parseSelectFrom(identifiers []string) (Command, error) {
	tableName, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	where := []Condition{}
	if token, ok := p.peek(); ok && token.Type == WHERE {
		p.pos++

		column, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(EQUALS); err != nil {
			return nil, err
		}

		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}

		where = append(where, Condition{Column: column.Literal, Value: value})
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return Select{Identifiers: identifiers, TableName: tableName.Literal, Where: where}, nil
}

func (p *parser) parseLiteral() (record.Value, error) {
	token, err := p.expect(INTEGER_LITERAL)
	if err != nil {
		return record.Value{}, err
	}

	integer, parseErr := strconv.ParseUint(token.Literal, 10, 8)
	if parseErr != nil {
		return record.Value{}, &UnexpectedTokenError{Token: token}
	}

	return record.NewInteger(uint8(integer)), nil
}

func (p *parser) next() (Token, error) {
	if p.pos >= len(p.tokens) {
		return Token{}, ErrMissingToken
	}

	token := p.tokens[p.pos]
	p.pos++
	return token, nil
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}

	return p.tokens[p.pos], true
}

func (p *parser) expect(tokenType TokenType) (Token, error) {
	token, err := p.next()
	if err != nil {
		return Token{}, err
	}

	if token.Type != tokenType {
		return Token{}, &UnexpectedTokenError{Token: token}
	}

	return token, nil
}

func (p *parser) expectEnd() error {
	if token, ok := p.peek(); ok {
		return &UnexpectedTokenError{Token: token}
	}

	return nil
}

type parser struct {
	tokens []Token
	pos    int
}
