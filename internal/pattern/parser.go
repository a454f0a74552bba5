package pattern

import "fmt"

// Parser builds a pattern tree from lexer tokens by recursive descent.
type Parser struct {
	tokens  []Token
	current int
}

// NewParser returns a parser over tokens, which must end with TokenEOF.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses src.
func Parse(src string) (Node, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse consumes all tokens and returns the root node.
func (p *Parser) Parse() (Node, error) {
	if p.peek().Type == TokenEOF {
		return nil, p.errorf("empty pattern")
	}
	root, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.errorf("unexpected %s", tok.Type)
	}
	return root, nil
}

func (p *Parser) parseAlt() (Node, error) {
	pos := p.peek().Position
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	alts := []Node{first}
	for p.peek().Type == TokenPipe {
		p.current++
		next, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return &AltNode{Alts: alts, pos: pos}, nil
}

func (p *Parser) parseConcat() (Node, error) {
	pos := p.peek().Position
	var items []Node
	for startsAtom(p.peek().Type) {
		item, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	switch len(items) {
	case 0:
		return nil, p.errorf("expected unit, found %s", p.peek().Type)
	case 1:
		return items[0], nil
	default:
		return &ConcatNode{Items: items, pos: pos}, nil
	}
}

func (p *Parser) parsePostfix() (Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		var q Quantifier
		switch p.peek().Type {
		case TokenStar:
			q = QuantStar
		case TokenPlus:
			q = QuantPlus
		case TokenQuestion:
			q = QuantOptional
		default:
			return atom, nil
		}
		pos := p.peek().Position
		p.current++
		atom = &RepeatNode{Sub: atom, Quant: q, pos: pos}
	}
}

func (p *Parser) parseAtom() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenAny:
		p.current++
		return &AnyNode{pos: tok.Position}, nil
	case TokenIdent, TokenTemplate:
		return p.parseUnit()
	case TokenLBracket:
		return p.parseSet()
	case TokenLParen:
		p.current++
		inner, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.errorf("unexpected %s", tok.Type)
	}
}

func (p *Parser) parseUnit() (*UnitNode, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenIdent:
		p.current++
		return &UnitNode{Kind: UnitIdent, Text: tok.Value, pos: tok.Position}, nil
	case TokenTemplate:
		p.current++
		return &UnitNode{Kind: UnitTemplate, Text: tok.Value, pos: tok.Position}, nil
	default:
		return nil, p.errorf("expected unit, found %s", tok.Type)
	}
}

func (p *Parser) parseSet() (Node, error) {
	pos := p.peek().Position
	p.current++ // '['

	set := &SetNode{pos: pos}
	for {
		u, err := p.parseUnit()
		if err != nil {
			return nil, err
		}
		set.Units = append(set.Units, u)
		if p.peek().Type != TokenComma {
			break
		}
		p.current++
	}
	if err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	return set, nil
}

func (p *Parser) expect(typ TokenType) error {
	if tok := p.peek(); tok.Type != typ {
		return p.errorf("expected %s, found %s", typ, tok.Type)
	}
	p.current++
	return nil
}

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Position: p.peek().Position, Msg: fmt.Sprintf(format, args...)}
}

func startsAtom(t TokenType) bool {
	switch t {
	case TokenAny, TokenIdent, TokenTemplate, TokenLBracket, TokenLParen:
		return true
	}
	return false
}
