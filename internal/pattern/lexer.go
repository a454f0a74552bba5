package pattern

import (
	"unicode"
	"unicode/utf8"
)

// Lexer scans a sequence pattern and produces tokens.
type Lexer struct {
	input    string
	position int
	tokens   []Token
}

// NewLexer returns a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		tokens: make([]Token, 0),
	}
}

var punctuation = map[byte]TokenType{
	'|': TokenPipe,
	'*': TokenStar,
	'+': TokenPlus,
	'?': TokenQuestion,
	'(': TokenLParen,
	')': TokenRParen,
	'[': TokenLBracket,
	']': TokenRBracket,
	',': TokenComma,
}

// Tokenize scans the whole input. The last token is always TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		start := l.position
		c := l.input[l.position]

		if typ, ok := punctuation[c]; ok {
			l.addToken(typ, string(c), start)
			l.position++
			continue
		}

		switch {
		case isWhitespace(c):
			l.position++
		case c == '`':
			if err := l.lexTemplate(); err != nil {
				return nil, err
			}
		case isIdentStart(l.input[l.position:]):
			l.lexIdent()
		default:
			r, _ := utf8.DecodeRuneInString(l.input[l.position:])
			return nil, &SyntaxError{Position: start, Msg: "unexpected character " + quoteRune(r)}
		}
	}

	l.addToken(TokenEOF, "", l.position)
	return l.tokens, nil
}

// lexTemplate scans a backquoted source fragment. Templates cannot contain
// backquotes themselves.
func (l *Lexer) lexTemplate() error {
	start := l.position
	for i := start + 1; i < len(l.input); i++ {
		if l.input[i] == '`' {
			l.addToken(TokenTemplate, l.input[start+1:i], start)
			l.position = i + 1
			return nil
		}
	}
	return &SyntaxError{Position: start, Msg: "unterminated template"}
}

// lexIdent scans an identifier. A lone '_' is the wildcard.
func (l *Lexer) lexIdent() {
	start := l.position
	for l.position < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.position:])
		if !isIdentRune(r) {
			break
		}
		l.position += size
	}

	word := l.input[start:l.position]
	if word == "_" {
		l.addToken(TokenAny, word, start)
		return
	}
	l.addToken(TokenIdent, word, start)
}

func (l *Lexer) addToken(tokenType TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{
		Type:     tokenType,
		Value:    value,
		Position: pos,
	})
}

func isWhitespace(c byte) bool {
	return unicode.IsSpace(rune(c))
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
