package pattern

import "fmt"

// TokenType defines the kinds of tokens produced by the lexer.
type TokenType int

const (
	TokenIdent    TokenType = iota // ReturnStmt
	TokenTemplate                  // `x := 1`
	TokenAny                       // _
	TokenPipe                      // |
	TokenStar                      // *
	TokenPlus                      // +
	TokenQuestion                  // ?
	TokenLParen                    // (
	TokenRParen                    // )
	TokenLBracket                  // [
	TokenRBracket                  // ]
	TokenComma                     // ,
	TokenEOF
)

var tokenNames = [...]string{
	TokenIdent:    "identifier",
	TokenTemplate: "template",
	TokenAny:      "'_'",
	TokenPipe:     "'|'",
	TokenStar:     "'*'",
	TokenPlus:     "'+'",
	TokenQuestion: "'?'",
	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
	TokenComma:    "','",
	TokenEOF:      "end of pattern",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a single lexical token with its byte offset in the input.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}
