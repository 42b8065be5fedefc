package config

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
)

// conditionLexer tokenizes the "when" expressions of field semantics, e.g.
// "($0 & 0x7) == 0x2".
var conditionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Int", Pattern: `0[xX][0-9a-fA-F]+|0[bB][01]+|[0-9]+`},
	{Name: "Ident", Pattern: `\$[0-9A-Za-z_]+|[A-Za-z_][0-9A-Za-z_]*`},
	{Name: "Compare", Pattern: `==|!=|>=|<=|=`},
	{Name: "Punct", Pattern: `&&|\|\||[&|^~!<>+\-*/%()]`},
})

var (
	whitespaceToken = conditionLexer.Symbols()["Whitespace"]
	intToken        = conditionLexer.Symbols()["Int"]
	compareToken    = conditionLexer.Symbols()["Compare"]
)

// ParseCondition returns the operand of the last comparison in when. The
// operand must be a single integer literal; its text is returned unchanged
// together with its value. No arithmetic is evaluated.
func ParseCondition(when string) (literal string, value uint64, err error) {
	lex, err := conditionLexer.LexString("", when)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrMalformedCondition, when, err)
	}

	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrMalformedCondition, when, err)
	}

	var tokens []lexer.Token
	last := -1
	for _, tok := range all {
		if tok.Type == whitespaceToken || tok.EOF() {
			continue
		}
		if tok.Type == compareToken {
			last = len(tokens)
		}
		tokens = append(tokens, tok)
	}

	if last < 0 {
		return "", 0, fmt.Errorf("%w: %q has no comparison", ErrMalformedCondition, when)
	}

	operand := tokens[last+1:]
	if len(operand) != 1 || operand[0].Type != intToken {
		return "", 0, fmt.Errorf("%w: %q does not compare against an integer literal", ErrMalformedCondition, when)
	}

	literal = operand[0].Value
	value, err = strconv.ParseUint(literal, 0, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrMalformedCondition, when, err)
	}
	return literal, value, nil
}
