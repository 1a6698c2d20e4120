// Package dice implements the dice-notation engine for the TRPG bot: a
// tokenizer and recursive-descent evaluator for formulas such as "2d6+3",
// "4d6kh3", or "(1d6+2)*3", result formatters for single and repeated
// rolls, and the separate Call of Cthulhu percentile sub-engine with
// bonus/penalty dice.
//
// The engine is a pure function of (formula, Source): it performs no I/O,
// keeps no shared state between calls, and reports every failure as a
// *ParseError. User-facing messages are Traditional Chinese, matching the
// bot the engine serves.
package dice

import (
	"strings"
	"unicode"
)

// TokenKind identifies the lexical class of a Token.
type TokenKind int

// Token kinds produced by Tokenize.
const (
	TokenNumber TokenKind = iota
	TokenDice
	TokenPlus
	TokenMinus
	TokenMultiply
	TokenDivide
	TokenLParen
	TokenRParen
	TokenEOF
)

// String returns the kind name used in syntax error messages.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NUMBER"
	case TokenDice:
		return "DICE"
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenMultiply:
		return "MULTIPLY"
	case TokenDivide:
		return "DIVIDE"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenEOF:
		return "EOF"
	}
	return "UNKNOWN"
}

// KeepModifier selects which subset of a dice group contributes to the
// total: none, keep-highest ("kh"), or keep-lowest ("kl").
type KeepModifier int

// Keep modifiers recognized after the face count, e.g. "4d6kh3".
const (
	KeepNone KeepModifier = iota
	KeepHighest
	KeepLowest
)

// String returns the notation suffix for the modifier ("kh", "kl", or "").
func (m KeepModifier) String() string {
	switch m {
	case KeepHighest:
		return "kh"
	case KeepLowest:
		return "kl"
	}
	return ""
}

// DiceSpec is the payload of a DICE token: "<count>d<faces>" with an
// optional keep modifier and keep count.
//
// Invariant after a successful Tokenize: 1 <= Count <= MaxDiceCount,
// 2 <= Faces <= MaxDiceFaces, and when Modifier != KeepNone,
// 1 <= KeepCount <= Count.
type DiceSpec struct {
	Count     int
	Faces     int
	Modifier  KeepModifier
	KeepCount int
}

// Token is one lexical unit of a formula. Number is set for TokenNumber,
// Dice for TokenDice; both are zero otherwise.
type Token struct {
	Kind   TokenKind
	Number int
	Dice   DiceSpec
}

// Engine-wide limits enforced while scanning and in ParseAndRoll.
const (
	// MaxDiceCount is the largest number of dice in one group.
	MaxDiceCount = 100
	// MaxDiceFaces is the largest face count of a single die.
	MaxDiceFaces = 1000
	// MaxFormulaLength is the longest accepted formula, in characters.
	MaxFormulaLength = 500
)

// tokenizer scans a formula rune by rune. Whitespace between tokens is
// insignificant; all dice-parameter range checks happen here, at scan time.
type tokenizer struct {
	text []rune
	pos  int
}

// Tokenize scans text into a token sequence terminated by a TokenEOF.
// Empty or whitespace-only input yields just the EOF token.
//
// Postcondition: the returned slice is non-empty and ends with TokenEOF,
// or err is a *ParseError describing the first invalid character or
// malformed dice expression.
func Tokenize(text string) ([]Token, error) {
	t := &tokenizer{text: []rune(strings.TrimSpace(text))}
	return t.tokenize()
}

// current returns the rune at the scan position, or 0 at end of input.
func (t *tokenizer) current() rune {
	if t.pos < len(t.text) {
		return t.text[t.pos]
	}
	return 0
}

func (t *tokenizer) advance() {
	t.pos++
}

func (t *tokenizer) skipWhitespace() {
	for t.pos < len(t.text) && unicode.IsSpace(t.text[t.pos]) {
		t.pos++
	}
}

// readNumber consumes a run of decimal digits.
//
// Precondition: the current rune is a digit.
func (t *tokenizer) readNumber() int {
	n := 0
	for t.pos < len(t.text) && isDigit(t.text[t.pos]) {
		n = n*10 + int(t.text[t.pos]-'0')
		t.pos++
	}
	return n
}

// readDice consumes the remainder of a dice expression after its count:
// "d<faces>[kh|kl[<keep>]]", case-insensitive. The keep count defaults to
// 1 when the modifier carries no digits.
func (t *tokenizer) readDice(count int) (DiceSpec, error) {
	// Caller consumed the count and verified the 'd'.
	t.advance()

	if !isDigit(t.current()) {
		return DiceSpec{}, &ParseError{Message: "骰子面數必須是數字"}
	}
	faces := t.readNumber()

	modifier := KeepNone
	keepCount := 0
	if c := t.current(); c == 'k' || c == 'K' {
		t.advance()
		switch t.current() {
		case 'h', 'H':
			modifier = KeepHighest
		case 'l', 'L':
			modifier = KeepLowest
		default:
			if t.pos >= len(t.text) {
				return DiceSpec{}, &ParseError{Message: "'k' 後面必須跟 'h' 或 'l'"}
			}
			return DiceSpec{}, parseErrorf("'k' 後面必須跟 'h' 或 'l'，但得到 '%c'", t.current())
		}
		t.advance()
		if isDigit(t.current()) {
			keepCount = t.readNumber()
		} else {
			keepCount = 1
		}
	}

	if count < 1 {
		return DiceSpec{}, &ParseError{Message: "骰子數量必須大於 0"}
	}
	if count > MaxDiceCount {
		return DiceSpec{}, parseErrorf("骰子數量不能超過 %d", MaxDiceCount)
	}
	if faces < 2 {
		return DiceSpec{}, &ParseError{Message: "骰子面數必須至少為 2"}
	}
	if faces > MaxDiceFaces {
		return DiceSpec{}, parseErrorf("骰子面數不能超過 %d", MaxDiceFaces)
	}
	if modifier != KeepNone {
		if keepCount < 1 {
			return DiceSpec{}, &ParseError{Message: "保留數量必須大於 0"}
		}
		if keepCount > count {
			return DiceSpec{}, parseErrorf("保留數量 (%d) 不能大於骰子數量 (%d)", keepCount, count)
		}
	}

	return DiceSpec{Count: count, Faces: faces, Modifier: modifier, KeepCount: keepCount}, nil
}

func (t *tokenizer) tokenize() ([]Token, error) {
	var tokens []Token

	for t.pos < len(t.text) {
		t.skipWhitespace()
		if t.pos >= len(t.text) {
			break
		}

		c := t.current()
		switch {
		case isDigit(c):
			n := t.readNumber()
			if d := t.current(); d == 'd' || d == 'D' {
				spec, err := t.readDice(n)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, Token{Kind: TokenDice, Dice: spec})
			} else {
				tokens = append(tokens, Token{Kind: TokenNumber, Number: n})
			}
			// Implicit multiplication: a number or dice group directly
			// followed by '(' multiplies into the group, e.g. "2(1d6+1)".
			t.skipWhitespace()
			if t.current() == '(' {
				tokens = append(tokens, Token{Kind: TokenMultiply})
			}
		case c == '+':
			tokens = append(tokens, Token{Kind: TokenPlus})
			t.advance()
		case c == '-':
			tokens = append(tokens, Token{Kind: TokenMinus})
			t.advance()
		case c == '*':
			tokens = append(tokens, Token{Kind: TokenMultiply})
			t.advance()
		case c == '/':
			tokens = append(tokens, Token{Kind: TokenDivide})
			t.advance()
		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLParen})
			t.advance()
		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRParen})
			t.advance()
			// Implicit multiplication between back-to-back groups: ")(".
			t.skipWhitespace()
			if t.current() == '(' {
				tokens = append(tokens, Token{Kind: TokenMultiply})
			}
		default:
			return nil, parseErrorf("無效字符：'%c'", c)
		}
	}

	tokens = append(tokens, Token{Kind: TokenEOF})
	return tokens, nil
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
