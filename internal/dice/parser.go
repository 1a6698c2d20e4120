package dice

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxRollTimes caps the repeat count accepted by RollTimes.
const MaxRollTimes = 20

// parser walks a token sequence with one-token lookahead, evaluating as it
// parses. No AST is built: each reduction computes its value directly, and
// every DICE factor rolls immediately so the roll log keeps the formula's
// left-to-right order.
type parser struct {
	tokens []Token
	pos    int
	src    Source
	rolls  []DiceRoll
}

func newParser(tokens []Token, src Source) *parser {
	return &parser{tokens: tokens, src: src}
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokenEOF}
}

func (p *parser) advance() {
	p.pos++
}

// parse evaluates the whole token sequence and returns the total plus the
// ordered roll log. Trailing tokens after a complete expression are an
// error.
func (p *parser) parse() (int, []DiceRoll, error) {
	total, err := p.expression()
	if err != nil {
		return 0, nil, err
	}
	if p.current().Kind != TokenEOF {
		return 0, nil, &ParseError{Message: "表達式未完全解析"}
	}
	return total, p.rolls, nil
}

// expression := term (('+' | '-') term)*
func (p *parser) expression() (int, error) {
	result, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.current().Kind
		if op != TokenPlus && op != TokenMinus {
			return result, nil
		}
		p.advance()
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == TokenPlus {
			result += right
		} else {
			result -= right
		}
	}
}

// term := factor (('*' | '/') factor)*
func (p *parser) term() (int, error) {
	result, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		op := p.current().Kind
		if op != TokenMultiply && op != TokenDivide {
			return result, nil
		}
		p.advance()
		right, err := p.factor()
		if err != nil {
			return 0, err
		}
		if op == TokenMultiply {
			result *= right
		} else {
			if right == 0 {
				return 0, &ParseError{Message: "除以零錯誤"}
			}
			result = floorDiv(result, right)
		}
	}
}

// factor := NUMBER | DICE | '(' expression ')'
func (p *parser) factor() (int, error) {
	token := p.current()
	switch token.Kind {
	case TokenNumber:
		p.advance()
		return token.Number, nil
	case TokenDice:
		p.advance()
		return p.rollDice(token.Dice).Total, nil
	case TokenLParen:
		p.advance()
		result, err := p.expression()
		if err != nil {
			return 0, err
		}
		if p.current().Kind != TokenRParen {
			return 0, &ParseError{Message: "括號不匹配：缺少右括號 ')'"}
		}
		p.advance()
		return result, nil
	default:
		return 0, parseErrorf("無效的語法：期望數字、骰子或左括號，但得到 %s", token.Kind)
	}
}

// rollDice rolls one dice group, applies the keep modifier if any, and
// appends the record to the roll log.
func (p *parser) rollDice(spec DiceSpec) DiceRoll {
	rolls := make([]int, spec.Count)
	for i := range rolls {
		rolls[i] = p.src.Intn(spec.Faces) + 1
	}

	record := DiceRoll{
		Count:    spec.Count,
		Faces:    spec.Faces,
		Rolls:    rolls,
		Modifier: spec.Modifier,
	}
	if spec.Modifier != KeepNone {
		sorted := append([]int(nil), rolls...)
		if spec.Modifier == KeepHighest {
			sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		} else {
			sort.Ints(sorted)
		}
		record.Kept = sorted[:spec.KeepCount]
		record.Dropped = sorted[spec.KeepCount:]
		record.Total = sumInts(record.Kept)
	} else {
		record.Total = sumInts(rolls)
	}

	p.rolls = append(p.rolls, record)
	return record
}

// floorDiv divides rounding toward negative infinity, so "10/3" is 3 and
// "(0-7)/2" is -4.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ParseAndRoll tokenizes, parses, and evaluates formula in one pass,
// rolling dice from src as each group is reduced.
//
// Precondition: src must be non-nil.
// Postcondition: on success the roll log lists dice groups in the
// formula's left-to-right order; on failure err is always a *ParseError —
// unexpected panics inside either stage are wrapped with a stage label
// rather than escaping to the caller.
func ParseAndRoll(formula string, src Source) (int, []DiceRoll, error) {
	if strings.TrimSpace(formula) == "" {
		return 0, nil, &ParseError{Message: "公式不能為空"}
	}
	if utf8.RuneCountInString(formula) > MaxFormulaLength {
		return 0, nil, parseErrorf("公式長度不能超過 %d 字符", MaxFormulaLength)
	}

	tokens, err := tokenizeStage(formula)
	if err != nil {
		return 0, nil, err
	}
	return parseStage(tokens, src)
}

// RollTimes evaluates the same formula repeatedly, re-rolling every
// attempt. Results feed FormatMultipleResults.
//
// Precondition: 1 <= times <= MaxRollTimes, or a *ParseError is returned.
func RollTimes(formula string, times int, src Source) ([]Result, error) {
	if times < 1 {
		return nil, &ParseError{Message: "擲骰次數必須至少為 1"}
	}
	if times > MaxRollTimes {
		return nil, parseErrorf("擲骰次數不能超過 %d", MaxRollTimes)
	}

	results := make([]Result, 0, times)
	for i := 0; i < times; i++ {
		total, rolls, err := ParseAndRoll(formula, src)
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Total: total, Rolls: rolls})
	}
	return results, nil
}

func tokenizeStage(formula string) (tokens []Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapStagePanic("詞法分析錯誤", r)
		}
	}()
	return Tokenize(formula)
}

func parseStage(tokens []Token, src Source) (total int, rolls []DiceRoll, err error) {
	defer func() {
		if r := recover(); r != nil {
			total, rolls = 0, nil
			err = wrapStagePanic("語法分析錯誤", r)
		}
	}()
	return newParser(tokens, src).parse()
}

// wrapStagePanic converts an unexpected panic into the flat error kind so
// callers never see anything but *ParseError from the engine.
func wrapStagePanic(stage string, r any) error {
	var parseErr *ParseError
	if e, ok := r.(error); ok && errors.As(e, &parseErr) {
		return parseErr
	}
	return parseErrorf("%s：%v", stage, r)
}
