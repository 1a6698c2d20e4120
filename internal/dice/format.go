package dice

import (
	"fmt"
	"regexp"
	"strings"
)

// dicePattern matches dice sub-expressions in the original formula text,
// including keep-modifier suffixes, for substitution by rolled totals.
var dicePattern = regexp.MustCompile(`(?i)\d+d\d+(?:kh\d*|kl\d*)?`)

// bareDicePattern matches a dice group without its keep suffix. The batch
// formatter uses it when stripping the single group out of a formula.
var bareDicePattern = regexp.MustCompile(`\d+d\d+`)

// coefficientPattern recognizes formulas of the shape "4(...)" so batch
// lines can render as "4 × (group + group)".
var coefficientPattern = regexp.MustCompile(`^(\d+)\(`)

// FormatDiceResult renders one evaluation in the detailed single-roll
// form: a header echoing the formula, each dice group's display form, and
// the calculation line with every dice sub-expression replaced by its
// bracketed total. Pure arithmetic (no dice) echoes the formula as-is.
func FormatDiceResult(formula string, total int, rolls []DiceRoll) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 擲骰結果：%s\n", formula)

	if len(rolls) == 0 {
		fmt.Fprintf(&b, "計算：%s = %d", formula, total)
		return b.String()
	}

	displays := make([]string, len(rolls))
	diceTotal := 0
	for i, r := range rolls {
		displays[i] = r.String()
		diceTotal += r.Total
	}
	fmt.Fprintf(&b, "骰子：%s (總和: %d)\n", strings.Join(displays, ", "), diceTotal)

	// Substitute dice sub-expressions left to right, in the same order the
	// roll log was produced.
	index := 0
	calculation := dicePattern.ReplaceAllStringFunc(formula, func(match string) string {
		if index < len(rolls) {
			s := fmt.Sprintf("[%d]", rolls[index].Total)
			index++
			return s
		}
		return match
	})
	fmt.Fprintf(&b, "計算：%s = %d", calculation, total)
	return b.String()
}

// FormatMultipleResults renders a batch of repeated rolls of the same
// formula, one "第i次" line per attempt. Common shapes get dedicated
// renderings (single dice group with remaining arithmetic, leading
// coefficient times a parenthesized sum); anything else falls back to
// listing the groups followed by the total.
func FormatMultipleResults(formula string, results []Result, times int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 擲骰結果：%s (重複 %d 次)\n", formula, times)

	for i, res := range results {
		line := i + 1
		switch {
		case len(res.Rolls) == 1 && strings.Count(formula, "d") == 1:
			display := res.Rolls[0].String()
			remaining := removeFirstDiceGroup(formula)
			if remaining != "" {
				fmt.Fprintf(&b, "第%d次：%s %s = %d\n", line, display, padOperators(remaining), res.Total)
			} else {
				fmt.Fprintf(&b, "第%d次：%s = %d\n", line, display, res.Total)
			}
		case len(res.Rolls) > 1:
			displays := make([]string, len(res.Rolls))
			for j, r := range res.Rolls {
				displays[j] = r.String()
			}
			if m := coefficientPattern.FindStringSubmatch(formula); m != nil {
				fmt.Fprintf(&b, "第%d次：%s × (%s) = %d\n", line, m[1], strings.Join(displays, " + "), res.Total)
			} else {
				fmt.Fprintf(&b, "第%d次：%s → %d\n", line, strings.Join(displays, ", "), res.Total)
			}
		case len(res.Rolls) == 1:
			fmt.Fprintf(&b, "第%d次：%s → %d\n", line, res.Rolls[0].String(), res.Total)
		default:
			fmt.Fprintf(&b, "第%d次：%d\n", line, res.Total)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// removeFirstDiceGroup strips the first "NdM" occurrence, leaving the
// surrounding arithmetic.
func removeFirstDiceGroup(formula string) string {
	loc := bareDicePattern.FindStringIndex(formula)
	if loc == nil {
		return formula
	}
	return formula[:loc[0]] + formula[loc[1]:]
}

// padOperators spaces out the four arithmetic operators for readability,
// e.g. "+5" becomes "+ 5".
func padOperators(s string) string {
	for _, op := range []string{"+", "-", "*", "/"} {
		s = strings.ReplaceAll(s, op, " "+op+" ")
	}
	return strings.TrimSpace(s)
}
