package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/yhlin/trpg-dice/internal/dice"
)

// TestParseAndRoll_Precedence verifies multiplication binds tighter than
// addition: "1+2*3" is 7, not 9.
func TestParseAndRoll_Precedence(t *testing.T) {
	total, rolls, err := dice.ParseAndRoll("1+2*3", dice.NewCryptoSource())
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Empty(t, rolls)
}

// TestParseAndRoll_PrecedenceWithDice pins the die to 2 and verifies
// "1d6+2*3" evaluates to 8, not 12.
func TestParseAndRoll_PrecedenceWithDice(t *testing.T) {
	src := &seqSource{values: []int{1}} // Intn(6)=1, die shows 2
	total, rolls, err := dice.ParseAndRoll("1d6+2*3", src)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	require.Len(t, rolls, 1)
	assert.Equal(t, []int{2}, rolls[0].Rolls)
}

// TestParseAndRoll_Parentheses verifies grouping overrides precedence:
// "(1d6+2)*3" with the die pinned to 2 is 12.
func TestParseAndRoll_Parentheses(t *testing.T) {
	src := &seqSource{values: []int{1}}
	total, _, err := dice.ParseAndRoll("(1d6+2)*3", src)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
}

// TestParseAndRoll_ImplicitMultiplication verifies "2(1d6+1)" multiplies
// the coefficient into the group.
func TestParseAndRoll_ImplicitMultiplication(t *testing.T) {
	src := &seqSource{values: []int{1}}
	total, _, err := dice.ParseAndRoll("2(1d6+1)", src)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
}

// TestParseAndRoll_FloorDivision verifies division truncates toward
// negative infinity.
func TestParseAndRoll_FloorDivision(t *testing.T) {
	total, _, err := dice.ParseAndRoll("10/3", dice.NewCryptoSource())
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	total, _, err = dice.ParseAndRoll("(0-7)/2", dice.NewCryptoSource())
	require.NoError(t, err)
	assert.Equal(t, -4, total, "floor division must round toward negative infinity")
}

// TestParseAndRoll_DivisionByZero verifies the zero check fires when the
// '/' is applied, including when the divisor is itself an expression.
func TestParseAndRoll_DivisionByZero(t *testing.T) {
	for _, formula := range []string{"10/0", "10/(1-1)"} {
		_, _, err := dice.ParseAndRoll(formula, dice.NewCryptoSource())
		var parseErr *dice.ParseError
		require.ErrorAs(t, err, &parseErr, "formula %q", formula)
		assert.Equal(t, "除以零錯誤", parseErr.Message)
	}
}

// TestParseAndRoll_SyntaxErrors walks the grammar-level error taxonomy.
func TestParseAndRoll_SyntaxErrors(t *testing.T) {
	cases := []struct {
		formula string
		message string
	}{
		{"2 3", "表達式未完全解析"},
		{"(1+2", "括號不匹配：缺少右括號 ')'"},
		{")", "無效的語法：期望數字、骰子或左括號，但得到 RPAREN"},
		{"1+", "無效的語法：期望數字、骰子或左括號，但得到 EOF"},
		{"1+*2", "無效的語法：期望數字、骰子或左括號，但得到 MULTIPLY"},
	}
	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			_, _, err := dice.ParseAndRoll(tc.formula, dice.NewCryptoSource())
			var parseErr *dice.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tc.message, parseErr.Message)
		})
	}
}

// TestParseAndRoll_EmptyAndTooLong verifies the API-level rejections.
func TestParseAndRoll_EmptyAndTooLong(t *testing.T) {
	for _, formula := range []string{"", "   "} {
		_, _, err := dice.ParseAndRoll(formula, dice.NewCryptoSource())
		var parseErr *dice.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "公式不能為空", parseErr.Message)
	}

	long := "1" + strings.Repeat("+1", 250) // 501 characters
	require.Len(t, long, 501)
	_, _, err := dice.ParseAndRoll(long, dice.NewCryptoSource())
	var parseErr *dice.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "公式長度不能超過 500 字符", parseErr.Message)
}

// TestParseAndRoll_Deterministic verifies a fixed Source makes the whole
// evaluation reproducible.
func TestParseAndRoll_Deterministic(t *testing.T) {
	first, firstRolls, err := dice.ParseAndRoll("1d20", &seqSource{values: []int{13}})
	require.NoError(t, err)
	second, secondRolls, err := dice.ParseAndRoll("1d20", &seqSource{values: []int{13}})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstRolls, secondRolls)
	assert.Equal(t, 14, first)
}

// TestParseAndRoll_RollLogOrder verifies the roll log matches the
// left-to-right order of dice groups in the formula.
func TestParseAndRoll_RollLogOrder(t *testing.T) {
	src := &seqSource{values: []int{3, 0, 1, 2}}
	total, rolls, err := dice.ParseAndRoll("1d6+3d4", src)
	require.NoError(t, err)

	require.Len(t, rolls, 2)
	assert.Equal(t, 1, rolls[0].Count)
	assert.Equal(t, 6, rolls[0].Faces)
	assert.Equal(t, []int{4}, rolls[0].Rolls)
	assert.Equal(t, 3, rolls[1].Count)
	assert.Equal(t, 4, rolls[1].Faces)
	assert.Equal(t, []int{1, 2, 3}, rolls[1].Rolls)
	assert.Equal(t, 10, total)
}

// TestParseAndRoll_KeepHighest verifies the kept/dropped split and total
// for a scripted 4d6kh3.
func TestParseAndRoll_KeepHighest(t *testing.T) {
	src := &seqSource{values: []int{4, 1, 5, 2}} // rolls 5, 2, 6, 3
	total, rolls, err := dice.ParseAndRoll("4d6kh3", src)
	require.NoError(t, err)

	require.Len(t, rolls, 1)
	record := rolls[0]
	assert.Equal(t, []int{5, 2, 6, 3}, record.Rolls, "raw rolls keep roll order")
	assert.Equal(t, []int{6, 5, 3}, record.Kept)
	assert.Equal(t, []int{2}, record.Dropped)
	assert.Equal(t, 14, record.Total)
	assert.Equal(t, 14, total)
}

// TestParseAndRoll_KeepLowest verifies kl keeps the smallest values.
func TestParseAndRoll_KeepLowest(t *testing.T) {
	src := &seqSource{values: []int{4, 1, 5, 2}} // rolls 5, 2, 6, 3
	total, rolls, err := dice.ParseAndRoll("4d6kl2", src)
	require.NoError(t, err)

	require.Len(t, rolls, 1)
	assert.Equal(t, []int{2, 3}, rolls[0].Kept)
	assert.Equal(t, []int{5, 6}, rolls[0].Dropped)
	assert.Equal(t, 5, total)
}

// TestParseAndRoll_KeepInvariants checks, for arbitrary keep rolls, that
// every die is in range, kept+dropped is a permutation of the raw rolls,
// the total sums the kept dice, and the kept subset is extremal.
func TestParseAndRoll_KeepInvariants(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		faces := rapid.IntRange(2, 20).Draw(rt, "faces")
		keep := rapid.IntRange(1, count).Draw(rt, "keep")
		highest := rapid.Bool().Draw(rt, "highest")

		modifier := "kl"
		if highest {
			modifier = "kh"
		}
		formula := fmt.Sprintf("%dd%d%s%d", count, faces, modifier, keep)

		total, rolls, err := dice.ParseAndRoll(formula, src)
		require.NoError(rt, err)
		require.Len(rt, rolls, 1)
		record := rolls[0]

		require.Len(rt, record.Rolls, count)
		for _, v := range record.Rolls {
			assert.GreaterOrEqual(rt, v, 1)
			assert.LessOrEqual(rt, v, faces)
		}

		require.Len(rt, record.Kept, keep)
		assert.ElementsMatch(rt, record.Rolls, append(append([]int{}, record.Kept...), record.Dropped...),
			"kept+dropped must be a permutation of the raw rolls")

		sum := 0
		for _, v := range record.Kept {
			sum += v
		}
		assert.Equal(rt, sum, record.Total)
		assert.Equal(rt, total, record.Total)

		for _, kept := range record.Kept {
			for _, dropped := range record.Dropped {
				if highest {
					assert.GreaterOrEqual(rt, kept, dropped)
				} else {
					assert.LessOrEqual(rt, kept, dropped)
				}
			}
		}
	})
}

// TestRollTimes verifies the repeat bounds and that each attempt re-rolls
// independently.
func TestRollTimes(t *testing.T) {
	src := &seqSource{values: []int{0, 1, 2, 3, 4}}
	results, err := dice.RollTimes("1d20+1", 5, src)
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Equal(t, 2, results[0].Total)
	assert.Equal(t, 6, results[4].Total, "each attempt must re-roll")

	for times, message := range map[int]string{
		0:  "擲骰次數必須至少為 1",
		21: "擲骰次數不能超過 20",
	} {
		_, err := dice.RollTimes("1d6", times, src)
		var parseErr *dice.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, message, parseErr.Message)
	}
}
