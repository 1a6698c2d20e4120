package dice

import (
	"fmt"
	"strings"
)

// CoC percentile limits.
const (
	// MaxCoCSkill is the highest valid skill value.
	MaxCoCSkill = 100
	// MaxBonusPenaltyDice is the most bonus or penalty dice on one roll.
	MaxBonusPenaltyDice = 3
	// cocFumbleThreshold marks rolls of 96-100 as fumbles regardless of
	// skill value; the critical is fixed at exactly 1. Both thresholds are
	// deliberate rule choices and must not be made skill-relative.
	cocFumbleThreshold = 96
)

// CoCResult is one Call of Cthulhu percentile roll: the digits rolled,
// the bonus/penalty candidates and which tens value was selected, and the
// derived success/critical/fumble flags. All fields are fixed at
// construction.
type CoCResult struct {
	SkillValue   int
	Result       int
	TensDigit    int
	OnesDigit    int
	TensRolls    []int // all tens candidates, in roll order
	SelectedTens int
	IsBonus      bool
	NumDice      int // bonus/penalty die count, 0 for a plain roll
	IsSuccess    bool
	IsCritical   bool
	IsFumble     bool
}

// RollCoC performs a Call of Cthulhu percentile roll against skill.
//
// The ones digit is one d10 in [0,9]. With no bonus/penalty dice a single
// tens candidate is rolled; otherwise 1+numBonusPenalty candidates are
// rolled and a bonus takes the minimum, a penalty the maximum. Tens 0 with
// ones 0 reads as 100; that check precedes the "tens 0, ones 1-9 reads as
// the ones value" rule.
//
// Precondition: src must be non-nil.
// Postcondition: Result is in [1, 100], or err is a *ParseError for an
// out-of-range skill or die count.
func RollCoC(skillValue, numBonusPenalty int, isBonus bool, src Source) (CoCResult, error) {
	if skillValue < 1 || skillValue > MaxCoCSkill {
		return CoCResult{}, parseErrorf("技能值必須在 1-%d 之間", MaxCoCSkill)
	}
	if numBonusPenalty < 0 || numBonusPenalty > MaxBonusPenaltyDice {
		return CoCResult{}, parseErrorf("獎勵/懲罰骰數量必須在 0-%d 之間", MaxBonusPenaltyDice)
	}

	ones := src.Intn(10)

	var tensRolls []int
	var selected int
	if numBonusPenalty == 0 {
		selected = src.Intn(10)
		tensRolls = []int{selected}
	} else {
		tensRolls = make([]int, 1+numBonusPenalty)
		for i := range tensRolls {
			tensRolls[i] = src.Intn(10)
		}
		selected = tensRolls[0]
		for _, t := range tensRolls[1:] {
			if isBonus && t < selected {
				selected = t
			}
			if !isBonus && t > selected {
				selected = t
			}
		}
	}

	// "00" tens with "0" ones is 100; otherwise "0X" reads as X.
	var result int
	if selected == 0 && ones == 0 {
		result = 100
	} else {
		result = selected*10 + ones
		if result == 0 {
			result = ones
		}
	}

	return CoCResult{
		SkillValue:   skillValue,
		Result:       result,
		TensDigit:    selected,
		OnesDigit:    ones,
		TensRolls:    tensRolls,
		SelectedTens: selected,
		IsBonus:      isBonus,
		NumDice:      numBonusPenalty,
		IsSuccess:    result <= skillValue,
		IsCritical:   result == 1,
		IsFumble:     result >= cocFumbleThreshold,
	}, nil
}

// FormatCoCResult renders a percentile roll: the skill header, the digit
// breakdown (with the candidate list and min/max selection when bonus or
// penalty dice applied), and the status line.
func FormatCoCResult(result CoCResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 CoC 擲骰：技能值 %d\n", result.SkillValue)

	if result.NumDice == 0 {
		fmt.Fprintf(&b, "十位數：%d | 個位數：%d\n", result.TensDigit, result.OnesDigit)
	} else {
		diceType := "獎勵骰"
		selectWord := "最低"
		if !result.IsBonus {
			diceType = "懲罰骰"
			selectWord = "最高"
		}
		fmt.Fprintf(&b, "%s %d：十位數 [%s] → 選擇%s %d | 個位數 %d\n",
			diceType, result.NumDice, joinInts(result.TensRolls), selectWord, result.SelectedTens, result.OnesDigit)
	}

	switch {
	case result.IsCritical:
		fmt.Fprintf(&b, "結果：%d ≤ %d 🌟 **大成功！**", result.Result, result.SkillValue)
	case result.IsFumble:
		fmt.Fprintf(&b, "結果：%d > %d 💀 **大失敗！**", result.Result, result.SkillValue)
	case result.IsSuccess:
		fmt.Fprintf(&b, "結果：%d ≤ %d ✅ 成功", result.Result, result.SkillValue)
	default:
		fmt.Fprintf(&b, "結果：%d > %d ❌ 失敗", result.Result, result.SkillValue)
	}

	return b.String()
}
