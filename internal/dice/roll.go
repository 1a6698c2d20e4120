package dice

import (
	"strconv"
	"strings"
)

// DiceRoll records one evaluated dice group: the raw outcomes in roll
// order, the total that contributed to the expression, and — when a keep
// modifier applied — the kept/dropped split of the sorted outcomes.
//
// Invariant: when Modifier != KeepNone, Kept and Dropped together are a
// permutation of Rolls and Total == sum(Kept); otherwise Kept and Dropped
// are nil and Total == sum(Rolls). Records are read-only once returned.
type DiceRoll struct {
	Count    int
	Faces    int
	Rolls    []int
	Total    int
	Kept     []int
	Dropped  []int
	Modifier KeepModifier
}

// String renders the group for display: "[kept](~~dropped~~)" when a keep
// modifier split the rolls, "[v]" for a single unmodified die, and
// "[v1, v2, ...]" otherwise. The strike-through marks the dropped dice.
func (r DiceRoll) String() string {
	if len(r.Kept) > 0 && len(r.Dropped) > 0 {
		return "[" + joinInts(r.Kept) + "](~~" + joinInts(r.Dropped) + "~~)"
	}
	if len(r.Rolls) == 1 {
		return "[" + strconv.Itoa(r.Rolls[0]) + "]"
	}
	return "[" + joinInts(r.Rolls) + "]"
}

// Result pairs one evaluation's total with its roll log. It is the
// per-attempt element of RollTimes output.
type Result struct {
	Total int
	Rolls []DiceRoll
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func sumInts(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
