package dice

import "go.uber.org/zap"

// Roller bundles a Source with a logger so every roll leaves a debug-level
// audit record. The engine functions stay pure; callers that want logging
// go through a Roller instead.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates formula once and logs the outcome.
func (r *Roller) Roll(formula string) (int, []DiceRoll, error) {
	total, rolls, err := ParseAndRoll(formula, r.src)
	if err != nil {
		return 0, nil, err
	}
	groups := make([]string, len(rolls))
	for i, roll := range rolls {
		groups[i] = roll.String()
	}
	r.logger.Debug("dice roll",
		zap.String("formula", formula),
		zap.Strings("groups", groups),
		zap.Int("total", total),
	)
	return total, rolls, nil
}

// RollTimes evaluates formula the given number of times and logs the batch.
func (r *Roller) RollTimes(formula string, times int) ([]Result, error) {
	results, err := RollTimes(formula, times, r.src)
	if err != nil {
		return nil, err
	}
	totals := make([]int, len(results))
	for i, res := range results {
		totals[i] = res.Total
	}
	r.logger.Debug("dice roll batch",
		zap.String("formula", formula),
		zap.Int("times", times),
		zap.Ints("totals", totals),
	)
	return results, nil
}

// RollCoC performs a logged Call of Cthulhu percentile roll.
func (r *Roller) RollCoC(skillValue, numBonusPenalty int, isBonus bool) (CoCResult, error) {
	result, err := RollCoC(skillValue, numBonusPenalty, isBonus, r.src)
	if err != nil {
		return CoCResult{}, err
	}
	r.logger.Debug("coc roll",
		zap.Int("skill", result.SkillValue),
		zap.Int("result", result.Result),
		zap.Ints("tens_rolls", result.TensRolls),
		zap.Int("ones", result.OnesDigit),
		zap.Bool("bonus", result.IsBonus),
		zap.Bool("success", result.IsSuccess),
	)
	return result, nil
}
