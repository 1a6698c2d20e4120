// Package main provides the command-line dice roller. It evaluates a
// dice-notation formula (or a Call of Cthulhu percentile roll) and prints
// the formatted result, using the same output conventions as the chat bot
// the engine serves.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/yhlin/trpg-dice/internal/config"
	"github.com/yhlin/trpg-dice/internal/dice"
	"github.com/yhlin/trpg-dice/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	times := flag.Int("times", 0, "number of repeated rolls (default from config)")
	cocSkill := flag.Int("coc", 0, "CoC skill value 1-100; switches to percentile mode")
	bonus := flag.Int("bonus", 0, "CoC bonus dice (0-3)")
	penalty := flag.Int("penalty", 0, "CoC penalty dice (0-3)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if *times == 0 {
		*times = cfg.Roll.DefaultTimes
	}

	roller := dice.NewRoller(dice.NewCryptoSource(), logger)

	var output string
	if *cocSkill > 0 {
		output, err = runCoC(roller, *cocSkill, *bonus, *penalty, *times)
	} else {
		formula := strings.Join(flag.Args(), " ")
		output, err = runFormula(roller, formula, *times)
	}
	if err != nil {
		var parseErr *dice.ParseError
		if errors.As(err, &parseErr) {
			fmt.Println("❌ " + parseErr.Message)
			os.Exit(1)
		}
		logger.Fatal("roll failed", zap.Error(err))
	}

	fmt.Println(output)
}

// runFormula evaluates a dice formula once or as a batch and formats it.
func runFormula(roller *dice.Roller, formula string, times int) (string, error) {
	if times == 1 {
		total, rolls, err := roller.Roll(formula)
		if err != nil {
			return "", err
		}
		return dice.FormatDiceResult(formula, total, rolls), nil
	}

	results, err := roller.RollTimes(formula, times)
	if err != nil {
		return "", err
	}
	return dice.FormatMultipleResults(formula, results, times), nil
}

// runCoC performs CoC percentile rolls. -bonus and -penalty are mutually
// exclusive; repeated rolls get one compact line per attempt.
func runCoC(roller *dice.Roller, skill, bonus, penalty, times int) (string, error) {
	if bonus > 0 && penalty > 0 {
		return "", &dice.ParseError{Message: "獎勵骰和懲罰骰不能同時使用"}
	}
	if times < 1 {
		return "", &dice.ParseError{Message: "擲骰次數必須至少為 1"}
	}
	if times > dice.MaxRollTimes {
		return "", &dice.ParseError{Message: fmt.Sprintf("擲骰次數不能超過 %d", dice.MaxRollTimes)}
	}

	isBonus := penalty == 0
	numDice := bonus
	if !isBonus {
		numDice = penalty
	}

	if times == 1 {
		result, err := roller.RollCoC(skill, numDice, isBonus)
		if err != nil {
			return "", err
		}
		return dice.FormatCoCResult(result), nil
	}

	diceType := "獎勵骰"
	if !isBonus {
		diceType = "懲罰骰"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 CoC 擲骰：技能值 %d，%s %d (重複 %d 次)\n\n", skill, diceType, numDice, times)

	for i := 1; i <= times; i++ {
		result, err := roller.RollCoC(skill, numDice, isBonus)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "第%d次：%s\n", i, summarizeCoC(result))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// summarizeCoC renders one attempt of a repeated CoC roll on a single line.
func summarizeCoC(result dice.CoCResult) string {
	var rollsInfo string
	if result.NumDice == 0 {
		rollsInfo = fmt.Sprintf("十位數 %d | 個位數 %d", result.TensDigit, result.OnesDigit)
	} else {
		selectWord := "最低"
		if !result.IsBonus {
			selectWord = "最高"
		}
		rollsInfo = fmt.Sprintf("十位數 [%s] → %s %d | 個位數 %d",
			joinInts(result.TensRolls), selectWord, result.SelectedTens, result.OnesDigit)
	}

	var status string
	switch {
	case result.IsCritical:
		status = "🌟 大成功"
	case result.IsFumble:
		status = "💀 大失敗"
	case result.IsSuccess:
		status = "✅ 成功"
	default:
		status = "❌ 失敗"
	}

	return fmt.Sprintf("%s → %d (%s)", rollsInfo, result.Result, status)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
