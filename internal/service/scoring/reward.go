package scoring

import (
	"math"
)

// Ступени множителя награды по проценту результата.
// Нижняя граница каждой ступени включительна.
const (
	tierExcellentPct = 90
	tierGoodPct      = 75
	tierPassPct      = 60

	multiplierExcellent = 1.5
	multiplierGood      = 1.25
	multiplierPass      = 1.0
	multiplierFail      = 0.5

	// assignmentMultiplier - фиксированная награда "за сдачу на проверку",
	// не зависящая от очков
	assignmentMultiplier = 0.5
)

// RewardMultiplier возвращает множитель награды для процента результата
func RewardMultiplier(percentage float64) float64 {
	switch {
	case percentage >= tierExcellentPct:
		return multiplierExcellent
	case percentage >= tierGoodPct:
		return multiplierGood
	case percentage >= tierPassPct:
		return multiplierPass
	default:
		return multiplierFail
	}
}

// ComputeReward возвращает кредиты за завершение испытания: базовый XP,
// умноженный на ступенчатый множитель результата. Округление до ближайшего
// целого (половина - вверх); это единственное место с дробным XP.
func ComputeReward(total, maxPossible, baseXP int) int {
	pct := Result{Total: total, MaxPossible: maxPossible}.Percentage()
	return int(math.Round(float64(baseXP) * RewardMultiplier(pct)))
}

// AssignmentReward возвращает фиксированную награду за отправку задания
// независимо от его содержимого
func AssignmentReward(baseXP int) int {
	return int(math.Round(float64(baseXP) * assignmentMultiplier))
}
