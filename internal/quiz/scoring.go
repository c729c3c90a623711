package quiz

import (
	"math"

	"iq-report-service/internal/domain"
)

// Display range of the derived index: 70 at zero correct, 130 at a
// perfect score. A linear rescale, not a psychometric model.
const (
	indexBaseline = 70
	indexRange    = 60
)

// Result is the outcome of scoring one answer set.
type Result struct {
	Score        int
	DerivedIndex int
}

// Score counts answers that exactly match the bank's recorded answer
// (case-sensitive) and derives the display index. Missing or wrong
// answers simply fail the equality check.
func Score(bank domain.QuestionBank, answers map[int]string) Result {
	score := 0
	for _, q := range bank.Questions {
		if answers[q.Index] == q.Answer {
			score++
		}
	}
	return Result{
		Score:        score,
		DerivedIndex: DerivedIndex(score, bank.Total()),
	}
}

// DerivedIndex rescales a raw score into the 70-130 display range.
func DerivedIndex(score, total int) int {
	if total <= 0 {
		return indexBaseline
	}
	ratio := float64(score) / float64(total)
	return int(math.Round(indexBaseline + ratio*indexRange))
}

// Classification maps a derived index onto the report's category bands.
func Classification(index int) string {
	switch {
	case index >= 140:
		return "Genialidade"
	case index >= 130:
		return "Muito Superior"
	case index >= 120:
		return "Superior"
	case index >= 110:
		return "Acima da Média"
	case index >= 90:
		return "Média"
	case index >= 80:
		return "Abaixo da Média"
	default:
		return "Em Desenvolvimento"
	}
}
