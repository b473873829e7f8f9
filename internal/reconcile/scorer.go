package reconcile

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// Component weights of the overall confidence.
const (
	amountWeight      = 0.4
	dateWeight        = 0.3
	descriptionWeight = 0.3
)

var (
	oneUnit   = decimal.NewFromInt(1)
	fiveUnits = decimal.NewFromInt(5)
)

// Scorer computes the weighted similarity of a ledger and a statement transaction.
type Scorer struct {
	dateTolerance   int
	amountTolerance decimal.Decimal
}

// NewScorer creates a Scorer using the tolerances in cfg.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{
		dateTolerance:   cfg.DateToleranceDays,
		amountTolerance: cfg.AmountTolerance,
	}
}

// Score returns the confidence that ledger and statement describe the same
// event, along with the sub-scores that produced it.
func (s *Scorer) Score(ledger, statement domain.Transaction) (float64, domain.MatchDetails) {
	diff := ledger.Amount.Sub(statement.Amount).Abs()
	amountScore := s.AmountScore(ledger.Amount, diff)

	days := domain.DaysBetween(ledger.Date, statement.Date)
	dateScore := s.DateScore(days)

	descScore := DescriptionSimilarity(ledger.Description, statement.Description)

	confidence := clamp(amountScore*amountWeight + dateScore*dateWeight + descScore*descriptionWeight)

	details := domain.MatchDetails{
		Method:           domain.MatchMethodFuzzy,
		AmountScore:      ptr(round(amountScore, 3)),
		AmountDiff:       ptr(diff.Round(2).InexactFloat64()),
		DateScore:        ptr(round(dateScore, 3)),
		DateDiffDays:     ptr(days),
		DescriptionScore: ptr(round(descScore, 3)),
	}

	return confidence, details
}

// AmountScore grades an absolute amount difference. base is the ledger amount,
// used to scale differences larger than five units.
func (s *Scorer) AmountScore(base, diff decimal.Decimal) float64 {
	switch {
	case diff.LessThanOrEqual(s.amountTolerance):
		return 1.0
	case diff.LessThanOrEqual(oneUnit):
		return 0.8
	case diff.LessThanOrEqual(fiveUnits):
		return 0.5
	}

	scale := decimal.Max(base.Abs(), oneUnit)
	return math.Max(0, 1-diff.Div(scale).InexactFloat64())
}

// DateScore grades a distance in calendar days.
func (s *Scorer) DateScore(days int) float64 {
	switch {
	case days == 0:
		return 1.0
	case days <= s.dateTolerance:
		return 1.0 - float64(days)/float64(s.dateTolerance+1)
	default:
		return math.Max(0, 0.5-float64(days-s.dateTolerance)*0.1)
	}
}

// withinTolerance reports whether the two amounts differ by no more than the tolerance.
func (s *Scorer) withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(s.amountTolerance)
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func ptr[T any](v T) *T {
	return &v
}
