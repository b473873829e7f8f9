package reconcile

import (
	"golang.org/x/sync/errgroup"

	"github.com/iho/bankrecon/internal/domain"
)

// checkNumberConfidence is assigned to every check-number match.
const checkNumberConfidence = 0.99

// Phase is one matching strategy. It claims pairs from the two pools and
// returns them; pairs claimed by an earlier phase are never revisited.
type Phase interface {
	Method() domain.MatchMethod
	Match(ledger, statement *Pool) []domain.MatchResult
}

// checkNumberPhase pairs records carrying the same check number and amount.
// The first qualifying statement record wins.
type checkNumberPhase struct {
	scorer *Scorer
}

func (p *checkNumberPhase) Method() domain.MatchMethod {
	return domain.MatchMethodCheckNumber
}

func (p *checkNumberPhase) Match(ledger, statement *Pool) []domain.MatchResult {
	var matches []domain.MatchResult

	for i := 0; i < ledger.Len(); i++ {
		l := ledger.At(i)
		if ledger.IsClaimed(i) || l.CheckNumber == "" {
			continue
		}

		for j := 0; j < statement.Len(); j++ {
			s := statement.At(j)
			if statement.IsClaimed(j) || s.CheckNumber == "" {
				continue
			}
			if l.CheckNumber != s.CheckNumber || !p.scorer.withinTolerance(l.Amount, s.Amount) {
				continue
			}

			ledger.Claim(i)
			statement.Claim(j)
			matches = append(matches, domain.MatchResult{
				Ledger:     l,
				Statement:  s,
				Confidence: checkNumberConfidence,
				Details: domain.MatchDetails{
					Method:      domain.MatchMethodCheckNumber,
					CheckNumber: l.CheckNumber,
				},
			})
			break
		}
	}

	return matches
}

// exactAmountPhase pairs records whose amounts agree within tolerance and whose
// dates fall inside the date window, preferring close dates and similar descriptions.
type exactAmountPhase struct {
	scorer    *Scorer
	threshold float64
}

func (p *exactAmountPhase) Method() domain.MatchMethod {
	return domain.MatchMethodExactAmount
}

func (p *exactAmountPhase) Match(ledger, statement *Pool) []domain.MatchResult {
	var matches []domain.MatchResult

	for i := 0; i < ledger.Len(); i++ {
		if ledger.IsClaimed(i) {
			continue
		}
		l := ledger.At(i)

		best := -1
		bestConfidence := 0.0
		var bestDays int
		var bestDesc float64

		for j := 0; j < statement.Len(); j++ {
			if statement.IsClaimed(j) {
				continue
			}
			s := statement.At(j)

			if !p.scorer.withinTolerance(l.Amount, s.Amount) {
				continue
			}
			days := domain.DaysBetween(l.Date, s.Date)
			if days > p.scorer.dateTolerance {
				continue
			}

			desc := DescriptionSimilarity(l.Description, s.Description)
			confidence := 0.7 + 0.15*p.scorer.DateScore(days) + 0.15*desc

			if confidence > bestConfidence {
				best, bestConfidence, bestDays, bestDesc = j, confidence, days, desc
			}
		}

		if best < 0 || bestConfidence < p.threshold {
			continue
		}

		ledger.Claim(i)
		statement.Claim(best)
		matches = append(matches, domain.MatchResult{
			Ledger:     l,
			Statement:  statement.At(best),
			Confidence: clamp(bestConfidence),
			Details: domain.MatchDetails{
				Method:           domain.MatchMethodExactAmount,
				DateDiffDays:     ptr(bestDays),
				DescriptionScore: ptr(round(bestDesc, 3)),
			},
		})
	}

	return matches
}

// fuzzyPhase scores every remaining pair with the full Scorer.
type fuzzyPhase struct {
	scorer    *Scorer
	threshold float64
	workers   int
}

func (p *fuzzyPhase) Method() domain.MatchMethod {
	return domain.MatchMethodFuzzy
}

type scoredCandidate struct {
	details    domain.MatchDetails
	confidence float64
	index      int
}

func (p *fuzzyPhase) Match(ledger, statement *Pool) []domain.MatchResult {
	var matches []domain.MatchResult

	for i := 0; i < ledger.Len(); i++ {
		if ledger.IsClaimed(i) {
			continue
		}
		l := ledger.At(i)

		candidates := p.score(l, statement)

		best := -1
		bestConfidence := 0.0
		for k, c := range candidates {
			if c.confidence > bestConfidence {
				best, bestConfidence = k, c.confidence
			}
		}

		if best < 0 || bestConfidence < p.threshold {
			continue
		}

		winner := candidates[best]
		if !statement.Claim(winner.index) {
			continue
		}
		ledger.Claim(i)
		matches = append(matches, domain.MatchResult{
			Ledger:     l,
			Statement:  statement.At(winner.index),
			Confidence: winner.confidence,
			Details:    winner.details,
		})
	}

	return matches
}

// score evaluates l against every open statement record. The result is in
// pool order regardless of how many workers computed it.
func (p *fuzzyPhase) score(l domain.Transaction, statement *Pool) []scoredCandidate {
	open := statement.OpenIndexes()
	out := make([]scoredCandidate, len(open))

	scoreRange := func(from, to int) {
		for k := from; k < to; k++ {
			confidence, details := p.scorer.Score(l, statement.At(open[k]))
			out[k] = scoredCandidate{index: open[k], confidence: confidence, details: details}
		}
	}

	if p.workers <= 1 || len(open) < 2*p.workers {
		scoreRange(0, len(open))
		return out
	}

	var g errgroup.Group
	chunk := (len(open) + p.workers - 1) / p.workers
	for from := 0; from < len(open); from += chunk {
		to := min(from+chunk, len(open))
		g.Go(func() error {
			scoreRange(from, to)
			return nil
		})
	}
	_ = g.Wait()

	return out
}
