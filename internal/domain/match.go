package domain

// MatchMethod names the phase that produced a match.
type MatchMethod string

const (
	MatchMethodCheckNumber MatchMethod = "check_number"
	MatchMethodExactAmount MatchMethod = "exact_amount"
	MatchMethodFuzzy       MatchMethod = "fuzzy"
)

// MatchDetails records how a pair was matched. Score fields are only
// populated by the phases that compute them.
type MatchDetails struct {
	Method           MatchMethod `json:"method"`
	CheckNumber      string      `json:"check,omitempty"`
	AmountScore      *float64    `json:"amount_score,omitempty"`
	AmountDiff       *float64    `json:"amount_diff,omitempty"`
	DateScore        *float64    `json:"date_score,omitempty"`
	DateDiffDays     *int        `json:"date_diff_days,omitempty"`
	DescriptionScore *float64    `json:"description_similarity,omitempty"`
}

// MatchResult pairs one ledger transaction with one statement transaction.
type MatchResult struct {
	Ledger     Transaction  `json:"ledger"`
	Statement  Transaction  `json:"statement"`
	Details    MatchDetails `json:"details"`
	Confidence float64      `json:"confidence"`
}
