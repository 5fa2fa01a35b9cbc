package workflow

import (
	"context"
	"strings"

	"bitbucket.org/sofidex/tracing_backend/config"
	"bitbucket.org/sofidex/tracing_backend/models"
	"bitbucket.org/sofidex/tracing_backend/utils"
	"gorm.io/gorm"
)

// Fuzzy linkage scoring weights. The threshold equals the surname weight: a
// surname match alone qualifies, supporting fields only boost confidence.
const (
	ScoreSurnameExact       = 10
	ScoreGivenNameExact     = 10
	ScoreGivenNameSubstring = 5
	ScoreBirthDateExact     = 10
	LinkageScoreThreshold   = 10
)

// ScoreLinkageCandidate scores how likely candidate is the original case a
// contestation disputes. A differing surname scores zero regardless of the
// other fields.
func ScoreLinkageCandidate(contestation *models.CaseRecord, candidate *models.CaseRecord) int {
	surname := utils.NormalizeIdentity(contestation.Surname)
	if surname == "" || surname != utils.NormalizeIdentity(candidate.Surname) {
		return 0
	}
	score := ScoreSurnameExact

	given := utils.NormalizeIdentity(contestation.GivenName)
	candidateGiven := utils.NormalizeIdentity(candidate.GivenName)
	if given != "" && given == candidateGiven {
		score += ScoreGivenNameExact
	} else if given != "" && candidateGiven != "" &&
		(strings.Contains(given, candidateGiven) || strings.Contains(candidateGiven, given)) {
		score += ScoreGivenNameSubstring
	}

	if contestation.BirthDate != nil && candidate.BirthDate != nil {
		y1, m1, d1 := contestation.BirthDate.Date()
		y2, m2, d2 := candidate.BirthDate.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			score += ScoreBirthDateExact
		}
	}
	return score
}

// BestFuzzyMatch returns the highest-scoring candidate at or above the
// threshold, or nil. Candidates are expected in ascending id order; the first
// highest score wins, keeping resolution deterministic.
func BestFuzzyMatch(contestation *models.CaseRecord, candidates []models.CaseRecord) (*models.CaseRecord, int) {
	var best *models.CaseRecord
	bestScore := 0
	for i := range candidates {
		if score := ScoreLinkageCandidate(contestation, &candidates[i]); score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	if bestScore < LinkageScoreThreshold {
		return nil, 0
	}
	return best, bestScore
}

// ResolveOriginal finds the original case a contestation disputes. Order of
// attempts, first match wins: exact contested case number, exact contested
// request number, fuzzy identity scoring. A nil result is not an error; the
// caller persists the contestation unresolved for manual triage.
func ResolveOriginal(ctx context.Context, tx *gorm.DB, rec *models.CaseRecord) (*models.CaseRecord, int, error) {
	original, err := models.FindCaseByCaseNumber(ctx, tx, rec.TenantId, strings.TrimSpace(rec.ContestedCaseNumber))
	if err != nil {
		return nil, 0, err
	}
	if original != nil {
		return original, 0, nil
	}

	original, err = models.FindCaseByRequestNumber(ctx, tx, rec.TenantId, strings.TrimSpace(rec.ContestedRequestNumber))
	if err != nil {
		return nil, 0, err
	}
	if original != nil {
		return original, 0, nil
	}

	if config.FuzzyLinkageDisabled() {
		return nil, 0, nil
	}
	candidates, err := models.FindLinkageCandidates(ctx, tx, rec.TenantId)
	if err != nil {
		return nil, 0, err
	}
	best, score := BestFuzzyMatch(rec, candidates)
	return best, score, nil
}
