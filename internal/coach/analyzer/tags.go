package analyzer

import (
	"sort"
	"strings"
)

// ExtractFactorTags derives the risk and positive adjustment tags implied by a
// free-text message. The orchestrator feeds these into Classify when the
// caller did not pass tags explicitly.
func ExtractFactorTags(text string) (risk []string, positive []string) {
	lower := strings.ToLower(text)

	for _, tag := range orderedTagKeys(RiskFactorPenalties) {
		if containsAny(lower, riskTagKeywords[tag]) {
			risk = append(risk, tag)
		}
	}
	for _, tag := range orderedTagKeys(PositiveFactorBonuses) {
		if containsAny(lower, positiveTagKeywords[tag]) {
			positive = append(positive, tag)
		}
	}
	return risk, positive
}

// orderedTagKeys returns map keys in a stable order so repeated extraction of
// the same text yields the same tag lists.
func orderedTagKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
