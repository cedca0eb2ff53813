// internal/classifier/rules.go
package classifier

import (
	"regexp"
	"strings"
	"time"

	"well-query-engine/internal/models"
)

// RuleBasedClassifier is the deterministic classification path. It never
// touches the network, never fails, and answers in well under a millisecond;
// it is both the all-queries path when the model is unconfigured and the
// fallback when the model path errors.
type RuleBasedClassifier struct {
	confMatch    float64
	confFallback float64
	now          func() time.Time
}

// NewRuleBasedClassifier builds the classifier with the configured
// confidence priors. The clock is time.Now; tests swap it via WithClock.
func NewRuleBasedClassifier(confMatch, confFallback float64) *RuleBasedClassifier {
	return &RuleBasedClassifier{
		confMatch:    confMatch,
		confFallback: confFallback,
		now:          time.Now,
	}
}

// WithClock replaces the reference clock used to resolve relative date
// expressions.
func (c *RuleBasedClassifier) WithClock(now func() time.Time) *RuleBasedClassifier {
	c.now = now
	return c
}

var (
	locatorPattern = regexp.MustCompile(`(?i)\b(TWAV\d+)\b`)

	countPhrases = []string{"how many", "count", "number of"}

	listVerbs = []string{"show", "list", "find", "display", "get", "give me", "pull up", "search"}

	aggregatePattern = regexp.MustCompile(`(?i)\b(?:average|avg|sum|total)\s+(?:of\s+)?([a-z_]+)\b`)

	// First qualifier wins; checked in declaration order so ties are stable.
	collectionKeywords = []struct {
		keyword    string
		collection models.Collection
	}{
		{"candidates", models.CollectionCandidates},
		{"candidate", models.CollectionCandidates},
		{"vault", models.CollectionCandidates},
		{"deals", models.CollectionDeals},
		{"deal", models.CollectionDeals},
		{"placements", models.CollectionDeals},
		{"meetings", models.CollectionMeetings},
		{"meeting", models.CollectionMeetings},
		{"appointments", models.CollectionMeetings},
		{"calls", models.CollectionMeetings},
	}

	locationPattern = regexp.MustCompile(`(?i)\b(?:in|near|around|based in)\s+([A-Za-z][A-Za-z .'-]{1,40}?)(?:[?.!,]|$)`)

	quotedPattern = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	namedPattern  = regexp.MustCompile(`(?i)\b(?:named|called)\s+([A-Za-z][A-Za-z .'-]{1,40}?)(?:[?.!,]|$)`)
)

// Classify applies the ordered pattern checks, highest specificity first.
// Any unmatched input lands on the low-confidence default rather than an
// error.
func (c *RuleBasedClassifier) Classify(text string) models.Intent {
	now := c.now()
	lower := strings.ToLower(text)

	entities := models.Entities{}
	entities.FromDate, entities.ToDate = extractDateRange(text, now)
	entities.Location = extractLocation(text)

	// 1. Locator codes are unambiguous: always a single-candidate search.
	if m := locatorPattern.FindStringSubmatch(text); m != nil {
		entities.CandidateLocator = strings.ToUpper(m[1])
		return models.Intent{
			Type:       models.IntentSearch,
			Collection: models.CollectionCandidates,
			Entities:   entities,
			Confidence: c.confMatch,
			Source:     models.SourceRuleBased,
		}
	}

	collection, collectionMatched := matchCollection(lower)

	// 2. Counting verb + collection keyword.
	if collectionMatched && containsAny(lower, countPhrases) {
		return models.Intent{
			Type:       models.IntentCount,
			Collection: collection,
			Entities:   entities,
			Confidence: c.confMatch,
			Source:     models.SourceRuleBased,
		}
	}

	// 3. Aggregation over a named field.
	if collectionMatched {
		if m := aggregatePattern.FindStringSubmatch(lower); m != nil && !isCollectionWord(m[1]) {
			entities.AggregateField = m[1]
			return models.Intent{
				Type:       models.IntentAggregate,
				Collection: collection,
				Entities:   entities,
				Confidence: c.confMatch,
				Source:     models.SourceRuleBased,
			}
		}
	}

	// 4. Listing verb + collection keyword; a qualifier upgrades it to a
	// search.
	if collectionMatched && containsAny(lower, listVerbs) {
		intentType := models.IntentList
		entities.SearchTerms = extractSearchTerms(text)
		if entities.Location != "" || entities.SearchTerms != "" {
			intentType = models.IntentSearch
		}
		return models.Intent{
			Type:       intentType,
			Collection: collection,
			Entities:   entities,
			Confidence: c.confMatch,
			Source:     models.SourceRuleBased,
		}
	}

	// 5. A bare collection mention still routes there as a list.
	if collectionMatched {
		return models.Intent{
			Type:       models.IntentList,
			Collection: collection,
			Entities:   entities,
			Confidence: c.confMatch,
			Source:     models.SourceRuleBased,
		}
	}

	// 6. Default: list candidates, low confidence. Candidates are by far the
	// most common target in practice.
	return models.Intent{
		Type:       models.IntentList,
		Collection: models.CollectionCandidates,
		Entities:   entities,
		Confidence: c.confFallback,
		Source:     models.SourceRuleBased,
	}
}

func matchCollection(lower string) (models.Collection, bool) {
	for _, entry := range collectionKeywords {
		if containsWord(lower, entry.keyword) {
			return entry.collection, true
		}
	}
	return "", false
}

func isCollectionWord(word string) bool {
	for _, entry := range collectionKeywords {
		if word == entry.keyword {
			return true
		}
	}
	return false
}

func containsAny(lower string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// extractLocation pulls a place name after a locative preposition, ignoring
// captures that are really date expressions.
func extractLocation(text string) string {
	m := locationPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	candidate := strings.TrimSpace(m[1])
	for _, article := range []string{"the ", "a ", "an ", "our "} {
		if strings.HasPrefix(strings.ToLower(candidate), article) {
			candidate = strings.TrimSpace(candidate[len(article):])
			break
		}
	}
	lower := strings.ToLower(candidate)

	if isDateWord(lower) {
		return ""
	}
	// Drop a trailing date expression ("in Chicago last month").
	for _, marker := range []string{" last ", " this ", " today", " yesterday"} {
		if idx := strings.Index(" "+lower+" ", marker); idx >= 0 {
			candidate = strings.TrimSpace(candidate[:idx])
			lower = strings.ToLower(candidate)
			break
		}
	}
	if candidate == "" || isDateWord(lower) || isCollectionWord(lower) {
		return ""
	}
	return candidate
}

func isDateWord(lower string) bool {
	switch lower {
	case "today", "yesterday", "this week", "last week", "this month",
		"last month", "this quarter", "last quarter", "this year", "last year":
		return true
	}
	for _, entry := range monthNames {
		if lower == entry.name {
			return true
		}
	}
	return false
}

// extractSearchTerms picks up quoted phrases and "named/called X" forms.
func extractSearchTerms(text string) string {
	if m := quotedPattern.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[2])
	}
	if m := namedPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
