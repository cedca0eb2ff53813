// internal/models/intent.go
package models

import "time"

// IntentType is the kind of operation a user query asks for.
type IntentType string

const (
	IntentCount     IntentType = "count"
	IntentSearch    IntentType = "search"
	IntentList      IntentType = "list"
	IntentAggregate IntentType = "aggregate"
)

// IntentSource tags which classification path produced an intent.
type IntentSource string

const (
	SourceRuleBased IntentSource = "rule_based"
	SourceLLM       IntentSource = "llm"
)

// Collection is a logical entity set a query can target. Candidates are
// mirrored into the local replica; deals and meetings live only in the CRM.
type Collection string

const (
	CollectionCandidates Collection = "candidates"
	CollectionDeals      Collection = "deals"
	CollectionMeetings   Collection = "meetings"
)

// Entities holds the parameters extracted from the query text. Zero values
// mean "not present".
type Entities struct {
	CandidateLocator string     `json:"candidateLocator,omitempty"`
	Location         string     `json:"location,omitempty"`
	SearchTerms      string     `json:"searchTerms,omitempty"`
	AggregateField   string     `json:"aggregateField,omitempty"`
	FromDate         *time.Time `json:"fromDate,omitempty"`
	ToDate           *time.Time `json:"toDate,omitempty"`
}

// Intent is the structured interpretation of a free-text query.
type Intent struct {
	Type       IntentType   `json:"intentType"`
	Collection Collection   `json:"collection"`
	Entities   Entities     `json:"entities"`
	Confidence float64      `json:"confidence"`
	Source     IntentSource `json:"source"`
}
