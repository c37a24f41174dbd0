package query

// Presence filters mappings by their current validity.
type Presence string

// Presence values.
const (
	PresenceAll     Presence = "all"
	PresencePresent Presence = "present"
	PresenceMissing Presence = "missing"
)

// ValidPresence lists the accepted presence values.
var ValidPresence = []Presence{PresenceAll, PresencePresent, PresenceMissing}

// SortOrder selects how a filtered result set is ordered.
type SortOrder string

// Sort orders.
const (
	SortDefault  SortOrder = "default"
	SortPresent  SortOrder = "present"
	SortMissing  SortOrder = "missing"
	SortTimeline SortOrder = "timeline"
)

// ValidSortOrders lists the accepted sort orders.
var ValidSortOrders = []SortOrder{SortDefault, SortPresent, SortMissing, SortTimeline}

// StageAll disables the stage constraint.
const StageAll = "all"

// Paging bounds.
const (
	DefaultPerPage = 50
	MaxPerPage     = 1000
)

// Query is a normalised mapping query. Empty text fields mean "no constraint".
type Query struct {
	Source string
	Target string
	Actor  string
	Reason string
	Range  string

	// Stage is an exact, case-sensitive stage label or StageAll.
	Stage   string
	Present Presence
	Sort    SortOrder

	// Page is 1-based.
	Page    int
	PerPage int
}

// Default returns the unconstrained first-page query.
func Default() Query {
	return Query{
		Stage:   StageAll,
		Present: PresenceAll,
		Sort:    SortDefault,
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// NeedsEvents reports whether the query constrains event fields. A mapping
// with no events fails every such constraint.
func (q Query) NeedsEvents() bool {
	return q.StageConstrained() || q.Actor != "" || q.Reason != "" || len(ParseRangeTokens(q.Range)) > 0
}

// StageConstrained reports whether a stage filter applies.
func (q Query) StageConstrained() bool {
	return q.Stage != "" && q.Stage != StageAll
}

// Raw carries unvalidated query parameters exactly as a caller received them.
type Raw struct {
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Target  string `json:"target,omitempty" yaml:"target,omitempty"`
	Actor   string `json:"actor,omitempty" yaml:"actor,omitempty"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Range   string `json:"range,omitempty" yaml:"range,omitempty"`
	Stage   string `json:"stage,omitempty" yaml:"stage,omitempty"`
	Present string `json:"present,omitempty" yaml:"present,omitempty"`
	Sort    string `json:"sort,omitempty" yaml:"sort,omitempty"`
	Page    string `json:"page,omitempty" yaml:"page,omitempty"`
	PerPage string `json:"per_page,omitempty" yaml:"per_page,omitempty"`
}
