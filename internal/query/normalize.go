package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Normalize coerces raw parameters into a usable Query. It never fails;
// each coercion that changed a supplied value is reported as a warning.
//
// Normalize is a pure function with no side effects.
func Normalize(raw Raw) (Query, []string) {
	n := &normalizer{warnings: []string{}}
	q := Default()

	q.Source = strings.TrimSpace(raw.Source)
	q.Target = strings.TrimSpace(raw.Target)
	q.Actor = strings.TrimSpace(raw.Actor)
	q.Reason = strings.TrimSpace(raw.Reason)
	q.Range = strings.TrimSpace(raw.Range)

	if stage := strings.TrimSpace(raw.Stage); stage != "" {
		q.Stage = stage
	}

	q.Present = n.presence(raw.Present)
	q.Sort = n.sortOrder(raw.Sort)
	q.Page = n.page(raw.Page)
	q.PerPage = n.perPage(raw.PerPage)

	return q, n.warnings
}

// ClampPerPage bounds perPage to [1, MaxPerPage].
func ClampPerPage(perPage int) int {
	if perPage < 1 {
		return 1
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// normalizer accumulates warnings during coercion.
type normalizer struct {
	warnings []string
}

func (n *normalizer) warn(format string, args ...any) {
	n.warnings = append(n.warnings, fmt.Sprintf(format, args...))
}

func (n *normalizer) presence(raw string) Presence {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return PresenceAll
	}
	for _, p := range ValidPresence {
		if string(p) == v {
			return p
		}
	}
	n.warn("present: unknown value %q, using %q", raw, PresenceAll)
	return PresenceAll
}

func (n *normalizer) sortOrder(raw string) SortOrder {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return SortDefault
	}
	for _, s := range ValidSortOrders {
		if string(s) == v {
			return s
		}
	}
	n.warn("sort: unknown value %q, using %q", raw, SortDefault)
	return SortDefault
}

func (n *normalizer) page(raw string) int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 1
	}
	page, err := strconv.Atoi(v)
	if err != nil {
		n.warn("page: %q is not a number, using 1", raw)
		return 1
	}
	if page < 1 {
		n.warn("page: %d is below 1, using 1", page)
		return 1
	}
	return page
}

func (n *normalizer) perPage(raw string) int {
	v := strings.TrimSpace(raw)
	if v == "" {
		return DefaultPerPage
	}
	perPage, err := strconv.Atoi(v)
	if err != nil {
		n.warn("per_page: %q is not a number, using %d", raw, DefaultPerPage)
		return DefaultPerPage
	}
	clamped := ClampPerPage(perPage)
	if clamped != perPage {
		n.warn("per_page: %d is outside [1, %d], using %d", perPage, MaxPerPage, clamped)
	}
	return clamped
}
