// Package search turns college listing query parameters into bounded,
// sorted, paginated Postgres queries.
package search

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 12
	// MaxLimit bounds a single listing request. Requests above the
	// per-query row cap are assembled from chained sub-queries.
	MaxLimit = 5000
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortRelevance partitions favorited colleges ahead of everything else.
// It is the only sort computed in application memory.
const SortRelevance = "relevance"

// AcceptanceRangeLabels are the selectivity buckets offered to clients.
// Incoming bucket filters are matched on the numeric substring, so the
// display text can change without breaking the filter.
var AcceptanceRangeLabels = []string{
	"Highly Selective (0-15%)",
	"Selective (15-30%)",
	"Moderately Selective (30-50%)",
	"Less Selective (50-75%)",
	"Open Admission (75%+)",
}

// sortColumns maps the public sortBy values onto colleges columns.
var sortColumns = map[string]string{
	"name":       "name",
	"tuition":    "tuition_in_state",
	"enrollment": "enrollment",
	"acceptance": "acceptance_rate",
	"location":   "state",
	"region":     "region",
	"type":       "type",
	"size":       "size",
	"netCost":    "net_cost",
}

// Params is the full set of college listing filters.
type Params struct {
	Query             string
	States            []string
	Regions           []string
	Types             []string
	Sizes             []string
	ProgramCategories []string
	JesuitOnly        bool
	TuitionMin        *int
	TuitionMax        *int
	EnrollmentMin     *int
	EnrollmentMax     *int
	AcceptanceRateMin *float64
	AcceptanceRateMax *float64
	AcceptanceRanges  []string
	FavoriteIDs       []string
	SortBy            string
	SortOrder         SortOrder
	Page              int
	Limit             int
}

// Parse reads listing parameters from a query string. Malformed numeric
// values are a 400; pagination values are clamped to their bounds.
func Parse(values url.Values) (Params, error) {
	p := Params{
		Query:             strings.TrimSpace(values.Get("query")),
		States:            splitList(values.Get("states")),
		Regions:           splitList(values.Get("regions")),
		Types:             splitList(values.Get("types")),
		Sizes:             splitList(values.Get("sizes")),
		ProgramCategories: splitList(values.Get("programCategories")),
		AcceptanceRanges:  splitList(values.Get("acceptanceRanges")),
		FavoriteIDs:       splitList(values.Get("favoriteIds")),
		JesuitOnly:        values.Get("jesuitOnly") == "true",
		SortBy:            values.Get("sortBy"),
		SortOrder:         SortAsc,
		Page:              1,
		Limit:             DefaultLimit,
	}

	if p.SortBy == "" {
		p.SortBy = "name"
	}
	if values.Get("sortOrder") == string(SortDesc) {
		p.SortOrder = SortDesc
	}

	var err error
	if p.Page, err = parseIntParam(values, "page", 1); err != nil {
		return p, err
	}
	if p.Limit, err = parseIntParam(values, "limit", DefaultLimit); err != nil {
		return p, err
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if p.TuitionMin, err = parseIntFilter(values, "tuitionMin"); err != nil {
		return p, err
	}
	if p.TuitionMax, err = parseIntFilter(values, "tuitionMax"); err != nil {
		return p, err
	}
	if p.EnrollmentMin, err = parseIntFilter(values, "enrollmentMin"); err != nil {
		return p, err
	}
	if p.EnrollmentMax, err = parseIntFilter(values, "enrollmentMax"); err != nil {
		return p, err
	}
	if p.AcceptanceRateMin, err = parseFloatFilter(values, "acceptanceRateMin"); err != nil {
		return p, err
	}
	if p.AcceptanceRateMax, err = parseFloatFilter(values, "acceptanceRateMax"); err != nil {
		return p, err
	}

	return p, nil
}

// SortColumn resolves the sortBy value to a column, falling back to
// name for unknown values.
func (p Params) SortColumn() string {
	if col, ok := sortColumns[p.SortBy]; ok {
		return col
	}
	return "name"
}

// RelevanceSort reports whether the in-memory favorited-first path
// applies: sortBy=relevance with a non-empty favoriteIds list.
func (p Params) RelevanceSort() bool {
	return p.SortBy == SortRelevance && len(p.FavoriteIDs) > 0
}

// Offset is the zero-based index of the first requested row.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseIntParam(values url.Values, name string, fallback int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, httperror.NewHTTPErrorf(http.StatusBadRequest, "%s must be an integer", name)
	}
	return n, nil
}

func parseIntFilter(values url.Values, name string) (*int, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "%s must be an integer", name)
	}
	return &n, nil
}

func parseFloatFilter(values url.Values, name string) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "%s must be a number", name)
	}
	return &f, nil
}
