package search

import (
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// searchColumns are the text columns matched by the free-text query.
var searchColumns = []string{
	"name",
	"city",
	"state",
	"region",
	"type",
	"description",
	"website",
}

// ApplyFilters adds every listing filter to the select builder.
// programCollegeIDs is the resolved set of college ids matching the
// requested program categories; it only applies when programFilter is
// set, and an empty resolved set matches nothing.
func ApplyFilters(sb *sqlbuilder.SelectBuilder, p Params, programCollegeIDs []string, programFilter bool) {
	if p.Query != "" {
		pattern := "%" + p.Query + "%"
		conds := make([]string, 0, len(searchColumns))
		for _, col := range searchColumns {
			conds = append(conds, sb.ILike(col, pattern))
		}
		sb.Where(sb.Or(conds...))
	}

	if len(p.States) > 0 {
		sb.Where(sb.In("state", sqlbuilder.Flatten(p.States)...))
	}
	if len(p.Regions) > 0 {
		sb.Where(sb.In("region", sqlbuilder.Flatten(p.Regions)...))
	}
	if len(p.Types) > 0 {
		sb.Where(sb.In("type", sqlbuilder.Flatten(p.Types)...))
	}
	if len(p.Sizes) > 0 {
		sb.Where(sb.In("size", sqlbuilder.Flatten(p.Sizes)...))
	}
	if p.JesuitOnly {
		sb.Where(sb.Equal("jesuit", true))
	}

	if p.TuitionMin != nil {
		sb.Where(sb.GreaterEqualThan("tuition_in_state", *p.TuitionMin))
	}
	if p.TuitionMax != nil {
		sb.Where(sb.LessEqualThan("tuition_in_state", *p.TuitionMax))
	}
	if p.EnrollmentMin != nil {
		sb.Where(sb.GreaterEqualThan("enrollment", *p.EnrollmentMin))
	}
	if p.EnrollmentMax != nil {
		sb.Where(sb.LessEqualThan("enrollment", *p.EnrollmentMax))
	}

	applyAcceptance(sb, p)

	if len(p.FavoriteIDs) > 0 {
		sb.Where(sb.In("id", sqlbuilder.Flatten(p.FavoriteIDs)...))
	}

	if programFilter {
		if len(programCollegeIDs) == 0 {
			sb.Where("1 = 0")
		} else {
			sb.Where(sb.In("id", sqlbuilder.Flatten(programCollegeIDs)...))
		}
	}
}

// applyAcceptance adds the acceptance rate filter. Named buckets take
// precedence over the continuous min/max range when both are present.
func applyAcceptance(sb *sqlbuilder.SelectBuilder, p Params) {
	if len(p.AcceptanceRanges) > 0 {
		conds := make([]string, 0, len(p.AcceptanceRanges))
		for _, label := range p.AcceptanceRanges {
			if cond := bucketCondition(sb, label); cond != "" {
				conds = append(conds, cond)
			}
		}
		if len(conds) > 0 {
			sb.Where(sb.Or(conds...))
			return
		}
	}

	if p.AcceptanceRateMin != nil {
		sb.Where(sb.GreaterEqualThan("acceptance_rate", *p.AcceptanceRateMin))
	}
	if p.AcceptanceRateMax != nil {
		sb.Where(sb.LessEqualThan("acceptance_rate", *p.AcceptanceRateMax))
	}
}

// bucketCondition maps a named acceptance bucket label onto a range
// condition. Labels are matched by substring so cosmetic variants like
// "0-15%" still resolve. Unknown labels contribute nothing.
func bucketCondition(sb *sqlbuilder.SelectBuilder, label string) string {
	switch {
	case strings.Contains(label, "0-15"):
		return sb.And(sb.GreaterThan("acceptance_rate", 0), sb.LessEqualThan("acceptance_rate", 15))
	case strings.Contains(label, "15-30"):
		return sb.And(sb.GreaterEqualThan("acceptance_rate", 15), sb.LessEqualThan("acceptance_rate", 30))
	case strings.Contains(label, "30-50"):
		return sb.And(sb.GreaterEqualThan("acceptance_rate", 30), sb.LessEqualThan("acceptance_rate", 50))
	case strings.Contains(label, "50-75"):
		return sb.And(sb.GreaterEqualThan("acceptance_rate", 50), sb.LessEqualThan("acceptance_rate", 75))
	case strings.Contains(label, "75"):
		return sb.GreaterEqualThan("acceptance_rate", 75)
	default:
		return ""
	}
}

// ApplySort orders the builder by the resolved sort column with id as
// the tie breaker, keeping page boundaries stable.
func ApplySort(sb *sqlbuilder.SelectBuilder, p Params) {
	col := p.SortColumn()
	if p.SortOrder == SortDesc {
		sb.OrderBy(col+" DESC", "id ASC")
		return
	}
	sb.OrderBy(col+" ASC", "id ASC")
}
