// Package similarity ranks colleges against a target by a fixed-weight
// attribute heuristic.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/PennQuinnDad/college-quest/pkg/models"
)

const (
	regionPoints = 20
	statePoints  = 10
	typePoints   = 15
	sizePoints   = 10
	jesuitPoints = 5

	// MaxScore is the highest total any candidate can reach.
	MaxScore = regionPoints + statePoints + typePoints + sizePoints + jesuitPoints + 10 + 10 + 10 + 5 + 5 + programOverlapCap

	programOverlapPoints = 2
	programOverlapCap    = 10
)

// Scorer computes similarity scores between colleges. Rates are
// compared on the percentage scale colleges are stored in.
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score sums the per-attribute points for a candidate against the
// target. Every factor is independent; attributes missing on either
// side contribute nothing.
func (s *Scorer) Score(target, candidate models.College) int {
	score := 0

	if stringPtrMatch(target.Region, candidate.Region) {
		score += regionPoints
	}
	if target.State != "" && target.State == candidate.State {
		score += statePoints
	}
	if stringPtrMatch(target.Type, candidate.Type) {
		score += typePoints
	}
	if stringPtrMatch(target.Size, candidate.Size) {
		score += sizePoints
	}
	if target.Jesuit == candidate.Jesuit {
		score += jesuitPoints
	}

	score += relativeProximity(target.Enrollment, candidate.Enrollment, 0.25, 0.50, 10, 5)
	score += absoluteProximity(target.AcceptanceRate, candidate.AcceptanceRate, 5, 10, 10, 5)
	score += relativeProximity(target.TuitionInState, candidate.TuitionInState, 0.20, 0.40, 10, 5)
	score += absoluteProximity(target.GraduationRate, candidate.GraduationRate, 5, 10, 5, 3)
	score += satProximity(target, candidate)
	score += programOverlap(target.Programs, candidate.Programs)

	return score
}

// Rank scores every candidate and returns the top limit, highest
// first. The sort is stable so tied candidates keep their fetch order.
func (s *Scorer) Rank(target models.College, candidates []models.College, limit int) []models.ScoredCollege {
	scored := make([]models.ScoredCollege, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == target.ID {
			continue
		}
		scored = append(scored, models.ScoredCollege{
			College:         candidate,
			SimilarityScore: s.Score(target, candidate),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func stringPtrMatch(a, b *string) bool {
	return a != nil && b != nil && *a != "" && *a == *b
}

// relativeProximity awards nearPoints when the relative difference
// against the target value is within near, farPoints within far.
func relativeProximity(target, candidate *int, near, far float64, nearPoints, farPoints int) int {
	if target == nil || candidate == nil || *target == 0 || *candidate == 0 {
		return 0
	}
	diff := math.Abs(float64(*target-*candidate)) / float64(*target)
	switch {
	case diff <= near:
		return nearPoints
	case diff <= far:
		return farPoints
	default:
		return 0
	}
}

func absoluteProximity(target, candidate *float64, near, far float64, nearPoints, farPoints int) int {
	if target == nil || candidate == nil {
		return 0
	}
	diff := math.Abs(*target - *candidate)
	switch {
	case diff <= near:
		return nearPoints
	case diff <= far:
		return farPoints
	default:
		return 0
	}
}

// satProximity compares combined math plus reading scores. Both sides
// need both sub-scores for the factor to apply.
func satProximity(target, candidate models.College) int {
	if target.SATMath == nil || target.SATReading == nil || candidate.SATMath == nil || candidate.SATReading == nil {
		return 0
	}
	diff := math.Abs(float64((*target.SATMath + *target.SATReading) - (*candidate.SATMath + *candidate.SATReading)))
	switch {
	case diff <= 50:
		return 5
	case diff <= 100:
		return 3
	default:
		return 0
	}
}

// programOverlap awards points per distinct shared program tag, capped.
// Tags are compared case-insensitively after trimming.
func programOverlap(target, candidate []string) int {
	if len(target) == 0 || len(candidate) == 0 {
		return 0
	}

	targetSet := make(map[string]struct{}, len(target))
	for _, program := range target {
		if normalized := normalizeProgram(program); normalized != "" {
			targetSet[normalized] = struct{}{}
		}
	}

	points := 0
	seen := make(map[string]struct{}, len(candidate))
	for _, program := range candidate {
		normalized := normalizeProgram(program)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		if _, ok := targetSet[normalized]; ok {
			points += programOverlapPoints
			if points >= programOverlapCap {
				return programOverlapCap
			}
		}
	}
	return points
}

func normalizeProgram(program string) string {
	return strings.ToLower(strings.TrimSpace(program))
}
