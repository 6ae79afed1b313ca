package similarity

import (
	"testing"

	"github.com/PennQuinnDad/college-quest/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string    { return &s }
func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

func testCollege(id string) models.College {
	return models.College{
		ID:             id,
		Name:           "Test College " + id,
		State:          "MA",
		Region:         strPtr("Northeast"),
		Type:           strPtr("Private"),
		Size:           strPtr("Medium"),
		Jesuit:         true,
		Enrollment:     intPtr(3000),
		AcceptanceRate: floatPtr(20),
		TuitionInState: intPtr(40000),
		GraduationRate: floatPtr(90),
		SATMath:        intPtr(650),
		SATReading:     intPtr(640),
		Programs:       []string{"CS", "Biology"},
	}
}

func TestScorerScore(t *testing.T) {
	scorer := NewScorer()

	t.Run("should award every factor to an identical college", func(t *testing.T) {
		target := testCollege("a")
		candidate := testCollege("b")
		candidate.Programs = []string{"CS", "Biology", "History", "Math", "Physics", "Art"}
		target.Programs = candidate.Programs

		assert.Equal(t, MaxScore, scorer.Score(target, candidate))
		assert.Equal(t, 110, MaxScore)
	})

	t.Run("should score the near-twin candidate at 92", func(t *testing.T) {
		target := testCollege("a")
		target.GraduationRate = nil
		target.SATMath = nil
		target.SATReading = nil

		candidate := testCollege("b")
		candidate.Enrollment = intPtr(3100)
		candidate.AcceptanceRate = floatPtr(22)
		candidate.TuitionInState = intPtr(42000)
		candidate.Programs = []string{"CS", "History"}

		assert.Equal(t, 92, scorer.Score(target, candidate))
	})

	t.Run("should be symmetric for identical attribute pairs", func(t *testing.T) {
		a := testCollege("a")
		b := testCollege("b")
		assert.Equal(t, scorer.Score(a, b), scorer.Score(b, a))
	})

	t.Run("should reward two non-jesuit colleges matching", func(t *testing.T) {
		a := models.College{ID: "a", Jesuit: false}
		b := models.College{ID: "b", Jesuit: false}
		assert.Equal(t, 5, scorer.Score(a, b))
	})

	t.Run("should skip factors with missing attributes", func(t *testing.T) {
		target := testCollege("a")
		candidate := models.College{ID: "b", Jesuit: true, State: "MA"}

		assert.Equal(t, jesuitPoints+statePoints, scorer.Score(target, candidate))
	})

	t.Run("should require both sat sub-scores on both sides", func(t *testing.T) {
		target := testCollege("a")
		candidate := testCollege("b")
		candidate.SATReading = nil

		withSAT := scorer.Score(target, testCollege("c"))
		assert.Equal(t, withSAT-5, scorer.Score(target, candidate))
	})

	t.Run("should step proximity points down with distance", func(t *testing.T) {
		target := testCollege("a")

		near := testCollege("b")
		near.Enrollment = intPtr(3600)
		far := testCollege("c")
		far.Enrollment = intPtr(4400)
		out := testCollege("d")
		out.Enrollment = intPtr(9000)

		base := scorer.Score(target, testCollege("e"))
		assert.Equal(t, base, scorer.Score(target, near))
		assert.Equal(t, base-5, scorer.Score(target, far))
		assert.Equal(t, base-10, scorer.Score(target, out))
	})

	t.Run("should cap the program overlap bonus", func(t *testing.T) {
		programs := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}
		a := models.College{ID: "a", Programs: programs}
		b := models.College{ID: "b", Programs: programs}

		// jesuit bools match by default
		assert.Equal(t, jesuitPoints+programOverlapCap, scorer.Score(a, b))
	})

	t.Run("should match program tags case-insensitively without double counting", func(t *testing.T) {
		a := models.College{ID: "a", Jesuit: true, Programs: []string{"Computer Science", "biology"}}
		b := models.College{ID: "b", Jesuit: false, Programs: []string{"computer science", "COMPUTER SCIENCE", "Biology"}}

		assert.Equal(t, 4, scorer.Score(a, b))
	})
}

func TestScorerRank(t *testing.T) {
	scorer := NewScorer()

	t.Run("should order by score descending and annotate", func(t *testing.T) {
		target := testCollege("target")

		twin := testCollege("twin")
		stranger := models.College{ID: "stranger", State: "AK", Jesuit: false}

		ranked := scorer.Rank(target, []models.College{stranger, twin}, 10)
		require.Len(t, ranked, 2)
		assert.Equal(t, "twin", ranked[0].ID)
		assert.Equal(t, "stranger", ranked[1].ID)
		assert.Greater(t, ranked[0].SimilarityScore, ranked[1].SimilarityScore)
	})

	t.Run("should keep fetch order for tied scores", func(t *testing.T) {
		target := testCollege("target")
		first := testCollege("first")
		second := testCollege("second")

		ranked := scorer.Rank(target, []models.College{first, second}, 10)
		require.Len(t, ranked, 2)
		assert.Equal(t, ranked[0].SimilarityScore, ranked[1].SimilarityScore)
		assert.Equal(t, "first", ranked[0].ID)
		assert.Equal(t, "second", ranked[1].ID)
	})

	t.Run("should exclude the target and honor the limit", func(t *testing.T) {
		target := testCollege("target")

		candidates := []models.College{testCollege("a"), target, testCollege("b"), testCollege("c")}
		ranked := scorer.Rank(target, candidates, 2)

		require.Len(t, ranked, 2)
		for _, c := range ranked {
			assert.NotEqual(t, target.ID, c.ID)
		}
	})
}
