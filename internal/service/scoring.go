package service

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/dupefinder/internal/domain"
)

// Scores are the match percentages assigned to a candidate dupe
type Scores struct {
	Similarity      int
	IngredientMatch int
	ColorMatch      int
	FinishMatch     int
}

// Scorer rates how closely a candidate matches an original product.
// original may be nil when no original product was identified.
type Scorer interface {
	Score(original, candidate *domain.Product) Scores
}

// RandomScorer assigns placeholder scores: similarity in [70,99] and
// ingredient match in [60,99].
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomScorer(rng *rand.Rand) *RandomScorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomScorer{rng: rng}
}

func (s *RandomScorer) Score(_, _ *domain.Product) Scores {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Scores{
		Similarity:      70 + s.rng.Intn(30),
		IngredientMatch: 60 + s.rng.Intn(40),
	}
}

// OverlapScorer derives scores from the products themselves: ingredient
// Jaccard overlap, color distance and finish equality.
type OverlapScorer struct{}

func NewOverlapScorer() *OverlapScorer {
	return &OverlapScorer{}
}

func (OverlapScorer) Score(original, candidate *domain.Product) Scores {
	if original == nil || candidate == nil {
		return Scores{}
	}
	ingredient := IngredientOverlap(original.Ingredients, candidate.Ingredients)
	color := ColorMatch(original.ColorHex, candidate.ColorHex)
	finish := 0
	if original.Finish != domain.FinishNone && original.Finish == candidate.Finish {
		finish = 100
	}

	weighted, weights := float64(ingredient)*0.6, 0.6
	if original.ColorHex != "" && candidate.ColorHex != "" {
		weighted += float64(color) * 0.25
		weights += 0.25
	}
	if original.Finish != domain.FinishNone && candidate.Finish != domain.FinishNone {
		weighted += float64(finish) * 0.15
		weights += 0.15
	}

	return Scores{
		Similarity:      domain.ClampScore(int(math.Round(weighted / weights))),
		IngredientMatch: ingredient,
		ColorMatch:      color,
		FinishMatch:     finish,
	}
}

// IngredientOverlap is the case-insensitive Jaccard index of two lists, as a percentage
func IngredientOverlap(a, b []string) int {
	setA := ingredientSet(a)
	setB := ingredientSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for k := range setA {
		if _, ok := setB[k]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return domain.ClampScore(int(math.Round(float64(shared) * 100 / float64(union))))
}

func ingredientSet(list []string) map[string]struct{} {
	out := make(map[string]struct{}, len(list))
	for _, item := range list {
		if key := strings.ToLower(strings.TrimSpace(item)); key != "" {
			out[key] = struct{}{}
		}
	}
	return out
}

// maxColorDistance is the euclidean distance between black and white in RGB space
var maxColorDistance = math.Sqrt(3 * 255 * 255)

// ColorMatch maps the RGB distance of two #RRGGBB colors onto 0-100.
// Either color missing or malformed yields 0.
func ColorMatch(a, b string) int {
	ra, ga, ba, okA := parseHex(a)
	rb, gb, bb, okB := parseHex(b)
	if !okA || !okB {
		return 0
	}
	dr, dg, db := float64(ra-rb), float64(ga-gb), float64(ba-bb)
	dist := math.Sqrt(dr*dr + dg*dg + db*db)
	return domain.ClampScore(int(math.Round(100 * (1 - dist/maxColorDistance))))
}

func parseHex(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
