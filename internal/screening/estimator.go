package screening

import (
	"math"
	"math/rand/v2"
	"time"
)

// Fractions are kept in whole percentage points until the very end.
const (
	basePoints          = 30
	manyKeywordsPenalty = 10
	educationBonus      = 10
	excludedTermPenalty = 5
	minPoints           = 10
	maxPoints           = 60

	manyKeywords       = 5
	tooManyKeywords    = 8
	manyEducationTerms = 2

	volumeMin  = 10
	volumeSpan = 25
)

// floorEpsilon absorbs float representation error before flooring products
// such as 10 * 0.3.
const floorEpsilon = 1e-9

// RandomSource yields uniform integers in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewRandom returns a random source. A zero seed picks a time based one.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ApprovalFraction derives the share of processed résumés that get approved.
// Only the number of keywords, education terms and excluded terms matter.
func ApprovalFraction(c *Criteria) float64 {
	return float64(approvalPoints(len(c.Keywords), len(c.EducationTerms), len(c.ExcludedTerms))) / 100
}

func approvalPoints(keywords, education, excluded int) int {
	points := basePoints
	if keywords > manyKeywords {
		points -= manyKeywordsPenalty
	}
	if keywords > tooManyKeywords {
		points -= manyKeywordsPenalty
	}
	if education > manyEducationTerms {
		points += educationBonus
	}
	points -= excludedTermPenalty * excluded

	return min(max(points, minPoints), maxPoints)
}

// EstimateVolume draws the number of emails with attachments, uniform in 10..34
// and never above the configured maximum.
func EstimateVolume(c *Criteria, rnd RandomSource) int {
	return min(c.MaxEmails, volumeMin+rnd.IntN(volumeSpan))
}

// VolumeRange returns the smallest and largest value EstimateVolume can draw.
func VolumeRange(c *Criteria) (low, high int) {
	return min(c.MaxEmails, volumeMin), min(c.MaxEmails, volumeMin+volumeSpan-1)
}

// ApprovedCount is floor(total*fraction + 1e-9), clamped to [0, total].
// The epsilon keeps products like 10*0.3 from flooring one below the exact
// value; products within 1e-9 below an integer round up to it.
func ApprovedCount(total int, fraction float64) int {
	if total <= 0 {
		return 0
	}
	approved := int(math.Floor(float64(total)*fraction + floorEpsilon))
	return min(max(approved, 0), total)
}

// Percentage returns approved/total*100 rounded to one decimal, or 0 for an empty run.
func Percentage(approved, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(approved) / float64(total) * 100)
}

// Run produces a simulated screening result for the criteria.
func Run(c *Criteria, rnd RandomSource) *Result {
	total := EstimateVolume(c, rnd)
	approved := ApprovedCount(total, ApprovalFraction(c))

	return &Result{
		TotalProcessed:     total,
		TotalApproved:      approved,
		ApprovalPercentage: Percentage(approved, total),
		ApprovedRecords:    Records(approved, c.EducationTerms),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
