package main

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// progressionRounds returns how many rounds it takes for the tolerance
// window to shrink to its minimum. Zero means fully shrunk from round one.
func (d Difficulty) progressionRounds() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyHard:
		return 0
	default:
		return 5
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// criterionType describes one kind of question. Range questions reveal a
// target value and ask which coaster matches it; landmark questions ask for
// the superlative holder.
type criterionType struct {
	name           string
	key            string
	landmark       bool
	value          func(CoasterStats) float64
	metricFormat   func(float64) string
	imperialFormat func(float64) string

	// Tolerance window as a fraction of the value spread: base - slope*d,
	// where d is the difficulty progression in [0, 1].
	toleranceBase  float64
	toleranceSlope float64
}

func metersFormat(v float64) string { return trimFloat(v) + "m" }
func feetFormat(v float64) string   { return fmt.Sprintf("%.0fft", v*3.28084) }
func kmhFormat(v float64) string    { return trimFloat(v) + " km/h" }
func mphFormat(v float64) string    { return fmt.Sprintf("%.0f mph", v*0.621371) }
func plainFormat(v float64) string  { return trimFloat(v) }

func heightStat(s CoasterStats) float64     { return s.Height }
func speedStat(s CoasterStats) float64      { return s.Speed }
func inversionsStat(s CoasterStats) float64 { return s.Inversions }
func yearStat(s CoasterStats) float64       { return s.Year }
func lengthStat(s CoasterStats) float64     { return s.Length }

// The full question pool. The non-numeric park attribute is absent: with a
// full-range tolerance every candidate always matches, so it can never
// isolate a unique answer.
var criterionTypes = []criterionType{
	{name: "Height", key: "height", value: heightStat, metricFormat: metersFormat, imperialFormat: feetFormat, toleranceBase: 0.4, toleranceSlope: 0.35},
	{name: "Speed", key: "speed", value: speedStat, metricFormat: kmhFormat, imperialFormat: mphFormat, toleranceBase: 0.45, toleranceSlope: 0.40},
	{name: "Inversions", key: "inversions", value: inversionsStat, metricFormat: plainFormat, imperialFormat: plainFormat, toleranceBase: 0.3, toleranceSlope: 0.25},
	{name: "Year Opened", key: "year", value: yearStat, metricFormat: plainFormat, imperialFormat: plainFormat, toleranceBase: 0.3, toleranceSlope: 0.25},
	{name: "Track Length", key: "length", value: lengthStat, metricFormat: metersFormat, imperialFormat: feetFormat, toleranceBase: 0.5, toleranceSlope: 0.45},
	{name: "Tallest Coaster", key: "height", landmark: true, value: heightStat, metricFormat: metersFormat, imperialFormat: feetFormat},
	{name: "Fastest Coaster", key: "speed", landmark: true, value: speedStat, metricFormat: kmhFormat, imperialFormat: mphFormat},
	{name: "Most Inversions", key: "inversions", landmark: true, value: inversionsStat, metricFormat: plainFormat, imperialFormat: plainFormat},
	{name: "Longest Coaster", key: "length", landmark: true, value: lengthStat, metricFormat: metersFormat, imperialFormat: feetFormat},
}

// Criterion is a selected question: the attribute, the revealed value, and
// which candidate is the unique correct answer.
type Criterion struct {
	Name             string
	Key              string
	Value            float64
	CorrectCoasterID int
	Landmark         bool

	metricFormat   func(float64) string
	imperialFormat func(float64) string
}

func (c Criterion) display(imperial bool) string {
	if imperial {
		return c.imperialFormat(c.Value)
	}
	return c.metricFormat(c.Value)
}

// isLandmarkRound reports whether the round must draw from the landmark
// (superlative) pool. Every fourth round is one.
func isLandmarkRound(roundNumber int) bool {
	return roundNumber > 0 && roundNumber%4 == 0
}

const rangeAttempts = 50

// selectCriterion searches for a question over the three candidates that has
// exactly one correct answer. It returns false when no attribute can
// discriminate the triple; the caller retries with fresh candidates.
func selectCriterion(rng *rand.Rand, coasters []Coaster, roundNumber int, difficulty Difficulty) (Criterion, bool) {
	landmark := isLandmarkRound(roundNumber)

	pool := make([]criterionType, 0, len(criterionTypes))
	for _, ct := range criterionTypes {
		if ct.landmark == landmark {
			pool = append(pool, ct)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	progression := 1.0
	if pr := difficulty.progressionRounds(); pr > 0 {
		progression = math.Min(float64(roundNumber)/float64(pr), 1)
	}

	for _, ct := range pool {
		usable := true
		for _, c := range coasters {
			if ct.value(c.Stats) == 0 {
				usable = false
				break
			}
		}
		if !usable {
			continue
		}

		if landmark {
			// First-encountered maximum wins; ties resolve to the earliest
			// candidate, which keeps the question answerable either way.
			target := coasters[0]
			for _, c := range coasters[1:] {
				if ct.value(c.Stats) > ct.value(target.Stats) {
					target = c
				}
			}
			return Criterion{
				Name:             ct.name,
				Key:              ct.key,
				Value:            ct.value(target.Stats),
				CorrectCoasterID: target.ID,
				Landmark:         true,
				metricFormat:     ct.metricFormat,
				imperialFormat:   ct.imperialFormat,
			}, true
		}

		minVal, maxVal := ct.value(coasters[0].Stats), ct.value(coasters[0].Stats)
		for _, c := range coasters[1:] {
			v := ct.value(c.Stats)
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
		tolerance := (maxVal - minVal) * (ct.toleranceBase - progression*ct.toleranceSlope)

		for attempt := 0; attempt < rangeAttempts; attempt++ {
			target := coasters[rng.Intn(len(coasters))]
			targetValue := ct.value(target.Stats)

			within := 0
			for _, c := range coasters {
				if math.Abs(ct.value(c.Stats)-targetValue) <= tolerance {
					within++
				}
			}

			if within == 1 {
				return Criterion{
					Name:             ct.name,
					Key:              ct.key,
					Value:            targetValue,
					CorrectCoasterID: target.ID,
					metricFormat:     ct.metricFormat,
					imperialFormat:   ct.imperialFormat,
				}, true
			}
		}
	}

	return Criterion{}, false
}
