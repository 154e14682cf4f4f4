package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// CoasterStats holds the sparse per-coaster attributes. A zero value means
// the attribute is unknown and the coaster cannot be used for questions
// about it.
type CoasterStats struct {
	Height     float64 `json:"height,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
	Inversions float64 `json:"inversions,omitempty"`
	Year       float64 `json:"year,omitempty"`
	Length     float64 `json:"length,omitempty"`
	Park       string  `json:"park,omitempty"`
}

type Coaster struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Park        string       `json:"park"`
	Image       string       `json:"image,omitempty"`
	MainPicture string       `json:"mainPicture,omitempty"`
	Stats       CoasterStats `json:"stats"`
}

// CoasterPublic is the subset of coaster fields shown to players while a
// round is still open. Stats stay hidden until the round ends.
type CoasterPublic struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Park        string `json:"park"`
	Image       string `json:"image,omitempty"`
	MainPicture string `json:"mainPicture,omitempty"`
}

func (c Coaster) public() CoasterPublic {
	return CoasterPublic{
		ID:          c.ID,
		Name:        c.Name,
		Park:        c.Park,
		Image:       c.Image,
		MainPicture: c.MainPicture,
	}
}

type coasterFile struct {
	Coasters []Coaster `json:"coasters"`
}

// loadCoasters reads the dataset once at startup. Any failure here is fatal;
// the server refuses to run without a usable catalog.
func loadCoasters(path string) ([]Coaster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading coaster dataset: %w", err)
	}

	var parsed coasterFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing coaster dataset %s: %w", path, err)
	}

	if len(parsed.Coasters) < 3 {
		return nil, fmt.Errorf("coaster dataset %s holds %d coasters, need at least 3", path, len(parsed.Coasters))
	}

	return parsed.Coasters, nil
}

// drawThree picks three distinct coasters uniformly at random.
func drawThree(rng *rand.Rand, catalog []Coaster) []Coaster {
	shuffled := make([]Coaster, len(catalog))
	copy(shuffled, catalog)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:3]
}
