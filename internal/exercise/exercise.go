// Package exercise provides exercise definitions and repetition counting
// for the healthy-world pose tracking backend.
package exercise

import (
	"fmt"

	"github.com/Abhijeet1520/healthy-world/internal/detector"
)

// Definition describes a trackable exercise: which joint triple to monitor
// and the angle thresholds that bound one repetition.
type Definition struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Joints      [3]int  `json:"joints"`     // proximal, vertex, distal landmark indices
	StartAngle  float64 `json:"startAngle"` // degrees; limb fully extended
	EndAngle    float64 `json:"endAngle"`   // degrees; limb fully contracted
}

// Validate checks that the definition is internally consistent.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("exercise has no id")
	}
	if d.StartAngle <= d.EndAngle {
		return fmt.Errorf("exercise %s: start angle %.0f must exceed end angle %.0f",
			d.ID, d.StartAngle, d.EndAngle)
	}
	seen := map[int]bool{}
	for _, j := range d.Joints {
		if j < 0 || j >= detector.NumLandmarks {
			return fmt.Errorf("exercise %s: joint index %d out of range", d.ID, j)
		}
		if seen[j] {
			return fmt.Errorf("exercise %s: duplicate joint index %d", d.ID, j)
		}
		seen[j] = true
	}
	return nil
}

// Catalog is a fixed, read-only registry of exercise definitions.
type Catalog struct {
	defs []Definition
}

// NewCatalog returns the built-in exercise catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: builtins}
}

// Lookup returns the definition for the given id. The boolean reports
// whether the id was found; callers decide between falling back to
// Default and surfacing an error.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	for _, d := range c.defs {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Default returns the first catalog entry.
func (c *Catalog) Default() Definition {
	return c.defs[0]
}

// List returns all definitions in catalog order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

var builtins = []Definition{
	{
		ID:          "bicep-curl",
		Name:        "Bicep Curl",
		Description: "Curl the forearm toward the shoulder, tracked at the left elbow.",
		Joints:      [3]int{detector.LeftShoulder, detector.LeftElbow, detector.LeftWrist},
		StartAngle:  160,
		EndAngle:    60,
	},
	{
		ID:          "squat",
		Name:        "Squat",
		Description: "Lower the hips until the knee is fully bent, tracked at the left knee.",
		Joints:      [3]int{detector.LeftHip, detector.LeftKnee, detector.LeftAnkle},
		StartAngle:  160,
		EndAngle:    70,
	},
	{
		ID:          "push-up",
		Name:        "Push-Up",
		Description: "Lower the chest to the floor and press back up, tracked at the left elbow.",
		Joints:      [3]int{detector.LeftShoulder, detector.LeftElbow, detector.LeftWrist},
		StartAngle:  160,
		EndAngle:    75,
	},
}
