package sim

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
)

// Target resolves the world-space box the grown mesh should fill.
type Target interface {
	Bounds() (sdf.Box3, error)
}

// BoxTarget wraps a literal axis-aligned box.
func BoxTarget(box sdf.Box3) Target {
	return boxTarget{box: box}
}

type boxTarget struct {
	box sdf.Box3
}

func (t boxTarget) Bounds() (sdf.Box3, error) {
	if err := checkBox(t.box); err != nil {
		return sdf.Box3{}, err
	}
	return t.box, nil
}

// SolidTarget derives the box from an SDF solid's bounding box, the
// closest standalone analogue of "the selected mesh object".
func SolidTarget(s sdf.SDF3) Target {
	return solidTarget{s: s}
}

type solidTarget struct {
	s sdf.SDF3
}

func (t solidTarget) Bounds() (sdf.Box3, error) {
	if t.s == nil {
		return sdf.Box3{}, fmt.Errorf("no solid supplied")
	}
	box := t.s.BoundingBox()
	if err := checkBox(box); err != nil {
		return sdf.Box3{}, err
	}
	return box, nil
}

// checkBox rejects boxes without positive extent on every axis; a flat
// box would collapse the grown mesh.
func checkBox(box sdf.Box3) error {
	size := box.Size()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return fmt.Errorf("degenerate bounding box %v", box)
	}
	return nil
}
