package chimera

import (
	"strings"

	"github.com/google/uuid"
)

// Animal is a single creature card on the canvas. (X, Y) is the top-left
// corner in canvas coordinates, the same space pointer events arrive in.
type Animal struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ImageRef   string  `json:"imageUrl"`
	Generation int     `json:"generation"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`

	// Placeholder marks a provisional card whose backing remote request is
	// still in flight. Placeholders are never persisted.
	Placeholder bool `json:"-"`
}

// FamilyLine records one breeding: two parents producing one child.
// The connector engine renders it as two segments, one per parent.
type FamilyLine struct {
	Parent1 string `json:"parent1Id"`
	Parent2 string `json:"parent2Id"`
	Child   string `json:"childId"`
}

// Touches reports whether the line references the given animal id.
func (l FamilyLine) Touches(id string) bool {
	return l.Parent1 == id || l.Parent2 == id || l.Child == id
}

// SceneSnapshot is the whole-scene unit of persistence. It is saved and
// restored verbatim; there are no partial or delta updates.
type SceneSnapshot struct {
	Animals     []Animal     `json:"animals"`
	FamilyLines []FamilyLine `json:"familyLines"`
}

// Empty reports whether the snapshot holds no animals and no lines.
func (s SceneSnapshot) Empty() bool {
	return len(s.Animals) == 0 && len(s.FamilyLines) == 0
}

// tempIDPrefix namespaces locally-generated placeholder ids so they can
// never collide with backend-issued ids.
const tempIDPrefix = "pending-"

// NewTempID returns a fresh placeholder id.
func NewTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was produced by NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// ChildGeneration returns the generation of an offspring of the two given
// parent generations: max of the two, plus one.
func ChildGeneration(a, b int) int {
	if b > a {
		a = b
	}
	return a + 1
}
