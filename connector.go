package chimera

// Segment is one connector line in canvas coordinates.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Connectors derives the connector segments for the given scene: for every
// family line whose three ids all resolve to live animals, two segments
// run from each parent's card center to the child's card center.
//
// Lines with any unresolved id are silently skipped. That is a transient
// state (a placeholder mid-promotion), never an error and never rendered
// dangling. Pure function; cardW/cardH give the card footprint used to
// find centers.
func Connectors(animals []Animal, lines []FamilyLine, cardW, cardH float64) []Segment {
	if len(lines) == 0 {
		return nil
	}
	centers := make(map[string][2]float64, len(animals))
	for _, a := range animals {
		centers[a.ID] = [2]float64{a.X + cardW/2, a.Y + cardH/2}
	}
	segs := make([]Segment, 0, len(lines)*2)
	for _, l := range lines {
		p1, ok1 := centers[l.Parent1]
		p2, ok2 := centers[l.Parent2]
		ch, ok3 := centers[l.Child]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		segs = append(segs,
			Segment{p1[0], p1[1], ch[0], ch[1]},
			Segment{p2[0], p2[1], ch[0], ch[1]},
		)
	}
	return segs
}
