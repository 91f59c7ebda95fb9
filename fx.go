package chimera

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// cardFX animates a single card's presentation: a pop-in scale when the
// card first appears, and a looping alpha pulse while it is a placeholder.
// There is no global animation manager; the view updates each fx per frame.
type cardFX struct {
	pop   *gween.Tween
	pulse *gween.Sequence

	scale float64 // applied around the card center
	glow  float64 // fill alpha for placeholder pulsing
}

func newCardFX(placeholder bool) *cardFX {
	fx := &cardFX{scale: 0.85, glow: 1}
	fx.pop = gween.New(0.85, 1, 0.25, ease.OutBack)
	if placeholder {
		seq := gween.NewSequence(
			gween.New(1, 0.45, 0.6, ease.InOutQuad),
			gween.New(0.45, 1, 0.6, ease.InOutQuad),
		)
		seq.SetLoop(-1)
		fx.pulse = seq
	}
	return fx
}

// update advances the tweens by dt seconds.
func (f *cardFX) update(dt float32) {
	if f.pop != nil {
		v, done := f.pop.Update(dt)
		f.scale = float64(v)
		if done {
			f.pop = nil
			f.scale = 1
		}
	}
	if f.pulse != nil {
		v, _, _ := f.pulse.Update(dt)
		f.glow = float64(v)
	}
}
