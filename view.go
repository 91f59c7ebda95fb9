package chimera

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Card footprint in canvas coordinates. The connector engine uses the same
// numbers so line endpoints always land on card centers.
const (
	CardW = 140.0
	CardH = 172.0

	cardNameH  = 22.0
	cardButton = 18.0
	cardMargin = 6.0

	dragDeadZone = 4.0 // pixels of movement before a press becomes a drag
	promptBarH   = 26.0
	statusTTL    = 5 * time.Second
)

// cardRegion identifies which part of a card a pointer event landed on.
// Clicks on the embedded controls never select or start a drag.
type cardRegion uint8

const (
	regionBody cardRegion = iota
	regionName
	regionLink
	regionZoom
)

func cardRect(a Animal) Rect { return Rect{a.X, a.Y, CardW, CardH} }
func nameRect(a Animal) Rect { return Rect{a.X, a.Y, CardW - 2*cardButton - 12, cardNameH} }
func linkRect(a Animal) Rect {
	return Rect{a.X + CardW - cardButton - 4, a.Y + 3, cardButton, cardButton}
}
func zoomRect(a Animal) Rect {
	return Rect{a.X + CardW - 2*cardButton - 8, a.Y + 3, cardButton, cardButton}
}

// View is the Ebitengine shell: it renders the session's store each frame
// and translates pointer and keyboard input into session operations. All
// interaction state that is not the core's concern (pressed pointer, text
// buffers, zoom overlay) lives here.
type View struct {
	session *Session
	images  *imageCache
	fx      map[string]*cardFX
	w, h    int

	// Pointer state, single mouse pointer, left button only.
	down           bool
	startX, startY float64
	pressID        string
	pressRegion    cardRegion
	pressOnCard    bool
	pressConsumed  bool
	dragging       bool

	promptBuf []rune
	renameID  string
	renameBuf []rune
	zoomID    string

	injectQueue []syntheticPointerEvent
	showFPS     bool

	rng *rand.Rand
}

// NewView creates the canvas view. imageBase is the backend base URL used
// to resolve relative image references.
func NewView(session *Session, imageBase string, w, h int) *View {
	return &View{
		session: session,
		images:  newImageCache(imageBase),
		fx:      make(map[string]*cardFX),
		w:       w,
		h:       h,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Layout implements ebiten.Game.
func (v *View) Layout(outsideW, outsideH int) (int, int) {
	v.w, v.h = outsideW, outsideH
	return outsideW, outsideH
}

// Update implements ebiten.Game: drain network callbacks, then process
// this frame's input. Run to completion: everything here happens on the
// game loop goroutine.
func (v *View) Update() error {
	v.session.Update()

	if idea, ok := v.session.TakePromptIdea(); ok {
		v.promptBuf = []rune(idea)
	}

	v.handleKeyboard()
	v.handlePointer()
	v.updateFX()
	return nil
}

// --- Input ---

func (v *View) handleKeyboard() {
	chars := ebiten.AppendInputChars(nil)

	if v.renameID != "" {
		v.renameBuf = append(v.renameBuf, chars...)
		if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(v.renameBuf) > 0 {
			v.renameBuf = v.renameBuf[:len(v.renameBuf)-1]
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
			// Empty-after-trim keeps the previous name; the session guards.
			v.session.Rename(v.renameID, string(v.renameBuf))
			v.stopRename()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			v.stopRename()
		}
		return
	}

	v.promptBuf = append(v.promptBuf, chars...)
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(v.promptBuf) > 0 {
		v.promptBuf = v.promptBuf[:len(v.promptBuf)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		x, y := v.spawnPos()
		v.session.Generate(string(v.promptBuf), x, y)
		v.promptBuf = v.promptBuf[:0]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		v.session.RequestPromptIdea()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		v.showFPS = !v.showFPS
	}
}

// handlePointer feeds one pointer sample per frame into the press/click/
// drag protocol. Injected synthetic events take priority over the mouse.
func (v *View) handlePointer() {
	if v.processInjected() {
		return
	}
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	v.processPointer(float64(mx), float64(my), pressed)
}

// processPointer runs the protocol: press records the hit card, movement
// beyond the dead zone becomes a drag, and press+release without a drag is
// a click dispatched by region.
func (v *View) processPointer(px, py float64, pressed bool) {
	switch {
	case pressed && !v.down:
		v.down = true
		v.dragging = false
		v.startX, v.startY = px, py

		v.pressConsumed = false
		if v.zoomID != "" {
			// The zoom overlay is modal; any press dismisses it.
			v.zoomID = ""
			v.pressOnCard = false
			v.pressID = ""
			v.pressConsumed = true
			return
		}
		v.pressID, v.pressRegion, v.pressOnCard = v.hitTest(px, py)
		if v.renameID != "" && (v.pressID != v.renameID || v.pressRegion != regionName) {
			// Clicking away from the active rename field cancels the edit.
			v.stopRename()
		}

	case pressed && v.down:
		if v.pressOnCard && v.pressRegion == regionBody && !v.dragging {
			dx, dy := px-v.startX, py-v.startY
			if math.Sqrt(dx*dx+dy*dy) > dragDeadZone {
				v.dragging = true
				v.session.StartDrag(v.pressID, v.startX, v.startY)
			}
		}
		if v.dragging {
			v.session.DragMove(px, py)
		}

	case !pressed && v.down:
		v.down = false
		if v.pressConsumed {
			return
		}
		if v.dragging {
			v.dragging = false
			v.session.EndDrag()
			return
		}
		if v.pressID == "" && !v.pressOnCard {
			if v.promptBarRect().Contains(px, py) {
				return
			}
			if v.diceRect().Contains(px, py) {
				v.session.RequestPromptIdea()
				return
			}
			v.session.ClickCanvas()
			return
		}
		// Click: dispatch only if the release is still over the same card.
		id, region, ok := v.hitTest(px, py)
		if !ok || id != v.pressID || region != v.pressRegion {
			return
		}
		switch region {
		case regionBody:
			v.session.ClickCard(id)
		case regionLink:
			v.session.ToggleLink(id)
		case regionZoom:
			v.zoomID = id
		case regionName:
			v.startRename(id)
		}
	}
}

// hitTest finds the topmost card at (x, y) and the region hit.
func (v *View) hitTest(x, y float64) (string, cardRegion, bool) {
	animals := v.session.Store().All()
	for i := len(animals) - 1; i >= 0; i-- {
		a := animals[i]
		if !cardRect(a).Contains(x, y) {
			continue
		}
		switch {
		case linkRect(a).Contains(x, y):
			return a.ID, regionLink, true
		case zoomRect(a).Contains(x, y):
			return a.ID, regionZoom, true
		case nameRect(a).Contains(x, y):
			return a.ID, regionName, true
		default:
			return a.ID, regionBody, true
		}
	}
	return "", regionBody, false
}

func (v *View) startRename(id string) {
	a, ok := v.session.Store().Find(id)
	if !ok || a.Placeholder {
		return
	}
	v.renameID = id
	v.renameBuf = []rune(a.Name)
}

func (v *View) stopRename() {
	v.renameID = ""
	v.renameBuf = nil
}

// spawnPos picks a jittered canvas position for a freshly generated card,
// keeping it clear of the edges and the prompt bar.
func (v *View) spawnPos() (float64, float64) {
	maxX := float64(v.w) - CardW - 80
	maxY := float64(v.h) - CardH - 80 - promptBarH
	if maxX < 40 {
		maxX = 40
	}
	if maxY < 40 {
		maxY = 40
	}
	return 40 + v.rng.Float64()*maxX, 40 + v.rng.Float64()*maxY
}

func (v *View) promptBarRect() Rect {
	return Rect{10, float64(v.h) - promptBarH - 8, float64(v.w) - 56, promptBarH}
}

func (v *View) diceRect() Rect {
	return Rect{float64(v.w) - 40, float64(v.h) - promptBarH - 8, 30, promptBarH}
}

// --- Animation bookkeeping ---

func (v *View) updateFX() {
	dt := float32(1.0 / float64(ebiten.TPS()))
	seen := make(map[string]struct{})
	for _, a := range v.session.Store().All() {
		seen[a.ID] = struct{}{}
		fx, ok := v.fx[a.ID]
		if !ok {
			fx = newCardFX(a.Placeholder)
			v.fx[a.ID] = fx
		}
		fx.update(dt)
	}
	for id := range v.fx {
		if _, ok := seen[id]; !ok {
			delete(v.fx, id)
		}
	}
}

// --- Drawing ---

var (
	colCanvas      = color.RGBA{0x23, 0x1e, 0x2d, 0xff}
	colCard        = color.RGBA{0x3a, 0x33, 0x4a, 0xff}
	colCardPending = color.RGBA{0x2e, 0x29, 0x3c, 0xff}
	colImageWell   = color.RGBA{0x1c, 0x18, 0x26, 0xff}
	colBorder      = color.RGBA{0x5c, 0x52, 0x72, 0xff}
	colSelected    = color.RGBA{0xf2, 0xc1, 0x4e, 0xff}
	colLinkArmed   = color.RGBA{0x4e, 0xc9, 0xf2, 0xff}
	colLine        = color.RGBA{0x8a, 0x7f, 0xa8, 0xff}
	colBar         = color.RGBA{0x14, 0x11, 0x1c, 0xff}
	colDim         = color.RGBA{0x00, 0x00, 0x00, 0xb0}
)

// Draw implements ebiten.Game. Connectors render under cards so the lines
// appear to attach behind them; both read the same store snapshot, so a
// drag this frame moves card and lines together.
func (v *View) Draw(screen *ebiten.Image) {
	screen.Fill(colCanvas)

	animals := v.session.Store().All()
	lines := v.session.Store().Lines()

	for _, seg := range Connectors(animals, lines, CardW, CardH) {
		vector.StrokeLine(screen,
			float32(seg.X1), float32(seg.Y1), float32(seg.X2), float32(seg.Y2),
			2, colLine, true)
	}

	for _, a := range animals {
		v.drawCard(screen, a)
	}

	v.drawPromptBar(screen)
	v.drawStatus(screen)
	if v.showFPS {
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()),
			v.w-150, 10)
	}
	if v.zoomID != "" {
		v.drawZoom(screen)
	}
}

func (v *View) drawCard(screen *ebiten.Image, a Animal) {
	r := cardRect(a)
	scale := 1.0
	glow := 1.0
	if fx, ok := v.fx[a.ID]; ok {
		scale, glow = fx.scale, fx.glow
	}
	if scale != 1 {
		cx, cy := r.Center()
		r = Rect{cx - CardW*scale/2, cy - CardH*scale/2, CardW * scale, CardH * scale}
	}

	fill := colCard
	if a.Placeholder {
		fill = colCardPending
		fill.A = uint8(255 * glow)
	}
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), fill, true)

	border := colBorder
	width := float32(1.5)
	switch {
	case v.session.Machine().LinkArmed() == a.ID:
		border, width = colLinkArmed, 3
	case v.session.Machine().IsSelected(a.ID):
		border, width = colSelected, 3
	}
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), width, border, true)

	// Image well.
	well := Rect{r.X + cardMargin, r.Y + cardNameH + 4, r.Width - 2*cardMargin, r.Width - 2*cardMargin}
	vector.DrawFilledRect(screen, float32(well.X), float32(well.Y), float32(well.Width), float32(well.Height), colImageWell, true)
	if img := v.images.Get(a.ImageRef); img != nil {
		op := &ebiten.DrawImageOptions{}
		iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
		s := well.Width / float64(iw)
		if sy := well.Height / float64(ih); sy < s {
			s = sy
		}
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(well.X+(well.Width-float64(iw)*s)/2, well.Y+(well.Height-float64(ih)*s)/2)
		screen.DrawImage(img, op)
	}

	// Name (or the active rename buffer with a caret).
	name := a.Name
	if v.renameID == a.ID {
		name = string(v.renameBuf) + "_"
	}
	if a.Placeholder {
		name = "conjuring " + name + "…"
	}
	ebitenutil.DebugPrintAt(screen, clip(name, 18), int(r.X)+5, int(r.Y)+4)

	// Controls and generation badge.
	lr, zr := linkRect(a), zoomRect(a)
	vector.StrokeRect(screen, float32(lr.X), float32(lr.Y), float32(lr.Width), float32(lr.Height), 1, colBorder, true)
	vector.StrokeRect(screen, float32(zr.X), float32(zr.Y), float32(zr.Width), float32(zr.Height), 1, colBorder, true)
	ebitenutil.DebugPrintAt(screen, "&", int(lr.X)+5, int(lr.Y)+1)
	ebitenutil.DebugPrintAt(screen, "+", int(zr.X)+5, int(zr.Y)+1)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("G%d", a.Generation), int(r.X)+5, int(r.Y+r.Height)-18)
}

func (v *View) drawPromptBar(screen *ebiten.Image) {
	bar := v.promptBarRect()
	vector.DrawFilledRect(screen, float32(bar.X), float32(bar.Y), float32(bar.Width), float32(bar.Height), colBar, true)
	vector.StrokeRect(screen, float32(bar.X), float32(bar.Y), float32(bar.Width), float32(bar.Height), 1, colBorder, true)

	text := string(v.promptBuf)
	if v.renameID == "" {
		text += "_"
	}
	if len(v.promptBuf) == 0 && v.renameID == "" {
		text = "describe a creature, Enter to conjure (Tab for an idea)_"
	}
	ebitenutil.DebugPrintAt(screen, text, int(bar.X)+6, int(bar.Y)+5)

	dice := v.diceRect()
	vector.StrokeRect(screen, float32(dice.X), float32(dice.Y), float32(dice.Width), float32(dice.Height), 1, colBorder, true)
	ebitenutil.DebugPrintAt(screen, "?", int(dice.X)+11, int(dice.Y)+5)
}

func (v *View) drawStatus(screen *ebiten.Image) {
	msg, at := v.session.Status()
	if msg == "" || time.Since(at) > statusTTL {
		return
	}
	ebitenutil.DebugPrintAt(screen, msg, 10, 10)
}

func (v *View) drawZoom(screen *ebiten.Image) {
	a, ok := v.session.Store().Find(v.zoomID)
	if !ok {
		v.zoomID = ""
		return
	}
	vector.DrawFilledRect(screen, 0, 0, float32(v.w), float32(v.h), colDim, false)

	size := float64(v.h) * 0.7
	x := (float64(v.w) - size) / 2
	y := (float64(v.h) - size) / 2
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(size), float32(size), colImageWell, true)
	if img := v.images.Get(a.ImageRef); img != nil {
		op := &ebiten.DrawImageOptions{}
		iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
		s := size / float64(iw)
		if sy := size / float64(ih); sy < s {
			s = sy
		}
		op.GeoM.Scale(s, s)
		op.GeoM.Translate(x+(size-float64(iw)*s)/2, y+(size-float64(ih)*s)/2)
		screen.DrawImage(img, op)
	}
	label := fmt.Sprintf("%s  (generation %d)", a.Name, a.Generation)
	ebitenutil.DebugPrintAt(screen, label, int(x)+4, int(y+size)+6)
}

// clip shortens s to at most n runes for the narrow card header.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
