package chimera

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Generator is the remote generation backend. Both calls are slow remote
// operations; the session never blocks on them. It shows a placeholder and
// resolves it from the response callback.
type Generator interface {
	// Generate creates a brand-new animal from a text description.
	Generate(ctx context.Context, description string) (Creation, error)
	// Breed combines two existing animals into offspring. Parent names are
	// passed along so the backend can label the child without a lookup.
	Breed(ctx context.Context, parent1ID, parent2ID, parent1Name, parent2Name string) (Creation, error)
}

// Snapshots is the whole-scene persistence endpoint: load once at startup,
// save the full scene after every committing mutation.
type Snapshots interface {
	Load(ctx context.Context) (SceneSnapshot, error)
	Save(ctx context.Context, snap SceneSnapshot) error
}

// PromptIdeas is the optional prompt-suggestion helper.
type PromptIdeas interface {
	RandomPrompt(ctx context.Context) (string, error)
}

// breedDropOffset is how far below the parents' midpoint offspring appear.
const breedDropOffset = 60.0

// Session wires the store, card lifecycle, interaction machine, and drag
// controller to a generation backend and a snapshot store.
//
// Concurrency model: run to completion. All mutation happens either in a
// UI event call or in a callback posted to the task queue; the view drains
// the queue at the top of each frame via [Session.Update], so no two
// mutations ever interleave. The only suspension points are the remote
// calls, and while one is in flight the user keeps interacting: dragging
// the pending placeholder, starting more generations. There is no request
// timeout and no cancel: a hung request leaves its placeholder.
type Session struct {
	store   *Store
	cards   *Cards
	machine *Machine
	drag    Drag

	gen   Generator
	snaps Snapshots
	ideas PromptIdeas
	log   *zap.Logger

	ctx   context.Context
	tasks chan func()

	status     string
	statusAt   time.Time
	promptIdea string
	hasIdea    bool
}

// NewSession creates a session over the given collaborators. snaps and
// ideas may be nil (no persistence / no suggestion helper); logger may be
// nil for a no-op logger.
func NewSession(gen Generator, snaps Snapshots, ideas PromptIdeas, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		store: NewStore(),
		gen:   gen,
		snaps: snaps,
		ideas: ideas,
		log:   log,
		ctx:   context.Background(),
		tasks: make(chan func(), 128),
	}
	s.cards = NewCards(s.store)
	s.machine = NewMachine(s.canBreed, s.breedPair)
	return s
}

// Store exposes the scene for rendering. Mutate only through the session.
func (s *Session) Store() *Store { return s.store }

// Machine exposes selection state for rendering.
func (s *Session) Machine() *Machine { return s.machine }

// Start hydrates the scene from the snapshot store, once. A failed or
// empty load starts with a blank canvas; load failures are logged, never
// surfaced.
func (s *Session) Start() {
	if s.snaps == nil {
		return
	}
	snap, err := s.snaps.Load(s.ctx)
	if err != nil {
		s.log.Warn("snapshot load failed, starting blank", zap.Error(err))
		return
	}
	if snap.Empty() {
		return
	}
	s.store.Load(snap)
	s.log.Info("scene restored",
		zap.Int("animals", len(snap.Animals)),
		zap.Int("familyLines", len(snap.FamilyLines)))
}

// Update drains pending network-response callbacks. Call once per frame,
// before reading the store for rendering.
func (s *Session) Update() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
		default:
			return
		}
	}
}

// --- User-facing operations ---

// Generate spawns a new generation-1 animal from a free-text description.
// A placeholder appears at (x, y) immediately; the real card replaces it
// when the backend answers. Blank descriptions are ignored.
func (s *Session) Generate(description string, x, y float64) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return
	}
	tempID := s.cards.CreatePlaceholder(desc, x, y, 1)
	go func() {
		res, err := s.gen.Generate(s.ctx, desc)
		s.post(func() { s.resolve(tempID, res, err, 1) })
	}()
}

// Breed combines two selected animals. Anything short of two distinct live
// parents is a silent no-op, not an error.
func (s *Session) Breed(parent1ID, parent2ID string) {
	if !s.canBreed(parent1ID, parent2ID) {
		return
	}
	s.breedPair(parent1ID, parent2ID)
}

// Rename commits a new name for an animal. Empty after trimming keeps the
// previous name.
func (s *Session) Rename(id, name string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	if s.store.SetName(id, trimmed) {
		s.save()
	}
}

// ClickCard forwards a card-body click to the interaction machine.
func (s *Session) ClickCard(id string) { s.machine.ClickCard(id) }

// ToggleLink forwards a link-control click to the interaction machine.
func (s *Session) ToggleLink(id string) { s.machine.ToggleLink(id) }

// ClickCanvas forwards an empty-canvas click: deselect all, disarm link.
func (s *Session) ClickCanvas() { s.machine.ClickCanvas() }

// StartDrag grabs a card under the pointer. Selection is untouched.
func (s *Session) StartDrag(id string, px, py float64) {
	a, ok := s.store.Find(id)
	if !ok {
		return
	}
	s.drag.Start(id, px, py, a.X, a.Y)
	s.store.RaiseToTop(id)
}

// DragMove repositions the grabbed card to follow the pointer.
func (s *Session) DragMove(px, py float64) {
	if !s.drag.Active() {
		return
	}
	x, y := s.drag.MoveTo(px, py)
	s.store.SetPosition(s.drag.ID(), x, y)
}

// EndDrag releases the grab and commits the final position.
func (s *Session) EndDrag() {
	if id := s.drag.End(); id != "" {
		s.save()
	}
}

// Dragging returns the id of the card being dragged, or "".
func (s *Session) Dragging() string { return s.drag.ID() }

// RequestPromptIdea asks the suggestion helper for a creature description;
// the result is picked up later via TakePromptIdea.
func (s *Session) RequestPromptIdea() {
	if s.ideas == nil {
		return
	}
	go func() {
		idea, err := s.ideas.RandomPrompt(s.ctx)
		s.post(func() {
			if err != nil {
				s.setStatus("no prompt idea: " + err.Error())
				s.log.Warn("random prompt failed", zap.Error(err))
				return
			}
			s.promptIdea = idea
			s.hasIdea = true
		})
	}()
}

// TakePromptIdea returns a fetched suggestion once, if one arrived.
func (s *Session) TakePromptIdea() (string, bool) {
	if !s.hasIdea {
		return "", false
	}
	s.hasIdea = false
	return s.promptIdea, true
}

// Status returns the latest user-facing message and when it was set.
func (s *Session) Status() (string, time.Time) {
	return s.status, s.statusAt
}

// --- Internals ---

// canBreed accepts a pair of distinct live animals. Unresolved
// placeholders cannot breed, which also means re-clicking a pending pair
// does not queue a duplicate request. Two in-flight breeds of the same
// *real* pair are deliberately allowed and produce independent offspring.
func (s *Session) canBreed(a, b string) bool {
	if a == b {
		return false
	}
	p1, ok1 := s.store.Find(a)
	p2, ok2 := s.store.Find(b)
	return ok1 && ok2 && !p1.Placeholder && !p2.Placeholder
}

// breedPair creates the speculative placeholder and family line, then
// fires the remote breed call. Callers have already validated the pair.
func (s *Session) breedPair(a, b string) {
	p1, _ := s.store.Find(a)
	p2, _ := s.store.Find(b)
	gen := ChildGeneration(p1.Generation, p2.Generation)
	x := (p1.X + p2.X) / 2
	y := (p1.Y+p2.Y)/2 + breedDropOffset

	tempID := s.cards.CreatePlaceholder(p1.Name+" × "+p2.Name, x, y, gen)
	s.store.AddLine(FamilyLine{Parent1: a, Parent2: b, Child: tempID})

	go func() {
		res, err := s.gen.Breed(s.ctx, a, b, p1.Name, p2.Name)
		s.post(func() { s.resolve(tempID, res, err, gen) })
	}()
}

// resolve applies a generation response to its placeholder. Runs on the
// task queue, so it reads the placeholder's position as of now: any drag
// applied while the request was in flight has already landed in the store.
func (s *Session) resolve(tempID string, res Creation, err error, generation int) {
	if err != nil {
		s.cards.ResolveFailure(tempID)
		s.machine.Forget(tempID)
		s.setStatus("generation failed: " + err.Error())
		s.log.Warn("generation failed", zap.String("tempID", tempID), zap.Error(err))
		return
	}
	if _, ok := s.cards.ResolveSuccess(tempID, res, generation); !ok {
		// Placeholder vanished, nothing to promote. Cannot happen without
		// an explicit cancel path, but a stale response must not mutate.
		s.log.Warn("response for unknown placeholder", zap.String("tempID", tempID))
		return
	}
	s.save()
}

// save pushes the committed scene to the snapshot store, fire and forget.
// Failures are logged and never block or roll back local state.
func (s *Session) save() {
	if s.snaps == nil {
		return
	}
	snap := s.store.Snapshot()
	go func() {
		if err := s.snaps.Save(s.ctx, snap); err != nil {
			s.log.Warn("snapshot save failed", zap.Error(err))
		}
	}()
}

// post queues fn for the next Update drain.
func (s *Session) post(fn func()) {
	s.tasks <- fn
}

func (s *Session) setStatus(msg string) {
	s.status = msg
	s.statusAt = time.Now()
}
