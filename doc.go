// Package chimera is the client-side engine of a creature-breeding canvas.
//
// Animals live as cards on a free-form 2D canvas. The user spawns new
// animals from a text prompt, drags cards around, renames them, and breeds
// two animals into offspring. Breeding is recorded as a genealogy of family
// lines rendered as connector segments between card positions.
//
// The engine is split into small, render-agnostic pieces:
//
//   - [Store]: canonical list of animals and family lines; the single
//     source of truth for rendering and persistence.
//   - [Cards]: optimistic placeholder protocol: a loading card appears the
//     instant a remote generation is requested and is swapped in place for
//     the real animal when the backend answers.
//   - [Machine]: the selection / link-mode state machine that turns card
//     clicks into breed requests.
//   - [Drag]: pointer-to-card-corner offset tracking for repositioning.
//   - [Connectors]: pure derivation of line segments from card positions
//     and family lines.
//   - [Session]: ties the above to a [Generator] backend and a [Snapshots]
//     store, with run-to-completion semantics for network callbacks.
//
// The Ebitengine view (see [Run]) renders the store each frame and feeds
// pointer and keyboard events into the session. Everything above the view
// can be exercised headless, which is how the package tests work.
package chimera
