// Package mediaview provides the real-time color pipeline of an interactive
// media viewer: decoded frames pass through an ordered chain of 3D LUT
// stages, an OCIO-lite color-space transform and a tone-mapping operator,
// backed by an LRU-managed pool of GPU textures and an SDR/HLG/PQ output
// negotiator.
//
// The root package holds the shared primitives: the scene-referred [Frame]
// buffer, the [RGB] color triple, and the module logger. The subsystems
// live in their own packages:
//
//   - lut: .cube 3D LUT parsing and trilinear sampling
//   - colorspace: input → working → display conversion
//   - tonemap: Reinhard / Filmic / ACES operators
//   - pipeline: the four-stage chain and its mutable state
//   - texcache: the GPU texture resource cache
//   - hdrout: extended-range output negotiation
//   - render: per-frame orchestration of all of the above
//
// Playback scheduling, UI panels, annotation and session persistence are
// external collaborators: they drive the pipeline through pipeline.State
// setters and read rendered pixels back through render.Context.
package mediaview
