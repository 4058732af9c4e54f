package pipeline

import (
	"path/filepath"
	"sync"

	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/lut"
)

// Loader performs asynchronous LUT loads into pipeline stages without ever
// blocking the chain: the stage keeps rendering with its current LUT (or
// none) until a load completes.
//
// Each stage carries a monotonically increasing request token. A
// completion only installs its table if its token is still the latest for
// that stage, so overlapping loads resolve last-request-wins regardless of
// the order parses finish in. A failed load leaves the stage untouched.
type Loader struct {
	state *State

	mu     sync.Mutex
	tokens [stageCount]uint64

	// installMu orders each completion's staleness decision and install
	// as one step against competing completions. mu is never held while
	// calling into the state, so change handlers fired by an install may
	// call back into Load or Cancel.
	installMu sync.Mutex
}

// NewLoader creates a loader installing into st.
func NewLoader(st *State) *Loader {
	return &Loader{state: st}
}

// Load parses the .cube file at path in the background and installs it
// into the stage with manual provenance. The optional done callback fires
// after the outcome is decided; stale completions report nil table and
// nil error.
func (l *Loader) Load(id StageID, path string, done func(*lut.Table, error)) {
	if int(id) >= int(stageCount) {
		if done != nil {
			done(nil, ErrUnknownStage)
		}
		return
	}
	l.mu.Lock()
	l.tokens[id]++
	token := l.tokens[id]
	l.mu.Unlock()

	go func() {
		tab, err := lut.LoadFile(path)

		// installMu spans the token check and the install so a
		// superseded load can never land after its replacement.
		l.installMu.Lock()
		l.mu.Lock()
		stale := l.tokens[id] != token
		l.mu.Unlock()
		if !stale && err == nil {
			l.state.SetStageLUT(id, tab, filepath.Base(path))
		}
		l.installMu.Unlock()

		switch {
		case stale:
			mediaview.Logger().Debug("pipeline: stale LUT load discarded",
				"stage", id.String(), "path", path)
			if done != nil {
				done(nil, nil)
			}
		case err != nil:
			mediaview.Logger().Warn("pipeline: LUT load failed, stage unchanged",
				"stage", id.String(), "path", path, "error", err)
			if done != nil {
				done(nil, err)
			}
		default:
			if done != nil {
				done(tab, nil)
			}
		}
	}()
}

// Cancel invalidates any in-flight load for the stage; its completion will
// be discarded as stale. The stage's current LUT is unaffected.
func (l *Loader) Cancel(id StageID) {
	if int(id) >= int(stageCount) {
		return
	}
	l.mu.Lock()
	l.tokens[id]++
	l.mu.Unlock()
}
