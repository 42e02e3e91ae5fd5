package render

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session identifies one render invocation and tracks scene mutation.
// Cached photon maps are keyed on the mutation counter: any scene
// change after Preprocess invalidates them on the next render call.
type Session struct {
	id      uuid.UUID
	started time.Time

	mutations atomic.Int64

	// photonEpoch is the mutation count the current photon maps were
	// built at; -1 means no maps have been built yet.
	photonEpoch atomic.Int64
}

func NewSession() *Session {
	s := &Session{id: uuid.New(), started: time.Now()}
	s.photonEpoch.Store(-1)
	return s
}

func (s *Session) ID() string         { return s.id.String() }
func (s *Session) Started() time.Time { return s.started }

// MarkMutation records a scene mutation (add geometry, swap a material,
// move a light). Safe to call from the construction API at any time.
func (s *Session) MarkMutation() { s.mutations.Add(1) }

// Mutations returns the current mutation count.
func (s *Session) Mutations() int64 { return s.mutations.Load() }

// PhotonMapsValid reports whether photon maps built earlier this session
// may be reused for the next render.
func (s *Session) PhotonMapsValid() bool {
	return s.photonEpoch.Load() == s.mutations.Load()
}

// MarkPhotonMapsBuilt stamps freshly built photon maps with the current
// mutation epoch.
func (s *Session) MarkPhotonMapsBuilt() {
	s.photonEpoch.Store(s.mutations.Load())
}
