package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/pack"
	"github.com/mogaika/anim_inspector/skelmesh"
	"github.com/mogaika/anim_inspector/status"
	"github.com/mogaika/anim_inspector/utils"
)

// Session is one loaded asset with its own mesh instance. All access to the
// instance goes through Do, which serialises callers.
type Session struct {
	Id           string
	Name         string
	Asset        *pack.Asset
	DecodeErrors []string

	lock sync.Mutex
	inst skelmesh.MeshInstance
	hub  *status.Hub
}

type SessionInfo struct {
	Id           string   `json:"id"`
	Name         string   `json:"name"`
	Asset        string   `json:"asset"`
	Game         string   `json:"game"`
	Kind         string   `json:"kind"`
	Anims        []string `json:"anims"`
	DecodeErrors []string `json:"decode_errors,omitempty"`
}

func animNames(inst skelmesh.MeshInstance) []string {
	switch i := inst.(type) {
	case *skelmesh.SkelMeshInstance:
		return i.AnimNames()
	case *skelmesh.VertMeshInstance:
		return i.AnimNames()
	}
	return nil
}

func (s *Session) Do(f func(inst skelmesh.MeshInstance) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return f(s.inst)
}

func (s *Session) Info() SessionInfo {
	s.lock.Lock()
	defer s.lock.Unlock()
	return SessionInfo{
		Id:           s.Id,
		Name:         s.Name,
		Asset:        s.Asset.Name,
		Game:         s.Asset.Game.String(),
		Kind:         s.Asset.Kind.String(),
		Anims:        animNames(s.inst),
		DecodeErrors: s.DecodeErrors,
	}
}

func (s *Session) Hub() *status.Hub { return s.hub }

type Sessions struct {
	lock     sync.Mutex
	sessions map[string]*Session
	names    *utils.RandomNameGenerator
	l        *utils.Logger
}

func NewSessions(l *utils.Logger) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		names:    utils.NewRandomNameGenerator(time.Now().UnixNano()),
		l:        l,
	}
}

func (ss *Sessions) Create(a *pack.Asset, inst skelmesh.MeshInstance, decodeErrs []error) (*Session, error) {
	uid, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to generate session id")
	}

	ss.lock.Lock()
	defer ss.lock.Unlock()

	s := &Session{
		Id:    uid.String(),
		Name:  ss.names.RandomName(),
		Asset: a,
		inst:  inst,
	}
	for _, err := range decodeErrs {
		s.DecodeErrors = append(s.DecodeErrors, err.Error())
	}
	s.hub = status.NewHub(ss.l.With("session", s.Name))
	ss.sessions[s.Id] = s
	ss.l.Infof("Session %v %q created for asset %q", s.Id, s.Name, a.Name)
	return s, nil
}

func (ss *Sessions) Get(id string) *Session {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	return ss.sessions[id]
}

func (ss *Sessions) List() []SessionInfo {
	ss.lock.Lock()
	list := make([]*Session, 0, len(ss.sessions))
	for _, s := range ss.sessions {
		list = append(list, s)
	}
	ss.lock.Unlock()

	infos := make([]SessionInfo, len(list))
	for i, s := range list {
		infos[i] = s.Info()
	}
	return infos
}

func (ss *Sessions) Delete(id string) bool {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	s, ok := ss.sessions[id]
	if !ok {
		return false
	}
	delete(ss.sessions, id)
	ss.names.Release(s.Name)
	s.hub.Close()
	return true
}
