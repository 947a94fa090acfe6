package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/pack"
	"github.com/mogaika/anim_inspector/skelmesh"
	"github.com/mogaika/anim_inspector/utils/gltfutils"
	"github.com/mogaika/anim_inspector/webutils"
)

var errNotSkeletal = errors.New("Instance is not skeletal")

func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	id := mux.Vars(r)["id"]
	sess := s.sessions.Get(id)
	if sess == nil {
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Errorf("Session %q not found", id))
	}
	return sess
}

func channelParam(r *http.Request) (int, error) {
	param := mux.Vars(r)["channel"]
	channel, err := strconv.Atoi(param)
	if err != nil {
		return 0, errors.Errorf("Channel '%s' is not integer", param)
	}
	if channel < 0 || channel >= skelmesh.MAX_ANIM_CHANNELS {
		return 0, errors.Errorf("Channel %d out of range [0,%d)", channel, skelmesh.MAX_ANIM_CHANNELS)
	}
	return channel, nil
}

func lodParam(r *http.Request) (int, error) {
	param := mux.Vars(r)["lod"]
	if param == "" {
		param = r.URL.Query().Get("lod")
	}
	if param == "" {
		return 0, nil
	}
	lod, err := strconv.Atoi(param)
	if err != nil {
		return 0, errors.Errorf("Lod '%s' is not integer", param)
	}
	return lod, nil
}

func channelInfos(inst skelmesh.MeshInstance) []skelmesh.ChannelInfo {
	switch i := inst.(type) {
	case *skelmesh.SkelMeshInstance:
		return i.ChannelInfos()
	case *skelmesh.VertMeshInstance:
		name, frame := i.Frame()
		return []skelmesh.ChannelInfo{{Anim: name, Frame: frame}}
	}
	return []skelmesh.ChannelInfo{}
}

type createRequest struct {
	Asset string `json:"asset"`
}

func (s *Server) HandlerCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := webutils.ReadJson(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if req.Asset == "" {
		webutils.WriteError(w, errors.New("Asset path is required"))
		return
	}

	a, err := pack.Open(req.Asset, s.cfg, s.l)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	inst, decodeErrs, err := a.NewInstance(s.cfg, s.l)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	for _, err := range decodeErrs {
		s.l.Warnf("Asset %q: %v", a.Name, err)
	}

	sess, err := s.sessions.Create(a, inst, decodeErrs)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusInternalServerError, err)
		return
	}
	webutils.WriteJson(w, sess.Info())
}

func (s *Server) HandlerListSessions(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.sessions.List())
}

func (s *Server) HandlerDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.sessions.Delete(id) {
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Errorf("Session %q not found", id))
		return
	}
	webutils.WriteJson(w, id)
}

func (s *Server) HandlerAnims(w http.ResponseWriter, r *http.Request) {
	if sess := s.session(w, r); sess != nil {
		webutils.WriteJson(w, sess.Info().Anims)
	}
}

func (s *Server) HandlerChannels(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var infos []skelmesh.ChannelInfo
	sess.Do(func(inst skelmesh.MeshInstance) error {
		infos = channelInfos(inst)
		return nil
	})
	webutils.WriteJson(w, infos)
}

type bonePose struct {
	Name   string     `json:"name"`
	Parent int        `json:"parent"`
	Track  int        `json:"track"`
	Pos    [3]float32 `json:"pos"`
	Quat   [4]float32 `json:"quat"`
	Scale  float32    `json:"scale"`
	Origin [3]float32 `json:"origin"`

	ForceMeshTranslation bool `json:"force_mesh_translation,omitempty"`
}

func (s *Server) HandlerPose(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var pose []bonePose
	err := sess.Do(func(inst skelmesh.MeshInstance) error {
		sm, ok := inst.(*skelmesh.SkelMeshInstance)
		if !ok {
			return errNotSkeletal
		}
		sk := sm.Mesh().Skeleton
		set := sm.AnimSet()
		for i, b := range sm.Bones() {
			pose = append(pose, bonePose{
				Name:   sk.Bones[i].Name,
				Parent: sk.Bones[i].Parent,
				Track:  b.Track,
				Pos:    b.Pos,
				Quat:   b.Quat.V.Vec4(b.Quat.W),
				Scale:  b.Scale,
				Origin: b.Coords.Origin,

				ForceMeshTranslation: set != nil && set.ForceMeshTranslation(b.Track),
			})
		}
		return nil
	})
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, pose)
}

type skinResult struct {
	Positions [][3]float32 `json:"positions"`
	Normals   [][3]float32 `json:"normals"`
	Indices   []uint32     `json:"indices"`
}

func (s *Server) HandlerSkin(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	lod, err := lodParam(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var res skinResult
	err = sess.Do(func(inst skelmesh.MeshInstance) error {
		out, err := inst.Skin(lod)
		if err != nil {
			return err
		}
		if res.Indices, err = inst.Indices(lod); err != nil {
			return err
		}
		res.Positions = make([][3]float32, len(out))
		res.Normals = make([][3]float32, len(out))
		for i := range out {
			res.Positions[i] = out[i].Pos
			res.Normals[i] = out[i].Normal
		}
		return nil
	})
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, &res)
}

type playRequest struct {
	Anim  string   `json:"anim"`
	Rate  *float32 `json:"rate"`
	Tween float32  `json:"tween"`
	Loop  bool     `json:"loop"`
}

// channelAction runs f on the session instance with the parsed channel and
// answers with the channel list.
func (s *Server) channelAction(w http.ResponseWriter, r *http.Request, req interface{}, f func(inst skelmesh.MeshInstance, channel int) error) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	channel, err := channelParam(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := webutils.ReadJson(r, req); err != nil {
		webutils.WriteError(w, err)
		return
	}

	var infos []skelmesh.ChannelInfo
	err = sess.Do(func(inst skelmesh.MeshInstance) error {
		if err := f(inst, channel); err != nil {
			return err
		}
		infos = channelInfos(inst)
		return nil
	})
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, infos)
}

func (s *Server) HandlerPlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	s.channelAction(w, r, &req, func(inst skelmesh.MeshInstance, channel int) error {
		rate := float32(1)
		if req.Rate != nil {
			rate = *req.Rate
		}
		switch i := inst.(type) {
		case *skelmesh.SkelMeshInstance:
			if req.Loop {
				i.LoopAnim(req.Anim, rate, req.Tween, channel)
			} else {
				i.PlayAnim(req.Anim, rate, req.Tween, channel)
			}
		case *skelmesh.VertMeshInstance:
			if req.Loop {
				i.LoopAnim(req.Anim, rate)
			} else {
				i.PlayAnim(req.Anim, rate)
			}
		default:
			return errors.Errorf("%v instance has no animations", inst.Kind())
		}
		return nil
	})
}

type freezeRequest struct {
	Frame   float32 `json:"frame"`
	Reverse *bool   `json:"reverse"`
}

func (s *Server) HandlerFreeze(w http.ResponseWriter, r *http.Request) {
	var req freezeRequest
	s.channelAction(w, r, &req, func(inst skelmesh.MeshInstance, channel int) error {
		sm, ok := inst.(*skelmesh.SkelMeshInstance)
		if !ok {
			return errNotSkeletal
		}
		if req.Reverse != nil {
			sm.SetReverse(channel, *req.Reverse)
		} else {
			sm.FreezeAnimAt(req.Frame, channel)
		}
		return nil
	})
}

type blendRequest struct {
	Alpha float32 `json:"alpha"`
	Bone  string  `json:"bone"`
}

func (s *Server) HandlerBlend(w http.ResponseWriter, r *http.Request) {
	var req blendRequest
	s.channelAction(w, r, &req, func(inst skelmesh.MeshInstance, channel int) error {
		sm, ok := inst.(*skelmesh.SkelMeshInstance)
		if !ok {
			return errNotSkeletal
		}
		if req.Bone != "" {
			sm.SetBlendParams(channel, req.Alpha, req.Bone)
		} else {
			sm.SetBlendAlpha(channel, req.Alpha)
		}
		return nil
	})
}

type secondaryRequest struct {
	Anim  string  `json:"anim"`
	Blend float32 `json:"blend"`
}

func (s *Server) HandlerSecondary(w http.ResponseWriter, r *http.Request) {
	var req secondaryRequest
	s.channelAction(w, r, &req, func(inst skelmesh.MeshInstance, channel int) error {
		sm, ok := inst.(*skelmesh.SkelMeshInstance)
		if !ok {
			return errNotSkeletal
		}
		sm.SetSecondaryAnim(channel, req.Anim)
		sm.SetSecondaryBlend(channel, req.Blend)
		return nil
	})
}

type tickRequest struct {
	Dt    float32 `json:"dt"`
	Ticks int     `json:"ticks"`
}

func (s *Server) HandlerTick(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	req := tickRequest{Ticks: 1}
	if err := webutils.ReadJson(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if req.Ticks < 0 || req.Dt < 0 {
		webutils.WriteError(w, errors.Errorf("Negative tick %d x %v", req.Ticks, req.Dt))
		return
	}

	var infos []skelmesh.ChannelInfo
	sess.Do(func(inst skelmesh.MeshInstance) error {
		for i := 0; i < req.Ticks; i++ {
			inst.UpdateAnimation(req.Dt)
		}
		infos = channelInfos(inst)
		return nil
	})
	if err := sess.Hub().Tick(infos); err != nil {
		s.l.Warnf("Session %q status: %v", sess.Name, err)
	}
	webutils.WriteJson(w, infos)
}

func (s *Server) HandlerExportGLTF(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	lod, err := lodParam(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	err = sess.Do(func(inst skelmesh.MeshInstance) error {
		doc, err := skelmesh.ExportGLTF(inst, sess.Asset.Name, lod)
		if err != nil {
			return err
		}
		return gltfutils.ExportBinary(&buf, doc)
	})
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, fmt.Sprintf("%s_lod%d.glb", sess.Asset.Name, lod))
}

func (s *Server) HandlerExportFbx(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	lod, err := lodParam(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	err = sess.Do(func(inst skelmesh.MeshInstance) error {
		f, err := skelmesh.ExportFbx(inst, sess.Asset.Name, lod)
		if err != nil {
			return err
		}
		return f.Write(&buf)
	})
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, sess.Asset.Name+".fbx")
}

func (s *Server) HandlerWebsocket(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader already answered
		s.l.Warnf("Websocket upgrade for %q: %v", sess.Name, err)
		return
	}
	sess.Hub().AddClient(conn)
}
