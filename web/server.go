package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mogaika/anim_inspector/config"
	"github.com/mogaika/anim_inspector/utils"
)

type Server struct {
	cfg      *config.Config
	l        *utils.Logger
	sessions *Sessions
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, l *utils.Logger) *Server {
	return &Server{
		cfg:      cfg,
		l:        l,
		sessions: NewSessions(l),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *Server) Sessions() *Sessions { return s.sessions }

func (s *Server) Router(webPath string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/session", s.HandlerCreateSession).Methods("POST")
	r.HandleFunc("/session", s.HandlerListSessions).Methods("GET")
	r.HandleFunc("/session/{id}", s.HandlerDeleteSession).Methods("DELETE")

	r.HandleFunc("/json/{id}/anims", s.HandlerAnims).Methods("GET")
	r.HandleFunc("/json/{id}/channels", s.HandlerChannels).Methods("GET")
	r.HandleFunc("/json/{id}/pose", s.HandlerPose).Methods("GET")
	r.HandleFunc("/json/{id}/skin/{lod}", s.HandlerSkin).Methods("GET")

	r.HandleFunc("/action/{id}/play/{channel}", s.HandlerPlay).Methods("POST")
	r.HandleFunc("/action/{id}/freeze/{channel}", s.HandlerFreeze).Methods("POST")
	r.HandleFunc("/action/{id}/blend/{channel}", s.HandlerBlend).Methods("POST")
	r.HandleFunc("/action/{id}/secondary/{channel}", s.HandlerSecondary).Methods("POST")
	r.HandleFunc("/action/{id}/tick", s.HandlerTick).Methods("POST")

	r.HandleFunc("/export/{id}/gltf/{lod}", s.HandlerExportGLTF).Methods("GET")
	r.HandleFunc("/export/{id}/fbx", s.HandlerExportFbx).Methods("GET")

	r.HandleFunc("/ws/{id}", s.HandlerWebsocket)

	if webPath != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	}
	return r
}

func (s *Server) Handler(webPath string) http.Handler {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router(webPath))
	return handlers.LoggingHandler(os.Stdout, h)
}

func StartServer(addr string, cfg *config.Config, l *utils.Logger) error {
	s := NewServer(cfg, l)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, s.Handler(cfg.WebPath))
}
