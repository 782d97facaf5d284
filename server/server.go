package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"airflownet/config"
	"airflownet/model"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	cfg      config.Config
	metrics  *Metrics
}

func NewServer(addr string, upgrader websocket.Upgrader, cfg config.Config) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		cfg:      cfg,
		metrics:  NewMetrics(),
	}
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"err": err,
		}).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	s.metrics.ConnectionsActive.Inc()
	defer s.metrics.ConnectionsActive.Dec()

	hub := NewHub(conn, s.cfg, s.metrics)
	go hub.handleRequest()
	go hub.handleResponse()
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithFields(log.Fields{
					"err": err,
				}).Warn("websocket read failed")
			}
			break
		}
		hub.msg <- msg
	}
	close(hub.msg)
	<-hub.done
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

func (s *Server) Serve() error {
	log.WithFields(log.Fields{
		"addr": s.addr,
	}).Info("serving translations")
	return http.ListenAndServe(s.addr, s.Handler())
}
