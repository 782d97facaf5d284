package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"airflownet/building"
	"airflownet/config"
	"airflownet/element"
	"airflownet/model"
	"airflownet/translator"
	"airflownet/wind"
)

// Hub serves the requests of one connection, one at a time.
type Hub struct {
	conn    *websocket.Conn
	cfg     config.Config
	metrics *Metrics
	// request
	msg chan model.Msg
	// response
	reply chan model.Msg
	done  chan struct{}
}

func NewHub(conn *websocket.Conn, cfg config.Config, metrics *Metrics) *Hub {
	return &Hub{
		conn:    conn,
		cfg:     cfg,
		metrics: metrics,
		msg:     make(chan model.Msg, 10),
		reply:   make(chan model.Msg, 64),
		done:    make(chan struct{}),
	}
}

func (h *Hub) handleResponse() {
	defer close(h.done)
	for reply := range h.reply {
		if err := h.conn.WriteJSON(&reply); err != nil {
			log.WithFields(log.Fields{
				"type": reply.Type,
				"err":  err,
			}).Warn("websocket write failed")
		}
	}
}

func (h *Hub) handleRequest() {
	defer close(h.reply)
	for msg := range h.msg {
		switch msg.Type {
		case model.MsgTranslate:
			h.translate(msg.Content)
		case model.MsgElement:
			h.element(msg.Content)
		default:
			h.reply <- model.Msg{Type: model.MsgError, Content: fmt.Sprintf("no such type %q", msg.Type)}
		}
	}
}

func (h *Hub) send(typ string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.reply <- model.Msg{Type: model.MsgError, Content: err.Error()}
		return
	}
	h.reply <- model.Msg{Type: typ, Content: string(data)}
}

func (h *Hub) reject(err error) {
	h.metrics.RecordTranslation("rejected", 0)
	h.send(model.MsgFailed, model.TranslateResult{Warnings: []string{}, Errors: []string{err.Error()}})
}

func (h *Hub) translate(content string) {
	var req model.TranslateRequest
	if err := json.Unmarshal([]byte(content), &req); err != nil {
		h.reject(fmt.Errorf("decoding translate request: %w", err))
		return
	}
	doc, err := building.Parse([]byte(req.Model))
	if err != nil {
		h.reject(err)
		return
	}

	cfg := h.cfg
	if req.Terrain != "" {
		if cfg.Terrain, err = wind.ParseTerrain(req.Terrain); err != nil {
			h.reject(err)
			return
		}
	}
	if req.WindSpeed != nil {
		cfg.SteadyWeather = true
		cfg.WindSpeed, cfg.WindDirection = *req.WindSpeed, req.WindDirection
	}
	if req.IncludeHVAC != nil {
		cfg.IncludeHVAC = *req.IncludeHVAC
	}
	if req.LeakageDescriptor != "" {
		cfg.LeakageDescriptor = req.LeakageDescriptor
		cfg.LeakageRate = 0
	}
	if req.LeakageRate > 0 {
		cfg.LeakageRate = req.LeakageRate
	}

	t := translator.New()
	cfg.Apply(t)
	opts := cfg.Options()
	opts.Progress = translator.ProgressFunc(func(phase string, step, max int) {
		h.send(model.MsgProgress, model.ProgressEvent{Phase: phase, Step: step, Max: max})
	}).Observer()

	start := time.Now()
	text, ok := t.TranslateToString(doc, opts)
	result := model.TranslateResult{
		Valid:    ok,
		Prj:      text,
		Warnings: nonNil(t.Warnings()),
		Errors:   nonNil(t.Errors()),
	}
	if !ok {
		h.metrics.RecordTranslation("failed", time.Since(start))
		h.send(model.MsgFailed, result)
		return
	}
	h.metrics.RecordTranslation("valid", time.Since(start))
	log.WithFields(log.Fields{
		"warnings": len(result.Warnings),
		"bytes":    len(text),
	}).Info("translation sent")
	h.send(model.MsgTranslated, result)
}

func (h *Hub) element(content string) {
	var req model.ElementRequest
	if err := json.Unmarshal([]byte(content), &req); err != nil {
		h.reply <- model.Msg{Type: model.MsgError, Content: err.Error()}
		return
	}
	if req.Name == "" || req.Flow <= 0 {
		h.reply <- model.Msg{Type: model.MsgError, Content: "element needs a name and a positive flow"}
		return
	}
	if req.Exponent <= 0 {
		req.Exponent = element.DefaultExponent
	}
	if req.DP <= 0 {
		req.DP = element.DefaultPressureDrop
	}
	h.metrics.ElementsTotal.Inc()
	h.send(model.MsgDerived, element.PowerLaw(req.Name, req.Flow, req.Exponent, req.DP))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
