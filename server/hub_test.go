package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airflownet/config"
	"airflownet/model"
)

const oneZone = `
name: Box
stories: [{name: S1, height: 3}]
zones: [{name: Z1, volume: 60}]
spaces: [{name: P1, story: S1, zone: Z1, floor_area: 20}]
surfaces:
  - {name: North, type: Wall, boundary: Outdoors, space: P1, area: 12,
     vertices: [[5, 4, 0], [0, 4, 0], [0, 4, 3], [5, 4, 3]]}
air_loops: [{name: Loop, zones: [Z1]}]
`

func newTestServer(t *testing.T) (*Server, *websocket.Conn, string) {
	t.Helper()
	return newTestServerWith(t, config.Default())
}

func newTestServerWith(t *testing.T, cfg config.Config) (*Server, *websocket.Conn, string) {
	t.Helper()
	s := NewServer(":0", websocket.Upgrader{}, cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return s, conn, ts.URL
}

func request(t *testing.T, conn *websocket.Conn, typ string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(model.Msg{Type: typ, Content: string(data)}))
}

func readUntil(t *testing.T, conn *websocket.Conn, done ...string) ([]model.Msg, model.Msg) {
	t.Helper()
	var seen []model.Msg
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg model.Msg
		require.NoError(t, conn.ReadJSON(&msg))
		for _, d := range done {
			if msg.Type == d {
				return seen, msg
			}
		}
		seen = append(seen, msg)
	}
}

func TestTranslate(t *testing.T) {
	s, conn, url := newTestServer(t)
	request(t, conn, model.MsgTranslate, model.TranslateRequest{Model: oneZone, LeakageDescriptor: "Tight"})

	progress, last := readUntil(t, conn, model.MsgTranslated, model.MsgFailed)
	require.Equal(t, model.MsgTranslated, last.Type, last.Content)
	require.NotEmpty(t, progress)
	for _, msg := range progress {
		require.Equal(t, model.MsgProgress, msg.Type)
	}
	var first model.ProgressEvent
	require.NoError(t, json.Unmarshal([]byte(progress[0].Content), &first))
	assert.Equal(t, "Translating Stories", first.Phase)

	var result model.TranslateResult
	require.NoError(t, json.Unmarshal([]byte(last.Content), &result))
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Contains(t, result.Prj, `Automatically generated from "Box" building model`)
	assert.Contains(t, result.Prj, "AHS_1(Sup)")

	resp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `airflownet_translations_total{result="valid"} 1`)
	assert.Contains(t, string(body), "airflownet_translation_duration_seconds_count 1")
	assert.NotNil(t, s.Metrics().Registry())
}

func TestTranslateDescriptorOverridesRate(t *testing.T) {
	cfg := config.Default()
	cfg.LeakageRate = 27.1
	_, conn, _ := newTestServerWith(t, cfg)

	translated := func(req model.TranslateRequest) model.TranslateResult {
		request(t, conn, model.MsgTranslate, req)
		_, last := readUntil(t, conn, model.MsgTranslated, model.MsgFailed)
		require.Equal(t, model.MsgTranslated, last.Type, last.Content)
		var result model.TranslateResult
		require.NoError(t, json.Unmarshal([]byte(last.Content), &result))
		return result
	}

	assert.Contains(t, translated(model.TranslateRequest{Model: oneZone}).Prj, "CustomExterior")
	assert.NotContains(t, translated(model.TranslateRequest{Model: oneZone, LeakageDescriptor: "Tight"}).Prj, "CustomExterior")
}

func TestTranslateFailed(t *testing.T) {
	_, conn, _ := newTestServer(t)
	request(t, conn, model.MsgTranslate, model.TranslateRequest{Model: "name: Empty\n"})

	_, last := readUntil(t, conn, model.MsgTranslated, model.MsgFailed)
	require.Equal(t, model.MsgFailed, last.Type)
	var result model.TranslateResult
	require.NoError(t, json.Unmarshal([]byte(last.Content), &result))
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Failed to find building stories in model, translation aborted"}, result.Errors)
}

func TestTranslateRejected(t *testing.T) {
	_, conn, _ := newTestServer(t)
	request(t, conn, model.MsgTranslate, model.TranslateRequest{Model: oneZone, Terrain: "swamp"})

	_, last := readUntil(t, conn, model.MsgTranslated, model.MsgFailed)
	assert.Equal(t, model.MsgFailed, last.Type)
	assert.Contains(t, last.Content, "swamp")
}

func TestElement(t *testing.T) {
	_, conn, _ := newTestServer(t)
	request(t, conn, model.MsgElement, model.ElementRequest{Name: "Door", Flow: 27.1})

	_, last := readUntil(t, conn, model.MsgDerived, model.MsgError)
	require.Equal(t, model.MsgDerived, last.Type, last.Content)
	var afe model.AirflowElement
	require.NoError(t, json.Unmarshal([]byte(last.Content), &afe))
	assert.Equal(t, "Door", afe.Name)
	assert.Equal(t, 0.65, afe.Expt)
	assert.Equal(t, 75.0, afe.DP)
	assert.Greater(t, afe.Lam, 0.0)
}

func TestUnknownType(t *testing.T) {
	_, conn, _ := newTestServer(t)
	require.NoError(t, conn.WriteJSON(model.Msg{Type: "start"}))
	_, last := readUntil(t, conn, model.MsgError)
	assert.Contains(t, last.Content, "start")
}
