package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bqmba/internal/auth"
	"bqmba/internal/bq40z50"
	"bqmba/internal/mba"
	"bqmba/internal/twi"
	"bqmba/internal/twi/twitest"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, withAuth bool) (*Server, *twitest.Gauge) {
	t.Helper()
	g := twitest.NewGauge(bq40z50.Addr)
	g.Blocks[0x0001] = []byte{0x0A, 0x0B}
	g.Blocks[0x0054] = []byte{0x06, 0x03, 0x00, 0x00}

	r, err := mba.NewRunner(twi.Share(g), bq40z50.Commands(), io.Discard)
	require.NoError(t, err)

	var v *auth.Verifier
	if withAuth {
		v, err = auth.NewVerifier(testSecret)
		require.NoError(t, err)
	}
	return New(nil, r, bq40z50.Addr, bq40z50.UnsealSequence(), v), g
}

func token(t *testing.T, scopes ...string) string {
	t.Helper()
	v, err := auth.NewVerifier(testSecret)
	require.NoError(t, err)
	tok, err := v.Sign("tester", scopes...)
	require.NoError(t, err)
	return tok
}

func TestCommandsHandler(t *testing.T) {
	s, _ := newTestServer(t, false)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/commands", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var cmds []CommandInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cmds))
	require.Len(t, cmds, len(bq40z50.Commands()))
	assert.Equal(t, CommandInfo{
		Name: "ClearPF2", Code: "0x4062", Access: "W", Format: "hex", Data: "01234567",
		Description: cmds[len(cmds)-1].Description,
	}, cmds[len(cmds)-1])
	assert.Equal(t, "OperationStatus", cmds[13].Flags)
}

func TestRunHandlerJSON(t *testing.T) {
	s, g := newTestServer(t, false)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/api/mba/DeviceType", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var rep Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rep))
	_, err := uuid.Parse(rep.ID)
	assert.NoError(t, err)
	assert.True(t, rep.OK)
	assert.Equal(t, "0x0B", rep.Address)
	assert.Equal(t, "0b0a", rep.PayloadHex)
	assert.Contains(t, rep.Output, "Data (hex): 0x01 0x00 0x0A 0x0B")
	assert.Equal(t, []byte{0x44, 0x02, 0x01, 0x00}, g.LastFrame())
}

func TestRunHandlerCBOR(t *testing.T) {
	s, _ := newTestServer(t, false)
	req := httptest.NewRequest("POST", "/api/mba/OperationStatus", nil)
	req.Header.Set("Accept", "application/cbor")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/cbor", w.Header().Get("Content-Type"))

	var rep Report
	require.NoError(t, cbor.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, []byte{0x00, 0x00, 0x03, 0x06}, rep.Payload)
	assert.Empty(t, rep.PayloadHex)
	require.Len(t, rep.Flags, 32)
	assert.Equal(t, Flag{Index: 1, Label: "DSG", Set: true, Value: "Active"}, rep.Flags[1])
}

func TestRunHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		withAuth bool
		target   string
		token    string
		want     int
		frames   int
	}{
		{name: "not found", target: "/api/mba/devicetype", want: http.StatusNotFound},
		{name: "bad addr", target: "/api/mba/DeviceType?addr=0x99", want: http.StatusBadRequest},
		{name: "nack", target: "/api/mba/DeviceType?addr=0x16", want: http.StatusBadGateway},
		{name: "writes disabled", target: "/api/mba/SealDevice", want: http.StatusForbidden},
		{name: "no token", withAuth: true, target: "/api/mba/SealDevice", want: http.StatusUnauthorized},
		{name: "read scope", withAuth: true, target: "/api/mba/SealDevice", token: token(t, "read"), want: http.StatusForbidden},
		{name: "control scope", withAuth: true, target: "/api/mba/SealDevice", token: token(t, auth.ScopeControl), want: http.StatusOK, frames: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, g := newTestServer(t, tt.withAuth)
			req := httptest.NewRequest("POST", tt.target, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Len(t, g.Frames, tt.frames)
		})
	}
}

func TestRunHandlerMethod(t *testing.T) {
	s, _ := newTestServer(t, false)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/mba/DeviceType", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, line string) string {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(line)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestWebsocketConsole(t *testing.T) {
	s, g := newTestServer(t, true)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv, "")
	assert.Contains(t, roundTrip(t, conn, "DeviceType"), "Response length: 2 bytes")
	assert.Contains(t, roundTrip(t, conn, "unseal"), "write-only")
	assert.Len(t, g.Frames, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("quit")))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestWebsocketConsoleWithToken(t *testing.T) {
	s, g := newTestServer(t, true)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv, "?token="+token(t, auth.ScopeControl))
	out := roundTrip(t, conn, "unseal")
	assert.Contains(t, out, "UnsealKey2 : CMD=0x44, SUBCMD=0xCCDF")
	assert.Equal(t, [][]byte{{0x44, 0x02, 0xE0, 0x7E}, {0x44, 0x02, 0xDF, 0xCC}}, g.Frames)
}

func TestWebsocketRejectsBadToken(t *testing.T) {
	s, _ := newTestServer(t, true)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebsocketReadScopeIsReadOnly(t *testing.T) {
	s, g := newTestServer(t, true)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialWS(t, srv, "?token="+token(t, "read"))
	assert.Contains(t, roundTrip(t, conn, "DeviceType"), "Response length: 2 bytes")
	assert.Contains(t, roundTrip(t, conn, "SealDevice"), "SealDevice is write-only")
	assert.Len(t, g.Frames, 1)
}
