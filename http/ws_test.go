package http

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dialSocket(t *testing.T, h *Handlers) *websocket.Conn {
	t.Helper()
	handler, err := NewHandler(DefaultServerConfig(), h, zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/predict"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() {
		conn.Close()
		h.Socket().CloseAll()
	})
	return conn
}

func TestPredictionSocketAnswersInOrder(t *testing.T) {
	h := newTestHandlers(t, &fakeModel{labels: []int{0}}, &fakeModel{labels: []int{6}})
	conn := dialSocket(t, h)

	require.NoError(t, conn.WriteJSON(SocketRequest{ID: "a", Flow: "crop", Inputs: map[string]float64{"crop_n": 90}}))
	require.NoError(t, conn.WriteJSON(SocketRequest{ID: "b", Flow: "fertilizer"}))

	var first, second SocketResponse
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "Recommended Crop: Rice", first.Message)
	assert.Equal(t, "b", second.ID)
	assert.Equal(t, "Recommended Fertilizer: NPK (Nitrogen, Phosphorus, Potassium)", second.Message)
}

func TestPredictionSocketReportsBadMessages(t *testing.T) {
	h := newTestHandlers(t, &fakeModel{labels: []int{0}}, &fakeModel{})
	conn := dialSocket(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	var resp SocketResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Contains(t, resp.Error, "invalid message")

	require.NoError(t, conn.WriteJSON(SocketRequest{ID: "x", Flow: "irrigation"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "x", resp.ID)
	assert.Contains(t, resp.Error, "unknown flow")

	require.NoError(t, conn.WriteJSON(SocketRequest{ID: "y", Flow: "crop", Inputs: map[string]float64{"crop_ph": 20}}))
	resp = SocketResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.FieldErrors, "crop_ph")
}
