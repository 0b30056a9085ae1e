package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"smartfarm/recommend"
)

const (
	wsMaxMessageSize = 64 * 1024
	wsWriteWait      = 10 * time.Second
)

// SocketRequest is one prediction request over the websocket.
type SocketRequest struct {
	ID     string             `json:"id,omitempty"`
	Flow   string             `json:"flow"`
	Inputs map[string]float64 `json:"inputs"`
}

// SocketResponse echoes the request id next to the prediction.
type SocketResponse struct {
	ID string `json:"id,omitempty"`
	PredictionResponse
}

// PredictionSocket answers prediction requests over websocket connections.
// Messages on one connection are handled strictly in order.
type PredictionSocket struct {
	recommender *recommend.Recommender
	logger      *zap.Logger
	upgrader    websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]string
}

func NewPredictionSocket(rec *recommend.Recommender, logger *zap.Logger) *PredictionSocket {
	return &PredictionSocket{
		recommender: rec,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*websocket.Conn]string),
	}
}

func (s *PredictionSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	clientID := uuid.NewString()
	s.track(conn, clientID)
	defer s.untrack(conn)

	s.logger.Info("websocket client connected", zap.String("client_id", clientID))
	conn.SetReadLimit(wsMaxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.String("client_id", clientID), zap.Error(err))
			}
			return
		}

		resp := s.handle(data)
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Warn("websocket write error", zap.String("client_id", clientID), zap.Error(err))
			return
		}
	}
}

func (s *PredictionSocket) handle(data []byte) SocketResponse {
	var req SocketRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return SocketResponse{PredictionResponse: PredictionResponse{Error: "invalid message: " + err.Error()}}
	}
	flow, err := recommend.ParseFlow(req.Flow)
	if err != nil {
		return SocketResponse{ID: req.ID, PredictionResponse: PredictionResponse{Error: err.Error()}}
	}

	res, err := s.recommender.Run(flow, req.Inputs)
	var fieldErrs recommend.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return SocketResponse{ID: req.ID, PredictionResponse: fieldErrorResponse(flow, fieldErrs)}
	case err != nil:
		return SocketResponse{ID: req.ID, PredictionResponse: PredictionResponse{Flow: string(flow), Error: err.Error()}}
	}
	return SocketResponse{ID: req.ID, PredictionResponse: NewPredictionResponse(res)}
}

// CloseAll closes every open connection; used on shutdown since hijacked
// connections are not tracked by http.Server.
func (s *PredictionSocket) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
}

func (s *PredictionSocket) track(conn *websocket.Conn, id string) {
	s.mu.Lock()
	s.conns[conn] = id
	s.mu.Unlock()
}

func (s *PredictionSocket) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}
