package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/matchmaking"
)

const maxMessageSize = 64 << 10

type matchmaker interface {
	Connect(ctx context.Context, session *matchmaking.Session) error
	Join(ctx context.Context, connID uuid.UUID, join entity.Join) error
	Relay(ctx context.Context, connID uuid.UUID, message []byte) error
	Disconnect(ctx context.Context, connID uuid.UUID)
	Fail(ctx context.Context, connID uuid.UUID, cause error)
}

type Options struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	OutboundBuffer int
}

type Server struct {
	logger     *slog.Logger
	matchmaker matchmaker
	options    Options
	upgrader   websocket.Upgrader

	handlers map[string]func(ctx context.Context, connID uuid.UUID, message []byte) error
}

func New(logger *slog.Logger, matchmaker matchmaker, options Options) *Server {
	server := &Server{
		logger:     logger,
		matchmaker: matchmaker,
		options:    options,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, uuid.UUID, []byte) error),
	}

	server.handlers[entity.TypeJoin] = server.handleJoin
	server.handlers[entity.TypeOffer] = server.handleRelay
	server.handlers[entity.TypeAnswer] = server.handleRelay
	server.handlers[entity.TypeICECandidate] = server.handleRelay
	server.handlers[entity.TypeCandidate] = server.handleRelay

	return server
}

// Handler - upgrades requests to signaling sockets. Open sockets are closed
// once ctx is done.
func (that *Server) Handler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	}
}

func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	that.serve(ctx, conn)
}

// serve - runs one connection until it closes. Cleanup runs on every exit path.
func (that *Server) serve(ctx context.Context, conn *websocket.Conn) {
	connID := uuid.New()
	log := that.logger.With("conn_id", connID)

	outbound := make(chan []byte, that.options.OutboundBuffer)
	done := make(chan struct{})

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		that.writePump(conn, outbound, done)
	}()

	go func() {
		defer wg.Done()

		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	defer func() {
		that.matchmaker.Disconnect(context.WithoutCancel(ctx), connID)
		close(done)
		wg.Wait()
		_ = conn.Close()

		log.Info("websocket connection closed")
	}()

	log.Info("websocket connection established")

	if err := that.matchmaker.Connect(ctx, matchmaking.NewSession(connID, outbound, done)); err != nil {
		log.Error("failed to register connection", "error", err)
		return
	}

	if err := that.handleMessages(ctx, conn, connID); err != nil {
		log.Info("connection failed", "error", err)

		failCtx, cancel := context.WithTimeout(ctx, that.options.WriteWait)
		that.matchmaker.Fail(failCtx, connID, err)
		cancel()
	}
}

// handleMessages - processes messages from the client in arrival order.
// Returns nil when the client goes away and the protocol error otherwise.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, connID uuid.UUID) error {
	log := that.logger.With("method", "handleMessages", "conn_id", connID)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(that.options.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(that.options.PongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}

			return nil
		}

		var envelope entity.Envelope
		if err = json.Unmarshal(message, &envelope); err != nil {
			return fmt.Errorf("%w: malformed message: %w", apperror.ErrBadRequest, err)
		}

		handler, ok := that.handlers[envelope.Type]
		if !ok {
			log.Warn("unknown message type", "type", envelope.Type)
			continue
		}

		if err = handler(ctx, connID, message); err != nil {
			return err
		}
	}
}

func (that *Server) handleJoin(ctx context.Context, connID uuid.UUID, message []byte) error {
	var join entity.Join
	if err := json.Unmarshal(message, &join); err != nil {
		return fmt.Errorf("%w: malformed join: %w", apperror.ErrBadRequest, err)
	}

	return that.matchmaker.Join(ctx, connID, join)
}

func (that *Server) handleRelay(ctx context.Context, connID uuid.UUID, message []byte) error {
	return that.matchmaker.Relay(ctx, connID, message)
}

// writePump - the only writer of conn. Once done is closed it flushes what is
// still queued and says goodbye.
func (that *Server) writePump(conn *websocket.Conn, outbound <-chan []byte, done <-chan struct{}) {
	log := that.logger.With("method", "writePump")

	ticker := time.NewTicker(that.options.PongWait * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case message := <-outbound:
			if err := that.write(conn, websocket.TextMessage, message); err != nil {
				log.Debug("failed to write message", "error", err)
				_ = conn.Close()

				return
			}
		case <-ticker.C:
			if err := that.write(conn, websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		case <-done:
			for {
				select {
				case message := <-outbound:
					if err := that.write(conn, websocket.TextMessage, message); err != nil {
						return
					}
				default:
					closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
					_ = that.write(conn, websocket.CloseMessage, closing)

					return
				}
			}
		}
	}
}

func (that *Server) write(conn *websocket.Conn, messageType int, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(that.options.WriteWait)); err != nil {
		return err
	}

	return conn.WriteMessage(messageType, data)
}
