package server

import (
	"context"
	"encoding/json"
	"net/http"

	"quote-board/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub owns the client set: registration, pruning and fan-out all happen on
// this single goroutine.
func (s *BoardServer) runHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range s.clients {
				close(client.send)
				delete(s.clients, client)
			}
			s.clientCount.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int32(len(s.clients)))
			// Replay the latest known state on connect
			s.stateMutex.RLock()
			state := s.latestState
			s.stateMutex.RUnlock()
			client.send <- state

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.clientCount.Store(int32(len(s.clients)))
			}

		case update := <-s.broadcast:
			s.mergeState(update)

			for client := range s.clients {
				select {
				case client.send <- update:
				default:
					// Client too slow; prune it so the hub never blocks.
					delete(s.clients, client)
					close(client.send)
					s.clientCount.Store(int32(len(s.clients)))
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

// mergeState folds an update into the replayed-on-connect state.
func (s *BoardServer) mergeState(update *models.MBoardUpdate) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	merged := &models.MBoardUpdate{
		Type:      "INITIAL",
		Quotes:    make(map[string]models.MQuoteView, len(s.latestState.Quotes)+len(update.Quotes)),
		Timestamp: update.Timestamp,
	}
	for sym, view := range s.latestState.Quotes {
		merged.Quotes[sym] = view
	}
	for sym, view := range update.Quotes {
		merged.Quotes[sym] = view
	}
	s.latestState = merged
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues an update for all connected dashboards. Implements
// interfaces.IDataExchange for the engine.
func (s *BoardServer) Broadcast(update *models.MBoardUpdate) {
	select {
	case s.broadcast <- update:
	default:
		// Queue full; drop rather than stall a refresh cycle.
		s.Logger.Warning("broadcast queue full, dropping update")
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *BoardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan interface{}, 256),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage serves subscribe commands: each requested symbol is
// reconciled fresh (through the cache) and answered directly to the client.
func (s *BoardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	quotes := make(map[string]models.MQuoteView, len(cmd.Symbols))
	for _, symbol := range cmd.Symbols {
		view, err := s.Engine.Quote(context.Background(), symbol)
		if err != nil {
			s.Logger.Info("subscribe %s: %v", symbol, err)
			continue
		}
		quotes[symbol] = *view
	}

	response := &models.MBoardUpdate{
		Type:      "INITIAL",
		Quotes:    quotes,
		Timestamp: nowUnix(),
	}

	select {
	case client.send <- response:
	default:
		// Client buffer full; the hub loop will prune it on the next broadcast.
	}
}
