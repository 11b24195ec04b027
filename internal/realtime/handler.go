package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"hotelcore/internal/loyalty"
	"hotelcore/internal/shared/config"
	"hotelcore/internal/shared/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// controlMessage is every client->server frame on the channel (§6).
type controlMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Server ties the Hub to its gin upgrade endpoint and optional loyalty
// read-side queries (`request-loyalty-status`).
type Server struct {
	hub     *Hub
	cfg     *config.Config
	loyalty loyalty.Repository
	log     *logger.Logger
}

func NewServer(hub *Hub, cfg *config.Config, loyaltyRepo loyalty.Repository, log *logger.Logger) *Server {
	return &Server{hub: hub, cfg: cfg, loyalty: loyaltyRepo, log: log}
}

// HandleUpgrade is the gin handler registered for the websocket route. The
// bearer token is read from the `token` query parameter since browser
// websocket clients cannot set an Authorization header on the handshake.
func (s *Server) HandleUpgrade(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	subscriber, err := AuthenticateConnect(s.cfg, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.ErrorWithContext(c.Request.Context(), "websocket upgrade failed", err, nil)
		return
	}

	sess := &connection{
		sessionID:  uuid.New(),
		subscriber: subscriber,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		rooms:      make(map[string]struct{}),
	}

	s.hub.registerConnection(sess)
	for _, room := range autoJoinRooms(subscriber) {
		_ = s.hub.join(sess, room)
	}
	s.hub.RenewWatches(subscriber.UserID)

	go s.writePump(sess)
	s.readPump(sess)
}

func (s *Server) writePump(c *connection) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case body, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) readPump(c *connection) {
	defer func() {
		s.hub.unregisterConnection(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, body, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg controlMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			continue
		}
		s.handleControl(c, msg)
	}
}

// handleControl implements §6's client->server control messages.
func (s *Server) handleControl(c *connection, msg controlMessage) {
	ctx := context.Background()

	switch {
	case strings.HasPrefix(msg.Type, "join-"):
		room := strings.TrimPrefix(msg.Type, "join-")
		if err := s.hub.join(c, room); err != nil {
			s.sendError(c, err.Error())
		}
	case strings.HasPrefix(msg.Type, "leave-"):
		room := strings.TrimPrefix(msg.Type, "leave-")
		s.hub.leave(c, room)
	case msg.Type == "watch-hotel-prices":
		var req WatchRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.sendError(c, "malformed watch-hotel-prices payload")
			return
		}
		s.hub.RegisterWatch(c.subscriber.UserID, req)
	case msg.Type == "subscribe-price-alerts", msg.Type == "subscribe-tier-updates", msg.Type == "subscribe-expiry-alerts":
		// Handled implicitly: these alerts are sent directly to the user's
		// connection by user id (or queued offline), so no room join is needed.
	case msg.Type == "request-loyalty-status":
		s.sendLoyaltyStatus(ctx, c)
	case msg.Type == "request-redemption-options":
		s.sendRedemptionOptions(ctx, c)
	default:
		s.sendError(c, "unrecognized control message type")
	}
}

func (s *Server) sendLoyaltyStatus(ctx context.Context, c *connection) {
	if s.loyalty == nil {
		s.sendError(c, "loyalty status unavailable")
		return
	}
	account, err := s.loyalty.GetAccount(ctx, c.subscriber.UserID)
	if err != nil {
		s.sendError(c, "no loyalty account on file")
		return
	}
	s.send(c, "loyalty-status", account)
}

func (s *Server) sendRedemptionOptions(ctx context.Context, c *connection) {
	if s.loyalty == nil {
		s.sendError(c, "redemption options unavailable")
		return
	}
	account, err := s.loyalty.GetAccount(ctx, c.subscriber.UserID)
	if err != nil {
		s.sendError(c, "no loyalty account on file")
		return
	}

	options := []string{"DISCOUNT", "UPGRADE"}
	if tierAtLeast(Tier(account.Tier), TierGold) {
		options = append(options, "FREE_NIGHT")
	}
	s.send(c, "redemption-options", map[string]interface{}{"options": options, "balance": account.CurrentPoints})
}

func (s *Server) send(c *connection, eventType string, payload interface{}) {
	body, err := marshalEvent(newOutboundEvent(eventType, payload))
	if err != nil {
		return
	}
	select {
	case c.send <- body:
	default:
	}
}

func (s *Server) sendError(c *connection, message string) {
	s.send(c, "error", map[string]string{"message": message})
}
