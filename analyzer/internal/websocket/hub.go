package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
	"github.com/Krimson/ctg-contractions/analyzer/pkg/models"
)

const (
	MessageTypeAnalysis = "analysis"
	MessageTypeError    = "error"

	analyzeTimeout = 30 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

// Runner пересчитывает анализ записи по запросу клиента
type Runner interface {
	Analyze(ctx context.Context, recordingID string, p contraction.Params) (*models.AnalysisResponse, error)
}

// Message - сообщение, которое получает клиент
type Message struct {
	Type        string                   `json:"type"`
	RecordingID string                   `json:"recording_id"`
	Analysis    *models.AnalysisResponse `json:"analysis,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

type outbound struct {
	recordingID string
	data        []byte
}

// Hub рассылает результаты анализа клиентам, подписанным на запись
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound

	mu   sync.RWMutex
	done chan struct{}

	runner Runner
	logger zerolog.Logger
}

// Client - WebSocket клиент одной записи
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	recordingID string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене следует проверять домен
		return true
	},
}

func NewHub(runner Runner, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 64),
		done:       make(chan struct{}),
		runner:     runner,
		logger:     logger.With().Str("component", "websocket").Logger(),
	}
}

// Run обслуживает регистрацию клиентов и рассылку до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug().Str("recording_id", client.recordingID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug().Str("recording_id", client.recordingID).Msg("client unregistered")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.recordingID != message.recordingID {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishAnalysis отправляет результат подписчикам записи. При переполнении очереди сообщение отбрасывается.
func (h *Hub) PublishAnalysis(response *models.AnalysisResponse) {
	data, err := json.Marshal(Message{
		Type:        MessageTypeAnalysis,
		RecordingID: response.RecordingID,
		Analysis:    response,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal analysis")
		return
	}

	select {
	case h.broadcast <- outbound{recordingID: response.RecordingID, data: data}:
	default:
		h.logger.Warn().Str("recording_id", response.RecordingID).Msg("broadcast channel full, dropping message")
	}
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeRecording подключает клиента к рассылке по записи
func (h *Hub) ServeRecording(w http.ResponseWriter, r *http.Request, recordingID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, 256),
		recordingID: recordingID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump принимает AnalysisRequest и запускает пересчет; результат придет через рассылку
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var req models.AnalysisRequest
		if err := json.Unmarshal(data, &req); err != nil {
			c.sendError("invalid analysis request: " + err.Error())
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		_, err = c.hub.runner.Analyze(ctx, c.recordingID, req.Params)
		cancel()
		if err != nil {
			c.sendError(err.Error())
		}
	}
}

func (c *Client) sendError(message string) {
	data, err := json.Marshal(Message{
		Type:        MessageTypeError,
		RecordingID: c.recordingID,
		Error:       message,
	})
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.logger.Warn().Err(err).Msg("failed to write message")
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
