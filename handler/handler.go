package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"statute-agent/internal/usecase"
)

const (
	msgCouldNotUnderstand = "I couldn't understand that. Please try again."
	msgTrouble            = "I'm having trouble processing requests right now. Please try again."
	msgAssetError         = "Error loading chat interface."

	fixedTypingMillis     = 500
	defaultRequestTimeout = 30 * time.Second
)

// dispatcher is the consumer-side view of the turn dispatcher.
type dispatcher interface {
	Handle(ctx context.Context, sessionID, utterance string) usecase.DispatchResult
}

type chatRequest struct {
	UserInput string `json:"user_input"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response       string   `json:"response"`
	Suggestions    []string `json:"suggestions"`
	TypingDuration int      `json:"typing_duration"`
	SessionID      string   `json:"session_id"`
}

// Handler wires the chat dispatcher and static assets into gin routes.
type Handler struct {
	dispatch dispatcher
	webDir   string
	timeout  time.Duration
	logger   *slog.Logger
}

func NewHandler(d dispatcher, webDir string, timeout time.Duration, logger *slog.Logger) (*Handler, error) {
	if d == nil {
		return nil, errors.New("handler: dispatcher must not be nil")
	}
	if strings.TrimSpace(webDir) == "" {
		return nil, errors.New("handler: web dir must not be empty")
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatch: d, webDir: webDir, timeout: timeout, logger: logger}, nil
}

// Register installs all routes on the router.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(corsMiddleware())
	r.POST("/chat", h.Chat)
	r.GET("/", h.Index)
	r.GET("/chat.js", h.ChatJS)
}

// Chat handles one conversational turn. Every outcome, including internal
// failure, resolves to HTTP 200 with an apologetic response body; protocol
// errors never reach the client.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("malformed chat request", "err", err)
		c.JSON(http.StatusOK, chatResponse{
			Response:       msgTrouble,
			Suggestions:    []string{},
			TypingDuration: fixedTypingMillis,
		})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	input := strings.TrimSpace(req.UserInput)
	if input == "" {
		c.JSON(http.StatusOK, chatResponse{
			Response:       msgCouldNotUnderstand,
			Suggestions:    []string{},
			TypingDuration: fixedTypingMillis,
			SessionID:      sessionID,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result := h.dispatch.Handle(ctx, sessionID, input)

	suggestions := result.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	c.JSON(http.StatusOK, chatResponse{
		Response:       result.Text,
		Suggestions:    suggestions,
		TypingDuration: result.TypingDuration,
		SessionID:      sessionID,
	})
}

// Index serves the chat UI page.
func (h *Handler) Index(c *gin.Context) {
	h.serveAsset(c, "index.html", "text/html; charset=utf-8")
}

// ChatJS serves the front-end script.
func (h *Handler) ChatJS(c *gin.Context) {
	h.serveAsset(c, "chat.js", "application/javascript")
}

func (h *Handler) serveAsset(c *gin.Context, name, contentType string) {
	data, err := os.ReadFile(filepath.Join(h.webDir, name))
	if err != nil {
		h.logger.Error("failed to read static asset", "asset", name, "err", err)
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(msgAssetError))
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// corsMiddleware leaves the surface open for the web front-end.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
