package chat

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealtrace/mealtrace-bot/internal/bot"
)

// Webhook receives inbound chat events from the relay. Each event is
// acknowledged immediately and handled as an independent task, matching the
// event-driven model of the chat platform.
type Webhook struct {
	handler *bot.Handler
	token   string
}

// NewWebhook creates a Webhook dispatching into the bot handler.
func NewWebhook(handler *bot.Handler, token string) *Webhook {
	return &Webhook{handler: handler, token: token}
}

// RegisterRoutes registers the inbound event routes.
func (w *Webhook) RegisterRoutes(router *gin.RouterGroup) {
	events := router.Group("/chat/events")
	events.Use(w.authorize)
	{
		events.POST("/photo", w.Photo)
		events.POST("/text", w.Text)
	}
}

// authorize checks the shared relay token.
func (w *Webhook) authorize(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+w.token {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid relay token"})
		c.Abort()
	}
}

// PhotoRequest is an inbound photo event.
type PhotoRequest struct {
	Scope     string `json:"scope" binding:"required"`
	ScopeName string `json:"scope_name"`
	SenderID  string `json:"sender_id"`
	MessageID string `json:"message_id" binding:"required"`
	Image     string `json:"image" binding:"required"` // base64
	Caption   string `json:"caption"`
}

// Photo accepts a photo event and starts the analysis flow.
func (w *Webhook) Photo(c *gin.Context) {
	var req PhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo event"})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be base64"})
		return
	}

	go w.handler.HandlePhoto(context.Background(), bot.PhotoEvent{
		Scope:     req.Scope,
		ScopeName: req.ScopeName,
		SenderID:  req.SenderID,
		MessageID: req.MessageID,
		Image:     image,
		Caption:   req.Caption,
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// TextRequest is an inbound text event.
type TextRequest struct {
	Scope     string `json:"scope" binding:"required"`
	ScopeName string `json:"scope_name"`
	SenderID  string `json:"sender_id"`
	MessageID string `json:"message_id" binding:"required"`
	Text      string `json:"text" binding:"required"`
	ReplyTo   string `json:"reply_to"`
}

// Text accepts a text event: a command, a dialog answer, or a reply to an
// analysis message.
func (w *Webhook) Text(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid text event"})
		return
	}

	go w.handler.HandleText(context.Background(), bot.TextEvent{
		Scope:     req.Scope,
		ScopeName: req.ScopeName,
		SenderID:  req.SenderID,
		MessageID: req.MessageID,
		Text:      req.Text,
		ReplyTo:   req.ReplyTo,
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
