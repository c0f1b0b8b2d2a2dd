package handler

import (
	"io"

	"gamefinder/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// sseHeaders must be written before the first event goes out, so handlers
// that push an initial snapshot call this themselves.
func sseHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
}

// streamTopic attaches the caller to a hub topic as an SSE stream until the
// client disconnects. The subscription is always torn down on exit so no
// listener outlives its request.
func streamTopic(c *gin.Context, topic string) {
	sseHeaders(c)

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(topic, client)
	defer hub.GlobalHub.Unsubscribe(topic, client)

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
