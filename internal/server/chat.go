package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/webchat/internal/chat"
)

// Answerer runs the chat pipeline for one message.
type Answerer interface {
	Answer(ctx context.Context, message string) (chat.Result, error)
}

// ChatHandler exposes the pipeline over POST /api/chat.
type ChatHandler struct {
	Service Answerer
	Logger  *log.Logger
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.chat)
}

// chat binds the request, runs the pipeline and shapes the response.
// A malformed body is a 400; any pipeline failure collapses to a generic
// 500 so the caller never sees a partial result.
func (h *ChatHandler) chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		chatRequests.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		chatRequests.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	res, err := h.Service.Answer(c.Request().Context(), req.Message)
	if err != nil {
		h.Logger.Printf("chat pipeline error: %v", err)
		chatRequests.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, HTTPError{Error: "Failed to process request"})
	}

	chatRequests.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, res)
}
