package handlers

import (
	"context"
	"net/http"
	"strconv"

	"othello_server/internal/domain"

	"github.com/gin-gonic/gin"
)

type FinishedGameLister interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.FinishedGame, error)
}

type GamesHandler struct {
	games FinishedGameLister
}

func NewGamesHandler(games FinishedGameLister) *GamesHandler {
	return &GamesHandler{games: games}
}

// Recent returns the most recently finished games. ?limit= caps the list.
func (h *GamesHandler) Recent(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	games, err := h.games.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get games"})
		return
	}
	if games == nil {
		games = []*domain.FinishedGame{}
	}

	c.JSON(http.StatusOK, gin.H{"games": games})
}
