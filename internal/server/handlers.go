package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillpath/internal/ledger"
	"github.com/abhisek/skillpath/internal/quiz"
	"github.com/abhisek/skillpath/internal/store"
	"github.com/abhisek/skillpath/internal/syncbus"
)

// AccountRequest creates an account on first sign-in.
type AccountRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// AccountResponse is an account as served.
type AccountResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	TotalPoints int64     `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	Created     bool      `json:"created,omitempty"`
}

// AwardRequest asks for points to be added.
type AwardRequest struct {
	Points         int64  `json:"points"`
	Reason         string `json:"reason"`
	IdempotencyKey string `json:"idempotency_key"`
}

// AwardResponse reports an applied or duplicate award.
type AwardResponse struct {
	EventID   string    `json:"event_id,omitempty"`
	UserID    string    `json:"user_id"`
	Points    int64     `json:"points"`
	Total     int64     `json:"total_points"`
	Duplicate bool      `json:"duplicate,omitempty"`
	At        time.Time `json:"at,omitzero"`
}

// AwardEventResponse is one history entry.
type AwardEventResponse struct {
	EventID        string    `json:"event_id"`
	Sequence       int64     `json:"sequence"`
	Points         int64     `json:"points"`
	Reason         string    `json:"reason,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	At             time.Time `json:"at"`
}

func toAccount(a store.Account, created bool) AccountResponse {
	return AccountResponse{
		UserID:      a.UserID,
		DisplayName: a.DisplayName,
		Email:       a.Email,
		TotalPoints: a.TotalPoints,
		CreatedAt:   a.CreatedAt,
		Created:     created,
	}
}

func (s *Server) ensureAccount(c *gin.Context) {
	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	acct, created, err := s.ledger.EnsureAccount(c.Request.Context(), req.UserID, req.DisplayName, req.Email)
	if err != nil {
		s.writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, toAccount(acct, created))
}

func (s *Server) getAccount(c *gin.Context) {
	acct, err := s.ledger.Account(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccount(acct, false))
}

func (s *Server) award(c *gin.Context) {
	userID := c.Param("id")
	var req AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	r, err := s.ledger.AwardOnce(ctx, userID, req.Points, req.IdempotencyKey, req.Reason)
	if errors.Is(err, ledger.ErrDuplicateAward) {
		total, terr := s.ledger.Total(ctx, userID)
		if terr != nil {
			s.writeError(c, terr)
			return
		}
		c.JSON(http.StatusOK, AwardResponse{UserID: userID, Points: req.Points, Total: total, Duplicate: true})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	if s.bus != nil {
		if perr := s.bus.Publish(ctx, syncbus.ScopePoints); perr != nil {
			s.logger.Warn("publish invalidation", "error", perr)
		}
	}
	c.JSON(http.StatusCreated, AwardResponse{
		EventID: r.EventID,
		UserID:  r.UserID,
		Points:  r.Points,
		Total:   r.Total,
		At:      r.At,
	})
}

func (s *Server) history(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}
	if limit > 500 {
		limit = 500
	}
	events, err := s.ledger.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]AwardEventResponse, len(events))
	for i, ev := range events {
		out[i] = AwardEventResponse{
			EventID:        ev.ID,
			Sequence:       ev.Sequence,
			Points:         ev.Points,
			Reason:         ev.Reason,
			IdempotencyKey: ev.IdempotencyKey,
			At:             ev.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"awards": out})
}

// writeError maps the ledger error taxonomy onto status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case quiz.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case ledger.IsUnavailable(err):
		s.logger.Error("ledger unavailable", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ledger unavailable"})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
