package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TeamIDHeader selects a team book when the query string does not
const TeamIDHeader = "X-Team-ID"

// ScopeResolver maps the caller and the requested team onto a scope
type ScopeResolver interface {
	Resolve(ctx context.Context, userID, teamID int32) (domain.Scope, error)
}

// requestTeamID reads the optional team id from ?teamId= or the X-Team-ID header
func requestTeamID(c echo.Context) (int32, bool) {
	raw := c.QueryParam("teamId")
	if raw == "" {
		raw = c.Request().Header.Get(TeamIDHeader)
	}
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id < 0 {
		return 0, false
	}
	return int32(id), true
}

// resolveScope writes the error response itself and returns ok=false when the
// request cannot act on any scope
func resolveScope(c echo.Context, resolver ScopeResolver) (domain.Scope, bool, error) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return domain.Scope{}, false, NewUnauthorizedError(c, "User required")
	}

	teamID, ok := requestTeamID(c)
	if !ok {
		return domain.Scope{}, false, NewValidationError(c, "Invalid team ID", []ValidationError{
			{Field: "teamId", Message: "Must be a positive integer"},
		})
	}

	scope, err := resolver.Resolve(c.Request().Context(), userID, teamID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTeamNotFound):
			return domain.Scope{}, false, NewNotFoundError(c, "Team not found")
		case errors.Is(err, domain.ErrNotTeamMember):
			return domain.Scope{}, false, NewForbiddenError(c, "Not a member of this team")
		case errors.Is(err, domain.ErrUnauthorized):
			return domain.Scope{}, false, NewUnauthorizedError(c, "User required")
		case errors.Is(err, domain.ErrInvalidInput):
			return domain.Scope{}, false, NewValidationError(c, "Invalid team ID", nil)
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("team_id", teamID).Msg("Failed to resolve scope")
		return domain.Scope{}, false, NewInternalError(c, "Failed to resolve scope")
	}
	return scope, true, nil
}

// parsePolarity accepts "expense"/"income" as well as 0/1
func parsePolarity(s string) (domain.Polarity, bool) {
	switch s {
	case "expense", "0":
		return domain.PolarityExpense, true
	case "income", "1":
		return domain.PolarityIncome, true
	}
	return 0, false
}

func parseID(c echo.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}
