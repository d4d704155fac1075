package service

import (
	"context"
	"errors"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ScopeService decides which book a request acts on
type ScopeService struct {
	teamRepo domain.TeamRepository
}

// NewScopeService creates a new ScopeService
func NewScopeService(teamRepo domain.TeamRepository) *ScopeService {
	return &ScopeService{teamRepo: teamRepo}
}

// Resolve returns the personal scope of userID when teamID is 0, and the team
// scope when the user is a member of that active team.
func (s *ScopeService) Resolve(ctx context.Context, userID, teamID int32) (domain.Scope, error) {
	if userID <= 0 {
		return domain.Scope{}, domain.ErrUnauthorized
	}
	if teamID < 0 {
		return domain.Scope{}, domain.ErrInvalidInput
	}
	if teamID == 0 {
		return domain.PersonalScope(userID), nil
	}

	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, domain.ErrTeamNotFound) {
			return domain.Scope{}, err
		}
		log.Error().Err(err).Int32("team_id", teamID).Msg("Failed to load team")
		return domain.Scope{}, err
	}

	member, err := s.teamRepo.IsMember(ctx, teamID, userID)
	if err != nil {
		return domain.Scope{}, err
	}
	if !member {
		return domain.Scope{}, domain.ErrNotTeamMember
	}
	return domain.TeamScope(teamID), nil
}
