package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gosuda/slackdone/internal/domain"
	"github.com/gosuda/slackdone/internal/slacklists"
)

// ErrMissingCode is returned when the callback carries no code.
var ErrMissingCode = errors.New("auth: missing oauth code") //nolint:gochecknoglobals // sentinel error

// TeamLookup names the workspace a token belongs to.
// *slacklists.Client satisfies this interface.
type TeamLookup interface {
	TeamInfo(ctx context.Context, token string) (slacklists.Team, error)
}

// Service connects Slack workspaces: it starts installs and turns callbacks
// into stored workspaces.
type Service struct {
	installer  *Installer
	states     *StateSigner
	teams      TeamLookup
	workspaces domain.WorkspaceRepository
	logger     zerolog.Logger
}

// NewService creates a new auth service.
func NewService(installer *Installer, states *StateSigner, teams TeamLookup, workspaces domain.WorkspaceRepository, logger zerolog.Logger) *Service {
	return &Service{
		installer:  installer,
		states:     states,
		teams:      teams,
		workspaces: workspaces,
		logger:     logger,
	}
}

// InstallURL returns the Slack authorize URL with a fresh signed state.
func (s *Service) InstallURL() (string, error) {
	state, err := s.states.Issue()
	if err != nil {
		return "", fmt.Errorf("auth.InstallURL: %w", err)
	}
	return s.installer.AuthorizationURL(state), nil
}

// CompleteInstall verifies state, exchanges code and stores the workspace
// under its Slack team id. Reinstalling replaces the stored tokens.
func (s *Service) CompleteInstall(ctx context.Context, code, state string) (*domain.Workspace, error) {
	if code == "" {
		return nil, fmt.Errorf("auth.CompleteInstall: %w", ErrMissingCode)
	}
	if err := s.states.Verify(state); err != nil {
		return nil, fmt.Errorf("auth.CompleteInstall: %w", err)
	}

	grant, err := s.installer.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth.CompleteInstall: %w", err)
	}

	team, err := s.teams.TeamInfo(ctx, grant.BotToken)
	switch {
	case err == nil:
	case grant.TeamID != "":
		s.logger.Warn().Err(err).Str("team_id", grant.TeamID).
			Msg("auth: team.info failed, using team from oauth response")
		team = slacklists.Team{ID: grant.TeamID, Name: grant.TeamName}
	default:
		return nil, fmt.Errorf("auth.CompleteInstall: %w", err)
	}
	if team.Name == "" {
		team.Name = team.ID
	}

	now := time.Now().UTC()
	ws := &domain.Workspace{
		ID:        team.ID,
		Name:      team.Name,
		BotToken:  grant.BotToken,
		UserToken: grant.UserToken,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.workspaces.Upsert(ctx, ws); err != nil {
		return nil, fmt.Errorf("auth.CompleteInstall: %w", err)
	}

	s.logger.Info().Str("workspace_id", ws.ID).Bool("user_token", ws.UserToken != "").
		Msg("auth: workspace connected")
	return ws, nil
}
