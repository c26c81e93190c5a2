package slacklists

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/gosuda/slackdone/internal/board"
)

// usersPerCall is the largest id batch users.info accepts.
const usersPerCall = 30

var _ board.UserResolver = (*Client)(nil) //nolint:gochecknoglobals // compile-time check

// Team identifies the workspace a token belongs to.
type Team struct {
	ID     string
	Name   string
	Domain string
}

func (c *Client) slackAPI(token string) *slack.Client {
	return slack.New(token, slack.OptionAPIURL(c.apiURL), slack.OptionHTTPClient(c.hc))
}

// TeamInfo returns the workspace that issued token.
func (c *Client) TeamInfo(ctx context.Context, token string) (Team, error) {
	if err := c.wait(ctx); err != nil {
		return Team{}, err
	}

	info, err := c.slackAPI(token).GetTeamInfoContext(ctx)
	if err != nil {
		return Team{}, fmt.Errorf("slacklists.TeamInfo: %w", translate("team.info", err))
	}
	return Team{ID: info.ID, Name: info.Name, Domain: info.Domain}, nil
}

// ResolveUsers looks up profiles for ids in batches. Failed batches are
// skipped; the profiles that did resolve are returned together with the
// joined error.
func (c *Client) ResolveUsers(ctx context.Context, token string, ids []string) (map[string]board.UserProfile, error) {
	out := make(map[string]board.UserProfile, len(ids))
	api := c.slackAPI(token)

	var errs []error
	for start := 0; start < len(ids); start += usersPerCall {
		batch := ids[start:min(start+usersPerCall, len(ids))]

		if err := c.wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		users, err := api.GetUsersInfoContext(ctx, batch...)
		if err != nil {
			errs = append(errs, translate("users.info", err))
			continue
		}
		for _, u := range *users {
			out[u.ID] = profileOf(u)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return out, fmt.Errorf("slacklists.ResolveUsers: %w", err)
	}
	return out, nil
}

func profileOf(u slack.User) board.UserProfile {
	display := u.Profile.DisplayName
	if display == "" {
		display = u.RealName
	}
	if display == "" {
		display = u.Name
	}
	if display == "" {
		display = u.ID
	}
	return board.UserProfile{
		ID:          u.ID,
		Name:        u.Name,
		DisplayName: display,
		Avatar:      u.Profile.Image72,
	}
}

// translate maps slack-go error types onto this package's errors.
func translate(method string, err error) error {
	var rl *slack.RateLimitedError
	if errors.As(err, &rl) {
		return fmt.Errorf("%w (retry after %s)", ErrRateLimited, rl.RetryAfter)
	}
	var se slack.SlackErrorResponse
	if errors.As(err, &se) {
		return &APIError{Method: method, Code: se.Err}
	}
	return err
}
