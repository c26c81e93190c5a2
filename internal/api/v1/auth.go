package v1

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"

	"github.com/gosuda/slackdone/internal/auth"
)

// Error codes appended to the base URL when an install fails.
const (
	installErrNoCode       = "no_code"
	installErrInvalidState = "invalid_state"
	installErrFailed       = "oauth_failed"
)

type RedirectOutput struct {
	Location string `header:"Location"`
}

type CallbackInput struct {
	Code  string `query:"code" doc:"OAuth authorization code"`
	State string `query:"state" doc:"Signed state issued by the install endpoint"`
	Error string `query:"error" doc:"Set by Slack when the user cancels"`
}

// RegisterAuthRoutes mounts the Slack install flow. installer may be nil when
// the Slack app credentials are not configured. Both endpoints answer with a
// redirect; the callback always lands on baseURL with either ?workspace=<id>
// or ?error=<code>.
func RegisterAuthRoutes(api huma.API, installer Installer, baseURL string) {
	huma.Register(api, huma.Operation{
		OperationID:   "slack-install",
		Method:        http.MethodGet,
		Path:          "/auth/install",
		Summary:       "Redirect to the Slack app install page",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusFound,
	}, func(_ context.Context, _ *struct{}) (*RedirectOutput, error) {
		if installer == nil {
			return nil, huma.Error503ServiceUnavailable("slack oauth is not configured")
		}
		u, err := installer.InstallURL()
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to start install", err)
		}
		return &RedirectOutput{Location: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "slack-callback",
		Method:        http.MethodGet,
		Path:          "/auth/callback",
		Summary:       "Complete the Slack app install",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusFound,
	}, func(ctx context.Context, input *CallbackInput) (*RedirectOutput, error) {
		if installer == nil {
			return nil, huma.Error503ServiceUnavailable("slack oauth is not configured")
		}
		if input.Error != "" {
			return &RedirectOutput{Location: withQuery(baseURL, "error", input.Error)}, nil
		}

		workspace, err := installer.CompleteInstall(ctx, input.Code, input.State)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("v1: slack install failed")
			return &RedirectOutput{Location: withQuery(baseURL, "error", installErrorCode(err))}, nil
		}
		return &RedirectOutput{Location: withQuery(baseURL, "workspace", workspace.ID)}, nil
	})
}

func installErrorCode(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCode):
		return installErrNoCode
	case errors.Is(err, auth.ErrInvalidState):
		return installErrInvalidState
	default:
		return installErrFailed
	}
}

// withQuery sets key=value on base, keeping any query it already has.
func withQuery(base, key, value string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
