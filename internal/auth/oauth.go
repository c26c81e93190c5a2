package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Slack OAuth v2 endpoints.
const (
	SlackAuthURL     = "https://slack.com/oauth/v2/authorize"
	slackTokenMethod = "oauth.v2.access"
)

// Scopes requested on install.
var (
	DefaultBotScopes  = []string{"lists:read", "lists:write", "team:read", "users:read"} //nolint:gochecknoglobals // defaults
	DefaultUserScopes = []string{"lists:read", "lists:write", "users:read"}              //nolint:gochecknoglobals // defaults
)

// ErrOAuthDenied is returned when Slack rejects the code exchange.
var ErrOAuthDenied = errors.New("auth: oauth exchange rejected") //nolint:gochecknoglobals // sentinel error

// InstallerConfig configures a Slack app installer.
type InstallerConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	BotScopes    []string
	UserScopes   []string
	// APIURL is the Slack Web API base used for the token exchange.
	APIURL string
	// AuthURL overrides the browser authorize URL.
	AuthURL    string
	HTTPClient *http.Client
}

// Grant is the result of a successful install.
type Grant struct {
	TeamID    string
	TeamName  string
	BotToken  string
	UserToken string
	Scope     string
}

// Installer runs the Slack OAuth v2 install flow.
type Installer struct {
	cfg        *oauth2.Config
	botScopes  []string
	userScopes []string
	hc         *http.Client
}

// NewInstaller creates an Installer.
func NewInstaller(c InstallerConfig) *Installer {
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = "https://slack.com/api/"
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	authURL := c.AuthURL
	if authURL == "" {
		authURL = SlackAuthURL
	}
	bot := c.BotScopes
	if len(bot) == 0 {
		bot = DefaultBotScopes
	}
	user := c.UserScopes
	if user == nil {
		user = DefaultUserScopes
	}

	return &Installer{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  apiURL + slackTokenMethod,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: c.RedirectURL,
		},
		botScopes:  bot,
		userScopes: user,
		hc:         c.HTTPClient,
	}
}

// AuthorizationURL returns the Slack authorize URL for state. Slack expects
// comma-separated scope lists, so scopes are passed as raw parameters.
func (i *Installer) AuthorizationURL(state string) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("scope", strings.Join(i.botScopes, ",")),
	}
	if len(i.userScopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("user_scope", strings.Join(i.userScopes, ",")))
	}
	return i.cfg.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for the bot token and, when user
// scopes were granted, the installing user's token.
func (i *Installer) Exchange(ctx context.Context, code string) (*Grant, error) {
	if i.hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, i.hc)
	}

	tok, err := i.cfg.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode != "" {
			return nil, fmt.Errorf("auth.Exchange: %w: %s", ErrOAuthDenied, re.ErrorCode)
		}
		return nil, fmt.Errorf("auth.Exchange: %w", err)
	}

	g := &Grant{BotToken: tok.AccessToken}
	g.Scope, _ = tok.Extra("scope").(string)

	if team, ok := tok.Extra("team").(map[string]any); ok {
		g.TeamID, _ = team["id"].(string)
		g.TeamName, _ = team["name"].(string)
	}
	if user, ok := tok.Extra("authed_user").(map[string]any); ok {
		g.UserToken, _ = user["access_token"].(string)
	}

	if g.BotToken == "" {
		return nil, fmt.Errorf("auth.Exchange: %w: no bot token", ErrOAuthDenied)
	}
	return g, nil
}
