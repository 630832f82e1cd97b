package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

var (
	// ErrAppUninstalled means the workspace revoked or deactivated the app's token.
	ErrAppUninstalled = errors.New("slack app is no longer installed")
	ErrMissingScope   = errors.New("slack app is missing a required scope")
	ErrNotFound       = errors.New("slack destination not found")
	ErrDeleted        = errors.New("slack user has been deactivated")
)

// APIError is a Slack "ok": false response.
type APIError struct {
	Method string
	Code   string
	Err    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

type Channel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate"`
}

type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Deleted bool   `json:"deleted"`
}

// Client is the subset of the Slack Web API used for notification delivery.
type Client interface {
	ListChannels(ctx context.Context, token string) ([]Channel, error)
	FindUserByEmail(ctx context.Context, token, email string) (*User, error)
	FindUserByHandle(ctx context.Context, token, handle string) (*User, error)
	PostMessage(ctx context.Context, token, target, text string) error
}

// APIClient calls the Slack Web API with a per-organization bot token.
type APIClient struct {
	apiURL string
	logger *zap.Logger
}

func NewAPIClient(apiURL string, logger *zap.Logger) *APIClient {
	return &APIClient{apiURL: apiURL, logger: logger.Named("slack")}
}

func (c *APIClient) api(token string) *slack.Client {
	opts := []slack.Option{}
	if c.apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(c.apiURL))
	}
	return slack.New(token, opts...)
}

func (c *APIClient) ListChannels(ctx context.Context, token string) ([]Channel, error) {
	api := c.api(token)
	var (
		result []Channel
		cursor string
	)
	for {
		channels, next, err := api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Cursor:          cursor,
			ExcludeArchived: true,
			Limit:           200,
			Types:           []string{"public_channel", "private_channel"},
		})
		if err != nil {
			return nil, classify("conversations.list", err)
		}
		for _, ch := range channels {
			result = append(result, Channel{ID: ch.ID, Name: ch.Name, IsPrivate: ch.IsPrivate})
		}
		if next == "" {
			return result, nil
		}
		cursor = next
	}
}

func (c *APIClient) FindUserByEmail(ctx context.Context, token, email string) (*User, error) {
	u, err := c.api(token).GetUserByEmailContext(ctx, email)
	if err != nil {
		return nil, classify("users.lookupByEmail", err)
	}
	return checkUser(toUser(u))
}

func (c *APIClient) FindUserByHandle(ctx context.Context, token, handle string) (*User, error) {
	users, err := c.api(token).GetUsersContext(ctx)
	if err != nil {
		return nil, classify("users.list", err)
	}
	return matchHandle(users, handle)
}

func (c *APIClient) PostMessage(ctx context.Context, token, target, text string) error {
	_, ts, err := c.api(token).PostMessageContext(ctx, target, slack.MsgOptionText(text, false))
	if err != nil {
		return classify("chat.postMessage", err)
	}
	c.logger.Debug("slack message posted", zap.String("target", target), zap.String("ts", ts))
	return nil
}

func matchHandle(users []slack.User, handle string) (*User, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	for i := range users {
		u := &users[i]
		if strings.EqualFold(u.Name, handle) || strings.EqualFold(u.Profile.DisplayName, handle) {
			return checkUser(toUser(u))
		}
	}
	return nil, fmt.Errorf("no Slack user with handle @%s: %w", handle, ErrNotFound)
}

func toUser(u *slack.User) *User {
	return &User{ID: u.ID, Name: u.Name, Email: u.Profile.Email, Deleted: u.Deleted}
}

func checkUser(u *User) (*User, error) {
	if u.Deleted {
		return nil, fmt.Errorf("slack user %s: %w", u.Name, ErrDeleted)
	}
	return u, nil
}

// classify maps Slack error codes onto the package sentinels.
func classify(method string, err error) error {
	var slackErr slack.SlackErrorResponse
	if !errors.As(err, &slackErr) {
		return fmt.Errorf("slack %s: %w", method, err)
	}
	apiErr := &APIError{Method: method, Code: slackErr.Err}
	switch slackErr.Err {
	case "account_inactive", "token_revoked", "invalid_auth", "not_authed":
		apiErr.Err = ErrAppUninstalled
	case "missing_scope":
		apiErr.Err = ErrMissingScope
	case "users_not_found", "user_not_found", "channel_not_found":
		apiErr.Err = ErrNotFound
	default:
		apiErr.Err = slackErr
	}
	return apiErr
}

// IsAppUninstalled reports whether err means the organization's token is no longer usable.
func IsAppUninstalled(err error) bool {
	return errors.Is(err, ErrAppUninstalled)
}
