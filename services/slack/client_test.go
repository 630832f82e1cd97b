package slack

import (
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"account_inactive", ErrAppUninstalled},
		{"token_revoked", ErrAppUninstalled},
		{"missing_scope", ErrMissingScope},
		{"users_not_found", ErrNotFound},
		{"channel_not_found", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := classify("chat.postMessage", slack.SlackErrorResponse{Err: tt.code})
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, "slack chat.postMessage: "+tt.code, err.Error())
		})
	}
}

func TestClassifyUnknownCode(t *testing.T) {
	err := classify("chat.postMessage", slack.SlackErrorResponse{Err: "is_archived"})
	assert.False(t, IsAppUninstalled(err))
	assert.NotErrorIs(t, err, ErrNotFound)

	transport := errors.New("connection reset")
	err = classify("users.list", transport)
	assert.ErrorIs(t, err, transport)
	assert.False(t, IsAppUninstalled(err))
}

func TestMatchHandle(t *testing.T) {
	users := []slack.User{
		{ID: "U1", Name: "ada"},
		{ID: "U2", Name: "grace.h", Profile: slack.UserProfile{DisplayName: "grace"}},
		{ID: "U3", Name: "linus", Deleted: true},
	}

	u, err := matchHandle(users, "@Ada")
	require.NoError(t, err)
	assert.Equal(t, "U1", u.ID)

	u, err = matchHandle(users, "grace")
	require.NoError(t, err)
	assert.Equal(t, "U2", u.ID)

	_, err = matchHandle(users, "@linus")
	assert.ErrorIs(t, err, ErrDeleted)

	_, err = matchHandle(users, "@nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
