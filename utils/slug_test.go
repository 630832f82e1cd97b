package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo", "foo"},
		{"foo bar", "foo-bar"},
		{"foo~!$/bar", "foo-bar"},
		{"  Foo Bar  ", "foo-bar"},
		{"foo - bar", "foo-bar"},
		{"foo -- bar", "foo--bar"},
		{"Don't \"quote\" me", "dont-quote-me"},
		{"v1.2_beta", "v1.2_beta"},
		{"--edge--", "edge"},
		{"Café Società", "caf-societ"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.in))
		})
	}
}

func TestGenerateSlugDegenerateInput(t *testing.T) {
	// No fallback is invented for input without usable characters.
	for _, in := range []string{"", "   ", "~!$/", "日本語", "'\""} {
		got := GenerateSlug(in)
		assert.Empty(t, got, in)
		assert.False(t, IsSlugValid(got), in)
	}
}

func TestGenerateSlugOnlyValidCharacters(t *testing.T) {
	inputs := []string{"Hello, World!", "a/b\\c", "tabs\tand\nnewlines", "ümlaut", "x  -  y", "100% done", "#channel", "@user"}
	for _, in := range inputs {
		got := GenerateSlug(in)
		if got == "" {
			continue
		}
		assert.Regexp(t, `^[-_.a-zA-Z0-9]+$`, got, in)
		assert.True(t, IsSlugValid(got), in)
	}
}

func TestGenerateSlugIdempotentOnValidSlugs(t *testing.T) {
	for _, s := range []string{"foo", "foo-bar", "a.b_c", "x--y", "release-2024.05"} {
		require.True(t, IsSlugValid(s), s)
		assert.Equal(t, s, GenerateSlug(s))
		assert.Equal(t, GenerateSlug(s), GenerateSlug(GenerateSlug(s)))
	}
}

func TestIsSlugValid(t *testing.T) {
	assert.True(t, IsSlugValid("foo-bar"))
	assert.True(t, IsSlugValid("Foo"))
	assert.False(t, IsSlugValid(""))
	assert.False(t, IsSlugValid("-foo"))
	assert.False(t, IsSlugValid("foo-"))
	assert.False(t, IsSlugValid("foo bar"))
}

func TestGetCollisionSafeSlug(t *testing.T) {
	assert.Equal(t, "slug-exists-3",
		GetCollisionSafeSlug("slug-exists", []string{"slug-exists", "slug-exists-as-prefix", "existing"}))
	assert.Equal(t, "acme", GetCollisionSafeSlug("acme", nil))
	assert.Equal(t, "acme", GetCollisionSafeSlug("acme", []string{"acme-1", "acme-2"}))

	// Probing starts at the set size and skips taken suffixes.
	assert.Equal(t, "acme-3", GetCollisionSafeSlug("acme", []string{"acme", "acme-2", "acme-2", "acme"}))
	assert.Equal(t, "acme-4", GetCollisionSafeSlug("acme", []string{"acme", "acme-2", "acme-3"}))
}

func TestGetCollisionSafeSlugNeverReturnsExisting(t *testing.T) {
	scopes := [][]string{
		{},
		{"a"},
		{"a", "a-1", "a-2", "a-3"},
		{"a", "a-2", "a-3", "a-4", "a-5"},
		{"b", "a", "a-2"},
	}
	for _, existing := range scopes {
		got := GetCollisionSafeSlug("a", existing)
		assert.NotContains(t, existing, got, fmt.Sprint(existing))
	}
}

func TestCreateWithUniqueSlug(t *testing.T) {
	taken := []string{"acme"}
	list := func(context.Context, string) ([]string, error) { return taken, nil }

	calls := 0
	slug, err := CreateWithUniqueSlug(context.Background(), "Acme", list, func(slug string) error {
		calls++
		if calls == 1 {
			taken = append(taken, slug)
			return fmt.Errorf("insert: %w", ErrDuplicateKey)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "acme-2", slug)
}

func TestCreateWithUniqueSlugErrors(t *testing.T) {
	list := func(context.Context, string) ([]string, error) { return nil, nil }

	_, err := CreateWithUniqueSlug(context.Background(), "!!!", list, func(string) error { return nil })
	assert.True(t, HasCode(err, CodeInvalid))

	_, err = CreateWithUniqueSlug(context.Background(), "acme", list, func(string) error { return ErrDuplicateKey })
	assert.True(t, HasCode(err, CodeConflict))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	boom := errors.New("boom")
	_, err = CreateWithUniqueSlug(context.Background(), "acme", list, func(string) error { return boom })
	assert.ErrorIs(t, err, boom)
}
