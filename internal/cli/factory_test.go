package cli

import (
	"testing"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineStep(t *testing.T) {
	form := &domain.Form{
		ID: "f",
		Steps: []domain.Step{
			{ID: "s1"},
			{ID: "s2"},
		},
	}

	t.Run("explicit step", func(t *testing.T) {
		step, err := determineStep(form, "s2")
		require.NoError(t, err)
		assert.Equal(t, "s2", step.ID)
	})

	t.Run("defaults to first", func(t *testing.T) {
		step, err := determineStep(form, "")
		require.NoError(t, err)
		assert.Equal(t, "s1", step.ID)
	})

	t.Run("unknown step", func(t *testing.T) {
		_, err := determineStep(form, "s9")
		assert.Error(t, err)
	})

	t.Run("no steps", func(t *testing.T) {
		_, err := determineStep(&domain.Form{ID: "empty"}, "")
		assert.Error(t, err)
	})
}

func TestParseCommand(t *testing.T) {
	cmd, args := parseCommand("Answer mood feeling good")
	assert.Equal(t, "answer", cmd)
	assert.Equal(t, []string{"mood", "feeling", "good"}, args)

	cmd, args = parseCommand("view")
	assert.Equal(t, "view", cmd)
	assert.Empty(t, args)
}

func TestParseAnswerValue(t *testing.T) {
	t.Run("likert parses number", func(t *testing.T) {
		q := &domain.Question{Type: domain.TypeLikert}
		assert.Equal(t, float64(4), parseAnswerValue(q, "4"))
	})

	t.Run("likert keeps junk as text", func(t *testing.T) {
		q := &domain.Question{Type: domain.TypeLikert}
		assert.Equal(t, "often", parseAnswerValue(q, "often"))
	})

	t.Run("tags split on commas", func(t *testing.T) {
		q := &domain.Question{Type: domain.TypeTags}
		assert.Equal(t, []string{"go", "redis"}, parseAnswerValue(q, "go, redis, "))
	})

	t.Run("text passes through", func(t *testing.T) {
		q := &domain.Question{Type: domain.TypeLongText}
		assert.Equal(t, "a long day", parseAnswerValue(q, "a long day"))
	})
}

func TestCreateStore_RejectsConflictingBackends(t *testing.T) {
	_, err := createStore(RunOptions{RedisURL: "redis://localhost:6379", StoreDir: t.TempDir()})
	assert.Error(t, err)
}

func TestBuildMiddleware(t *testing.T) {
	t.Run("empty by default", func(t *testing.T) {
		mws, err := buildMiddleware(RunOptions{})
		require.NoError(t, err)
		assert.Empty(t, mws)
	})

	t.Run("rejects short key", func(t *testing.T) {
		_, err := buildMiddleware(RunOptions{EncryptionKey: "abcd"})
		assert.Error(t, err)
	})

	t.Run("accepts 32-byte hex key with pii", func(t *testing.T) {
		key := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
		mws, err := buildMiddleware(RunOptions{EncryptionKey: key, PIIPatterns: []string{"email"}})
		require.NoError(t, err)
		assert.Len(t, mws, 2)
	})
}
