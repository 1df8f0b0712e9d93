package middleware_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/persistence/middleware"
	"github.com/espalier-dev/espalier/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryption_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}),
	)
	tests.ResponseStoreContractTest(t, store)
}

func TestEncryption_StoresOpaqueEnvelope(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := middleware.Chain(inner,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}),
	)

	require.NoError(t, store.Set(ctx, "email", &domain.Response{Value: "ada@example.com"}))

	// The inner store never sees the plaintext.
	raw, err := inner.Get(ctx, "email")
	require.NoError(t, err)
	wrapper, ok := raw.Value.(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, wrapper["__encrypted__"], "ada@example.com")

	// Round trip through the middleware restores it.
	resp, err := store.Get(ctx, "email")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", resp.Value)
}

func TestEncryption_KeyRotation(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()

	oldStore := middleware.Chain(inner,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}),
	)
	require.NoError(t, oldStore.Set(ctx, "q1", &domain.Response{Value: "secret"}))

	// New active key, old key as fallback: old data still readable.
	rotated := middleware.Chain(inner,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    testKey(2),
			FallbackKeys: [][]byte{testKey(1)},
		}),
	)
	resp, err := rotated.Get(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "secret", resp.Value)

	// Without the fallback, decryption fails.
	wrongKey := middleware.Chain(inner,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(3)}),
	)
	_, err = wrongKey.Get(ctx, "q1")
	assert.Error(t, err)
}

func TestEncryption_RejectsPlainResponses(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	require.NoError(t, inner.Set(ctx, "q1", &domain.Response{Value: "plain"}))

	store := middleware.Chain(inner,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}),
	)
	_, err := store.Get(ctx, "q1")
	assert.Error(t, err)
}

func TestPII_MasksMatchingQuestions(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := middleware.Chain(inner,
		middleware.NewPIIMiddleware([]string{"(?i)email", "^ssn_"}),
	)

	require.NoError(t, store.Set(ctx, "contact_email", &domain.Response{Value: "ada@example.com", Comment: "work"}))
	require.NoError(t, store.Set(ctx, "mood", &domain.Response{Value: "good"}))

	masked, err := inner.Get(ctx, "contact_email")
	require.NoError(t, err)
	assert.Equal(t, "***", masked.Value)
	assert.Equal(t, "***", masked.Comment)

	plain, err := inner.Get(ctx, "mood")
	require.NoError(t, err)
	assert.Equal(t, "good", plain.Value)
}

func TestPII_DoesNotMutateCaller(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewPIIMiddleware([]string{"email"}),
	)
	resp := &domain.Response{Value: "ada@example.com"}
	require.NoError(t, store.Set(context.Background(), "email", resp))
	assert.Equal(t, "ada@example.com", resp.Value)
}

func TestChain_Order(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()

	// PII outermost: values are masked before they are encrypted.
	store := middleware.Chain(inner,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)}),
		middleware.NewPIIMiddleware([]string{"email"}),
	)

	require.NoError(t, store.Set(ctx, "email", &domain.Response{Value: "ada@example.com"}))
	resp, err := store.Get(ctx, "email")
	require.NoError(t, err)
	assert.Equal(t, "***", resp.Value)
}
