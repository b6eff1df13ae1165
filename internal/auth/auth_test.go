package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "ada@example.com", Role: domain.RoleAdmin}
}

func TestHasher_HashAndCompare(t *testing.T) {
	h := &Hasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, h.Compare(hash, "secret1"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
	assert.ErrorIs(t, h.Compare("", "secret1"), ErrPasswordMismatch)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("k", 24*time.Hour)
	u := testUser()

	raw, err := issuer.Issue(u)
	require.NoError(t, err)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.WithinDuration(t, claims.IssuedAt.Add(24*time.Hour), claims.ExpiresAt.Time, time.Second)

	id, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.True(t, id.IsAdmin())
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("k", time.Hour)
	raw, err := issuer.Issue(testUser())
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := NewTokenIssuer("other", time.Hour).Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenIssuer("k", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	want := Identity{UserID: uuid.New(), Email: "x@y.z", Role: domain.RoleUser}
	got, ok := IdentityFromContext(WithIdentity(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.False(t, got.IsAdmin())
}
