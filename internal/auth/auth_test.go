package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bullfinance/internal/store"
	"bullfinance/internal/store/memory"
)

const testSecret = "test-secret-0123456789"

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	token, expires, err := ti.Issue("user-1", "company-1", "ana@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := ti.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "company-1", claims.CompanyID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	token, _, err := ti.Issue("user-1", "company-1", "ana@example.com")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewTokenIssuer("another-secret-987654", time.Hour).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenIssuer(testSecret, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID: "user-1", CompanyID: "company-1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ti.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ti.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	ti := NewTokenIssuer(testSecret, time.Hour)
	svc := NewService(memory.New(), ti)

	session, err := svc.Register(ctx, RegisterInput{
		CompanyName: "Padaria Boi", CNPJ: "12.345.678/0001-90",
		Name: "Ana", Email: "  Ana@Example.com ", Password: "segredo123",
	})
	require.NoError(t, err)
	require.NotNil(t, session.Company)
	assert.Equal(t, "ana@example.com", session.User.Email)
	assert.Equal(t, session.Company.ID, session.User.CompanyID)

	claims, err := ti.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Company.ID, claims.CompanyID)

	login, err := svc.Login(ctx, "ANA@example.com", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)
	assert.Nil(t, login.Company)

	_, err = svc.Login(ctx, "ana@example.com", "errado1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ghost@example.com", "segredo123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, RegisterInput{CompanyName: "Outra", Name: "Bia", Email: "ana@example.com", Password: "segredo123"})
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestService_RegisterValidation(t *testing.T) {
	svc := NewService(memory.New(), NewTokenIssuer(testSecret, time.Hour))
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"bad email", RegisterInput{CompanyName: "A", Name: "B", Email: "nope", Password: "segredo123"}, ErrInvalidEmail},
		{"missing company", RegisterInput{Name: "B", Email: "b@example.com", Password: "segredo123"}, nil},
		{"weak password", RegisterInput{CompanyName: "A", Name: "B", Email: "b@example.com", Password: "123"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	ti := NewTokenIssuer(testSecret, time.Hour)
	token, _, err := ti.Issue("user-1", "company-1", "ana@example.com")
	require.NoError(t, err)

	var seen *Claims
	h := ti.Middleware(func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"basic", "Basic abc", http.StatusUnauthorized},
		{"tampered", "Bearer " + token + "x", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "company-1", seen.CompanyID)
			}
		})
	}
}
