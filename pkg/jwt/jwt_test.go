package jwt

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerify(t *testing.T) {
	token, err := Generate("secret", 42, RoleVendedor, "purchases-api", 5)
	require.NoError(t, err)

	v, err := NewVerifier("secret", "purchases-api")
	require.NoError(t, err)

	p, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: 42, Role: RoleVendedor}, p)
}

func TestVerify_Rechazos(t *testing.T) {
	valid, err := Generate("secret", 1, RoleAdmin, "purchases-api", 5)
	require.NoError(t, err)
	expired, err := Generate("secret", 1, RoleAdmin, "purchases-api", -5)
	require.NoError(t, err)
	otherIssuer, err := Generate("secret", 1, RoleAdmin, "otra-api", 5)
	require.NoError(t, err)
	noUser, err := Generate("secret", 0, RoleAdmin, "purchases-api", 5)
	require.NoError(t, err)
	hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, gojwt.MapClaims{
		"user_id": 1, "role": RoleAdmin, "iss": "purchases-api", "exp": 4102444800,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"firma incorrecta", "otro", valid},
		{"expirado", "secret", expired},
		{"issuer distinto", "secret", otherIssuer},
		{"sin user_id", "secret", noUser},
		{"algoritmo no permitido", "secret", hs512},
		{"malformado", "secret", "a.b.c"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := NewVerifier(tc.secret, "purchases-api")
			require.NoError(t, err)
			_, err = v.Verify(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestVerify_SinIssuerConfiguradoAceptaCualquiera(t *testing.T) {
	token, err := Generate("secret", 3, RoleCliente, "otra-api", 5)
	require.NoError(t, err)

	v, err := NewVerifier("secret", "")
	require.NoError(t, err)
	p, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.UserID)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", 1, RoleAdmin, "x", 5)
	assert.ErrorIs(t, err, errEmptySecret)
	_, err = NewVerifier("", "x")
	assert.ErrorIs(t, err, errEmptySecret)
}
