package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por el middleware RBAC.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
	RoleCliente   = "cliente"
)

// leeway tolera desfase de reloj entre el emisor y esta API.
const leeway = 30 * time.Second

var errEmptySecret = errors.New("jwt: secret vacío")

// Claims claims estándar más el usuario y su rol. El rol viaja en el token
// para que el RBAC no consulte la BD.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// Principal identidad extraída de un token válido.
type Principal struct {
	UserID int64
	Role   string
}

// Generate firma un token HS256 con userID y role. La API solo verifica; Generate
// lo usan los tests y los scripts de desarrollo que necesitan un token local.
func Generate(secret string, userID int64, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID: userID,
		Role:   role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verifier valida tokens emitidos con un secreto compartido.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier construye el verificador. Si issuer no está vacío el claim iss debe coincidir.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify valida firma, expiración e issuer y devuelve la identidad del token.
func (v *Verifier) Verify(tokenString string) (Principal, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("jwt: %w", err)
	}
	if claims.UserID <= 0 {
		return Principal{}, errors.New("jwt: user_id ausente")
	}
	return Principal{UserID: claims.UserID, Role: claims.Role}, nil
}
