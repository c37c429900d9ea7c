package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tone-drift/internal/domain"
)

const proposalTokenType = "signature_proposal"

// ProposalTokenService firma los tokens que viajan en los botones de aprobacion.
// El token solo identifica la propuesta (marca + jti); el contenido vive en el ProposalStore.
type ProposalTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type ProposalClaims struct {
	BrandID   string `json:"brand_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var ErrProposalExpired = errors.New("correction proposal expired")

func NewProposalTokenService(secret string, ttl time.Duration) *ProposalTokenService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &ProposalTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "tone-drift",
	}
}

func (s *ProposalTokenService) TTL() time.Duration {
	return s.ttl
}

func (s *ProposalTokenService) Sign(brandID, jti string, now time.Time) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("%w: signing secret not configured", domain.ErrProposalInvalid)
	}
	if strings.TrimSpace(brandID) == "" || strings.TrimSpace(jti) == "" {
		return "", domain.ErrProposalInvalid
	}
	claims := ProposalClaims{
		BrandID:   brandID,
		TokenType: proposalTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   brandID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *ProposalTokenService) Parse(tokenString string) (ProposalClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return ProposalClaims{}, domain.ErrProposalInvalid
	}

	var claims ProposalClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ProposalClaims{}, fmt.Errorf("%w: %w", domain.ErrProposalInvalid, ErrProposalExpired)
		}
		return ProposalClaims{}, domain.ErrProposalInvalid
	}

	if claims.TokenType != proposalTokenType ||
		claims.Issuer != s.issuer ||
		strings.TrimSpace(claims.BrandID) == "" ||
		claims.Subject != claims.BrandID ||
		strings.TrimSpace(claims.ID) == "" {
		return ProposalClaims{}, domain.ErrProposalInvalid
	}
	return claims, nil
}
