package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidClaim = errors.New("invalid token claims")
)

// CertificateClaims are the claims carried by a signed completion certificate
type CertificateClaims struct {
	EngagementID string `json:"engagement_id"`
	MenteeID     string `json:"mentee_id"`
	MentorID     string `json:"mentor_id"`
	Topic        string `json:"topic"`
	jwt.RegisteredClaims
}

// IssuedDate returns the certificate issue time
func (c *CertificateClaims) IssuedDate() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.UTC()
}

// CertificateSigner signs and validates certificate tokens.
// Certificates do not expire.
type CertificateSigner struct {
	secret []byte
	issuer string
}

// NewCertificateSigner creates a new CertificateSigner
func NewCertificateSigner(secret string, issuer string) *CertificateSigner {
	return &CertificateSigner{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Sign creates an HS256 token for the certificate. The subject is the engagement id.
func (s *CertificateSigner) Sign(engagementID, menteeID, mentorID, topic string, issued time.Time) (string, error) {
	claims := CertificateClaims{
		EngagementID: engagementID,
		MenteeID:     menteeID,
		MentorID:     mentorID,
		Topic:        topic,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issued),
			Issuer:   s.issuer,
			Subject:  engagementID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign certificate: %w", err)
	}

	return signedToken, nil
}

// Verify validates a certificate token and returns its claims
func (s *CertificateSigner) Verify(tokenString string) (*CertificateClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CertificateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CertificateClaims)
	if !ok || !token.Valid || claims.EngagementID == "" || claims.Subject != claims.EngagementID {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}
