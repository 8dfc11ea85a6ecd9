package members

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/librakeep/librakeep/pkg/errors"
)

const tokenIssuer = "librakeep"

// AuthService provides registration, login, and token verification
type AuthService struct {
	repo      *Repository
	jwtSecret []byte
	jwtExpiry time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(repo *Repository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
	}
}

// RegisterParams holds the fields needed to register a member
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// AuthResult is returned from successful registration or login
type AuthResult struct {
	Member *Member `json:"member"`
	Token  string  `json:"token"`
}

// TokenClaims represents the JWT claims issued for a member
type TokenClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a new member account and issues a token
func (as *AuthService) Register(params RegisterParams) (*AuthResult, error) {
	if params.Name == "" || params.Email == "" {
		return nil, errors.NewValidationError("name and email are required")
	}
	if len(params.Password) < 6 {
		return nil, errors.NewValidationError("password must be at least 6 characters long")
	}

	role := params.Role
	if role == "" {
		role = RoleMember
	}
	if !role.IsValid() {
		return nil, errors.NewValidationError("invalid role: " + role.String())
	}

	existing, err := as.repo.GetByEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewAlreadyExistsError("email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	member := &Member{
		Name:     params.Name,
		Email:    params.Email,
		Role:     role,
		Password: string(hash),
	}
	if err := as.repo.Create(member); err != nil {
		return nil, err
	}

	token, err := as.GenerateToken(member)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Member: sanitize(member), Token: token}, nil
}

// Login authenticates a member by email and password. Unknown email and
// wrong password are indistinguishable to the caller.
func (as *AuthService) Login(email, password string) (*AuthResult, error) {
	member, err := as.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	if bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(password)) != nil {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	token, err := as.GenerateToken(member)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Member: sanitize(member), Token: token}, nil
}

// GenerateToken issues a signed JWT for a member
func (as *AuthService) GenerateToken(member *Member) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		Role: member.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.jwtExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.jwtSecret)
	if err != nil {
		return "", errors.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// ValidateToken verifies a JWT and resolves the member it was issued for
func (as *AuthService) ValidateToken(tokenString string) (*Member, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewInvalidTokenError()
		}
		return as.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.NewInvalidTokenError()
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.NewInvalidTokenError()
	}

	member, err := as.repo.GetByID(claims.Subject)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.NewUnauthorizedError("member no longer exists")
	}

	return sanitize(member), nil
}

// sanitize strips the credential hash before a member leaves the package
func sanitize(m *Member) *Member {
	out := *m
	out.Password = ""
	return &out
}
