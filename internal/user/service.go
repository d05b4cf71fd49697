package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmailTaken = errors.New("identity already registered")

type Service struct {
	repo      *Repository
	jwtSecret string
}

type FleetClaims struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewService(repo *Repository, secret string) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: secret,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     req.Name,
		Email:    email,
		Password: string(hashedPwd),
		Role:     req.Role,
		Truck:    req.Truck,
		Org:      req.Org,
	}

	return s.repo.CreateUser(ctx, u)
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, FleetClaims{
		ID:   u.ID,
		Name: u.Name,
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "go-fleet",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	})

	ss, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: ss,
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (int, string, error) {
	claims := &FleetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return 0, "", err
	}

	return claims.ID, claims.Role, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id int, status string) error {
	if !validAccountStatus(status) {
		return errors.New("unknown account status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) UpdateTruckStatus(ctx context.Context, id int, status string) error {
	if !validTruckStatus(status) {
		return errors.New("unknown truck status")
	}
	return s.repo.UpdateTruckStatus(ctx, id, status)
}
