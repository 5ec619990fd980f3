package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/missiondeck/missiondeck/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAgentAlreadyExists = errors.New("auth: agent already exists")
	ErrAgentNotFound      = errors.New("auth: agent not found")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Service provides authentication for agents. Agents are the login
// principals: the same identities that claim tasks also hold credentials.
type Service struct {
	agents     domain.AgentRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(agents domain.AgentRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		agents:     agents,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates a new agent with credentials. The password is hashed with
// argon2id before storage.
func (s *Service) Register(ctx context.Context, id, name, password string, role domain.AgentRole) (*domain.Agent, error) {
	existing, err := s.agents.GetByID(ctx, id)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Register: %w", ErrAgentAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	agent := &domain.Agent{
		ID:           id,
		Name:         name,
		Role:         role,
		Status:       domain.AgentStatusOnline,
		Skills:       []string{},
		LastActive:   time.Now(),
		PasswordHash: hash,
	}

	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return agent, nil
}

// Login validates credentials and returns access + refresh JWT tokens.
func (s *Service) Login(ctx context.Context, id, password string) (accessToken, refreshToken string, err error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if agent.PasswordHash == "" || !verifyPassword(password, agent.PasswordHash) {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	accessToken, err = IssueAccessToken(s.jwtSecret, agent.ID, string(agent.Role), s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	refreshToken, err = IssueRefreshToken(s.jwtSecret, agent.ID, string(agent.Role), s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshToken validates a refresh token and issues a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	// Verify the agent still exists and fetch its current role.
	agent, err := s.agents.GetByID(ctx, claims.AgentID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrAgentNotFound)
	}

	newAccess, err := IssueAccessToken(s.jwtSecret, agent.ID, string(agent.Role), s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	return newAccess, nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	var saltHex, hashHex string
	for i := range len(encoded) {
		if encoded[i] == '$' {
			saltHex = encoded[:i]
			hashHex = encoded[i+1:]
			break
		}
	}

	if saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Constant-time comparison to prevent timing attacks.
	if len(computed) != len(expectedHash) {
		return false
	}

	var diff byte
	for i := range computed {
		diff |= computed[i] ^ expectedHash[i]
	}

	return diff == 0
}
