package service

import (
	"errors"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/config"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/util"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService validates the single dashboard owner and issues JWTs.
// There is no registration surface: the credentials come from config.
type AuthService struct {
	username     string
	passwordHash string
	jwtSecret    string
}

func NewAuthService(cfg config.AuthConfig, jwtSecret string) *AuthService {
	return &AuthService{
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
		jwtSecret:    jwtSecret,
	}
}

// Login checks the owner's credentials and returns a JWT.
func (s *AuthService) Login(username, password string) (string, error) {
	if username != s.username || !util.CheckPassword(password, s.passwordHash) {
		return "", ErrInvalidCredentials
	}
	return util.GenerateJWT(s.username, s.jwtSecret)
}
