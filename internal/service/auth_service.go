package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/bytebolt/bytebolt-api/internal/domain/entity"
	"github.com/bytebolt/bytebolt-api/internal/domain/repository"
	apperrors "github.com/bytebolt/bytebolt-api/internal/pkg/errors"
	"github.com/bytebolt/bytebolt-api/pkg/auth"
)

// AuthService предоставляет методы для аутентификации и регистрации
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register регистрирует нового пользователя
func (s *AuthService) Register(username, email, password string) (*entity.User, error) {
	if username == "" || email == "" || len(password) < 8 {
		return nil, fmt.Errorf("username, email and password (min 8 chars) are required: %w", apperrors.ErrValidation)
	}

	// Проверяем уникальность до вставки, чтобы вернуть понятную ошибку;
	// гонка всё равно ловится уникальным индексом при Create
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperrors.ErrConflict)
	}
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", apperrors.ErrConflict)
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password, // хешируется в BeforeSave
		Role:     "user",
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("email or username already in use: %w", apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь id=%d username=%s", user.ID, user.Username)
	return user, nil
}

// Login проверяет учетные данные и выпускает токен доступа
func (s *AuthService) Login(email, password string) (string, *entity.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Не раскрываем, существует ли email
			return "", nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.CheckPassword(password) {
		return "", nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Вход пользователя id=%d", user.ID)
	return token, user, nil
}
