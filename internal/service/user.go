package service

import (
	"context"
	"errors"
	"fmt"

	"warranty-platform/internal/apperror"
	"warranty-platform/internal/auth"
	"warranty-platform/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Login for an unknown user or wrong
// password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService manages dashboard accounts.
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	ValidatePassword(ctx context.Context, username, password string) (*model.User, error)
	ListUsers(ctx context.Context, role string) ([]model.User, error)
}

// CreateUserRequest creates an account.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin shop_owner phone_checker"`
	ShopName string `json:"shopName"`
	Phone    string `json:"phone"`
}

type userServiceImpl struct {
	db *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) UserService {
	return &userServiceImpl{db: db}
}

func (s *userServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (*model.User, error) {
	const op = "create user"

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(op, fmt.Errorf("failed to hash password: %w", err))
	}

	user := &model.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Password: hashedPassword,
		Role:     req.Role,
		ShopName: req.ShopName,
		Phone:    req.Phone,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict(op, "username already exists: "+req.Username)
		}
		return nil, apperror.Internal(op, fmt.Errorf("failed to create user: %w", err))
	}

	user.Password = ""
	return user, nil
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("get user", "user", id)
		}
		return nil, apperror.Internal("get user", err)
	}

	user.Password = ""
	return &user, nil
}

func (s *userServiceImpl) ValidatePassword(ctx context.Context, username, password string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.Internal("validate password", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user.Password = ""
	return &user, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context, role string) ([]model.User, error) {
	query := s.db.WithContext(ctx).Model(&model.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []model.User
	if err := query.Order("username").Find(&users).Error; err != nil {
		return nil, apperror.Internal("list users", err)
	}

	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// AuthenticationService logs users in and resolves tokens.
type AuthenticationService struct {
	users  UserService
	tokens *auth.Service
}

// NewAuthenticationService creates a new authentication service
func NewAuthenticationService(users UserService, tokens *auth.Service) *AuthenticationService {
	return &AuthenticationService{users: users, tokens: tokens}
}

// Login checks credentials and issues a token.
func (s *AuthenticationService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	user, err := s.users.ValidatePassword(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperror.Internal("login", err)
	}

	return &model.LoginResponse{Token: token, User: *user}, nil
}

// ValidateToken returns the user a token was issued to.
func (s *AuthenticationService) ValidateToken(token string) (*model.User, error) {
	return s.tokens.ValidateToken(token)
}
