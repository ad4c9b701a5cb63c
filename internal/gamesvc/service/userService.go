package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avvvet/gamemate-services/internal/gamesvc/models"
	"github.com/avvvet/gamemate-services/internal/gamesvc/store"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserService struct represents the user service layer
type UserService struct {
	userStore UserStore
	hashCost  int
}

// NewUserService creates a new UserService instance
func NewUserService(userStore UserStore) *UserService {
	return &UserService{
		userStore: userStore,
		hashCost:  bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost, mostly to keep tests fast.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput("Invalid registration payload.", in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
	}
	if err := s.userStore.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			e := invalid("A user with that username already exists.")
			e.Fields = map[string]string{"username": e.Detail}
			return nil, e
		}
		return nil, err
	}

	log.WithFields(log.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	badCredentials := unauthorized("Invalid username or password.")
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, badCredentials
	}

	user, err := s.userStore.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, badCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, badCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userStore.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found.")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.UserProjection, error) {
	users, err := s.userStore.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserProjection, 0, len(users))
	for _, u := range users {
		out = append(out, u.Projection())
	}
	return out, nil
}

// Me answers "who am I" for the identity attached to the request.
func (s *UserService) Me(identity *models.User) (models.UserProjection, error) {
	if identity == nil {
		return models.UserProjection{}, unauthorized("Not authenticated.")
	}
	return identity.Projection(), nil
}
