package service

import (
	"errors"

	"github.com/ikkim/foodgram-backend/internal/app/model"
	"github.com/ikkim/foodgram-backend/internal/app/repository"
	"github.com/ikkim/foodgram-backend/pkg/logger"
	"github.com/ikkim/foodgram-backend/pkg/util"
	"gorm.io/gorm"
)

// UserView is a user annotated with whether the viewer follows them.
type UserView struct {
	User         *model.User
	IsSubscribed bool
}

// SubscriptionView is a followed author with a preview of their newest
// recipes and the total number of recipes they published.
type SubscriptionView struct {
	UserView
	Recipes      []model.Recipe
	RecipesCount int64
}

const DefaultRecipesPreview = 3

type UserService interface {
	List(viewerID *uint, page util.PageRequest) ([]UserView, int64, error)
	Get(viewerID *uint, userID uint) (*UserView, error)

	Subscribe(userID, authorID uint, recipesLimit int) (*SubscriptionView, error)
	Unsubscribe(userID, authorID uint) error
	Subscriptions(userID uint, page util.PageRequest, recipesLimit int) ([]SubscriptionView, int64, error)
}

type userService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	recipeRepo repository.RecipeRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	recipeRepo repository.RecipeRepository,
) UserService {
	return &userService{
		userRepo:   userRepo,
		followRepo: followRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *userService) List(viewerID *uint, page util.PageRequest) ([]UserView, int64, error) {
	users, total, err := s.userRepo.List(page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.annotate(viewerID, users)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *userService) Get(viewerID *uint, userID uint) (*UserView, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	view := &UserView{User: user}
	if viewerID != nil {
		if view.IsSubscribed, err = s.followRepo.Exists(*viewerID, user.ID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (s *userService) findUser(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) annotate(viewerID *uint, users []model.User) ([]UserView, error) {
	views := make([]UserView, len(users))
	for i := range users {
		views[i].User = &users[i]
	}
	if viewerID == nil || len(users) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	followed, err := s.followRepo.FollowedAmong(*viewerID, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].IsSubscribed = followed[users[i].ID]
	}
	return views, nil
}

func (s *userService) Subscribe(userID, authorID uint, recipesLimit int) (*SubscriptionView, error) {
	logger.Info("Subscribing to author", map[string]interface{}{
		"user_id":   userID,
		"author_id": authorID,
	})

	if userID == authorID {
		return nil, ErrCannotFollowSelf
	}

	author, err := s.findUser(authorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.followRepo.Create(userID, authorID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Warn("Already subscribed to author", map[string]interface{}{
				"user_id":   userID,
				"author_id": authorID,
			})
			return nil, ErrAlreadyFollowing
		}
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	views, err := s.withRecipes([]model.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *userService) Unsubscribe(userID, authorID uint) error {
	if _, err := s.findUser(authorID); err != nil {
		return err
	}

	if err := s.followRepo.Delete(userID, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFollowing
		}
		return err
	}

	logger.Info("Unsubscribed from author", map[string]interface{}{
		"user_id":   userID,
		"author_id": authorID,
	})
	return nil
}

func (s *userService) Subscriptions(userID uint, page util.PageRequest, recipesLimit int) ([]SubscriptionView, int64, error) {
	authors, total, err := s.followRepo.ListAuthors(userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.withRecipes(authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// withRecipes builds subscription views for authors the caller follows.
func (s *userService) withRecipes(authors []model.User, recipesLimit int) ([]SubscriptionView, error) {
	if recipesLimit <= 0 {
		recipesLimit = DefaultRecipesPreview
	}

	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := s.recipeRepo.CountByAuthors(ids)
	if err != nil {
		return nil, err
	}

	views := make([]SubscriptionView, len(authors))
	for i := range authors {
		recipes, err := s.recipeRepo.FindByAuthor(authors[i].ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		views[i] = SubscriptionView{
			UserView:     UserView{User: &authors[i], IsSubscribed: true},
			Recipes:      recipes,
			RecipesCount: counts[authors[i].ID],
		}
	}
	return views, nil
}
