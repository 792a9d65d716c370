package service

import (
	"errors"
	"strings"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/websocket"
)

// CategoryService manages the welfare category list
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *CategoryService) publishEvent(categoryID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(categoryID, event)
	}
}

// ListCategories returns all welfare categories
func (s *CategoryService) ListCategories() ([]*domain.Category, error) {
	return s.categoryRepo.List()
}

// AddCategory creates a new welfare category. Superadmin only.
func (s *CategoryService) AddCategory(identity *domain.Identity, name string) (*domain.Category, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	category, err := s.categoryRepo.Create(name)
	if err != nil {
		return nil, err
	}

	s.publishEvent(category.ID, websocket.CategoryCreated(category))

	return category, nil
}

// RemoveCategory deletes a welfare category. A category still referenced
// by allocations or transactions is refused with ErrCategoryInUse rather
// than cascading. Superadmin only.
func (s *CategoryService) RemoveCategory(identity *domain.Identity, id int32) error {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return domain.ErrForbidden
	}
	if id <= 0 {
		return domain.ErrInvalidInput
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return domain.ErrNotFound
		}
		return err
	}

	s.publishEvent(id, websocket.CategoryDeleted(map[string]interface{}{"id": id}))

	return nil
}
