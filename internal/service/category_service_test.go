package service

import (
	"errors"
	"testing"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/testutil"
)

func TestAddCategory_Success(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)

	category, err := categoryService.AddCategory(superadminIdentity(), "  dental ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if category.Name != "dental" {
		t.Errorf("Expected trimmed name 'dental', got %s", category.Name)
	}
}

func TestAddCategory_NonSuperadminForbidden(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	_, err := categoryService.AddCategory(staffIdentity(1), "dental")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
}

func TestAddCategory_Duplicate(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)

	if _, err := categoryService.AddCategory(superadminIdentity(), "dental"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err := categoryService.AddCategory(superadminIdentity(), "dental")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestRemoveCategory_InUse(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)

	category, err := categoryService.AddCategory(superadminIdentity(), "dental")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	categoryRepo.InUse[category.ID] = true

	err = categoryService.RemoveCategory(superadminIdentity(), category.ID)
	if !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("Expected ErrCategoryInUse, got %v", err)
	}
	if len(categoryRepo.Categories) != 1 {
		t.Error("Expected the category to survive the refused delete")
	}
}

func TestRemoveCategory_NotFound(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	err := categoryService.RemoveCategory(superadminIdentity(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestRemoveCategory_PublishesEvent(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)
	publisher := &testutil.MockEventPublisher{}
	categoryService.SetEventPublisher(publisher)

	category, err := categoryService.AddCategory(superadminIdentity(), "dental")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := categoryService.RemoveCategory(superadminIdentity(), category.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	events := publisher.Published()
	if len(events) != 2 {
		t.Fatalf("Expected create and delete events, got %d", len(events))
	}
	if events[0].EventType != "category.created" || events[1].EventType != "category.deleted" {
		t.Errorf("Unexpected event types: %v", events)
	}
}
