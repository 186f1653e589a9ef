package service

import (
	"context"

	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/repository"
	apperrors "github.com/spec-kit/correspondence-service/pkg/util/errorutil"
)

// DirectoryService serves the lookup lists backing assignment forms.
type DirectoryService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	divisions   repository.DivisionRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(users repository.UserRepository, departments repository.DepartmentRepository, divisions repository.DivisionRepository) *DirectoryService {
	return &DirectoryService{users: users, departments: departments, divisions: divisions}
}

// ListUsers returns all staff accounts sorted by name.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListDepartments returns all departments sorted by name.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return departments, nil
}

// ListDivisions returns all divisions sorted by name.
func (s *DirectoryService) ListDivisions(ctx context.Context) ([]domain.Division, error) {
	divisions, err := s.divisions.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return divisions, nil
}
