package members

import (
	"github.com/librakeep/librakeep/pkg/errors"
	"github.com/librakeep/librakeep/pkg/types"
)

// Manager coordinates member administration. Registration and login live on
// the AuthService; everything here is librarian-facing.
type Manager struct {
	repo *Repository
}

// NewManager creates a new member manager
func NewManager(repo *Repository) *Manager {
	return &Manager{repo: repo}
}

// GetMember retrieves a member by ID
func (m *Manager) GetMember(id string) (*Member, error) {
	member, err := m.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.NewNotFoundError("member")
	}
	return sanitize(member), nil
}

// ListMembers returns members with pagination
func (m *Manager) ListMembers(params types.PageParams) ([]Member, types.PageInfo, error) {
	params = params.Normalize()

	members, total, err := m.repo.List(params)
	if err != nil {
		return nil, types.PageInfo{}, err
	}

	for i := range members {
		members[i].Password = ""
	}
	return members, types.NewPageInfo(params, total), nil
}

// UpdateName changes a member's display name. Only the name is updatable
// through this path; email and credentials are fixed after registration.
func (m *Manager) UpdateName(id, name string) (*Member, error) {
	if name == "" {
		return nil, errors.NewValidationError("no valid fields to update")
	}

	member, err := m.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.NewNotFoundError("member")
	}

	member.Name = name
	if err := m.repo.Update(member); err != nil {
		return nil, err
	}
	return sanitize(member), nil
}

// UpdateRole changes a member's role
func (m *Manager) UpdateRole(id string, role Role) (*Member, error) {
	if !role.IsValid() {
		return nil, errors.NewValidationError("invalid role: " + role.String())
	}

	member, err := m.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.NewNotFoundError("member")
	}

	member.Role = role
	if err := m.repo.Update(member); err != nil {
		return nil, err
	}
	return sanitize(member), nil
}

// DeleteMember removes a member
func (m *Manager) DeleteMember(id string) error {
	return m.repo.Delete(id)
}
