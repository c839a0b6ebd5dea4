package role

import (
	"context"
	"errors"
	"slices"
	"time"

	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/features/audit"
	"leadcrm/internal/features/permission"
	"leadcrm/internal/features/user"
	"leadcrm/pkg/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UpdateRoleInput carries a partial role update. A non-nil Permissions slice
// is a full replacement, never a merge.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	Permissions *[]string
	IsActive    *bool
}

type RoleService interface {
	CreateRole(ctx context.Context, name, description string, permissionKeys []string) (*Role, error)
	GetRoleByID(ctx context.Context, id string) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*Role, error)
	// DeleteRole repoints every user referencing the role to reassignToID,
	// then removes the role. Returns the number of reassigned users.
	DeleteRole(ctx context.Context, id string, reassignToID string) (int64, error)
	// ResolvePermissions returns the live permission set for the role; called
	// once per authentication, never cached beyond that.
	ResolvePermissions(ctx context.Context, roleID string) ([]string, error)
}

type RoleServiceImpl struct {
	RoleRepo     RoleRepository
	UserRepo     user.UserRepository
	Registry     *permission.Registry
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewRoleService(
	roleRepo RoleRepository,
	userRepo user.UserRepository,
	registry *permission.Registry,
	auditService audit.AuditService,
	logger *zap.Logger,
) RoleService {
	return &RoleServiceImpl{
		RoleRepo:     roleRepo,
		UserRepo:     userRepo,
		Registry:     registry,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, name, description string, permissionKeys []string) (*Role, error) {
	if name == "" {
		return nil, apperr.Validation("role name is required")
	}
	if invalid := s.Registry.Validate(permissionKeys); len(invalid) > 0 {
		return nil, apperr.Validation("unknown permission keys", invalid...)
	}

	// Friendly pre-check; the unique name_lc index is the authority.
	if existing, err := s.RoleRepo.FindByName(ctx, name); err == nil && existing != nil {
		return nil, apperr.Conflict("role %q already exists", existing.Name)
	}

	role := &Role{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		Permissions: slices.Clone(permissionKeys),
		IsSystem:    false,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}

	if err := s.RoleRepo.Create(ctx, role); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("role %q already exists", name)
		}
		return nil, err
	}

	if err := s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "role", role.ID.Hex(), map[string]common_models.Change{
		"name":        {New: role.Name},
		"permissions": {New: role.Permissions},
	}); err != nil {
		s.Logger.Warn("audit write failed", zap.String("role_id", role.ID.Hex()), zap.Error(err))
	}

	return role, nil
}

func (s *RoleServiceImpl) GetRoleByID(ctx context.Context, id string) (*Role, error) {
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("role %s not found", id)
		}
		return nil, err
	}
	return role, nil
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]Role, error) {
	return s.RoleRepo.List(ctx)
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*Role, error) {
	role, err := s.GetRoleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}

	if input.Name != nil && *input.Name != role.Name {
		if role.IsSystem {
			return nil, apperr.Forbidden("system role cannot be renamed")
		}
		if *input.Name == "" {
			return nil, apperr.Validation("role name is required")
		}
		changes["name"] = common_models.Change{Old: role.Name, New: *input.Name}
		role.Name = *input.Name
	}
	if input.Description != nil {
		role.Description = *input.Description
	}
	if input.Permissions != nil {
		if invalid := s.Registry.Validate(*input.Permissions); len(invalid) > 0 {
			return nil, apperr.Validation("unknown permission keys", invalid...)
		}
		changes["permissions"] = common_models.Change{Old: role.Permissions, New: *input.Permissions}
		role.Permissions = slices.Clone(*input.Permissions)
	}
	if input.IsActive != nil {
		role.IsActive = *input.IsActive
	}

	role.UpdatedAt = time.Now()
	if err := s.RoleRepo.Update(ctx, id, role); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("role %q already exists", role.Name)
		}
		return nil, err
	}

	if err := s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "role", id, changes); err != nil {
		s.Logger.Warn("audit write failed", zap.String("role_id", id), zap.Error(err))
	}

	return role, nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id string, reassignToID string) (int64, error) {
	role, err := s.GetRoleByID(ctx, id)
	if err != nil {
		return 0, err
	}

	if role.IsSystem {
		return 0, apperr.Forbidden("system role cannot be deleted")
	}

	if reassignToID == "" {
		return 0, apperr.Validation("a replacement role is required to delete a role", "reassign_to")
	}
	if reassignToID == id {
		return 0, apperr.Validation("replacement role cannot be the role being deleted", "reassign_to")
	}
	replacement, err := s.GetRoleByID(ctx, reassignToID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return 0, apperr.Validation("replacement role does not exist", reassignToID)
		}
		return 0, err
	}

	// Repoint referencing users first; only then remove the role.
	reassigned, err := s.UserRepo.ReassignRole(ctx, role.ID, replacement.ID)
	if err != nil {
		return 0, err
	}

	if err := s.RoleRepo.Delete(ctx, id); err != nil {
		return reassigned, err
	}

	if err := s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "role", id, map[string]common_models.Change{
		"name":        {Old: role.Name},
		"reassign_to": {New: replacement.Name},
	}); err != nil {
		s.Logger.Warn("audit write failed", zap.String("role_id", id), zap.Error(err))
	}

	return reassigned, nil
}

func (s *RoleServiceImpl) ResolvePermissions(ctx context.Context, roleID string) ([]string, error) {
	role, err := s.GetRoleByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !role.IsActive {
		return []string{}, nil
	}
	return slices.Clone(role.Permissions), nil
}
