package auth

import (
	"context"
	"errors"

	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/config"
	"leadcrm/internal/features/audit"
	"leadcrm/internal/features/role"
	"leadcrm/internal/features/user"
	"leadcrm/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	// ResolvePrincipal recomputes the Principal from validated claims: the
	// role's permission set is resolved live, once per authentication.
	ResolvePrincipal(ctx context.Context, claims *utils.UserClaims) (*common_models.Principal, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	RoleService  role.RoleService
	AuditService audit.AuditService
	Config       *config.Config
	Logger       *zap.Logger
}

func NewAuthService(userRepo user.UserRepository, roleService role.RoleService, auditService audit.AuditService, cfg *config.Config, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		RoleService:  roleService,
		AuditService: auditService,
		Config:       cfg,
		Logger:       logger,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	// Global lookup because we don't have tenant context yet
	usr, err := s.UserRepo.FindByUsernameGlobal(ctx, username)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	if usr.Status == "suspended" {
		return "", errors.New("account suspended")
	}
	if usr.Status == "inactive" {
		return "", errors.New("account inactive")
	}

	// Set tenant context for subsequent lookups
	ctx = context.WithValue(ctx, common_models.TenantIDKey, usr.TenantID.Hex())

	roleName := ""
	roleID := ""
	if !usr.RoleID.IsZero() {
		roleID = usr.RoleID.Hex()
		if r, err := s.RoleService.GetRoleByID(ctx, roleID); err == nil {
			roleName = r.Name
		}
	}

	token, err := utils.GenerateToken(usr.ID, usr.TenantID, roleID, roleName)
	if err != nil {
		return "", err
	}

	if err := s.AuditService.LogChange(ctx, common_models.AuditActionLogin, "user", usr.ID.Hex(), nil); err != nil {
		s.Logger.Warn("audit write failed", zap.String("user_id", usr.ID.Hex()), zap.Error(err))
	}

	return token, nil
}

func (s *AuthServiceImpl) ResolvePrincipal(ctx context.Context, claims *utils.UserClaims) (*common_models.Principal, error) {
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, err
	}
	tenantID, err := primitive.ObjectIDFromHex(claims.TenantID)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, common_models.TenantIDKey, claims.TenantID)

	p := &common_models.Principal{
		UserID:      userID,
		TenantID:    tenantID,
		RoleID:      claims.RoleID,
		RoleName:    claims.RoleName,
		Permissions: []string{},
	}

	if claims.RoleID == "" {
		// Legacy accounts without a role reference stay fully restricted.
		return p, nil
	}

	r, err := s.RoleService.GetRoleByID(ctx, claims.RoleID)
	if err != nil {
		// A dangling role reference restricts rather than blocks: the gate
		// denies everything for an empty permission set.
		return p, nil
	}

	p.RoleName = r.Name
	p.IsSystemAdmin = r.IsSystem && p.HasRoleName(s.Config.AdminRoleNames)

	perms, err := s.RoleService.ResolvePermissions(ctx, claims.RoleID)
	if err != nil {
		return p, nil
	}
	p.Permissions = perms

	return p, nil
}
