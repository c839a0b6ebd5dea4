package main

import (
	"context"
	"log"
	"time"

	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/config"
	"leadcrm/internal/database"
	"leadcrm/internal/features/lead"
	"leadcrm/internal/features/permission"
	"leadcrm/internal/features/role"
	"leadcrm/internal/features/user"
	"leadcrm/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Fixed tenant id for development consistency across reseeds.
const devTenantHex = "678e9a1b2c3d4e5f6a7b8c9e"

type seedUser struct {
	Username string
	Password string
	Email    string
	Name     string
	RoleName string
	Status   string
}

var seedUsers = []seedUser{
	{Username: "root", Password: "root1234", Email: "root@example.com", Name: "Root Admin", RoleName: "Admin", Status: "active"},
	{Username: "manager", Password: "manager1234", Email: "manager@example.com", Name: "Floor Manager", RoleName: "Manager", Status: "active"},
	{Username: "caller1", Password: "caller1234", Email: "caller1@example.com", Name: "Asha Caller", RoleName: "Caller", Status: "active"},
	{Username: "caller2", Password: "caller1234", Email: "caller2@example.com", Name: "Vik Caller", RoleName: "Caller", Status: "active"},
}

// Seed runs the database seeding
func Seed(
	lc fx.Lifecycle,
	registry *permission.Registry,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	leadRepo lead.LeadRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Starting database seeding...")

				tenantID, _ := primitive.ObjectIDFromHex(devTenantHex)
				ctx := context.WithValue(context.Background(), common_models.TenantIDKey, tenantID.Hex())

				if err := roleRepo.EnsureIndexes(ctx); err != nil {
					logger.Warn("Failed to ensure role indexes", zap.Error(err))
				}

				// 1. Roles. Admin gets the full catalog; Manager adds dispatch
				// and role administration on top of the defaults; Caller gets
				// the curated defaults.
				managerKeys := append(registry.DefaultsForNewRole(),
					"callTasks.tasks.create",
					"leads.detail.callTask",
					"leads.detail.helpRequest",
					"helpRequests.inbox.respond",
					"roles.roles.view",
					"roles.permissions.view",
					"users.users.view",
					"dashboard.overview.view",
				)
				callerKeys := append(registry.DefaultsForNewRole(),
					"leads.detail.helpRequest",
					"helpRequests.inbox.respond",
					"alarms.alarms.update",
					"alarms.alarms.delete",
				)

				roleDefs := []role.Role{
					{Name: "Admin", Description: "Full administrative access", Permissions: registry.ListAll(), IsSystem: true, IsActive: true},
					{Name: "Manager", Description: "Dispatch and team oversight", Permissions: managerKeys, IsSystem: false, IsActive: true},
					{Name: "Caller", Description: "Lead calling and follow-ups", Permissions: callerKeys, IsSystem: false, IsActive: true},
				}

				roleIDs := make(map[string]primitive.ObjectID)
				for _, def := range roleDefs {
					existing, err := roleRepo.FindByName(ctx, def.Name)
					if err == nil {
						logger.Info("Role exists, updating permissions", zap.String("role", def.Name))
						existing.Permissions = def.Permissions
						existing.UpdatedAt = time.Now()
						if err := roleRepo.Update(ctx, existing.ID.Hex(), existing); err != nil {
							logger.Error("Failed to update role", zap.String("role", def.Name), zap.Error(err))
						}
						roleIDs[def.Name] = existing.ID
						continue
					}

					def.ID = primitive.NewObjectID()
					def.CreatedAt = time.Now()
					def.UpdatedAt = time.Now()
					if err := roleRepo.Create(ctx, &def); err != nil {
						logger.Error("Failed to create role", zap.String("role", def.Name), zap.Error(err))
						continue
					}
					logger.Info("Role created", zap.String("role", def.Name))
					roleIDs[def.Name] = def.ID
				}

				// 2. Users
				var callerID primitive.ObjectID
				for _, su := range seedUsers {
					if _, err := userRepo.FindByUsernameGlobal(ctx, su.Username); err == nil {
						logger.Info("User exists, skipping", zap.String("username", su.Username))
						continue
					}

					hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
					if err != nil {
						logger.Error("Failed to hash password", zap.String("username", su.Username), zap.Error(err))
						continue
					}

					u := &user.User{
						ID:        primitive.NewObjectID(),
						Username:  su.Username,
						Password:  string(hash),
						Email:     su.Email,
						Name:      su.Name,
						RoleID:    roleIDs[su.RoleName],
						Status:    su.Status,
						CreatedAt: time.Now(),
						UpdatedAt: time.Now(),
					}
					if err := userRepo.Create(ctx, u); err != nil {
						logger.Error("Failed to create user", zap.String("username", su.Username), zap.Error(err))
						continue
					}
					logger.Info("User created", zap.String("username", su.Username))
					if su.Username == "caller1" {
						callerID = u.ID
					}
				}

				// 3. A couple of demo leads assigned to the first caller
				if !callerID.IsZero() {
					demoLeads := []lead.Lead{
						{Fields: map[string]any{"full_name": "Ravi Patel", "phone": "+19995550101", "city": "Pune"}},
						{Fields: map[string]any{"full_name": "Meera Shah", "phone": "+19995550102", "city": "Mumbai"}},
					}
					for _, dl := range demoLeads {
						dl.ID = primitive.NewObjectID()
						dl.AssignedTo = callerID
						dl.CreatedAt = time.Now()
						dl.UpdatedAt = time.Now()
						if err := leadRepo.Create(ctx, &dl); err != nil {
							logger.Error("Failed to create lead", zap.Error(err))
						}
					}
					logger.Info("Demo leads created", zap.Int("count", len(demoLeads)))
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			permission.NewRegistry,
			role.NewRoleRepository,
			user.NewUserRepository,
			lead.NewLeadRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
