package main

import (
	"context"
	"fmt"
	common_api "leadcrm/internal/common/api"
	common_models "leadcrm/internal/common/models"
	"leadcrm/internal/config"
	"leadcrm/internal/database"
	"leadcrm/internal/features/alarm"
	"leadcrm/internal/features/audit"
	"leadcrm/internal/features/auth"
	"leadcrm/internal/features/calltask"
	cron_feature "leadcrm/internal/features/cron"
	"leadcrm/internal/features/dashboard"
	"leadcrm/internal/features/helprequest"
	"leadcrm/internal/features/lead"
	"leadcrm/internal/features/permission"
	"leadcrm/internal/features/realtime"
	"leadcrm/internal/features/role"
	"leadcrm/internal/features/system"
	"leadcrm/internal/features/user"
	"leadcrm/internal/logger"
	"leadcrm/internal/middleware"
	"leadcrm/pkg/utils"
	"log"
	"time"

	_ "leadcrm/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	roleRepo role.RoleRepository,
	callTaskRepo calltask.CallTaskRepository,
	helpRequestRepo helprequest.HelpRequestRepository,
	alarmRepo alarm.AlarmRepository,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := roleRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure role indexes: %v", err)
				}
				if err := callTaskRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure call task indexes: %v", err)
				}
				if err := helpRequestRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure help request indexes: %v", err)
				}
				if err := alarmRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure alarm indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// auditUserFinder adapts the user repository to the actor-name lookup the
// audit service needs, keeping audit decoupled from the user package.
type auditUserFinder struct {
	repo user.UserRepository
}

func (a *auditUserFinder) FindByIDs(ctx context.Context, ids []string) ([]common_models.ActorName, error) {
	users, err := a.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	actors := make([]common_models.ActorName, 0, len(users))
	for _, u := range users {
		actors = append(actors, common_models.ActorName{ID: u.ID.Hex(), Name: u.Name})
	}
	return actors, nil
}

// @title           LeadCRM API
// @version         1.0
// @description     Permission-gated task dispatch and lead assignment API.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Permission catalog
			permission.NewRegistry,

			// Realtime hub
			realtime.NewHub,

			// Initialize Repository
			audit.NewAuditRepository,
			user.NewUserRepository,
			role.NewRoleRepository,
			lead.NewLeadRepository,
			calltask.NewCallTaskRepository,
			helprequest.NewHelpRequestRepository,
			alarm.NewAlarmRepository,

			audit.NewAuditService,
			auth.NewAuthService,
			auth.NewGate,
			role.NewRoleService,
			calltask.NewCallTaskService,
			helprequest.NewHelpRequestService,
			alarm.NewAlarmService,
			dashboard.NewDashboardService,
			cron_feature.NewCronService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(s auth.AuthService) middleware.PrincipalResolver { return s },
			func(g auth.Gate) middleware.PermissionGate { return g },
			func(h *realtime.Hub) realtime.Emitter { return h },
			func(r user.UserRepository) audit.UserFinder { return &auditUserFinder{repo: r} },

			// Initialize Controller
			auth.NewAuthController,
			role.NewRoleController,
			permission.NewPermissionController,
			user.NewUserController,
			lead.NewLeadController,
			calltask.NewCallTaskController,
			helprequest.NewHelpRequestController,
			alarm.NewAlarmController,
			dashboard.NewDashboardController,
			realtime.NewWebSocketController,
			system.NewDebugController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(role.NewRoleApi),
			AsRoute(permission.NewPermissionApi),
			AsRoute(user.NewUserApi),
			AsRoute(lead.NewLeadApi),
			AsRoute(calltask.NewCallTaskApi),
			AsRoute(helprequest.NewHelpRequestApi),
			AsRoute(alarm.NewAlarmApi),
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(cron_feature.NewCronApi),
			AsRoute(realtime.NewWebSocketApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, cronService cron_feature.CronService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return cronService.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return cronService.StopScheduler()
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
