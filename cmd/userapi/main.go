package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-user-api/pkg/client"
	"github.com/tendant/simple-user-api/pkg/config"
	"github.com/tendant/simple-user-api/pkg/notification"
	"github.com/tendant/simple-user-api/pkg/role"
	"github.com/tendant/simple-user-api/pkg/user"
)

type Config struct {
	DbConfig    config.DatabaseConfig
	AppConfig   app.AppConfig
	JwtConfig   config.JWTConfig
	EmailConfig config.EmailConfig
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, continuing with environment variables")
	}

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	userRepo := newUserRepository(cfg)

	roleRepo := role.NewInMemoryRoleRepositoryWithDefaults()
	roleService := role.NewRoleService(roleRepo)

	userService := user.NewUserService(userRepo, roleService)
	registerWelcomeEmail(userService, cfg.EmailConfig)

	userHandle := user.NewHandle(userService)

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JwtConfig.Secret), nil)

	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(client.CallerMiddleware)
		r.Route("/api", func(r chi.Router) {
			userHandle.RegisterRoutes(r)
		})
	})

	server.Run()
}

func newUserRepository(cfg Config) user.UserRepository {
	if config.StoreKindFromEnv() != config.StorePostgres {
		return user.NewInMemoryUserRepository()
	}

	dbConfig := cfg.DbConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}
	return user.NewPostgresUserRepository(pool)
}

// registerWelcomeEmail wires the post-insert hook that emails newly
// created accounts. A failed SMTP setup disables the hook but does not
// stop the service.
func registerWelcomeEmail(userService *user.UserService, emailConfig config.EmailConfig) {
	notifier, err := notification.NewEmailNotifier(emailConfig.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed to create email notifier, welcome emails disabled", "err", err)
		return
	}

	manager := notification.NewNotificationManager()
	manager.RegisterNotifier(notification.EmailSystem, notifier)
	err = manager.RegisterNotification(notification.UserWelcomeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Welcome",
		Text:    "Hi {{.name}}, your account {{.username}} has been created.",
	})
	if err != nil {
		slog.Error("Failed to register welcome notice", "err", err)
		return
	}

	userService.Hooks().OnPostInsert(func(ctx context.Context, u user.User, params user.UserParams, isUpdate bool) {
		if isUpdate || u.Email == "" {
			return
		}
		err := manager.Send(notification.UserWelcomeNotice, notification.EmailSystem, notification.NotificationData{
			To: u.Email,
			Data: map[string]string{
				"name":     u.DisplayName,
				"username": u.Username,
			},
		})
		if err != nil {
			slog.Error("Failed sending welcome email", "username", u.Username, "err", err)
		}
	})
}
