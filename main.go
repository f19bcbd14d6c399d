package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dailydiet/daily-diet/config"
	"github.com/dailydiet/daily-diet/database"
	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/web"
	"github.com/dailydiet/daily-diet/web/cache"
	"github.com/dailydiet/daily-diet/web/service"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var configPath string

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func loadSettings() *config.Settings {
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return settings
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	settings := loadSettings()

	db, err := database.InitDB(&settings.Database, config.IsDebug())
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(db); err != nil {
			logger.Warning("close database err:", err)
		}
	}()

	rc, err := cache.Open(context.Background(), settings.RedisAddr)
	if err != nil {
		logger.Error(err)
		return
	}
	defer rc.Close()

	server := web.NewServer(settings, db, rc)
	if err := server.Start(); err != nil {
		logger.Error(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP, restarting web server")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(settings, db, rc)
			if err := server.Start(); err != nil {
				logger.Error(err)
				return
			}
		default:
			logger.Infof("Received %v, shutting down", sig)
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	settings := loadSettings()
	fmt.Println("Start migrating database...")
	db, err := database.InitDB(&settings.Database, config.IsDebug())
	if err != nil {
		log.Fatal(err)
	}
	if err := database.CloseDB(db); err != nil {
		fmt.Println("close database failed:", err)
	}
	fmt.Println("Migration done!")
}

func ensureAdmin(username, password string) {
	settings := loadSettings()
	db, err := database.InitDB(&settings.Database, config.IsDebug())
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB(db)

	userService := service.NewUserService(db)
	user, created, err := userService.EnsureAdmin(context.Background(), username, password)
	if err != nil {
		fmt.Println("set admin failed:", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("admin %s created (id %d)\n", user.UserName, user.Id)
	} else {
		fmt.Printf("user %s promoted to admin (id %d)\n", user.UserName, user.Id)
	}
}

func showSetting() {
	settings := loadSettings()
	if settings.SecretKey != "" {
		settings.SecretKey = "******"
	}
	if settings.Database.Postgres.Password != "" {
		settings.Database.Postgres.Password = "******"
	}
	out, err := toml.Marshal(settings)
	if err != nil {
		fmt.Println("render settings failed:", err)
		return
	}
	fmt.Println("current settings as follows:")
	fmt.Print(string(out))
}

func main() {
	var rootCmd = &cobra.Command{
		Use:     config.GetName(),
		Short:   "Daily Diet meal tracking API",
		Version: config.GetVersion(),
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file (default $DIET_CONFIG)")

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Create an admin account or promote an existing user",
		Run: func(cmd *cobra.Command, args []string) {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			ensureAdmin(username, password)
		},
	}
	adminCmd.Flags().String("username", "", "admin user_name")
	adminCmd.Flags().String("password", "", "admin password (required when creating)")
	_ = adminCmd.MarkFlagRequired("username")

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect settings",
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	settingCmd.AddCommand(showCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, adminCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
