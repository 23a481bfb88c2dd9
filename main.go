package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/entity"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/task"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/logger"
)

var (
	version    = "dev"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "strportal",
	Short: "STR portal session service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := setupSetting(); err != nil {
			return fmt.Errorf("setupSetting: %w", err)
		}
		return setupLogger()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupDBMigrate(); err != nil {
			return fmt.Errorf("setupDBMigrate: %w", err)
		}
		if err := setupProjectSetting(); err != nil {
			return fmt.Errorf("setupProjectSetting: %w", err)
		}
		setupCookieSecret()
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupDBMigrate(); err != nil {
			return err
		}
		config.Logger.Infof("database %s migrated", config.AppSetting.DbSavePath)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "directory holding app.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("strportal: %v", err)
	}
}

func serve(ctx context.Context) error {
	go task.GetTaskManager().Start(ctx)

	gin.SetMode(config.ServerSetting.RunMode)
	engine := gin.New()
	api.LoadModules(engine)
	s := &http.Server{
		Addr:           ":" + config.ServerSetting.HttpPort,
		Handler:        engine,
		ReadTimeout:    config.ServerSetting.ReadTimeout,
		WriteTimeout:   config.ServerSetting.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errc := make(chan error, 1)
	go func() {
		config.Logger.Infof("listening on %s%s", s.Addr, config.AppSetting.BasePath)
		errc <- s.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	config.Logger.Info("shutting down")
	return s.Shutdown(shutdownCtx)
}

func setupDBMigrate() error {
	return entity.AutoMigrate()
}

func setupSetting() error {
	setting, err := config.NewSetting(configPath)
	if err != nil {
		return err
	}
	return setting.Load()
}

func setupLogger() error {
	lvl := logger.ParseLevel(config.AppSetting.LogLevel)
	if config.AppSetting.LogSavePath == "" {
		config.Logger = logger.NewLogger(os.Stderr, "", 0).SetLevel(lvl)
		return nil
	}
	config.Logger = logger.NewLogger(&lumberjack.Logger{
		Filename:  filepath.Join(config.AppSetting.LogSavePath, config.AppSetting.LogFileName+config.AppSetting.LogFileExt),
		MaxSize:   600,
		MaxAge:    10,
		LocalTime: true,
	}, "", 0).SetLevel(lvl)

	return nil
}

// setupProjectSetting overlays the stored session timing on app.yaml. An empty table is
// seeded from app.yaml.
func setupProjectSetting() error {
	list, err := entity.GetSettingList()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		if err = entity.InitSetting(); err != nil {
			return err
		}
		return nil
	}
	timing := config.GetSessionSetting()
	if err = entity.ApplySettings(list, &timing); err != nil {
		return err
	}
	config.SetSessionSetting(timing)
	if timing.ValidatorMode == types.ValidatorBoth {
		config.Logger.Warn("validator mode \"both\" validates on every route change and on the interval")
	}
	return nil
}

// setupCookieSecret makes up a secret when none is configured. Sessions then do not
// survive a restart.
func setupCookieSecret() {
	if config.AppSetting.CookieSecret != "" {
		return
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		config.Logger.Fatalf("generate cookie secret: %v", err)
	}
	config.AppSetting.CookieSecret = hex.EncodeToString(buf)
	config.Logger.Warn("App.CookieSecret is not set, using a random one")
}
