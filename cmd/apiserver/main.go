package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/apiserver/database"
	"github.com/storecrew/storecrew/internal/apiserver/handler"
	"github.com/storecrew/storecrew/internal/apiserver/middleware"
	"github.com/storecrew/storecrew/internal/apiserver/notifier"
	"github.com/storecrew/storecrew/internal/apiserver/scheduler"
	"github.com/storecrew/storecrew/internal/auth/jwt"
	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/core/attendance"
	"github.com/storecrew/storecrew/internal/core/authz"
	"github.com/storecrew/storecrew/internal/core/calendar"
	"github.com/storecrew/storecrew/internal/core/channel"
	"github.com/storecrew/storecrew/internal/core/chat"
	"github.com/storecrew/storecrew/internal/core/handover"
	"github.com/storecrew/storecrew/internal/core/payroll"
	"github.com/storecrew/storecrew/internal/core/voice"
	"github.com/storecrew/storecrew/internal/geocode"
	"github.com/storecrew/storecrew/internal/storagex"
	"github.com/storecrew/storecrew/internal/transcribe"
	"github.com/storecrew/storecrew/pkg/logger"
	"github.com/storecrew/storecrew/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Channel collaboration API server",
		Long:  `The apiserver hosts the channel, chat, calendar, payroll, attendance, handover and voice memo APIs`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "configs/apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting apiserver", zap.String("version", version.Get()))

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("failed to initialize jwt service", zap.Error(err))
	}

	ntf, err := notifier.NewNotifier(zapLogger, &cfg.Notifier)
	if err != nil {
		zapLogger.Fatal("failed to initialize notifier", zap.Error(err))
	}

	oracle := authz.NewOracle(db)
	channelSvc := channel.NewService(db, oracle, zapLogger)
	chatSvc := chat.NewService(db, oracle, ntf, zapLogger)
	calendarSvc := calendar.NewService(db, oracle, ntf, zapLogger)
	payrollSvc := payroll.NewService(db, oracle, zapLogger)
	attendanceSvc := attendance.NewService(db, oracle, zapLogger)
	handoverSvc := handover.NewService(db, oracle, ntf, zapLogger)
	voiceSvc := voice.NewService(db, oracle, zapLogger)

	geocoder := geocode.NewClient(&cfg.Geocode, zapLogger)
	transcriber := transcribe.NewClient(&cfg.Transcribe, zapLogger)
	urls := storagex.NewURLBuilder(&cfg.Storage)

	authHandler := handler.NewAuth(db, jwtService, zapLogger)
	channelHandler := handler.NewChannel(channelSvc, geocoder)
	chatHandler := handler.NewChat(chatSvc)
	calendarHandler := handler.NewCalendar(calendarSvc)
	payrollHandler := handler.NewPayroll(payrollSvc)
	attendanceHandler := handler.NewAttendance(attendanceSvc)
	handoverHandler := handler.NewHandover(handoverSvc)
	voiceHandler := handler.NewVoice(voiceSvc, transcriber, urls, zapLogger)
	realtime := handler.NewRealtimeManager(jwtService, ntf, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := realtime.Run(ctx); err != nil {
		zapLogger.Fatal("failed to start realtime fanout", zap.Error(err))
	}
	go realtime.SendHeartbeat(ctx)
	defer realtime.CloseAll()

	retention := scheduler.NewRetentionScheduler(voiceSvc, cfg.Retention.Interval, zapLogger)
	retention.Start()
	defer retention.Stop()

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
	})

	api := router.Group("/api")
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware(jwtService))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.PUT("/auth/me", authHandler.UpdateMe)

		authed.POST("/channels", channelHandler.Create)
		authed.GET("/channels", channelHandler.List)
		authed.GET("/channels/:channelId", channelHandler.Get)
		authed.PUT("/channels/:channelId", channelHandler.Update)
		authed.DELETE("/channels/:channelId", channelHandler.Delete)
		authed.GET("/channels/:channelId/members", channelHandler.Members)
		authed.PUT("/channels/:channelId/members/:userId/role", channelHandler.UpdateMemberRole)
		authed.DELETE("/channels/:channelId/members/:userId", channelHandler.Kick)
		authed.POST("/channels/:channelId/transfer", channelHandler.Transfer)
		authed.POST("/channels/:channelId/leave", channelHandler.Leave)
		authed.POST("/channels/:channelId/invites", channelHandler.GenerateInvite)
		authed.GET("/channels/:channelId/invites", channelHandler.ListInvites)
		authed.POST("/invites/redeem", channelHandler.RedeemInvite)
		authed.GET("/geocode", channelHandler.SearchAddress)

		authed.GET("/channels/:channelId/categories", chatHandler.ListCategories)
		authed.POST("/channels/:channelId/categories", chatHandler.CreateCategory)
		authed.PUT("/categories/:categoryId", chatHandler.RenameCategory)
		authed.DELETE("/categories/:categoryId", chatHandler.DeleteCategory)
		authed.POST("/channels/:channelId/topics", chatHandler.CreateTopic)
		authed.GET("/channels/:channelId/topics", chatHandler.ListTopics)
		authed.GET("/channels/:channelId/topics/all", chatHandler.ListAllTopics)
		authed.PUT("/topics/:topicId", chatHandler.UpdateTopic)
		authed.DELETE("/topics/:topicId", chatHandler.DeleteTopic)
		authed.PUT("/topics/:topicId/order", chatHandler.ReorderTopic)
		authed.GET("/topics/:topicId/members", chatHandler.TopicMembers)
		authed.POST("/topics/:topicId/members", chatHandler.AddTopicMember)
		authed.DELETE("/topics/:topicId/members/:userId", chatHandler.RemoveTopicMember)
		authed.POST("/topics/:topicId/messages", chatHandler.AppendMessage)
		authed.GET("/topics/:topicId/messages", chatHandler.ListMessages)
		authed.POST("/topics/:topicId/read", chatHandler.MarkRead)
		authed.GET("/channels/:channelId/messages/search", chatHandler.SearchMessages)

		authed.POST("/channels/:channelId/events", calendarHandler.CreateEvent)
		authed.GET("/channels/:channelId/events", calendarHandler.ListMonth)
		authed.GET("/channels/:channelId/events/schedule", calendarHandler.StaffSchedule)
		authed.PUT("/events/:eventId", calendarHandler.UpdateEvent)
		authed.DELETE("/events/:eventId", calendarHandler.DeleteEvent)
		authed.POST("/channels/:channelId/contracts", calendarHandler.CreateContract)
		authed.GET("/channels/:channelId/contracts", calendarHandler.ListContracts)

		authed.GET("/channels/:channelId/payroll", payrollHandler.Compute)
		authed.PUT("/events/wages", payrollHandler.UpdateWageOverride)

		authed.GET("/channels/:channelId/attendance", attendanceHandler.Status)
		authed.POST("/channels/:channelId/attendance/in", attendanceHandler.ClockIn)
		authed.POST("/channels/:channelId/attendance/out", attendanceHandler.ClockOut)
		authed.GET("/channels/:channelId/attendance/logs", attendanceHandler.Logs)

		authed.POST("/channels/:channelId/handovers", handoverHandler.Append)
		authed.GET("/channels/:channelId/handovers", handoverHandler.List)
		authed.PUT("/handovers/:entryId", handoverHandler.Update)
		authed.DELETE("/handovers/:entryId", handoverHandler.Delete)

		authed.POST("/transcribe", voiceHandler.Transcribe)
		authed.POST("/channels/:channelId/memos", voiceHandler.Create)
		authed.GET("/channels/:channelId/memos", voiceHandler.List)
		authed.PUT("/memos/:memoId", voiceHandler.Update)
		authed.PUT("/memos/:memoId/share", voiceHandler.Share)
		authed.DELETE("/memos/:memoId", voiceHandler.Delete)
	}

	router.GET("/realtime/v1", realtime.Handle)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("listening", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("forced shutdown", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
