package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/app"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/config"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/controller"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/controller/httpapi"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/lock"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/metrics"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/notify"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository/memory"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	appointments service.AppointmentStore
	doctors      service.DoctorStore
	patients     service.PatientStore
	close        func()
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting doctor channeling service",
		zap.String("storage", cfg.StorageDriver),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("telegram", cfg.TelegramToken != ""),
		zap.Bool("redis_lock", cfg.Redis.Enabled()),
		zap.Int("staff_chats", len(cfg.StaffChatIDs)),
	)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	var telegram *bot.Bot
	if cfg.TelegramToken != "" {
		telegram, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}
	}

	notifiers := notify.Multi{notify.NewLog(logger)}
	if telegram != nil {
		notifiers = append(notifiers, notify.NewTelegram(telegram, cfg.NotifyBreakerTimeout, logger))
	}

	m := metrics.New()

	scheduling := service.NewSchedulingService(st.appointments, st.doctors, st.patients, logger,
		service.WithNotifier(notifiers),
		service.WithLocker(locker),
		service.WithMetrics(m),
		service.WithBusinessHours(cfg.BusinessHours, cfg.EnforceBusinessHours),
	)
	directory, err := service.NewDirectoryService(st.appointments, st.doctors, st.patients, locker, validator.New(), logger)
	if err != nil {
		return err
	}
	reports := service.NewReportService(st.appointments, st.doctors, st.patients, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.NewHandler(scheduling, directory, reports, logger), m, logger)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler := app.NewScheduler(scheduling, cfg.ReminderInterval, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if telegram != nil {
		botController := controller.NewBotController(telegram, scheduling, directory, cfg.StaffChatIDs, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			// Меню команд не критично, бот работает и без него
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		g.Go(func() error {
			return botController.Start(gctx)
		})
	}

	err = g.Wait()
	logger.Info("Service stopped")
	return err
}

// openStores выбирает хранилище по STORAGE_DRIVER
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &stores{
			appointments: memory.NewAppointmentStore(),
			doctors:      memory.NewDoctorStore(),
			patients:     memory.NewPatientStore(),
			close:        func() {},
		}, nil
	}

	pool, err := connectPostgres(ctx, cfg.DBDSN, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		mg, err := app.NewMigrator(pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		err = mg.Run(ctx)
		_ = mg.Close()
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &stores{
		appointments: repository.NewAppointmentRepository(pool),
		doctors:      repository.NewDoctorRepository(pool),
		patients:     repository.NewPatientRepository(pool),
		close:        pool.Close,
	}, nil
}

func connectPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("Connected to PostgreSQL")
	return pool, nil
}

// newLocker: Redis при заданном REDIS_ADDR, иначе блокировки в процессе
func newLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (lock.Locker, func(), error) {
	if !cfg.Redis.Enabled() {
		return lock.NewLocal(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Using Redis doctor locks", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.LockTTL))
	return lock.NewRedis(client, cfg.LockTTL, logger), func() { _ = client.Close() }, nil
}
