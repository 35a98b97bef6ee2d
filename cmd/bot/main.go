// Command bot runs the Telegram storefront: the bot long-poller, the HTTP
// API consumed by the storefront web view, and the keep-alive pinger, all
// sharing one SQLite database and one set of services.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/akbarovs/go-storefront-bot/internal/bot"
	"github.com/akbarovs/go-storefront-bot/internal/catalog"
	"github.com/akbarovs/go-storefront-bot/internal/commerce"
	"github.com/akbarovs/go-storefront-bot/internal/config"
	"github.com/akbarovs/go-storefront-bot/internal/domain"
	httpapi "github.com/akbarovs/go-storefront-bot/internal/http"
	"github.com/akbarovs/go-storefront-bot/internal/keepalive"
	"github.com/akbarovs/go-storefront-bot/internal/repo"
	"github.com/akbarovs/go-storefront-bot/internal/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := config.NewLogger(cfg)
	log.Logger = logger

	if cfg.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Upstream clients and the catalog cache.
	billz := catalog.NewClient(cfg.Billz, logger)
	cache := catalog.NewCache(billz.FetchAll, cfg.CatalogTTL)
	woo := commerce.NewClient(cfg.Woo, logger)

	// Services, shared between the bot and the HTTP surface.
	cartSvc := services.NewCartService(db, cartRepoShim{})
	profileSvc := services.NewProfileService(db, userRepoShim{})
	profileSvc.DebounceWindow = cfg.ActivityDebounce
	orderSvc := services.NewOrderService(db, orderRepoShim{}, woo, nil, logger)

	sessions := bot.NewSessionStore()
	b, err := bot.New(cfg.BotToken, sessions, profileSvc, cartSvc, orderSvc, cfg.WebAppURL, logger)
	if err != nil {
		return fmt.Errorf("telegram bot: %w", err)
	}
	// The bot is the notifier for checkout messages; wired after construction
	// because each side needs the other.
	orderSvc.Notifier = b

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, cfg, cache, cartSvc, orderSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go b.Run(ctx)

	pinger := keepalive.New(cfg.SelfPingURL, logger)
	pinger.Start()
	defer pinger.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	logger.Info().Msg("stopped")
	return nil
}

//
// Repo shims: adapt the repository free functions to the service interfaces,
// keeping services decoupled from the concrete repo package.
//

type cartRepoShim struct{}

func (cartRepoShim) SaveCart(ctx context.Context, db *gorm.DB, chatID int64, items domain.CartItems) error {
	return repo.SaveCart(ctx, db, chatID, items)
}

func (cartRepoShim) GetCart(ctx context.Context, db *gorm.DB, chatID int64) (domain.CartItems, error) {
	return repo.GetCart(ctx, db, chatID)
}

type orderRepoShim struct{}

func (orderRepoShim) CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return repo.CreateOrder(ctx, db, o)
}

func (orderRepoShim) ListOrders(ctx context.Context, db *gorm.DB, chatID int64) ([]domain.Order, error) {
	return repo.ListOrders(ctx, db, chatID)
}

func (orderRepoShim) ClearOrders(ctx context.Context, db *gorm.DB, chatID int64) (int64, int64, error) {
	return repo.ClearOrders(ctx, db, chatID)
}

func (orderRepoShim) UpdateOrderStatus(ctx context.Context, db *gorm.DB, transID, status string) error {
	return repo.UpdateOrderStatus(ctx, db, transID, status)
}

type userRepoShim struct{}

func (userRepoShim) UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return repo.UpsertUser(ctx, db, u)
}

func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, chatID int64) (*domain.User, error) {
	return repo.GetUser(ctx, db, chatID)
}

func (userRepoShim) UpdateUserName(ctx context.Context, db *gorm.DB, chatID int64, name string) error {
	return repo.UpdateUserName(ctx, db, chatID, name)
}

func (userRepoShim) UpdateUserPhone(ctx context.Context, db *gorm.DB, chatID int64, phone string) error {
	return repo.UpdateUserPhone(ctx, db, chatID, phone)
}

func (userRepoShim) UpdateUserLang(ctx context.Context, db *gorm.DB, chatID int64, lang string) error {
	return repo.UpdateUserLang(ctx, db, chatID, lang)
}

func (userRepoShim) TouchUserActivity(ctx context.Context, db *gorm.DB, chatID int64, now time.Time, window time.Duration) (bool, error) {
	return repo.TouchUserActivity(ctx, db, chatID, now, window)
}
