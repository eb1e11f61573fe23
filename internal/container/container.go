package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/staybook/internal/cache"
	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/config"
	"github.com/joshua-takyi/staybook/internal/helpers"
	"github.com/joshua-takyi/staybook/internal/models"
	"github.com/joshua-takyi/staybook/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	MongoDBClient *mongo.Client
	Repo          *models.MongodbRepo
	Cache         cache.Store

	UserService       *services.UserService
	PropertyService   *services.PropertyService
	BookingService    *services.BookingService
	ReviewService     *services.ReviewService
	FavouritesService *services.FavouriteService
	AdminService      *services.AdminService
	AutomationService *services.AutomationService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
	store cache.Store,
) *Container {
	clk := clock.NewSystem()
	// Initialize repositories
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBName)

	var mailer services.Mailer = services.NewLogMailer(logger)
	if cfg.ResendAPIKey != "" {
		mailer = services.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	}
	var uploader services.ImageUploader
	if cld != nil {
		uploader = helpers.NewCloudinaryUploader(cld)
	}

	userService := services.NewUserService(repo, mailer, store, clk, logger, services.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.JWTTTL,
		OTPTTL:    cfg.OTPTTL,
	})

	return &Container{
		Config:            cfg,
		Logger:            logger,
		Cloudinary:        cld,
		MongoDBClient:     mongoDBClient,
		Repo:              repo,
		Cache:             store,
		UserService:       userService,
		PropertyService:   services.NewPropertyService(repo, repo, repo, uploader, clk, services.WithLockTTL(cfg.BookingLockTTL)),
		BookingService:    services.NewBookingService(repo, repo, repo, clk, services.WithLockTTL(cfg.BookingLockTTL)),
		ReviewService:     services.NewReviewService(repo, repo, repo, clk),
		FavouritesService: services.NewFavouriteService(repo, repo, clk),
		AdminService:      services.NewAdminService(repo, repo, repo, repo, store, clk, logger),
		AutomationService: services.NewAutomationService(repo, repo, clk, cfg.UnverifiedGrace, logger),
	}
}
