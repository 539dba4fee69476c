package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/mkwawa-heritage/marketplace-api/docs"
	v1 "github.com/mkwawa-heritage/marketplace-api/internal/api/handler/v1"
	"github.com/mkwawa-heritage/marketplace-api/internal/api/middleware"
	"github.com/mkwawa-heritage/marketplace-api/internal/config"
	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository/dao"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository/memory"
	"github.com/mkwawa-heritage/marketplace-api/internal/service"
)

type StaffStore interface {
	service.AuthStaffRepository
	service.StaffRepository
}

// Stores bundles the persistence backends the services run on.
type Stores struct {
	Catalog service.CatalogRepository
	Tourism service.TourismRepository
	Staff   StaffStore
}

func PostgresStores(db *gorm.DB) Stores {
	return Stores{
		Catalog: repository.NewCatalogRepository(dao.NewCatalogDAO(db)),
		Tourism: repository.NewTourismRepository(dao.NewTourismDAO(db)),
		Staff:   repository.NewStaffRepository(dao.NewStaffDAO(db)),
	}
}

func MemoryStores(store *memory.Store) Stores {
	return Stores{
		Catalog: store,
		Tourism: store,
		Staff:   store,
	}
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	stores  Stores
	limiter *middleware.RateLimiter
}

func NewServer(conf *config.AppConfig, stores Stores, refs domain.ReferenceIssuer, events service.EventPublisher, rdb *redis.Client) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		stores:  stores,
		limiter: middleware.NewRateLimiter(conf.RateLimit, rdb),
	}

	s.MountMiddlewares()

	bidLedger := service.NewBidLedger(stores.Catalog)
	bookingLedger := service.NewBookingLedger(stores.Tourism, refs, events)

	authHandler := s.initAuthHandler()
	biddingHandler := v1.NewBiddingHandler(bidLedger)
	bookingHandler := v1.NewBookingHandler(bookingLedger)
	adminHandler := v1.NewAdminHandler(bidLedger, bookingLedger)
	s.MountHandlers(authHandler, biddingHandler, bookingHandler, adminHandler)

	return s
}

func (s *Server) initAuthHandler() *v1.AuthHandler {
	authSvc := service.NewAuthService(s.stores.Staff, s.Config.Staff.BcryptCost)
	staffSvc := service.NewStaffService(s.stores.Staff)
	handler := v1.NewAuthHandler(s.Config.API, authSvc, staffSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(middleware.ZapLogger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, biddingHandler *v1.BiddingHandler, bookingHandler *v1.BookingHandler, adminHandler *v1.AdminHandler) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/login", authHandler.HandleLogin)

		public.GET("/items", biddingHandler.HandleListItems)
		public.GET("/items/slug/:slug", biddingHandler.HandleGetItemBySlug)
		public.GET("/items/:itemID", biddingHandler.HandleGetItem)
		public.GET("/items/:itemID/bids", biddingHandler.HandleListBids)
		public.POST("/items/:itemID/bids", s.limiter.Limit("bids"), biddingHandler.HandleSubmitBid)

		public.GET("/sites", bookingHandler.HandleListSites)
		public.GET("/sites/slug/:slug", bookingHandler.HandleGetSiteBySlug)
		public.GET("/sites/:siteID", bookingHandler.HandleGetSite)
		public.POST("/sites/:siteID/bookings", s.limiter.Limit("bookings"), bookingHandler.HandleCreateBooking)
		public.GET("/bookings/:reference", bookingHandler.HandleGetBooking)
	}

	admin := s.Router.Group(basePath+"/admin", middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.GET("/me", authHandler.HandleMe)
		admin.POST("/items", adminHandler.HandleCreateItem)
		admin.POST("/sites", adminHandler.HandleCreateSite)
		admin.PATCH("/bookings/:reference/status", adminHandler.HandleUpdateBookingStatus)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Mkwawa marketplace API"
	docs.SwaggerInfo.Description = "Artisan auctions and heritage site bookings."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
