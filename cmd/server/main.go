package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"farmerfriend-backend/internal/config"
	"farmerfriend-backend/internal/controller"
	"farmerfriend-backend/internal/logger"
	"farmerfriend-backend/internal/metrics"
	"farmerfriend-backend/internal/model"
	"farmerfriend-backend/internal/notify"
	"farmerfriend-backend/internal/payment"
	"farmerfriend-backend/internal/rabbit"
	"farmerfriend-backend/internal/ratelimit"
	"farmerfriend-backend/internal/repository"
	"farmerfriend-backend/internal/router"
	"farmerfriend-backend/internal/service"
	"farmerfriend-backend/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("loading config", zap.Error(err))
	}
	logger.Init(cfg.App.Env)
	defer logger.Sync()
	log := logger.L()

	if cfg.App.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	// MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal("connecting to mongo", zap.Error(err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("pinging mongo", zap.Error(err))
	}
	db := client.Database(cfg.Mongo.DBName)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Warn("ensuring indexes", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Repositories
	accounts := service.Accounts{
		Users:   repository.NewMongoAccountRepository(db, model.RoleUser),
		Farmers: repository.NewMongoAccountRepository(db, model.RoleFarmer),
		Admins:  repository.NewMongoAccountRepository(db, model.RoleAdmin),
	}
	products := repository.NewMongoProductRepository(db)
	orders := repository.NewMongoOrderRepository(db)
	feedbacks := repository.NewMongoFeedbackRepository(db)

	// Email goes straight over SMTP unless RabbitMQ is configured, in which
	// case order notifications are relayed through the exchange.
	mailer := newMailer(cfg.Mail, log)
	var notifier notify.Sender = mailer

	var amqpConn *amqp091.Connection
	if cfg.Rabbit.URL != "" {
		amqpConn, notifier = connectRabbit(cfg.Rabbit, mailer, log)
	}
	dispatcher := notify.NewDispatcher(notifier, m)

	var images service.ImageStore = storage.Unconfigured{}
	if cfg.Cloudinary.Enabled() {
		store, err := storage.NewCloudinaryStore(cfg.Cloudinary)
		if err != nil {
			log.Fatal("configuring cloudinary", zap.Error(err))
		}
		images = store
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal("parsing redis url", zap.Error(err))
		}
		limiter = ratelimit.NewRedisLimiter(redis.NewClient(opts), cfg.RateLimit.Max, cfg.RateLimit.Window)
	}

	// Services
	authService := service.NewAuthService(cfg.JWT.Secret, cfg.JWT.TTL, accounts)
	accountService := service.NewAccountService(accounts, authService, mailer, cfg.App.FrontendURL)
	productService := service.NewProductService(products, accounts, images)
	orderService := service.NewOrderService(orders, products, accounts, dispatcher, m)
	paymentService := service.NewPaymentService(payment.NewGateway(cfg.Razorpay))
	feedbackService := service.NewFeedbackService(feedbacks, accounts)
	adminService := service.NewAdminService(accounts, products, orders, feedbacks, orderService)
	cartService := service.NewCartService(accounts.Users, products)
	contactService := service.NewContactService(mailer, cfg.Mail.Owner())

	created, err := accountService.BootstrapAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		log.Error("admin bootstrap failed", zap.Error(err))
	} else if created {
		log.Info("admin account created", zap.String("email", cfg.Admin.Email))
	}

	r := router.New(router.Deps{
		Auth:        authService,
		Limiter:     limiter,
		Metrics:     m,
		Gatherer:    reg,
		CORSOrigins: cfg.App.AllowedOrigins(),
		Users:       controller.NewUserController(accountService),
		Admin:       controller.NewAdminController(adminService),
		Products:    controller.NewProductController(productService),
		Orders:      controller.NewOrderController(orderService),
		Payments:    controller.NewPaymentController(paymentService),
		Feedback:    controller.NewFeedbackController(feedbackService),
		Cart:        controller.NewCartController(cartService),
		Contact:     controller.NewContactController(contactService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("FarmerFriend API listening", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	dispatcher.Wait()
	if amqpConn != nil {
		_ = amqpConn.Close()
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error("mongo disconnect", zap.Error(err))
	}
}

// newMailer falls back to a sender that always fails when SMTP is not set up,
// so reset and contact requests report the failure instead of hanging.
func newMailer(cfg config.MailConfig, log *zap.Logger) notify.Sender {
	sender, err := notify.NewMailSender(cfg)
	if err == nil {
		return sender
	}
	log.Warn("email disabled", zap.Error(err))
	return notify.SenderFunc(func(context.Context, notify.Message) error {
		return errors.New("email is not configured")
	})
}

// connectRabbit declares the notification exchange, starts the mail consumer
// and returns a publisher for the dispatcher. On any failure it logs and keeps
// sending mail directly.
func connectRabbit(cfg config.RabbitConfig, mailer notify.Sender, log *zap.Logger) (*amqp091.Connection, notify.Sender) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		log.Error("connecting to rabbitmq, sending mail directly", zap.Error(err))
		return nil, mailer
	}

	pubCh, err := conn.Channel()
	if err == nil {
		err = rabbit.DeclareExchange(pubCh, cfg.Exchange)
	}
	if err != nil {
		log.Error("opening rabbitmq channel, sending mail directly", zap.Error(err))
		_ = conn.Close()
		return nil, mailer
	}

	subCh, err := conn.Channel()
	if err == nil {
		err = rabbit.SetupConsumers(subCh, cfg.Exchange, cfg.Queue, mailer)
	}
	if err != nil {
		log.Error("starting notification consumer, sending mail directly", zap.Error(err))
		_ = conn.Close()
		return nil, mailer
	}

	return conn, rabbit.NewPublisher(pubCh, cfg.Exchange)
}
