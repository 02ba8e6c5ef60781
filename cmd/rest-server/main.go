package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	rv8 "github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/sanLimbu/tasks-api/cmd/internal"
	internaldomain "github.com/sanLimbu/tasks-api/internal"
	envvar "github.com/sanLimbu/tasks-api/internal/envar"
	"github.com/sanLimbu/tasks-api/internal/kafka"
	"github.com/sanLimbu/tasks-api/internal/memcached"
	"github.com/sanLimbu/tasks-api/internal/postgresql"
	"github.com/sanLimbu/tasks-api/internal/rabbitmq"
	"github.com/sanLimbu/tasks-api/internal/redis"
	"github.com/sanLimbu/tasks-api/internal/rest"
	"github.com/sanLimbu/tasks-api/internal/service"
)

func main() {
	var env, address string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.StringVar(&address, "address", ":9234", "HTTP Server Address")
	flag.Parse()

	errC, err := run(env, address)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env, address string) (<-chan error, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "zap.NewProduction")
	}

	if err := envvar.Load(env); err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "envvar.Load")
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewVaultProvider")
	}

	conf := envvar.New(vault)

	pool, err := internal.NewPostgreSQL(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewPostgreSQL")
	}

	memcached, err := internal.NewMemcached(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewMemcached")
	}

	rdb, err := internal.NewRedis(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewRedis")
	}

	_, err = internal.NewOTExporter(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	rest.SetDebug(os.Getenv("API_DEBUG") == "true")

	logging := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info(r.Method,
				zap.Time("time", time.Now()),
				zap.String("url", r.URL.String()),
			)

			h.ServeHTTP(w, r)
		})
	}

	srv, err := newServer(serverConfig{
		Address:     address,
		DB:          pool,
		Memcached:   memcached,
		Redis:       rdb,
		Metrics:     promhttp.Handler(),
		Middlewares: []func(next http.Handler) http.Handler{otelchi.Middleware("tasks-api-server"), logging},
		Logger:      logger,
		Conf:        conf,
	})
	if err != nil {
		return nil, fmt.Errorf("newServer: %w", err)
	}

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		defer func() {
			_ = logger.Sync()
			pool.Close()
			stop()
			cancel()
			close(errC)
		}()

		srv.SetKeepAlivesEnabled(false)

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving", zap.String("address", address))

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the
		// returned error is ErrServerClosed."
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errC <- err
		}
	}()

	return errC, nil
}

type serverConfig struct {
	Address     string
	DB          *pgxpool.Pool
	Memcached   *memcache.Client
	Redis       *rv8.Client
	Metrics     http.Handler
	Middlewares []func(next http.Handler) http.Handler
	Logger      *zap.Logger
	Conf        *envvar.Configuration
}

func newServer(conf serverConfig) (*http.Server, error) {
	router := chi.NewRouter()
	router.Use(render.SetContentType(render.ContentTypeJSON))

	for _, mw := range conf.Middlewares {
		router.Use(mw)
	}

	msgBroker, err := newMessageBroker(conf.Conf)
	if err != nil {
		return nil, fmt.Errorf("newMessageBroker: %w", err)
	}

	taskRepo := memcached.NewTask(conf.Memcached, postgresql.NewTask(conf.DB), conf.Logger)
	categoryRepo := postgresql.NewCategory(conf.DB)
	userRepo := postgresql.NewUser(conf.DB)
	sessionRepo := redis.NewSession(conf.Redis)

	taskSvc := service.NewTask(conf.Logger, taskRepo, categoryRepo, msgBroker)
	categorySvc := service.NewCategory(conf.Logger, categoryRepo)
	userSvc := service.NewUser(conf.Logger, userRepo)
	authSvc := service.NewAuth(conf.Logger, userRepo, sessionRepo)

	rest.RegisterOpenAPI(router)
	rest.NewUserHandler(userSvc, authSvc).Register(router)

	router.Group(func(r chi.Router) {
		r.Use(rest.Authenticator(authSvc))

		rest.NewTaskHandler(taskSvc).Register(r)
		rest.NewCategoryHandler(categorySvc).Register(r)
	})

	router.Handle("/metrics", conf.Metrics)

	lmt := tollbooth.NewLimiter(3, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Second})
	lmtmw := tollbooth.LimitHandler(lmt, router)

	return &http.Server{
		Handler:           lmtmw,
		Addr:              conf.Address,
		ReadTimeout:       1 * time.Second,
		ReadHeaderTimeout: 1 * time.Second,
		WriteTimeout:      1 * time.Second,
		IdleTimeout:       1 * time.Second,
	}, nil
}

// newMessageBroker selects the event publisher. Supported values for MESSAGE_BROKER
// are "kafka" and "rabbitmq".
func newMessageBroker(conf *envvar.Configuration) (service.TaskMessageBrokerRepository, error) {
	broker, err := conf.Get("MESSAGE_BROKER")
	if err != nil {
		return nil, fmt.Errorf("conf.Get MESSAGE_BROKER: %w", err)
	}

	switch broker {
	case "kafka":
		producer, err := internal.NewKafkaProducer(conf)
		if err != nil {
			return nil, fmt.Errorf("internal.NewKafkaProducer: %w", err)
		}

		return kafka.NewTask(producer.Producer, producer.Topic), nil
	case "rabbitmq":
		rmq, err := internal.NewRabbitMQ(conf)
		if err != nil {
			return nil, fmt.Errorf("internal.NewRabbitMQ: %w", err)
		}

		return rabbitmq.NewTask(rmq.Channel)
	}

	return nil, fmt.Errorf("unsupported MESSAGE_BROKER %q", broker)
}
