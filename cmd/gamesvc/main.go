package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/gamemate-services/configs"
	"github.com/avvvet/gamemate-services/internal/gamesvc/broker"
	svcconfig "github.com/avvvet/gamemate-services/internal/gamesvc/config"
	"github.com/avvvet/gamemate-services/internal/gamesvc/db"
	handlers "github.com/avvvet/gamemate-services/internal/gamesvc/handlers"
	"github.com/avvvet/gamemate-services/internal/gamesvc/service"
	"github.com/avvvet/gamemate-services/internal/gamesvc/store"
	nats "github.com/avvvet/gamemate-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
}

type stores struct {
	users        service.UserStore
	games        service.GameStore
	joinRequests service.JoinRequestStore
}

func main() {
	cfg, err := svcconfig.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var s stores
	if cfg.DBUrl == "" {
		log.Warn("POSTGRES_URL is not set, using the in-memory store; data is lost on restart")
		mem := store.NewMemory()
		s = stores{users: mem, games: mem, joinRequests: mem}
	} else {
		// pg connection
		dbpool, err := db.Connect(cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer db.ClosePool()
		log.Printf("pg connection established successfully")

		if cfg.Migrate {
			if err := db.Migrate(context.Background(), dbpool); err != nil {
				log.Fatalf("Failed to migrate DB: %v", err)
			}
		}

		s = stores{
			users:        store.NewUserStore(dbpool),
			games:        store.NewGameStore(dbpool),
			joinRequests: store.NewJoinRequestStore(dbpool),
		}
	}

	// events are optional; without NATS the services publish nowhere
	var events service.EventPublisher
	if cfg.NatsURL != "" {
		n, err := nats.Connect(cfg.NatsURL, cfg.NatsToken)
		if err != nil {
			log.Fatalf("Error: unable to connect to NATS server %v", err)
		}
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)

		events = broker.NewBroker(n.Conn)
	}

	userService := service.NewUserService(s.users)
	gameService := service.NewGameService(s.games, s.users, s.joinRequests, events)
	joinRequestService := service.NewJoinRequestService(s.games, s.joinRequests, events)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.AllowedOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.StripSlashes)
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(userService, gameService, joinRequestService)
	h.InitAuth(cfg.JWTSecret, cfg.TokenTTL)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
