package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"go-fleet/internal/db"
	"go-fleet/internal/fabric"
	"go-fleet/internal/location"
	myMiddleware "go-fleet/internal/middleware"
	"go-fleet/internal/relay"
	"go-fleet/internal/user"
)

// retryDelay paces reconnect attempts to the platform dependencies.
// Losing Postgres or Redis is expected to be transient in deployment, so
// the process keeps trying instead of dying.
const retryDelay = 5 * time.Second

func main() {
	// 1. Config & Flags
	addr := flag.String("addr", ":8080", "http service address")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("❌ DB_DSN is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("❌ JWT_SECRET is not set")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// 2. Connect to Database (Platform Layer)
	database := connectDatabase(dsn)
	log.Println("✅ Connected to PostgreSQL")

	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database Schema Initialized")

	// 3. Connect to Redis (Platform Layer)
	redisClient := connectRedis(redisAddr)
	log.Println("✅ Connected to Redis")

	// 4. User / Status Feature
	userRepo := user.NewRepository(database.Conn)
	userService := user.NewService(userRepo, jwtSecret)
	userHandler := user.NewHandler(userService)

	// 5. Location Timeline
	locationRepo := location.NewRepository(database.Conn)
	locationHandler := location.NewHandler(locationRepo)

	// 6. Relay Core
	bus := fabric.NewRedisFabric(redisClient)
	registry := relay.NewRegistry()
	router := relay.NewRouter(registry, bus, locationRepo)
	relayHandler := relay.NewHandler(router, registry)

	bridge := relay.NewBridge(registry, bus)
	bridge.Run(context.Background())

	authMiddleware := myMiddleware.NewAuthMiddleware(userService)

	// 7. Define Routes
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public Routes
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Protected Routes (Require JWT)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handle)

		// WebSocket (Real-time)
		r.Get("/ws", relayHandler.ServeWs)

		r.Get("/api/users", userHandler.ListUsers)
		r.Put("/api/users/{id}/status", userHandler.UpdateStatus)
		r.Put("/api/users/{id}/truck-status", userHandler.UpdateTruckStatus)

		r.Get("/api/locations/active", locationHandler.GetActiveTrucks)
		r.Get("/api/locations/{driverID}", locationHandler.GetDriverHistory)
	})

	log.Printf("🚀 Relay starting on %s", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		log.Fatal(err)
	}
}

func connectDatabase(dsn string) *db.Database {
	for {
		database, err := db.NewDatabase(dsn)
		if err == nil {
			return database
		}
		log.Printf("❌ Failed to connect to DB (retrying in %s): %v", retryDelay, err)
		time.Sleep(retryDelay)
	}
}

func connectRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	for {
		_, err := client.Ping(context.Background()).Result()
		if err == nil {
			return client
		}
		log.Printf("❌ Failed to connect to Redis (retrying in %s): %v", retryDelay, err)
		time.Sleep(retryDelay)
	}
}
