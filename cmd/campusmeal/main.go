package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"campusmeal/internal/config"
	"campusmeal/internal/database"
	"campusmeal/internal/gateway"
	"campusmeal/internal/handler"
	"campusmeal/internal/mw"
	"campusmeal/internal/service"
	"campusmeal/internal/storage"
	"campusmeal/internal/storage/memory"
	"campusmeal/internal/storage/postgres"
	"campusmeal/internal/worker"
)

func main() {
	cfg := config.New()

	var (
		orders storage.OrderStore
		users  storage.UserStore
	)
	if cfg.DatabaseURI != "" {
		db, err := database.NewDB(context.Background(), cfg.DatabaseURI)
		if err != nil {
			slog.Error("failed to connect to DB", "error", err)
			os.Exit(1)
		}
		defer database.CloseDB(db)

		if err := database.InitSchema(db); err != nil {
			slog.Error("failed to init DB schema", "error", err)
			os.Exit(1)
		}
		orders = postgres.NewOrderStore(db)
		users = postgres.NewUserStore(db)
		slog.Info("using postgres stores")
	} else {
		orders = memory.NewOrderStore()
		users = memory.NewUserStore()
		slog.Info("using in-memory stores")
	}
	restaurants := memory.NewRestaurantStore()

	// Services
	authSvc := service.NewAuthService(users, cfg.InitialCredit)
	menuSvc := service.NewMenuService(restaurants)
	cartSvc := service.NewCartService(restaurants)
	orderSvc := service.NewOrderService(orders, cartSvc)
	slotSvc := service.NewSlotService(orders, restaurants)

	strategies := service.NewPaymentStrategies(
		service.NewStudentCreditStrategy(users),
		service.NewExternalCardStrategy(gateway.NewSimulatedCardGateway()),
	)
	checkoutSvc := service.NewCheckoutService(orders, restaurants, strategies, cfg.PaymentWindow)

	seedDemoData(menuSvc, cfg.SlotCapacity)

	// Worker
	expirationWorker := worker.NewExpirationWorker(orders, restaurants, cfg.SweepInterval, cfg.SweepTimeout)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/user/register", handler.RegisterHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/user/login", handler.LoginHandler(authSvc, cfg.JWTSecret))
	r.Get("/api/restaurants", handler.ListRestaurantsHandler(menuSvc))
	r.Get("/api/restaurants/{restaurantID}/menu", handler.GetMenuHandler(menuSvc))
	r.Get("/api/restaurants/{restaurantID}/slots", handler.ListSlotsHandler(slotSvc))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Post("/api/restaurants", handler.CreateRestaurantHandler(menuSvc))
		r.Post("/api/restaurants/{restaurantID}/menu", handler.AddDishHandler(menuSvc))
		r.Delete("/api/restaurants/{restaurantID}/menu/{dishID}", handler.RemoveDishHandler(menuSvc))

		r.Get("/api/cart", handler.GetCartHandler(cartSvc))
		r.Post("/api/cart/items", handler.AddCartItemHandler(cartSvc))
		r.Delete("/api/cart", handler.ClearCartHandler(cartSvc))

		r.Post("/api/orders", handler.PlaceOrderHandler(orderSvc))
		r.Get("/api/orders", handler.ListOrdersHandler(orderSvc))
		r.Get("/api/orders/{orderID}", handler.GetOrderHandler(orderSvc))
		r.Post("/api/orders/{orderID}/slot", handler.SelectSlotHandler(slotSvc))
		r.Post("/api/orders/{orderID}/payment", handler.PayOrderHandler(checkoutSvc))
		r.Post("/api/orders/{orderID}/confirm", handler.ConfirmOrderHandler(orderSvc))

		r.Get("/api/user/balance", handler.GetBalanceHandler(authSvc))
		r.Post("/api/user/balance/topup", handler.TopUpHandler(authSvc))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go expirationWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop worker
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}

// seedDemoData creates a campus canteen with a small menu and today's
// delivery slots so a fresh instance is usable immediately.
func seedDemoData(menuSvc *service.MenuService, slotCapacity int) {
	if len(menuSvc.ListRestaurants()) > 0 {
		return
	}

	canteen, err := menuSvc.CreateRestaurant("Campus Canteen", 10, 22)
	if err != nil {
		slog.Error("seed failed", "error", err)
		return
	}
	dishes := []struct {
		name     string
		category string
		price    float64
	}{
		{"Margherita Pizza", "mains", 8.50},
		{"Chicken Burrito", "mains", 7.00},
		{"Caesar Salad", "salads", 5.50},
		{"Iced Tea", "drinks", 2.00},
	}
	for _, d := range dishes {
		if _, err := menuSvc.AddDish(canteen.ID, d.name, d.category, d.price); err != nil {
			slog.Error("seed dish failed", "dish", d.name, "error", err)
		}
	}
	slots, err := menuSvc.GenerateDailySlots(canteen.ID, time.Now(), slotCapacity)
	if err != nil {
		slog.Error("seed slots failed", "error", err)
		return
	}
	slog.Info("seeded demo restaurant", "restaurant_id", canteen.ID, "slots", len(slots))
}
