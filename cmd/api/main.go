package main

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/stepkart/stepkart-backend/internal/address"
	"github.com/stepkart/stepkart-backend/internal/cart"
	"github.com/stepkart/stepkart-backend/internal/config"
	"github.com/stepkart/stepkart-backend/internal/coupon"
	"github.com/stepkart/stepkart-backend/internal/logging"
	"github.com/stepkart/stepkart-backend/internal/maintenance"
	"github.com/stepkart/stepkart-backend/internal/notification"
	"github.com/stepkart/stepkart-backend/internal/order"
	"github.com/stepkart/stepkart-backend/internal/payment"
	"github.com/stepkart/stepkart-backend/internal/product"
	"github.com/stepkart/stepkart-backend/internal/returns"
	"github.com/stepkart/stepkart-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("opening database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal("pinging database", zap.Error(err))
	}
	if err := bootstrapSchema(db); err != nil {
		logger.Fatal("bootstrapping schema", zap.Error(err))
	}

	// notification channels: the log channel always runs, broker-backed
	// email/whatsapp only when a broker is configured
	channels := []notification.Channel{notification.NewLogChannel(logger)}
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("connecting to broker", zap.Error(err))
		}
		defer conn.Close()
		ch, err := notification.SetupExchange(conn)
		if err != nil {
			logger.Fatal("declaring notification exchange", zap.Error(err))
		}
		channels = append(channels,
			notification.NewEmailChannel(ch, notification.Exchange),
			notification.NewWhatsAppChannel(ch, notification.Exchange),
		)
	} else {
		logger.Warn("AMQP_URL not set, email and whatsapp notifications disabled")
	}
	dispatcher := notification.NewDispatcher(notification.NewPostgresRepository(db), logger, channels...)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo)
	productHandler := product.NewHandler(productService)

	addressHandler := address.NewHandler(address.NewService(address.NewPostgresRepository(db)))
	cartHandler := cart.NewHandler(cart.NewService(cart.NewPostgresRepository(db)))

	// the order repository doubles as the coupon service's order checker,
	// and runs inventory mutations through the product repository
	orderRepo := order.NewPostgresRepository(db, productRepo)
	couponService := coupon.NewService(coupon.NewPostgresRepository(db), orderRepo, cfg.ReservationTTL)
	couponHandler := coupon.NewHandler(couponService, cfg.JWTSecret)

	orderService := order.NewService(orderRepo, couponService, userService, dispatcher, cfg.StorePrefix, logger)
	orderHandler := order.NewHandler(orderService, cfg.JWTSecret)

	returnsService := returns.NewService(returns.NewPostgresRepository(db, productRepo), orderService, dispatcher, logger)
	returnsHandler := returns.NewHandler(returnsService, cfg.JWTSecret)

	maintenanceRepo := maintenance.NewPostgresRepository(db)
	maintenanceCache := maintenance.NewCache(maintenanceRepo, cfg.MaintenanceTTL, logger)
	maintenanceHandler := maintenance.NewHandler(maintenanceRepo, maintenanceCache)

	var paymentHandler *payment.Handler
	if cfg.StripeSecretKey != "" {
		paymentService := payment.NewService(orderService, payment.NewStripeGateway(cfg.StripeSecretKey), logger)
		paymentHandler = payment.NewHandler(paymentService, cfg.StripeWebhookSecret)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, payment routes disabled")
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(logging.RequestLogger(logger))
	app.Use(maintenance.Middleware(maintenanceCache))

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	couponHandler.RegisterPublicRoutes(app)
	orderHandler.RegisterPublicRoutes(app)
	returnsHandler.RegisterPublicRoutes(app)
	if paymentHandler != nil {
		paymentHandler.RegisterPublicRoutes(app)
	}

	app.Use(jwtware.New(jwtware.Config{SigningKey: []byte(cfg.JWTSecret)}))

	userHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	admin := app.Group("/api/admin", user.RequireAdmin)
	userHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	couponHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	returnsHandler.RegisterAdminRoutes(admin)
	maintenanceHandler.RegisterAdminRoutes(admin)

	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// bootstrapSchema creates missing tables on startup so a fresh database works
// without a migration step.
func bootstrapSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id SERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            password TEXT NOT NULL,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'customer',
            created_at TEXT,
            updated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS addresses (
            address_id SERIAL PRIMARY KEY,
            user_id INT NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            line1 TEXT NOT NULL DEFAULT '',
            line2 TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            state TEXT NOT NULL DEFAULT '',
            postal_code TEXT NOT NULL DEFAULT '',
            created_at TEXT,
            updated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            product_id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            price NUMERIC NOT NULL DEFAULT 0,
            description TEXT NOT NULL DEFAULT '',
            image TEXT NOT NULL DEFAULT '',
            stock INT NOT NULL DEFAULT 0,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TEXT,
            updated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS product_sizes (
            product_id INT NOT NULL,
            size TEXT NOT NULL,
            stock INT NOT NULL DEFAULT 0,
            PRIMARY KEY (product_id, size)
        )`,
		`CREATE TABLE IF NOT EXISTS carts (
            user_id INT PRIMARY KEY,
            items JSONB NOT NULL DEFAULT '{}',
            updated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            order_id SERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            user_id INT NOT NULL DEFAULT 0,
            guest JSONB,
            items JSONB NOT NULL,
            subtotal NUMERIC NOT NULL DEFAULT 0,
            tax NUMERIC NOT NULL DEFAULT 0,
            shipping NUMERIC NOT NULL DEFAULT 0,
            discount NUMERIC NOT NULL DEFAULT 0,
            total NUMERIC NOT NULL DEFAULT 0,
            coupon_code TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            payment_intent_id TEXT NOT NULL DEFAULT '',
            status_history JSONB NOT NULL,
            shipping_address JSONB NOT NULL,
            carrier JSONB,
            created_at TEXT,
            updated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS coupons (
            id SERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            discount_type TEXT NOT NULL,
            value NUMERIC NOT NULL DEFAULT 0,
            min_order_value NUMERIC NOT NULL DEFAULT 0,
            expires_at TIMESTAMPTZ,
            max_uses INT,
            current_uses INT NOT NULL DEFAULT 0,
            first_time_only BOOLEAN NOT NULL DEFAULT FALSE,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TEXT,
            updated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS coupon_reservations (
            id TEXT PRIMARY KEY,
            code TEXT NOT NULL,
            user_id INT NOT NULL DEFAULT 0,
            guest_email TEXT NOT NULL DEFAULT '',
            expires_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS coupon_usages (
            code TEXT NOT NULL,
            user_id INT NOT NULL DEFAULT 0,
            guest_email TEXT NOT NULL DEFAULT '',
            order_id INT NOT NULL DEFAULT 0,
            used_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS returns (
            return_id SERIAL PRIMARY KEY,
            order_id INT NOT NULL,
            order_code TEXT NOT NULL DEFAULT '',
            user_id INT NOT NULL DEFAULT 0,
            email TEXT NOT NULL DEFAULT '',
            type TEXT NOT NULL DEFAULT 'RETURN',
            items JSONB NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            refund_amount NUMERIC NOT NULL DEFAULT 0,
            pickup_charge NUMERIC NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            created_at TEXT,
            updated_at TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS notification_log (
            id SERIAL PRIMARY KEY,
            order_id INT NOT NULL DEFAULT 0,
            channel TEXT NOT NULL,
            "trigger" TEXT NOT NULL,
            status TEXT NOT NULL,
            error TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS settings (
            key TEXT PRIMARY KEY,
            enabled BOOLEAN NOT NULL DEFAULT FALSE,
            message TEXT NOT NULL DEFAULT '',
            updated_at TEXT
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
