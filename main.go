package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abm5616/farmcloud/catalog"
	"github.com/abm5616/farmcloud/config"
	"github.com/abm5616/farmcloud/consumers"
	"github.com/abm5616/farmcloud/controllers"
	"github.com/abm5616/farmcloud/database"
	"github.com/abm5616/farmcloud/logger"
	"github.com/abm5616/farmcloud/middlewares"
	"github.com/abm5616/farmcloud/models"
	"github.com/abm5616/farmcloud/rabbitmq"
	"github.com/abm5616/farmcloud/repository"
)

func main() {
	cfg := config.LoadConfig()
	logger.New("farmcloud-orders", cfg.LogLevel)

	if err := database.InitDB(); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	defaultFee, err := models.ParseMoney(cfg.DefaultDeliveryFee)
	if err != nil {
		log.Fatalf("Invalid DEFAULT_DELIVERY_FEE: %v", err)
	}

	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()

	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}

	store := repository.NewMySQL(database.DB)
	catalogAccessor := catalog.NewCached(catalog.NewMySQL(database.DB), cfg.RedisAddr, cfg.CatalogCacheTTL)

	go consumers.StartOrderConsumer(rmq.Channel, cfg, store)

	orderController := controllers.NewOrderController(store, rmq, defaultFee, cfg.PaymentCheckDelay)
	catalogController := controllers.NewCatalogController(catalogAccessor)

	r := gin.Default()
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/api")
	authGroup.Use(middlewares.AuthMiddleware())
	{
		authGroup.POST("/orders", orderController.CreateOrder)
		authGroup.GET("/orders", orderController.GetOrders)
		authGroup.GET("/orders/:id", orderController.GetOrderDetails)
		authGroup.PATCH("/orders/:id", orderController.UpdateOrder)
		authGroup.PUT("/orders/:id/status", orderController.UpdateOrderStatus)
		authGroup.DELETE("/orders/:id", orderController.DeleteOrder)

		authGroup.GET("/customers", catalogController.GetCustomers)
		authGroup.GET("/animals", catalogController.GetAnimals)
		authGroup.GET("/offers", catalogController.GetOffers)
	}

	r.POST("/dead-letter", controllers.HandleDeadLetter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Order service starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
