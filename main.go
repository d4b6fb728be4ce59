// file: main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/google/uuid"

	"mektebim_backend/internals/configs"
	database "mektebim_backend/internals/databases"
	helper "mektebim_backend/internals/helpers"
	"mektebim_backend/internals/middlewares"
	"mektebim_backend/internals/route"
	"mektebim_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	database.ConnectDB()
	database.TunePool()

	if configs.GetEnv("RUN_SEEDS", "false") == "true" {
		seeds.RunAllSeeds(database.DB)
	}

	app := fiber.New(fiber.Config{
		AppName:      "mektebim_backend",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromFiberError(c, err)
		},
	})

	app.Use(middlewares.RecoveryMiddleware())
	app.Use(middlewares.CorsMiddleware())
	app.Use(compress.New())
	app.Use(etag.New())

	// request id + timing
	app.Use(func(c *fiber.Ctx) error {
		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)

		start := time.Now()
		err := c.Next()
		log.Printf("[HTTP] %s %s %d %s rid=%s",
			c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start), rid)
		return err
	})

	route.SetupRoutes(app, database.DB)

	port := configs.GetEnv("PORT", "8080")

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("[ERROR] server stopped: %v", err)
		}
	}()
	log.Printf("[INFO] mektebim_backend listening on :%s", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("[WARN] shutdown: %v", err)
	}
}
