package main

import (
	"os"
	"strings"
	"time"

	"blocks-cms/config"
	"blocks-cms/database"
	routes "blocks-cms/internal/app/http"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	logging.Init(config.LOG_LEVEL, os.Stdout)

	reg, err := catalog.Load(config.CATALOG_PATH)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load model catalog")
	}
	database.InitDB(reg)

	services, err := routes.NewServices(database.DB, reg, config.DEFAULT_LANGUAGE)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build services")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(config.CORS_ORIGIN, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: config.CORS_ORIGIN != "*",
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, services)

	log.Info().Str("port", config.PORT).Msg("listening")
	if err := r.Run(":" + config.PORT); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
