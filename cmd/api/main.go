package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"

	"github.com/yourorg/market-metrics/internal/api"
	"github.com/yourorg/market-metrics/internal/db"
)

func main() {
	database, err := db.NewDatabase(db.FromEnv())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	temporalClient, err := client.Dial(client.Options{
		HostPort:  getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		Namespace: getEnv("TEMPORAL_NAMESPACE", "default"),
	})
	if err != nil {
		log.Printf("Warning: Failed to connect to Temporal: %v", err)
	}
	if temporalClient != nil {
		defer temporalClient.Close()
	}

	apiV1 := r.Group("/api/v1")
	{
		handler := api.NewHandler(db.NewRunRepo(database.DB))
		apiV1.GET("/runs", handler.GetRuns)
		apiV1.GET("/runs/:id", handler.GetRun)

		if temporalClient != nil {
			q := getEnv("TEMPORAL_TASK_QUEUE", "market-metrics")
			wfHandler := api.NewWorkflowHandler(temporalClient, q)
			apiV1.POST("/workflows/metrics", wfHandler.StartMetricsWorkflow)
			apiV1.POST("/workflows/fetch", wfHandler.StartFetchWorkflow)
			apiV1.GET("/workflows/:id/status", wfHandler.GetWorkflowStatus)
		}
	}

	port := getEnv("PORT", "8080")
	log.Printf("Server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
