package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Set properties of the predefined Logger: tag the app and drop the
	// time/source prefix (the platform's log collector adds its own).
	log.SetPrefix("lg/fitness-companion-go-api: ")
	log.SetFlags(0)

	// .env is optional in production — env vars may come from the platform.
	godotenv.Load()

	h := &Handler{
		db:             getDBPool(),
		openAIBaseURL:  "https://api.openai.com",
		barcodeBaseURL: "https://world.openfoodfacts.org",
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	// The mobile client is served from a different origin, so wrap the engine
	// with a CORS layer before handing it to the HTTP server.
	handler := cors.New(cors.Options{
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	fmt.Printf("Starting gin app on :%s...\n", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal(err)
	}
}
