package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/Hemdan-MK/Code-Battle-sub000/config"
	"github.com/Hemdan-MK/Code-Battle-sub000/routes"
	"github.com/Hemdan-MK/Code-Battle-sub000/services"
	"github.com/Hemdan-MK/Code-Battle-sub000/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize DynamoDB client and stores
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	userService := &services.UserService{Dynamo: dynamoService}
	friendGraph := &services.FriendGraphService{Dynamo: dynamoService}
	s3Service := &services.S3Service{Client: services.InitializeS3Client(cfg.AWSRegion), Bucket: cfg.S3Bucket}

	authService := &services.AuthService{
		Users:  userService,
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
	}

	// Initialize the Socket.IO server and the registries behind it
	io := socket.NewIOServer()
	presenceService := services.NewPresenceService(userService, friendGraph)
	teamService := services.NewTeamService(presenceService, socket.Broadcaster{IO: io})
	friendService := &services.FriendService{
		Graph:    friendGraph,
		Users:    userService,
		Presence: presenceService,
	}

	socketServer := socket.NewServer(io, authService, presenceService, teamService, friendService)
	socketServer.RegisterHandlers()

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Code Battle")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterAvatarRoutes(r, s3Service)
	r.Handle("/socket.io/", io)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
