package routes

import (
	"github.com/Hemdan-MK/Code-Battle-sub000/controllers"
	"github.com/Hemdan-MK/Code-Battle-sub000/services"

	"github.com/gorilla/mux"
)

// RegisterAvatarRoutes registers avatar asset routes under `/api/avatars`
func RegisterAvatarRoutes(router *mux.Router, s3Service *services.S3Service) {
	controller := &controllers.AvatarController{S3: s3Service}

	avatarRouter := router.PathPrefix("/api/avatars").Subrouter()
	avatarRouter.HandleFunc("/upload-url", controller.GenerateUploadURLHandler).Methods("POST") // Presign an avatar upload
	avatarRouter.HandleFunc("/read-url", controller.GenerateReadURLHandler).Methods("POST")     // Presign an avatar read
}
