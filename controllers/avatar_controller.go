package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Hemdan-MK/Code-Battle-sub000/services"
)

type AvatarController struct {
	S3 *services.S3Service
}

// GenerateUploadURLHandler returns a presigned URL for uploading an avatar.
// The returned key is what clients store as their avatar reference.
func (c *AvatarController) GenerateUploadURLHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.FileName == "" || payload.FileType == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	url, key, err := c.S3.GenerateUploadURL(r.Context(), payload.FileName, payload.FileType)
	if err != nil {
		log.Printf("❌ Error generating avatar upload URL: %v", err)
		http.Error(w, "Failed to generate pre-signed URL", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"url": url, "key": key})
}

// GenerateReadURLHandler returns a presigned URL for reading an avatar key.
func (c *AvatarController) GenerateReadURLHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Key == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	url, err := c.S3.GenerateReadURL(r.Context(), payload.Key)
	if err != nil {
		log.Printf("❌ Error generating avatar read URL: %v", err)
		http.Error(w, "Failed to generate read pre-signed URL", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"url": url})
}
