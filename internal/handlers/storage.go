package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hanbit-dev/authportal-backend/internal/services"
)

// ListStorageObjects handles GET /api/storage.
func ListStorageObjects(storage *services.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		prefix := c.Query("prefix")
		maxKeys := int64(0)
		if raw := c.Query("max"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max"})
				return
			}
			maxKeys = parsed
		}

		objects, err := storage.ListObjects(prefix, maxKeys)
		if err != nil {
			log.Printf("storage list failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list objects"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"objects": objects})
	}
}

// CreateUploadURL handles POST /api/storage: presigned PUT for a key.
func CreateUploadURL(storage *services.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ObjectKey   string `json:"objectKey" binding:"required"`
			ContentType string `json:"contentType" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		uploadURL, err := storage.PutPresignedURL(input.ObjectKey, input.ContentType)
		if err != nil {
			log.Printf("storage presign failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to presign upload"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": uploadURL})
	}
}

// DeleteStorageObject handles DELETE /api/storage?key=.
func DeleteStorageObject(storage *services.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("key")
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "key required"})
			return
		}

		if err := storage.DeleteObject(key); err != nil {
			log.Printf("storage delete failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete object"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
