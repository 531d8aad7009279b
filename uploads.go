package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/civicsolver/civicsolver_backend/config"
	"github.com/civicsolver/civicsolver_backend/utils"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

func imageExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
		return ext
	default:
		return ".jpg"
	}
}

// uploadImageHandler stores an image and answers with the access URL plus the
// object key the client hands back as public_id. A 200px thumbnail is written
// next to the original.
func uploadImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		file, header, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		defer file.Close()

		if header.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
			return
		}
		if int64(len(data)) > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}

		objectKey := path.Join("problems", uuid.New().String()+imageExtension(header.Filename))
		mimeType, err := utils.UploadFileToGCS(c.Request.Context(), objectKey, bytes.NewReader(data))
		if err != nil {
			if strings.Contains(err.Error(), "unsupported file type") {
				c.JSON(http.StatusBadRequest, gin.H{"error": "only jpeg and png images are supported"})
				return
			}
			logger.WithFields(logrus.Fields{
				"field":      "uploadImageHandler",
				"object_key": objectKey,
			}).Error(err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return
		}

		thumbnailKey, err := createThumbnail(c.Request.Context(), objectKey, data)
		if err != nil {
			// The original upload stands; a missing thumbnail is not fatal.
			logger.WithFields(logrus.Fields{
				"field":      "uploadImageHandler",
				"object_key": objectKey,
			}).Warn("thumbnail generation failed: " + err.Error())
			thumbnailKey = ""
		}

		logger.WithFields(logrus.Fields{
			"object_key": objectKey,
			"mime_type":  mimeType,
			"size":       len(data),
		}).Info("[upload.complete]")

		resp := gin.H{
			"success":   true,
			"url":       utils.BuildObjectAccessURL(objectKey),
			"public_id": objectKey,
		}
		if thumbnailKey != "" {
			resp["thumbnail_url"] = utils.BuildObjectAccessURL(thumbnailKey)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func createThumbnail(ctx context.Context, objectKey string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", err
	}

	thumbnailKey := thumbnailObjectKey(objectKey)
	if err := utils.UploadBytesToGCS(ctx, thumbnailKey, buf.Bytes(), "image/jpeg"); err != nil {
		return "", err
	}
	return thumbnailKey, nil
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := path.Base(objectKey)
	return path.Join(dir, "thumbnails", filename)
}
