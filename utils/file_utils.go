// utils/file_utils.go
package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const thumbnailWidth = 320

// SaveUploadedImage stores a product or logo image under the given directory
// and writes a resized thumbnail next to it. Returns the stored image path and
// the thumbnail path.
func SaveUploadedImage(file *multipart.FileHeader, directory string) (string, string, error) {
	if !IsValidImageFile(file) {
		return "", "", fmt.Errorf("invalid image file: %s", file.Filename)
	}

	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create directory: %w", err)
	}

	ext := filepath.Ext(file.Filename)
	filename := primitive.NewObjectID().Hex() + ext
	imagePath := filepath.Join(directory, filename)

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(imagePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("failed to copy file contents: %w", err)
	}

	thumbPath, err := writeThumbnail(imagePath, directory, filename)
	if err != nil {
		// The full-size image is usable on its own; keep going without the
		// thumbnail.
		return imagePath, "", nil
	}

	return imagePath, thumbPath, nil
}

// writeThumbnail renders a fixed-width thumbnail preserving aspect ratio
func writeThumbnail(imagePath, directory, filename string) (string, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image for thumbnail: %w", err)
	}

	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	thumbPath := filepath.Join(directory, "thumb_"+filename)

	if err := imaging.Save(thumb, thumbPath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}
	return thumbPath, nil
}
