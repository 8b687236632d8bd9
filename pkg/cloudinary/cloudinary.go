package cloudinary

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Uploader stores payment receipt images.
type Uploader interface {
	UploadReceipt(ctx context.Context, file io.Reader, folder, publicID string) (*UploadResult, error)
	DeleteByURL(ctx context.Context, url string) error
}

type UploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	PublicID     string `json:"public_id"`
}

const (
	ImageWidth = 1200
	ThumbWidth = 200
)

// receipts keep their full width so amounts stay legible
const receiptEager = "q_auto,f_auto,w_1200,c_limit"

var eagerAsyncFalse = false

// BuildOptimizedImageURL returns a delivery URL with automatic quality and format.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_limit/%s",
		cloudName, width, publicID)
}

// PublicIDFromURL extracts "folder/name" from a res.cloudinary.com delivery URL.
func PublicIDFromURL(url string) string {
	_, rest, ok := strings.Cut(url, "/upload/")
	if !ok {
		return ""
	}
	parts := strings.Split(rest, "/")
	for len(parts) > 1 && (isVersion(parts[0]) || isTransform(parts[0])) {
		parts = parts[1:]
	}
	id := strings.Join(parts, "/")
	if i := strings.LastIndex(id, "."); i > strings.LastIndex(id, "/") {
		id = id[:i]
	}
	return id
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isTransform matches segments such as "q_auto,f_auto,w_200".
func isTransform(s string) bool {
	for _, t := range strings.Split(s, ",") {
		k, _, ok := strings.Cut(t, "_")
		if !ok || len(k) == 0 || len(k) > 2 {
			return false
		}
	}
	return true
}

type client struct {
	cloudName string
	uploader  *uploader.API
}

func (c *client) UploadReceipt(ctx context.Context, file io.Reader, folder, publicID string) (*UploadResult, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      receiptEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		URL:          result.SecureURL,
		ThumbnailURL: BuildOptimizedImageURL(c.cloudName, result.PublicID, ThumbWidth),
		PublicID:     result.PublicID,
	}, nil
}

func (c *client) DeleteByURL(ctx context.Context, url string) error {
	id := PublicIDFromURL(url)
	if id == "" {
		return nil
	}
	_, err := c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	return err
}

// NewClientFromParams builds an Uploader from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Uploader, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &client{cloudName: cloudName, uploader: up}, nil
}
