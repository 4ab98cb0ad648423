package domain

import (
	"strconv"
	"strings"
)

// Upload folders on the media host.
const (
	FolderUploads   = "uploads/"
	FolderPortfolio = "portfolio/"
	FolderProjects  = "projects/"
)

// Media host resource types.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
)

// ResourceTypeFor picks the media host resource type for a MIME type.
func ResourceTypeFor(mimeType string) string {
	if strings.HasPrefix(mimeType, "video/") {
		return ResourceVideo
	}
	return ResourceImage
}

// UploadSignature is a short-lived authorization to upload one asset
// directly to the media host.
type UploadSignature struct {
	Signature    string `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	CloudName    string `json:"cloud_name"`
	APIKey       string `json:"api_key"`
	Folder       string `json:"folder"`
	ResourceType string `json:"resource_type"`
}

// MediaAsset is what the media host returns for a stored upload.
type MediaAsset struct {
	SecureURL    string `json:"secure_url"`
	PublicID     string `json:"public_id"`
	Bytes        int64  `json:"bytes"`
	Format       string `json:"format,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
}

// FileUpload is a client file registered with the backend.
type FileUpload struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	PublicID  string `json:"public_id"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	OrderID   string `json:"order_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	CreatedAt Time   `json:"created_at"`
}

// PortfolioItem is a public showcase asset managed by admins.
type PortfolioItem struct {
	ID         string `json:"id"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url"`
	PublicID   string `json:"public_id"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	OrderIndex int    `json:"order_index"`
	CreatedAt  Time   `json:"created_at"`
}

// PortfolioPosition assigns an order index to a portfolio item.
type PortfolioPosition struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"order_index"`
}

// HumanSize renders a byte count as B, KB or MB.
func HumanSize(n int64) string {
	switch {
	case n < 1024:
		return strconv.FormatInt(n, 10) + " B"
	case n < 1024*1024:
		return strconv.FormatInt(n/1024, 10) + " KB"
	default:
		whole := n / (1024 * 1024)
		tenth := (n % (1024 * 1024)) * 10 / (1024 * 1024)
		return strconv.FormatInt(whole, 10) + "." + strconv.FormatInt(tenth, 10) + " MB"
	}
}
