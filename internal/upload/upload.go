// Package upload runs the three-step asset upload: authorize with the
// backend, send the bytes to the media host, register the result with the
// backend. Nothing spans the three calls transactionally. When the last step
// fails the remote asset is orphaned; it is logged for reconciliation and
// reported as *OrphanedAssetError.
package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
	"github.com/crowncreative/portal/pkg/media"
)

// Gateway is the backend surface the saga uses. *client.Client satisfies it.
type Gateway interface {
	UploadSignature(ctx context.Context, resourceType, folder string) (*domain.UploadSignature, error)
	RegisterFile(ctx context.Context, req client.RegisterFileRequest) (*domain.FileUpload, error)
	AddPortfolioItem(ctx context.Context, req client.PortfolioItemRequest) (*domain.PortfolioItem, error)
	UploadProjectFile(ctx context.Context, userID string, req client.ProjectFileRequest) (*domain.ProjectFile, error)
}

// MediaHost stores the bytes. *media.Client satisfies it.
type MediaHost interface {
	Upload(ctx context.Context, sig domain.UploadSignature, f media.File) (*domain.MediaAsset, error)
}

// OrphanedAssetError means the media host holds an asset the backend has no
// record of.
type OrphanedAssetError struct {
	Asset  domain.MediaAsset
	Folder string
	Err    error
}

func (e *OrphanedAssetError) Error() string {
	return fmt.Sprintf("uploaded %s but could not register it: %v", e.Asset.PublicID, e.Err)
}

func (e *OrphanedAssetError) Unwrap() error { return e.Err }

// IsOrphaned reports whether err left an unregistered remote asset.
func IsOrphaned(err error) bool {
	var oe *OrphanedAssetError
	return errors.As(err, &oe)
}

// Saga runs uploads.
type Saga struct {
	gw     Gateway
	host   MediaHost
	logger *zap.Logger
}

// New creates a saga.
func New(gw Gateway, host MediaHost, logger *zap.Logger) *Saga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saga{gw: gw, host: host, logger: logger}
}

// registerFunc is the final step. It receives the stored asset.
type registerFunc func(ctx context.Context, asset *domain.MediaAsset) error

func (s *Saga) run(ctx context.Context, f media.File, folder string, register registerFunc) (*domain.MediaAsset, error) {
	sig, err := s.gw.UploadSignature(ctx, domain.ResourceTypeFor(f.MimeType), folder)
	if err != nil {
		return nil, fmt.Errorf("upload: authorize: %w", err)
	}

	asset, err := s.host.Upload(ctx, *sig, f)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	if err := register(ctx, asset); err != nil {
		s.logger.Warn("orphaned media asset",
			zap.String("public_id", asset.PublicID),
			zap.String("secure_url", asset.SecureURL),
			zap.String("folder", sig.Folder),
			zap.String("filename", f.Name),
			zap.Error(err))
		return asset, &OrphanedAssetError{Asset: *asset, Folder: sig.Folder, Err: err}
	}

	s.logger.Info("media asset registered",
		zap.String("public_id", asset.PublicID),
		zap.String("folder", sig.Folder),
		zap.Int64("bytes", asset.Bytes))
	return asset, nil
}

// File uploads a client file, optionally tied to an order or project.
func (s *Saga) File(ctx context.Context, f media.File, orderID, projectID string) (*domain.FileUpload, error) {
	var out *domain.FileUpload
	_, err := s.run(ctx, f, domain.FolderUploads, func(ctx context.Context, a *domain.MediaAsset) error {
		rec, err := s.gw.RegisterFile(ctx, client.RegisterFileRequest{
			Filename:  f.Name,
			URL:       a.SecureURL,
			PublicID:  a.PublicID,
			MimeType:  f.MimeType,
			Size:      a.Bytes,
			OrderID:   orderID,
			ProjectID: projectID,
		})
		out = rec
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Portfolio uploads a showcase item at position orderIndex.
func (s *Saga) Portfolio(ctx context.Context, f media.File, title string, orderIndex int) (*domain.PortfolioItem, error) {
	var out *domain.PortfolioItem
	_, err := s.run(ctx, f, domain.FolderPortfolio, func(ctx context.Context, a *domain.MediaAsset) error {
		item, err := s.gw.AddPortfolioItem(ctx, client.PortfolioItemRequest{
			Title:      title,
			URL:        a.SecureURL,
			PublicID:   a.PublicID,
			MimeType:   f.MimeType,
			Size:       a.Bytes,
			OrderIndex: orderIndex,
		})
		out = item
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectFile attaches a file to a client's project board. uploadedBy is
// "admin" or "client".
func (s *Saga) ProjectFile(ctx context.Context, f media.File, userID, uploadedBy, description string) (*domain.ProjectFile, error) {
	var out *domain.ProjectFile
	_, err := s.run(ctx, f, domain.FolderProjects, func(ctx context.Context, a *domain.MediaAsset) error {
		pf, err := s.gw.UploadProjectFile(ctx, userID, client.ProjectFileRequest{
			Filename:    f.Name,
			URL:         a.SecureURL,
			PublicID:    a.PublicID,
			MimeType:    f.MimeType,
			Size:        a.Bytes,
			UploadedBy:  uploadedBy,
			Description: description,
		})
		out = pf
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Open prepares a local file for upload. The caller closes the returned file.
func Open(path string) (media.File, *os.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return media.File{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := fh.Stat()
	if err != nil {
		fh.Close() //nolint:errcheck
		return media.File{}, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		fh.Close() //nolint:errcheck
		return media.File{}, nil, fmt.Errorf("%s is a directory", path)
	}

	mimeType, err := detectMIME(fh, path)
	if err != nil {
		fh.Close() //nolint:errcheck
		return media.File{}, nil, err
	}
	return media.File{
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Size:     info.Size(),
		Body:     fh,
	}, fh, nil
}

func detectMIME(fh *os.File, path string) (string, error) {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t, nil
	}
	head := make([]byte, 512)
	n, err := fh.Read(head)
	if err != nil && n == 0 {
		return "application/octet-stream", rewind(fh)
	}
	return http.DetectContentType(head[:n]), rewind(fh)
}

func rewind(fh *os.File) error {
	if _, err := fh.Seek(0, 0); err != nil {
		return fmt.Errorf("rewind %s: %w", fh.Name(), err)
	}
	return nil
}
