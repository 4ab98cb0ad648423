package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/crowncreative/portal/internal/mocks"
	"github.com/crowncreative/portal/pkg/client"
	"github.com/crowncreative/portal/pkg/domain"
	"github.com/crowncreative/portal/pkg/media"
)

func testFile() media.File {
	return media.File{Name: "logo.png", MimeType: "image/png", Size: 4, Body: strings.NewReader("\x89PNG")}
}

func TestFile_AllStepsSucceed(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	host := mocks.NewMockMediaHost(ctrl)

	sig := &domain.UploadSignature{Signature: "sig", CloudName: "demo", Folder: domain.FolderUploads, ResourceType: "image"}
	asset := &domain.MediaAsset{SecureURL: "https://cdn.example.com/logo.png", PublicID: "uploads/logo", Bytes: 4}

	gomock.InOrder(
		gw.EXPECT().UploadSignature(gomock.Any(), domain.ResourceImage, domain.FolderUploads).Return(sig, nil),
		host.EXPECT().Upload(gomock.Any(), *sig, gomock.Any()).Return(asset, nil),
		gw.EXPECT().RegisterFile(gomock.Any(), client.RegisterFileRequest{
			Filename: "logo.png",
			URL:      asset.SecureURL,
			PublicID: asset.PublicID,
			MimeType: "image/png",
			Size:     4,
			OrderID:  "o1",
		}).Return(&domain.FileUpload{ID: "f1"}, nil),
	)

	rec, err := New(gw, host, nil).File(context.Background(), testFile(), "o1", "")
	require.NoError(t, err)
	assert.Equal(t, "f1", rec.ID)
}

func TestFile_SignatureFailureStopsSaga(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	host := mocks.NewMockMediaHost(ctrl) // must not be called

	gw.EXPECT().UploadSignature(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("401"))

	_, err := New(gw, host, nil).File(context.Background(), testFile(), "", "")
	require.Error(t, err)
	assert.False(t, IsOrphaned(err))
}

func TestFile_MediaHostFailureSkipsRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	host := mocks.NewMockMediaHost(ctrl)

	gw.EXPECT().UploadSignature(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.UploadSignature{Signature: "s", CloudName: "c"}, nil)
	host.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &media.ExternalServiceError{StatusCode: 400, Message: "Invalid signature"})

	_, err := New(gw, host, nil).File(context.Background(), testFile(), "", "")
	require.Error(t, err)
	assert.True(t, media.IsExternal(err))
	assert.False(t, IsOrphaned(err))
}

func TestPortfolio_RegisterFailureLogsOrphan(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	host := mocks.NewMockMediaHost(ctrl)

	sig := &domain.UploadSignature{Signature: "s", CloudName: "c", Folder: domain.FolderPortfolio}
	asset := &domain.MediaAsset{SecureURL: "https://cdn.example.com/p.png", PublicID: "portfolio/p", Bytes: 4}
	gw.EXPECT().UploadSignature(gomock.Any(), domain.ResourceImage, domain.FolderPortfolio).Return(sig, nil)
	host.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).Return(asset, nil)
	gw.EXPECT().AddPortfolioItem(gomock.Any(), gomock.Any()).Return(nil, errors.New("HTTP 500: Internal Server Error"))

	core, logs := observer.New(zap.WarnLevel)
	_, err := New(gw, host, zap.New(core)).Portfolio(context.Background(), testFile(), "Logo", 3)
	require.Error(t, err)

	var orphan *OrphanedAssetError
	require.ErrorAs(t, err, &orphan)
	assert.Equal(t, "portfolio/p", orphan.Asset.PublicID)
	assert.Equal(t, domain.FolderPortfolio, orphan.Folder)

	entries := logs.FilterMessage("orphaned media asset").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "portfolio/p", fields["public_id"])
	assert.Equal(t, "https://cdn.example.com/p.png", fields["secure_url"])
	assert.Equal(t, domain.FolderPortfolio, fields["folder"])
}

func TestProjectFile_VideoResourceType(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	host := mocks.NewMockMediaHost(ctrl)

	gw.EXPECT().UploadSignature(gomock.Any(), domain.ResourceVideo, domain.FolderProjects).
		Return(&domain.UploadSignature{Signature: "s", CloudName: "c"}, nil)
	host.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.MediaAsset{SecureURL: "https://cdn/v.mp4", PublicID: "projects/v", Bytes: 10}, nil)
	gw.EXPECT().UploadProjectFile(gomock.Any(), "u9", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, req client.ProjectFileRequest) (*domain.ProjectFile, error) {
			assert.Equal(t, "admin", req.UploadedBy)
			assert.Equal(t, "cut 2", req.Description)
			return &domain.ProjectFile{ID: "pf1"}, nil
		})

	f := media.File{Name: "v.mp4", MimeType: "video/mp4", Size: 10, Body: strings.NewReader("0123456789")}
	pf, err := New(gw, host, nil).ProjectFile(context.Background(), f, "u9", "admin", "cut 2")
	require.NoError(t, err)
	assert.Equal(t, "pf1", pf.ID)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brief.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	f, fh, err := Open(path)
	require.NoError(t, err)
	defer fh.Close() //nolint:errcheck

	assert.Equal(t, "brief.pdf", f.Name)
	assert.Equal(t, "application/pdf", f.MimeType)
	assert.EqualValues(t, 8, f.Size)

	noExt := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(noExt, []byte("plain text here"), 0o600))
	f2, fh2, err := Open(noExt)
	require.NoError(t, err)
	defer fh2.Close() //nolint:errcheck
	assert.True(t, strings.HasPrefix(f2.MimeType, "text/plain"))

	_, _, err = Open(dir)
	assert.Error(t, err)
}
