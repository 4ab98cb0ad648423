package media

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowncreative/portal/pkg/domain"
)

func testSignature() domain.UploadSignature {
	return domain.UploadSignature{
		Signature:    "abc123",
		Timestamp:    1700000000,
		CloudName:    "crown",
		APIKey:       "key-1",
		Folder:       domain.FolderUploads,
		ResourceType: domain.ResourceImage,
	}
}

func TestUpload_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crown/image/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "key-1", r.FormValue("api_key"))
		assert.Equal(t, "1700000000", r.FormValue("timestamp"))
		assert.Equal(t, "abc123", r.FormValue("signature"))
		assert.Equal(t, "uploads/", r.FormValue("folder"))

		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "logo.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))

		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"secure_url": "https://res.example.com/crown/uploads/logo.png",
			"public_id":  "uploads/logo",
			"bytes":      7,
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	asset, err := c.Upload(context.Background(), testSignature(), File{
		Name:     "logo.png",
		MimeType: "image/png",
		Size:     7,
		Body:     strings.NewReader("PNGDATA"),
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/logo", asset.PublicID)
	assert.Equal(t, int64(7), asset.Bytes)
}

func TestUpload_VideoEndpoint(t *testing.T) {
	sig := testSignature()
	sig.ResourceType = domain.ResourceVideo
	c := NewClient("https://media.example.com/v1_1/")
	assert.Equal(t, "https://media.example.com/v1_1/crown/video/upload", c.UploadURL(sig))
}

func TestUpload_HostRejects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body) //nolint:errcheck
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Invalid Signature abc123"}}`) //nolint:errcheck
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Upload(context.Background(), testSignature(), File{Name: "a.png", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.True(t, IsExternal(err))

	var extErr *ExternalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, http.StatusUnauthorized, extErr.StatusCode)
	assert.Equal(t, "Invalid Signature abc123", extErr.Message)
}

func TestUpload_IncompleteSignature(t *testing.T) {
	_, err := NewClient("http://unused").Upload(context.Background(), domain.UploadSignature{}, File{Body: strings.NewReader("")})
	require.Error(t, err)
	assert.True(t, IsExternal(err))
}

func TestUpload_MissingFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)       //nolint:errcheck
		io.WriteString(w, `{"bytes": 3}`) //nolint:errcheck
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Upload(context.Background(), testSignature(), File{Name: "a", Body: strings.NewReader("abc")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secure_url")
}

func TestDefaultBaseURL(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL+"/crown/image/upload", c.UploadURL(testSignature()))
}
