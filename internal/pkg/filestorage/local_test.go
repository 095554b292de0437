package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"birth cert.pdf", "birth_cert.pdf"},
		{"../../etc/passwd", "passwd"},
		{"résumé.pdf", "r_sum_.pdf"},
		{"simple-name_1.jpg", "simple-name_1.jpg"},
		{"***", "file"},
		{"..", "file"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), "input %q", tc.in)
	}
}

// multipartFile builds a real multipart.FileHeader the way gin receives one.
func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveDocumentWritesUnderApplicationDir(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, 10<<20)
	require.NoError(t, err)

	fh := multipartFile(t, "birth cert.pdf", []byte("pdf-bytes"))
	stored, err := ls.SaveDocument(fh, "app-1", "doc-1")
	require.NoError(t, err)

	assert.Equal(t, "doc-1_birth_cert.pdf", stored.StoredName)
	assert.Equal(t, filepath.Join("app-1", "doc-1_birth_cert.pdf"), stored.RelativePath)
	assert.EqualValues(t, len("pdf-bytes"), stored.Size)

	data, err := os.ReadFile(ls.FullPath(stored.RelativePath))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestSaveDocumentRejectsOversizedFile(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), 8)
	require.NoError(t, err)

	fh := multipartFile(t, "big.bin", []byte("more than eight bytes"))
	_, err = ls.SaveDocument(fh, "app-1", "doc-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cap is 8")
}

func TestFullPathEmptyInput(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Equal(t, "", ls.FullPath(""))
}
