package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFileHeader builds a multipart.FileHeader with an overridden size
func newTestFileHeader(t *testing.T, filename string, size int64, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["image"], 1)
	fileHeader := form.File["image"][0]
	fileHeader.Size = size
	return fileHeader
}

func TestValidateImageFile_AcceptedFormats(t *testing.T) {
	content := []byte("fake image content")
	for _, name := range []string{"crate.png", "crate.jpg", "crate.jpeg", "CRATE.JPG"} {
		fh := newTestFileHeader(t, name, int64(len(content)), content)
		assert.NoError(t, ValidateImageFile(fh), name)
	}
}

func TestValidateImageFile_FileTooLarge(t *testing.T) {
	content := []byte("fake image content")
	fh := newTestFileHeader(t, "large.png", 11*1024*1024, content)

	err := ValidateImageFile(fh)
	require.Error(t, err)

	uploadErr, ok := err.(*FileUploadError)
	require.True(t, ok)
	assert.Equal(t, "FILE_TOO_LARGE", uploadErr.Code)
	assert.Contains(t, uploadErr.Message, "10 MB")
}

func TestValidateImageFile_RejectedFormats(t *testing.T) {
	content := []byte("not an image")
	for _, name := range []string{"crate.gif", "crate.pdf", "crate"} {
		fh := newTestFileHeader(t, name, int64(len(content)), content)

		err := ValidateImageFile(fh)
		require.Error(t, err, name)
		uploadErr, ok := err.(*FileUploadError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
	}
}

func TestImageContentType(t *testing.T) {
	assert.Equal(t, "image/png", ImageContentType("a.png"))
	assert.Equal(t, "image/jpeg", ImageContentType("a.JPG"))
	assert.Equal(t, "image/jpeg", ImageContentType("a.jpeg"))
	assert.Equal(t, "application/octet-stream", ImageContentType("a.bin"))
}

func TestReadUploadedFile(t *testing.T) {
	content := []byte("fake png content")
	fh := newTestFileHeader(t, "crate.png", int64(len(content)), content)

	data, err := ReadUploadedFile(fh)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{Code: "TEST_ERROR", Message: "test error message"}
	assert.Equal(t, "test error message", err.Error())
}
