package rest

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-blog/inkwell/api"
)

// mediaCacheControl marks served media as immutable: a key is never
// rewritten once stored.
const mediaCacheControl = "public, max-age=31536000, immutable"

const maxUploadBytes = 32 << 20 // 32 MiB

// Upload accepts either a multipart form with a "file" field or a raw body
// with a filename query parameter, and responds with the stored key and its
// retrieval URL.
func (h *Handler) Upload(c *gin.Context) {
	filename, content, contentType, err := readUpload(c)
	if err != nil {
		if err == errUploadTooLarge {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		badRequest(c, err.Error())
		return
	}

	key, err := h.media.Put(c.Request.Context(), filename, content, contentType)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.Upload{
		Key: key,
		URL: "/media/" + key,
	})
}

// GetMedia serves stored media bytes with their original content type.
func (h *Handler) GetMedia(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	media, err := h.media.Get(c.Request.Context(), key)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Cache-Control", mediaCacheControl)
	c.Data(http.StatusOK, media.ContentType, media.Content)
}

func readUpload(c *gin.Context) (filename string, content []byte, contentType string, err error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return "", nil, "", errUploadMissingFile
		}

		file, err := fileHeader.Open()
		if err != nil {
			return "", nil, "", errUploadMissingFile
		}
		defer file.Close()

		content, err := readLimited(file)
		if err != nil {
			return "", nil, "", err
		}

		return fileHeader.Filename, content, fileHeader.Header.Get("Content-Type"), nil
	}

	// raw upload: bytes in the body, name in the query string
	filename = c.Query("filename")
	if filename == "" {
		return "", nil, "", errUploadMissingFilename
	}

	content, err = readLimited(c.Request.Body)
	if err != nil {
		return "", nil, "", err
	}

	return filename, content, c.ContentType(), nil
}

// readLimited reads an upload body in full. Reading one byte past the limit
// distinguishes an oversized body from one that is exactly at it; storing a
// truncated upload would corrupt the media silently.
func readLimited(r io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, errUploadUnreadable
	}
	if len(content) > maxUploadBytes {
		return nil, errUploadTooLarge
	}
	return content, nil
}

type uploadError string

func (e uploadError) Error() string { return string(e) }

const (
	errUploadMissingFile     = uploadError("multipart upload requires a file field")
	errUploadMissingFilename = uploadError("raw upload requires a filename query parameter")
	errUploadUnreadable      = uploadError("failed to read upload body")
	errUploadTooLarge        = uploadError("upload exceeds the 32 MiB limit")
)
