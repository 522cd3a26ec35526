package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"

	"notedeck/internal/logging"
	"notedeck/internal/types"
)

const (
	sniffLen         = 3072
	maxNameCollision = 100
)

// DownloadFile fetches the note's stored file into dir and returns the written
// path. It does not touch the download counter; see IncrementDownload.
func (c *Client) DownloadFile(ctx context.Context, note *types.Note, dir string) (string, error) {
	if note == nil || strings.TrimSpace(note.FileURL) == "" {
		return "", errors.New("note has no file")
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("downloads dir is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, note.FileURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Request-ID", logging.NewRequestID())
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read file: %w", err)
	}
	head = head[:n]

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path, err := availablePath(dir, fileBaseName(note.Title), fileExtension(note.FileType, head))
	if err != nil {
		return "", err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, io.MultiReader(bytes.NewReader(head), resp.Body)); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	c.logger.Info("file downloaded", logging.F("note_id", note.ID), logging.F("path", path))
	return path, nil
}

// fileExtension prefers the declared file type and falls back to sniffing.
func fileExtension(fileType string, head []byte) string {
	fileType = strings.ToLower(strings.TrimSpace(fileType))
	if fileType != "" {
		if strings.Contains(fileType, "/") {
			if mt := mimetype.Lookup(fileType); mt != nil && mt.Extension() != "" {
				return mt.Extension()
			}
		} else {
			return "." + strings.TrimPrefix(fileType, ".")
		}
	}
	return mimetype.Detect(head).Extension()
}

func fileBaseName(title string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	name := strings.TrimRight(b.String(), "-")
	if name == "" {
		return "note"
	}
	return name
}

func availablePath(dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	for i := 1; i <= maxNameCollision; i++ {
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
	}
	return "", fmt.Errorf("no free file name for %s in %s", base+ext, dir)
}
