// Package object defines the blob store used for archives and uploaded job descriptions.
package object

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"applygen-backend/internal/shared/util"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// ObjectStore saves and retrieves binary objects.
type ObjectStore interface {
	// Put writes r at key, replacing any existing object.
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
	// Open returns a reader for the object at key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Save stores an upload under the owner's namespace with a random prefix and
// returns its key, size and sniffed content type.
func Save(ctx context.Context, store ObjectStore, ownerID, fileName string, r io.Reader) (string, int64, string, error) {
	key, err := UploadKey(ownerID, fileName)
	if err != nil {
		return "", 0, "", err
	}
	mimeType, body, err := Sniff(r)
	if err != nil {
		return "", 0, "", err
	}
	n, err := store.Put(ctx, key, mimeType, body)
	if err != nil {
		return "", 0, "", err
	}
	return key, n, mimeType, nil
}

// UploadKey builds uploads/<hashed owner>/<random>_<name>.
func UploadKey(ownerID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join("uploads", util.OwnerKey(ownerID), randomID()+"_"+name), nil
}

// ArchiveKey builds batches/<batch id>/<filename>.
func ArchiveKey(batchID, fileName string) string {
	return path.Join("batches", batchID, fileName)
}

// CleanKey rejects absolute keys and traversal.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.TrimLeft(strings.ReplaceAll(key, "\\", "/"), "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// Sniff detects the content type from the first 512 bytes and returns a
// reader that still yields the whole payload.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	return http.DetectContentType(head[:n]), io.MultiReader(bytes.NewReader(head[:n]), r), nil
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
