package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"filemart/internal/config"
)

// Storage is the object storage collaborator. Retrieval handles are
// time-limited: they expire and force re-authorization, they are never
// long-lived proxies to the bytes.
type Storage interface {
	Put(objectPath string, r io.Reader) error
	Open(objectPath string) (io.ReadCloser, error)
	RetrievalURL(objectPath string, ttl time.Duration) (string, error)
	Delete(objectPath string) error
	List(prefix string) ([]string, error)
}

// FileStorage keeps objects under a local root directory and signs
// expiring URLs served back through the /files handler. The signature is
// an HMAC over "path|expiry" with a dedicated handle secret.
type FileStorage struct {
	rootDir string
	baseURL string
	secret  []byte
}

func NewFileStorage(cfg *config.Storage, baseURL string) *FileStorage {
	return &FileStorage{
		rootDir: cfg.RootDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(cfg.HandleSecret),
	}
}

// cleanPath rejects traversal out of the storage root.
func (s *FileStorage) cleanPath(objectPath string) (string, error) {
	cleaned := path.Clean("/" + objectPath)
	if cleaned == "/" {
		return "", fmt.Errorf("empty object path")
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(cleaned)), nil
}

func (s *FileStorage) Put(objectPath string, r io.Reader) error {
	full, err := s.cleanPath(objectPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

func (s *FileStorage) Open(objectPath string) (io.ReadCloser, error) {
	full, err := s.cleanPath(objectPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", objectPath, err)
	}
	return f, nil
}

func (s *FileStorage) RetrievalURL(objectPath string, ttl time.Duration) (string, error) {
	if _, err := s.cleanPath(objectPath); err != nil {
		return "", err
	}

	exp := time.Now().Add(ttl).Unix()
	sig := signHandle(s.secret, objectPath, exp)

	u := fmt.Sprintf("%s/files/%s?exp=%d&sig=%s",
		s.baseURL, escapePath(objectPath), exp, sig)
	return u, nil
}

func (s *FileStorage) Delete(objectPath string) error {
	full, err := s.cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *FileStorage) List(prefix string) ([]string, error) {
	var keys []string
	root := s.rootDir

	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return keys, nil
}

// VerifyHandle checks an expiring signed handle. Used by the /files handler
// before serving bytes; an expired or forged handle forces the caller back
// through the download authorizer.
func (s *FileStorage) VerifyHandle(objectPath, expStr, sig string) bool {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return false
	}

	want := signHandle(s.secret, objectPath, exp)
	return hmac.Equal([]byte(want), []byte(sig))
}

// HandleVerifier is the narrow view the file-serving handler needs.
type HandleVerifier interface {
	VerifyHandle(objectPath, exp, sig string) bool
	Open(objectPath string) (io.ReadCloser, error)
}

// escapePath escapes each segment while keeping the separators, so the
// signed path round-trips through the /files/* route unchanged.
func escapePath(objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func signHandle(secret []byte, objectPath string, exp int64) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s|%d", objectPath, exp)
	return hex.EncodeToString(mac.Sum(nil))
}
