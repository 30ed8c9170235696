package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/config"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
)

func testConfig() *config.AccountServiceConfig {
	cfg := &config.AccountServiceConfig{
		Env:                 "development",
		AppPasswordResetURL: "https://app.example.com/reset-password",
	}
	cfg.Token.Issuer = "showcase-test"
	cfg.Token.SessionTokenSecret = "session-secret"
	cfg.Token.SessionTokenExpiresIn = 720 * time.Hour
	cfg.Token.PasswordResetTokenSecret = "reset-secret"
	cfg.Token.PasswordResetTokenExpiresIn = 15 * time.Minute
	return cfg
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type storedObject struct {
	contentType string
	data        []byte
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]storedObject)}
}

func (s *fakeStore) Upload(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{contentType: contentType, data: data}

	return "s3://test-bucket/" + key, nil
}

func (s *fakeStore) PresignURL(_ context.Context, ref string, _ time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://signed.example.com/" + ref, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	welcomed  []string
	documents []model.DocumentType
	resets    []string
	err       error
}

func (n *recordingNotifier) Welcome(_ context.Context, user *model.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, user.Email)
	return n.err
}

func (n *recordingNotifier) DocumentReceived(_ context.Context, _ *model.User, docType model.DocumentType) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.documents = append(n.documents, docType)
	return n.err
}

func (n *recordingNotifier) PasswordReset(_ context.Context, _ string, link string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, link)
	return n.err
}

var errBoom = errors.New("boom")

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
}

func mustNotFail(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func upload(data []byte) Upload {
	return Upload{Filename: "file", Body: bytes.NewReader(data)}
}
