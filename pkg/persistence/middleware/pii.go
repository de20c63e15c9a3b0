package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/aretw0/surveylogic/pkg/domain"
	"github.com/aretw0/surveylogic/pkg/ports"
)

// Mask replaces redacted answers in stored progress.
const Mask = "***"

// SealedKey is the answer slot that carries the sealed originals of redacted answers.
const SealedKey = "__redacted__"

type piiMiddleware struct {
	next     ports.ProgressStore
	patterns []*regexp.Regexp
	keys     EncryptionConfig
}

// NewPIIMiddleware creates a middleware that redacts the answers of questions whose
// id matches one of the patterns. The stored progress shows Mask in their place and
// carries the originals AES-GCM sealed under SealedKey; Load restores them, so a
// resumed session evaluates exactly the answers the respondent gave. Every other
// answer is stored as is.
func NewPIIMiddleware(patternStrings []string, keys EncryptionConfig) (Middleware, error) {
	if len(keys.ActiveKey) != 32 {
		return nil, errors.New("redaction key must be 32 bytes (AES-256)")
	}
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.ProgressStore) ports.ProgressStore {
		return &piiMiddleware{next: next, patterns: patterns, keys: keys}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, progress *domain.Progress) error {
	// The caller keeps using its own snapshot.
	cloned := progress.Clone()
	delete(cloned.Answers, SealedKey)

	originals := domain.Answers{}
	for id, a := range cloned.Answers {
		if !a.IsEmpty() && m.sensitive(id) {
			originals[id] = a
			cloned.Answers[id] = domain.Text(Mask)
		}
	}
	if len(originals) > 0 {
		plainText, err := json.Marshal(originals)
		if err != nil {
			return fmt.Errorf("failed to marshal redacted answers: %w", err)
		}
		ciphertext, err := encrypt(plainText, m.keys.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to seal redacted answers: %w", err)
		}
		cloned.Answers[SealedKey] = domain.Text(base64.StdEncoding.EncodeToString(ciphertext))
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) sensitive(questionID string) bool {
	for _, p := range m.patterns {
		if p.MatchString(questionID) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	progress, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sealed, ok := progress.Answers[SealedKey]
	if !ok {
		return progress, nil
	}
	if sealed.Kind != domain.KindText {
		return nil, errors.New("redacted answers slot is not sealed text")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode redacted answers: %w", err)
	}
	plainText, err := decryptWithRotation(ciphertext, m.keys.ActiveKey, m.keys.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal redacted answers: %w", err)
	}
	var originals domain.Answers
	if err := json.Unmarshal(plainText, &originals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal redacted answers: %w", err)
	}

	restored := progress.Clone()
	delete(restored.Answers, SealedKey)
	for id, a := range originals {
		restored.Answers[id] = a
	}
	return restored, nil
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
