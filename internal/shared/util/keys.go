package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxFileNameRunes = 100

// ErrInvalidFileName is returned for names that are empty after cleaning or
// that try to climb out of the session prefix.
var ErrInvalidFileName = errors.New("invalid file name")

// SessionPrefix is the storage directory for one session. The ID is hashed
// so keys never expose it.
func SessionPrefix(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:16])
}

// ObjectKey builds a unique slash-separated key for a file stored on behalf
// of a session, e.g. "3f2a.../0b6c..._resume_analyst.docx".
func ObjectKey(sessionID, fileName string) (string, error) {
	name, err := CleanFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(SessionPrefix(sessionID), uuid.NewString()+"_"+name), nil
}

// CleanFileName flattens separators, drops control characters and caps the
// length while keeping the extension.
func CleanFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		return "", ErrInvalidFileName
	}

	runes := []rune(cleaned)
	if len(runes) > maxFileNameRunes {
		ext := []rune(path.Ext(cleaned))
		if len(ext) >= maxFileNameRunes {
			ext = nil
		}
		runes = append(runes[:maxFileNameRunes-len(ext)], ext...)
	}
	return string(runes), nil
}
