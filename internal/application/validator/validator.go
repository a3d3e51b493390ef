package validator

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"json-share-api/internal/application/apperr"
)

const (
	minShareIDLen = 7
	maxShareIDLen = 32

	MinExpiryDays = 1
	MaxExpiryDays = 365

	// MaxUploadBytes is the raw upload limit (50 MiB).
	MaxUploadBytes = 50 << 20
	// MaxContentBytes is the limit on serialized JSON content (100 MiB).
	MaxContentBytes = 100 << 20

	ExpiryPermanent = "permanent"
)

var shareIDRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Upload describes an uploaded file as seen by the transport layer.
type Upload struct {
	Filename string
	Size     int64
}

func ValidateShareID(id string) error {
	if id == "" {
		return apperr.Validation("invalid share ID")
	}
	if l := len(id); l < minShareIDLen || l > maxShareIDLen {
		return apperr.Validation("share ID length is invalid")
	}
	if !shareIDRe.MatchString(id) {
		return apperr.Validation("share ID contains invalid characters")
	}

	return nil
}

// ValidateJSONContent checks raw is a parseable, non-null JSON value that a
// JSONB column can hold, and returns it compacted. The content itself is
// never interpreted.
func ValidateJSONContent(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, apperr.InvalidJSON("file contains no valid content")
	}
	if !utf8.Valid(trimmed) {
		return nil, apperr.InvalidJSON("file is not valid UTF-8")
	}

	var buf bytes.Buffer
	buf.Grow(len(trimmed))
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, &apperr.Error{
			Code:    apperr.CodeInvalidJSON,
			Message: "JSON parsing failed",
			Details: err.Error(),
		}
	}
	if bytes.Equal(buf.Bytes(), []byte("null")) {
		return nil, apperr.InvalidJSON("JSON content cannot be null")
	}
	if err := checkEscapes(buf.Bytes()); err != nil {
		return nil, err
	}
	if buf.Len() > MaxContentBytes {
		return nil, apperr.TooLarge("JSON content too large after processing")
	}

	return buf.Bytes(), nil
}

// checkEscapes rejects \u escapes Postgres JSONB cannot store: NUL and
// unpaired UTF-16 surrogates. b must already be valid JSON, so every
// backslash sits inside a string and \u is followed by four hex digits.
func checkEscapes(b []byte) error {
	unpaired := func() error { return apperr.InvalidJSON("JSON contains an unpaired surrogate escape") }

	pendingHigh := false
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || b[i+1] != 'u' {
			if pendingHigh {
				return unpaired()
			}
			if b[i] == '\\' {
				i++
			}
			continue
		}

		cp, _ := strconv.ParseUint(string(b[i+2:i+6]), 16, 32)
		i += 5
		switch {
		case cp == 0:
			return apperr.InvalidJSON("JSON cannot contain \\u0000")
		case cp >= 0xDC00 && cp <= 0xDFFF:
			if !pendingHigh {
				return unpaired()
			}
			pendingHigh = false
		case pendingHigh:
			return unpaired()
		case cp >= 0xD800 && cp <= 0xDBFF:
			pendingHigh = true
		}
	}
	if pendingHigh {
		return unpaired()
	}

	return nil
}

// ValidateExpiryDays returns 0 for a permanent share, otherwise the day count.
func ValidateExpiryDays(token string) (int, error) {
	token = strings.TrimSpace(token)
	if token == "" || token == ExpiryPermanent {
		return 0, nil
	}

	days, err := strconv.Atoi(token)
	if err != nil || days < MinExpiryDays || days > MaxExpiryDays {
		return 0, apperr.Validation("expiry days must be between 1 and 365")
	}

	return days, nil
}

func ValidateUpload(u *Upload) error {
	if u == nil {
		return apperr.Validation("file data is missing")
	}
	if u.Filename != "" && !strings.HasSuffix(strings.ToLower(u.Filename), ".json") {
		return apperr.Validation("only JSON files are allowed")
	}
	if u.Size <= 0 {
		return apperr.Validation("empty file is not allowed")
	}
	if u.Size > MaxUploadBytes {
		return apperr.TooLarge("file size exceeds 50MB limit")
	}

	return nil
}
