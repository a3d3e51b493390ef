package validator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"json-share-api/internal/application/apperr"
)

func TestValidateShareID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"empty", "", true},
		{"too short", "abc123", true},
		{"min length", "abc1234", false},
		{"max length", "abcdefghijabcdefghijabcdefghij12", false},
		{"too long", "abcdefghijabcdefghijabcdefghij123", true},
		{"dash", "abc-1234", true},
		{"path traversal", "../../etc", true},
		{"unicode", "abcdéfgh", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShareID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateJSONContent(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		wantCode apperr.Code
	}{
		{"object", `{ "a": 1, "b": [true, null] }`, `{"a":1,"b":[true,null]}`, ""},
		{"empty object", `{}`, `{}`, ""},
		{"array", ` [1, 2, 3] `, `[1,2,3]`, ""},
		{"scalar string", `"hello"`, `"hello"`, ""},
		{"scalar number", `0`, `0`, ""},
		{"false", `false`, `false`, ""},
		{"null", ` null `, "", apperr.CodeInvalidJSON},
		{"blank", "  \n ", "", apperr.CodeInvalidJSON},
		{"broken", `{"a":`, "", apperr.CodeInvalidJSON},
		{"trailing value", `{} {}`, "", apperr.CodeInvalidJSON},
		{"invalid utf-8", "{\"a\":\"\xff\xfe\"}", "", apperr.CodeInvalidJSON},
		{"nul escape", `{"a":"\u0000"}`, "", apperr.CodeInvalidJSON},
		{"nul escape in key", `{"\u0000":1}`, "", apperr.CodeInvalidJSON},
		{"escaped backslash before u0000", `{"a":"\\u0000"}`, `{"a":"\\u0000"}`, ""},
		{"surrogate pair", `["\ud83d\ude00"]`, `["\ud83d\ude00"]`, ""},
		{"lone high surrogate", `["\ud83d"]`, "", apperr.CodeInvalidJSON},
		{"lone low surrogate", `["\ude00x"]`, "", apperr.CodeInvalidJSON},
		{"high surrogate then escape", `["\ud83d\n"]`, "", apperr.CodeInvalidJSON},
		{"multibyte utf-8", `{"name":"Résumé ✓"}`, `{"name":"Résumé ✓"}`, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateJSONContent([]byte(tt.raw))
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperr.IsCode(err, tt.wantCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.True(t, json.Valid(got))
		})
	}
}

func TestValidateExpiryDays(t *testing.T) {
	tests := []struct {
		token   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"permanent", 0, false},
		{"1", 1, false},
		{"7", 7, false},
		{"365", 365, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"366", 0, true},
		{"seven", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("token="+tt.token, func(t *testing.T) {
			got, err := ValidateExpiryDays(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		upload   *Upload
		wantCode apperr.Code
	}{
		{"missing", nil, apperr.CodeValidation},
		{"empty file", &Upload{Filename: "a.json", Size: 0}, apperr.CodeValidation},
		{"wrong extension", &Upload{Filename: "a.txt", Size: 10}, apperr.CodeValidation},
		{"upper-case extension", &Upload{Filename: "DATA.JSON", Size: 10}, ""},
		{"no filename", &Upload{Size: 10}, ""},
		{"exactly 50MiB", &Upload{Filename: "big.json", Size: 52428800}, ""},
		{"one byte over", &Upload{Filename: "big.json", Size: 52428801}, apperr.CodeFileTooLarge},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.upload)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, tt.wantCode))
		})
	}
}

func TestValidateJSONContent_LargeDocumentPassesThrough(t *testing.T) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i := 0; i < 10000; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"k":"v"}`)
	}
	b.WriteByte(']')

	got, err := ValidateJSONContent(b.Bytes())
	require.NoError(t, err)
	assert.Equal(t, b.Len(), len(got))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "data.json", "data.json"},
		{"keeps case and spaces", "  My Report (final).JSON ", "My Report (final).JSON"},
		{"windows path", `C:\Users\me\Résumé.json`, "Résumé.json"},
		{"composes decomposed accents", "Re\u0301sume\u0301.json", "R\u00e9sum\u00e9.json"},
		{"unix path", "../../etc/passwd.json", "passwd.json"},
		{"dot dot", "..", "file"},
		{"only slashes", "//", "file"},
		{"newline escaped", "evil\n.json", `evil\u000a.json`},
		{"bidi override escaped", "invoice\u202egnp.json", `invoice\u202egnp.json`},
		{"invalid utf-8 replaced", "a\xffb.json", "a\ufffdb.json"},
		{"truncated", strings.Repeat("a", 200) + ".json", strings.Repeat("a", 128) + "..."},
		{"exactly at limit", strings.Repeat("é", 128), strings.Repeat("é", 128)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}
