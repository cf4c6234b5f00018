package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/taxdesk_backend/apperrors"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$12$"))

	assert.True(t, CheckPassword("correct horse", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("anything", ""))
}

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidatorReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&signup{Email: "a@b.co", Password: "12345678"}))

	err := v.Validate(&signup{Email: "nope", Password: "short"})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "email", appErr.Details["email"])
	assert.Equal(t, "min", appErr.Details["password"])
}

func TestParsePagination(t *testing.T) {
	e := echo.New()
	ctx := func(query string) echo.Context {
		return e.NewContext(httptest.NewRequest("GET", "/?"+query, nil), httptest.NewRecorder())
	}

	p := ParsePagination(ctx(""))
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, p)

	p = ParsePagination(ctx("page=3&limit=10"))
	assert.Equal(t, int64(20), p.Skip())
	assert.Equal(t, 3, p.TotalPages(21))
	assert.Equal(t, 2, p.TotalPages(20))
	assert.Equal(t, 0, p.TotalPages(0))

	p = ParsePagination(ctx("page=-1&limit=1000"))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)

	p = ParsePagination(ctx("page=9223372036854775807&limit=100"))
	assert.Equal(t, MaxPage, p.Page)
	assert.Greater(t, p.Skip(), int64(0))

	p = ParsePagination(ctx("page=99999999999999999999"))
	assert.Equal(t, DefaultPage, p.Page)
}

func TestValidateFile(t *testing.T) {
	assert.NoError(t, ValidateFile("application/pdf", 1024, 0))
	assert.NoError(t, ValidateFile("text/plain; charset=utf-8", 10, 0))

	err := ValidateFile("application/x-msdownload", 1024, 0)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	err = ValidateFile("application/pdf", MaxFileSize+1, 0)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	assert.Error(t, ValidateFile("application/pdf", 0, 0))
	assert.Error(t, ValidateFile("application/pdf", 2048, 1024))
}

func TestCleanFilenameAndKeys(t *testing.T) {
	assert.Equal(t, "passwd", CleanFilename("../../etc/passwd"))
	assert.Equal(t, "W-2_2025.pdf", CleanFilename("W-2_2025.pdf"))
	assert.Equal(t, "taxreturn.pdf", CleanFilename(`C:\Users\me\tax return.pdf`))
	assert.Equal(t, "file", CleanFilename("..."))

	key := BuildObjectKey("c1", "f1", "my file.pdf")
	assert.True(t, strings.HasPrefix(key, "clients/c1/folders/f1/"))
	assert.True(t, strings.HasSuffix(key, "-myfile.pdf"))
	assert.NotEqual(t, key, BuildObjectKey("c1", "f1", "my file.pdf"))

	assert.Equal(t, "clients/c1/a.thumb.jpg", ThumbnailKey("clients/c1/a.png"))
}

func TestMakeThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x++ {
		src.Set(x, x%480, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	assert.True(t, SupportsThumbnail("image/png"))
	assert.False(t, SupportsThumbnail("application/pdf"))

	thumb, err := MakeThumbnail(buf.Bytes())
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)

	_, err = MakeThumbnail([]byte("not an image"))
	assert.Error(t, err)
}

func TestSanitizers(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  <script>alert(1)</script>hello "))
	assert.Equal(t, "O'Brien & Co", SanitizeInput(" O'Brien & Co "), "stored text round-trips unescaped")
	assert.Equal(t, "line1\nline2", SanitizeInput("line1\nline2\x00"))

	email, err := SanitizeEmail(" John@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", email)
	_, err = SanitizeEmail("nope")
	assert.Error(t, err)

	phone, err := SanitizePhone("(555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, "+5551234567", phone)
	phone, err = SanitizePhone("")
	require.NoError(t, err)
	assert.Equal(t, "", phone)
}
