package shared

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name        string
		body        io.Reader
		wantErr     string
		wantPayload payload
	}{
		{name: "valid", body: strings.NewReader(`{"title":"write tests","count":3}`), wantPayload: payload{"write tests", 3}},
		{name: "trailing comma", body: strings.NewReader(`{"title":"x",}`), wantErr: "invalid character"},
		{name: "empty body", body: strings.NewReader(""), wantErr: "EOF"},
		{name: "two values", body: strings.NewReader(`{"title":"a"} {"title":"b"}`), wantErr: "single JSON value"},
		{name: "read error", body: errorReader{}, wantErr: "unexpected EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/tasks", tt.body)

			var got payload
			err := DecodeJSON(req, &got)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPayload, got)
		})
	}
}

type selfValidating struct {
	Name string
}

func (s *selfValidating) Validate() error {
	if s.Name == "" {
		return errors.New("name required")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	type tagged struct {
		Name  string `validate:"required"`
		Color string `validate:"omitempty,hexcolor"`
	}

	tests := []struct {
		name    string
		req     any
		wantErr bool
	}{
		{name: "custom validator passes", req: &selfValidating{Name: "ok"}},
		{name: "custom validator fails", req: &selfValidating{}, wantErr: true},
		{name: "tags pass", req: &tagged{Name: "Work", Color: "#1a2b3c"}},
		{name: "missing required", req: &tagged{}, wantErr: true},
		{name: "bad color", req: &tagged{Name: "Work", Color: "blue"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRequest(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}

	err := ValidateRequest(&tagged{})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}
