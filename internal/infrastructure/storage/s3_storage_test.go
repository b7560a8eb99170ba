package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dibaisales/central/internal/infrastructure/config"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ObjectRef
		wantErr bool
	}{
		{name: "bucket and key", input: "s3://calls/2024/01/abc.mp3", want: ObjectRef{Bucket: "calls", Key: "2024/01/abc.mp3"}},
		{name: "surrounding spaces", input: " s3://calls/a.mp3 ", want: ObjectRef{Bucket: "calls", Key: "a.mp3"}},
		{name: "http link", input: "https://example.com/a.mp3", wantErr: true},
		{name: "missing key", input: "s3://calls/", wantErr: true},
		{name: "missing bucket", input: "s3:///a.mp3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewS3ObjectStorage_RequiresSecretWithKey(t *testing.T) {
	_, err := NewS3ObjectStorage(context.Background(), config.StorageConfig{AccessKeyID: "id"})
	assert.Error(t, err)
}

func TestS3ObjectStorage_OpenURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/calls/abc.mp3":
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte("ID3-audio"))
		default:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
		}
	}))
	defer srv.Close()

	s, err := NewS3ObjectStorage(context.Background(), config.StorageConfig{
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	body, err := s.OpenURI(context.Background(), "s3://calls/abc.mp3")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "ID3-audio", string(data))

	_, err = s.OpenURI(context.Background(), "s3://calls/missing.mp3")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = s.OpenURI(context.Background(), "ftp://calls/a.mp3")
	assert.ErrorIs(t, err, ErrInvalidURI)
}
