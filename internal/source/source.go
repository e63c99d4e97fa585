// Package source opens the lake dataset from a file, an HTTP URL or S3.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultLocation is used when no dataset location is configured.
const DefaultLocation = "lakes.json"

// Source is a readable dataset resource.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

var (
	// ErrUnsupportedScheme is returned for locations with an unknown URL scheme.
	ErrUnsupportedScheme = errors.New("unsupported dataset scheme")
	// ErrStatus wraps non-2xx HTTP responses.
	ErrStatus = errors.New("unexpected response status")
)

// Options tune the remote sources.
type Options struct {
	HTTPClient *http.Client
	S3         S3Config
}

// Open selects a Source implementation for the location:
//
//	lakes.json, file:///srv/lakes.json  local file
//	https://example.com/lakes.json     HTTP GET
//	s3://bucket/path/lakes.json        S3 or MinIO object
func Open(ctx context.Context, location string, opts Options) (Source, error) {
	if location == "" {
		location = DefaultLocation
	}

	if !strings.Contains(location, "://") {
		return File{Path: location}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse dataset location: %w", err)
	}

	switch u.Scheme {
	case "file":
		return File{Path: u.Path}, nil
	case "http", "https":
		return NewHTTP(opts.HTTPClient, location), nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 location must be s3://bucket/key, got %q", location)
		}
		return NewS3(ctx, opts.S3, u.Host, key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}
