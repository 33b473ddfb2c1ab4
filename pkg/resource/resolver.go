// Package resource maps request URIs onto HTML documents below a root directory.
//
// URIs are joined onto the root without any traversal checks, so "/../secret"
// resolves outside of it. Do not expose the server to untrusted networks.
package resource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ffarham/web-server/pkg/config"
	"github.com/ffarham/web-server/pkg/response"
	"github.com/rs/zerolog"
)

// Extension is appended to every requested name
const Extension = ".html"

// ErrUnavailable is returned when neither the requested nor the fallback document can be read
var ErrUnavailable = errors.New("resource unavailable")

var lineBreaks = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")

// Lookup is the outcome of resolving a URI
type Lookup struct {
	Status  response.Status
	Content string
}

// Resolver reads documents from disk on every call; nothing is cached
type Resolver struct {
	root     string
	index    string
	fallback string
	logger   zerolog.Logger
}

// NewResolver creates a resolver serving root. "/" is routed to index and
// missing documents are replaced by fallback, a file name relative to root.
func NewResolver(root, index, fallback string, logger zerolog.Logger) *Resolver {
	return &Resolver{
		root:     root,
		index:    index,
		fallback: fallback,
		logger:   logger,
	}
}

// NewFromConfig creates a resolver from the resources section of cfg
func NewFromConfig(cfg *config.Config, logger zerolog.Logger) *Resolver {
	return NewResolver(cfg.Resources.Root, cfg.Resources.Index, cfg.Resources.Fallback, logger)
}

// Resolve loads the document for uri. A missing document yields the fallback
// with StatusRedirected; an unreadable fallback yields ErrUnavailable.
func (r *Resolver) Resolve(uri string) (*Lookup, error) {
	if uri == "/" {
		uri = "/" + r.index
	}

	status := response.StatusOK
	path := r.Path(uri)
	if _, err := os.Stat(path); err != nil {
		r.logger.Debug().Str("uri", uri).Str("path", path).Msg("resource not found, serving fallback")
		path = filepath.Join(r.root, r.fallback)
		status = response.StatusRedirected
	}

	content, err := readDocument(path)
	if err != nil {
		r.logger.Error().Err(err).Str("path", path).Msg("failed to read resource")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return &Lookup{Status: status, Content: content}, nil
}

// Path returns the file a URI is looked up at
func (r *Resolver) Path(uri string) string {
	return filepath.Join(r.root, uri+Extension)
}

// readDocument returns the file content with all line breaks removed
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return lineBreaks.Replace(string(data)), nil
}
