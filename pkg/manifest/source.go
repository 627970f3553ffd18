package manifest

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"

	"github.com/arthur-debert/toolup/pkg/errors"
	"github.com/arthur-debert/toolup/pkg/logging"
	"github.com/arthur-debert/toolup/pkg/types"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func manifestSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		schema, schemaErr = compiler.Compile(schemaJSON)
	})
	return schema, schemaErr
}

// Decode validates raw manifest bytes against the embedded schema and
// unmarshals them.
func Decode(data []byte) (*Manifest, error) {
	compiled, err := manifestSchema()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to compile manifest schema")
	}
	result := compiled.ValidateJSON(data)
	if !result.IsValid() {
		return nil, errors.Newf(errors.ErrManifestInvalid, "manifest does not match schema: %v", result.Errors)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "failed to decode manifest")
	}
	return &m, nil
}

// LoadFrom fetches and decodes a manifest from a file:// or https://
// URI. Missing, empty and malformed manifests surface as distinct
// error codes so callers can decide which ones to tolerate.
func LoadFrom(fsys types.FS, uri string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")
	logger.Debug().Str("uri", uri).Msg("loading manifest")

	switch {
	case strings.HasPrefix(uri, "file://"):
		return loadFile(fsys, strings.TrimPrefix(uri, "file://"))
	case strings.HasPrefix(uri, "https://"):
		return loadHTTP(uri)
	default:
		return nil, errors.Newf(errors.ErrManifestUnsupportedURI, "unsupported manifest URI %q, only file:// and https:// work", uri)
	}
}

func loadFile(fsys types.FS, path string) (*Manifest, error) {
	if _, err := fsys.Stat(path); err != nil {
		return nil, errors.Newf(errors.ErrManifestMissing, "no manifest at %s, does it exist?", path)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestFetch, "failed to read manifest at %s", path)
	}
	if len(data) == 0 {
		return nil, errors.Newf(errors.ErrManifestEmpty, "manifest at %s is empty", path)
	}
	return Decode(data)
}

func loadHTTP(uri string) (*Manifest, error) {
	resp, err := http.Get(uri)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestFetch, "failed to fetch manifest from %s", uri)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, errors.Newf(errors.ErrManifestMissing, "no manifest at %s (HTTP %d), does it exist?", uri, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Newf(errors.ErrManifestFetch, "fetching manifest from %s failed with HTTP %d", uri, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestFetch, "failed to read manifest body from %s", uri)
	}
	if len(data) == 0 {
		return nil, errors.Newf(errors.ErrManifestEmpty, "manifest fetched from %s is empty", uri)
	}
	return Decode(data)
}

// LoadLocal reads the local installed-channel manifest. A missing or
// empty file is not an error, it just means nothing has been installed
// yet.
func LoadLocal(fsys types.FS, path string) (*Manifest, error) {
	m, err := loadFile(fsys, path)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrManifestMissing) || errors.IsErrorCode(err, errors.ErrManifestEmpty) {
			return New(), nil
		}
		return nil, err
	}
	return m, nil
}

// Save writes the manifest atomically, via a temporary file renamed
// into place.
func (m *Manifest) Save(fsys types.FS, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrManifestWrite, "failed to encode manifest")
	}
	tmp := path + ".tmp"
	if err := fsys.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to write %s", tmp)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to move manifest into place at %s", path)
	}
	return nil
}
