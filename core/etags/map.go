// Package etags fingerprints every file under a served root at startup and
// uses the result to answer conditional requests and to stamp ETag headers
// onto responses produced by a downstream file handler.
//
// Each file is hashed with BLAKE2b-256 over its full content. Precompressed
// sibling files (name.gz, name.zz, name.br, name.zst) are hashed into the
// same entry so that a response served with a Content-Encoding gets the
// fingerprint of the bytes actually sent, not of the raw file.
package etags

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/sync/errgroup"
)

// ResourceTagSet holds the fingerprints for one resource: the raw content
// tag plus one optional tag per precompressed variant. Absent variants are
// empty strings.
type ResourceTagSet struct {
	Raw     string
	Gzip    string
	Deflate string
	Brotli  string
	Zstd    string

	contained map[string]struct{}
}

// Contains reports whether value equals any tag in the set, raw or encoded.
// Conditional requests match against the full set: a client that cached the
// gzip variant must revalidate successfully even if the server would now
// choose a different encoding.
func (s *ResourceTagSet) Contains(value string) bool {
	_, ok := s.contained[value]
	return ok
}

// ForEncoding returns the tag matching a Content-Encoding header value.
// An empty encoding selects the raw tag, which always exists. Unknown
// encodings and known encodings without a precompressed sibling report false.
func (s *ResourceTagSet) ForEncoding(encoding string) (string, bool) {
	var tag string
	switch encoding {
	case "":
		return s.Raw, true
	case "gzip":
		tag = s.Gzip
	case "deflate":
		tag = s.Deflate
	case "br":
		tag = s.Brotli
	case "zstd":
		tag = s.Zstd
	default:
		return "", false
	}
	return tag, tag != ""
}

func (s *ResourceTagSet) seal() {
	s.contained = make(map[string]struct{}, 5)
	s.contained[s.Raw] = struct{}{}
	for _, tag := range []string{s.Gzip, s.Deflate, s.Brotli, s.Zstd} {
		if tag != "" {
			s.contained[tag] = struct{}{}
		}
	}
}

// Map is an immutable index from slash-rooted file paths to their tag sets.
// Build it once before serving; Lookup is safe for concurrent use.
type Map struct {
	tags map[string]*ResourceTagSet
}

// Len reports the number of fingerprinted files.
func (m *Map) Len() int {
	return len(m.tags)
}

// Lookup resolves a request path to its tag set. A path with a trailing
// slash is resolved as its directory index document, mirroring what the
// file handler will serve for it.
func (m *Map) Lookup(requestPath string) (*ResourceTagSet, bool) {
	if strings.HasSuffix(requestPath, "/") {
		requestPath += "index.html"
	}
	set, ok := m.tags[requestPath]
	return set, ok
}

// variantExts pairs each supported Content-Encoding with the file suffix of
// its precompressed sibling.
var variantExts = [...]struct{ encoding, ext string }{
	{"gzip", ".gz"},
	{"deflate", ".zz"},
	{"br", ".br"},
	{"zstd", ".zst"},
}

// BuildMap walks root, fingerprints every regular file and returns the
// resulting index. Any non-regular entry is a hard error: refusing to guess
// beats silently serving stale validators. Hashing runs in parallel, bounded
// by GOMAXPROCS.
func BuildMap(root string) (*Map, error) {
	files, err := listFiles(root)
	if err != nil {
		return nil, err
	}

	sets := make([]*ResourceTagSet, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			set, err := resourceTags(path)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tags := make(map[string]*ResourceTagSet, len(files))
	for i, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, fmt.Errorf("relativize %s: %w", path, err)
		}
		key := "/" + filepath.ToSlash(rel)
		if !utf8.ValidString(key) {
			return nil, fmt.Errorf("%w: %q", ErrPathNotUTF8, key)
		}
		tags[key] = sets[i]
	}

	return &Map{tags: tags}, nil
}

func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		switch {
		case d.Type().IsRegular():
			files = append(files, path)
		case d.IsDir():
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedEntry, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// resourceTags hashes a file and probes for each precompressed sibling.
// Only a missing sibling is tolerated; any other failure aborts the build.
func resourceTags(path string) (*ResourceTagSet, error) {
	raw, err := fileTag(path)
	if err != nil {
		return nil, err
	}

	set := &ResourceTagSet{Raw: raw}
	for _, v := range variantExts {
		tag, err := fileTag(path + v.ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		switch v.encoding {
		case "gzip":
			set.Gzip = tag
		case "deflate":
			set.Deflate = tag
		case "br":
			set.Brotli = tag
		case "zstd":
			set.Zstd = tag
		}
	}

	set.seal()
	return set, nil
}

// fileTag streams a file through BLAKE2b-256 and formats the digest as a
// quoted hex entity tag.
func fileTag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	tag := `"` + hex.EncodeToString(h.Sum(nil)) + `"`
	if !httpguts.ValidHeaderFieldValue(tag) {
		return "", fmt.Errorf("%w: %s", ErrInvalidHeaderValue, path)
	}
	return tag, nil
}
