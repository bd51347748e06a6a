// Package digest computes content checksums of translator source files and
// wraps them in provenance records.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/brain-bican/bkbit/model"
)

// DefaultAlgorithms is the checksum set computed when the caller does not
// request specific algorithms.
var DefaultAlgorithms = []string{"SHA256", "MD5"}

// Generate streams the reader through every requested hash algorithm in a
// single pass and returns one Checksum record per supported algorithm.
// Unsupported algorithm names are logged and skipped rather than failing
// the whole run. Each record is assigned a fresh urn:uuid identifier.
func Generate(r io.Reader, algorithms []string, logger *slog.Logger) ([]model.Checksum, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(algorithms) == 0 {
		algorithms = DefaultAlgorithms
	}

	type pending struct {
		algorithm model.DigestType
		hasher    hash.Hash
	}
	var hashers []pending
	var writers []io.Writer
	for _, name := range algorithms {
		var h hash.Hash
		var algorithm model.DigestType
		switch model.DigestType(strings.ToUpper(strings.TrimSpace(name))) {
		case model.DigestSHA256:
			h, algorithm = sha256.New(), model.DigestSHA256
		case model.DigestMD5:
			h, algorithm = md5.New(), model.DigestMD5
		case model.DigestSHA1:
			h, algorithm = sha1.New(), model.DigestSHA1
		default:
			logger.Error("Hash algorithm is not supported, use SHA256, MD5, or SHA1",
				slog.String("algorithm", name))
			continue
		}
		hashers = append(hashers, pending{algorithm: algorithm, hasher: h})
		writers = append(writers, h)
	}

	if len(writers) > 0 {
		if _, err := io.Copy(io.MultiWriter(writers...), r); err != nil {
			return nil, fmt.Errorf("hash source content: %w", err)
		}
	}

	checksums := make([]model.Checksum, 0, len(hashers))
	for _, p := range hashers {
		checksums = append(checksums, model.Checksum{
			ID:                "urn:uuid:" + uuid.NewString(),
			ChecksumAlgorithm: p.algorithm,
			Value:             hex.EncodeToString(p.hasher.Sum(nil)),
		})
	}
	return checksums, nil
}

// GenerateFile computes checksums over the full content of a file.
func GenerateFile(path string, algorithms []string, logger *slog.Logger) ([]model.Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()
	return Generate(f, algorithms, logger)
}
