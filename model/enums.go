package model

import (
	"fmt"
	"strings"
)

// AuthorityType identifies the organization that produced a genome annotation.
// The authority determines which attribute-extraction rules apply during
// GFF3 parsing.
type AuthorityType string

const (
	// AuthorityNCBI is the NCBI RefSeq annotation pipeline.
	AuthorityNCBI AuthorityType = "NCBI"

	// AuthorityEnsembl is the Ensembl annotation pipeline.
	AuthorityEnsembl AuthorityType = "ENSEMBL"
)

// ParseAuthority maps a case-insensitive authority string to its type.
// Only NCBI and Ensembl are supported; anything else is a configuration
// error and must be rejected before any file is parsed.
func ParseAuthority(s string) (AuthorityType, error) {
	switch strings.ToUpper(s) {
	case string(AuthorityNCBI):
		return AuthorityNCBI, nil
	case string(AuthorityEnsembl):
		return AuthorityEnsembl, nil
	default:
		return "", fmt.Errorf("authority %q is not supported, use NCBI or Ensembl", s)
	}
}

// DigestType enumerates the supported checksum algorithms.
type DigestType string

const (
	// DigestSHA256 is the SHA-256 algorithm.
	DigestSHA256 DigestType = "SHA256"

	// DigestMD5 is the MD5 algorithm.
	DigestMD5 DigestType = "MD5"

	// DigestSHA1 is the SHA-1 algorithm.
	DigestSHA1 DigestType = "SHA1"
)

// BioTypeProteinCoding and BioTypeNoncoding are the two molecular-type
// values the duplicate-resolution policy reasons about. Noncoding is a
// generic sentinel: any more specific biotype supersedes it when the same
// stable gene ID is seen on multiple feature lines.
const (
	BioTypeProteinCoding = "protein_coding"
	BioTypeNoncoding     = "noncoding"
)
