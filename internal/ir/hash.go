package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProgram     = "tsg/program/v1"
	DomainAnnotations = "tsg/annotations/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramHash computes the content-addressed identity of a program source.
// Check runs of byte-identical programs share a hash.
func ProgramHash(source []byte) string {
	return hashWithDomain(DomainProgram, source)
}

// AnnotationsHash computes the identity of a checker side table.
// Two checks that resolved every capture identically hash the same.
func AnnotationsHash(a *Annotations) (string, error) {
	canonical, err := a.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("AnnotationsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAnnotations, canonical), nil
}

// MustAnnotationsHash is like AnnotationsHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustAnnotationsHash(a *Annotations) string {
	h, err := AnnotationsHash(a)
	if err != nil {
		panic(err)
	}
	return h
}
