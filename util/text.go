// util/text.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"crypto/sha256"
	"hash/fnv"
	"io"
	"strings"
)

// Hash returns the sha256 digest of r's contents.
func Hash(r io.Reader) ([]byte, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return nil, err
	}
	return hash.Sum(nil), nil
}

// HashString64 returns a fast, non-cryptographic 64-bit digest of s,
// used to key the on-disk result cache by request/polar/race contents.
func HashString64(s string) uint64 {
	hash := fnv.New64a()
	io.Copy(hash, strings.NewReader(s))
	return hash.Sum64()
}
