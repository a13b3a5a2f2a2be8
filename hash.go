package crunch

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// hashMagic is the golden ratio constant used to decorrelate successive
// fingerprint contributors.
const hashMagic = 0x9e3779b9

// HashBytes returns the FNV-1a 64-bit hash of data. The hash is platform
// independent so that fingerprint files can be shared across hosts.
func HashBytes(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// Combine folds the already hashed contributor v into the running fingerprint h.
func Combine(h, v uint64) uint64 {
	return h ^ (v + hashMagic + (h << 6) + (h >> 2))
}

// HashString folds the string token s into the running fingerprint h.
func HashString(h uint64, s string) uint64 {
	return Combine(h, HashBytes([]byte(s)))
}

// HashFile folds the entire byte contents of the file into the running
// fingerprint h.
func HashFile(h uint64, path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read file: %s", path)
	}
	return Combine(h, HashBytes(data)), nil
}

// HashFiles folds every .png file below root into the running fingerprint h.
// Files are visited in lexicographic full-path order so the fingerprint is
// reproducible regardless of the host filesystem's iteration order.
func HashFiles(h uint64, root string) (uint64, error) {
	files, err := findPngFiles(root)
	if err != nil {
		return 0, err
	}
	for _, file := range files {
		if h, err = HashFile(h, file); err != nil {
			return 0, err
		}
	}
	return h, nil
}

// LoadHash reads a previously saved fingerprint. The second return value
// reports whether a parseable fingerprint file was found.
func LoadHash(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	hash, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return hash, true
}

// SaveHash persists the fingerprint as its decimal ASCII representation.
func SaveHash(hash uint64, path string) error {
	err := os.WriteFile(path, []byte(strconv.FormatUint(hash, 10)), 0644)
	return errors.Wrapf(err, "failed to write file: %s", path)
}
