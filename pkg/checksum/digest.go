package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"emperror.dev/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
)

type DigestAlgorithm string

const (
	DigestMD5        DigestAlgorithm = "md5"
	DigestSHA1       DigestAlgorithm = "sha1"
	DigestSHA256     DigestAlgorithm = "sha256"
	DigestSHA512     DigestAlgorithm = "sha512"
	DigestBlake2b256 DigestAlgorithm = "blake2b-256"
	DigestBlake2b512 DigestAlgorithm = "blake2b-512"
)

var hashFunc = map[DigestAlgorithm]func() hash.Hash{
	DigestMD5:    md5.New,
	DigestSHA1:   sha1.New,
	DigestSHA256: sha256.New,
	DigestSHA512: sha512.New,
	DigestBlake2b256: func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	},
	DigestBlake2b512: func() hash.Hash {
		h, err := blake2b.New512(nil)
		if err != nil {
			panic(err)
		}
		return h
	},
}

func Names() []string {
	names := make([]string, 0, len(hashFunc))
	for alg := range hashFunc {
		names = append(names, string(alg))
	}
	slices.Sort(names)
	return names
}

func HashExists(alg DigestAlgorithm) bool {
	_, ok := hashFunc[alg]
	return ok
}

func GetHash(alg DigestAlgorithm) (hash.Hash, error) {
	f, ok := hashFunc[alg]
	if !ok {
		return nil, errors.Errorf("unknown checksum %s", alg)
	}
	return f(), nil
}

// Sum reads r to the end and returns the hex encoded digests.
func Sum(r io.Reader, algs ...DigestAlgorithm) (map[DigestAlgorithm]string, error) {
	hashes := map[DigestAlgorithm]hash.Hash{}
	writers := make([]io.Writer, 0, len(algs))
	for _, alg := range algs {
		if _, ok := hashes[alg]; ok {
			continue
		}
		h, err := GetHash(alg)
		if err != nil {
			return nil, err
		}
		hashes[alg] = h
		writers = append(writers, h)
	}
	if _, err := io.Copy(io.MultiWriter(writers...), r); err != nil {
		return nil, errors.Wrap(err, "cannot read data")
	}
	result := map[DigestAlgorithm]string{}
	for alg, h := range hashes {
		result[alg] = hex.EncodeToString(h.Sum(nil))
	}
	return result, nil
}

func SumFile(name string, algs ...DigestAlgorithm) (map[DigestAlgorithm]string, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open '%s'", name)
	}
	defer fp.Close()
	result, err := Sum(fp, algs...)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create checksum of '%s'", name)
	}
	return result, nil
}
