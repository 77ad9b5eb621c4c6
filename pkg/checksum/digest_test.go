package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"
)

func TestSum(t *testing.T) {
	result, err := Sum(strings.NewReader("abc"), DigestMD5, DigestSHA256, DigestMD5)
	if err != nil {
		t.Fatalf("cannot create checksums: %v", err)
	}
	expected := map[DigestAlgorithm]string{
		DigestMD5:    "900150983cd24fb0d6963f7d28e17f72",
		DigestSHA256: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
	}
	if diff := deep.Equal(result, expected); diff != nil {
		t.Error(diff)
	}
	if _, err := Sum(strings.NewReader("abc"), "crc32"); err == nil {
		t.Error("unknown algorithm should fail")
	}
}

func TestSumFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(name, []byte("abc"), 0644); err != nil {
		t.Fatalf("cannot write %s: %v", name, err)
	}
	result, err := SumFile(name, DigestSHA1)
	if err != nil {
		t.Fatalf("cannot create checksum: %v", err)
	}
	if result[DigestSHA1] != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Errorf("invalid sha1 %s", result[DigestSHA1])
	}
	if _, err := SumFile(filepath.Join(t.TempDir(), "missing"), DigestSHA1); err == nil {
		t.Error("missing file should fail")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 6 || names[0] != "blake2b-256" || names[len(names)-1] != "sha512" {
		t.Errorf("unexpected names %v", names)
	}
	if !HashExists(DigestBlake2b512) || HashExists("sha3") {
		t.Error("invalid HashExists result")
	}
}
