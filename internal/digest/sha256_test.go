package digest_test

import (
	"errors"
	"strings"
	"testing"

	"fic-go/internal/digest"
)

func TestSHA256_Sum(t *testing.T) {
	t.Parallel()
	d := digest.NewSHA256()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "known vector",
			input: "hello",
			want:  "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:  "empty input",
			input: "",
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, n, err := d.Sum(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Sum() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("Sum() = %q, want %q", got, tc.want)
			}
			if n != int64(len(tc.input)) {
				t.Errorf("n = %d, want %d", n, len(tc.input))
			}
		})
	}
}

func TestSHA256_Algorithm(t *testing.T) {
	t.Parallel()
	if got := digest.NewSHA256().Algorithm(); got != "sha256" {
		t.Errorf("Algorithm() = %q, want sha256", got)
	}
}

func TestSHA256_ReadError(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("disk gone")
	_, _, err := digest.NewSHA256().Sum(failingReader{err: wantErr})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Sum() error = %v, want wrapped %v", err, wantErr)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
