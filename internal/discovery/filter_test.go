package discovery

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"testrig/internal/domain"
)

var discovered = []string{
	"test/adapters/excon_test.rb",
	"test/adapters/net_http_test.rb",
	"test/middleware/retry_test.rb",
	"test/request_test.rb",
	"test/response_middleware_test.rb",
}

func newTestFilter(t *testing.T, files ...string) *Filter {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		if err := afero.WriteFile(fs, f, []byte("# test"), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", f, err)
		}
	}
	if err := fs.MkdirAll("test/adapters", 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	return NewFilterFs(fs)
}

func TestFilterBySubstring(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		expected []string
	}{
		{
			name:     "subsequence in discovery order",
			pattern:  "middleware",
			expected: []string{"test/middleware/retry_test.rb", "test/response_middleware_test.rb"},
		},
		{
			name:     "directory pattern",
			pattern:  "adapters/",
			expected: []string{"test/adapters/excon_test.rb", "test/adapters/net_http_test.rb"},
		},
		{
			name:     "case sensitive",
			pattern:  "Request",
			expected: nil,
		},
		{
			name:     "empty pattern matches everything",
			pattern:  "",
			expected: discovered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBySubstring(discovered, tt.pattern)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("FilterBySubstring(%q) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
		})
	}
}

func TestFilter_Select(t *testing.T) {
	filter := newTestFilter(t, "test/request_test.rb", "extra/one_off_test.rb")

	tests := []struct {
		name     string
		args     []string
		expected domain.TestFileSet
	}{
		{
			name:     "no arguments returns discovered set",
			args:     nil,
			expected: domain.TestFileSet(discovered),
		},
		{
			name:     "literal path outside discovered set is taken verbatim",
			args:     []string{"extra/one_off_test.rb"},
			expected: domain.TestFileSet{"extra/one_off_test.rb"},
		},
		{
			name: "literal then pattern concatenates in argument order",
			args: []string{"extra/one_off_test.rb", "adapters"},
			expected: domain.TestFileSet{
				"extra/one_off_test.rb",
				"test/adapters/excon_test.rb",
				"test/adapters/net_http_test.rb",
			},
		},
		{
			name: "pattern then literal keeps duplicates",
			args: []string{"request", "test/request_test.rb"},
			expected: domain.TestFileSet{
				"test/request_test.rb",
				"test/request_test.rb",
			},
		},
		{
			name: "directory is not a literal file",
			args: []string{"test/adapters"},
			expected: domain.TestFileSet{
				"test/adapters/excon_test.rb",
				"test/adapters/net_http_test.rb",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filter.Select(discovered, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Select(%v) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestFilter_Select_EmptyResult(t *testing.T) {
	filter := newTestFilter(t)

	_, err := filter.Select(discovered, []string{"nothing_like_this"})
	if !errors.Is(err, domain.ErrNoTestsMatched) {
		t.Errorf("expected ErrNoTestsMatched, got %v", err)
	}

	t.Run("empty discovered set with filter", func(t *testing.T) {
		_, err := filter.Select(nil, []string{"adapters"})
		if !errors.Is(err, domain.ErrNoTestsMatched) {
			t.Errorf("expected ErrNoTestsMatched, got %v", err)
		}
	})
}
