package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("WEBPIFY_TEST_SET", "real")
	t.Setenv("WEBPIFY_TEST_EMPTY", "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set", "endpoint: ${WEBPIFY_TEST_SET}", "endpoint: real"},
		{"unset", "endpoint: ${WEBPIFY_TEST_UNSET_12345}", "endpoint: "},
		{"default when unset", "endpoint: ${WEBPIFY_TEST_UNSET_12345:-http://localhost:8000}", "endpoint: http://localhost:8000"},
		{"default ignored when set", "endpoint: ${WEBPIFY_TEST_SET:-fallback}", "endpoint: real"},
		{"default when empty", "endpoint: ${WEBPIFY_TEST_EMPTY:-fallback}", "endpoint: fallback"},
		{"multiple", "${WEBPIFY_TEST_SET}/${WEBPIFY_TEST_SET}", "real/real"},
		{"no pattern", "quality: 85", "quality: 85"},
		{"bare dollar untouched", "prefix: $HOME", "prefix: $HOME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.in); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
