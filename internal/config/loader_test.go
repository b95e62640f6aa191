package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("ADWISE_TEST_HOST", "db.internal")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "host: ${ADWISE_TEST_HOST}", "host: db.internal"},
		{"set variable ignores default", "host: ${ADWISE_TEST_HOST:fallback}", "host: db.internal"},
		{"unset with default", "host: ${ADWISE_TEST_MISSING:localhost}", "host: localhost"},
		{"unset with empty default", "password: ${ADWISE_TEST_MISSING:}", "password: "},
		{"unset without default", "host: ${ADWISE_TEST_MISSING}", "host: ${ADWISE_TEST_MISSING}"},
		{"plain text", "port: 5432", "port: 5432"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnv(tt.input); got != tt.want {
				t.Errorf("expandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
