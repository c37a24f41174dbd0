package provenance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		in   string
		want DescriptorParts
	}{
		{"anidb:1234", DescriptorParts{Provider: "anidb", ID: "1234"}},
		{"tvdb:81797:s1", DescriptorParts{Provider: "tvdb", ID: "81797", Scope: "s1"}},
		{"tmdb_show:1:s0", DescriptorParts{Provider: "tmdb_show", ID: "1", Scope: "s0"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDescriptor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseDescriptor_Invalid(t *testing.T) {
	for _, in := range []string{"", "anidb", ":1", "anidb:", "a:b:c:d"} {
		_, err := ParseDescriptor(in)
		assert.Error(t, err, "input %q", in)
	}
}
