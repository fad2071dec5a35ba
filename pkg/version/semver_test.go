package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := Version
	Version = v
	t.Cleanup(func() { Version = old })
}

func TestParsed(t *testing.T) {
	withVersion(t, "v1.2.3-beta.1")
	v := Parsed()
	if assert.NotNil(t, v) {
		assert.EqualValues(t, 1, v.Major())
		assert.Equal(t, "beta.1", v.Prerelease())
	}
	assert.False(t, IsDevBuild())

	withVersion(t, "dev")
	assert.Nil(t, Parsed())
	assert.True(t, IsDevBuild())
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		local, peer string
		ok          bool
	}{
		{"v1.2.0", "v1.0.0", true},
		{"v1.2.0", "v1.9.3", true},
		{"v1.2.0", "v2.0.0", false},
		{"v2.0.0", "v1.5.0", false},
		{"v0.3.1", "v0.3.0", true},
		{"v0.3.1", "v0.4.0", false},
		{"dev", "v9.0.0", true},
		{"v1.0.0", "dev", true},
	}
	for _, tt := range tests {
		t.Run(tt.local+"_"+tt.peer, func(t *testing.T) {
			withVersion(t, tt.local)
			err := CheckCompatible(tt.peer)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrIncompatible)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	withVersion(t, "v1.0.0")
	old := Commit
	Commit = "0123456789abcdef"
	t.Cleanup(func() { Commit = old })

	info := Info()
	assert.True(t, strings.HasPrefix(info, "logsearch v1.0.0 (0123456)"))
	assert.Contains(t, Full(), "Commit: 0123456789abcdef")
}
