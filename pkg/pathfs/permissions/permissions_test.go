package permissions_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

func TestRoundTripAllModes(t *testing.T) {
	for m := uint32(0); m <= 0o777; m++ {
		require.Equal(t, m, permissions.FromMode(m).ToNumber(), "mode %o", m)
	}
}

func TestFromModeIgnoresHighBits(t *testing.T) {
	p := permissions.FromMode(0o4755)
	assert.Equal(t, uint32(0o755), p.ToNumber())
	assert.Equal(t, permissions.Role{Read: true, Write: true, Execute: true}, p.Owner)
	assert.Equal(t, permissions.Role{Read: true, Execute: true}, p.Group)
}

func TestApplyToPreservesSpecialBits(t *testing.T) {
	p := permissions.FromMode(0o640)
	assert.Equal(t, uint32(0o104640), p.ApplyTo(0o104755))
	assert.Equal(t, uint32(0o1640), p.ApplyTo(0o1777))
}

func TestString(t *testing.T) {
	assert.Equal(t, "rwxr-xr-x", permissions.FromMode(0o755).String())
	assert.Equal(t, "rw-------", permissions.FromMode(0o600).String())
	assert.Equal(t, "0644", permissions.FromMode(0o644).Octal())
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  uint32
	}{
		{"755", 0o755},
		{"0755", 0o755},
		{"0o700", 0o700},
		{"0", 0},
		{"rwxr-x---", 0o750},
		{"---------", 0},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			p, err := permissions.Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.ToNumber())
		})
	}

	for _, bad := range []string{"", "888", "1777", "rwxrwxrwz", "xwrxwrxwr", "abc"} {
		_, err := permissions.Parse(bad)
		assert.True(t, errors.Is(err, core.InvalidPath), "input %q", bad)
	}
}

type fakeUmask struct {
	mask int
	ok   bool
}

func (f fakeUmask) Umask() (int, bool) { return f.mask, f.ok }

func TestDefault(t *testing.T) {
	assert.Equal(t, uint32(0o755), permissions.Default(fakeUmask{mask: 0o022, ok: true}).ToNumber())
	assert.Equal(t, uint32(0o700), permissions.Default(fakeUmask{mask: 0o077, ok: true}).ToNumber())
	assert.Equal(t, permissions.FallbackMode, permissions.Default(fakeUmask{}).ToNumber())
	assert.Equal(t, permissions.FallbackMode, permissions.Default(nil).ToNumber())
}

func TestMerge(t *testing.T) {
	yes, no := true, false
	base := permissions.FromMode(0o755)

	merged := permissions.Merge(base, permissions.Partial{
		Group: &permissions.PartialRole{Execute: &no},
		Other: &permissions.PartialRole{Read: &no, Write: &yes},
	})
	assert.Equal(t, uint32(0o743), merged.ToNumber())

	assert.Equal(t, base, permissions.Merge(base, permissions.Partial{}))
}
