// pkg/validate/validate_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Filesystem (t.TempDir)
// PURPOSE: Test the input grammars

package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostname(t *testing.T) {
	valid := []string{"arch-desktop", "a", "host01", "A1", strings.Repeat("x", 63)}
	invalid := []string{"-bad-", "", "bad-", "-bad", "under_score", "dot.ted", "sp ace", strings.Repeat("x", 64)}

	for _, s := range valid {
		assert.NoError(t, Hostname(s), s)
	}
	for _, s := range invalid {
		assert.Error(t, Hostname(s), s)
	}
}

func TestUsername(t *testing.T) {
	for _, s := range []string{"alice", "_svc", "bob-2", "x_y"} {
		assert.NoError(t, Username(s), s)
	}
	for _, s := range []string{"", "Alice", "1user", "root", "nobody", "a b", strings.Repeat("a", 33)} {
		assert.Error(t, Username(s), s)
	}
}

func TestTimezone(t *testing.T) {
	zoneinfo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(zoneinfo, "Europe"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(zoneinfo, "Europe", "Berlin"), []byte("TZif"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(zoneinfo, "UTC"), []byte("TZif"), 0644))

	old := ZoneinfoDir
	ZoneinfoDir = zoneinfo
	t.Cleanup(func() { ZoneinfoDir = old })

	assert.NoError(t, Timezone("Europe/Berlin"))
	assert.NoError(t, Timezone("UTC"))
	assert.Error(t, Timezone("Europe/Atlantis"))
	assert.Error(t, Timezone("Europe"), "a region directory is not a zone")
	assert.Error(t, Timezone("../etc/passwd"))
	assert.Error(t, Timezone("Europe/Berlin "))

	t.Run("pattern_only_without_database", func(t *testing.T) {
		ZoneinfoDir = filepath.Join(zoneinfo, "missing")
		assert.NoError(t, Timezone("America/Argentina/Buenos_Aires"))
		assert.Error(t, Timezone("not a zone"))
	})
}

func TestLocaleAndKeymap(t *testing.T) {
	for _, s := range []string{"en_US.UTF-8", "de_DE@euro", "fr_FR"} {
		assert.NoError(t, Locale(s), s)
	}
	assert.Error(t, Locale("en US"))
	assert.Error(t, Locale("C"), "locale-gen has nothing to generate for C")

	assert.NoError(t, Keymap("de-latin1"))
	assert.NoError(t, Keymap("us"))
	assert.Error(t, Keymap("us; rm"))
}

func TestPackageName(t *testing.T) {
	for _, s := range []string{"firefox", "lib32-mesa", "python3.11", "gtk+"} {
		assert.NoError(t, PackageName(s), s)
	}
	for _, s := range []string{"", "-flag", "Upper", "a b", "a;b", ".hidden"} {
		assert.Error(t, PackageName(s), s)
	}
}

func TestBlockDevice(t *testing.T) {
	file := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.Error(t, BlockDevice("sda"), "relative")
	assert.Error(t, BlockDevice("/dev/does-not-exist"))
	assert.Error(t, BlockDevice(file), "regular file")
	assert.Error(t, BlockDevice("/dev/null"), "character device")
}

func TestOneOf(t *testing.T) {
	v := OneOf("yay", "paru")
	assert.NoError(t, v("paru"))
	assert.Error(t, v("trizen"))
}
