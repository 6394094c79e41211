// pkg/kvstore/store_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test overwrite semantics, persistence round-trip and tolerant loading

package kvstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOverwrites(t *testing.T) {
	s := kvstore.New()
	require.NoError(t, s.Set("HOSTNAME", "first"))
	require.NoError(t, s.Set("HOSTNAME", "second"))

	assert.Equal(t, "second", s.Get("HOSTNAME", "default"))
	assert.Equal(t, "default", s.Get("TIMEZONE", "default"))
	assert.Equal(t, 1, s.Len())
}

func TestSetRejectsInvalidKeys(t *testing.T) {
	s := kvstore.New()

	for _, key := range []string{"", "1ABC", "HAS SPACE", "A=B", "DASH-KEY", "NEW\nLINE"} {
		t.Run(key, func(t *testing.T) {
			err := s.Set(key, "v")
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		})
	}
	assert.Equal(t, 0, s.Len())
}

func TestLists(t *testing.T) {
	s := kvstore.New()
	require.NoError(t, s.SetList("SELECTED_KERNELS", []string{"linux", "linux-lts"}))

	assert.Equal(t, "linux linux-lts", s.Get("SELECTED_KERNELS", ""))
	assert.Equal(t, []string{"linux", "linux-lts"}, s.GetList("SELECTED_KERNELS"))
	assert.Nil(t, s.GetList("MISSING"))
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, err := kvstore.Load(filesystem.NewOS(), filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Skipped())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "state", "install.env")

	values := map[string]string{
		"HOSTNAME":  "arch-desktop",
		"SPACES":    "  leading and trailing  ",
		"QUOTES":    `she said "hi" and 'bye'`,
		"SHELL":     "$(rm -rf /); `id` && echo $HOME | cat > /etc/x",
		"BACKSLASH": `C:\path\to\thing\`,
		"NEWLINE":   "line one\nINJECTED=yes\nline three",
		"EMPTY":     "",
		"UNICODE":   "Zürich ✓",
		"HASH":      "value # not a comment",
	}

	s := kvstore.New()
	for k, v := range values {
		require.NoError(t, s.Set(k, v))
	}
	require.NoError(t, s.Save(fs, path))

	loaded, err := kvstore.Load(fs, path)
	require.NoError(t, err)

	assert.True(t, s.Equal(loaded))
	assert.Empty(t, loaded.Skipped())
	_, injected := loaded.Lookup("INJECTED")
	assert.False(t, injected, "a value must never create another entry")
	for k, v := range values {
		assert.Equal(t, v, loaded.Get(k, "<unset>"), k)
	}
}

func TestSaveIsHumanReadable(t *testing.T) {
	fs := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "install.env")

	s := kvstore.New()
	require.NoError(t, s.Set("TIMEZONE", "Europe/Berlin"))
	require.NoError(t, s.Set("BOOTLOADER", "grub"))
	require.NoError(t, s.Save(fs, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# archstep installation state.")
	assert.Contains(t, string(content), "BOOTLOADER=\"grub\"\nTIMEZONE=\"Europe/Berlin\"\n")
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.env")
	content := "# comment\n" +
		"\n" +
		"HOSTNAME=\"arch-desktop\"\n" +
		"this line has no separator\n" +
		"1BAD=\"key\"\n" +
		"BROKEN=\"unterminated\n" +
		"USERNAME=\"alice\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := kvstore.Load(filesystem.NewOS(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"HOSTNAME", "USERNAME"}, s.Keys())
	skipped := s.Skipped()
	require.Len(t, skipped, 3)
	assert.Equal(t, 4, skipped[0].Line)
	assert.Equal(t, 5, skipped[1].Line)
	assert.Equal(t, 6, skipped[2].Line)
}

func TestLoadAcceptsLegacyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "install.env")
	content := "TIMEZONE=Europe/Berlin\n" +
		"BOOTLOADER='grub'\n" +
		"export LOCALE=\"en_US.UTF-8\"\n" +
		"SELECTED_KERNELS=\"linux linux-lts\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := kvstore.Load(filesystem.NewOS(), path)
	require.NoError(t, err)

	assert.Empty(t, s.Skipped())
	assert.Equal(t, "Europe/Berlin", s.Get("TIMEZONE", ""))
	assert.Equal(t, "grub", s.Get("BOOTLOADER", ""))
	assert.Equal(t, "en_US.UTF-8", s.Get("LOCALE", ""))
	assert.Equal(t, []string{"linux", "linux-lts"}, s.GetList("SELECTED_KERNELS"))
}

func TestMergeOtherWins(t *testing.T) {
	base := kvstore.New()
	require.NoError(t, base.Set("CPU_VENDOR", "intel"))
	require.NoError(t, base.Set("HOSTNAME", "arch"))

	later := kvstore.New()
	require.NoError(t, later.Set("CPU_VENDOR", "amd"))
	require.NoError(t, later.Set("TIMEZONE", "UTC"))

	base.Merge(later)

	assert.Equal(t, "amd", base.Get("CPU_VENDOR", ""))
	assert.Equal(t, "arch", base.Get("HOSTNAME", ""))
	assert.Equal(t, "UTC", base.Get("TIMEZONE", ""))
	assert.Equal(t, 3, base.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	s := kvstore.New()
	require.NoError(t, s.Set("A", "1"))

	c := s.Clone()
	require.NoError(t, c.Set("A", "2"))

	assert.Equal(t, "1", s.Get("A", ""))
	assert.False(t, s.Equal(c))
}

func TestMatch(t *testing.T) {
	s := kvstore.New()
	for _, k := range []string{"EFI_PARTITION", "ROOT_PARTITION", "TARGET_DISK", "HOSTNAME"} {
		require.NoError(t, s.Set(k, "x"))
	}

	keys, err := s.Match("*_PARTITION")
	require.NoError(t, err)
	assert.Equal(t, []string{"EFI_PARTITION", "ROOT_PARTITION"}, keys)

	_, err = s.Match("[")
	require.Error(t, err)
}
