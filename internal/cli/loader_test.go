package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDir(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

func TestLoadProgram(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.cue", validProgram)

	loaded, err := LoadProgram(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Path)
	assert.Equal(t, validProgram, string(loaded.Source))
	require.Len(t, loaded.Program.File.Stanzas, 1)
	assert.Equal(t, "(function_definition parameters: (parameters (identifier)* @params)) @fn",
		loaded.Program.File.Stanzas[0].Pattern)
}

func TestLoadProgramIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.cue", validProgram)
	writeFile(t, dir, "other.cue", `stanzas: [{pattern: "(x)"}, {pattern: "(y)"}]`)

	loaded, err := LoadProgram(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Program.File.Stanzas, 1)
}

func TestLoadProgramErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		path      string
		wantCodes []string
	}{
		{"not found", filepath.Join(dir, "missing.cue"), []string{ErrCodeNotFound}},
		{"syntax error", writeFile(t, dir, "syntax.cue", "stanzas: [{\n"), []string{ErrCodeLoadFailed, ErrCodeBuildFailed}},
		{"compile error", writeFile(t, dir, "compile.cue", `stanzas: [{pattern: 3}]`), []string{ErrCodeInvalidProgram}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProgram(tt.path)
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Contains(t, tt.wantCodes, loadErr.Code)
		})
	}
}

func TestLoadProgramCompileErrorPosition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.cue", "stanzas: [{\n\tpattern: 3\n}]\n")

	_, err := LoadProgram(path)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, loadErr.Pos.IsValid())
	assert.Contains(t, loadErr.Message, "stanzas[0].pattern")
	assert.Contains(t, loadErr.Error(), "rules.cue:")
	assert.Contains(t, loadErr.Error(), ErrCodeInvalidProgram)
}

func TestLoadErrorFormat(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in ./programs"}
	assert.Equal(t, "E003: no CUE files found in ./programs", err.Error())

	code, msg := loadErrorCode(err)
	assert.Equal(t, ErrCodeNoFiles, code)
	assert.Equal(t, err.Error(), msg)

	code, msg = loadErrorCode(errors.New("boom"))
	assert.Equal(t, ErrCodeGeneric, code)
	assert.Equal(t, "boom", msg)
}

func TestProgramPaths(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.cue", validProgram)
	a := writeFile(t, dir, "a.cue", validProgram)
	nested := writeFile(t, dir, "sub/c.cue", validProgram)
	writeFile(t, dir, "notes.txt", "ignored")

	paths, err := ProgramPaths(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, nested}, paths)

	paths, err = ProgramPaths(b)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, paths)
}

func TestProgramPathsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ProgramPaths(filepath.Join(dir, "missing"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)

	empty := writeDir(t, filepath.Join(dir, "empty"))
	_, err = ProgramPaths(empty)
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}
