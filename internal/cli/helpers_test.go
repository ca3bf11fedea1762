package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const validProgram = `
stanzas: [{
	pattern: "(function_definition parameters: (parameters (identifier)* @params)) @fn"
	captures: {params: "*", fn: "1"}
	body: [
		{node: "n"},
		{loop: "p", over: {capture: "params"}, body: [
			{print: [{ref: "p"}]},
		]},
	]
}]
`

const loopOverSingleProgram = `
stanzas: [{
	pattern: "(identifier) @id"
	captures: {id: "1"}
	body: [{loop: "x", over: {capture: "id"}}]
}]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
