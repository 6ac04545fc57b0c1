package main

import (
	"context"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct{}

func (echoTool) Name() string                   { return "echo" }
func (echoTool) Description() string            { return "echo a message" }
func (echoTool) Schema() map[string]interface{} { return tools.BaseToolSchema(nil, nil) }
func (echoTool) IsLoopBreaking() bool           { return false }

func (echoTool) Execute(_ context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var in struct {
		XMLName xml.Name `xml:"arguments"`
		Message string   `xml:"message"`
		Fail    bool     `xml:"fail"`
	}
	if err := tools.UnmarshalXMLWithFallback(argsXML, &in); err != nil {
		return "", nil, err
	}
	if in.Fail {
		return "", nil, errors.New("asked to fail")
	}
	return in.Message, map[string]interface{}{"length": len(in.Message)}, nil
}

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(echoTool{}))
	return reg
}

func TestLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- tool: browser_visit
  arguments: <url>https://example.com</url>
- tool: read_file
  arguments: |
    <arguments>
      <path>README.md</path>
    </arguments>
`), 0644))

	jobs, err := loadJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "browser_visit", jobs[0].Tool)
	assert.Equal(t, "<url>https://example.com</url>", string(jobs[0].toolCall().Arguments.InnerXML))

	call := jobs[1].toolCall()
	assert.Equal(t, "read_file", call.ToolName)
	assert.Equal(t, "<arguments>\n  <path>README.md</path>\n</arguments>", string(call.GetArgumentsXML()))
}

func TestLoadJobs_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadJobs(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read batch file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tool: [unclosed"), 0644))
	_, err = loadJobs(bad)
	assert.ErrorContains(t, err, "failed to parse batch file")

	noTool := filepath.Join(dir, "notool.yaml")
	require.NoError(t, os.WriteFile(noTool, []byte("- arguments: <x>1</x>\n"), 0644))
	_, err = loadJobs(noTool)
	assert.ErrorContains(t, err, "job 1: tool is required")
}

func TestRunJobs(t *testing.T) {
	reg := testRegistry(t)

	results, failed := runJobs(context.Background(), reg, []Job{
		{Tool: "echo", Arguments: `<message>{"ok":true}</message>`},
		{Tool: "echo", Arguments: "<message>plain text</message>"},
		{Tool: "echo", Arguments: "<fail>true</fail>"},
		{Tool: "missing"},
	})
	require.Len(t, results, 4)
	assert.True(t, failed)

	assert.JSONEq(t, `{"ok":true}`, string(results[0].Output))
	assert.Equal(t, `"plain text"`, string(results[1].Output))
	assert.Equal(t, 10, results[1].Metadata["length"])
	assert.Empty(t, results[1].Error)

	assert.Contains(t, results[2].Error, "asked to fail")
	assert.Contains(t, results[3].Error, `unknown tool "missing"`)
}

func TestRunJobs_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, failed := runJobs(ctx, testRegistry(t), []Job{{Tool: "echo", Arguments: "<message>hi</message>"}})
	assert.True(t, failed)
	require.Len(t, results, 1)
	assert.Equal(t, context.Canceled.Error(), results[0].Error)
}
