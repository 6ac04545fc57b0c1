package browser

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTools_Registered(t *testing.T) {
	exec, _, _ := newTestExecutor(t, nil)
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(Tools(exec)...))

	assert.Equal(t, []string{
		"browser_extract_data",
		"browser_fill_form",
		"browser_monitor_changes",
		"browser_visit",
	}, reg.Names())

	for _, tool := range Tools(exec) {
		assert.NotEmpty(t, tool.Description())
		assert.Equal(t, "object", tool.Schema()["type"])
		assert.False(t, tool.IsLoopBreaking())
	}
}

func TestVisitTool_Execute(t *testing.T) {
	exec, l, _ := newTestExecutor(t, nil)
	tool := NewVisitTool(exec)

	out, meta, err := tool.Execute(context.Background(), []byte(
		`<arguments><url>https://example.com/search?q=go&page=2</url></arguments>`))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "Example body text", m["text"], "text is extracted by default")
	assert.NotContains(t, m, "html")
	assert.Equal(t, true, meta["success"])
	assert.Equal(t, "https://example.com/search?q=go&page=2", meta["url"])
	assert.Equal(t, "https://example.com/search?q=go&page=2", l.pages[0].url)

	out, _, err = tool.Execute(context.Background(), []byte(
		`<arguments><url>https://example.com</url><extract_text>false</extract_text><extract_html>true</extract_html></arguments>`))
	require.NoError(t, err)
	m = nil
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.NotContains(t, m, "text")
	assert.Contains(t, m, "html")
}

func TestVisitTool_PageFailureIsNotAGoError(t *testing.T) {
	exec, _, _ := newTestExecutor(t, nil)

	out, meta, err := NewVisitTool(exec).Execute(context.Background(), []byte(
		`<arguments><url>https://example.com</url><wait_for>#never</wait_for></arguments>`))

	require.NoError(t, err)
	assert.Equal(t, false, meta["success"])
	assert.Contains(t, out, "SelectorWaitTimeout")
}

func TestTools_ArgumentErrors(t *testing.T) {
	exec, l, _ := newTestExecutor(t, nil)

	tests := []struct {
		name    string
		tool    tools.Tool
		args    string
		wantErr string
	}{
		{"visit no url", NewVisitTool(exec), `<arguments></arguments>`, "url is required"},
		{"visit bad xml", NewVisitTool(exec), `<arguments><url>`, "invalid parameters"},
		{"visit negative length", NewVisitTool(exec), `<arguments><url>https://a.example</url><max_html_length>-1</max_html_length></arguments>`, "max_html_length"},
		{"form no submit", NewFillFormTool(exec), `<arguments><url>https://a.example</url></arguments>`, "submit_button is required"},
		{"form field without selector", NewFillFormTool(exec), `<arguments><url>https://a.example</url><field>x</field><submit_button>#go</submit_button></arguments>`, "field 1 is missing"},
		{"extract no selectors", NewExtractDataTool(exec), `<arguments><url>https://a.example</url></arguments>`, "at least one selector"},
		{"extract unnamed selector", NewExtractDataTool(exec), `<arguments><url>https://a.example</url><selector>h1</selector></arguments>`, "name attribute"},
		{"extract attribute without name", NewExtractDataTool(exec), `<arguments><url>https://a.example</url><selector name="t">h1</selector><attribute selector="a"></attribute></arguments>`, "attribute name"},
		{"monitor no selector", NewMonitorChangesTool(exec), `<arguments><url>https://a.example</url></arguments>`, "selector is required"},
		{"monitor zero interval", NewMonitorChangesTool(exec), `<arguments><url>https://a.example</url><selector>#p</selector><interval>0</interval></arguments>`, "interval must be at least"},
		{"monitor negative max_time", NewMonitorChangesTool(exec), `<arguments><url>https://a.example</url><selector>#p</selector><max_time>-5</max_time></arguments>`, "max_time cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.tool.Execute(context.Background(), []byte(tt.args))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Empty(t, l.browsers)
}

func TestFillFormTool_Execute(t *testing.T) {
	exec, l, _ := newTestExecutor(t, formPage)

	out, meta, err := NewFillFormTool(exec).Execute(context.Background(), []byte(`<arguments>
  <url>https://example.com/signup</url>
  <field selector="#name">Ada &amp; Co</field>
  <field selector="#agree">true</field>
  <field selector="#plan">pro</field>
  <submit_button>button[type=submit]</submit_button>
</arguments>`))

	require.NoError(t, err)
	assert.Equal(t, true, meta["success"])
	assert.Contains(t, out, `"title": "Example Domain"`)
	assert.Equal(t, []string{
		"fill #name=Ada & Co",
		"check #agree=true",
		"select #plan=pro",
		"click button[type=submit]",
	}, l.pages[0].actions)
}

func TestExtractDataTool_Execute(t *testing.T) {
	exec, _, _ := newTestExecutor(t, func() *fakePage {
		p := newFakePage()
		p.add("h2.title", textEl("One"), textEl("Two"))
		p.add("a", linkEl("/x"))
		return p
	})

	out, _, err := NewExtractDataTool(exec).Execute(context.Background(), []byte(`<arguments>
  <url>https://example.com</url>
  <selector name="titles"> h2.title </selector>
  <attribute selector="a">href</attribute>
</arguments>`))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, map[string]any{"titles": []any{"One", "Two"}}, m["data"])
	assert.Equal(t, map[string]any{"a": "/x"}, m["attributes"])
}

func TestMonitorChangesTool_Defaults(t *testing.T) {
	exec, _, clk := newTestExecutor(t, readings(str("same")))

	_, meta, err := NewMonitorChangesTool(exec).Execute(context.Background(), []byte(`<arguments>
  <url>https://example.com</url>
  <selector>#price</selector>
  <max_time>120</max_time>
</arguments>`))

	require.NoError(t, err)
	assert.Equal(t, true, meta["success"])
	assert.Equal(t, 0, meta["changes"])
	require.Len(t, clk.sleeps, 2)
	assert.Equal(t, float64(DefaultMonitorInterval), clk.sleeps[0].Seconds())
}
