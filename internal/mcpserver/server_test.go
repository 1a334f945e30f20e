package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/appseeds/internal/dataset"
	"github.com/agentic-research/appseeds/internal/datasource"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"demo/_config.yml":   "num_people: 2\n",
		"demo/companies.yml": "mega_corp:\n  name: Megacorp\n",
		"demo/people.yml":    "joe_smith:\n  first_name: Joe\n  company_id: mega_corp\njane_doe:\n  first_name: Jane\n",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	src, err := datasource.Directory(root)
	require.NoError(t, err)
	d := dataset.New(src)
	require.NoError(t, d.Load("demo"))
	return New(d)
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return ""
}

func TestSeedTypes(t *testing.T) {
	s := newTestServer(t)
	res, err := s.seedTypes(context.Background(), call(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["companies","people"]`, text(t, res))
}

func TestFetch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.fetch(ctx, call(map[string]any{"type": "people", "label": "joe_smith"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	var got []recordView
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "joe_smith", got[0].Label)
	assert.Equal(t, float64(544129287), got[0].Attributes["company_id"])

	res, err = s.fetch(ctx, call(map[string]any{"type": "people", "where": map[string]any{"company_id": "mega_corp"}}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	require.Len(t, got, 1)

	res, err = s.fetch(ctx, call(map[string]any{"type": "people"}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Len(t, got, 2)
}

func TestFetch_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for _, args := range []map[string]any{
		{},
		{"type": "missing"},
		{"type": "people", "label": "nobody"},
		{"type": "people", "id": "1", "label": "joe_smith"},
		{"type": "people", "where": "company_id=mega_corp"},
	} {
		res, err := s.fetch(ctx, call(args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "%v", args)
	}
}

func TestConfigValue(t *testing.T) {
	s := newTestServer(t)
	res, err := s.configValue(context.Background(), call(map[string]any{"key": "num_people"}))
	require.NoError(t, err)
	assert.Equal(t, "2", text(t, res))

	res, err = s.configValue(context.Background(), call(map[string]any{"key": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestLabelForID(t *testing.T) {
	s := newTestServer(t)
	res, err := s.labelForID(context.Background(), call(map[string]any{"type": "people", "id": "636095969"}))
	require.NoError(t, err)
	assert.Equal(t, "joe_smith", text(t, res))
}

func TestSelect(t *testing.T) {
	s := newTestServer(t)
	res, err := s.selectPath(context.Background(), call(map[string]any{"expr": "$.people.jane_doe.first_name"}))
	require.NoError(t, err)
	assert.JSONEq(t, `["Jane"]`, text(t, res))

	res, err = s.selectPath(context.Background(), call(map[string]any{"expr": "$[[["}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
