package codegen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/appseeds/internal/dataset"
	"github.com/agentic-research/appseeds/internal/datasource"
)

func loadDemo(t *testing.T) *dataset.Dataset {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"demo/companies.yml": "mega_corp:\n  name: Megacorp\nma_and_pa:\n  name: Ma and Pa\n",
		"demo/people.yml":    "joe_smith:\n  first_name: Joe\nsam_jones:\n  id: 456\n",
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
	return d
}

// constants parses src and returns every const name with its literal value.
func constants(t *testing.T, src []byte) (string, map[string]string) {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "seeds.go", src, parser.ParseComments)
	require.NoError(t, err)
	out := map[string]string{}
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		for _, spec := range gd.Specs {
			vs := spec.(*ast.ValueSpec)
			lit := vs.Values[0].(*ast.BasicLit)
			v := lit.Value
			if lit.Kind == token.STRING {
				v, err = strconv.Unquote(v)
				require.NoError(t, err)
			}
			out[vs.Names[0].Name] = v
		}
	}
	return f.Name.Name, out
}

func TestGenerate(t *testing.T) {
	d := loadDemo(t)
	src, err := Generate(d, "seeds")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "// Code generated by appseeds gen; DO NOT EDIT.\n"))

	pkg, got := constants(t, src)
	assert.Equal(t, "seeds", pkg)

	want := map[string]string{
		"CompanyMegaCorpID":   "544129287",
		"CompanyMegaCorpUUID": "00000000-0000-0000-0000-000544129287",
		"CompanyMaAndPaID":    "47393448",
		"CompanyMaAndPaUUID":  "00000000-0000-0000-0000-000047393448",
		"PersonJoeSmithID":    "636095969",
		"PersonJoeSmithUUID":  "00000000-0000-0000-0000-000636095969",
		"PersonSamJonesID":    "456",
		"PersonSamJonesUUID":  "00000000-0000-0000-0000-000000000456",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("generated constants mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	d := loadDemo(t)
	a, err := Generate(d, "seeds")
	require.NoError(t, err)
	b, err := Generate(d, "seeds")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(string(a), string(b)))
}

func TestGenerate_InvalidPackage(t *testing.T) {
	_, err := Generate(loadDemo(t), "not-a-package")
	assert.Error(t, err)
}

func TestIdentifier(t *testing.T) {
	cases := map[string]string{
		"mega_corp":  "MegaCorp",
		"ma_and_pa":  "MaAndPa",
		"2nd-floor":  "X2ndFloor",
		"already":    "Already",
		"__":         "X",
		"joe smith!": "JoeSmith",
	}
	for in, want := range cases {
		assert.Equal(t, want, Identifier(in), in)
	}
}
