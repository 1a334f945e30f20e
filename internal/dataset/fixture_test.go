package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentic-research/appseeds/api"
	"github.com/agentic-research/appseeds/internal/datasource"
	"github.com/agentic-research/appseeds/internal/seedfile"
)

// Identifiers derived from CRC-32 of seed type + label.
const (
	joeSmithID  int64 = 636095969
	janeDoeID   int64 = 487117267
	johnWalshID int64 = 10284664
	kenAdamsID  int64 = 420015031
	megaCorpID  int64 = 544129287
	maAndPaID   int64 = 47393448
)

var fixedNow = time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

var seedTree = map[string]string{
	"_config.yml": "environment: test\nnum_people: 1000\n",

	"test_data_set/_config.yml": "num_companies: 15\nnum_people: 100\n",
	"test_data_set/companies.yml": `
mega_corp:
  name: Megacorp
ma_and_pa:
  name: Ma and Pa
super_corp:
  id: 123
  name: Super Corp
`,
	"test_data_set/people.yml": `
joe_smith:
  first_name: Joe
  last_name: Smith
  company_id: mega_corp
  start_date: {{ monthsAgo 2 | date }}
  bogus_attribute: foo
jane_doe:
  first_name: Jane
  last_name: Doe
  company_id: mega_corp
  start_date: {{ monthsAgo 3 | date }}
john_walsh:
  first_name: John
  last_name: Walsh
  company_id: ma_and_pa
sam_jones:
  id: 456
  first_name: Sam
  last_name: Jones
  company_id: super_corp
ken_adams:
  first_name: Ken
  last_name: Adams
  employer_id: ma_and_pa (companies)
`,
	"test_data_set/departments.yml": `
engineering:
  name: Engineering
  people_ids: [joe_smith, jane_doe, john_walsh]
sales:
  name: Sales
  employee_ids: (people) [sam_jones, ken_adams]
`,
	"test_data_set/empty.yml": "",

	"level_1/_config.yml": "num_companies: 5\nnum_people: 50\n",
	"level_1/companies.yml": `
mega_corp:
  name: Megacorp
`,
	"level_1/people.yml": `
ken_adams:
  first_name: Kenneth
  nickname: Kenny
`,
	"level_1/level_2/_config.yml": "num_departments: 3\nnum_people: 25\n",
	"level_1/level_2/departments.yml": `
engineering:
  name: Engineering
  people_ids: [joe_smith, sam_jones, not_a_person]
`,
	"level_1/level_2/level_3/_config.yml": "num_people: 10\n",
	"level_1/level_2/level_3/people.yml": `
joe_smith:
  first_name: Joe
  company_id: mega_corp
sam_jones:
  first_name: Sam
ken_adams:
  first_name: Ken
`,
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func testSource(t *testing.T) datasource.Source {
	t.Helper()
	src, err := datasource.Directory(writeTree(t, seedTree))
	require.NoError(t, err)
	return src
}

func loadDataset(t *testing.T, name string, policy api.IDPolicy) *Dataset {
	t.Helper()
	d := New(testSource(t),
		WithPolicy(policy),
		WithLoader(&seedfile.TemplateLoader{Now: func() time.Time { return fixedNow }}))
	require.NoError(t, d.Load(name))
	return d
}
