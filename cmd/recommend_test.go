package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/config"
)

const testThesaurus = `synsets:
  - [car, automobile, auto]
  - [repair, fix, mend]
  - [cook, bake, prepare]
`

// writeFixture lays out a CSV workbook directory, a thesaurus and a config
// file under a temp dir and returns the config path and output path.
func writeFixture(t *testing.T, output string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "data", "users.csv"),
		"Name,Wants\nAlice,guitar lessons\nBob,car repair\n")
	writeFile(t, filepath.Join(dir, "data", "services.csv"),
		"Name,Offers\nMel,piano lessons\nGus,automobile fix\nZed,dog walking\n")
	writeFile(t, filepath.Join(dir, "thesaurus.yaml"), testThesaurus)

	out := filepath.Join(dir, output)
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, fmt.Sprintf(`input:
  file_name: %s
  user_columns: [Wants]
  user_id_columns: [Name]
  service_columns: [Offers]
  service_id_columns: [Name]
output:
  file: %s
matching:
  matching_columns:
    - user: Wants
      service: Offers
ranking:
  max_recommendation: 2
  threshold_score: 0.1
dispatch:
  workers: 2
lexicon:
  driver: yaml
  path: %s
log:
  level: error
`, filepath.Join(dir, "data"), out, filepath.Join(dir, "thesaurus.yaml")))

	return cfgPath, out
}

func TestRecommendCommand_EndToEnd(t *testing.T) {
	cfgPath, out := writeFixture(t, "recs.json")

	stdout, err := execute(t, "recommend", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2/2 users recommended from 3 services, 0 failed")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	rows := gjson.ParseBytes(data).Array()
	require.Len(t, rows, 2)

	assert.Equal(t, "Alice", rows[0].Get("user").String())
	assert.Equal(t, "Mel", rows[0].Get("partner1").String())
	assert.InDelta(t, 0.163, rows[0].Get("partnerScore1").Float(), 1e-9)
	assert.False(t, rows[0].Get("partner2").Exists())

	assert.Equal(t, "Bob", rows[1].Get("user").String())
	assert.Equal(t, "Gus", rows[1].Get("partner1").String())
	assert.InDelta(t, 0.187, rows[1].Get("partnerScore1").Float(), 1e-9)
}

func TestRecommend_FormatOverride(t *testing.T) {
	cfgPath, _ := writeFixture(t, "recs.json")
	c, err := config.Load(cfgPath)
	require.NoError(t, err)

	c.Output.File = filepath.Join(t.TempDir(), "recs.out")
	c.Output.Format = "csv"
	summary, err := recommend(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)

	data, err := os.ReadFile(c.Output.File)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "user,partner1,partnerScore1", lines[0])
	assert.Equal(t, "Alice,Mel,0.163", lines[1])
}

func TestRecommend_MissingColumnIsDataError(t *testing.T) {
	cfgPath, _ := writeFixture(t, "recs.json")
	c, err := config.Load(cfgPath)
	require.NoError(t, err)

	c.Input.UserColumns = []string{"Wants", "Budget"}
	_, err = recommend(context.Background(), c)
	require.Error(t, err)
	assert.True(t, apperr.IsData(err))
}

func TestRecommend_UnknownOutputFormat(t *testing.T) {
	cfgPath, _ := writeFixture(t, "recs.parquet")
	c, err := config.Load(cfgPath)
	require.NoError(t, err)

	_, err = recommend(context.Background(), c)
	require.Error(t, err)
	assert.True(t, apperr.IsConfiguration(err))
}

func TestRecommend_Cancelled(t *testing.T) {
	cfgPath, _ := writeFixture(t, "recs.json")
	c, err := config.Load(cfgPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = recommend(ctx, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecommendCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, "log:\n  level: error\n")

	_, err := execute(t, "recommend", "--config", cfgPath)
	require.Error(t, err)
	assert.True(t, apperr.IsConfiguration(err))
}
