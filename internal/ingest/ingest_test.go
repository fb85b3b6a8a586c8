package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/partner-match/internal/apperr"
	"github.com/sells-group/partner-match/internal/config"
	"github.com/sells-group/partner-match/internal/fetcher"
	"github.com/sells-group/partner-match/internal/model"
)

func testSheet() *fetcher.Sheet {
	return &fetcher.Sheet{
		Name:   "users",
		Header: []string{"First", "Last", "Skill", "Age", "Unused"},
		Rows: [][]model.Value{
			{model.String("Ada"), model.String("Lovelace"), model.String("math"), model.Number(36), model.String("x")},
			{model.String("Alan"), model.String("Turing"), model.Null, model.Number(41), model.Null},
		},
	}
}

func TestProject(t *testing.T) {
	recs, err := Project(testSheet(), []string{"Skill", "Age"}, []string{"First", "Last"})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Ada_Lovelace", recs[0].ID)
	assert.Equal(t, model.String("math"), recs[0].Get("Skill"))
	assert.Equal(t, "36", recs[0].Get("Age").Text())
	assert.False(t, recs[0].Has("Unused"))
	assert.False(t, recs[0].Has("First"))

	assert.Equal(t, "Alan_Turing", recs[1].ID)
	assert.True(t, recs[1].Has("Skill"))
	assert.True(t, recs[1].Get("Skill").IsNull())
}

func TestProject_NumericID(t *testing.T) {
	recs, err := Project(testSheet(), []string{"Skill"}, []string{"Age"})
	require.NoError(t, err)
	assert.Equal(t, "36", recs[0].ID)
	assert.Equal(t, "41", recs[1].ID)
}

func TestProject_MissingColumn(t *testing.T) {
	_, err := Project(testSheet(), []string{"Skill", "Hobby", "Pet"}, []string{"First"})
	require.Error(t, err)
	assert.True(t, apperr.IsData(err))
	assert.Contains(t, err.Error(), "Hobby, Pet")
}

func TestProject_MissingIDColumn(t *testing.T) {
	_, err := Project(testSheet(), []string{"Skill"}, []string{"Email"})
	require.Error(t, err)
	assert.True(t, apperr.IsData(err))
}

func TestProject_EmptyID(t *testing.T) {
	_, err := Project(testSheet(), []string{"Skill"}, []string{"First", "Unused"})
	require.Error(t, err)
	assert.True(t, apperr.IsData(err))
	assert.Contains(t, err.Error(), "row 3")
}

func TestProject_NoRows(t *testing.T) {
	sheet := &fetcher.Sheet{Name: "services", Header: []string{"Name"}}
	recs, err := Project(sheet, []string{"Name"}, []string{"Name"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLoad_CSVDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.csv"), []byte("Name,Wants\nAlice,guitar lessons\nBob,car repair\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "services.csv"), []byte("Name,Offers\nMel,piano lessons\n"), 0o644))

	tables, err := Load(context.Background(), dir, config.InputConfig{
		UserSheet:        "users",
		ServiceSheet:     "services",
		UserColumns:      []string{"Wants"},
		UserIDColumns:    []string{"Name"},
		ServiceColumns:   []string{"Offers"},
		ServiceIDColumns: []string{"Name"},
	})
	require.NoError(t, err)

	require.Len(t, tables.Consumers, 2)
	assert.Equal(t, "Bob", tables.Consumers[1].ID)
	assert.Equal(t, "car repair", tables.Consumers[1].Get("Wants").Text())
	require.Len(t, tables.Providers, 1)
	assert.Equal(t, "piano lessons", tables.Providers[0].Get("Offers").Text())
}

func TestLoad_MissingSheetIsDataError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.csv"), []byte("Name\nAlice\n"), 0o644))

	_, err := Load(context.Background(), dir, config.InputConfig{
		UserSheet:        "users",
		ServiceSheet:     "services",
		UserColumns:      []string{"Name"},
		UserIDColumns:    []string{"Name"},
		ServiceColumns:   []string{"Name"},
		ServiceIDColumns: []string{"Name"},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsData(err))
	assert.Contains(t, err.Error(), "services")
}
