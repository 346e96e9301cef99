package farm_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/gltr-farm/deployer/internal/farm"
	fsjson "github.com/gltr-farm/deployer/internal/infra/filesystem/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecorderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	recorder := farm.NewFileRecorder(dir, "base", fsjson.NewWriter())
	assert.Equal(t, filepath.Join(dir, "base", "deployment.json"), recorder.Path())

	progress := farm.Progress{
		StepsCompleted: 3,
		StepsTotal:     len(farm.Steps),
		LastStep:       farm.StepDeployDiamond,
		Relayer:        relayer.Hex(),
		Addresses:      map[string]string{"diamond": "0x0000000000000000000000000000000000001007"},
	}
	require.NoError(t, recorder.Record(progress))

	progress.StepsCompleted = 4
	progress.LastStep = farm.StepInitializeFarm
	require.NoError(t, recorder.Record(progress))

	loaded, err := farm.LoadProgress(fsjson.NewReader(), dir, "base")
	require.NoError(t, err)
	assert.Equal(t, progress, loaded)
}

func TestLoadProgressMissingFile(t *testing.T) {
	_, err := farm.LoadProgress(fsjson.NewReader(), t.TempDir(), "base")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestPrepareWithoutRecord(t *testing.T) {
	recorder := farm.NewFileRecorder(t.TempDir(), "base", fsjson.NewWriter())

	archived, err := recorder.Prepare(fsjson.NewReader(), false, time.Now())
	require.NoError(t, err)
	assert.Empty(t, archived)
}

func TestPrepareRefusesToReplaceUnfinishedRun(t *testing.T) {
	dir := t.TempDir()
	recorder := farm.NewFileRecorder(dir, "base", fsjson.NewWriter())
	aborted := farm.Progress{
		StepsCompleted: 1,
		StepsTotal:     len(farm.Steps),
		LastStep:       farm.StepResolveSigner,
		FailedStep:     farm.StepDeployFacets,
		Addresses:      map[string]string{"farmFacet": "0x0000000000000000000000000000000000001003"},
	}
	require.NoError(t, recorder.Record(aborted))

	_, err := recorder.Prepare(fsjson.NewReader(), false, time.Now())
	require.ErrorIs(t, err, farm.ErrIncompleteDeployment)
	assert.ErrorContains(t, err, "deploy-facets")

	loaded, err := farm.LoadProgress(fsjson.NewReader(), dir, "base")
	require.NoError(t, err)
	assert.Equal(t, aborted, loaded)
}

func TestPrepareArchivesUnfinishedRunWhenForced(t *testing.T) {
	dir := t.TempDir()
	recorder := farm.NewFileRecorder(dir, "base", fsjson.NewWriter())
	aborted := farm.Progress{StepsCompleted: 1, StepsTotal: len(farm.Steps), FailedStep: farm.StepDeployFacets}
	require.NoError(t, recorder.Record(aborted))

	now := time.Date(2025, 9, 1, 12, 30, 0, 0, time.UTC)
	archived, err := recorder.Prepare(fsjson.NewReader(), true, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "base", "deployment-20250901T123000Z.json"), archived)

	var kept farm.Progress
	require.NoError(t, fsjson.NewReader().ReadJSON(archived, &kept))
	assert.Equal(t, aborted, kept)

	_, err = farm.LoadProgress(fsjson.NewReader(), dir, "base")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestPrepareArchivesFinishedRun(t *testing.T) {
	dir := t.TempDir()
	recorder := farm.NewFileRecorder(dir, "base", fsjson.NewWriter())
	require.NoError(t, recorder.Record(farm.Progress{StepsCompleted: len(farm.Steps), StepsTotal: len(farm.Steps)}))

	archived, err := recorder.Prepare(fsjson.NewReader(), false, time.Now())
	require.NoError(t, err)
	assert.FileExists(t, archived)
	assert.NoFileExists(t, recorder.Path())
}
