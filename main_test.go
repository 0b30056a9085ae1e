package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartfarm/ml"
	"smartfarm/recommend"
)

// writeModels exports a crop tree that always says Rice and a fertilizer
// forest that always says NPK into dir.
func writeModels(t *testing.T, dir string) {
	t.Helper()
	crop, err := ml.EncodeArtifact(ml.Artifact{
		Format:    ml.FormatDecisionTree,
		NFeatures: 7,
		Nodes: []ml.TreeNode{
			{FeatureIdx: 0, Threshold: 60, LeftChild: 1, RightChild: 2},
			{IsLeaf: true, ClassLabel: 0},
			{IsLeaf: true, ClassLabel: 11},
		},
	})
	require.NoError(t, err)
	fertilizer, err := ml.EncodeArtifact(ml.Artifact{
		Format:    ml.FormatRandomForest,
		NFeatures: 8,
		Trees:     [][]ml.TreeNode{{{IsLeaf: true, ClassLabel: 6}}, {{IsLeaf: true, ClassLabel: 6}}},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "decision_tree_model.json"), crop, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fertilizer_model.json"), fertilizer, 0o644))
}

func writeTestConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := "log:\n  level: error\nmodels:\n  watch: false\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCropCommand(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir)
	cfg := writeTestConfig(t, dir, "")

	out, err := execute(t, "crop", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "✅ Recommended Crop: Rice\n", out)

	out, err = execute(t, "crop", "--config", cfg, "--n", "90")
	require.NoError(t, err)
	assert.Equal(t, "✅ Recommended Crop: Banana\n", out)
}

func TestCropCommandRejectsOutOfRange(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir)
	cfg := writeTestConfig(t, dir, "")

	_, err := execute(t, "crop", "--config", cfg, "--temp", "80")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crop_temp")
}

func TestPredictCommandsRejectNonFiniteFlags(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir)
	cfg := writeTestConfig(t, dir, "")

	_, err := execute(t, "crop", "--config", cfg, "--ph", "NaN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crop_ph: must be a number")

	_, err = execute(t, "fertilizer", "--config", cfg, "--n", "+Inf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fert_n: must be a number")
}

func TestFertilizerCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir)
	cfg := writeTestConfig(t, dir, "")

	out, err := execute(t, "fertilizer", "--config", cfg, "--soil", "3", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"label": "NPK (Nitrogen, Phosphorus, Potassium)"`)
	assert.Contains(t, out, `"index": 6`)
}

func TestMissingArtifactAbortsStartup(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "fertilizer_model.json")))
	cfg := writeTestConfig(t, dir, "")

	for _, args := range [][]string{{"serve"}, {"crop"}, {"interactive"}} {
		_, err := execute(t, append(args, "--config", cfg)...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "Error loading models: ")
		assert.ErrorIs(t, err, ml.ErrArtifactNotFound)
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := execute(t, "crop", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestArtifactsRegistryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeModels(t, dir)
	registry := filepath.Join(dir, "models.db")
	cfg := writeTestConfig(t, dir, "  registry: models.db\n")

	out, err := execute(t, "artifacts", "import", "--config", cfg, filepath.Join(dir, "decision_tree_model.json"))
	require.NoError(t, err)
	assert.Equal(t, "imported decision_tree_model.json (decision_tree, 7 features)\n", out)

	_, err = execute(t, "artifacts", "import", "--config", cfg, "--registry", registry, filepath.Join(dir, "fertilizer_model.json"))
	require.NoError(t, err)

	out, err = execute(t, "artifacts", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "decision_tree_model.json")
	assert.Contains(t, out, "random_forest")

	// Loose files are no longer needed once the registry holds both models.
	require.NoError(t, os.Remove(filepath.Join(dir, "decision_tree_model.json")))
	out, err = execute(t, "crop", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "✅ Recommended Crop: Rice\n", out)
}

func TestRunInteractive(t *testing.T) {
	models, err := ml.NewModels(constPredictor(0), constPredictor(6))
	require.NoError(t, err)
	rec := recommend.New(models)

	selects := []string{"Crop Prediction", "Fertilizer Recommendation", "Quit"}
	var prompts []string
	ask := func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
		out := response.(*string)
		switch p := p.(type) {
		case *survey.Select:
			*out, selects = selects[0], selects[1:]
		case *survey.Input:
			prompts = append(prompts, p.Message)
			*out = p.Default
		default:
			return fmt.Errorf("unexpected prompt %T", p)
		}
		return nil
	}

	var buf bytes.Buffer
	require.NoError(t, runInteractive(&buf, rec, ask))
	assert.Equal(t, "✅ Recommended Crop: Rice\n✅ Recommended Fertilizer: NPK (Nitrogen, Phosphorus, Potassium)\n", buf.String())
	assert.Len(t, prompts, len(recommend.CropFields)+len(recommend.FertilizerFields))
	assert.Equal(t, "Soil pH:", prompts[5])
}

type constPredictor int

func (c constPredictor) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i := range out {
		out[i] = int(c)
	}
	return out, nil
}
