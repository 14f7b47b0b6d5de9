package modelzoo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	models, err := LoadConfig(context.Background(), "../testData/IRv10_models.json")
	require.NoError(t, err)
	assert.Len(t, models, 6)

	yolo, err := Find(models, "yolo-v2-ava-0001")
	require.NoError(t, err)
	xmlPath, binPath := yolo.Paths("/models")
	assert.Equal(t, "/models/yolo-v2-ava-0001/FP32/yolo-v2-ava-0001.xml", xmlPath)
	assert.Equal(t, "/models/yolo-v2-ava-0001/FP32/yolo-v2-ava-0001.bin", binPath)

	_, err = Find(models, "resnet-50")
	assert.True(t, errors.Is(err, ErrModelNotFound))
}

func TestLoadConfigYAML(t *testing.T) {
	models, err := LoadConfig(context.Background(), "../testData/IRv10_models.yaml")
	require.NoError(t, err)
	require.Len(t, models, 2)

	// no weights recorded
	xmlPath, binPath := models[1].Paths("s3://bucket/models/")
	assert.Equal(t, "s3://bucket/models/text-detection-0004/FP32/text-detection-0004.xml", xmlPath)
	assert.Equal(t, "", binPath)
}

func TestParseConfig(t *testing.T) {
	_, err := ParseConfig([]byte(`[{"name": "a"}, {"xml_path": "b.xml"}]`), false)
	assert.ErrorContains(t, err, "entry 0 (a) has no xml_path")
	assert.ErrorContains(t, err, "entry 1 has no name")

	_, err = ParseConfig([]byte(`{`), false)
	assert.Error(t, err)

	models, err := ParseConfig([]byte("- name: a\n  xml_path: a.xml\n"), true)
	require.NoError(t, err)
	assert.Equal(t, []ModelInfo{{Name: "a", XMLPath: "a.xml"}}, models)
}

func TestModelsRoot(t *testing.T) {
	t.Setenv(ModelsPathEnv, "")
	_, err := ModelsRoot()
	assert.Error(t, err)

	t.Setenv(ModelsPathEnv, "/opt/models")
	root, err := ModelsRoot()
	require.NoError(t, err)
	assert.Equal(t, "/opt/models", root)
}
