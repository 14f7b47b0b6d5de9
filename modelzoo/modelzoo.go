// Package modelzoo loads manifests describing where model artifacts live.
//
// A manifest is a list of models, each with a name and the paths of its descriptor and
// weights relative to a root directory. The root is taken from the MODELS_PATH
// environment variable:
//
//	[
//	  {"name": "yolo-v2-ava-0001", "xml_path": "yolo/FP32/yolo-v2-ava-0001.xml", "bin_path": "yolo/FP32/yolo-v2-ava-0001.bin"}
//	]
package modelzoo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	util "github.com/knights-analytics/modelanalyzer/utils"
)

// ModelsPathEnv names the environment variable holding the model artifacts root.
const ModelsPathEnv = "MODELS_PATH"

var ErrModelNotFound = errors.New("model not found in manifest")

type ModelInfo struct {
	Name    string `json:"name" yaml:"name"`
	XMLPath string `json:"xml_path" yaml:"xml_path"`
	BinPath string `json:"bin_path" yaml:"bin_path"`
}

// Paths returns the descriptor and weights paths under root. The weights path is empty
// if the manifest does not record one.
func (m ModelInfo) Paths(root string) (string, string) {
	xmlPath := util.PathJoinSafe(root, m.XMLPath)
	if m.BinPath == "" {
		return xmlPath, ""
	}
	return xmlPath, util.PathJoinSafe(root, m.BinPath)
}

// LoadConfig reads a manifest. Files ending in .yaml or .yml are parsed as YAML,
// anything else as JSON.
func LoadConfig(ctx context.Context, path string) ([]ModelInfo, error) {
	data, err := util.ReadFileBytes(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	models, err := ParseConfig(data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return models, nil
}

// ParseConfig decodes a manifest and checks that every entry has a name and a descriptor.
func ParseConfig(data []byte, isYAML bool) ([]ModelInfo, error) {
	var models []ModelInfo
	var err error
	if isYAML {
		err = yaml.Unmarshal(data, &models)
	} else {
		err = jsoniter.Unmarshal(data, &models)
	}
	if err != nil {
		return nil, err
	}

	var errs []error
	for i, model := range models {
		if model.Name == "" {
			errs = append(errs, fmt.Errorf("entry %d has no name", i))
		}
		if model.XMLPath == "" {
			errs = append(errs, fmt.Errorf("entry %d (%s) has no xml_path", i, model.Name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return models, nil
}

// Find returns the first model with the given name.
func Find(models []ModelInfo, name string) (ModelInfo, error) {
	for _, model := range models {
		if model.Name == name {
			return model, nil
		}
	}
	return ModelInfo{}, fmt.Errorf("%w: %s", ErrModelNotFound, name)
}

// ModelsRoot returns the artifacts root from MODELS_PATH.
func ModelsRoot() (string, error) {
	root, ok := os.LookupEnv(ModelsPathEnv)
	if !ok || root == "" {
		return "", fmt.Errorf("environment variable %s is not set", ModelsPathEnv)
	}
	return root, nil
}
