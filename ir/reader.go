package ir

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"

	"github.com/knights-analytics/modelanalyzer/graph"
	util "github.com/knights-analytics/modelanalyzer/utils"
)

var ErrWeightsNotFound = errors.New("weights file not found")

// ReadNetwork loads the IR descriptor at xmlPath. xmlPath may be a local path or an s3:// URL.
//
// The weights are paired with the descriptor but never decoded. If binPath is given the
// weights file must exist. If it is empty, the .bin file next to the descriptor is looked
// up and a missing file is only logged.
func ReadNetwork(ctx context.Context, xmlPath string, binPath string) (*graph.Network, error) {
	if err := checkWeights(ctx, xmlPath, binPath); err != nil {
		return nil, err
	}

	data, err := util.ReadFileBytes(ctx, xmlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", xmlPath, err)
	}
	network, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse descriptor %s: %w", xmlPath, err)
	}

	log.Debug().Str("descriptor", xmlPath).Str("format", string(network.Source)).Int64("version", network.Version).
		Int("layers", len(network.Layers)).Msg("network loaded")
	return network, nil
}

func checkWeights(ctx context.Context, xmlPath string, binPath string) error {
	explicit := binPath != ""
	if !explicit {
		binPath = util.ReplaceExt(xmlPath, ".bin")
	}

	exists, err := util.FileExists(ctx, binPath)
	if err != nil {
		return fmt.Errorf("failed to check weights %s: %w", binPath, err)
	}
	if !exists {
		if explicit {
			return fmt.Errorf("%w: %s", ErrWeightsNotFound, binPath)
		}
		log.Warn().Str("descriptor", xmlPath).Str("weights", binPath).Msg("weights file not found next to descriptor")
		return nil
	}

	size, err := util.FileSize(ctx, binPath)
	if err != nil {
		return fmt.Errorf("failed to stat weights %s: %w", binPath, err)
	}
	log.Debug().Str("weights", binPath).Int64("bytes", size).Msg("weights file found")
	return nil
}
