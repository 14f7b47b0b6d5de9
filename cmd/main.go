package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-isatty"
	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"

	"github.com/knights-analytics/modelanalyzer"
	"github.com/knights-analytics/modelanalyzer/modelzoo"
	"github.com/knights-analytics/modelanalyzer/utils/checks"
)

var modelPath string
var weightsPath string
var modelName string
var configPath string
var modelsDir string
var strictWeights bool
var verbose bool

var modelFlags = []cli.Flag{
	&cli.StringFlag{
		Name:        "model",
		Usage:       "Path to the .xml or .onnx descriptor",
		Aliases:     []string{"m"},
		Destination: &modelPath,
	},
	&cli.StringFlag{
		Name:        "weights",
		Usage:       "Path to the .bin weights. Defaults to the descriptor path with a .bin extension",
		Aliases:     []string{"w"},
		Destination: &weightsPath,
	},
	&cli.StringFlag{
		Name:        "name",
		Usage:       "Name of a model in the manifest given with --config",
		Aliases:     []string{"n"},
		Destination: &modelName,
	},
	&cli.StringFlag{
		Name:        "config",
		Usage:       "Path to a .json or .yaml model manifest",
		Aliases:     []string{"c"},
		Destination: &configPath,
	},
	&cli.StringFlag{
		Name:        "modelsDir",
		Usage:       "Root of the manifest paths. Falls back to $MODELS_PATH if not specified",
		Aliases:     []string{"d"},
		Destination: &modelsDir,
	},
	&cli.BoolFlag{
		Name:        "strictWeights",
		Usage:       "Fail if the weights file is missing",
		Destination: &strictWeights,
	},
}

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Print a JSON report of the network metadata",
	Description: `Inspect loads a descriptor, either directly with --model or by name from a manifest with --name and --config,
				and prints every metadata query as JSON. The output is indented when written to a terminal.`,
	Flags: modelFlags,
	Action: func(ctx *cli.Context) error {
		nmd, err := loadModel(ctx.Context)
		if err != nil {
			return err
		}
		return writeJSON(ctx.App.Writer, nmd.Report())
	},
}

var hasLayerCommand = &cli.Command{
	Name:  "has-layer",
	Usage: "Print whether the network has a layer of any of the given types",
	Flags: append([]cli.Flag{
		&cli.StringSliceFlag{
			Name:     "type",
			Usage:    "Layer type to look for, can be repeated",
			Aliases:  []string{"t"},
			Required: true,
		},
	}, modelFlags...),
	Action: func(ctx *cli.Context) error {
		nmd, err := loadModel(ctx.Context)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(ctx.App.Writer, nmd.HasLayerOfType(ctx.StringSlice("type")...))
		return err
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "model-analyzer",
		Usage: "Query metadata of OpenVINO IR and ONNX network descriptors",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "Enable debug logging",
				Aliases:     []string{"v"},
				Destination: &verbose,
			},
		},
		Before: func(ctx *cli.Context) error {
			log.DefaultLogger.Level = log.InfoLevel
			if verbose {
				log.DefaultLogger.Level = log.DebugLevel
			}
			return nil
		},
		Commands: []*cli.Command{inspectCommand, hasLayerCommand},
	}
}

func main() {
	checks.CheckWithMessage(newApp().Run(os.Args), "model-analyzer failed")
}

// resolveDescriptor returns the descriptor and weights paths from either --model or
// --name and --config.
func resolveDescriptor(ctx context.Context) (string, string, error) {
	if modelPath != "" {
		return modelPath, weightsPath, nil
	}
	if modelName == "" || configPath == "" {
		return "", "", errors.New("either --model or both --name and --config are required")
	}

	models, err := modelzoo.LoadConfig(ctx, configPath)
	if err != nil {
		return "", "", err
	}
	info, err := modelzoo.Find(models, modelName)
	if err != nil {
		return "", "", err
	}
	root := modelsDir
	if root == "" {
		if root, err = modelzoo.ModelsRoot(); err != nil {
			return "", "", err
		}
	}
	xmlPath, binPath := info.Paths(root)
	if weightsPath != "" {
		binPath = weightsPath
	}
	return xmlPath, binPath, nil
}

func loadModel(ctx context.Context) (*modelanalyzer.NetworkMetaData, error) {
	descriptor, weights, err := resolveDescriptor(ctx)
	if err != nil {
		return nil, err
	}
	var opts []modelanalyzer.LoadOption
	if weights != "" {
		opts = append(opts, modelanalyzer.WithWeightsPath(weights))
	}
	if strictWeights {
		opts = append(opts, modelanalyzer.WithStrictWeights())
	}
	return modelanalyzer.Load(ctx, descriptor, opts...)
}

func writeJSON(w io.Writer, v any) error {
	var out []byte
	var err error
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		out, err = jsoniter.MarshalIndent(v, "", "  ")
	} else {
		out, err = jsoniter.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}
