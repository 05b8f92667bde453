package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CharmingBlaze/meshkit/gltfconv"
	"github.com/CharmingBlaze/meshkit/internal/logger"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

func defaultOutputFile(input string) string {
	ext := strings.ToLower(filepath.Ext(input))
	base := input[0 : len(input)-len(ext)]
	if ext == ".glb" {
		return base + ".gltf"
	}
	return base + ".glb"
}

func run(input, output string, preset *gltfconv.Preset, stats bool) error {
	imp := gltfconv.NewImporter(logger.Log)
	imp.Options = preset.Import
	result, err := imp.ImportFile(input)
	if err != nil {
		return err
	}

	if stats {
		printStats(result)
	}

	exp := gltfconv.NewExporter(logger.Log)
	exp.Options = preset.Export
	doc, err := exp.Export(result)
	if err != nil {
		return err
	}

	if strings.ToLower(filepath.Ext(output)) == ".glb" {
		return gltf.SaveBinary(doc, output)
	}
	return gltf.Save(doc, output)
}

func printStats(r *gltfconv.Result) {
	fmt.Println("vertices:", r.Mesh.VertexCount())
	fmt.Println("faces:", r.Mesh.FaceCount())
	fmt.Println("materials:", len(r.Mesh.Materials()))
	if r.Skeleton != nil {
		fmt.Println("bones:", r.Skeleton.BoneCount())
	}
	if r.SkinWeights != nil {
		fmt.Println("skinned vertices:", r.SkinWeights.VertexCount())
	}
	for _, clip := range r.Animations {
		fmt.Printf("animation %q: %d tracks, %.2fs\n", clip.Name, clip.TrackCount(), clip.Duration())
	}
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.gltf [output.glb]\n", os.Args[0])
		flag.PrintDefaults()
	}
	presetFile := flag.String("preset", "", "preset file (YAML)")
	scale := flag.Float64("scale", 0, "scale factor (0: from preset)")
	unlit := flag.String("unlit", "", "force unlit materials (true/false)")
	stats := flag.Bool("stats", false, "print scene statistics")
	logLevel := flag.String("loglevel", "info", "log level (debug/info/warn/error)")
	logFile := flag.String("logfile", "", "also log to this file")
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger.Init(*logLevel, *logFile)
	defer logger.Sync()

	preset := gltfconv.DefaultPreset()
	if *presetFile != "" {
		p, err := gltfconv.LoadPreset(*presetFile)
		if err != nil {
			logger.Log.Fatal("failed to load preset", zap.Error(err))
		}
		preset = p
	}
	if *scale != 0 {
		preset.Import.Scale = float32(*scale)
	}
	if *unlit != "" {
		preset.Export.ForceUnlit = *unlit == "true"
	}

	input := flag.Arg(0)
	output := flag.Arg(1)
	if output == "" {
		output = defaultOutputFile(input)
	}

	if err := run(input, output, preset, *stats); err != nil {
		logger.Log.Fatal("conversion failed", zap.String("input", input), zap.Error(err))
	}
	logger.Log.Info("saved", zap.String("output", output))
}
