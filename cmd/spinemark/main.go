package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"spinemark/pkg/config"
	"spinemark/pkg/inference"
	"spinemark/pkg/volume"
)

func main() {
	// Parse command line arguments
	filePath := flag.String("file-path", "", "Path to the NIfTI file (.nii/.nii.gz) or DICOM series directory")
	heatmapPath := flag.String("heatmaps", "", "Path to a precomputed heatmap stack file")
	modelURL := flag.String("model-url", "", "URL of a model-serving endpoint")
	zIndex := flag.Int("z-index", -1, "Axial slice index (default: middle slice)")
	configPath := flag.String("config", "spinemark.yaml", "Path to the YAML configuration file")
	output := flag.String("output", "", "Output JSON file path (default: stdout)")
	flag.Parse()

	// Validate inputs
	if *filePath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if (*heatmapPath == "") == (*modelURL == "") {
		log.Fatal("Exactly one of -heatmaps or -model-url must be given")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts, err := inference.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid model configuration: %v", err)
	}

	var predictor inference.Predictor
	if *heatmapPath != "" {
		predictor = inference.NewFilePredictor(*heatmapPath)
	} else {
		predictor = inference.NewHTTPPredictor(*modelURL)
	}

	vol, err := volume.Load(*filePath)
	if err != nil {
		log.Fatalf("Failed to load volume: %v", err)
	}

	var z *int
	if *zIndex >= 0 {
		z = zIndex
	}

	engine := inference.NewEngine(predictor, opts)
	result, err := engine.Run(vol, filepath.Base(*filePath), z)
	if err != nil {
		log.Fatalf("Inference failed: %v", err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, encoded, 0644); err != nil {
			log.Fatalf("Failed to write result: %v", err)
		}
		fmt.Printf("Result saved to: %s\n", *output)
		return
	}
	fmt.Println(string(encoded))
}
