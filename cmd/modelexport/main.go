// Command modelexport prepares deployment artifacts for a detection model:
// it verifies the model loads, copies it into the output directory and writes
// the model_info.json sidecar that mobile clients read. The tensor-graph
// conversion itself (ONNX to TFLite/TF.js) is done by external toolchains;
// this tool packages their output. It is never invoked by the server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"roadserver/internal/models"
	"roadserver/internal/services/ai"
)

type modelInfo struct {
	InputShape  []int    `json:"inputShape"`
	InputDtype  string   `json:"inputDtype"`
	OutputShape []int    `json:"outputShape"`
	OutputDtype string   `json:"outputDtype"`
	ClassNames  []string `json:"classNames"`
	InputSize   int      `json:"inputSize"`
	NumClasses  int      `json:"numClasses"`
}

func main() {
	modelPath := flag.String("model", "", "path to the ONNX model file")
	outDir := flag.String("out", "converted_models", "output directory for deployment artifacts")
	flag.Parse()

	if *modelPath == "" {
		log.Fatal("missing required -model flag")
	}

	net := gocv.ReadNetFromONNX(*modelPath)
	if net.Empty() {
		log.Fatalf("Failed to load model from %s", *modelPath)
	}
	net.Close()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	dst := filepath.Join(*outDir, filepath.Base(*modelPath))
	if err := copyFile(*modelPath, dst); err != nil {
		log.Fatalf("Failed to copy model: %v", err)
	}

	info := modelInfo{
		InputShape:  []int{1, 3, ai.InputSize, ai.InputSize},
		InputDtype:  "float32",
		OutputShape: []int{-1, 6}, // N detection rows of [x1 y1 x2 y2 conf cls]
		OutputDtype: "float32",
		ClassNames:  models.DamageClasses,
		InputSize:   ai.InputSize,
		NumClasses:  len(models.DamageClasses),
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode model info: %v", err)
	}
	infoPath := filepath.Join(*outDir, "model_info.json")
	if err := os.WriteFile(infoPath, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", infoPath, err)
	}

	fmt.Printf("Exported %s -> %s\n", *modelPath, *outDir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
