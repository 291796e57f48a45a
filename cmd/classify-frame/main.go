package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"time"

	"github.com/dkarpov/runcatch/internal/capture"
	"github.com/dkarpov/runcatch/internal/vision"
)

// Classifies a single still image with the local detector, and with
// the remote one when OPENAI_API_KEY is set. Handy for calibrating the
// color signature against real end-screen captures.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: classify-frame <image file>")
		os.Exit(1)
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal("Failed to open image:", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		log.Fatal("Failed to decode image:", err)
	}

	frame := capture.Sample(img)
	fmt.Printf("Input: %s (%s, %dx%d), sampled to %dx%d\n",
		os.Args[1], format, img.Bounds().Dx(), img.Bounds().Dy(), frame.Width, frame.Height)

	local := vision.NewLocalClassifier()
	result, err := local.ClassifyFrame(context.Background(), frame)
	if err != nil {
		log.Fatal("Local classification failed:", err)
	}
	printResult("local", result)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Println("remote: skipped (OPENAI_API_KEY not set)")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	remote := vision.NewOpenAIClassifier(apiKey)
	result, err = remote.ClassifyFrame(ctx, frame)
	if err != nil {
		log.Fatal("Remote classification failed:", err)
	}
	printResult("remote", result)
}

func printResult(name string, result *vision.Classification) {
	score := "unknown"
	if result.Score != nil {
		score = fmt.Sprintf("%d", *result.Score)
	}
	fmt.Printf("%s: gameOver=%v score=%s confidence=%.2f\n", name, result.IsGameOver, score, result.Confidence)
}
