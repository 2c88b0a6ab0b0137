package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"uilocator/internal/config"
	"uilocator/internal/logging"
	"uilocator/internal/utils"
	"uilocator/pkg/asset"
	"uilocator/pkg/localize"
	"uilocator/pkg/notify"
	"uilocator/pkg/render"
	"uilocator/pkg/session"
	"uilocator/pkg/types"
)

func main() {
	var in, taskText, cfgPath, backendURL, out, format string
	var quality int
	var lossless bool
	var showInfo bool

	flag.StringVar(&in, "in", "", "input image path (jpg/png/webp)")
	flag.StringVar(&taskText, "task", "", "target instruction, e.g. 'click the search button'")
	flag.StringVar(&cfgPath, "config", "", "optional config file path")
	flag.StringVar(&backendURL, "backend", "", "backend base URL (overrides BACKEND_API_URL)")
	flag.StringVar(&out, "out", "", "annotated output path (default: <input>_annotated.<format> in the output dir)")
	flag.StringVar(&format, "format", "", "output format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless output")
	flag.BoolVar(&showInfo, "model-info", false, "print backend model information and exit")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if quality != 0 {
		cfg.Output.Quality = quality
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client := localize.NewClient(cfg.BackendURL, logger)
	ctx := context.Background()

	if showInfo {
		info, err := client.ModelInfo(ctx)
		if err != nil {
			logger.Fatal("model info request failed", zap.Error(err))
		}
		fmt.Printf("Model:        %s\n", info.ModelName)
		fmt.Printf("Type:         %s\n", info.ModelType)
		fmt.Printf("Status:       %s\n", info.Status)
		fmt.Printf("Capabilities: %s\n", strings.Join(info.Capabilities, ", "))
		return
	}

	if in == "" || strings.TrimSpace(taskText) == "" {
		log.Fatalf("usage: %s -in screenshot.png -task \"click the search button\" [-backend url] [-out path] [-format png|jpg|webp]",
			filepath.Base(os.Args[0]))
	}

	queue := notify.NewQueue()
	defer queue.Close()
	queue.OnEnqueue(func(n notify.Notification) {
		switch n.Severity {
		case notify.Error:
			logger.Error(n.Message)
		case notify.Warning:
			logger.Warn(n.Message)
		default:
			logger.Info(n.Message)
		}
	})

	// Advisory only; a failed probe does not stop the run.
	session.Probe(ctx, client, queue)

	ctrl := session.NewController(client, queue, logger)
	if _, err := ctrl.LoadAssetFile(in); err != nil {
		os.Exit(1)
	}

	done, err := ctrl.BeginProcess(ctx, types.Task{Instruction: taskText, Kind: types.TaskPoint})
	if err != nil {
		os.Exit(1)
	}
	<-done

	if ctrl.State() != session.StateResulted {
		os.Exit(1)
	}
	result := ctrl.Result()

	annotation, err := render.Render(result)
	if err != nil {
		queue.Enqueue(err.Error(), notify.Error)
		os.Exit(1)
	}

	if out == "" {
		if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
			logger.Fatal("failed to create output directory", zap.Error(err))
		}
		out = utils.GenerateOutputFilename(in, cfg.Output.Dir, "_annotated", cfg.Output.Format)
	}
	if err := asset.Save(annotation.Surface, out, cfg.Output.Format, cfg.Output.Quality, lossless); err != nil {
		logger.Fatal("failed to save annotated image", zap.Error(err))
	}

	s := render.Summarize(result)
	fmt.Printf("Task:       %s\n", s.Task)
	fmt.Printf("Elapsed:    %s\n", s.Elapsed)
	fmt.Printf("Pixel:      %s\n", s.Pixel)
	fmt.Printf("Normalized: %s\n", s.Normalized)
	fmt.Printf("Saved:      %s\n", out)
}
