// Package uilocator is a client for a remote GUI element localization
// service. Given a screenshot and a natural-language instruction such as
// "click the search button", the backend returns a click position in both a
// normalized scale and literal pixels; this package loads the image, drives
// the request, and renders the returned point as a marker over the processed
// image.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"uilocator"
//	)
//
//	func main() {
//		p := uilocator.New("http://localhost:5001")
//
//		annotation, result, err := p.Localize(context.Background(), "screenshot.png", "click the search button")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := p.Save(annotation, "screenshot_annotated.png"); err != nil {
//			log.Fatal(err)
//		}
//
//		log.Printf("target at (%.1f, %.1f) in %v", annotation.CenterX, annotation.CenterY, result.Elapsed)
//	}
//
// The package consists of five main components:
//
// 1. Loader (pkg/asset): validates and decodes user-supplied image files
// 2. Dispatcher (pkg/localize): the HTTP client for the processing endpoint
// 3. Controller (pkg/session): the session lifecycle state machine
// 4. Renderer (pkg/render): draws the marker over the processed image
// 5. Queue (pkg/notify): transient self-expiring user notifications
//
// The session controller guarantees a single in-flight request per session
// and drops responses that arrive after the session has moved on. The
// renderer always sizes its surface to the dimensions the backend declared,
// since those are what the returned pixel coordinates refer to.
package uilocator

import (
	"context"
	"fmt"
	"image"

	"uilocator/pkg/asset"
	"uilocator/pkg/localize"
	"uilocator/pkg/render"
	"uilocator/pkg/types"
)

// Version of the uilocator library
const Version = "1.0.0"

// Pipeline provides a high-level interface over the loader, dispatcher and
// renderer for one-shot use. For session-managed use (state machine, single
// flight, notifications) use pkg/session directly.
type Pipeline struct {
	client *localize.Client
}

// New creates a Pipeline for the given backend base URL.
func New(backendURL string) *Pipeline {
	return &Pipeline{client: localize.NewClient(backendURL, nil)}
}

// Localize loads an image file, asks the backend for the click position
// matching the instruction, and renders the annotated result.
func (p *Pipeline) Localize(ctx context.Context, imagePath, instruction string) (*render.Annotation, *types.LocalizationResult, error) {
	a, err := asset.LoadFile(imagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load image: %w", err)
	}

	result, err := p.client.Process(ctx, a.DataURI, types.Task{Instruction: instruction, Kind: types.TaskPoint})
	if err != nil {
		return nil, nil, err
	}

	annotation, err := render.Render(result)
	if err != nil {
		return nil, result, err
	}
	return annotation, result, nil
}

// Health probes the backend once; the result is advisory.
func (p *Pipeline) Health(ctx context.Context) (*localize.HealthStatus, error) {
	return p.client.Health(ctx)
}

// Save writes an annotation's surface to a file as PNG.
func (p *Pipeline) Save(annotation *render.Annotation, path string) error {
	return asset.Save(annotation.Surface, path, "png", 92, false)
}

// LoadImage loads an image from file.
func LoadImage(path string) (image.Image, error) {
	return asset.DecodeFile(path)
}
