// Package session owns the image lifecycle state machine. All state lives in
// a single Controller and every transition goes through its operations; the
// dispatcher and renderer stay stateless given their inputs.
//
// The controller enforces two guarantees: at most one localization request is
// in flight per session, and a response that arrives after the session has
// moved on (a clear or a new image load) is dropped instead of being applied.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"uilocator/pkg/asset"
	"uilocator/pkg/notify"
	"uilocator/pkg/types"
)

// State is the session lifecycle state.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateProcessing
	StateResulted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateProcessing:
		return "processing"
	case StateResulted:
		return "resulted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Dispatcher sends one localization request. *localize.Client satisfies it.
type Dispatcher interface {
	Process(ctx context.Context, imageDataURI string, task types.Task) (*types.LocalizationResult, error)
}

// Controller enforces the session state machine. All errors from the loader
// and dispatcher are caught here and converted to notifications; the session
// always settles in a stable state after an error.
type Controller struct {
	mu      sync.Mutex
	state   State
	asset   *asset.Asset
	task    types.Task
	result  *types.LocalizationResult
	lastErr error

	// gen invalidates in-flight dispatches: LoadAsset and Clear bump it, and
	// a completion whose generation no longer matches is discarded.
	gen uint64

	dispatcher Dispatcher
	queue      *notify.Queue
	log        *zap.Logger
}

// NewController creates a controller in the Empty state.
func NewController(d Dispatcher, q *notify.Queue, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{dispatcher: d, queue: q, log: log}
}

// LoadAsset accepts a user-supplied file and makes it the current asset,
// replacing any previous asset and discarding any previous result. A rejected
// file emits a warning notification and leaves the session unchanged.
func (c *Controller) LoadAsset(filename, mediaType string, r io.Reader) (*asset.Asset, error) {
	a, err := asset.Load(filename, mediaType, r)
	if err != nil {
		c.notifyLoadFailure(err)
		return nil, err
	}
	c.installAsset(a)
	return a, nil
}

// LoadAssetFile is LoadAsset for a path on disk.
func (c *Controller) LoadAssetFile(path string) (*asset.Asset, error) {
	a, err := asset.LoadFile(path)
	if err != nil {
		c.notifyLoadFailure(err)
		return nil, err
	}
	c.installAsset(a)
	return a, nil
}

func (c *Controller) installAsset(a *asset.Asset) {
	c.mu.Lock()
	c.gen++
	c.state = StateLoaded
	c.asset = a
	c.task = types.Task{}
	c.result = nil
	c.lastErr = nil
	c.mu.Unlock()

	c.log.Info("image loaded",
		zap.String("label", a.Label),
		zap.Int("width", a.Width),
		zap.Int("height", a.Height))
}

func (c *Controller) notifyLoadFailure(err error) {
	var bad *types.InvalidAssetTypeError
	if errors.As(err, &bad) {
		c.queue.Enqueue("Please select an image file", notify.Warning)
		return
	}
	c.queue.Enqueue("Could not read image: "+err.Error(), notify.Warning)
}

// Clear returns the session to Empty, discarding asset, task and result. Safe
// from any state; a dispatch still in flight will have its response dropped.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.gen++
	c.state = StateEmpty
	c.asset = nil
	c.task = types.Task{}
	c.result = nil
	c.lastErr = nil
	c.mu.Unlock()
}

// BeginProcess validates preconditions, transitions to Processing and invokes
// the dispatcher exactly once in the background. The returned channel closes
// when that dispatch settles (applied or dropped). Precondition violations
// emit a warning notification and leave state unchanged.
//
// A dispatch may start whenever an asset is current and no request is in
// flight: from Loaded, and again from Resulted or Failed to re-run a task on
// the same image.
func (c *Controller) BeginProcess(ctx context.Context, task types.Task) (<-chan struct{}, error) {
	c.mu.Lock()
	if c.state == StateProcessing {
		c.mu.Unlock()
		return nil, c.precondition("A request is already being processed")
	}
	if c.asset == nil {
		c.mu.Unlock()
		return nil, c.precondition("Please upload an image first")
	}
	if strings.TrimSpace(task.Instruction) == "" {
		c.mu.Unlock()
		return nil, c.precondition("Please enter a task instruction")
	}
	if task.Kind == "" {
		task.Kind = types.TaskPoint
	}
	c.task = task
	c.state = StateProcessing
	gen := c.gen
	uri := c.asset.DataURI
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := c.dispatcher.Process(ctx, uri, task)
		if err != nil {
			c.failProcess(gen, err)
			return
		}
		c.completeProcess(gen, result)
	}()
	return done, nil
}

func (c *Controller) precondition(reason string) error {
	err := &types.PreconditionError{Reason: reason}
	c.queue.Enqueue(reason, notify.Warning)
	return err
}

func (c *Controller) completeProcess(gen uint64, result *types.LocalizationResult) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateProcessing {
		c.mu.Unlock()
		c.log.Debug("dropping stale localization response")
		return
	}
	c.state = StateResulted
	c.result = result
	c.lastErr = nil
	c.mu.Unlock()

	c.queue.Enqueue(fmt.Sprintf("Localization completed in %d ms", result.Elapsed.Milliseconds()), notify.Success)
}

func (c *Controller) failProcess(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateProcessing {
		c.mu.Unlock()
		c.log.Debug("dropping stale localization failure", zap.Error(err))
		return
	}
	c.state = StateFailed
	c.result = nil
	c.lastErr = err
	c.mu.Unlock()

	c.queue.Enqueue(err.Error(), notify.Error)
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Asset returns the current asset, or nil when the session is empty.
func (c *Controller) Asset() *asset.Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asset
}

// Result returns the last successful result, or nil.
func (c *Controller) Result() *types.LocalizationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Err returns the error that put the session into Failed, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
