package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uilocator/pkg/localize"
	"uilocator/pkg/notify"
	"uilocator/pkg/types"
)

// fakeDispatcher settles with a fixed outcome, optionally blocking until
// released so tests can hold a request in flight.
type fakeDispatcher struct {
	release chan struct{}
	result  *types.LocalizationResult
	err     error
	calls   atomic.Int32
}

func (d *fakeDispatcher) Process(ctx context.Context, imageDataURI string, task types.Task) (*types.LocalizationResult, error) {
	d.calls.Add(1)
	if d.release != nil {
		<-d.release
	}
	return d.result, d.err
}

func okResult() *types.LocalizationResult {
	return &types.LocalizationResult{
		Task:        "click the button",
		Coordinates: types.Coordinates{X: 500, Y: 500, XPixel: 100, YPixel: 100},
		ImageWidth:  200,
		ImageHeight: 200,
		Elapsed:     42 * time.Millisecond,
	}
}

func newTestController(t *testing.T, d Dispatcher) (*Controller, *notify.Queue) {
	t.Helper()
	// Long lifetime so entries do not expire mid-test.
	q := notify.NewQueueWithLifetime(time.Minute)
	t.Cleanup(q.Close)
	return NewController(d, q, nil), q
}

func loadTestImage(t *testing.T, c *Controller) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	_, err := c.LoadAsset("screen.png", "image/png", &buf)
	require.NoError(t, err)
}

func bySeverity(q *notify.Queue, s notify.Severity) []notify.Notification {
	var out []notify.Notification
	for _, n := range q.Active() {
		if n.Severity == s {
			out = append(out, n)
		}
	}
	return out
}

func TestLoadThenClearReturnsToEmpty(t *testing.T) {
	c, _ := newTestController(t, &fakeDispatcher{result: okResult()})

	loadTestImage(t, c)
	require.Equal(t, StateLoaded, c.State())
	require.NotNil(t, c.Asset())

	c.Clear()
	assert.Equal(t, StateEmpty, c.State())
	assert.Nil(t, c.Asset())
	assert.Nil(t, c.Result())
	assert.NoError(t, c.Err())
}

func TestBeginProcessWithoutAsset(t *testing.T) {
	c, q := newTestController(t, &fakeDispatcher{result: okResult()})

	_, err := c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.Error(t, err)

	var pre *types.PreconditionError
	require.True(t, errors.As(err, &pre))
	assert.Equal(t, StateEmpty, c.State())
	assert.Len(t, bySeverity(q, notify.Warning), 1)
}

func TestBeginProcessBlankInstruction(t *testing.T) {
	c, q := newTestController(t, &fakeDispatcher{result: okResult()})
	loadTestImage(t, c)

	_, err := c.BeginProcess(context.Background(), types.Task{Instruction: "   \t "})
	require.Error(t, err)

	var pre *types.PreconditionError
	require.True(t, errors.As(err, &pre))
	assert.Equal(t, StateLoaded, c.State(), "state must be unchanged")
	assert.Len(t, bySeverity(q, notify.Warning), 1)
}

func TestSingleFlight(t *testing.T) {
	d := &fakeDispatcher{release: make(chan struct{}), result: okResult()}
	c, _ := newTestController(t, d)
	loadTestImage(t, c)

	done, err := c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.NoError(t, err)
	require.Equal(t, StateProcessing, c.State())

	// A second dispatch is rejected regardless of its task content.
	_, err = c.BeginProcess(context.Background(), types.Task{Instruction: "click something else"})
	var pre *types.PreconditionError
	require.True(t, errors.As(err, &pre))

	close(d.release)
	<-done

	assert.Equal(t, StateResulted, c.State())
	assert.EqualValues(t, 1, d.calls.Load(), "dispatcher must be invoked exactly once")
}

func TestCompleteProcess(t *testing.T) {
	c, q := newTestController(t, &fakeDispatcher{result: okResult()})
	loadTestImage(t, c)

	done, err := c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.NoError(t, err)
	<-done

	require.Equal(t, StateResulted, c.State())
	require.NotNil(t, c.Result())
	assert.Equal(t, "click the button", c.Result().Task)
	assert.Len(t, bySeverity(q, notify.Success), 1)
}

func TestApplicationFailureMovesToFailed(t *testing.T) {
	d := &fakeDispatcher{err: &types.ApplicationError{Message: "no target found"}}
	c, q := newTestController(t, d)
	loadTestImage(t, c)

	done, err := c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.NoError(t, err)
	<-done

	assert.Equal(t, StateFailed, c.State())
	assert.Nil(t, c.Result())

	errs := bySeverity(q, notify.Error)
	require.Len(t, errs, 1, "exactly one error notification")
	assert.Equal(t, "no target found", errs[0].Message)
}

func TestRedispatchAllowedAfterResultAndFailure(t *testing.T) {
	d := &fakeDispatcher{err: &types.ApplicationError{Message: "no target found"}}
	c, _ := newTestController(t, d)
	loadTestImage(t, c)

	done, err := c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.NoError(t, err)
	<-done
	require.Equal(t, StateFailed, c.State())

	// The asset is still current; the user may retry.
	d.err = nil
	d.result = okResult()
	done, err = c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.NoError(t, err)
	<-done
	require.Equal(t, StateResulted, c.State())

	done, err = c.BeginProcess(context.Background(), types.Task{Instruction: "click the other button"})
	require.NoError(t, err)
	<-done
	assert.Equal(t, StateResulted, c.State())
}

func TestStaleResponseAfterClearIsDropped(t *testing.T) {
	d := &fakeDispatcher{release: make(chan struct{}), result: okResult()}
	c, q := newTestController(t, d)
	loadTestImage(t, c)

	done, err := c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.NoError(t, err)

	c.Clear()
	close(d.release)
	<-done

	assert.Equal(t, StateEmpty, c.State(), "late delivery must not resurrect the session")
	assert.Nil(t, c.Result())
	assert.Empty(t, bySeverity(q, notify.Success))
}

func TestStaleFailureAfterReloadIsDropped(t *testing.T) {
	d := &fakeDispatcher{release: make(chan struct{}), err: &types.ApplicationError{Message: "no target found"}}
	c, q := newTestController(t, d)
	loadTestImage(t, c)

	done, err := c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.NoError(t, err)

	// A new image arrives while the request is outstanding.
	loadTestImage(t, c)
	require.Equal(t, StateLoaded, c.State())

	close(d.release)
	<-done

	assert.Equal(t, StateLoaded, c.State())
	assert.Empty(t, bySeverity(q, notify.Error))
}

func TestLoadAssetRejectionLeavesStateUnchanged(t *testing.T) {
	c, q := newTestController(t, &fakeDispatcher{result: okResult()})

	_, err := c.LoadAsset("notes.txt", "text/plain", bytes.NewReader([]byte("hi")))
	require.Error(t, err)

	assert.Equal(t, StateEmpty, c.State())
	assert.Len(t, bySeverity(q, notify.Warning), 1)
}

func TestLoadReplacesResult(t *testing.T) {
	c, _ := newTestController(t, &fakeDispatcher{result: okResult()})
	loadTestImage(t, c)

	done, err := c.BeginProcess(context.Background(), types.Task{Instruction: "click the button"})
	require.NoError(t, err)
	<-done
	require.NotNil(t, c.Result())

	loadTestImage(t, c)
	assert.Equal(t, StateLoaded, c.State())
	assert.Nil(t, c.Result(), "prior result display is cleared by a new load")
}

// fakeProber drives the advisory startup probe.
type fakeProber struct {
	status *localize.HealthStatus
	err    error
}

func (p *fakeProber) Health(ctx context.Context) (*localize.HealthStatus, error) {
	return p.status, p.err
}

func TestProbeConnected(t *testing.T) {
	q := notify.NewQueueWithLifetime(time.Minute)
	defer q.Close()

	Probe(context.Background(), &fakeProber{status: &localize.HealthStatus{Status: "healthy"}}, q)

	msgs := bySeverity(q, notify.Success)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Backend connected", msgs[0].Message)
}

func TestProbeBadStatus(t *testing.T) {
	q := notify.NewQueueWithLifetime(time.Minute)
	defer q.Close()

	Probe(context.Background(), &fakeProber{err: &types.TransportError{StatusCode: 503}}, q)
	assert.Len(t, bySeverity(q, notify.Warning), 1)
}

func TestProbeUnreachable(t *testing.T) {
	q := notify.NewQueueWithLifetime(time.Minute)
	defer q.Close()

	Probe(context.Background(), &fakeProber{err: &types.TransportError{Err: errors.New("connection refused")}}, q)
	assert.Len(t, bySeverity(q, notify.Error), 1)
}
