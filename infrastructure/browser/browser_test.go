package browser

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"storefront_e2e/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetIsCutByDeadline(t *testing.T) {
	left, err := budget(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, left)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	left, err = budget(ctx, time.Minute)
	require.NoError(t, err)
	assert.LessOrEqual(t, left, 50*time.Millisecond)

	cancel()
	_, err = budget(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadyStateScript(t *testing.T) {
	assert.Contains(t, readyStateScript(entities.LoadStateDOMContentLoaded), `"interactive"`)
	assert.Contains(t, readyStateScript(entities.LoadStateLoad), `"complete"`)
	assert.Contains(t, readyStateScript(entities.LoadStateNetworkIdle), "jQuery.active")
}

func TestWaitUntil(t *testing.T) {
	calls := 0
	err := waitUntil(context.Background(), time.Second, "load", func() (bool, error) {
		calls++
		return calls == 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	err = waitUntil(context.Background(), 10*time.Millisecond, "networkidle", func() (bool, error) {
		return false, errors.New("script failed")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "networkidle not reached")
	assert.Contains(t, err.Error(), "script failed")
}

func TestToStrings(t *testing.T) {
	assert.Equal(t, []string{"50", ""}, toStrings([]interface{}{"50", nil}))
	assert.Nil(t, toStrings("not a list"))
}

func TestFindChromeDriverRejectsMissingPath(t *testing.T) {
	_, err := findChromeDriver(filepath.Join(t.TempDir(), "chromedriver"))
	assert.Error(t, err)
}

func TestLaunchRejectsUnknownEngine(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	_, err := Launch("netscape", Options{Project: "chromium"}, logger)
	assert.Error(t, err)

	_, err = Launch(EngineRod, Options{Project: "firefox"}, logger)
	assert.Error(t, err)
}
