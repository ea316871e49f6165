package notify_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Tiliavir/tutor-hub/internal/notify"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := notify.Console{Out: &buf}
	c.Notify(notify.Success, "Education entry created.")
	c.Notify(notify.Error, "Degree: This field is required.")

	assert.Equal(t, "  ✓ Education entry created.\n  ! Degree: This field is required.\n", buf.String())
}

func TestMultiAndRecorder(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rec := &notify.Recorder{}
	n := notify.Multi{rec, notify.Zap{Log: zap.New(core)}}

	n.Notify(notify.Success, "saved")
	n.Notify(notify.Error, "failed")

	assert.Equal(t, []string{"saved"}, rec.Of(notify.Success))
	assert.Equal(t, []string{"failed"}, rec.Of(notify.Error))
	assert.Len(t, rec.Messages(), 2)
	assert.Equal(t, 1, logs.FilterMessage("failed").FilterLevelExact(zap.WarnLevel).Len())
}
