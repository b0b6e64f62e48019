package cli

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeFailWriter struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (w *closeFailWriter) Close() error {
	w.closed = true
	return w.closeErr
}

func TestWriteAndClose(t *testing.T) {
	w := &closeFailWriter{}
	err := writeAndClose(w, func(out io.Writer) error {
		_, err := io.WriteString(out, "user id,test group\n")
		return err
	})
	require.NoError(t, err)
	assert.True(t, w.closed)
	assert.Equal(t, "user id,test group\n", w.String())
}

func TestWriteAndClose_ReportsCloseError(t *testing.T) {
	diskFull := errors.New("no space left on device")
	w := &closeFailWriter{closeErr: diskFull}

	err := writeAndClose(w, func(io.Writer) error { return nil })
	require.ErrorIs(t, err, diskFull)
}

func TestWriteAndClose_WriteErrorWinsAndStillCloses(t *testing.T) {
	writeErr := errors.New("bad record")
	w := &closeFailWriter{closeErr: errors.New("close")}

	err := writeAndClose(w, func(io.Writer) error { return writeErr })
	require.ErrorIs(t, err, writeErr)
	assert.True(t, w.closed)
}
