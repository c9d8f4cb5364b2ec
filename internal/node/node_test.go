package node

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	cases := map[string]SocketKind{
		"data":    KindData,
		"signal":  KindSignal,
		"SIGNAL":  KindSignal,
		" signal": KindSignal,
		"":        KindData,
		"bogus":   KindData,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseKind(in), "input %q", in)
	}
}

func TestInputSocket_ChangedAndCapture(t *testing.T) {
	producer := New("A", "/tmp/a")
	out := producer.AddOutput("x", KindData)
	consumer := New("B", "/tmp/b")
	in := consumer.AddInput("x", KindData)

	assert.False(t, in.Changed(), "an unjoined input never changes")

	in.Joined = out
	assert.False(t, in.Changed())

	producer.OutputDataVersion = 1
	assert.True(t, in.Changed())

	in.Capture()
	assert.Equal(t, 1, in.LastProcessedDataVersion)
	assert.False(t, in.Changed())
	assert.Same(t, producer, in.JoinedNode())
}

func TestNode_Lookup(t *testing.T) {
	n := New("A", "/work/a")
	n.AddInput("in", KindSignal)
	n.AddOutput("out", KindData)

	in, ok := n.Input("in")
	require.True(t, ok)
	assert.Equal(t, KindSignal, in.Kind)
	assert.Same(t, n, in.Node)

	out, ok := n.Output("out")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/work/a", "out"), out.FilePath())

	_, ok = n.Input("missing")
	assert.False(t, ok)
	_, ok = n.Output("missing")
	assert.False(t, ok)
}

func TestNode_DisplayName(t *testing.T) {
	n := New("A", "")
	assert.Equal(t, "A", n.DisplayName())
	n.Name = "Loader"
	assert.Equal(t, "Loader", n.DisplayName())
}

func TestNode_Reset(t *testing.T) {
	producer := New("A", "")
	out := producer.AddOutput("x", KindData)
	n := New("B", "")
	in := n.AddInput("x", KindData)
	in.Joined = out

	n.OutputDataVersion = 3
	in.LastProcessedDataVersion = 2
	n.SetState(StateException)

	n.Reset()

	assert.Equal(t, 0, n.OutputDataVersion)
	assert.Equal(t, 0, in.LastProcessedDataVersion)
	assert.Equal(t, StateNone, n.State())
}

func TestNode_StateIsSafeForConcurrentReaders(t *testing.T) {
	n := New("A", "")
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			n.SetState(StateRunning)
		}()
		go func() {
			defer wg.Done()
			_ = n.State()
		}()
	}
	wg.Wait()
	assert.Equal(t, StateRunning, n.State())
}

func TestRunState_String(t *testing.T) {
	assert.Equal(t, "none", StateNone.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "exception", StateException.String())
	assert.Equal(t, "unknown", RunState(42).String())
}
