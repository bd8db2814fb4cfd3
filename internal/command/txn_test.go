package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiExecDiscardSignalTransitions(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "MULTI")
	require.Equal(t, KindTransaction, r.Kind)
	assert.Equal(t, TxnBegin, r.TxnOp)

	r = exec(t, d, cs, "EXEC")
	require.Equal(t, KindTransaction, r.Kind)
	assert.Equal(t, TxnExec, r.TxnOp)

	r = exec(t, d, cs, "DISCARD")
	require.Equal(t, KindTransaction, r.Kind)
	assert.Equal(t, TxnDiscard, r.TxnOp)
}

func TestMultiRejectsExtraArgs(t *testing.T) {
	d := newTestDispatcher()
	cs := newTestConnState()

	r := exec(t, d, cs, "MULTI", "extra")
	assert.Contains(t, string(r.Value.Str), "ERR")
}
