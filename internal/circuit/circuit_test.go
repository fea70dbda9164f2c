package circuit

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepth(t *testing.T) {
	c := New(2, 2)
	assert.Equal(t, 0, c.Depth())

	c.H(0)
	c.CX(0, 1)
	assert.Equal(t, 2, c.Depth())

	// Parallel single-qubit gates share a layer.
	p := New(3, 3)
	p.H(0)
	p.H(1)
	p.H(2)
	assert.Equal(t, 1, p.Depth())

	// Measurement adds one layer, barriers none.
	p.Barrier()
	p.MeasureAll()
	assert.Equal(t, 2, p.Depth())
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 4, New(2, 2).Width())
	assert.Equal(t, 5, New(3, 2).Width())
}

func TestCountGate(t *testing.T) {
	c := New(2, 2)
	c.H(0)
	c.H(1)
	c.CX(0, 1)
	assert.Equal(t, 2, c.CountGate("h"))
	assert.Equal(t, 1, c.CountGate("cx"))
	assert.Equal(t, 0, c.CountGate("ccx"))
}

func TestQASM(t *testing.T) {
	c := New(2, 2)
	c.H(0)
	c.CP(math.Pi/2, 0, 1)
	c.Barrier()
	c.CX(0, 1)
	c.MeasureAll()

	qasm := c.QASM()
	assert.True(t, strings.HasPrefix(qasm, "OPENQASM 2.0;\n"))
	assert.Contains(t, qasm, "include \"qelib1.inc\";")
	assert.Contains(t, qasm, "qreg q[2];")
	assert.Contains(t, qasm, "creg c[2];")
	assert.Contains(t, qasm, "h q[0];")
	assert.Contains(t, qasm, "cp(1.5707963267948966) q[0],q[1];")
	assert.Contains(t, qasm, "barrier q;")
	assert.Contains(t, qasm, "cx q[0],q[1];")
	assert.Contains(t, qasm, "measure q[0] -> c[0];")
	assert.Contains(t, qasm, "measure q[1] -> c[1];")
}

func TestDrawHasOneWirePerQubit(t *testing.T) {
	c := New(3, 3)
	c.H(0)
	c.CX(0, 1)
	c.MeasureAll()

	diagram := c.Draw()
	for _, label := range []string{"q0:", "q1:", "q2:"} {
		assert.Contains(t, diagram, label)
	}
	assert.Contains(t, diagram, "H")
	assert.Contains(t, diagram, "M")
}
