// Package circuit provides a backend-agnostic quantum circuit description
// and the builders that construct one from a classified computation request.
package circuit

import (
	"fmt"
	"strings"
)

// Gate is a single gate application. Qubits lists the target indices in
// application order (control first for controlled gates). Params carries
// rotation angles where the gate takes any.
type Gate struct {
	Name   string    `json:"name"`
	Qubits []int     `json:"qubits"`
	Params []float64 `json:"params,omitempty"`
}

// Circuit is an ordered gate list over a fixed number of qubits and
// classical bits. Measured marks the terminal measure-all step.
type Circuit struct {
	NumQubits int    `json:"num_qubits"`
	NumClbits int    `json:"num_clbits"`
	Gates     []Gate `json:"gates"`
	Measured  bool   `json:"measured"`
}

// New returns an empty circuit over the given register sizes.
func New(qubits, clbits int) *Circuit {
	return &Circuit{NumQubits: qubits, NumClbits: clbits}
}

func (c *Circuit) add(name string, qubits []int, params ...float64) {
	c.Gates = append(c.Gates, Gate{Name: name, Qubits: qubits, Params: params})
}

// Single-qubit gates.
func (c *Circuit) H(q int) { c.add("h", []int{q}) }
func (c *Circuit) X(q int) { c.add("x", []int{q}) }
func (c *Circuit) Y(q int) { c.add("y", []int{q}) }
func (c *Circuit) Z(q int) { c.add("z", []int{q}) }
func (c *Circuit) S(q int) { c.add("s", []int{q}) }
func (c *Circuit) T(q int) { c.add("t", []int{q}) }
func (c *Circuit) RX(theta float64, q int) { c.add("rx", []int{q}, theta) }
func (c *Circuit) RY(theta float64, q int) { c.add("ry", []int{q}, theta) }
func (c *Circuit) RZ(theta float64, q int) { c.add("rz", []int{q}, theta) }

// Multi-qubit gates.
func (c *Circuit) CX(control, target int) { c.add("cx", []int{control, target}) }
func (c *Circuit) CZ(control, target int) { c.add("cz", []int{control, target}) }
func (c *Circuit) Swap(a, b int) { c.add("swap", []int{a, b}) }
func (c *Circuit) CP(theta float64, control, target int) { c.add("cp", []int{control, target}, theta) }
func (c *Circuit) CCX(c1, c2, target int) { c.add("ccx", []int{c1, c2, target}) }

// Barrier separates logical circuit stages. It has no effect on simulation.
func (c *Circuit) Barrier() {
	qubits := make([]int, c.NumQubits)
	for i := range qubits {
		qubits[i] = i
	}
	c.add("barrier", qubits)
}

// MeasureAll appends the terminal measure-all marker.
func (c *Circuit) MeasureAll() { c.Measured = true }

// Depth returns the circuit depth computed by greedy per-qubit layering.
// Barriers do not add depth.
func (c *Circuit) Depth() int {
	layer := make([]int, c.NumQubits)
	max := 0
	for _, g := range c.Gates {
		if g.Name == "barrier" {
			continue
		}
		next := 0
		for _, q := range g.Qubits {
			if layer[q] > next {
				next = layer[q]
			}
		}
		next++
		for _, q := range g.Qubits {
			layer[q] = next
		}
		if next > max {
			max = next
		}
	}
	if c.Measured {
		max++
	}
	return max
}

// Width returns qubits plus classical bits, matching the convention the
// remote backend reports.
func (c *Circuit) Width() int {
	return c.NumQubits + c.NumClbits
}

// CountGate returns how many times the named gate appears.
func (c *Circuit) CountGate(name string) int {
	n := 0
	for _, g := range c.Gates {
		if g.Name == name {
			n++
		}
	}
	return n
}

// QASM renders the circuit as OpenQASM 2.0 for submission to remote
// backends.
func (c *Circuit) QASM() string {
	var b strings.Builder
	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&b, "qreg q[%d];\n", c.NumQubits)
	fmt.Fprintf(&b, "creg c[%d];\n", c.NumClbits)
	for _, g := range c.Gates {
		switch g.Name {
		case "barrier":
			b.WriteString("barrier q;\n")
			continue
		}
		b.WriteString(g.Name)
		if len(g.Params) > 0 {
			b.WriteString("(")
			for i, p := range g.Params {
				if i > 0 {
					b.WriteString(",")
				}
				fmt.Fprintf(&b, "%g", p)
			}
			b.WriteString(")")
		}
		b.WriteString(" ")
		for i, q := range g.Qubits {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "q[%d]", q)
		}
		b.WriteString(";\n")
	}
	if c.Measured {
		for i := 0; i < c.NumQubits && i < c.NumClbits; i++ {
			fmt.Fprintf(&b, "measure q[%d] -> c[%d];\n", i, i)
		}
	}
	return b.String()
}

// Draw renders a plain-text diagram, one wire per qubit with gates placed
// left to right in application order.
func (c *Circuit) Draw() string {
	cols := len(c.Gates)
	if c.Measured {
		cols++
	}
	rows := make([][]string, c.NumQubits)
	for q := range rows {
		rows[q] = make([]string, cols)
		for i := range rows[q] {
			rows[q][i] = "-----"
		}
	}

	for i, g := range c.Gates {
		switch g.Name {
		case "barrier":
			for q := 0; q < c.NumQubits; q++ {
				rows[q][i] = "--|--"
			}
		case "cx", "cz", "cp":
			rows[g.Qubits[0]][i] = "--*--"
			label := strings.ToUpper(g.Name[1:])
			rows[g.Qubits[1]][i] = center("[" + label + "]")
		case "ccx":
			rows[g.Qubits[0]][i] = "--*--"
			rows[g.Qubits[1]][i] = "--*--"
			rows[g.Qubits[2]][i] = center("[X]")
		case "swap":
			rows[g.Qubits[0]][i] = "--x--"
			rows[g.Qubits[1]][i] = "--x--"
		default:
			label := "[" + strings.ToUpper(g.Name) + "]"
			for _, q := range g.Qubits {
				rows[q][i] = center(label)
			}
		}
	}
	if c.Measured {
		for q := 0; q < c.NumQubits; q++ {
			rows[q][cols-1] = center("[M]")
		}
	}

	var b strings.Builder
	for q := 0; q < c.NumQubits; q++ {
		fmt.Fprintf(&b, "q%d: ", q)
		b.WriteString(strings.Join(rows[q], ""))
		b.WriteString("\n")
	}
	return b.String()
}

func center(s string) string {
	const width = 5
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat("-", left) + s + strings.Repeat("-", right)
}
