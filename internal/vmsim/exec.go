package vmsim

import (
	"fmt"
	"math"

	"github.com/PeterBassett/Compiler-sub001/types"
)

// Run runs the machine from `__start` until it halts.
func (m *Machine) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			me, ok := r.(machineError)
			if !ok {
				panic(r)
			}

			line := 0
			if m.pc >= 0 && m.pc < len(m.code) {
				line = m.code[m.pc].line
			}

			err = fmt.Errorf("line %d: %s", line, me.msg)
		}
	}()

	m.pc = m.labels["__start"]
	for {
		if m.Steps >= m.StepLimit {
			m.fail("step limit of %d exceeded", m.StepLimit)
		}

		if m.pc < 0 || m.pc >= len(m.code) {
			m.fail("jump to %d outside of the program", m.pc)
		}

		m.Steps++
		if halted := m.step(m.code[m.pc]); halted {
			return nil
		}
	}
}

func (m *Machine) arg(ins instruction, n int) string {
	if n >= len(ins.args) {
		m.fail("`%s` expects %d operands", ins.op, n+1)
	}

	return ins.args[n]
}

func (m *Machine) jump(target string) {
	idx, ok := m.labels[target]
	if !ok {
		m.fail("undefined label `%s`", target)
	}

	m.pc = idx
}

var conditions = map[string]func(flags int) bool{
	"EQ": func(f int) bool { return f == 0 },
	"NE": func(f int) bool { return f != 0 },
	"LT": func(f int) bool { return f < 0 },
	"LE": func(f int) bool { return f <= 0 },
	"GT": func(f int) bool { return f > 0 },
	"GE": func(f int) bool { return f >= 0 },
}

// step executes one instruction and returns whether the machine halted.
func (m *Machine) step(ins instruction) bool {
	next := m.pc + 1
	w := ins.width

	switch ins.op {
	case "MOV":
		m.write(m.arg(ins, 0), w, m.read(m.arg(ins, 1), w))
	case "ADD", "SUB", "MUL", "DIV", "MOD", "AND", "OR", "XOR":
		dst := m.arg(ins, 0)
		m.write(dst, w, m.arithmetic(ins.op, w, m.read(dst, w), m.read(m.arg(ins, 1), w)))
	case "NEG":
		dst := m.arg(ins, 0)
		v := m.read(dst, w)
		if w == 8 {
			m.write(dst, w, math.Float64bits(-math.Float64frombits(v)))
		} else {
			m.write(dst, w, -v)
		}
	case "NOT":
		dst := m.arg(ins, 0)
		m.write(dst, w, ^m.read(dst, w))
	case "CMP":
		m.flags = compare(w, m.read(m.arg(ins, 0), w), m.read(m.arg(ins, 1), w))
	case "SETEQ", "SETNE", "SETLT", "SETLE", "SETGT", "SETGE":
		var v uint64
		if conditions[ins.op[3:]](m.flags) {
			v = 1
		}
		m.write(m.arg(ins, 0), 4, v)
	case "JMP":
		m.jump(m.arg(ins, 0))
		return false
	case "JEQ", "JNE", "JLT", "JLE", "JGT", "JGE":
		if conditions[ins.op[1:]](m.flags) {
			m.jump(m.arg(ins, 0))
			return false
		}
	case "CVTIF":
		dst := m.arg(ins, 0)
		m.write(dst, 8, math.Float64bits(float64(int32(uint32(m.read(dst, 4))))))
	case "CVTFI":
		dst := m.arg(ins, 0)
		m.write(dst, 4, uint64(uint32(int32(math.Float64frombits(m.read(dst, 8))))))
	case "PUSH":
		m.push(w, m.read(m.arg(ins, 0), w))
	case "POP":
		m.write(m.arg(ins, 0), w, m.pop(w))
	case "CALL":
		target := m.arg(ins, 0)
		m.push(4, uint64(next))
		if m.isRegister(target) {
			m.pc = int(uint32(m.regs[target]))
		} else {
			m.jump(target)
		}
		return false
	case "RET":
		m.pc = int(m.pop(4))
		return false
	case "INT":
		m.interrupt()
	case "HALT":
		return true
	default:
		m.fail("unimplemented instruction `%s`", ins.op)
	}

	m.pc = next
	return false
}

func (m *Machine) arithmetic(op string, width int, a, b uint64) uint64 {
	switch width {
	case 8:
		x, y := math.Float64frombits(a), math.Float64frombits(b)
		var r float64
		switch op {
		case "ADD":
			r = x + y
		case "SUB":
			r = x - y
		case "MUL":
			r = x * y
		case "DIV":
			r = x / y
		default:
			m.fail("`%sf` is not a float operation", op)
		}

		return math.Float64bits(r)
	case 4:
		x, y := int32(uint32(a)), int32(uint32(b))
		if (op == "DIV" || op == "MOD") && y == 0 {
			m.fail("division by zero")
		}

		return uint64(uint32(intArithmetic(op, x, y)))
	}

	if (op == "DIV" || op == "MOD") && b == 0 {
		m.fail("division by zero")
	}

	return uintArithmetic(op, a, b)
}

func intArithmetic(op string, x, y int32) int32 {
	switch op {
	case "ADD":
		return x + y
	case "SUB":
		return x - y
	case "MUL":
		return x * y
	case "DIV":
		return x / y
	case "MOD":
		return x % y
	case "AND":
		return x & y
	case "OR":
		return x | y
	}

	return x ^ y
}

func uintArithmetic(op string, x, y uint64) uint64 {
	switch op {
	case "ADD":
		return x + y
	case "SUB":
		return x - y
	case "MUL":
		return x * y
	case "DIV":
		return x / y
	case "MOD":
		return x % y
	case "AND":
		return x & y
	case "OR":
		return x | y
	}

	return x ^ y
}

func compare(width int, a, b uint64) int {
	switch width {
	case 8:
		x, y := math.Float64frombits(a), math.Float64frombits(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		case x == y:
			return 0
		}

		// unordered
		return 1
	case 4:
		x, y := int32(uint32(a)), int32(uint32(b))
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}

		return 0
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}

// interrupt calls the builtin whose interrupt index is on top of the stack.
func (m *Machine) interrupt() {
	sp := int(m.regs["SP"])
	index := int(m.fetch(sp, 4))
	argc := int(m.fetch(sp+4, 4))

	fn, ok := m.registry.ByInterrupt(index)
	if !ok {
		m.fail("no builtin with interrupt index %d", index)
	}

	params := fn.Type.Func.Params
	if argc != len(params) {
		m.fail("builtin `%s` called with %d arguments", fn.Name, argc)
	}

	args := make([]interface{}, len(params))
	addr := sp + 8
	for i, param := range params {
		switch param.Kind {
		case types.KindInt:
			args[i] = int32(uint32(m.fetch(addr, 4)))
			addr += 4
		case types.KindFloat:
			args[i] = math.Float64frombits(m.fetch(addr, 8))
			addr += 8
		case types.KindByte:
			args[i] = uint8(m.fetch(addr, 1))
			addr++
		case types.KindBool:
			args[i] = m.fetch(addr, 1) != 0
			addr++
		case types.KindString:
			args[i] = m.readString(int(m.fetch(addr, 4)))
			addr += 4
		default:
			m.fail("builtin parameter of type `%s`", param)
		}
	}

	switch v := fn.Eval(args).(type) {
	case int32:
		m.regs["R1"] = uint64(uint32(v))
	case float64:
		m.regs["R1"] = math.Float64bits(v)
	case uint8:
		m.regs["R1"] = uint64(v)
	case bool:
		if v {
			m.regs["R1"] = 1
		} else {
			m.regs["R1"] = 0
		}
	}
}

func (m *Machine) readString(addr int) string {
	if addr < 0 {
		m.fail("string at %d out of bounds", addr)
	}

	end := addr
	for end < len(m.Memory) && m.Memory[end] != 0 {
		end++
	}

	if end >= len(m.Memory) {
		m.fail("unterminated string at %d", addr)
	}

	return string(m.Memory[addr:end])
}
