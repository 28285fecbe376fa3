// Package vmsim is a simulator of the target virtual machine used to execute
// generated assembly in tests.  It implements the machine contract documented
// in package `codegen`.
package vmsim

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PeterBassett/Compiler-sub001/builtins"
)

// MemorySize is the number of bytes of memory the machine has.
const MemorySize = 1 << 16

// DataBase is the address the data section is loaded at.
const DataBase = 0x100

// DefaultStepLimit is the number of instructions a machine executes before
// it gives up.
const DefaultStepLimit = 1_000_000

// Machine is a loaded program and the state of the machine running it.
type Machine struct {
	Memory    []byte
	StepLimit int

	// Steps is the number of instructions executed so far.
	Steps int

	regs     map[string]uint64
	code     []instruction
	labels   map[string]int
	data     map[string]int
	registry *builtins.Registry

	// flags is the sign of the last comparison.
	flags int
	pc    int
}

type instruction struct {
	op    string
	width int
	args  []string
	line  int
}

// machineError is an error raised while the machine is running.
type machineError struct {
	msg string
}

func (m *Machine) fail(format string, args ...interface{}) {
	panic(machineError{msg: fmt.Sprintf(format, args...)})
}

// New loads assembly text into a fresh machine.  Builtin interrupts are
// dispatched to `registry`.
func New(asm string, registry *builtins.Registry) (*Machine, error) {
	if registry == nil {
		registry = builtins.Default()
	}

	m := &Machine{
		Memory:    make([]byte, MemorySize),
		StepLimit: DefaultStepLimit,
		regs:      map[string]uint64{"R1": 0, "R2": 0, "R3": 0, "R4": 0, "BP": 0, "SP": MemorySize},
		labels:    make(map[string]int),
		data:      make(map[string]int),
		registry:  registry,
	}

	if err := m.load(asm); err != nil {
		return nil, err
	}

	return m, nil
}

// Run loads and runs a program to completion.
func Run(asm string, registry *builtins.Registry) (*Machine, error) {
	m, err := New(asm, registry)
	if err != nil {
		return nil, err
	}

	return m, m.Run()
}

// -----------------------------------------------------------------------------

var baseMnemonics = map[string]bool{
	"MOV": true, "ADD": true, "SUB": true, "MUL": true, "DIV": true, "MOD": true,
	"AND": true, "OR": true, "XOR": true, "NEG": true, "NOT": true, "CMP": true,
	"CVTIF": true, "CVTFI": true,
	"JMP": true, "JEQ": true, "JNE": true, "JLT": true, "JLE": true, "JGT": true, "JGE": true,
	"SETEQ": true, "SETNE": true, "SETLT": true, "SETLE": true, "SETGT": true, "SETGE": true,
	"PUSH": true, "POP": true, "CALL": true, "RET": true, "INT": true, "HALT": true,
}

var suffixWidths = map[byte]int{'b': 1, 'w': 2, 'f': 8}

func parseMnemonic(s string) (string, int, bool) {
	if baseMnemonics[s] {
		return s, 4, true
	}

	if len(s) > 1 {
		if w, ok := suffixWidths[s[len(s)-1]]; ok && baseMnemonics[s[:len(s)-1]] {
			return s[:len(s)-1], w, true
		}
	}

	return "", 0, false
}

func stripComment(line string) string {
	if i := strings.IndexRune(line, ';'); i >= 0 {
		line = line[:i]
	}

	return strings.TrimSpace(line)
}

func (m *Machine) load(asm string) error {
	next := DataBase

	for n, raw := range strings.Split(asm, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "" || line[0] == ';':
			continue
		case strings.HasPrefix(line, ".global ") && len(strings.Fields(line)) == 2:
			continue
		case line[0] == '.':
			size, err := m.loadData(line, next)
			if err != nil {
				return fmt.Errorf("line %d: %w", n+1, err)
			}

			next += size
			continue
		}

		line = stripComment(line)
		if strings.HasSuffix(line, ":") {
			m.labels[strings.TrimSuffix(line, ":")] = len(m.code)
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		op, width, ok := parseMnemonic(fields[0])
		if !ok {
			return fmt.Errorf("line %d: unknown mnemonic `%s`", n+1, fields[0])
		}

		var args []string
		if len(fields) == 2 {
			for _, arg := range strings.Split(fields[1], ",") {
				args = append(args, strings.TrimSpace(arg))
			}
		}

		m.code = append(m.code, instruction{op: op, width: width, args: args, line: n + 1})
	}

	if _, ok := m.labels["__start"]; !ok {
		return fmt.Errorf("program has no `__start` label")
	}

	return nil
}

// loadData loads a data declaration at `addr` and returns its size.
func (m *Machine) loadData(line string, addr int) (int, error) {
	fields := strings.SplitN(line[1:], " ", 3)
	if len(fields) != 3 {
		return 0, fmt.Errorf("malformed data declaration `%s`", line)
	}

	name, keyword, value := fields[0], fields[1], fields[2]
	m.data[name] = addr

	if keyword == "string" {
		quoted, err := strconv.QuotedPrefix(value)
		if err != nil {
			return 0, err
		}

		s, _ := strconv.Unquote(quoted)
		copy(m.Memory[addr:], s)
		m.Memory[addr+len(s)] = 0
		return len(s) + 1, nil
	}

	value = stripComment(value)
	switch keyword {
	case "byte", "word", "int":
		n, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return 0, err
		}

		size := map[string]int{"byte": 1, "word": 2, "int": 4}[keyword]
		m.store(addr, size, uint64(n))
		return size, nil
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, err
		}

		m.store(addr, 8, math.Float64bits(f))
		return 8, nil
	case "zero":
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, err
		}

		return n, nil
	}

	return 0, fmt.Errorf("unknown data keyword `%s`", keyword)
}

// -----------------------------------------------------------------------------

// Register returns the raw contents of a register.
func (m *Machine) Register(name string) uint64 {
	return m.regs[name]
}

// Int returns the contents of a register as an int32.
func (m *Machine) Int(name string) int32 {
	return int32(uint32(m.regs[name]))
}

// Float returns the contents of a register as a float64.
func (m *Machine) Float(name string) float64 {
	return math.Float64frombits(m.regs[name])
}

// DataAddress returns the address of a data entry.
func (m *Machine) DataAddress(name string) (int, bool) {
	addr, ok := m.data[name]
	return addr, ok
}

// ReadInt reads an int32 from memory.
func (m *Machine) ReadInt(addr int) int32 {
	return int32(uint32(m.fetch(addr, 4)))
}

func (m *Machine) fetch(addr, width int) uint64 {
	if addr < 0 || addr+width > len(m.Memory) {
		m.fail("memory access at %d out of bounds", addr)
	}

	switch width {
	case 1:
		return uint64(m.Memory[addr])
	case 2:
		return uint64(binary.LittleEndian.Uint16(m.Memory[addr:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(m.Memory[addr:]))
	default:
		return binary.LittleEndian.Uint64(m.Memory[addr:])
	}
}

func (m *Machine) store(addr, width int, v uint64) {
	if addr < 0 || addr+width > len(m.Memory) {
		m.fail("memory access at %d out of bounds", addr)
	}

	switch width {
	case 1:
		m.Memory[addr] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(m.Memory[addr:], uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(m.Memory[addr:], uint32(v))
	default:
		binary.LittleEndian.PutUint64(m.Memory[addr:], v)
	}
}

func mask(v uint64, width int) uint64 {
	if width >= 8 {
		return v
	}

	return v & (1<<(8*uint(width)) - 1)
}

func (m *Machine) isRegister(op string) bool {
	_, ok := m.regs[op]
	return ok
}

// address evaluates the address of a memory operand `[base+n]`.
func (m *Machine) address(op string) int {
	inner := op[1 : len(op)-1]

	base, offset := inner, 0
	if i := strings.IndexAny(inner, "+-"); i > 0 {
		n, err := strconv.Atoi(inner[i:])
		if err != nil {
			m.fail("malformed memory operand `%s`", op)
		}

		base, offset = inner[:i], n
	}

	return m.immediate(base) + offset
}

// immediate evaluates a register, number, data name or label as a value.
func (m *Machine) immediate(op string) int {
	if m.isRegister(op) {
		return int(m.regs[op])
	}

	if op[0] == '.' {
		if addr, ok := m.data[op[1:]]; ok {
			return addr
		}

		m.fail("undefined data entry `%s`", op)
	}

	if n, err := strconv.ParseInt(op, 0, 64); err == nil {
		return int(n)
	}

	if idx, ok := m.labels[op]; ok {
		return idx
	}

	m.fail("undefined operand `%s`", op)
	return 0
}

func (m *Machine) read(op string, width int) uint64 {
	if strings.HasPrefix(op, "[") {
		return m.fetch(m.address(op), width)
	}

	if m.isRegister(op) {
		return mask(m.regs[op], width)
	}

	return mask(uint64(m.immediate(op)), width)
}

func (m *Machine) write(op string, width int, v uint64) {
	if strings.HasPrefix(op, "[") {
		m.store(m.address(op), width, v)
		return
	}

	if !m.isRegister(op) {
		m.fail("cannot write to `%s`", op)
	}

	m.regs[op] = mask(v, width)
}

func (m *Machine) push(width int, v uint64) {
	m.regs["SP"] -= uint64(width)
	m.store(int(m.regs["SP"]), width, v)
}

func (m *Machine) pop(width int) uint64 {
	v := m.fetch(int(m.regs["SP"]), width)
	m.regs["SP"] += uint64(width)
	return v
}
