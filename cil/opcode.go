package cil

import "fmt"

// Code is an opcode value. One-byte opcodes are 0x00-0xFF, two-byte
// opcodes are 0xFE00-0xFEFF.
type Code uint16

// OperandType is the operand category of an opcode.
type OperandType uint8

const (
	InlineNone OperandType = iota
	ShortInlineBrTarget
	InlineBrTarget
	ShortInlineI
	InlineI
	InlineI8
	ShortInlineR
	InlineR
	InlineString
	InlineField
	InlineMethod
	InlineType
	InlineTok
	InlineSig
	InlineSwitch
	ShortInlineVar
	InlineVar
	ShortInlineArgument
	InlineArgument
	InlinePhi // reserved, no opcode uses it
)

var operandTypeNames = [...]string{
	"InlineNone", "ShortInlineBrTarget", "InlineBrTarget", "ShortInlineI",
	"InlineI", "InlineI8", "ShortInlineR", "InlineR", "InlineString",
	"InlineField", "InlineMethod", "InlineType", "InlineTok", "InlineSig",
	"InlineSwitch", "ShortInlineVar", "InlineVar", "ShortInlineArgument",
	"InlineArgument", "InlinePhi",
}

func (t OperandType) String() string {
	if int(t) < len(operandTypeNames) {
		return operandTypeNames[t]
	}
	return fmt.Sprintf("OperandType(%d)", uint8(t))
}

// IsMember reports whether the category takes a metadata member token.
func (t OperandType) IsMember() bool {
	switch t {
	case InlineField, InlineMethod, InlineType, InlineTok:
		return true
	}
	return false
}

// StackBehaviour is an abstract stack effect class.
type StackBehaviour uint8

const (
	Pop0 StackBehaviour = iota
	Pop1
	Pop1Pop1
	Popi
	PopiPop1
	PopiPopi
	PopiPopi8
	PopiPopiPopi
	PopiPopr4
	PopiPopr8
	Popref
	PoprefPop1
	PoprefPopi
	PoprefPopiPopi
	PoprefPopiPopi8
	PoprefPopiPopr4
	PoprefPopiPopr8
	PoprefPopiPopref
	PoprefPopiPop1
	Varpop

	Push0
	Push1
	Push1Push1
	Pushi
	Pushi8
	Pushr4
	Pushr8
	Pushref
	Varpush
)

// fixedPop is the pop count of each fixed pop class.
var fixedPop = map[StackBehaviour]int{
	Pop0:             0,
	Pop1:             1,
	Popi:             1,
	Popref:           1,
	Pop1Pop1:         2,
	PopiPop1:         2,
	PopiPopi:         2,
	PopiPopi8:        2,
	PopiPopr4:        2,
	PopiPopr8:        2,
	PoprefPop1:       2,
	PoprefPopi:       2,
	PopiPopiPopi:     3,
	PoprefPopiPopi:   3,
	PoprefPopiPopi8:  3,
	PoprefPopiPopr4:  3,
	PoprefPopiPopr8:  3,
	PoprefPopiPopref: 3,
	PoprefPopiPop1:   3,
}

var fixedPush = map[StackBehaviour]int{
	Push0:      0,
	Push1:      1,
	Pushi:      1,
	Pushi8:     1,
	Pushr4:     1,
	Pushr8:     1,
	Pushref:    1,
	Push1Push1: 2,
}

// FlowControl describes how an opcode affects control flow.
type FlowControl uint8

const (
	FlowNext FlowControl = iota
	FlowBreak
	FlowCall
	FlowReturn
	FlowBranch
	FlowCondBranch
	FlowThrow
	FlowMeta
)

// OpCode describes one opcode.
type OpCode struct {
	Name        string
	Code        Code
	OperandType OperandType
	Pop         StackBehaviour
	Push        StackBehaviour
	Flow        FlowControl
}

// Size returns the encoded size of the opcode itself.
func (o OpCode) Size() int {
	return o.Code.Size()
}

var (
	oneByte [256]*OpCode
	twoByte [256]*OpCode
	byName  = make(map[string]*OpCode, len(opcodeTable))
)

func init() {
	for i := range opcodeTable {
		op := &opcodeTable[i]
		if op.Code.IsTwoByte() {
			twoByte[op.Code&0xFF] = op
		} else {
			oneByte[op.Code] = op
		}
		byName[op.Name] = op
	}
}

// Lookup returns the descriptor of c.
func Lookup(c Code) (OpCode, bool) {
	var op *OpCode
	switch {
	case c < 0x100:
		op = oneByte[c]
	case c&0xFF00 == 0xFE00:
		op = twoByte[c&0xFF]
	}
	if op == nil {
		return OpCode{}, false
	}
	return *op, true
}

// LookupName returns the opcode with the given mnemonic, e.g. "ldc.i4.s".
func LookupName(name string) (OpCode, bool) {
	op, ok := byName[name]
	if !ok {
		return OpCode{}, false
	}
	return *op, true
}

// IsTwoByte reports whether c is encoded with the 0xFE prefix.
func (c Code) IsTwoByte() bool {
	return c&0xFF00 == 0xFE00
}

// Size returns 1 or 2, the encoded width of the opcode.
func (c Code) Size() int {
	if c.IsTwoByte() {
		return 2
	}
	return 1
}

// Valid reports whether c is a defined opcode.
func (c Code) Valid() bool {
	_, ok := Lookup(c)
	return ok
}

// OperandType returns the operand category of c. Undefined opcodes report
// InlinePhi, which has no size or stack handling.
func (c Code) OperandType() OperandType {
	op, ok := Lookup(c)
	if !ok {
		return InlinePhi
	}
	return op.OperandType
}

func (c Code) String() string {
	if op, ok := Lookup(c); ok {
		return op.Name
	}
	return fmt.Sprintf("opcode(0x%X)", uint16(c))
}
