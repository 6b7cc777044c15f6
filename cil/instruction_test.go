package cil_test

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/token"
)

type fakeSig struct {
	params  int
	hasThis bool
	voidRet bool
}

func (s fakeSig) ParameterCount() int { return s.params }
func (s fakeSig) HasThis() bool       { return s.hasThis }
func (s fakeSig) ReturnsVoid() bool   { return s.voidRet }

type fakeMethod struct {
	sig  cil.Signature
	name string
	tok  token.Token
}

func (m *fakeMethod) Token() token.Token           { return m.tok }
func (m *fakeMethod) CallSignature() cil.Signature { return m.sig }
func (m *fakeMethod) String() string               { return m.name }

type plainMember struct {
	tok token.Token
}

func (m plainMember) Token() token.Token { return m.tok }

func mustCreate(t *testing.T, code cil.Code, op cil.Operand) *cil.Instruction {
	t.Helper()
	ins, err := cil.Create(code, op)
	if err != nil {
		t.Fatalf("Create(%v): %v", code, err)
	}
	return ins
}

func TestFixedOperandSizes(t *testing.T) {
	member := plainMember{tok: token.New(token.Field, 1)}
	target := &cil.Instruction{Offset: 0x10, OpCode: cil.Nop}

	tests := []struct {
		code cil.Code
		ops  []cil.Operand
		want int
	}{
		{cil.Nop, []cil.Operand{nil}, 1},
		{cil.Readonly, []cil.Operand{nil}, 2},
		{cil.LdcI4S, []cil.Operand{cil.I8Imm{Value: 0}, cil.I8Imm{Value: -128}}, 2},
		{cil.LdcI4, []cil.Operand{cil.I32Imm{Value: 0}, cil.I32Imm{Value: 1 << 30}}, 5},
		{cil.LdcI8, []cil.Operand{cil.I64Imm{Value: -1}, cil.I64Imm{Value: 1 << 60}}, 9},
		{cil.LdcR4, []cil.Operand{cil.R4Imm{Value: 1.5}}, 5},
		{cil.LdcR8, []cil.Operand{cil.R8Imm{Value: 2.25}}, 9},
		{cil.Ldstr, []cil.Operand{cil.StringImm{Value: ""}, cil.StringImm{Value: "a long string literal"}}, 5},
		{cil.Ldfld, []cil.Operand{cil.MemberImm{Member: member}, cil.TokenImm{Token: member.tok}}, 5},
		{cil.LdargS, []cil.Operand{cil.ArgImm{Index: 0}, cil.ArgImm{Index: 255}}, 2},
		{cil.Ldarg, []cil.Operand{cil.ArgImm{Index: 1000}}, 4},
		{cil.StlocS, []cil.Operand{cil.VarImm{Index: 3}}, 2},
		{cil.Ldloca, []cil.Operand{cil.VarImm{Index: 3}}, 4},
		{cil.BrS, []cil.Operand{cil.BranchImm{Target: target}}, 2},
		{cil.Leave, []cil.Operand{cil.BranchImm{Target: target}}, 5},
		{cil.Unaligned, []cil.Operand{cil.I8Imm{Value: 1}}, 3},
		{cil.Calli, []cil.Operand{cil.SigImm{Member: member}}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			for _, op := range tt.ops {
				got, err := mustCreate(t, tt.code, op).Size()
				if err != nil {
					t.Fatal(err)
				}
				if got != tt.want {
					t.Errorf("Size = %d, want %d", got, tt.want)
				}
			}
		})
	}
}

func TestSwitchSize(t *testing.T) {
	a := &cil.Instruction{Offset: 1}
	tests := []struct {
		name    string
		targets []*cil.Instruction
		want    int
	}{
		{"empty", nil, 5},
		{"one", []*cil.Instruction{a}, 9},
		{"three", []*cil.Instruction{a, a, a}, 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := cil.NewSwitch(cil.Switch, tt.targets)
			if err != nil {
				t.Fatal(err)
			}
			if got, _ := ins.Size(); got != tt.want {
				t.Errorf("Size = %d, want %d", got, tt.want)
			}
		})
	}

	bare := &cil.Instruction{OpCode: cil.Switch}
	if got, _ := bare.Size(); got != 5 {
		t.Errorf("switch without table Size = %d, want 5", got)
	}
}

func TestOperandMismatch(t *testing.T) {
	tests := []struct {
		name string
		code cil.Code
		op   cil.Operand
	}{
		{"operand on nop", cil.Nop, cil.I32Imm{Value: 1}},
		{"missing operand", cil.LdcI4, nil},
		{"int8 for int32", cil.LdcI4, cil.I8Imm{Value: 1}},
		{"string on ldfld", cil.Ldfld, cil.StringImm{Value: "x"}},
		{"var on ldarg", cil.LdargS, cil.VarImm{Index: 1}},
		{"nil branch target", cil.Br, cil.BranchImm{}},
		{"member on calli", cil.Calli, cil.MemberImm{Member: plainMember{}}},
		{"nil member", cil.Call, cil.MemberImm{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cil.Create(tt.code, tt.op)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConstruct, Kind: errors.KindOperandMismatch}) {
				t.Errorf("err = %v, want operand_mismatch", err)
			}
		})
	}

	if _, err := cil.NewI32(cil.Nop, 1); !errors.IsKind(err, errors.KindOperandMismatch) {
		t.Errorf("NewI32(nop) err = %v", err)
	}
	ins, err := cil.NewNone(cil.Nop)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := ins.Size(); n != 1 {
		t.Errorf("nop size = %d", n)
	}
}

func TestUnsupportedCategory(t *testing.T) {
	ins := &cil.Instruction{OpCode: 0x24}
	if _, err := ins.Size(); !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("Size err = %v, want unsupported", err)
	}
	if _, err := ins.StackPopCount(nil); !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("StackPopCount err = %v, want unsupported", err)
	}
	if _, err := cil.Create(0x24, nil); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("Create err = %v, want invalid_input", err)
	}
}

func TestCallStackEffects(t *testing.T) {
	instance := &fakeMethod{sig: fakeSig{params: 2, hasThis: true}, tok: token.New(token.Method, 1)}
	static := &fakeMethod{sig: fakeSig{params: 3, voidRet: true}, tok: token.New(token.Method, 2)}
	ctor := &fakeMethod{sig: fakeSig{params: 1, hasThis: true, voidRet: true}, tok: token.New(token.MemberRef, 1)}
	unresolved := &fakeMethod{tok: token.New(token.MemberRef, 2)}

	tests := []struct {
		name      string
		ins       *cil.Instruction
		pop, push int
	}{
		{"call instance", mustCreate(t, cil.Call, cil.MemberImm{Member: instance}), 3, 1},
		{"callvirt instance", mustCreate(t, cil.Callvirt, cil.MemberImm{Member: instance}), 3, 1},
		{"call static void", mustCreate(t, cil.Call, cil.MemberImm{Member: static}), 3, 0},
		{"newobj", mustCreate(t, cil.Newobj, cil.MemberImm{Member: ctor}), 1, 1},
		{"calli", mustCreate(t, cil.Calli, cil.SigImm{Member: static}), 3, 0},
		{"call unresolved", mustCreate(t, cil.Call, cil.MemberImm{Member: unresolved}), 0, 0},
		{"call raw token", mustCreate(t, cil.Call, cil.TokenImm{Token: unresolved.tok}), 0, 0},
		{"stelem", mustCreate(t, cil.Stelem, cil.MemberImm{Member: plainMember{}}), 3, 0},
		{"dup", mustCreate(t, cil.Dup, nil), 1, 2},
		{"stind.i8", mustCreate(t, cil.StindI8, nil), 2, 0},
		{"cpblk", mustCreate(t, cil.Cpblk, nil), 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop, err := tt.ins.StackPopCount(nil)
			if err != nil {
				t.Fatal(err)
			}
			push, err := tt.ins.StackPushCount(nil)
			if err != nil {
				t.Fatal(err)
			}
			if pop != tt.pop || push != tt.push {
				t.Errorf("pop/push = %d/%d, want %d/%d", pop, push, tt.pop, tt.push)
			}
			delta, _ := tt.ins.StackDelta(nil)
			if delta != tt.push-tt.pop {
				t.Errorf("delta = %d", delta)
			}
		})
	}
}

func TestReturnStackEffect(t *testing.T) {
	ret := mustCreate(t, cil.Ret, nil)
	tests := []struct {
		name string
		body *cil.MethodBody
		want int
	}{
		{"void", &cil.MethodBody{Signature: fakeSig{voidRet: true}}, 0},
		{"value", &cil.MethodBody{Signature: fakeSig{}}, 1},
		{"no body", nil, 0},
		{"no signature", &cil.MethodBody{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ret.StackPopCount(tt.body)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("pop = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOperandString(t *testing.T) {
	a := &cil.Instruction{Offset: 0x1A}
	b := &cil.Instruction{Offset: 0x2B}
	m := &fakeMethod{name: "System.Object::.ctor", tok: token.New(token.MemberRef, 1)}

	tests := []struct {
		ins  *cil.Instruction
		want string
	}{
		{mustCreate(t, cil.Nop, nil), ""},
		{mustCreate(t, cil.LdcI4S, cil.I8Imm{Value: -3}), "-3"},
		{mustCreate(t, cil.LdcI8, cil.I64Imm{Value: 1 << 40}), "1099511627776"},
		{mustCreate(t, cil.LdcR8, cil.R8Imm{Value: 0.5}), "0.5"},
		{mustCreate(t, cil.Ldstr, cil.StringImm{Value: `say "hi"`}), `"say \"hi\""`},
		{mustCreate(t, cil.Ldstr, cil.TokenImm{Token: token.New(token.UserString, 1)}), "TOKEN<0x70000001>"},
		{mustCreate(t, cil.Newobj, cil.MemberImm{Member: m}), "System.Object::.ctor"},
		{mustCreate(t, cil.Ldsfld, cil.MemberImm{Member: plainMember{tok: token.New(token.Field, 2)}}), "TOKEN<0x04000002>"},
		{mustCreate(t, cil.Br, cil.BranchImm{Target: a}), "IL_001A"},
		{mustCreate(t, cil.Switch, cil.SwitchImm{Targets: []*cil.Instruction{a, b}}), "IL_001A, IL_002B"},
		{mustCreate(t, cil.LdlocS, cil.VarImm{Index: 4}), "V_4"},
		{mustCreate(t, cil.Starg, cil.ArgImm{Index: 1}), "A_1"},
	}
	for _, tt := range tests {
		t.Run(tt.ins.OpCode.String(), func(t *testing.T) {
			if got := tt.ins.OperandString(); got != tt.want {
				t.Errorf("OperandString = %q, want %q", got, tt.want)
			}
		})
	}

	ins := mustCreate(t, cil.LdcI4, cil.I32Imm{Value: 7})
	ins.Offset = 0x0C
	if got := ins.String(); got != "IL_000C: ldc.i4 7" {
		t.Errorf("String = %q", got)
	}
}

func TestEqualAndHash(t *testing.T) {
	m := &fakeMethod{tok: token.New(token.Method, 5)}
	target := &cil.Instruction{Offset: 8, OpCode: cil.Ret}
	sameTarget := &cil.Instruction{Offset: 8, OpCode: cil.Ret}

	a := &cil.Instruction{Offset: 2, OpCode: cil.Call, Operand: cil.MemberImm{Member: m}}
	b := &cil.Instruction{Offset: 2, OpCode: cil.Call, Operand: cil.MemberImm{Member: m}}
	c := &cil.Instruction{Offset: 3, OpCode: cil.Call, Operand: cil.MemberImm{Member: m}}
	br1 := &cil.Instruction{Offset: 0, OpCode: cil.BrS, Operand: cil.BranchImm{Target: target}}
	br2 := &cil.Instruction{Offset: 0, OpCode: cil.BrS, Operand: cil.BranchImm{Target: sameTarget}}
	sw1 := &cil.Instruction{OpCode: cil.Switch, Operand: cil.SwitchImm{Targets: []*cil.Instruction{target}}}
	sw2 := &cil.Instruction{OpCode: cil.Switch, Operand: cil.SwitchImm{Targets: []*cil.Instruction{sameTarget}}}
	sw3 := &cil.Instruction{OpCode: cil.Switch, Operand: cil.SwitchImm{}}

	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Error("identical instructions differ")
	}
	if a.Equal(c) {
		t.Error("different offsets compare equal")
	}
	if !br1.Equal(br2) || br1.Hash() != br2.Hash() {
		t.Error("branches to the same offset differ")
	}
	if !sw1.Equal(sw2) || sw1.Equal(sw3) {
		t.Error("switch equality wrong")
	}

	set := map[uint64]*cil.Instruction{a.Hash(): a}
	if got := set[b.Hash()]; !got.Equal(b) {
		t.Error("hash lookup failed")
	}
}

func TestLookup(t *testing.T) {
	op, ok := cil.LookupName("ldc.i4.s")
	if !ok || op.Code != cil.LdcI4S || op.OperandType != cil.ShortInlineI {
		t.Errorf("LookupName = %+v, %v", op, ok)
	}
	op, ok = cil.Lookup(cil.Ceq)
	if !ok || op.Size() != 2 || op.Name != "ceq" {
		t.Errorf("Lookup(ceq) = %+v, %v", op, ok)
	}
	if cil.Code(0xFE08).Valid() {
		t.Error("0xFE08 is undefined")
	}
	if cil.Ret.OperandType() != cil.InlineNone {
		t.Error("ret has no operand")
	}
}
