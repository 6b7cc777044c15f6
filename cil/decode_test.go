package cil_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/wippyai/clrmeta/cil"
	"github.com/wippyai/clrmeta/errors"
	"github.com/wippyai/clrmeta/token"
)

type mapResolver struct {
	members map[token.Token]cil.Member
	strings map[token.Token]string
}

func (r *mapResolver) ResolveMember(tok token.Token) (cil.Member, error) {
	if m, ok := r.members[tok]; ok {
		return m, nil
	}
	return nil, errors.NotFound(errors.PhaseResolve, "member", tok)
}

func (r *mapResolver) ResolveString(tok token.Token) (string, error) {
	if s, ok := r.strings[tok]; ok {
		return s, nil
	}
	return "", errors.NotFound(errors.PhaseResolve, "string", tok)
}

func TestDecodeBranches(t *testing.T) {
	code := []byte{
		0x02,       // IL_0000 ldarg.0
		0x2C, 0x04, // IL_0001 brfalse.s IL_0007
		0x1F, 0x05, // IL_0003 ldc.i4.s 5
		0x2B, 0x01, // IL_0005 br.s IL_0008
		0x16, // IL_0007 ldc.i4.0
		0x2A, // IL_0008 ret
	}
	instrs, err := cil.Decode(code, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(instrs) != 6 {
		t.Fatalf("decoded %d instructions, want 6", len(instrs))
	}
	br := instrs[1].Operand.(cil.BranchImm)
	if br.Target != instrs[4] {
		t.Errorf("brfalse.s target = %v", br.Target)
	}
	if instrs[3].Operand.(cil.BranchImm).Target != instrs[5] {
		t.Error("br.s target not linked to ret")
	}
	if got := instrs[2].Operand.(cil.I8Imm).Value; got != 5 {
		t.Errorf("ldc.i4.s = %d", got)
	}

	out, err := cil.Encode(instrs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, code) {
		t.Errorf("re-encoded\n got % x\nwant % x", out, code)
	}
}

func TestDecodeSwitch(t *testing.T) {
	code := []byte{
		0x02,
		0x45, 0x02, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x00,
		0x2A,
	}
	instrs, err := cil.Decode(code, nil)
	if err != nil {
		t.Fatal(err)
	}
	sw := instrs[1].Operand.(cil.SwitchImm)
	if len(sw.Targets) != 2 || sw.Targets[0] != instrs[2] || sw.Targets[1] != instrs[3] {
		t.Fatalf("switch targets = %v", sw.Targets)
	}
	if n, _ := instrs[1].Size(); n != 13 {
		t.Errorf("switch size = %d", n)
	}
	if got := instrs[1].OperandString(); got != "IL_000E, IL_000F" {
		t.Errorf("switch operand = %q", got)
	}
	out, err := cil.Encode(instrs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, code) {
		t.Errorf("re-encoded % x", out)
	}
}

func TestDecodeResolvesTokens(t *testing.T) {
	ctor := &fakeMethod{name: "ctor", tok: token.New(token.MemberRef, 1), sig: fakeSig{hasThis: true, voidRet: true}}
	res := &mapResolver{
		members: map[token.Token]cil.Member{ctor.tok: ctor},
		strings: map[token.Token]string{token.New(token.UserString, 1): "hello"},
	}
	code := []byte{
		0x72, 0x01, 0x00, 0x00, 0x70, // ldstr "hello"
		0x73, 0x01, 0x00, 0x00, 0x0A, // newobj ctor
		0x28, 0x07, 0x00, 0x00, 0x0A, // call 0x0A000007 (unknown)
		0x2A,
	}
	instrs, err := cil.Decode(code, res)
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := instrs[0].Operand.(cil.StringImm); !ok || s.Value != "hello" {
		t.Errorf("ldstr operand = %#v", instrs[0].Operand)
	}
	if m, ok := instrs[1].Operand.(cil.MemberImm); !ok || m.Member != ctor {
		t.Errorf("newobj operand = %#v", instrs[1].Operand)
	}
	if tok, ok := instrs[2].Operand.(cil.TokenImm); !ok || tok.Token != token.New(token.MemberRef, 7) {
		t.Errorf("unresolved operand = %#v", instrs[2].Operand)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"undefined opcode", []byte{0x24}},
		{"branch into operand", []byte{0x2B, 0xFF, 0x2A}},
		{"truncated operand", []byte{0x20, 0x01}},
		{"oversized switch", []byte{0x45, 0xFF, 0xFF, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cil.Decode(tt.code, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

type recordingProvider struct {
	strings []string
}

func (p *recordingProvider) MemberToken(m cil.Member) (token.Token, error) {
	return token.New(m.Token().Kind, m.Token().Rid+100), nil
}

func (p *recordingProvider) StringToken(s string) (token.Token, error) {
	p.strings = append(p.strings, s)
	return token.New(token.UserString, uint32(len(p.strings))), nil
}

func TestEncodeWithProvider(t *testing.T) {
	m := plainMember{tok: token.New(token.Field, 1)}
	var instrs []*cil.Instruction
	for _, step := range []struct {
		code cil.Code
		op   cil.Operand
	}{
		{cil.Ldstr, cil.StringImm{Value: "x"}},
		{cil.Stsfld, cil.MemberImm{Member: m}},
		{cil.Ret, nil},
	} {
		instrs = append(instrs, mustCreate(t, step.code, step.op))
	}
	size, err := cil.ComputeOffsets(instrs)
	if err != nil || size != 11 {
		t.Fatalf("ComputeOffsets = %d, %v", size, err)
	}

	p := &recordingProvider{}
	out, err := cil.Encode(instrs, p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x72, 0x01, 0x00, 0x00, 0x70, 0x80, 0x65, 0x00, 0x00, 0x04, 0x2A}
	if !bytes.Equal(out, want) {
		t.Errorf("got % x, want % x", out, want)
	}

	if _, err := cil.Encode(instrs[:1], nil); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("string without provider err = %v", err)
	}
}

func TestEncodeOverflow(t *testing.T) {
	target := &cil.Instruction{Offset: 300, OpCode: cil.Ret}
	br := mustCreate(t, cil.BrS, cil.BranchImm{Target: target})
	if _, err := cil.Encode([]*cil.Instruction{br}, nil); !errors.IsKind(err, errors.KindOverflow) {
		t.Errorf("short branch err = %v", err)
	}
	ld := mustCreate(t, cil.LdlocS, cil.VarImm{Index: 256})
	if _, err := cil.Encode([]*cil.Instruction{ld}, nil); !errors.IsKind(err, errors.KindOverflow) {
		t.Errorf("short var err = %v", err)
	}
}

func TestMethodBodyTiny(t *testing.T) {
	body := &cil.MethodBody{MaxStack: 8}
	body.Instructions = append(body.Instructions, mustCreate(t, cil.Ldnull, nil), mustCreate(t, cil.Ret, nil))
	if _, err := cil.ComputeOffsets(body.Instructions); err != nil {
		t.Fatal(err)
	}
	data, err := body.Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x0A, 0x14, 0x2A}; !bytes.Equal(data, want) {
		t.Errorf("tiny body = % x, want % x", data, want)
	}
	if n, _ := cil.BodySize(append(data, 0xCC, 0xCC)); n != 3 {
		t.Errorf("BodySize = %d", n)
	}
}

func TestMethodBodyFatWithHandlers(t *testing.T) {
	catchType := plainMember{tok: token.New(token.TypeRef, 1)}
	code := []byte{0x00, 0xDE, 0x03, 0x26, 0xDE, 0x00, 0x2A}
	instrs, err := cil.Decode(code, nil)
	if err != nil {
		t.Fatal(err)
	}
	body := &cil.MethodBody{
		Instructions:     instrs,
		MaxStack:         2,
		InitLocals:       true,
		LocalVarSigToken: token.New(token.StandAloneSig, 1),
		ExceptionHandlers: []cil.ExceptionHandler{{
			Kind:         cil.HandlerException,
			TryStart:     instrs[0],
			TryEnd:       instrs[2],
			HandlerStart: instrs[2],
			HandlerEnd:   instrs[4],
			CatchType:    catchType,
		}},
	}
	data, err := body.Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 36 {
		t.Errorf("encoded size = %d, want 36", len(data))
	}
	if n, err := cil.BodySize(data); err != nil || n != len(data) {
		t.Errorf("BodySize = %d, %v", n, err)
	}

	res := &mapResolver{members: map[token.Token]cil.Member{catchType.tok: catchType}}
	parsed, err := cil.ParseBody(data, res)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.InitLocals || parsed.MaxStack != 2 || parsed.LocalVarSigToken != body.LocalVarSigToken {
		t.Errorf("header = %+v", parsed)
	}
	if len(parsed.Instructions) != len(instrs) {
		t.Fatalf("instructions = %d", len(parsed.Instructions))
	}
	for i := range instrs {
		if !instrs[i].Equal(parsed.Instructions[i]) {
			t.Errorf("instruction %d: %v != %v", i, parsed.Instructions[i], instrs[i])
		}
	}
	if len(parsed.ExceptionHandlers) != 1 {
		t.Fatalf("handlers = %d", len(parsed.ExceptionHandlers))
	}
	eh := parsed.ExceptionHandlers[0]
	if eh.TryStart.Offset != 0 || eh.TryEnd.Offset != 3 || eh.HandlerEnd.Offset != 6 {
		t.Errorf("handler = %s %s %s", eh.TryStart.Label(), eh.TryEnd.Label(), eh.HandlerEnd.Label())
	}
	if eh.CatchType != catchType || eh.CatchToken != catchType.tok {
		t.Errorf("catch type = %v / %v", eh.CatchType, eh.CatchToken)
	}
}

func TestMethodBodyShortSection(t *testing.T) {
	header := []byte{
		0x0B, 0x30, // fat, more sections
		0x08, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00,             // nop
		0x00, 0x00, 0x00, // padding
	}
	tests := []struct {
		name    string
		section []byte
	}{
		{"empty chained", []byte{0x80, 0x00, 0x00, 0x00}},
		{"empty fat chained", []byte{0xC0, 0x00, 0x00, 0x00}},
		{"header only EH", []byte{0x01, 0x02, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append(append([]byte{}, header...), tt.section...)
			if _, err := cil.BodySize(data); !errors.IsKind(err, errors.KindInvalidData) {
				t.Errorf("BodySize err = %v", err)
			}
			if _, err := cil.ParseBody(data, nil); !errors.IsKind(err, errors.KindInvalidData) {
				t.Errorf("ParseBody err = %v", err)
			}
		})
	}
}

func ExampleNewI8() {
	ins, _ := cil.NewI8(cil.LdcI4S, 42)
	size, _ := ins.Size()
	fmt.Println(ins, size)
	// Output: IL_0000: ldc.i4.s 42 2
}
