// Opcode table, ECMA-335 Partition III.

package cil

// Opcode values. Two-byte opcodes carry the 0xFE prefix in the high byte.
const (
	Nop         Code = 0x00   // nop
	Break       Code = 0x01   // break
	Ldarg0      Code = 0x02   // ldarg.0
	Ldarg1      Code = 0x03   // ldarg.1
	Ldarg2      Code = 0x04   // ldarg.2
	Ldarg3      Code = 0x05   // ldarg.3
	Ldloc0      Code = 0x06   // ldloc.0
	Ldloc1      Code = 0x07   // ldloc.1
	Ldloc2      Code = 0x08   // ldloc.2
	Ldloc3      Code = 0x09   // ldloc.3
	Stloc0      Code = 0x0A   // stloc.0
	Stloc1      Code = 0x0B   // stloc.1
	Stloc2      Code = 0x0C   // stloc.2
	Stloc3      Code = 0x0D   // stloc.3
	LdargS      Code = 0x0E   // ldarg.s
	LdargaS     Code = 0x0F   // ldarga.s
	StargS      Code = 0x10   // starg.s
	LdlocS      Code = 0x11   // ldloc.s
	LdlocaS     Code = 0x12   // ldloca.s
	StlocS      Code = 0x13   // stloc.s
	Ldnull      Code = 0x14   // ldnull
	LdcI4M1     Code = 0x15   // ldc.i4.m1
	LdcI40      Code = 0x16   // ldc.i4.0
	LdcI41      Code = 0x17   // ldc.i4.1
	LdcI42      Code = 0x18   // ldc.i4.2
	LdcI43      Code = 0x19   // ldc.i4.3
	LdcI44      Code = 0x1A   // ldc.i4.4
	LdcI45      Code = 0x1B   // ldc.i4.5
	LdcI46      Code = 0x1C   // ldc.i4.6
	LdcI47      Code = 0x1D   // ldc.i4.7
	LdcI48      Code = 0x1E   // ldc.i4.8
	LdcI4S      Code = 0x1F   // ldc.i4.s
	LdcI4       Code = 0x20   // ldc.i4
	LdcI8       Code = 0x21   // ldc.i8
	LdcR4       Code = 0x22   // ldc.r4
	LdcR8       Code = 0x23   // ldc.r8
	Dup         Code = 0x25   // dup
	Pop         Code = 0x26   // pop
	Jmp         Code = 0x27   // jmp
	Call        Code = 0x28   // call
	Calli       Code = 0x29   // calli
	Ret         Code = 0x2A   // ret
	BrS         Code = 0x2B   // br.s
	BrfalseS    Code = 0x2C   // brfalse.s
	BrtrueS     Code = 0x2D   // brtrue.s
	BeqS        Code = 0x2E   // beq.s
	BgeS        Code = 0x2F   // bge.s
	BgtS        Code = 0x30   // bgt.s
	BleS        Code = 0x31   // ble.s
	BltS        Code = 0x32   // blt.s
	BneUnS      Code = 0x33   // bne.un.s
	BgeUnS      Code = 0x34   // bge.un.s
	BgtUnS      Code = 0x35   // bgt.un.s
	BleUnS      Code = 0x36   // ble.un.s
	BltUnS      Code = 0x37   // blt.un.s
	Br          Code = 0x38   // br
	Brfalse     Code = 0x39   // brfalse
	Brtrue      Code = 0x3A   // brtrue
	Beq         Code = 0x3B   // beq
	Bge         Code = 0x3C   // bge
	Bgt         Code = 0x3D   // bgt
	Ble         Code = 0x3E   // ble
	Blt         Code = 0x3F   // blt
	BneUn       Code = 0x40   // bne.un
	BgeUn       Code = 0x41   // bge.un
	BgtUn       Code = 0x42   // bgt.un
	BleUn       Code = 0x43   // ble.un
	BltUn       Code = 0x44   // blt.un
	Switch      Code = 0x45   // switch
	LdindI1     Code = 0x46   // ldind.i1
	LdindU1     Code = 0x47   // ldind.u1
	LdindI2     Code = 0x48   // ldind.i2
	LdindU2     Code = 0x49   // ldind.u2
	LdindI4     Code = 0x4A   // ldind.i4
	LdindU4     Code = 0x4B   // ldind.u4
	LdindI8     Code = 0x4C   // ldind.i8
	LdindI      Code = 0x4D   // ldind.i
	LdindR4     Code = 0x4E   // ldind.r4
	LdindR8     Code = 0x4F   // ldind.r8
	LdindRef    Code = 0x50   // ldind.ref
	StindRef    Code = 0x51   // stind.ref
	StindI1     Code = 0x52   // stind.i1
	StindI2     Code = 0x53   // stind.i2
	StindI4     Code = 0x54   // stind.i4
	StindI8     Code = 0x55   // stind.i8
	StindR4     Code = 0x56   // stind.r4
	StindR8     Code = 0x57   // stind.r8
	Add         Code = 0x58   // add
	Sub         Code = 0x59   // sub
	Mul         Code = 0x5A   // mul
	Div         Code = 0x5B   // div
	DivUn       Code = 0x5C   // div.un
	Rem         Code = 0x5D   // rem
	RemUn       Code = 0x5E   // rem.un
	And         Code = 0x5F   // and
	Or          Code = 0x60   // or
	Xor         Code = 0x61   // xor
	Shl         Code = 0x62   // shl
	Shr         Code = 0x63   // shr
	ShrUn       Code = 0x64   // shr.un
	Neg         Code = 0x65   // neg
	Not         Code = 0x66   // not
	ConvI1      Code = 0x67   // conv.i1
	ConvI2      Code = 0x68   // conv.i2
	ConvI4      Code = 0x69   // conv.i4
	ConvI8      Code = 0x6A   // conv.i8
	ConvR4      Code = 0x6B   // conv.r4
	ConvR8      Code = 0x6C   // conv.r8
	ConvU4      Code = 0x6D   // conv.u4
	ConvU8      Code = 0x6E   // conv.u8
	Callvirt    Code = 0x6F   // callvirt
	Cpobj       Code = 0x70   // cpobj
	Ldobj       Code = 0x71   // ldobj
	Ldstr       Code = 0x72   // ldstr
	Newobj      Code = 0x73   // newobj
	Castclass   Code = 0x74   // castclass
	Isinst      Code = 0x75   // isinst
	ConvRUn     Code = 0x76   // conv.r.un
	Unbox       Code = 0x79   // unbox
	Throw       Code = 0x7A   // throw
	Ldfld       Code = 0x7B   // ldfld
	Ldflda      Code = 0x7C   // ldflda
	Stfld       Code = 0x7D   // stfld
	Ldsfld      Code = 0x7E   // ldsfld
	Ldsflda     Code = 0x7F   // ldsflda
	Stsfld      Code = 0x80   // stsfld
	Stobj       Code = 0x81   // stobj
	ConvOvfI1Un Code = 0x82   // conv.ovf.i1.un
	ConvOvfI2Un Code = 0x83   // conv.ovf.i2.un
	ConvOvfI4Un Code = 0x84   // conv.ovf.i4.un
	ConvOvfI8Un Code = 0x85   // conv.ovf.i8.un
	ConvOvfU1Un Code = 0x86   // conv.ovf.u1.un
	ConvOvfU2Un Code = 0x87   // conv.ovf.u2.un
	ConvOvfU4Un Code = 0x88   // conv.ovf.u4.un
	ConvOvfU8Un Code = 0x89   // conv.ovf.u8.un
	ConvOvfIUn  Code = 0x8A   // conv.ovf.i.un
	ConvOvfUUn  Code = 0x8B   // conv.ovf.u.un
	Box         Code = 0x8C   // box
	Newarr      Code = 0x8D   // newarr
	Ldlen       Code = 0x8E   // ldlen
	Ldelema     Code = 0x8F   // ldelema
	LdelemI1    Code = 0x90   // ldelem.i1
	LdelemU1    Code = 0x91   // ldelem.u1
	LdelemI2    Code = 0x92   // ldelem.i2
	LdelemU2    Code = 0x93   // ldelem.u2
	LdelemI4    Code = 0x94   // ldelem.i4
	LdelemU4    Code = 0x95   // ldelem.u4
	LdelemI8    Code = 0x96   // ldelem.i8
	LdelemI     Code = 0x97   // ldelem.i
	LdelemR4    Code = 0x98   // ldelem.r4
	LdelemR8    Code = 0x99   // ldelem.r8
	LdelemRef   Code = 0x9A   // ldelem.ref
	StelemI     Code = 0x9B   // stelem.i
	StelemI1    Code = 0x9C   // stelem.i1
	StelemI2    Code = 0x9D   // stelem.i2
	StelemI4    Code = 0x9E   // stelem.i4
	StelemI8    Code = 0x9F   // stelem.i8
	StelemR4    Code = 0xA0   // stelem.r4
	StelemR8    Code = 0xA1   // stelem.r8
	StelemRef   Code = 0xA2   // stelem.ref
	Ldelem      Code = 0xA3   // ldelem
	Stelem      Code = 0xA4   // stelem
	UnboxAny    Code = 0xA5   // unbox.any
	ConvOvfI1   Code = 0xB3   // conv.ovf.i1
	ConvOvfU1   Code = 0xB4   // conv.ovf.u1
	ConvOvfI2   Code = 0xB5   // conv.ovf.i2
	ConvOvfU2   Code = 0xB6   // conv.ovf.u2
	ConvOvfI4   Code = 0xB7   // conv.ovf.i4
	ConvOvfU4   Code = 0xB8   // conv.ovf.u4
	ConvOvfI8   Code = 0xB9   // conv.ovf.i8
	ConvOvfU8   Code = 0xBA   // conv.ovf.u8
	Refanyval   Code = 0xC2   // refanyval
	Ckfinite    Code = 0xC3   // ckfinite
	Mkrefany    Code = 0xC6   // mkrefany
	Ldtoken     Code = 0xD0   // ldtoken
	ConvU2      Code = 0xD1   // conv.u2
	ConvU1      Code = 0xD2   // conv.u1
	ConvI       Code = 0xD3   // conv.i
	ConvOvfI    Code = 0xD4   // conv.ovf.i
	ConvOvfU    Code = 0xD5   // conv.ovf.u
	AddOvf      Code = 0xD6   // add.ovf
	AddOvfUn    Code = 0xD7   // add.ovf.un
	MulOvf      Code = 0xD8   // mul.ovf
	MulOvfUn    Code = 0xD9   // mul.ovf.un
	SubOvf      Code = 0xDA   // sub.ovf
	SubOvfUn    Code = 0xDB   // sub.ovf.un
	Endfinally  Code = 0xDC   // endfinally
	Leave       Code = 0xDD   // leave
	LeaveS      Code = 0xDE   // leave.s
	StindI      Code = 0xDF   // stind.i
	ConvU       Code = 0xE0   // conv.u
	Arglist     Code = 0xFE00 // arglist
	Ceq         Code = 0xFE01 // ceq
	Cgt         Code = 0xFE02 // cgt
	CgtUn       Code = 0xFE03 // cgt.un
	Clt         Code = 0xFE04 // clt
	CltUn       Code = 0xFE05 // clt.un
	Ldftn       Code = 0xFE06 // ldftn
	Ldvirtftn   Code = 0xFE07 // ldvirtftn
	Ldarg       Code = 0xFE09 // ldarg
	Ldarga      Code = 0xFE0A // ldarga
	Starg       Code = 0xFE0B // starg
	Ldloc       Code = 0xFE0C // ldloc
	Ldloca      Code = 0xFE0D // ldloca
	Stloc       Code = 0xFE0E // stloc
	Localloc    Code = 0xFE0F // localloc
	Endfilter   Code = 0xFE11 // endfilter
	Unaligned   Code = 0xFE12 // unaligned.
	Volatile    Code = 0xFE13 // volatile.
	Tail        Code = 0xFE14 // tail.
	Initobj     Code = 0xFE15 // initobj
	Constrained Code = 0xFE16 // constrained.
	Cpblk       Code = 0xFE17 // cpblk
	Initblk     Code = 0xFE18 // initblk
	No          Code = 0xFE19 // no.
	Rethrow     Code = 0xFE1A // rethrow
	Sizeof      Code = 0xFE1C // sizeof
	Refanytype  Code = 0xFE1D // refanytype
	Readonly    Code = 0xFE1E // readonly.
)

var opcodeTable = []OpCode{
	{Code: Nop, Name: "nop", OperandType: InlineNone, Pop: Pop0, Push: Push0, Flow: FlowNext},
	{Code: Break, Name: "break", OperandType: InlineNone, Pop: Pop0, Push: Push0, Flow: FlowBreak},
	{Code: Ldarg0, Name: "ldarg.0", OperandType: InlineNone, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldarg1, Name: "ldarg.1", OperandType: InlineNone, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldarg2, Name: "ldarg.2", OperandType: InlineNone, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldarg3, Name: "ldarg.3", OperandType: InlineNone, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldloc0, Name: "ldloc.0", OperandType: InlineNone, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldloc1, Name: "ldloc.1", OperandType: InlineNone, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldloc2, Name: "ldloc.2", OperandType: InlineNone, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldloc3, Name: "ldloc.3", OperandType: InlineNone, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Stloc0, Name: "stloc.0", OperandType: InlineNone, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: Stloc1, Name: "stloc.1", OperandType: InlineNone, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: Stloc2, Name: "stloc.2", OperandType: InlineNone, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: Stloc3, Name: "stloc.3", OperandType: InlineNone, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: LdargS, Name: "ldarg.s", OperandType: ShortInlineArgument, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: LdargaS, Name: "ldarga.s", OperandType: ShortInlineArgument, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: StargS, Name: "starg.s", OperandType: ShortInlineArgument, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: LdlocS, Name: "ldloc.s", OperandType: ShortInlineVar, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: LdlocaS, Name: "ldloca.s", OperandType: ShortInlineVar, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: StlocS, Name: "stloc.s", OperandType: ShortInlineVar, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: Ldnull, Name: "ldnull", OperandType: InlineNone, Pop: Pop0, Push: Pushref, Flow: FlowNext},
	{Code: LdcI4M1, Name: "ldc.i4.m1", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI40, Name: "ldc.i4.0", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI41, Name: "ldc.i4.1", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI42, Name: "ldc.i4.2", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI43, Name: "ldc.i4.3", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI44, Name: "ldc.i4.4", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI45, Name: "ldc.i4.5", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI46, Name: "ldc.i4.6", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI47, Name: "ldc.i4.7", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI48, Name: "ldc.i4.8", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI4S, Name: "ldc.i4.s", OperandType: ShortInlineI, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI4, Name: "ldc.i4", OperandType: InlineI, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: LdcI8, Name: "ldc.i8", OperandType: InlineI8, Pop: Pop0, Push: Pushi8, Flow: FlowNext},
	{Code: LdcR4, Name: "ldc.r4", OperandType: ShortInlineR, Pop: Pop0, Push: Pushr4, Flow: FlowNext},
	{Code: LdcR8, Name: "ldc.r8", OperandType: InlineR, Pop: Pop0, Push: Pushr8, Flow: FlowNext},
	{Code: Dup, Name: "dup", OperandType: InlineNone, Pop: Pop1, Push: Push1Push1, Flow: FlowNext},
	{Code: Pop, Name: "pop", OperandType: InlineNone, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: Jmp, Name: "jmp", OperandType: InlineMethod, Pop: Pop0, Push: Push0, Flow: FlowCall},
	{Code: Call, Name: "call", OperandType: InlineMethod, Pop: Varpop, Push: Varpush, Flow: FlowCall},
	{Code: Calli, Name: "calli", OperandType: InlineSig, Pop: Varpop, Push: Varpush, Flow: FlowCall},
	{Code: Ret, Name: "ret", OperandType: InlineNone, Pop: Varpop, Push: Push0, Flow: FlowReturn},
	{Code: BrS, Name: "br.s", OperandType: ShortInlineBrTarget, Pop: Pop0, Push: Push0, Flow: FlowBranch},
	{Code: BrfalseS, Name: "brfalse.s", OperandType: ShortInlineBrTarget, Pop: Popi, Push: Push0, Flow: FlowCondBranch},
	{Code: BrtrueS, Name: "brtrue.s", OperandType: ShortInlineBrTarget, Pop: Popi, Push: Push0, Flow: FlowCondBranch},
	{Code: BeqS, Name: "beq.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BgeS, Name: "bge.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BgtS, Name: "bgt.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BleS, Name: "ble.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BltS, Name: "blt.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BneUnS, Name: "bne.un.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BgeUnS, Name: "bge.un.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BgtUnS, Name: "bgt.un.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BleUnS, Name: "ble.un.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BltUnS, Name: "blt.un.s", OperandType: ShortInlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: Br, Name: "br", OperandType: InlineBrTarget, Pop: Pop0, Push: Push0, Flow: FlowBranch},
	{Code: Brfalse, Name: "brfalse", OperandType: InlineBrTarget, Pop: Popi, Push: Push0, Flow: FlowCondBranch},
	{Code: Brtrue, Name: "brtrue", OperandType: InlineBrTarget, Pop: Popi, Push: Push0, Flow: FlowCondBranch},
	{Code: Beq, Name: "beq", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: Bge, Name: "bge", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: Bgt, Name: "bgt", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: Ble, Name: "ble", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: Blt, Name: "blt", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BneUn, Name: "bne.un", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BgeUn, Name: "bge.un", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BgtUn, Name: "bgt.un", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BleUn, Name: "ble.un", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: BltUn, Name: "blt.un", OperandType: InlineBrTarget, Pop: Pop1Pop1, Push: Push0, Flow: FlowCondBranch},
	{Code: Switch, Name: "switch", OperandType: InlineSwitch, Pop: Popi, Push: Push0, Flow: FlowCondBranch},
	{Code: LdindI1, Name: "ldind.i1", OperandType: InlineNone, Pop: Popi, Push: Pushi, Flow: FlowNext},
	{Code: LdindU1, Name: "ldind.u1", OperandType: InlineNone, Pop: Popi, Push: Pushi, Flow: FlowNext},
	{Code: LdindI2, Name: "ldind.i2", OperandType: InlineNone, Pop: Popi, Push: Pushi, Flow: FlowNext},
	{Code: LdindU2, Name: "ldind.u2", OperandType: InlineNone, Pop: Popi, Push: Pushi, Flow: FlowNext},
	{Code: LdindI4, Name: "ldind.i4", OperandType: InlineNone, Pop: Popi, Push: Pushi, Flow: FlowNext},
	{Code: LdindU4, Name: "ldind.u4", OperandType: InlineNone, Pop: Popi, Push: Pushi, Flow: FlowNext},
	{Code: LdindI8, Name: "ldind.i8", OperandType: InlineNone, Pop: Popi, Push: Pushi8, Flow: FlowNext},
	{Code: LdindI, Name: "ldind.i", OperandType: InlineNone, Pop: Popi, Push: Pushi, Flow: FlowNext},
	{Code: LdindR4, Name: "ldind.r4", OperandType: InlineNone, Pop: Popi, Push: Pushr4, Flow: FlowNext},
	{Code: LdindR8, Name: "ldind.r8", OperandType: InlineNone, Pop: Popi, Push: Pushr8, Flow: FlowNext},
	{Code: LdindRef, Name: "ldind.ref", OperandType: InlineNone, Pop: Popi, Push: Pushref, Flow: FlowNext},
	{Code: StindRef, Name: "stind.ref", OperandType: InlineNone, Pop: PopiPopi, Push: Push0, Flow: FlowNext},
	{Code: StindI1, Name: "stind.i1", OperandType: InlineNone, Pop: PopiPopi, Push: Push0, Flow: FlowNext},
	{Code: StindI2, Name: "stind.i2", OperandType: InlineNone, Pop: PopiPopi, Push: Push0, Flow: FlowNext},
	{Code: StindI4, Name: "stind.i4", OperandType: InlineNone, Pop: PopiPopi, Push: Push0, Flow: FlowNext},
	{Code: StindI8, Name: "stind.i8", OperandType: InlineNone, Pop: PopiPopi8, Push: Push0, Flow: FlowNext},
	{Code: StindR4, Name: "stind.r4", OperandType: InlineNone, Pop: PopiPopr4, Push: Push0, Flow: FlowNext},
	{Code: StindR8, Name: "stind.r8", OperandType: InlineNone, Pop: PopiPopr8, Push: Push0, Flow: FlowNext},
	{Code: Add, Name: "add", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Sub, Name: "sub", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Mul, Name: "mul", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Div, Name: "div", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: DivUn, Name: "div.un", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Rem, Name: "rem", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: RemUn, Name: "rem.un", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: And, Name: "and", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Or, Name: "or", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Xor, Name: "xor", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Shl, Name: "shl", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Shr, Name: "shr", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: ShrUn, Name: "shr.un", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Neg, Name: "neg", OperandType: InlineNone, Pop: Pop1, Push: Push1, Flow: FlowNext},
	{Code: Not, Name: "not", OperandType: InlineNone, Pop: Pop1, Push: Push1, Flow: FlowNext},
	{Code: ConvI1, Name: "conv.i1", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvI2, Name: "conv.i2", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvI4, Name: "conv.i4", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvI8, Name: "conv.i8", OperandType: InlineNone, Pop: Pop1, Push: Pushi8, Flow: FlowNext},
	{Code: ConvR4, Name: "conv.r4", OperandType: InlineNone, Pop: Pop1, Push: Pushr4, Flow: FlowNext},
	{Code: ConvR8, Name: "conv.r8", OperandType: InlineNone, Pop: Pop1, Push: Pushr8, Flow: FlowNext},
	{Code: ConvU4, Name: "conv.u4", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvU8, Name: "conv.u8", OperandType: InlineNone, Pop: Pop1, Push: Pushi8, Flow: FlowNext},
	{Code: Callvirt, Name: "callvirt", OperandType: InlineMethod, Pop: Varpop, Push: Varpush, Flow: FlowCall},
	{Code: Cpobj, Name: "cpobj", OperandType: InlineType, Pop: PopiPopi, Push: Push0, Flow: FlowNext},
	{Code: Ldobj, Name: "ldobj", OperandType: InlineType, Pop: Popi, Push: Push1, Flow: FlowNext},
	{Code: Ldstr, Name: "ldstr", OperandType: InlineString, Pop: Pop0, Push: Pushref, Flow: FlowNext},
	{Code: Newobj, Name: "newobj", OperandType: InlineMethod, Pop: Varpop, Push: Pushref, Flow: FlowCall},
	{Code: Castclass, Name: "castclass", OperandType: InlineType, Pop: Popref, Push: Pushref, Flow: FlowNext},
	{Code: Isinst, Name: "isinst", OperandType: InlineType, Pop: Popref, Push: Pushi, Flow: FlowNext},
	{Code: ConvRUn, Name: "conv.r.un", OperandType: InlineNone, Pop: Pop1, Push: Pushr8, Flow: FlowNext},
	{Code: Unbox, Name: "unbox", OperandType: InlineType, Pop: Popref, Push: Pushi, Flow: FlowNext},
	{Code: Throw, Name: "throw", OperandType: InlineNone, Pop: Popref, Push: Push0, Flow: FlowThrow},
	{Code: Ldfld, Name: "ldfld", OperandType: InlineField, Pop: Popref, Push: Push1, Flow: FlowNext},
	{Code: Ldflda, Name: "ldflda", OperandType: InlineField, Pop: Popref, Push: Pushi, Flow: FlowNext},
	{Code: Stfld, Name: "stfld", OperandType: InlineField, Pop: PoprefPop1, Push: Push0, Flow: FlowNext},
	{Code: Ldsfld, Name: "ldsfld", OperandType: InlineField, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldsflda, Name: "ldsflda", OperandType: InlineField, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: Stsfld, Name: "stsfld", OperandType: InlineField, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: Stobj, Name: "stobj", OperandType: InlineType, Pop: PopiPop1, Push: Push0, Flow: FlowNext},
	{Code: ConvOvfI1Un, Name: "conv.ovf.i1.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfI2Un, Name: "conv.ovf.i2.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfI4Un, Name: "conv.ovf.i4.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfI8Un, Name: "conv.ovf.i8.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi8, Flow: FlowNext},
	{Code: ConvOvfU1Un, Name: "conv.ovf.u1.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfU2Un, Name: "conv.ovf.u2.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfU4Un, Name: "conv.ovf.u4.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfU8Un, Name: "conv.ovf.u8.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi8, Flow: FlowNext},
	{Code: ConvOvfIUn, Name: "conv.ovf.i.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfUUn, Name: "conv.ovf.u.un", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: Box, Name: "box", OperandType: InlineType, Pop: Pop1, Push: Pushref, Flow: FlowNext},
	{Code: Newarr, Name: "newarr", OperandType: InlineType, Pop: Popi, Push: Pushref, Flow: FlowNext},
	{Code: Ldlen, Name: "ldlen", OperandType: InlineNone, Pop: Popref, Push: Pushi, Flow: FlowNext},
	{Code: Ldelema, Name: "ldelema", OperandType: InlineType, Pop: PoprefPopi, Push: Pushi, Flow: FlowNext},
	{Code: LdelemI1, Name: "ldelem.i1", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushi, Flow: FlowNext},
	{Code: LdelemU1, Name: "ldelem.u1", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushi, Flow: FlowNext},
	{Code: LdelemI2, Name: "ldelem.i2", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushi, Flow: FlowNext},
	{Code: LdelemU2, Name: "ldelem.u2", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushi, Flow: FlowNext},
	{Code: LdelemI4, Name: "ldelem.i4", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushi, Flow: FlowNext},
	{Code: LdelemU4, Name: "ldelem.u4", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushi, Flow: FlowNext},
	{Code: LdelemI8, Name: "ldelem.i8", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushi8, Flow: FlowNext},
	{Code: LdelemI, Name: "ldelem.i", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushi, Flow: FlowNext},
	{Code: LdelemR4, Name: "ldelem.r4", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushr4, Flow: FlowNext},
	{Code: LdelemR8, Name: "ldelem.r8", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushr8, Flow: FlowNext},
	{Code: LdelemRef, Name: "ldelem.ref", OperandType: InlineNone, Pop: PoprefPopi, Push: Pushref, Flow: FlowNext},
	{Code: StelemI, Name: "stelem.i", OperandType: InlineNone, Pop: PoprefPopiPopi, Push: Push0, Flow: FlowNext},
	{Code: StelemI1, Name: "stelem.i1", OperandType: InlineNone, Pop: PoprefPopiPopi, Push: Push0, Flow: FlowNext},
	{Code: StelemI2, Name: "stelem.i2", OperandType: InlineNone, Pop: PoprefPopiPopi, Push: Push0, Flow: FlowNext},
	{Code: StelemI4, Name: "stelem.i4", OperandType: InlineNone, Pop: PoprefPopiPopi, Push: Push0, Flow: FlowNext},
	{Code: StelemI8, Name: "stelem.i8", OperandType: InlineNone, Pop: PoprefPopiPopi8, Push: Push0, Flow: FlowNext},
	{Code: StelemR4, Name: "stelem.r4", OperandType: InlineNone, Pop: PoprefPopiPopr4, Push: Push0, Flow: FlowNext},
	{Code: StelemR8, Name: "stelem.r8", OperandType: InlineNone, Pop: PoprefPopiPopr8, Push: Push0, Flow: FlowNext},
	{Code: StelemRef, Name: "stelem.ref", OperandType: InlineNone, Pop: PoprefPopiPopref, Push: Push0, Flow: FlowNext},
	{Code: Ldelem, Name: "ldelem", OperandType: InlineType, Pop: PoprefPopi, Push: Push1, Flow: FlowNext},
	{Code: Stelem, Name: "stelem", OperandType: InlineType, Pop: PoprefPopiPop1, Push: Push0, Flow: FlowNext},
	{Code: UnboxAny, Name: "unbox.any", OperandType: InlineType, Pop: Popref, Push: Push1, Flow: FlowNext},
	{Code: ConvOvfI1, Name: "conv.ovf.i1", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfU1, Name: "conv.ovf.u1", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfI2, Name: "conv.ovf.i2", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfU2, Name: "conv.ovf.u2", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfI4, Name: "conv.ovf.i4", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfU4, Name: "conv.ovf.u4", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfI8, Name: "conv.ovf.i8", OperandType: InlineNone, Pop: Pop1, Push: Pushi8, Flow: FlowNext},
	{Code: ConvOvfU8, Name: "conv.ovf.u8", OperandType: InlineNone, Pop: Pop1, Push: Pushi8, Flow: FlowNext},
	{Code: Refanyval, Name: "refanyval", OperandType: InlineType, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: Ckfinite, Name: "ckfinite", OperandType: InlineNone, Pop: Pop1, Push: Pushr8, Flow: FlowNext},
	{Code: Mkrefany, Name: "mkrefany", OperandType: InlineType, Pop: Popi, Push: Push1, Flow: FlowNext},
	{Code: Ldtoken, Name: "ldtoken", OperandType: InlineTok, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: ConvU2, Name: "conv.u2", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvU1, Name: "conv.u1", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvI, Name: "conv.i", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfI, Name: "conv.ovf.i", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: ConvOvfU, Name: "conv.ovf.u", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: AddOvf, Name: "add.ovf", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: AddOvfUn, Name: "add.ovf.un", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: MulOvf, Name: "mul.ovf", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: MulOvfUn, Name: "mul.ovf.un", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: SubOvf, Name: "sub.ovf", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: SubOvfUn, Name: "sub.ovf.un", OperandType: InlineNone, Pop: Pop1Pop1, Push: Push1, Flow: FlowNext},
	{Code: Endfinally, Name: "endfinally", OperandType: InlineNone, Pop: Pop0, Push: Push0, Flow: FlowReturn},
	{Code: Leave, Name: "leave", OperandType: InlineBrTarget, Pop: Pop0, Push: Push0, Flow: FlowBranch},
	{Code: LeaveS, Name: "leave.s", OperandType: ShortInlineBrTarget, Pop: Pop0, Push: Push0, Flow: FlowBranch},
	{Code: StindI, Name: "stind.i", OperandType: InlineNone, Pop: PopiPopi, Push: Push0, Flow: FlowNext},
	{Code: ConvU, Name: "conv.u", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: Arglist, Name: "arglist", OperandType: InlineNone, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: Ceq, Name: "ceq", OperandType: InlineNone, Pop: Pop1Pop1, Push: Pushi, Flow: FlowNext},
	{Code: Cgt, Name: "cgt", OperandType: InlineNone, Pop: Pop1Pop1, Push: Pushi, Flow: FlowNext},
	{Code: CgtUn, Name: "cgt.un", OperandType: InlineNone, Pop: Pop1Pop1, Push: Pushi, Flow: FlowNext},
	{Code: Clt, Name: "clt", OperandType: InlineNone, Pop: Pop1Pop1, Push: Pushi, Flow: FlowNext},
	{Code: CltUn, Name: "clt.un", OperandType: InlineNone, Pop: Pop1Pop1, Push: Pushi, Flow: FlowNext},
	{Code: Ldftn, Name: "ldftn", OperandType: InlineMethod, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: Ldvirtftn, Name: "ldvirtftn", OperandType: InlineMethod, Pop: Popref, Push: Pushi, Flow: FlowNext},
	{Code: Ldarg, Name: "ldarg", OperandType: InlineArgument, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldarga, Name: "ldarga", OperandType: InlineArgument, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: Starg, Name: "starg", OperandType: InlineArgument, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: Ldloc, Name: "ldloc", OperandType: InlineVar, Pop: Pop0, Push: Push1, Flow: FlowNext},
	{Code: Ldloca, Name: "ldloca", OperandType: InlineVar, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: Stloc, Name: "stloc", OperandType: InlineVar, Pop: Pop1, Push: Push0, Flow: FlowNext},
	{Code: Localloc, Name: "localloc", OperandType: InlineNone, Pop: Popi, Push: Pushi, Flow: FlowNext},
	{Code: Endfilter, Name: "endfilter", OperandType: InlineNone, Pop: Popi, Push: Push0, Flow: FlowReturn},
	{Code: Unaligned, Name: "unaligned.", OperandType: ShortInlineI, Pop: Pop0, Push: Push0, Flow: FlowMeta},
	{Code: Volatile, Name: "volatile.", OperandType: InlineNone, Pop: Pop0, Push: Push0, Flow: FlowMeta},
	{Code: Tail, Name: "tail.", OperandType: InlineNone, Pop: Pop0, Push: Push0, Flow: FlowMeta},
	{Code: Initobj, Name: "initobj", OperandType: InlineType, Pop: Popi, Push: Push0, Flow: FlowNext},
	{Code: Constrained, Name: "constrained.", OperandType: InlineType, Pop: Pop0, Push: Push0, Flow: FlowMeta},
	{Code: Cpblk, Name: "cpblk", OperandType: InlineNone, Pop: PopiPopiPopi, Push: Push0, Flow: FlowNext},
	{Code: Initblk, Name: "initblk", OperandType: InlineNone, Pop: PopiPopiPopi, Push: Push0, Flow: FlowNext},
	{Code: No, Name: "no.", OperandType: ShortInlineI, Pop: Pop0, Push: Push0, Flow: FlowMeta},
	{Code: Rethrow, Name: "rethrow", OperandType: InlineNone, Pop: Pop0, Push: Push0, Flow: FlowThrow},
	{Code: Sizeof, Name: "sizeof", OperandType: InlineType, Pop: Pop0, Push: Pushi, Flow: FlowNext},
	{Code: Refanytype, Name: "refanytype", OperandType: InlineNone, Pop: Pop1, Push: Pushi, Flow: FlowNext},
	{Code: Readonly, Name: "readonly.", OperandType: InlineNone, Pop: Pop0, Push: Push0, Flow: FlowMeta},
}
