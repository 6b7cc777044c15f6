// Package token provides metadata tokens and the coded-index codec.
//
// A Token addresses one row of one metadata table. Its wire form is
// the table kind in the high byte and the 1-based row id in the low
// 24 bits:
//
//	tok := token.New(token.TypeDef, 3) // 0x02000003
//	tok.Uint32()                       // 0x02000003
//	token.FromUint32(0x06000001)       // Method, rid 1
//
// A row id of zero is the null token: it never names a row.
//
// # Coded Indices
//
// Columns that may point into one of several tables store a coded
// index: the low ceil(log2(N)) bits select the table from the
// category's candidate list and the remaining bits hold the row id.
//
//	enc := token.EncoderFor(token.MethodDefOrRef)
//	raw, err := enc.Encode(token.New(token.MemberRef, 5)) // 5<<1 | 1
//	tok, err := enc.Decode(raw)
//
// The candidate lists reproduce ECMA-335 II.24.2.6 exactly.
package token
