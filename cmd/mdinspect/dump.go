package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/term"

	"github.com/wippyai/clrmeta/cts"
	"github.com/wippyai/clrmeta/metadata"
	"github.com/wippyai/clrmeta/token"
)

var (
	tableStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	opcodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type printer struct {
	w      io.Writer
	format string
	styled bool
}

func newPrinter(f *os.File, format string) *printer {
	p := &printer{w: f, format: format}
	switch format {
	case "", "auto":
		p.format = "text"
		p.styled = term.IsTerminal(int(f.Fd()))
	case "styled":
		p.format = "text"
		p.styled = true
	}
	return p
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// selectTables resolves table names. With no names, every non-empty
// table is selected.
func selectTables(s *metadata.TableStream, names []string) ([]token.TableKind, error) {
	var kinds []token.TableKind
	if len(names) == 0 {
		for k := token.TableKind(0); k < token.NumTables; k++ {
			if s.Table(k).Len() > 0 {
				kinds = append(kinds, k)
			}
		}
		return kinds, nil
	}
	for _, n := range names {
		k, ok := token.KindByName(n)
		if !ok {
			return nil, fmt.Errorf("unknown table %q", n)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

type tableRecord struct {
	Name   string      `msgpack:"name"`
	Rows   []rowRecord `msgpack:"rows"`
	Kind   uint8       `msgpack:"kind"`
	Sorted bool        `msgpack:"sorted"`
}

type rowRecord struct {
	Columns []columnRecord `msgpack:"cols"`
	Token   uint32         `msgpack:"token"`
}

type columnRecord struct {
	Name  string `msgpack:"name"`
	Text  string `msgpack:"text,omitempty"`
	Value uint32 `msgpack:"value"`
}

func tableRecords(img *cts.Image, kinds []token.TableKind) []tableRecord {
	out := make([]tableRecord, 0, len(kinds))
	for _, k := range kinds {
		t := img.Tables().Table(k)
		rec := tableRecord{Name: k.String(), Kind: uint8(k), Sorted: t.IsSorted()}
		for _, row := range t.Rows() {
			rr := rowRecord{Token: row.Token.Uint32()}
			for i, col := range t.Schema().Columns {
				v := row.Column(i)
				rr.Columns = append(rr.Columns, columnRecord{
					Name:  col.Name,
					Value: v,
					Text:  describeColumn(img, col, v),
				})
			}
			rec.Rows = append(rec.Rows, rr)
		}
		out = append(out, rec)
	}
	return out
}

// describeColumn renders a column value with its heap or token meaning.
func describeColumn(img *cts.Image, col metadata.Column, v uint32) string {
	root := img.Root()
	switch col.Class {
	case metadata.ColString:
		if root == nil {
			return ""
		}
		s, err := root.Strings().Get(v)
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return strconv.Quote(s)
	case metadata.ColBlob:
		if root == nil {
			return ""
		}
		b, err := root.Blobs().Get(v)
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return fmt.Sprintf("blob[%d]", len(b))
	case metadata.ColGuid:
		if root == nil || v == 0 {
			return ""
		}
		g, err := root.Guids().Get(v)
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return g.String()
	case metadata.ColTable:
		return token.New(col.Table, v).String()
	case metadata.ColCoded:
		tok, err := token.EncoderFor(col.Coded).Decode(v)
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return tok.String()
	}
	return ""
}

func (p *printer) dumpTables(img *cts.Image, kinds []token.TableKind) error {
	records := tableRecords(img, kinds)
	if p.format == "msgpack" {
		enc := msgpack.NewEncoder(p.w)
		enc.SetSortMapKeys(true)
		return enc.Encode(records)
	}
	if p.format != "text" {
		return fmt.Errorf("unknown format %q", p.format)
	}

	for _, t := range records {
		header := fmt.Sprintf("%s (%d rows)", t.Name, len(t.Rows))
		if t.Sorted {
			header += " sorted"
		}
		fmt.Fprintln(p.w, p.render(tableStyle, header))
		for _, r := range t.Rows {
			var cols []string
			for _, c := range r.Columns {
				s := c.Name + "=" + strconv.FormatUint(uint64(c.Value), 10)
				if c.Text != "" {
					s += " " + p.render(nameStyle, c.Text)
				}
				cols = append(cols, s)
			}
			tok := token.FromUint32(r.Token)
			fmt.Fprintf(p.w, "  %s  %s\n", p.render(tokenStyle, tok.String()), strings.Join(cols, ", "))
		}
		fmt.Fprintln(p.w)
	}
	return nil
}

func (p *printer) disassemble(img *cts.Image) error {
	for _, t := range img.Types.All() {
		for _, m := range t.Methods.All() {
			p.method(m)
		}
	}
	return nil
}

func (p *printer) method(m *cts.MethodDefinition) {
	sig := "?"
	if s := m.Signature.Get(); s != nil {
		sig = s.String()
	}
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.render(tokenStyle, m.Token().String()),
		p.render(nameStyle, m.String()),
		p.render(dimStyle, sig))

	body := m.Body.Get()
	if body == nil {
		fmt.Fprintln(p.w, p.render(dimStyle, "  (no body)"))
		fmt.Fprintln(p.w)
		return
	}
	fmt.Fprintf(p.w, "  .maxstack %d\n", body.MaxStack)
	for _, i := range body.Instructions {
		line := i.Label() + ": " + p.render(opcodeStyle, i.OpCode.String())
		if op := i.OperandString(); op != "" {
			line += " " + op
		}
		fmt.Fprintln(p.w, "  "+line)
	}
	for _, h := range body.ExceptionHandlers {
		fmt.Fprintf(p.w, "  .try %s to %s %s %s to %s\n",
			h.TryStart.Label(), h.TryEnd.Label(), h.Kind, h.HandlerStart.Label(), h.HandlerEnd.Label())
	}
	fmt.Fprintln(p.w)
}
