package cts

import (
	"go.uber.org/zap"

	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/token"
)

// Rebuild writes the current entity graph of the image into a new
// metadata root. Types, fields, methods and parameters keep their
// relative order; every other row is written when first reached.
func (img *Image) Rebuild(opts builder.Options) (*builder.Result, error) {
	b := builder.NewBuffer(opts)
	if err := img.reserve(b); err != nil {
		return nil, err
	}

	if m := img.Module.Get(); m != nil {
		if err := m.AddToBuffer(b); err != nil {
			return nil, err
		}
	}
	if a := img.Assembly.Get(); a != nil {
		if err := a.AddToBuffer(b); err != nil {
			return nil, err
		}
	}
	if err := addAll(b, img.Types.All()); err != nil {
		return nil, err
	}

	// Keep references nothing else reaches.
	for _, refs := range [][]builder.Member{
		members(img.AssemblyReferences.All()),
		members(img.ModuleReferences.All()),
		members(img.TypeReferences.All()),
		members(img.TypeSpecifications.All()),
		members(img.MemberReferences.All()),
		members(img.StandAloneSignatures.All()),
	} {
		for _, r := range refs {
			if _, err := b.TokenOf(r); err != nil {
				return nil, err
			}
		}
	}

	res, err := b.Finalize()
	if err != nil {
		return nil, err
	}
	Logger().Debug("rebuilt image",
		zap.Int("types", len(img.Types.All())),
		zap.Int("metadata", len(res.Metadata)),
	)
	return res, nil
}

// reserve allocates rows for every list-owned member so each owner's run
// is contiguous.
func (img *Image) reserve(b *builder.Buffer) error {
	types := img.Types.All()
	for _, t := range types {
		if _, err := b.Reserve(token.TypeDef, t); err != nil {
			return err
		}
	}
	for _, t := range types {
		if err := b.ReserveList(t, token.Field, members(t.Fields.All())); err != nil {
			return err
		}
	}
	for _, t := range types {
		if err := b.ReserveList(t, token.Method, members(t.Methods.All())); err != nil {
			return err
		}
	}
	for _, t := range types {
		for _, m := range t.Methods.All() {
			if err := b.ReserveList(m, token.Param, members(m.Parameters.All())); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddType appends t to the image's types.
func (img *Image) AddType(t *TypeDefinition) {
	img.Types.Add(t)
}
