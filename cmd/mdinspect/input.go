package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/clrmeta"
	"github.com/wippyai/clrmeta/builder"
	"github.com/wippyai/clrmeta/cts"
	"github.com/wippyai/clrmeta/metadata"
)

// bundle is the on-disk form of a rebuilt image: the metadata root plus
// the segments its RVAs point into.
type bundle struct {
	Metadata []byte          `msgpack:"md"`
	Segments []bundleSegment `msgpack:"seg"`
	Version  int             `msgpack:"v"`
}

type bundleSegment struct {
	Data []byte `msgpack:"data"`
	RVA  uint32 `msgpack:"rva"`
}

const bundleVersion = 1

type input struct {
	image    *cts.Image
	segments clrmeta.Segments
}

// openInput loads a raw metadata root or a bundle, mapping the optional
// code file at codeRVA.
func openInput(path, codePath string, codeRVA uint32) (*input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	in := &input{}
	md := data
	if len(data) < 4 || binary.LittleEndian.Uint32(data) != metadata.Signature {
		var b bundle
		if err := msgpack.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("%s is neither a metadata root nor a bundle: %w", path, err)
		}
		if b.Version != bundleVersion {
			return nil, fmt.Errorf("unsupported bundle version %d", b.Version)
		}
		md = b.Metadata
		for _, s := range b.Segments {
			in.segments = append(in.segments, clrmeta.Segment{RVA: s.RVA, Data: s.Data})
		}
	}

	if codePath != "" {
		code, err := os.ReadFile(codePath)
		if err != nil {
			return nil, fmt.Errorf("read code: %w", err)
		}
		in.segments = append(in.segments, clrmeta.Segment{RVA: codeRVA, Data: code})
	}

	in.image, err = cts.LoadBytes(md, cts.Options{AddressSpace: in.segments})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return in, nil
}

func encodeBundle(res *builder.Result) ([]byte, error) {
	b := bundle{Version: bundleVersion, Metadata: res.Metadata}
	for _, s := range []clrmeta.Segment{res.Code, res.Data} {
		if len(s.Data) > 0 {
			b.Segments = append(b.Segments, bundleSegment{RVA: s.RVA, Data: s.Data})
		}
	}

	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	err := enc.Encode(&b)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRebuild(img *cts.Image, opts builder.Options, path string) error {
	res, err := img.Rebuild(opts)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	data, err := encodeBundle(res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s: metadata %d bytes, code %d bytes at 0x%08X, data %d bytes at 0x%08X\n",
		path, len(res.Metadata), len(res.Code.Data), res.Code.RVA, len(res.Data.Data), res.Data.RVA)
	return nil
}
