package peeler

import (
	"log/slog"

	"github.com/macfileformats/peeler/internal/binfmt"
	"github.com/macfileformats/peeler/internal/cptfmt"
	"github.com/macfileformats/peeler/internal/hqxfmt"
	"github.com/macfileformats/peeler/internal/sitfmt"
)

// maxPeelDepth bounds the wrapper-unwrap loop in Peel per spec.md
// §4.1 and §7's "depth > 32 during wrapper peeling" resource limit.
const maxPeelDepth = 32

type handlerKind int

const (
	kindWrapper handlerKind = iota
	kindArchive
)

// handler is one row of the static, ordered format table: wrappers
// before archives, so outer transport encodings are stripped before
// archive signatures are probed (spec.md §4.1).
type handler struct {
	name string
	kind handlerKind
	// detect is pure and inexpensive.
	detect func([]byte) bool
	// peelWrapper is set for kindWrapper handlers.
	peelWrapper func([]byte) ([]byte, error)
	// peelArchive is set for kindArchive handlers.
	peelArchive func([]byte) ([]Entry, error)
}

var handlers = []handler{
	{
		name: FormatHQX,
		kind: kindWrapper,
		detect: func(b []byte) bool {
			_, ok := hqxfmt.FindEnvelope(b)
			return ok
		},
		peelWrapper: func(b []byte) ([]byte, error) {
			d, err := hqxfmt.Decode(b)
			if err != nil {
				return nil, err
			}
			if len(d.Resource) > 0 && !looksLikeSIT(d.Data) {
				return d.Resource, nil
			}
			return d.Data, nil
		},
	},
	{
		name: FormatBIN,
		kind: kindWrapper,
		detect: func(b []byte) bool {
			return binfmt.Probe(b)
		},
		peelWrapper: func(b []byte) ([]byte, error) {
			return binfmt.PeelWrapper(b, looksLikeSIT)
		},
	},
	{
		name: FormatSIT,
		kind: kindArchive,
		detect: func(b []byte) bool {
			_, ok := sitfmt.DetectOffset(b)
			return ok
		},
		peelArchive: func(b []byte) ([]Entry, error) {
			sitEntries, err := sitfmt.Decode(b)
			if err != nil {
				return nil, err
			}
			return fromSIT(sitEntries), nil
		},
	},
	{
		name: FormatCPT,
		kind: kindArchive,
		detect: func(b []byte) bool {
			return cptfmt.Detect(b)
		},
		peelArchive: func(b []byte) ([]Entry, error) {
			cptEntries, err := cptfmt.Decode(b)
			if err != nil {
				return nil, err
			}
			return fromCPT(cptEntries), nil
		},
	},
}

func looksLikeSIT(b []byte) bool {
	_, ok := sitfmt.DetectOffset(b)
	return ok
}

func fromSIT(es []sitfmt.Entry) []Entry {
	out := make([]Entry, len(es))
	for i, e := range es {
		out[i] = Entry{
			Metadata: Metadata{Name: e.Name, Type: e.Type, Creator: e.Creator, Flags: e.Flags},
			Data:     e.Data,
			Resource: e.Resource,
		}
	}
	return out
}

func fromCPT(es []cptfmt.Entry) []Entry {
	out := make([]Entry, len(es))
	for i, e := range es {
		out[i] = Entry{
			Metadata: Metadata{Name: e.Name, Type: e.Type, Creator: e.Creator, Flags: e.Flags},
			Data:     e.Data,
			Resource: e.Resource,
		}
	}
	return out
}

// Detect reports which of the four supported formats buf is detected
// as (the first match in the ordered handler table), or "" if none
// match. The HQX and SIT probes search the whole buffer; the BIN and
// CPT probes look only at its start.
func Detect(buf []byte) string {
	for _, h := range handlers {
		if h.detect(buf) {
			return h.name
		}
	}
	return ""
}

// Peel repeatedly unwraps buf: detect, strip wrappers, and stop at
// the first archive (or at maxPeelDepth, per spec.md §4.1's
// recursion-depth cap). After archive extraction each entry's data
// fork is recursively re-peeled only if it is itself detected as a
// wrapper format; failures there are non-fatal and keep the
// original entry.
func Peel(buf []byte) ([]Entry, error) {
	cur := buf
	for depth := 0; depth < maxPeelDepth; depth++ {
		h, ok := matchHandler(cur)
		if !ok {
			return []Entry{{Data: append([]byte(nil), cur...)}}, nil
		}
		switch h.kind {
		case kindWrapper:
			next, err := h.peelWrapper(cur)
			if err != nil {
				return nil, err
			}
			cur = next
		case kindArchive:
			entries, err := h.peelArchive(cur)
			if err != nil {
				return nil, err
			}
			for i := range entries {
				rePeelIfWrapper(&entries[i])
			}
			return entries, nil
		}
	}
	return []Entry{{Data: append([]byte(nil), cur...)}}, nil
}

func matchHandler(buf []byte) (handler, bool) {
	for _, h := range handlers {
		if h.detect(buf) {
			return h, true
		}
	}
	return handler{}, false
}

// rePeelIfWrapper recurses into an extracted entry's data fork only
// if it is itself a wrapper format; archive-format false positives
// against raw binary payloads are deliberately not re-peeled.
func rePeelIfWrapper(e *Entry) {
	h, ok := matchHandler(e.Data)
	if !ok || h.kind != kindWrapper {
		return
	}
	peeled, err := Peel(e.Data)
	if err != nil {
		slog.Warn("peeler: non-fatal recursive re-peel failure", "name", e.Name, "err", err)
		return
	}
	if len(peeled) == 1 {
		e.Data = peeled[0].Data
	}
}
