// Package huffman builds canonical Huffman decode trees from an
// explicit table of code lengths, shared by SIT method 13 and CPT's
// LZH back-end.
//
// Canonical order: symbols are sorted by (code length ascending,
// symbol value ascending within a length); codes are then assigned
// sequentially and shift left by the length difference whenever the
// length increases.
//
// Grounded on internal/sit/huffman.go's node-pool recursive-descent
// tree builder (method 3), generalized here to build directly from a
// length table instead of from a bitstream describing the tree's
// shape — method 13 and CPT-LZH both transmit lengths, not shapes.
package huffman

import "sort"

// Node is one entry in the decode-tree arena. Child indices of -1
// mean "absent"; Leaf of -1 means "internal node".
type Node struct {
	Zero, One int
	Leaf      int
}

// Tree is a canonical Huffman decode tree: an arena of Nodes rooted
// at index 0.
type Tree struct {
	Nodes []Node
}

// IsLeafRoot reports whether the root is itself a leaf (the
// single-symbol degenerate tree SIT method 13's decode loop special-
// cases).
func (t *Tree) IsLeafRoot() bool {
	return len(t.Nodes) > 0 && t.Nodes[0].Leaf >= 0
}

// Build constructs a canonical Huffman decode tree from lengths[sym]
// = code length of symbol sym (0 meaning "symbol unused"). At least
// one non-zero length is required.
func Build(lengths []int) *Tree {
	type symLen struct {
		sym, length int
	}
	var used []symLen
	maxLen := 0
	for sym, l := range lengths {
		if l > 0 {
			used = append(used, symLen{sym, l})
			if l > maxLen {
				maxLen = l
			}
		}
	}
	sort.Slice(used, func(i, j int) bool {
		if used[i].length != used[j].length {
			return used[i].length < used[j].length
		}
		return used[i].sym < used[j].sym
	})

	t := &Tree{Nodes: []Node{{Zero: -1, One: -1, Leaf: -1}}}

	if len(used) == 1 {
		t.Nodes[0].Leaf = used[0].sym
		return t
	}

	code := 0
	prevLen := used[0].length
	for _, u := range used {
		code <<= uint(u.length - prevLen)
		prevLen = u.length
		insert(t, u.sym, code, u.length)
		code++
	}
	return t
}

// insert walks (creating as needed) the path described by the low
// `length` bits of code, MSB of the code first, planting a leaf for
// sym at the end.
func insert(t *Tree, sym, code, length int) {
	node := 0
	for i := length - 1; i >= 0; i-- {
		bit := (code >> uint(i)) & 1
		next := &t.Nodes[node].Zero
		if bit == 1 {
			next = &t.Nodes[node].One
		}
		if *next == -1 {
			t.Nodes = append(t.Nodes, Node{Zero: -1, One: -1, Leaf: -1})
			*next = len(t.Nodes) - 1
		}
		node = *next
	}
	t.Nodes[node].Leaf = sym
}

// BitSource is the minimal pull interface canonical decode needs.
type BitSource interface {
	ReadBit() (int, error)
}

// Decode walks r's bitstream against t starting from the root,
// returning the decoded symbol.
func (t *Tree) Decode(r BitSource) (int, error) {
	if t.IsLeafRoot() {
		return t.Nodes[0].Leaf, nil
	}
	node := 0
	for {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		var next int
		if bit == 1 {
			next = t.Nodes[node].One
		} else {
			next = t.Nodes[node].Zero
		}
		if next == -1 {
			return 0, errInvalidCode
		}
		if t.Nodes[next].Leaf >= 0 {
			return t.Nodes[next].Leaf, nil
		}
		node = next
	}
}

var errInvalidCode = treeError("huffman: invalid code in bitstream")

type treeError string

func (e treeError) Error() string { return string(e) }
