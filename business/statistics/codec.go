package statistics

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/OpenTransitTools/delaycurves/business/curve"
)

// treeFormatGob is the only persistence format this repository currently
// writes. The leading discriminator byte leaves room for a future binary
// format without breaking already-written trees.
const treeFormatGob byte = 1

// Codec saves and loads a Tree as an opaque blob, per the persisted
// statistics tree's pluggable-format design note.
type Codec interface {
	Save(tree *Tree, w io.Writer) error
	Load(r io.Reader) (*Tree, error)
}

// GobCodec is the Codec backed by encoding/gob, the only format this
// repository implements.
type GobCodec struct{}

// NewGobCodec builds the default Codec.
func NewGobCodec() GobCodec {
	return GobCodec{}
}

func (GobCodec) Save(tree *Tree, w io.Writer) error {
	if _, err := w.Write([]byte{treeFormatGob}); err != nil {
		return err
	}
	return gob.NewEncoder(w).Encode(tree)
}

func (GobCodec) Load(r io.Reader) (*Tree, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("statistics: reading format byte: %w", err)
	}
	if header[0] != treeFormatGob {
		return nil, fmt.Errorf("statistics: unknown tree format byte %d", header[0])
	}

	tree := &Tree{}
	if err := gob.NewDecoder(r).Decode(tree); err != nil {
		return nil, fmt.Errorf("statistics: decoding tree: %w", err)
	}
	if tree.Specific == nil {
		tree.Specific = make(map[string]map[string]*RouteVariantData)
	}
	if tree.General == nil {
		tree.General = make(map[DefaultCurveKey]*curve.Curve)
	}
	return tree, nil
}
