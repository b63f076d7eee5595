package submatch

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
)

var byteOrder = binary.LittleEndian

// binaryRead and binaryWrite mirror the small self-describing encoding used
// elsewhere in this family of graph tools: fixed-width values go straight
// through encoding/binary, while ints get a varint variable-length form.
func binaryRead(r io.Reader, data interface{}) (int, error) {
	switch v := data.(type) {
	case *int:
		br, ok := r.(io.ByteReader)
		if !ok {
			return 0, fmt.Errorf("reader does not implement io.ByteReader")
		}
		i, err := binary.ReadVarint(br)
		if err != nil {
			return 0, err
		}
		*v = int(i)
		return binary.MaxVarintLen64, nil

	case *float64:
		return binary.Size(*v), binary.Read(r, byteOrder, v)

	default:
		return binary.Size(data), binary.Read(r, byteOrder, data)
	}
}

func binaryWrite(w io.Writer, data any) (int, error) {
	switch v := data.(type) {
	case int:
		var buf [binary.MaxVarintLen64]byte
		n := binary.PutVarint(buf[:], int64(v))
		return w.Write(buf[:n])
	default:
		sz := binary.Size(data)
		if err := binary.Write(w, byteOrder, data); err != nil {
			return 0, fmt.Errorf("encoding %T: %w", data, err)
		}
		return sz, nil
	}
}

func multiBinaryWrite(w io.Writer, data ...any) (int, error) {
	var written int
	for _, d := range data {
		n, err := binaryWrite(w, d)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func multiBinaryRead(r io.Reader, data ...any) (int, error) {
	var read int
	for i, d := range data {
		n, err := binaryRead(r, d)
		read += n
		if err != nil {
			return read, fmt.Errorf("reading %T at index %v: %w", d, i, err)
		}
	}
	return read, nil
}

const checkpointVersion = 1

// CostMap is an optimizer's converged c(u,v) table, keyed by query node then
// target node, suitable for seeding a later run's iteration (e.g. after the
// underlying graphs or candidate set changed only slightly) instead of
// restarting from all-zero costs.
type CostMap map[NodeID]map[NodeID]float64

// Export writes the cost map to w in the package's binary encoding.
func (c CostMap) Export(w io.Writer) error {
	if _, err := binaryWrite(w, checkpointVersion); err != nil {
		return fmt.Errorf("encode version: %w", err)
	}
	if _, err := binaryWrite(w, len(c)); err != nil {
		return fmt.Errorf("encode query count: %w", err)
	}
	for u, targets := range c {
		if _, err := multiBinaryWrite(w, int(u), len(targets)); err != nil {
			return fmt.Errorf("encode query node %v: %w", u, err)
		}
		for v, cost := range targets {
			if _, err := multiBinaryWrite(w, int(v), cost); err != nil {
				return fmt.Errorf("encode entry (%v,%v): %w", u, v, err)
			}
		}
	}
	return nil
}

// ImportCostMap reads a cost map previously written by Export.
func ImportCostMap(r io.Reader) (CostMap, error) {
	var version int
	if _, err := binaryRead(r, &version); err != nil {
		return nil, err
	}
	if version != checkpointVersion {
		return nil, fmt.Errorf("incompatible checkpoint version: %d", version)
	}

	var nQuery int
	if _, err := binaryRead(r, &nQuery); err != nil {
		return nil, err
	}

	c := make(CostMap, nQuery)
	for i := 0; i < nQuery; i++ {
		var u, nTargets int
		if _, err := multiBinaryRead(r, &u, &nTargets); err != nil {
			return nil, fmt.Errorf("decoding query node %d: %w", i, err)
		}
		targets := make(map[NodeID]float64, nTargets)
		for j := 0; j < nTargets; j++ {
			var v int
			var cost float64
			if _, err := multiBinaryRead(r, &v, &cost); err != nil {
				return nil, fmt.Errorf("decoding entry %d for query node %d: %w", j, i, err)
			}
			targets[NodeID(v)] = cost
		}
		c[NodeID(u)] = targets
	}
	return c, nil
}

// SavedCostMap persists a CostMap to a file across runs: LoadSavedCostMap
// opens (or, if absent,
// starts) the file, and Save writes it back atomically via renameio so a
// crash mid-write never leaves a truncated checkpoint on disk.
type SavedCostMap struct {
	Costs CostMap
	Path  string
}

// LoadSavedCostMap opens a checkpoint file, reading it if present. A
// missing file yields an empty CostMap, equivalent to starting fresh.
func LoadSavedCostMap(path string) (*SavedCostMap, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	costs := make(CostMap)
	if info.Size() > 0 {
		costs, err = ImportCostMap(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
	}
	return &SavedCostMap{Costs: costs, Path: path}, nil
}

// Save atomically rewrites the checkpoint file with the current cost map.
func (s *SavedCostMap) Save() error {
	tmp, err := renameio.TempFile("", s.Path)
	if err != nil {
		return err
	}
	defer tmp.Cleanup()

	wr := bufio.NewWriter(tmp)
	if err := s.Costs.Export(wr); err != nil {
		return fmt.Errorf("exporting: %w", err)
	}
	if err := wr.Flush(); err != nil {
		return fmt.Errorf("flushing: %w", err)
	}
	return tmp.CloseAtomicallyReplace()
}

// costMapFromCosts converts the optimizer's flat candidateKey-keyed map
// into the nested form CostMap persists.
func costMapFromCosts(costs map[candidateKey]float64) CostMap {
	out := make(CostMap)
	for k, cost := range costs {
		if out[k.u] == nil {
			out[k.u] = make(map[NodeID]float64)
		}
		out[k.u][k.v] = cost
	}
	return out
}
