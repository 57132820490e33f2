package correlate

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/event"
)

// Index holds the two derived lookups used to attribute events that carry
// no engine target id. It is a snapshot for inspection; the registry does
// not keep it.
type Index struct {
	compIDs map[int64]int64
	names   map[string]int64
}

func newIndex() *Index {
	return &Index{
		compIDs: make(map[int64]int64),
		names:   make(map[string]int64),
	}
}

// normalizeName folds a name to NFC so that differently composed spellings
// of the same identifier join.
func normalizeName(name string) string {
	return norm.NFC.String(name)
}

// addDone records the compilation id of d. A repeated id is overwritten
// (last writer wins); the return value reports an overwrite that changed
// the owning target.
func (ix *Index) addDone(d *event.Done) (collision bool) {
	prev, ok := ix.compIDs[d.CompID]
	ix.compIDs[d.CompID] = d.TargetID
	return ok && prev != d.TargetID
}

// addTarget records the name of ct. Registry order is ascending id, so on
// a shared name the highest id wins.
func (ix *Index) addTarget(ct *calltarget.CallTarget) (collision bool) {
	key := normalizeName(ct.Name)
	prev, ok := ix.names[key]
	ix.names[key] = ct.ID
	return ok && prev != ct.ID
}

// TargetForCompID returns the target id owning a compilation id.
func (ix *Index) TargetForCompID(compID int64) (int64, bool) {
	id, ok := ix.compIDs[compID]
	return id, ok
}

// TargetForName returns the target id attributed to a name.
func (ix *Index) TargetForName(name string) (int64, bool) {
	id, ok := ix.names[normalizeName(name)]
	return id, ok
}

// CompIDs returns the number of indexed compilation ids.
func (ix *Index) CompIDs() int {
	return len(ix.compIDs)
}

// Names returns the number of indexed names.
func (ix *Index) Names() int {
	return len(ix.names)
}
