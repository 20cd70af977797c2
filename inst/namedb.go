package inst

import (
	"fmt"
	"strings"
)

// DescFlags are per-instruction descriptor flag bits.
type DescFlags uint8

// DescConsecutive marks an instruction whose operands form a
// consecutive register group, such as multi-register load/store forms.
const DescConsecutive DescFlags = 1 << 0

// Descriptor is the immutable per-instruction entry of an architecture's
// instruction table. Descriptors are stored in id order, the identifier
// of an instruction is its index in the table.
type Descriptor struct {
	// NameOffset is the byte offset of the mnemonic in the packed name blob.
	NameOffset uint32
	// Flags are the descriptor flag bits.
	Flags DescFlags
	// RWIndex is the index of the read/write template of the instruction.
	RWIndex uint8
}

// IsConsecutive returns true if the instruction operands form a
// consecutive register group.
func (d Descriptor) IsConsecutive() bool {
	return d.Flags&DescConsecutive != 0
}

// Entry describes one instruction when building a name database.
// Entries must be listed in mnemonic order, ids are assigned in list
// order starting at 1.
type Entry struct {
	Name    string
	Flags   DescFlags
	RWIndex uint8
}

// bucket is the descriptor id range [start, end) of one first-letter
// bucket. A start of zero marks an empty bucket.
type bucket struct {
	start ID
	end   ID
}

// NameDB is the read-only instruction table of one architecture:
// descriptors in id order, a densely packed name blob and a
// first-letter bucket index for mnemonic lookups. It is initialized
// once before first use and never mutated, concurrent reads are safe.
type NameDB struct {
	blob        string
	descriptors []Descriptor
	buckets     [26]bucket
	maxNameLen  int
}

// MustBuildNameDB builds a name database from the given entries and
// panics on invalid input. It is intended for package level table
// initialization of architecture packages.
func MustBuildNameDB(entries []Entry) *NameDB {
	db, err := BuildNameDB(entries)
	if err != nil {
		panic(err)
	}
	return db
}

// BuildNameDB builds a name database from the given entries.
// Entries must be sorted by mnemonic and start with a lowercase letter.
func BuildNameDB(entries []Entry) (*NameDB, error) {
	var blob strings.Builder
	blob.WriteByte(0) // id 0 is the reserved none entry

	db := &NameDB{
		descriptors: make([]Descriptor, 0, len(entries)+1),
	}
	db.descriptors = append(db.descriptors, Descriptor{})

	prev := ""
	for i, entry := range entries {
		name := entry.Name
		if name == "" {
			return nil, fmt.Errorf("entry %d: empty mnemonic", i)
		}
		if name[0] < 'a' || name[0] > 'z' {
			return nil, fmt.Errorf("entry %d: mnemonic %q does not start with a lowercase letter", i, name)
		}
		if prev != "" && name <= prev {
			return nil, fmt.Errorf("entry %d: mnemonic %q not sorted after %q", i, name, prev)
		}
		prev = name

		id := ID(len(db.descriptors))
		db.descriptors = append(db.descriptors, Descriptor{
			NameOffset: uint32(blob.Len()),
			Flags:      entry.Flags,
			RWIndex:    entry.RWIndex,
		})
		blob.WriteString(name)
		blob.WriteByte(0)

		if len(name) > db.maxNameLen {
			db.maxNameLen = len(name)
		}

		letter := name[0] - 'a'
		if db.buckets[letter].start == 0 {
			db.buckets[letter].start = id
		}
		db.buckets[letter].end = id + 1
	}

	db.blob = blob.String()
	return db, nil
}

// Len returns the number of defined instructions including the
// reserved none entry.
func (db *NameDB) Len() int {
	return len(db.descriptors)
}

// IsDefined returns true if the id names an instruction of this table.
func (db *NameDB) IsDefined(id ID) bool {
	return id != None && int(id) < len(db.descriptors)
}

// Descriptor returns the descriptor of the given instruction id.
func (db *NameDB) Descriptor(id ID) (Descriptor, error) {
	if !db.IsDefined(id) {
		return Descriptor{}, fmt.Errorf("%w: id %d", ErrInvalidInstruction, id)
	}
	return db.descriptors[id], nil
}

// Name returns the mnemonic of the given instruction id as a view into
// the shared name blob.
func (db *NameDB) Name(id ID) (string, error) {
	if !db.IsDefined(id) {
		return "", fmt.Errorf("%w: id %d", ErrInvalidInstruction, id)
	}

	offset := int(db.descriptors[id].NameOffset)
	end := strings.IndexByte(db.blob[offset:], 0)
	return db.blob[offset : offset+end], nil
}

// Find returns the id of the instruction with the given mnemonic or
// None if the mnemonic is unknown. Misses are an expected condition
// and do not produce an error.
func (db *NameDB) Find(name string) ID {
	if name == "" || len(name) > db.maxNameLen {
		return None
	}

	letter := uint32(name[0]) - 'a'
	if letter > 'z'-'a' {
		return None
	}

	b := db.buckets[letter]
	if b.start == 0 {
		return None
	}

	// Binary search over the bucket's id range. Candidates are compared
	// over the full input length so that shared prefixes like "mov" and
	// "movz" resolve to the exact mnemonic.
	base := int(b.start)
	for lim := int(b.end - b.start); lim != 0; lim >>= 1 {
		cur := base + lim>>1

		result := db.compareName(db.descriptors[cur].NameOffset, name)
		if result < 0 {
			base = cur + 1
			lim--
			continue
		}
		if result > 0 {
			continue
		}
		return ID(cur)
	}

	return None
}

// compareName compares the NUL terminated candidate mnemonic at the
// given blob offset against name, comparing exactly len(name) bytes.
// The candidate's terminator ends the comparison on the candidate side.
func (db *NameDB) compareName(offset uint32, name string) int {
	pos := int(offset)
	for i := 0; i < len(name); i++ {
		c := db.blob[pos+i]
		if c != name[i] {
			return int(c) - int(name[i])
		}
	}
	// The candidate is longer if it has bytes left after len(name).
	return int(db.blob[pos+len(name)])
}
