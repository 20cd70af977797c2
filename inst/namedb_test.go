package inst

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func testDB(t *testing.T) *NameDB {
	t.Helper()
	db, err := BuildNameDB([]Entry{
		{Name: "adc"},
		{Name: "add"},
		{Name: "b"},
		{Name: "mov"},
		{Name: "movk"},
		{Name: "movn"},
		{Name: "movz"},
		{Name: "ret"},
	})
	assert.NoError(t, err)
	return db
}

func TestBuildNameDB(t *testing.T) {
	db := testDB(t)

	// ids are table indexes, id 0 is reserved
	assert.Equal(t, 9, db.Len())
	assert.False(t, db.IsDefined(None))
	assert.True(t, db.IsDefined(1))
	assert.False(t, db.IsDefined(9))
}

func TestBuildNameDBErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty mnemonic", []Entry{{Name: ""}}},
		{"uppercase start", []Entry{{Name: "Add"}}},
		{"unsorted", []Entry{{Name: "mov"}, {Name: "add"}}},
		{"duplicate", []Entry{{Name: "add"}, {Name: "add"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildNameDB(tt.entries)
			assert.Error(t, err)
		})
	}
}

func TestNameDBName(t *testing.T) {
	db := testDB(t)

	name, err := db.Name(1)
	assert.NoError(t, err)
	assert.Equal(t, "adc", name)

	name, err = db.Name(8)
	assert.NoError(t, err)
	assert.Equal(t, "ret", name)

	_, err = db.Name(None)
	assert.True(t, errors.Is(err, ErrInvalidInstruction))

	_, err = db.Name(ID(100))
	assert.True(t, errors.Is(err, ErrInvalidInstruction))
}

func TestNameDBFind(t *testing.T) {
	db := testDB(t)

	// every defined name resolves to its own id
	for id := ID(1); int(id) < db.Len(); id++ {
		name, err := db.Name(id)
		assert.NoError(t, err)
		assert.Equal(t, id, db.Find(name))
	}
}

func TestNameDBFindPrefixes(t *testing.T) {
	db := testDB(t)

	// shared prefixes must resolve exactly, not to the first prefix match
	assert.Equal(t, ID(4), db.Find("mov"))
	assert.Equal(t, ID(5), db.Find("movk"))
	assert.Equal(t, ID(6), db.Find("movn"))
	assert.Equal(t, ID(7), db.Find("movz"))

	name, err := db.Name(db.Find("movz"))
	assert.NoError(t, err)
	assert.Equal(t, "movz", name)
}

func TestNameDBFindMisses(t *testing.T) {
	db := testDB(t)

	tests := []string{
		"",          // empty
		"madd",      // unknown name in a populated bucket
		"c",         // empty bucket
		"Mov",       // uppercase first letter
		"1add",      // digit first letter
		"movzkeeps", // longer than any known mnemonic
		"mo",        // prefix of a known mnemonic
	}

	for _, name := range tests {
		assert.Equal(t, None, db.Find(name))
	}
}

func TestNameDBConsecutiveFlag(t *testing.T) {
	db, err := BuildNameDB([]Entry{
		{Name: "ld1", Flags: DescConsecutive, RWIndex: 3},
		{Name: "mov", RWIndex: 1},
	})
	assert.NoError(t, err)

	desc, err := db.Descriptor(1)
	assert.NoError(t, err)
	assert.True(t, desc.IsConsecutive())
	assert.Equal(t, uint8(3), desc.RWIndex)

	desc, err = db.Descriptor(2)
	assert.NoError(t, err)
	assert.False(t, desc.IsConsecutive())
}
