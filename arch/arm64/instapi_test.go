package arm64

import (
	"errors"
	"testing"

	"github.com/retroenv/retroemit/arch"
	"github.com/retroenv/retroemit/inst"
	"github.com/retroenv/retroemit/operand"
	"github.com/retroenv/retrogolib/assert"
)

func TestIDConstantsMatchTable(t *testing.T) {
	// instruction ids are table indexes, every exported constant must
	// resolve back to itself through the name database
	for id := inst.ID(1); int(id) < instDB.Len(); id++ {
		name, err := instDB.Name(id)
		assert.NoError(t, err)
		assert.Equal(t, id, instDB.Find(name))
	}
}

func TestIsDefined(t *testing.T) {
	assert.False(t, IsDefined(inst.None))
	assert.True(t, IsDefined(Adc))
	assert.True(t, IsDefined(Uxth))
	assert.False(t, IsDefined(Uxth+1))
}

func TestIDToString(t *testing.T) {
	api := API{}

	tests := []struct {
		id   inst.ID
		name string
	}{
		{Adc, "adc"},
		{Add, "add"},
		{B, "b"},
		{Ld1, "ld1"},
		{Mov, "mov"},
		{Movk, "movk"},
		{Movz, "movz"},
		{Ret, "ret"},
		{Uxth, "uxth"},
	}

	for _, tt := range tests {
		name, err := api.IDToString(tt.id)
		assert.NoError(t, err)
		assert.Equal(t, tt.name, name)
		assert.Equal(t, tt.id, api.StringToID(tt.name))
	}

	_, err := api.IDToString(inst.None)
	assert.True(t, errors.Is(err, inst.ErrInvalidInstruction))
}

func TestStringToIDPrefixes(t *testing.T) {
	api := API{}

	// mov, movk, movn and movz share a prefix and must resolve exactly
	assert.Equal(t, Mov, api.StringToID("mov"))
	assert.Equal(t, Movk, api.StringToID("movk"))
	assert.Equal(t, Movn, api.StringToID("movn"))
	assert.Equal(t, Movz, api.StringToID("movz"))

	assert.Equal(t, inst.None, api.StringToID("movq"))
	assert.Equal(t, inst.None, api.StringToID(""))
}

func TestQueryRWInfoLoadGroup(t *testing.T) {
	api := API{}

	v0 := operand.Register(operand.NewReg(operand.RegVec, 0))
	v1 := operand.Register(operand.NewReg(operand.RegVec, 1))
	mem := operand.Memory(operand.NewMem(operand.NewReg(operand.RegGP64, 0), 0))

	var info inst.RWInfo
	err := api.QueryRWInfo(inst.New(Ld1), []operand.Operand{v0, v1, mem}, &info)
	assert.NoError(t, err)

	assert.Equal(t, uint8(2), info.Operands[0].ConsecutiveLeadCount)
	assert.True(t, info.Operands[0].IsWrite())
	assert.True(t, info.Operands[1].Flags&inst.OpConsecutive != 0)
	assert.True(t, info.Operands[2].IsRead())
	assert.True(t, info.Operands[2].Flags&inst.OpMemBaseRead != 0)
}

func TestQueryRWInfoStoreGroup(t *testing.T) {
	api := API{}

	v0 := operand.Register(operand.NewReg(operand.RegVec, 0))
	v1 := operand.Register(operand.NewReg(operand.RegVec, 1))
	mem := operand.Memory(operand.NewMem(operand.NewReg(operand.RegGP64, 0), 0))

	var info inst.RWInfo
	err := api.QueryRWInfo(inst.New(St1), []operand.Operand{v0, v1, mem}, &info)
	assert.NoError(t, err)

	assert.True(t, info.Operands[0].IsRead())
	assert.False(t, info.Operands[0].IsWrite())
	assert.Equal(t, uint8(2), info.Operands[0].ConsecutiveLeadCount)
	assert.True(t, info.Operands[2].IsWrite())
}

func TestQueryFeaturesAlwaysSucceeds(t *testing.T) {
	api := API{}

	// feature queries report no requirements, even for undefined ids
	features, err := api.QueryFeatures(inst.New(Add), nil)
	assert.NoError(t, err)
	assert.Equal(t, inst.Features(0), features)

	features, err = api.QueryFeatures(inst.New(inst.ID(1000)), nil)
	assert.NoError(t, err)
	assert.Equal(t, inst.Features(0), features)
}

func TestValidateAlwaysSucceeds(t *testing.T) {
	api := API{}

	assert.NoError(t, api.Validate(inst.New(Add), nil))
	assert.NoError(t, api.Validate(inst.New(inst.ID(1000)), nil))
}

func TestAPIRegistered(t *testing.T) {
	_, ok := inst.Lookup(arch.ARM64)
	assert.True(t, ok)

	name, err := inst.IDToString(arch.ARM64, Adc)
	assert.NoError(t, err)
	assert.Equal(t, "adc", name)
}
