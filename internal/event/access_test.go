package event

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Done", KindDone.String())
	assert.Equal(t, "TransferToInterpreter", KindTransferToInterpreter.String())
	assert.Equal(t, "Unknown", Kind(0).String())
	assert.Equal(t, "Unknown", Kind(99).String())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	_, ok := ParseKind("Unknown")
	assert.False(t, ok)
	_, ok = ParseKind("done")
	assert.False(t, ok)
}

func TestKind_UnmarshalText(t *testing.T) {
	var k Kind
	require.NoError(t, json.Unmarshal([]byte(`"CacheFlushing"`), &k))
	assert.Equal(t, KindCacheFlushing, k)

	err := json.Unmarshal([]byte(`"Compiled"`), &k)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event kind")
}

func TestKind_Segments(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindDone, 11},
		{KindStart, 7},
		{KindEnqueued, 6},
		{KindDequeued, 7},
		{KindDeoptimization, 4},
		{KindInvalidation, 4},
		{KindFailed, 6},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			n, ok := tt.kind.Segments()
			require.True(t, ok)
			assert.Equal(t, tt.want, n)
			assert.True(t, tt.kind.EngineStream())
		})
	}

	for _, k := range []Kind{KindCacheFlushing, KindTransferToInterpreter} {
		_, ok := k.Segments()
		assert.False(t, ok, k.String())
		assert.False(t, k.EngineStream(), k.String())
	}
}

func TestEveryKindHasAName(t *testing.T) {
	for _, k := range Kinds {
		assert.NotEqual(t, "Unknown", k.String())
	}
}

func TestAccessors_AbsentFieldsReportNotOK(t *testing.T) {
	deopt := &Deoptimization{Header: Header{TargetID: 7}}

	_, ok := TierOf(deopt)
	assert.False(t, ok)
	_, ok = CompileTimeOf(deopt)
	assert.False(t, ok)
	_, ok = CodeSizeOf(deopt)
	assert.False(t, ok)
	_, ok = ExecCountOf(deopt)
	assert.False(t, ok)
	_, ok = CompIDOf(deopt)
	assert.False(t, ok)
	_, ok = ReasonOf(deopt)
	assert.False(t, ok)

	id, ok := TargetIDOf(deopt)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestAccessors_ZeroIsStillPresent(t *testing.T) {
	done := &Done{CompileTimeMs: 0, CodeSize: 0, CompID: 0}

	v, ok := CompileTimeOf(done)
	assert.True(t, ok)
	assert.Zero(t, v)

	v, ok = CodeSizeOf(done)
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestAccessors_CacheFlushingHasNoTarget(t *testing.T) {
	flush := &CacheFlushing{CompID: 101}

	_, ok := TargetIDOf(flush)
	assert.False(t, ok)

	id, ok := CompIDOf(flush)
	assert.True(t, ok)
	assert.Equal(t, int64(101), id)
}

func TestRate_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Rate(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, `"NaN"`, string(data))

	data, err = json.Marshal(Rate(12.5))
	require.NoError(t, err)
	assert.Equal(t, `12.5`, string(data))
}

func TestStart_MarshalJSONWithNaNRate(t *testing.T) {
	start := &Start{
		Header: Header{TargetID: 1, At: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Rate:   Rate(math.NaN()),
	}
	data, err := json.Marshal(start)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rate":"NaN"`)
}
