package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ctlog/internal/testutil"
)

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("minute")
	require.NoError(t, err)
	assert.Equal(t, Minute, g)

	_, err = ParseGranularity("day")
	assert.Error(t, err)
}

func TestCompRate_Hour(t *testing.T) {
	s := createSampleStore(t)

	buckets, err := s.CompRate(context.Background(), Hour)
	require.NoError(t, err)

	assert.Equal(t, []RateBucket{
		{
			Key:               "2024-01-01 10",
			Start:             testutil.Epoch,
			Compilations:      2,
			CodeBytes:         12288,
			CompileTimeMs:     350,
			Targets:           1,
			Sources:           1,
			CumulativeTargets: 1,
			LargestBytes:      8192,
			Evictions:         1,
		},
		{
			Key:               "2024-01-01 11",
			Start:             testutil.Epoch.Add(time.Hour),
			Compilations:      1,
			CodeBytes:         1024,
			CompileTimeMs:     50,
			Targets:           1,
			Sources:           1,
			CumulativeTargets: 2,
			LargestBytes:      1024,
			Evictions:         1,
		},
	}, buckets)
}

func TestCompRate_MinuteFillsGaps(t *testing.T) {
	s := createSampleStore(t)

	buckets, err := s.CompRate(context.Background(), Minute)
	require.NoError(t, err)
	require.Len(t, buckets, 61)

	assert.Equal(t, "2024-01-01 10:00", buckets[0].Key)
	assert.Equal(t, int64(1), buckets[0].Evictions)
	assert.Equal(t, int64(4096), buckets[0].LargestBytes)

	assert.Equal(t, "2024-01-01 10:01", buckets[1].Key)
	assert.Equal(t, int64(8192), buckets[1].CodeBytes)
	assert.Equal(t, int64(1), buckets[1].CumulativeTargets)

	empty := buckets[30]
	assert.Equal(t, int64(0), empty.Compilations)
	assert.Equal(t, int64(1), empty.CumulativeTargets)

	last := buckets[60]
	assert.Equal(t, "2024-01-01 11:00", last.Key)
	assert.Equal(t, int64(1), last.Compilations)
	assert.Equal(t, int64(2), last.CumulativeTargets)
}

func TestCompRate_MinuteBucketsFromClock(t *testing.T) {
	clock := testutil.NewLogClock(20 * time.Second)
	var lines []string
	for i := int64(0); i < 6; i++ {
		lines = append(lines, testutil.DoneLine(testutil.FooBar, 1, 10, 100, 500+i, clock.Next()))
	}
	s := createTestStore(t)
	require.NoError(t, s.WriteTargets(context.Background(), correlateLines(t, lines)))

	buckets, err := s.CompRate(context.Background(), Minute)
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	var counts []int64
	for _, b := range buckets {
		counts = append(counts, b.Compilations)
		assert.Equal(t, int64(1), b.Targets)
	}
	assert.Equal(t, []int64{2, 3, 1}, counts)
	assert.Equal(t, int64(300), buckets[1].CodeBytes)
	assert.Equal(t, testutil.Epoch.Add(2*time.Minute), clock.Current())
}

func TestCompRate_NoCompilations(t *testing.T) {
	s := createTestStore(t)

	buckets, err := s.CompRate(context.Background(), Hour)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestQuery_Select(t *testing.T) {
	s := createSampleStore(t)

	res, err := s.Query(context.Background(), `SELECT id, name FROM targets ORDER BY id`)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, [][]any{
		{int64(1), "Foo.bar"},
		{int64(2), "Baz.qux"},
		{int64(3), "Lonely.fn"},
	}, res.Rows)
}

func TestQuery_BindArgs(t *testing.T) {
	s := createSampleStore(t)

	res, err := s.Query(context.Background(), `SELECT name FROM targets WHERE id = ?`, int64(2))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"Baz.qux"}}, res.Rows)
}

func TestQuery_RejectsWrites(t *testing.T) {
	s := createSampleStore(t)

	_, err := s.Query(context.Background(), `DELETE FROM targets`)
	require.Error(t, err)

	n, err := s.CountTargets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestQuery_WritableAfterQuery(t *testing.T) {
	s := createSampleStore(t)

	_, err := s.Query(context.Background(), `SELECT 1`)
	require.NoError(t, err)

	_, err = s.DB().Exec(`INSERT INTO targets (id, name, source, exec_count) VALUES (99, 'x', 'y', 0)`)
	assert.NoError(t, err)
}

func TestQuery_SyntaxError(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Query(context.Background(), `SELEKT`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}

func TestQuery_EmptyResult(t *testing.T) {
	s := createTestStore(t)

	res, err := s.Query(context.Background(), `SELECT id FROM targets`)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, res.Columns)
	assert.Empty(t, res.Rows)
}
