package typeorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeQueryWithParameters_ScalarAndList(t *testing.T) {
	sql, args := EscapeQueryWithParameters(
		"SELECT * FROM t WHERE x = :v1 AND y IN (:v2)",
		map[string]any{"v1": 5, "v2": []int{1, 2, 3}},
	)

	assert.Equal(t, "SELECT * FROM t WHERE x = $1 AND y IN ($2, $3, $4)", sql)
	assert.Equal(t, []any{5, 1, 2, 3}, args)
}

func TestEscapeQueryWithParameters_EmptyParameters(t *testing.T) {
	const query = "SELECT * FROM t WHERE x = :v1"

	sql, args := EscapeQueryWithParameters(query, nil)
	assert.Equal(t, query, sql)
	assert.Empty(t, args)

	sql, args = EscapeQueryWithParameters(query, map[string]any{})
	assert.Equal(t, query, sql)
	assert.Empty(t, args)
}

func TestEscapeQueryWithParameters_UnboundTokenUntouched(t *testing.T) {
	sql, args := EscapeQueryWithParameters(
		"SELECT * FROM t WHERE x = :known AND y = :unknown",
		map[string]any{"known": 1},
	)

	assert.Equal(t, "SELECT * FROM t WHERE x = $1 AND y = :unknown", sql)
	assert.Equal(t, []any{1}, args)
}

func TestEscapeQueryWithParameters_WordBounded(t *testing.T) {
	// :value_ex is a different word than :value and must not be rewritten.
	sql, args := EscapeQueryWithParameters(
		"SELECT :value, :value_ex FROM t",
		map[string]any{"value": 42},
	)

	assert.Equal(t, "SELECT $1, :value_ex FROM t", sql)
	assert.Equal(t, []any{42}, args)
}

func TestEscapeQueryWithParameters_RepeatedToken(t *testing.T) {
	// Each occurrence gets its own placeholder and argument, in text order.
	sql, args := EscapeQueryWithParameters(
		"SELECT * FROM t WHERE a = :v OR b = :v",
		map[string]any{"v": "x"},
	)

	assert.Equal(t, "SELECT * FROM t WHERE a = $1 OR b = $2", sql)
	assert.Equal(t, []any{"x", "x"}, args)
}

func TestEscapeQueryWithParameters_ByteSliceIsScalar(t *testing.T) {
	sql, args := EscapeQueryWithParameters(
		"INSERT INTO t (blob) VALUES (:data)",
		map[string]any{"data": []byte{0x01, 0x02}},
	)

	require.Equal(t, "INSERT INTO t (blob) VALUES ($1)", sql)
	require.Len(t, args, 1)
	assert.Equal(t, []byte{0x01, 0x02}, args[0])
}

func TestEscapeQueryWithParameters_KnownLiteralHazard(t *testing.T) {
	// Documented limitation: the scan is plain text substitution and matches
	// tokens inside string literals too.
	sql, _ := EscapeQueryWithParameters(
		"SELECT ':v' FROM t WHERE x = :v",
		map[string]any{"v": 1},
	)

	assert.Equal(t, "SELECT '$1' FROM t WHERE x = $2", sql)
}
