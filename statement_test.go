package joli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/joli"
)

func TestStatementCompile(t *testing.T) {
	tests := []struct {
		name string
		stmt *joli.Statement
		want string
	}{
		{
			name: "select_all",
			stmt: joli.NewStatement().Select().From("users"),
			want: "SELECT * FROM users",
		},
		{
			name: "select_columns",
			stmt: joli.NewStatement().Select("id", "name").From("users"),
			want: "SELECT id, name FROM users",
		},
		{
			name: "count",
			stmt: joli.NewStatement().Count().From("users").Where("name = ?", "Ann"),
			want: `SELECT COUNT(*) AS total FROM users WHERE name = "Ann"`,
		},
		{
			name: "delete",
			stmt: joli.NewStatement().Delete().From("users").Where("id = ?", 3),
			want: `DELETE FROM users WHERE id = "3"`,
		},
		{
			name: "insert",
			stmt: joli.NewStatement().InsertInto("users").Values(map[string]any{"name": "O'Brien", "id": nil, "active": true}),
			want: "INSERT INTO users (active, id, name) VALUES (1, NULL, 'O''Brien')",
		},
		{
			name: "insert_ordered",
			stmt: joli.NewStatement().InsertInto("users").Value("name", "Ann").Value("age", 30),
			want: "INSERT INTO users (name, age) VALUES ('Ann', 30)",
		},
		{
			name: "insert_or_replace",
			stmt: joli.NewStatement().InsertOrReplaceInto("users").Value("id", 1).Value("name", "Ann"),
			want: "INSERT OR REPLACE INTO users (id, name) VALUES (1, 'Ann')",
		},
		{
			name: "replace",
			stmt: joli.NewStatement().ReplaceInto("users").Value("id", 1),
			want: "REPLACE INTO users (id) VALUES (1)",
		},
		{
			name: "update",
			stmt: joli.NewStatement().Update("users").Set(map[string]any{"name": "Anna", "score": 2.5}).Where("id = ?", 1),
			want: `UPDATE users SET name = 'Anna', score = 2.5 WHERE id = "1"`,
		},
		{
			name: "update_raw_fragment",
			stmt: joli.NewStatement().Update("users").Set(map[string]any{"visits = visits + 1": nil}).SetColumn("seen", joli.Raw("CURRENT_TIMESTAMP")),
			want: "UPDATE users SET visits = visits + 1, seen = CURRENT_TIMESTAMP",
		},
		{
			name: "join_unqualified",
			stmt: joli.NewStatement().Select("users.name", "posts.title").From("users").Join("posts", "user_id", "users.id"),
			want: "SELECT users.name, posts.title FROM users LEFT OUTER JOIN posts ON posts.user_id = users.id",
		},
		{
			name: "join_qualified",
			stmt: joli.NewStatement().Select().From("users").Join("posts", "p.user_id", "users.id"),
			want: "SELECT * FROM users LEFT OUTER JOIN posts ON p.user_id = users.id",
		},
		{
			name: "clause_order",
			stmt: joli.NewStatement().
				Limit(10).
				Offset(20).
				Order("total DESC").
				Having("total > ?", 1).
				GroupBy("city").
				Where("active = ?", 1).
				Select("city", "COUNT(*) AS total").
				From("users"),
			want: `SELECT city, COUNT(*) AS total FROM users WHERE active = "1" GROUP BY city HAVING total > "1" ORDER BY total DESC LIMIT 10 OFFSET 20`,
		},
		{
			name: "offset_without_limit",
			stmt: joli.NewStatement().Select().From("users").Offset(5),
			want: "SELECT * FROM users",
		},
		{
			name: "where_conjunction",
			stmt: joli.NewStatement().Select().From("users").Where("a = ?", 1).Where("b = ?", "x"),
			want: `SELECT * FROM users WHERE a = "1" AND b = "x"`,
		},
		{
			name: "where_sequence",
			stmt: joli.NewStatement().Select().From("users").Where("a = ? AND b = ? AND c = ?", []any{1, 2}),
			want: `SELECT * FROM users WHERE a = "1" AND b = "2" AND c = ?`,
		},
		{
			name: "where_variadic",
			stmt: joli.NewStatement().Select().From("users").Where("age BETWEEN ? AND ?", 18, 30),
			want: `SELECT * FROM users WHERE age BETWEEN "18" AND "30"`,
		},
		{
			name: "where_in",
			stmt: joli.NewStatement().Select().From("users").WhereIn("id", []int64{1, 2, 3}),
			want: "SELECT * FROM users WHERE id IN ('1', '2', '3')",
		},
		{
			name: "where_in_empty",
			stmt: joli.NewStatement().Select().From("users").Where("a = ?", 1).WhereIn("id", []int64{}),
			want: `SELECT * FROM users WHERE a = "1"`,
		},
		{
			name: "order_and_group_append",
			stmt: joli.NewStatement().Select().From("t").GroupBy("a").GroupBy("b").Order("a").Order("b DESC"),
			want: "SELECT * FROM t GROUP BY a, b ORDER BY a, b DESC",
		},
		{
			name: "alias_not_emitted",
			stmt: joli.NewStatement().Select().From("users").As("people"),
			want: "SELECT * FROM users",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := tt.stmt.Compile()
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, tt.want, tt.stmt.String())
		})
	}
}

// Values are substituted as double quoted strings without coercion. The
// engine compares them loosely, so id = "5" matches the integer 5.
func TestStatementWhereQuotesNumbers(t *testing.T) {
	query, err := joli.NewStatement().Select().From("users").Where("id = ?", 5).Compile()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE id = "5"`, query)
}

func TestStatementWhereNil(t *testing.T) {
	query, err := joli.NewStatement().Select().From("users").Where("name = ? AND id = ?", nil, 2).Compile()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE name = "null" AND id = "2"`, query)

	query, err = joli.NewStatement().Count().From("users").Having("x = ?", nil).Compile()
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) AS total FROM users HAVING x = "null"`, query)
}

func TestStatementWhereInEmptyIsNoop(t *testing.T) {
	base := joli.NewStatement().Delete().From("users")
	before := base.String()
	base.WhereIn("id")
	base.WhereIn("id", []any{})
	assert.Equal(t, before, base.String())
	assert.NotContains(t, base.String(), "IN ()")
}

func TestStatementErrors(t *testing.T) {
	t.Run("no_operation", func(t *testing.T) {
		_, err := joli.NewStatement().From("users").Compile()
		require.Error(t, err)
		assert.True(t, joli.IsStatementError(err))
		assert.Contains(t, err.Error(), "operation type must be one of select/insert/update/delete/replace/count")
		assert.Empty(t, joli.NewStatement().String())
	})

	t.Run("operation_twice", func(t *testing.T) {
		s := joli.NewStatement().Select().Delete().From("users")
		_, err := s.Compile()
		require.Error(t, err)
		assert.True(t, joli.IsStatementError(err))
		assert.Equal(t, joli.OpSelect, s.Op())
	})

	t.Run("no_table", func(t *testing.T) {
		_, err := joli.NewStatement().Select().Compile()
		assert.True(t, joli.IsStatementError(err))
	})

	t.Run("insert_without_values", func(t *testing.T) {
		_, err := joli.NewStatement().InsertInto("users").Compile()
		assert.True(t, joli.IsStatementError(err))
	})

	t.Run("update_without_set", func(t *testing.T) {
		_, err := joli.NewStatement().Update("users").Compile()
		assert.True(t, joli.IsStatementError(err))
	})
}

func TestOp(t *testing.T) {
	assert.Equal(t, "select", joli.OpSelect.String())
	assert.Equal(t, "insert or replace", joli.OpInsertOrReplace.String())
	assert.Equal(t, "Op(42)", joli.Op(42).String())
	assert.True(t, joli.OpInsert.Is(joli.OpInsert, joli.OpReplace))
	assert.False(t, joli.OpDelete.Is(joli.OpInsert, joli.OpReplace))
}
