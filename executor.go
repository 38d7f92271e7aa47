package typeorm

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Row is one result row keyed by column name.
type Row = map[string]any

// queryExecutor issues raw SQL against a connection handle and layers the
// insert/update/delete and closure-table helpers on top.
type queryExecutor struct {
	manager   *connectionManager
	logger    QueryLogger
	telemetry *telemetry
	metrics   *driverMetrics
}

// query executes sql with positional args on the given connection and
// materializes the result. The statement is logged before execution; on
// failure the statement and the error are logged and the error is surfaced
// unchanged.
func (e *queryExecutor) query(ctx context.Context, conn *DatabaseConnection, sql string, args ...any) ([]Row, error) {
	if !e.manager.established() {
		return nil, ErrConnectionNotSet
	}
	e.logger.LogQuery(sql, args)

	ctx, span := e.telemetry.startSpan(ctx, "query", sql)
	start := time.Now()
	rows, err := conn.client.Query(ctx, sql, args...)
	if err != nil {
		e.metrics.recordQuery(ctx, time.Since(start), err)
		e.telemetry.finishSpan(span, err)
		e.logger.LogFailedQuery(sql, args)
		e.logger.LogQueryError(err)
		return nil, err
	}
	defer rows.Close()

	columns := rows.Columns()
	var result []Row
	for rows.Next() {
		values, verr := rows.Values()
		if verr != nil {
			err = verr
			break
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(values) {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	if err == nil {
		err = rows.Err()
	}
	e.metrics.recordQuery(ctx, time.Since(start), err)
	e.telemetry.finishSpan(span, err)
	if err != nil {
		e.logger.LogFailedQuery(sql, args)
		e.logger.LogQueryError(err)
		return nil, err
	}
	return result, nil
}

// insert builds and runs an INSERT for the given column values, optionally
// with a RETURNING clause for the generated id column.
func (e *queryExecutor) insert(ctx context.Context, conn *DatabaseConnection, table string, columnValues map[string]any, idColumn string) ([]Row, error) {
	keys := sortedKeys(columnValues)
	columns := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		columns[i] = escapeIdentifier(k)
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = columnValues[k]
	}
	sql := "INSERT INTO " + escapeIdentifier(table) +
		"(" + strings.Join(columns, ", ") + ")" +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"
	if idColumn != "" {
		sql += " RETURNING " + escapeIdentifier(idColumn)
	}
	return e.query(ctx, conn, sql, args...)
}

// update builds and runs an UPDATE. SET placeholders start at $1 and the
// condition placeholders continue after them, giving one flat parameter
// list: update values first, then condition values. Empty conditions omit
// the WHERE clause and update every row.
func (e *queryExecutor) update(ctx context.Context, conn *DatabaseConnection, table string, valuesMap, conditions map[string]any) error {
	updateValues := strings.Join(parametrize(valuesMap, 0), ", ")
	conditionString := strings.Join(parametrize(conditions, len(valuesMap)), " AND ")

	args := make([]any, 0, len(valuesMap)+len(conditions))
	for _, k := range sortedKeys(valuesMap) {
		args = append(args, valuesMap[k])
	}
	for _, k := range sortedKeys(conditions) {
		args = append(args, conditions[k])
	}

	sql := "UPDATE " + escapeIdentifier(table) + " SET " + updateValues
	if conditionString != "" {
		sql += " WHERE " + conditionString
	}
	_, err := e.query(ctx, conn, sql, args...)
	return err
}

// delete builds and runs a DELETE scoped by the given conditions.
func (e *queryExecutor) delete(ctx context.Context, conn *DatabaseConnection, table string, conditions map[string]any) error {
	conditionString := strings.Join(parametrize(conditions, 0), " AND ")
	args := make([]any, 0, len(conditions))
	for _, k := range sortedKeys(conditions) {
		args = append(args, conditions[k])
	}
	sql := "DELETE FROM " + escapeIdentifier(table) + " WHERE " + conditionString
	_, err := e.query(ctx, conn, sql, args...)
	return err
}

// insertIntoClosureTable maintains an (ancestor, descendant[, level]) closure
// table when a new node is attached under parentID: every ancestor row of the
// parent is copied for the new node, plus the node's self-row. It returns the
// new node's depth.
//
// newID and parentID are interpolated directly into the statement text, so
// this path is restricted to driver-internal values (for example the id a
// prior insert returned), never externally supplied strings.
func (e *queryExecutor) insertIntoClosureTable(ctx context.Context, conn *DatabaseConnection, table string, newID, parentID any, hasLevel bool) (int, error) {
	newIDText := fmt.Sprint(newID)
	parentIDText := fmt.Sprint(parentID)

	var sql string
	if hasLevel {
		sql = "INSERT INTO " + table + `("ancestor", "descendant", "level") ` +
			`SELECT "ancestor", ` + newIDText + `, "level" + 1 FROM ` + table + ` WHERE "descendant" = ` + parentIDText + " " +
			"UNION ALL SELECT " + newIDText + ", " + newIDText + ", 1"
	} else {
		sql = "INSERT INTO " + table + `("ancestor", "descendant") ` +
			`SELECT "ancestor", ` + newIDText + ` FROM ` + table + ` WHERE "descendant" = ` + parentIDText + " " +
			"UNION ALL SELECT " + newIDText + ", " + newIDText
	}
	if _, err := e.query(ctx, conn, sql); err != nil {
		return 0, err
	}
	if !hasLevel {
		return 1, nil
	}

	results, err := e.query(ctx, conn, `SELECT MAX("level") as "level" FROM `+table+` WHERE "descendant" = `+parentIDText)
	if err != nil {
		return 0, err
	}
	if len(results) > 0 {
		if level, ok := asInt(results[0]["level"]); ok {
			return level + 1, nil
		}
	}
	return 1, nil
}

// parametrize renders `"column"=$n` assignment terms for the map's keys in
// sorted order, with placeholder numbering starting after startFrom.
func parametrize(objectLiteral map[string]any, startFrom int) []string {
	keys := sortedKeys(objectLiteral)
	terms := make([]string, len(keys))
	for i, k := range keys {
		terms[i] = escapeIdentifier(k) + "=$" + strconv.Itoa(startFrom+i+1)
	}
	return terms
}

// escapeIdentifier double-quotes an identifier. Shared by the executor and
// the Driver's Escape*Name surface.
func escapeIdentifier(name string) string { return `"` + name + `"` }

// sortedKeys returns the map keys in sorted order. Go maps iterate in random
// order; sorting keeps generated statements and parameter lists stable.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asInt coerces the level aggregate to an int across the numeric shapes a
// transport may hand back.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if n == "" {
			return 0, false
		}
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
