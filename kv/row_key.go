package kv

const (
	rowKeySeparator  = ":"
	rowKeyTerminator = ";"
)

// RowKey builds the fully qualified key addressing one record:
// namespace, table and record id joined by ':'.
func RowKey(namespace, table, id string) []byte {
	return []byte(namespace + rowKeySeparator + table + rowKeySeparator + id)
}

// RowKeyRangeEnd builds the exclusive upper bound for a whole-table range
// read. ';' is the byte after ':', so every key of the table sorts below the
// bound and every key of any other table sorts outside it.
func RowKeyRangeEnd(namespace, table string) []byte {
	return []byte(namespace + rowKeySeparator + table + rowKeyTerminator)
}
