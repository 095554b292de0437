package helpers

import "strings"

// QuoteIdentifier backtick-quotes a MySQL identifier (table or column name)
// coming from configuration, escaping embedded backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteQualified quotes a table-qualified column as `table`.`column`.
func QuoteQualified(table, column string) string {
	return QuoteIdentifier(table) + "." + QuoteIdentifier(column)
}

// EscapeStringLiteral escapes a value for inline substitution into a SQL
// string literal. Only used for the configured custom query's customer-id
// placeholder; everything else goes through placeholders.
func EscapeStringLiteral(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`"`, `\"`,
		"\x00", `\0`,
		"\n", `\n`,
		"\r", `\r`,
		"\x1a", `\Z`,
	)
	return replacer.Replace(value)
}
