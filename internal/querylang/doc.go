// Package querylang parses corpus search queries into an immutable AST.
//
// A query has up to three sections separated by semicolons: a corpus set
// (@@alpha beta), a document set (@[author="Catullus"] AND [title*="carm"])
// and a text expression combining bracketed pairs with AND, OR, AND NOT and
// location operators:
//
//	@@classics;@[author="Catullus"];[value="sic"] NEAR(m=0,s=l) [value="mater"]
//
// Both semantic validation and SQL generation live in internal/querysql;
// this package only reports lexical and grammar errors.
package querylang
