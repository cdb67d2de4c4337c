// Package records flattens posts into rows and encodes them as CSV.
package records
