// Package util provides small generic helpers shared by the query layer and
// the command line.
package util
