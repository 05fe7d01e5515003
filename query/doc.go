// Package query runs filter, distinct, projection and terminal queries over
// decoded records with the pipeline package.
//
// Records are decoded from JSON (a single array or object), JSON lines, YAML
// or CSV with a header row, and encoded back to any of those formats.
//
//	records, err := query.Decode(os.Stdin, query.FormatJSONL)
//	cond, err := query.ParseCondition("age>=30")
//	q := query.Query{Where: []query.Condition{cond}, Select: []string{"name"}, Mode: query.ModeList}
//	res, err := query.Run(ctx, pipeline.New(records), q)
//
// Conditions compare numerically when both sides read as numbers and as
// strings otherwise. A record missing the field never matches.
package query
