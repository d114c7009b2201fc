// Package contractsearch provides live full-text search over business
// contracts: an in-memory inverted index with exact, partial, and fuzzy
// matching, accumulating relevance scores, filters, and typed-query
// debouncing.
//
// # Embedded use with an in-process contract set
//
//	engine, _ := contractsearch.New(contractsearch.StaticSource(contracts))
//	defer engine.Close()
//
//	results, total, _ := engine.Search(ctx, "software",
//	    contractsearch.Filters{}, contractsearch.SortRelevance, contractsearch.Desc, 20)
//
// # Live session with debounced typing
//
//	engine.SetQuery(ctx, "soft")
//	engine.SetQuery(ctx, "software") // previous keystroke never fires
//	// ...after the debounce pause:
//	page := engine.Results()
//
// History persistence and saved searches activate with WithRedis; without
// it both degrade to process memory.
package contractsearch
