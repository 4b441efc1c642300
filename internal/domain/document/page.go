package document

// PageQuery selects one page of source hits.
type PageQuery struct {
	Index  string
	Query  string
	Offset int
	Limit  int

	// Full loads the whole document. Otherwise only Fields are read from _source.
	Full   bool
	Fields []string
}

// Page is one page of source hits. Total counts all matches of the query.
type Page struct {
	Total int
	Hits  []Hit
}
