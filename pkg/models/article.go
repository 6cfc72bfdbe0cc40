package models

// ArticleMetadata is the record stored in an article's data.json.
type ArticleMetadata struct {
	Title    string `json:"title"`
	FileName string `json:"file_name"`
	Posted   string `json:"posted"`
	Hidden   bool   `json:"hidden"`
}

// Article pairs a markdown body with the metadata from the same directory.
type Article struct {
	Metadata ArticleMetadata
	Body     string // Raw markdown, read verbatim
}
