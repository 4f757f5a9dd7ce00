package store

// Attribute is a name/value pair attached to a document or span.
type Attribute struct {
	Name  string
	Value string
}

// Corpus is a named set of documents.
type Corpus struct {
	ID    string
	Title string
}

// Document is an indexed text with its privileged metadata.
type Document struct {
	ID         int64
	Author     string
	Title      string
	DateValue  float64
	SortKey    string
	Source     string
	ProfileID  string
	Attributes []Attribute
	Corpora    []string
}

// Span is a token or structure covering the ordinal positions P1..P2 of a
// document. Tokens have the type "tok" and P1 == P2.
type Span struct {
	ID         int64
	DocumentID int64
	Type       string
	P1         int
	P2         int
	Index      int
	Length     int
	Language   string
	Pos        string
	Lemma      string
	Value      string
	Text       string
	Attributes []Attribute
}
