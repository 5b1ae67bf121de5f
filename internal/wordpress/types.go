package wordpress

// wp-json/wp/v2 shapes. Read responses render title/content as
// {"rendered": "..."} objects while create payloads take plain strings, so
// reads and writes use separate structs.

type Rendered struct {
	Rendered string `json:"rendered"`
}

// Page is a page as returned by the API.
type Page struct {
	ID     int      `json:"id"`
	Title  Rendered `json:"title"`
	Slug   string   `json:"slug"`
	Status string   `json:"status"`
}

// NewPage is a page create payload.
type NewPage struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Slug    string `json:"slug,omitempty"`
	Status  string `json:"status,omitempty"`
}

// Post is a blog post as returned by the API.
type Post struct {
	ID     int      `json:"id"`
	Title  Rendered `json:"title"`
	Slug   string   `json:"slug"`
	Status string   `json:"status"`
}

// NewPost is a post create payload.
type NewPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Slug    string `json:"slug,omitempty"`
	Status  string `json:"status,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Media is a media library attachment.
type Media struct {
	ID           int      `json:"id"`
	SourceURL    string   `json:"source_url"`
	AltText      string   `json:"alt_text"`
	Title        Rendered `json:"title"`
	MediaDetails struct {
		File string `json:"file"`
	} `json:"media_details"`
}
