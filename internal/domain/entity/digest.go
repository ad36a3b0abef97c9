package entity

// Thread is one post of a social thread.
type Thread struct {
	Heading string `json:"heading"`
	Summary string `json:"summary"`
}

// ThreadSet is the list of posts for one platform.
type ThreadSet struct {
	Threads []Thread `json:"threads"`
}

// Content is the per-platform thread bundle persisted as content.json.
type Content struct {
	Twitter   ThreadSet `json:"twitter"`
	LinkedIn  ThreadSet `json:"linkedin"`
	Instagram ThreadSet `json:"instagram"`
}

// Post is one rendered social post. Link is the article link already embedded in
// Text, kept separately for channels that attach it as a preview.
type Post struct {
	Text      string `json:"text"`
	Link      string `json:"link,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}
