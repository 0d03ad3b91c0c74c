package civitai

// SortMode selects the ordering the registry applies to community images.
type SortMode string

const (
	SortMostReactions SortMode = "Most Reactions"
	SortMostComments  SortMode = "Most Comments"
	SortNewest        SortMode = "Newest"
)

// SortModes lists the orderings the registry accepts.
var SortModes = []SortMode{SortMostReactions, SortMostComments, SortNewest}

// ParseSort maps caller input onto a valid sort mode, falling back to Newest.
func ParseSort(s string) SortMode {
	switch SortMode(s) {
	case SortMostReactions, SortMostComments, SortNewest:
		return SortMode(s)
	default:
		return SortNewest
	}
}

// ModelVersion is the registry's record for one published model version.
type ModelVersion struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	BaseModel    string   `json:"baseModel"`
	TrainedWords []string `json:"trainedWords"`
	Model        struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"model"`
}

// ImagePost is one community image with its generation metadata.
type ImagePost struct {
	ID    int64       `json:"id"`
	URL   string      `json:"url"`
	Meta  *ImageMeta  `json:"meta"`
	Stats *ImageStats `json:"stats"`
}

// ImageMeta carries the generation parameters attached to an image.
type ImageMeta struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt"`
}

// ImageStats carries the community reaction counts for an image.
type ImageStats struct {
	LikeCount    int `json:"likeCount"`
	HeartCount   int `json:"heartCount"`
	LaughCount   int `json:"laughCount"`
	CryCount     int `json:"cryCount"`
	CommentCount int `json:"commentCount"`
}

type imagesResponse struct {
	Items    []ImagePost `json:"items"`
	Metadata struct {
		NextPage string `json:"nextPage"`
	} `json:"metadata"`
}

// PageSet is the outcome of a bounded multi-page fetch. Pages that failed
// after retries are counted but do not abort the fetch.
type PageSet struct {
	Posts        []ImagePost
	PagesFetched int
	PagesFailed  int
}
