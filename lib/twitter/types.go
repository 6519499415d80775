package twitter

import "time"

// SearchResponse is the body of GET search/tweets.json.
type SearchResponse struct {
	Statuses []Post         `json:"statuses"`
	Metadata SearchMetadata `json:"search_metadata"`
}

type SearchMetadata struct {
	CompletedIn float64 `json:"completed_in"`
	MaxIDStr    string  `json:"max_id_str"`
	NextResults string  `json:"next_results"`
	Query       string  `json:"query"`
	Count       int     `json:"count"`
	SinceIDStr  string  `json:"since_id_str"`
}

type Post struct {
	IDStr         string `json:"id_str"`
	CreatedAt     string `json:"created_at"`
	Text          string `json:"text"`
	FullText      string `json:"full_text,omitempty"`
	Lang          string `json:"lang"`
	User          User   `json:"user"`
	RetweetCount  int    `json:"retweet_count"`
	FavoriteCount int    `json:"favorite_count"`
	// set only on retweets
	RetweetedStatus *Post `json:"retweeted_status,omitempty"`
}

type User struct {
	IDStr      string `json:"id_str"`
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

// Body is the post's text, preferring the untruncated form returned in
// extended mode.
func (p Post) Body() string {
	if p.FullText != "" {
		return p.FullText
	}
	return p.Text
}

func (p Post) IsRetweet() bool {
	return p.RetweetedStatus != nil
}

// ex. "Sun Jan 01 04:12:47 +0000 2017"
const createdAtLayout = time.RubyDate

func (p Post) CreatedTime() (time.Time, error) {
	return time.Parse(createdAtLayout, p.CreatedAt)
}

type apiErrors struct {
	Errors []APIErrorEntry `json:"errors"`
}

type APIErrorEntry struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
