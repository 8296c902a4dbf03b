package fetch

import (
	"fmt"
	"net/url"
)

const baseURL = "https://www.youtube.com"

// searchFilter restricts search results to items carrying closed captions.
const searchFilter = "EgQIBCgB"

// SearchURL builds the results page for one query at one page number.
func SearchURL(query string, page int) string {
	return fmt.Sprintf("%s/results?sp=%s&q=%s&p=%d", baseURL, searchFilter, url.QueryEscape(query), page)
}

// WatchURL builds the direct URL for one media item.
func WatchURL(mediaID string) string {
	return fmt.Sprintf("%s/watch?v=%s", baseURL, url.QueryEscape(mediaID))
}

// ChannelURL builds the uploads listing for one channel.
func ChannelURL(channelID string) string {
	return fmt.Sprintf("%s/channel/%s/videos", baseURL, url.PathEscape(channelID))
}
