// Package fanarttv fetches artwork from the fanart.tv v3 API for movies,
// TV shows, music artists and albums.
//
// fanart.tv does not report image dimensions, so each image kind carries the
// fixed size fanart.tv requires for uploads. Popularity comes from user likes.
package fanarttv
