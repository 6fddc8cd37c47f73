// Package tmdb fetches posters, backdrops and logos from The Movie Database
// image endpoints for movies and TV shows.
package tmdb
