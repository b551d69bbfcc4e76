// Package main provides the wavedeck CLI for driving a running server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
)

var (
	app    = kingpin.New("wavedeck-cli", "wavedeck player client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()

	statusCmd  = app.Command("status", "Show the player session")
	libraryCmd = app.Command("library", "Show the library summary")
	refreshCmd = app.Command("refresh", "Force a library refresh")

	searchCmd   = app.Command("search", "Search tracks and albums")
	searchQuery = searchCmd.Arg("query", "Search query").Required().String()

	playCmd      = app.Command("play", "Play a track")
	playTrackID  = playCmd.Arg("track-id", "Track ID").Required().String()
	playAlbum    = playCmd.Flag("album", "Album ID to queue the rest of").String()
	playPlaylist = playCmd.Flag("playlist", "Playlist ID to queue the rest of").String()

	pauseCmd   = app.Command("pause", "Pause playback")
	resumeCmd  = app.Command("resume", "Resume playback")
	advanceCmd = app.Command("advance", "Advance to the next queued track")

	queueCmd        = app.Command("queue", "Manage the pending queue")
	queueAddCmd     = queueCmd.Command("add", "Append a track to the queue")
	queueAddTrackID = queueAddCmd.Arg("track-id", "Track ID").Required().String()
	queueRmCmd      = queueCmd.Command("remove", "Remove a track from the queue")
	queueRmTrackID  = queueRmCmd.Arg("track-id", "Track ID").Required().String()
	queueClearCmd   = queueCmd.Command("clear", "Clear the queue")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case statusCmd.FullCommand():
		call(http.MethodGet, "/api/player", nil)
	case libraryCmd.FullCommand():
		call(http.MethodGet, "/api/library", nil)
	case refreshCmd.FullCommand():
		call(http.MethodPost, "/api/library/refresh", nil)
	case searchCmd.FullCommand():
		call(http.MethodGet, "/api/search?q="+url.QueryEscape(*searchQuery), nil)
	case playCmd.FullCommand():
		body := map[string]string{"track_id": *playTrackID}
		if *playAlbum != "" {
			body["context_kind"] = "album"
			body["context_id"] = *playAlbum
		} else if *playPlaylist != "" {
			body["context_kind"] = "playlist"
			body["context_id"] = *playPlaylist
		}
		call(http.MethodPost, "/api/player/play", body)
	case pauseCmd.FullCommand():
		call(http.MethodPost, "/api/player/pause", nil)
	case resumeCmd.FullCommand():
		call(http.MethodPost, "/api/player/resume", nil)
	case advanceCmd.FullCommand():
		call(http.MethodPost, "/api/player/advance", nil)
	case queueAddCmd.FullCommand():
		call(http.MethodPost, "/api/player/queue", map[string]string{"track_id": *queueAddTrackID})
	case queueRmCmd.FullCommand():
		call(http.MethodDelete, "/api/player/queue/"+url.PathEscape(*queueRmTrackID), nil)
	case queueClearCmd.FullCommand():
		call(http.MethodDelete, "/api/player/queue", nil)
	}
}

// call performs one API request and pretty-prints the JSON response.
func call(method, path string, body any) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	req, err := http.NewRequest(method, *server+path, &buf)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
	} else {
		fmt.Println(pretty.String())
	}

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed: %s\n", resp.Status)
		os.Exit(1)
	}
}
