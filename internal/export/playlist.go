package export

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/handiism/sd-gallery/internal/model"
)

// writeM3U generates an extended M3U playlist.
//
// Image viewers such as mpv and VLC play it as a slideshow. Paths are
// absolute so the playlist can live anywhere:
//
//	#EXTM3U
//	#EXTINF:-1,anything-v4 - 00001.png
//	/outputs/txt2img-images/2024-01-01/00001.png
func writeM3U(w io.Writer, records []*model.ImageRecord) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("#EXTM3U\n"); err != nil {
		return err
	}
	for _, r := range records {
		fmt.Fprintf(bw, "#EXTINF:-1,%s\n", playlistTitle(r))
		fmt.Fprintln(bw, r.Path)
	}

	return bw.Flush()
}

// playlistTitle names an entry after its model and file name.
func playlistTitle(r *model.ImageRecord) string {
	name := filepath.Base(r.Path)
	if r.Model == "" {
		return name
	}
	// A comma or newline would end the EXTINF title early.
	title := strings.NewReplacer(",", " ", "\n", " ").Replace(r.Model)
	return title + " - " + name
}
