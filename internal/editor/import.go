package editor

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chenyangcun/aiedit/internal/models"
)

// ImportFailure records one file that could not be imported.
type ImportFailure struct {
	Path string
	Err  error
}

// ImportFiles loads image files into the workspace. Unreadable or
// non-image files are skipped and reported; the rest of the batch goes
// through. The first image added to an empty workspace becomes the
// selection.
func (e *Editor) ImportFiles(paths []string) ([]*models.Image, []ImportFailure) {
	var (
		added  []*models.Image
		failed []ImportFailure
	)
	for _, path := range paths {
		img, err := readImageFile(path)
		if err != nil {
			e.logger.Warn("skipping file", "path", path, "error", err)
			failed = append(failed, ImportFailure{Path: path, Err: err})
			continue
		}
		e.state.AddImage(img)
		added = append(added, img)
	}
	return added, failed
}

func readImageFile(path string) (*models.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%s is not an image (detected %s)", path, mimeType)
	}

	name := filepath.Base(path)
	return &models.Image{
		ID:               fmt.Sprintf("%s-%d", name, time.Now().UnixMilli()),
		Name:             name,
		OriginalData:     data,
		OriginalMimeType: mimeType,
	}, nil
}
