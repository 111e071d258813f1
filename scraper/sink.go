package scraper

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// IndexData is optional full-text search metadata attached to a sink item.
type IndexData struct {
	Title   string
	Content string
}

// Sink receives every produced asset and document. The real archive
// container writer is an external collaborator; DirSink below is the
// bundled implementation used by the CLI.
type Sink interface {
	// AddItem stores an in-memory document at path.
	AddItem(path string, content []byte, mimetype string, isFront bool, index *IndexData) error
	// AddFile stores the file at filePath under path. When deleteAfter is
	// set the local file is removed once consumed.
	AddFile(path, filePath, mimetype string, deleteAfter bool) error
}

// DirSink writes the archive contents into a plain directory tree.
type DirSink struct {
	root string
}

// NewDirSink creates the output directory if needed.
func NewDirSink(root string) (*DirSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("scraper: create output dir: %w", err)
	}
	return &DirSink{root: root}, nil
}

func (s *DirSink) AddItem(path string, content []byte, mimetype string, isFront bool, index *IndexData) error {
	dst := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("scraper: sink %s: %w", path, err)
	}
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return fmt.Errorf("scraper: sink %s: %w", path, err)
	}
	return nil
}

func (s *DirSink) AddFile(path, filePath, mimetype string, deleteAfter bool) error {
	dst := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("scraper: sink %s: %w", path, err)
	}
	if err := copyFile(filePath, dst); err != nil {
		return fmt.Errorf("scraper: sink %s: %w", path, err)
	}
	if deleteAfter {
		if err := os.Remove(filePath); err != nil {
			return fmt.Errorf("scraper: remove consumed %s: %w", filePath, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
