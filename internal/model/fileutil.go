package model

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
)

// MaxUploadSize is the largest file the staging area accepts (10MB).
const MaxUploadSize = 10 * 1024 * 1024

// ErrFileTooLarge is returned for files over MaxUploadSize.
var ErrFileTooLarge = errors.New("file exceeds 10MB limit")

// LocalFile describes a file on disk that is about to be staged.
type LocalFile struct {
	Path        string // Absolute path on disk
	Name        string // Base name sent to the backend
	Size        int64
	ContentType string
}

// ExpandTilde expands ~ to the user's home directory
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}

// InspectLocalFile stats a file for upload and sniffs its content type.
// Directories and files over MaxUploadSize are rejected.
func InspectLocalFile(path string) (LocalFile, error) {
	path = ExpandTilde(path)
	info, err := os.Stat(path)
	if err != nil {
		return LocalFile{}, errors.Wrap(err, "stat")
	}
	if info.IsDir() {
		return LocalFile{}, errors.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxUploadSize {
		return LocalFile{}, errors.Wrapf(ErrFileTooLarge, "%s (%d bytes)", info.Name(), info.Size())
	}

	mt, err := mimetype.DetectFile(path)
	contentType := "application/octet-stream"
	if err == nil {
		contentType = mt.String()
	}

	return LocalFile{
		Path:        path,
		Name:        info.Name(),
		Size:        info.Size(),
		ContentType: contentType,
	}, nil
}
