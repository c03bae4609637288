package port

import "codechunk/internal/domain"

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path     string
	Language domain.Language
	ModTime  int64
	Size     int64
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
