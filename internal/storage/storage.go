package storage

import "io"

type Storage interface {
	SaveBlob(data []byte, ext string) (string, error)
	OpenFile(path string) (io.ReadSeekCloser, error)
	DeleteFile(path string) error
}
