package util

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	_ "github.com/viant/afsc/s3"
)

// FileSystem resolves local paths and s3:// URLs alike.
var FileSystem = afs.New()

func FileExists(ctx context.Context, filename string) (bool, error) {
	return FileSystem.Exists(ctx, filename)
}

// FileSize returns the size in bytes of the object at filename.
func FileSize(ctx context.Context, filename string) (int64, error) {
	object, err := FileSystem.Object(ctx, filename)
	if err != nil {
		return 0, err
	}
	return object.Size(), nil
}

func ReadFileBytes(ctx context.Context, filename string) (outBytes []byte, err error) {
	file, err := FileSystem.OpenURL(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer func(file io.Closer) {
		err = errors.Join(err, CloseFile(file))
	}(file)

	outBytes, err = io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return outBytes, nil
}

func CloseFile(file io.Closer) error {
	return file.Close()
}

func GetPathType(path string) string {
	if strings.HasPrefix(path, "s3://") {
		return "S3"
	}
	return "os"
}

// PathJoinSafe wrapper around filepath.Join to ensure that paths are correctly constructed
// if the path is a normal OS path, just use filepath.Join
// if the path is S3, trim any trailing slashes and construct it manually from the components
// so that double slashes (e.g. s3://) are preserved.
func PathJoinSafe(elem ...string) string {
	var path string

	switch GetPathType(elem[0]) {
	case "S3":
		basePath := strings.TrimSuffix(elem[0], "/")
		path = basePath + "/" + filepath.ToSlash(filepath.Join(elem[1:]...))
	default:
		path = filepath.Join(elem...)
	}
	return path
}

// ReplaceExt swaps the extension of a path or URL, e.g. model.xml -> model.bin.
func ReplaceExt(path string, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
