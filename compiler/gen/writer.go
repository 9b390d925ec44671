package gen

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// EmitResult reports the outcome of writing one file.
type EmitResult struct {
	// Written is false when a generate-once file already existed.
	Written bool
	// Path of the target file.
	Path string
}

// Emit writes rendered content to its target under root, creating the
// intermediate directories. A generate-once target that already exists is
// left untouched. An always-regenerate target is replaced atomically, so an
// interrupted pass never leaves a partially written file behind.
func Emit(root string, content []byte, settings TargetSettings) (EmitResult, error) {
	if err := settings.check(); err != nil {
		return EmitResult{}, NewFileWriteError(settings.Path(root), "check", err)
	}
	path := settings.Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return EmitResult{Path: path}, NewFileWriteError(path, "mkdir", err)
	}
	switch settings.Policy {
	case GenerateOnce:
		return createOnce(path, content)
	default:
		return replace(path, content)
	}
}

// createOnce creates the file exclusively. The existence check and the
// creation are one operation, so an existing file is never modified.
func createOnce(path string, content []byte) (EmitResult, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case errors.Is(err, fs.ErrExist):
		return EmitResult{Path: path}, nil
	case err != nil:
		return EmitResult{Path: path}, NewFileWriteError(path, "create", err)
	}
	if _, err := f.Write(content); err != nil {
		// Errors intentionally ignored as we're already in error state.
		_ = f.Close()
		_ = os.Remove(path)
		return EmitResult{Path: path}, NewFileWriteError(path, "write", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return EmitResult{Path: path}, NewFileWriteError(path, "close", err)
	}
	return EmitResult{Written: true, Path: path}, nil
}

// replace writes the content to a temporary file next to the target and
// renames it over the target.
func replace(path string, content []byte) (EmitResult, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return EmitResult{Path: path}, NewFileWriteError(path, "create", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return EmitResult{Path: path}, NewFileWriteError(path, "write", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return EmitResult{Path: path}, NewFileWriteError(path, "chmod", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return EmitResult{Path: path}, NewFileWriteError(path, "close", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return EmitResult{Path: path}, NewFileWriteError(path, "rename", err)
	}
	return EmitResult{Written: true, Path: path}, nil
}

// remove deletes the file and its directory if it is left empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
