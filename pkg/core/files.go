package core

import (
	"context"
	"fmt"
	"io"
)

// Files lists the uploaded files of the signed-in site.
func (s *Service) Files(ctx context.Context) ([]File, error) {
	var files []File
	if err := s.Request(ctx, PathFiles, nil, &files); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// GetFile fetches the record of one file.
func (s *Service) GetFile(ctx context.Context, name string) (File, error) {
	if name == "" {
		return File{}, ErrEmptyName
	}
	var f File
	if err := s.Request(ctx, PathFile, nameParams{Name: name}, &f); err != nil {
		return File{}, fmt.Errorf("get file %s: %w", name, err)
	}
	if f.Name == "" {
		f.Name = name
	}
	return f, nil
}

// UploadFile sends body as a multipart upload. Progress is reported both to
// onProgress (when set) and as UploadProgress events on the bus.
func (s *Service) UploadFile(ctx context.Context, name string, body io.Reader, onProgress ProgressFunc) error {
	if name == "" {
		return ErrEmptyName
	}
	if err := s.usable(); err != nil {
		return err
	}

	progress := func(percent float64) {
		if onProgress != nil {
			onProgress(percent)
		}
		s.bus.Emit(UploadProgress{Name: name, Percent: percent})
	}

	s.logger.Debug("upload", "name", name)
	var resp Response
	upload := Upload{Name: name, Filename: name, Body: body}
	if err := s.transport.Upload(ctx, PathUpload, upload, progress, &resp); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if resp.Error {
		return fmt.Errorf("upload %s: %w", name, ErrUnknownResult)
	}
	return nil
}

// RenameFile renames an uploaded file.
func (s *Service) RenameFile(ctx context.Context, oldName, newName string) error {
	if oldName == "" || newName == "" {
		return ErrEmptyName
	}
	var resp Response
	if err := s.Request(ctx, PathRenameFile, renameParams{OldName: oldName, NewName: newName}, &resp); err != nil {
		return fmt.Errorf("rename file %s: %w", oldName, err)
	}
	return nil
}

// DeleteFile removes an uploaded file.
func (s *Service) DeleteFile(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	var resp Response
	if err := s.Request(ctx, PathDeleteFile, nameParams{Name: name}, &resp); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}
