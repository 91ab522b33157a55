package core

import (
	"context"
	"fmt"
)

// GetPage fetches a single page by name.
func (s *Service) GetPage(ctx context.Context, name string) (Page, error) {
	if name == "" {
		return Page{}, ErrEmptyName
	}
	var p Page
	if err := s.Request(ctx, PathPage, nameParams{Name: name}, &p); err != nil {
		return Page{}, fmt.Errorf("get page %s: %w", name, err)
	}
	return p, nil
}

// Pages lists every page of the signed-in site.
func (s *Service) Pages(ctx context.Context) ([]Page, error) {
	var pages []Page
	if err := s.Request(ctx, PathPages, nil, &pages); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// CreatePage creates a page. An empty name lets the backend pick its
// default ("new_page.md").
func (s *Service) CreatePage(ctx context.Context, p Page) (Page, error) {
	var created Page
	if err := s.Request(ctx, PathCreatePage, p, &created); err != nil {
		return Page{}, fmt.Errorf("create page: %w", err)
	}
	if created.Name == "" {
		created = p
	}
	return created, nil
}

// EditPage overwrites the markdown and HTML of an existing page.
func (s *Service) EditPage(ctx context.Context, p Page) error {
	if p.Name == "" {
		return ErrEmptyName
	}
	var resp Response
	if err := s.Request(ctx, PathEditPage, p, &resp); err != nil {
		return fmt.Errorf("edit page %s: %w", p.Name, err)
	}
	return nil
}

// RenamePage renames a page.
func (s *Service) RenamePage(ctx context.Context, oldName, newName string) error {
	if oldName == "" || newName == "" {
		return ErrEmptyName
	}
	var resp Response
	if err := s.Request(ctx, PathRenamePage, renameParams{OldName: oldName, NewName: newName}, &resp); err != nil {
		return fmt.Errorf("rename page %s: %w", oldName, err)
	}
	return nil
}

// DeletePage removes a page.
func (s *Service) DeletePage(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	var resp Response
	if err := s.Request(ctx, PathDeletePage, Page{Name: name}, &resp); err != nil {
		return fmt.Errorf("delete page %s: %w", name, err)
	}
	return nil
}
