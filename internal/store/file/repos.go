package file

import (
	"context"
	"fmt"
	"slices"

	"github.com/gosuda/slackdone/internal/domain"
)

// WorkspaceRepo implements domain.WorkspaceRepository.
type WorkspaceRepo struct {
	s *Store
}

func (r *WorkspaceRepo) Upsert(ctx context.Context, w *domain.Workspace) error {
	bot, err := r.s.cipher.Encrypt(w.BotToken, w.ID)
	if err != nil {
		return fmt.Errorf("file.WorkspaceRepo.Upsert: %w", err)
	}
	user, err := r.s.cipher.Encrypt(w.UserToken, w.ID)
	if err != nil {
		return fmt.Errorf("file.WorkspaceRepo.Upsert: %w", err)
	}

	err = r.s.update(ctx, func(doc *document) error {
		rec := workspaceRecord{
			ID:        w.ID,
			Name:      w.Name,
			BotToken:  bot,
			UserToken: user,
			CreatedAt: w.CreatedAt,
			UpdatedAt: w.UpdatedAt,
		}
		i := slices.IndexFunc(doc.Workspaces, func(e workspaceRecord) bool { return e.ID == w.ID })
		if i < 0 {
			doc.Workspaces = append(doc.Workspaces, rec)
			return nil
		}
		rec.CreatedAt = doc.Workspaces[i].CreatedAt
		doc.Workspaces[i] = rec
		return nil
	})
	if err != nil {
		return fmt.Errorf("file.WorkspaceRepo.Upsert: %w", err)
	}
	return nil
}

func (r *WorkspaceRepo) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	var out *domain.Workspace
	err := r.s.view(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Workspaces, func(e workspaceRecord) bool { return e.ID == id })
		if i < 0 {
			return domain.ErrNotFound
		}
		w, err := r.open(doc.Workspaces[i])
		out = w
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("file.WorkspaceRepo.GetByID: %w", err)
	}
	return out, nil
}

func (r *WorkspaceRepo) List(ctx context.Context) ([]*domain.Workspace, error) {
	var out []*domain.Workspace
	err := r.s.view(ctx, func(doc *document) error {
		for _, rec := range doc.Workspaces {
			w, err := r.open(rec)
			if err != nil {
				return err
			}
			out = append(out, w)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("file.WorkspaceRepo.List: %w", err)
	}
	return out, nil
}

func (r *WorkspaceRepo) Delete(ctx context.Context, id string) error {
	err := r.s.update(ctx, func(doc *document) error {
		n := len(doc.Workspaces)
		doc.Workspaces = slices.DeleteFunc(doc.Workspaces, func(e workspaceRecord) bool { return e.ID == id })
		if len(doc.Workspaces) == n {
			return domain.ErrNotFound
		}
		delete(doc.SavedLists, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("file.WorkspaceRepo.Delete: %w", err)
	}
	return nil
}

func (r *WorkspaceRepo) open(rec workspaceRecord) (*domain.Workspace, error) {
	bot, err := r.s.cipher.Decrypt(rec.BotToken, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("decrypt bot token: %w", err)
	}
	user, err := r.s.cipher.Decrypt(rec.UserToken, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("decrypt user token: %w", err)
	}
	return &domain.Workspace{
		ID:        rec.ID,
		Name:      rec.Name,
		BotToken:  bot,
		UserToken: user,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// SavedListRepo implements domain.SavedListRepository.
type SavedListRepo struct {
	s *Store
}

func (r *SavedListRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.SavedList, error) {
	var out []*domain.SavedList
	err := r.s.view(ctx, func(doc *document) error {
		for _, rec := range doc.SavedLists[workspaceID] {
			out = append(out, &domain.SavedList{
				ListID:      rec.ListID,
				WorkspaceID: workspaceID,
				Title:       rec.Title,
				AddedAt:     rec.AddedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("file.SavedListRepo.ListByWorkspace: %w", err)
	}
	return out, nil
}

func (r *SavedListRepo) Add(ctx context.Context, l *domain.SavedList) error {
	err := r.s.update(ctx, func(doc *document) error {
		if !slices.ContainsFunc(doc.Workspaces, func(e workspaceRecord) bool { return e.ID == l.WorkspaceID }) {
			return domain.ErrNotFound
		}
		lists := doc.SavedLists[l.WorkspaceID]
		if i := slices.IndexFunc(lists, func(e savedListRecord) bool { return e.ListID == l.ListID }); i >= 0 {
			lists[i].Title = l.Title
			return nil
		}
		doc.SavedLists[l.WorkspaceID] = append(lists, savedListRecord{ListID: l.ListID, Title: l.Title, AddedAt: l.AddedAt})
		return nil
	})
	if err != nil {
		return fmt.Errorf("file.SavedListRepo.Add: %w", err)
	}
	return nil
}

func (r *SavedListRepo) Remove(ctx context.Context, workspaceID, listID string) error {
	err := r.s.update(ctx, func(doc *document) error {
		lists := doc.SavedLists[workspaceID]
		n := len(lists)
		lists = slices.DeleteFunc(lists, func(e savedListRecord) bool { return e.ListID == listID })
		if len(lists) == n {
			return domain.ErrNotFound
		}
		if len(lists) == 0 {
			delete(doc.SavedLists, workspaceID)
		} else {
			doc.SavedLists[workspaceID] = lists
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("file.SavedListRepo.Remove: %w", err)
	}
	return nil
}
