package service

import (
	"context"

	"predman/internal/domain"
)

// requireMember fails with ErrForbidden unless userID belongs to the project.
func requireMember(ctx context.Context, members memberStore, projectID, userID string) error {
	ok, err := members.IsMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Forbidden("not a project member")
	}
	return nil
}

// requireOwner loads the project and fails with ErrForbidden unless userID owns it.
func requireOwner(ctx context.Context, projects projectStore, projectID, userID string) (*domain.ProjectInfo, error) {
	info, err := projects.GetInfo(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if info.OwnerID != userID {
		return nil, domain.Forbidden("only the project owner can do this")
	}
	return info, nil
}
